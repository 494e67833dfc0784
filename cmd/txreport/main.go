package main

import (
	"fmt"
	"os"

	"github.com/kcmvp/txreport/cmd/internal"
	"github.com/kcmvp/txreport/cmd/txreport/ddl"
	"github.com/kcmvp/txreport/cmd/txreport/reports"
	"github.com/kcmvp/txreport/cmd/txreport/seed"
	"github.com/kcmvp/txreport/store"
	"github.com/spf13/cobra"
)

// rootCmd rebuilds the store when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "txreport",
	Short: "txreport builds the transaction warehouse and runs its reports.",
	Long: `txreport recreates an embedded SQLite store holding Transactions, Customer,
DimDate and DimTransactionType, seeds it and runs analytic reports against it.
Run without a subcommand it deletes the store file and creates the empty tables.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cmd.SetContext(internal.Setup(cmd.Context()))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return store.CloseAllDataSources()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := internal.Bootstrap(cmd.Context(), ""); err != nil {
			return err
		}
		internal.Done(cmd.OutOrStdout(), "store %q recreated", internal.DataSource)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&internal.DataSource, "datasource", internal.DataSource,
		"name of the datasource in application.yml")
	rootCmd.AddCommand(ddl.SchemaCmd)
	rootCmd.AddCommand(seed.SeedCmd)
	rootCmd.AddCommand(reports.ReportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		_ = store.CloseAllDataSources()
		os.Exit(1)
	}
}

package seed

import (
	"fmt"
	"os"
	"time"

	"github.com/kcmvp/txreport/app"
	"github.com/kcmvp/txreport/cmd/internal"
	"github.com/kcmvp/txreport/schema"
	"github.com/kcmvp/txreport/store"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// SeedCmd represents the seed command group
var SeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Commands for loading data into the warehouse.",
}

var (
	from string
	to   string
)

var dimDateCmd = &cobra.Command{
	Use:   "dimdate",
	Short: "Insert one DimDate row per day between --from and --to (inclusive).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := time.Parse(time.DateOnly, from)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		end, err := time.Parse(time.DateOnly, to)
		if err != nil {
			return fmt.Errorf("--to: %w", err)
		}
		db, err := store.GetDS(internal.DataSource)
		if err != nil {
			return err
		}
		n, err := schema.SeedDimDate(cmd.Context(), db, start, end)
		if err != nil {
			return err
		}
		internal.Done(cmd.OutOrStdout(), "%d DimDate rows inserted", n)
		return nil
	},
}

var fixtureCmd = &cobra.Command{
	Use:   "fixture <file.json>",
	Short: "Load a JSON document keyed by table name, e.g. {\"Customer\": [{...}]}.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		db, err := store.GetDS(internal.DataSource)
		if err != nil {
			return err
		}
		counts, err := schema.NewFixture(schema.WithAuditUser(app.Report().User)).Load(cmd.Context(), db, b)
		if err != nil {
			return err
		}
		rows := lo.FilterMap(schema.Tables, func(t schema.Table, _ int) ([]string, bool) {
			n, ok := counts[t.Name]
			return []string{t.Name, fmt.Sprint(n)}, ok
		})
		return internal.Table(cmd.OutOrStdout(), []string{"TABLE", "ROWS"}, rows)
	},
}

func init() {
	dimDateCmd.Flags().StringVar(&from, "from", "", "first day, YYYY-MM-DD")
	dimDateCmd.Flags().StringVar(&to, "to", "", "last day, YYYY-MM-DD")
	_ = dimDateCmd.MarkFlagRequired("from")
	_ = dimDateCmd.MarkFlagRequired("to")
	SeedCmd.AddCommand(dimDateCmd)
	SeedCmd.AddCommand(fixtureCmd)
}

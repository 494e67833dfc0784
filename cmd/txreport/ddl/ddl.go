package ddl

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/kcmvp/txreport/cmd/internal"
	"github.com/kcmvp/txreport/schema"
	"github.com/spf13/cobra"
)

// SchemaCmd represents the schema command group
var SchemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Commands for creating and inspecting the warehouse tables.",
}

var initCmd = &cobra.Command{
	Use:   "init [pattern]",
	Short: "Delete the store file and create the tables matching a glob pattern (all by default).",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pattern := patternArg(args)
		if err := internal.Bootstrap(cmd.Context(), pattern); err != nil {
			return err
		}
		internal.Done(cmd.OutOrStdout(), "store %q recreated", internal.DataSource)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show [pattern]",
	Short: "Print the DDL of the tables matching a glob pattern, e.g. `schema show 'Dim*'`.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables := schema.Match(patternArg(args))
		if len(tables) == 0 {
			return fmt.Errorf("%w: no table matches %q", schema.ErrUnknownTable, patternArg(args))
		}
		name := color.New(color.FgYellow, color.Bold)
		for _, t := range tables {
			_, _ = name.Fprintf(cmd.OutOrStdout(), "-- %s\n", t.Name)
			fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", strings.TrimSpace(t.DDL))
		}
		return nil
	},
}

func patternArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return strings.TrimSpace(args[0])
}

func init() {
	SchemaCmd.AddCommand(initCmd)
	SchemaCmd.AddCommand(showCmd)
}

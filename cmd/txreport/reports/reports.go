package reports

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/kcmvp/txreport/app"
	"github.com/kcmvp/txreport/cmd/internal"
	"github.com/kcmvp/txreport/report"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// ReportCmd represents the report command group
var ReportCmd = &cobra.Command{
	Use:   "report",
	Short: "Commands for running the warehouse reports.",
}

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List TransactionTypeIDs used by Transactions but missing from DimTransactionType.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := internal.Runner(cmd.Context())
		if err != nil {
			return err
		}
		ids, err := r.OrphanTransactionTypes(cmd.Context())
		if err != nil {
			return err
		}
		rows := lo.Map(ids, func(id report.TypeID, _ int) []string { return []string{id.String()} })
		return internal.Table(cmd.OutOrStdout(), []string{"TRANSACTION_TYPE_ID"}, rows)
	},
}

var month string

var amountCmd = &cobra.Command{
	Use:   "amount",
	Short: "Sum transaction amounts by customer state for --month and store them in the reporting table.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := report.ParseMonth(month)
		if err != nil {
			return err
		}
		r, err := internal.Runner(cmd.Context())
		if err != nil {
			return err
		}
		amounts, err := r.AmountByState(cmd.Context(), m)
		if err != nil {
			return err
		}
		rows := lo.Map(amounts, func(a report.StateAmount, _ int) []string {
			return []string{a.State, a.Amount.StringFixed(2)}
		})
		return internal.Table(cmd.OutOrStdout(), []string{"STATE", "AMOUNT"}, rows)
	},
}

var (
	reference string
	months    int
	detail    bool
)

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Customer activity per state for each month of the window ending at --ref.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ref, err := internal.Reference(reference)
		if err != nil {
			return err
		}
		n := lo.Ternary(months > 0, months, app.Report().Window)
		r, err := internal.Runner(cmd.Context())
		if err != nil {
			return err
		}
		res, err := r.ActivityWindow(cmd.Context(), ref, n)
		if err != nil {
			return err
		}
		title := color.New(color.FgYellow, color.Bold)
		for _, m := range res {
			_, _ = title.Fprintf(cmd.OutOrStdout(), "%s\n", m.Month)
			if detail {
				rows := lo.Map(m.Customers, func(c report.CustomerActivity, _ int) []string {
					return []string{c.State, strconv.FormatInt(c.CustomerID, 10), strconv.FormatInt(c.Transactions, 10)}
				})
				if err := internal.Table(cmd.OutOrStdout(), []string{"STATE", "CUSTOMER", "TRANSACTIONS"}, rows); err != nil {
					return err
				}
				continue
			}
			rows := lo.Map(m.States, func(s report.StateActivity, _ int) []string {
				return []string{s.State, strconv.Itoa(s.Customers), strconv.FormatInt(s.Transactions, 10)}
			})
			if err := internal.Table(cmd.OutOrStdout(), []string{"STATE", "CUSTOMERS", "TRANSACTIONS"}, rows); err != nil {
				return err
			}
		}
		return nil
	},
}

var zipCmd = &cobra.Command{
	Use:   "zip",
	Short: "Set Customer.Zip to NULL where it is not a valid 5-digit ZIP code.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := internal.Runner(cmd.Context())
		if err != nil {
			return err
		}
		n, err := r.NormalizeZipCodes(cmd.Context())
		if err != nil {
			return err
		}
		internal.Done(cmd.OutOrStdout(), "%s normalized", plural(n, "customer"))
		return nil
	},
}

func plural(n int64, noun string) string {
	return fmt.Sprintf("%d %s%s", n, noun, lo.Ternary(n == 1, "", "s"))
}

func init() {
	amountCmd.Flags().StringVar(&month, "month", "", "month to report, YYYY-MM")
	_ = amountCmd.MarkFlagRequired("month")
	activityCmd.Flags().StringVar(&reference, "ref", "", "reference date YYYY-MM-DD (default: report.reference or today)")
	activityCmd.Flags().IntVar(&months, "months", 0, "window length in months (default: report.window)")
	activityCmd.Flags().BoolVar(&detail, "detail", false, "print one row per customer instead of per state")

	ReportCmd.AddCommand(orphansCmd)
	ReportCmd.AddCommand(amountCmd)
	ReportCmd.AddCommand(activityCmd)
	ReportCmd.AddCommand(zipCmd)
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/pkg/client"
)

func newTransactionsCmd(a *app) *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "View transaction history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			var res *client.TransactionPage
			err = a.withRefresh(ctx, c, func() (err error) {
				res, err = c.Transactions(ctx, page, limit)
				return err
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(res)
			}
			if len(res.Transactions) == 0 {
				output.Info("No transactions yet")
				return nil
			}

			rows := make([][]string, 0, len(res.Transactions))
			for _, tx := range res.Transactions {
				rows = append(rows, []string{
					tx.CreatedAt.Format("2006-01-02 15:04"),
					string(tx.Type),
					tx.Coin,
					"$" + tx.Amount.StringFixed(2),
					tx.Address.String,
					output.FormatStatus(string(tx.Status)),
				})
			}
			output.Table([]string{"Date", "Type", "Coin", "Amount", "Address", "Status"}, rows)
			if p := res.Pagination; p.Limit > 0 {
				output.Info(fmt.Sprintf("Page %d of %d (%d total)", p.Page, p.TotalPages, p.TotalCount))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 0, "items per page (0 lists everything)")
	return cmd
}

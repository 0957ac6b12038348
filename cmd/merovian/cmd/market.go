package cmd

import (
	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
)

func newMarketCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show market movers",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			movers, err := c.MarketMovers(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(movers)
			}

			rows := make([][]string, 0, len(movers.Quotes))
			for _, q := range movers.Quotes {
				change := q.ChangePercent.StringFixed(2) + "%"
				if q.ChangePercent.IsNegative() {
					change = output.ErrorStyle.Render(change)
				} else {
					change = output.SuccessStyle.Render("+" + change)
				}
				rows = append(rows, []string{q.Symbol, q.Name, "$" + q.Price.StringFixed(2), change})
			}
			output.Table([]string{"Symbol", "Name", "Price", "24h"}, rows)
			output.Info("Source: " + movers.Source + ", as of " + movers.AsOf.Format("2006-01-02 15:04 MST"))
			return nil
		},
	}
}

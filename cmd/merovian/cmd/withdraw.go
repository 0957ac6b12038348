package cmd

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/pkg/client"
)

func newWithdrawCmd(a *app) *cobra.Command {
	var (
		coin    string
		address string
		amount  string
		useMax  bool
	)

	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Request a withdrawal",
		Long: `Request a withdrawal to an external address.

The amount must be at least the server's minimum and cannot exceed your
balance. --max withdraws the whole balance.`,
		Example: "  merovian withdraw --coin btc --address bc1q... --amount 25",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			s, err := a.session(ctx, c)
			if err != nil {
				return err
			}
			flows := client.NewFlows(c, s)

			var value decimal.Decimal
			switch {
			case useMax:
				value = flows.MaxWithdrawal()
			case amount == "":
				return errors.New("--amount or --max is required")
			default:
				value, err = decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q", amount)
				}
			}
			if address == "" {
				address = a.prompt("Destination address")
			}

			res, err := flows.Withdraw(ctx, coin, address, value)
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(res)
			}
			output.Success(res.Message)
			if res.Profile != nil {
				output.KeyValue([][]string{{"New balance", output.Money(res.Profile.Balance)}})
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&coin, "coin", "c", "", "asset code, see 'merovian deposit'")
	cmd.Flags().StringVar(&address, "address", "", "destination address")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount in USD")
	cmd.Flags().BoolVar(&useMax, "max", false, "withdraw the whole balance")
	_ = cmd.MarkFlagRequired("coin")
	cmd.MarkFlagsMutuallyExclusive("amount", "max")
	return cmd
}

package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/internal/domain/entities"
)

func newProfileCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show balance, performance and verification status",
		Long: `Show your profile.

With --watch the command stays connected and prints the profile again
every time the platform changes it.`,
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
			if err := a.printProfile(s.Profile()); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			rt, err := c.Realtime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			s.OnChange(func(p *entities.Profile) {
				output.Blank()
				_ = a.printProfile(p)
			})
			ch, err := s.Watch(ctx, rt)
			if err != nil {
				return err
			}
			defer ch.Close()

			output.Info("Watching for changes, Ctrl+C to stop")
			select {
			case <-ctx.Done():
				return nil
			case <-rt.Done():
				return rt.Err()
			}
		},
	}
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing live updates")
	return cmd
}

func (a *app) printProfile(p *entities.Profile) error {
	if a.jsonOutput() {
		return output.JSON(p)
	}
	if p == nil {
		output.Warning("Profile not available")
		return nil
	}
	output.Header("Profile")
	output.KeyValue([][]string{
		{"Email", p.Email},
		{"Name", p.FullName.String},
		{"Balance", output.Money(p.Balance)},
		{"Total profits", output.Money(p.TotalProfits)},
		{"Performance", p.Performance.StringFixed(2) + "%"},
		{"Active trades", strconv.Itoa(p.ActiveTrades)},
		{"KYC", output.FormatStatus(string(p.KYCStatus))},
	})
	return nil
}

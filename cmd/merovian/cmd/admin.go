package cmd

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/client"
)

func newAdminCmd(a *app) *cobra.Command {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Back office commands (admin accounts only)",
	}

	var page, limit int
	profilesCmd := &cobra.Command{
		Use:   "profiles",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			var res *client.ProfilePage
			err = a.withRefresh(ctx, c, func() (err error) {
				res, err = c.AdminProfiles(ctx, page, limit)
				return err
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(res)
			}
			rows := make([][]string, 0, len(res.Profiles))
			for _, p := range res.Profiles {
				rows = append(rows, []string{
					p.ID.String(),
					p.Email,
					string(p.Role),
					"$" + p.Balance.StringFixed(2),
					output.FormatStatus(string(p.KYCStatus)),
				})
			}
			output.Table([]string{"ID", "Email", "Role", "Balance", "KYC"}, rows)
			if p := res.Pagination; p.Limit > 0 {
				output.Info(fmt.Sprintf("Page %d of %d (%d total)", p.Page, p.TotalPages, p.TotalCount))
			}
			return nil
		},
	}
	profilesCmd.Flags().IntVar(&page, "page", 1, "page number")
	profilesCmd.Flags().IntVar(&limit, "limit", 0, "items per page (0 lists everything)")

	balanceCmd := &cobra.Command{
		Use:   "balance PROFILE_ID AMOUNT",
		Short: "Set a profile balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "profile")
			if err != nil {
				return err
			}
			amount, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			var res *client.ProfileUpdate
			err = a.withRefresh(ctx, c, func() (err error) {
				res, err = c.AdminSetBalance(ctx, id, amount)
				return err
			})
			if err != nil {
				return err
			}
			return a.printProfileUpdate(res)
		},
	}

	var setStatus string
	kycCmd := &cobra.Command{
		Use:   "kyc PROFILE_ID",
		Short: "Show KYC details, or review with --set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := parseID(args[0], "profile")
			if err != nil {
				return err
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}

			if setStatus != "" {
				status := entities.KYCStatus(setStatus)
				if !status.Valid() {
					return fmt.Errorf("invalid status %q, use unverified, pending, verified or rejected", setStatus)
				}
				var res *client.ProfileUpdate
				err = a.withRefresh(ctx, c, func() (err error) {
					res, err = c.AdminSetKYCStatus(ctx, id, status)
					return err
				})
				if err != nil {
					return err
				}
				return a.printProfileUpdate(res)
			}

			var details *entities.KYCDetails
			err = a.withRefresh(ctx, c, func() (err error) {
				details, err = c.AdminKYC(ctx, id)
				return err
			})
			if client.IsStatus(err, http.StatusNotFound) {
				output.Info("No KYC submission for this profile")
				return nil
			}
			if err != nil {
				return err
			}
			return a.printKYC(details)
		},
	}
	kycCmd.Flags().StringVar(&setStatus, "set", "", "new status: unverified, pending, verified, rejected")

	ticketsCmd := &cobra.Command{
		Use:   "tickets [TICKET_ID]",
		Short: "List every ticket, or show one thread",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if len(args) == 1 {
				ticketID, err := parseID(args[0], "ticket")
				if err != nil {
					return err
				}
				log := &client.MessageLog{}
				err = a.withRefresh(ctx, c, func() error {
					return loadThread(ctx, log, func(ctx context.Context) ([]*entities.TicketMessage, error) {
						return c.AdminTicketMessages(ctx, ticketID)
					})
				})
				if err != nil {
					return err
				}
				return a.printThread(log.Messages())
			}

			var tickets []*entities.SupportTicket
			err = a.withRefresh(ctx, c, func() (err error) {
				tickets, err = c.AdminTickets(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return a.printTickets(tickets)
		},
	}

	var reply string
	replyCmd := &cobra.Command{
		Use:   "reply TICKET_ID",
		Short: "Reply to a ticket as support",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ticketID, err := parseID(args[0], "ticket")
			if err != nil {
				return err
			}
			if reply == "" {
				reply = a.prompt("Message")
			}
			if reply == "" {
				return client.ErrEmptyMessage
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			var msg *entities.TicketMessage
			err = a.withRefresh(ctx, c, func() (err error) {
				msg, err = c.AdminReply(ctx, ticketID, reply)
				return err
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(msg)
			}
			output.Success("Reply sent")
			return nil
		},
	}
	replyCmd.Flags().StringVarP(&reply, "message", "m", "", "message text")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Dashboard counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			var stats *entities.AdminStats
			err = a.withRefresh(ctx, c, func() (err error) {
				stats, err = c.AdminStats(ctx)
				return err
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(stats)
			}
			output.Header("Platform")
			output.KeyValue([][]string{
				{"Profiles", strconv.FormatInt(stats.Profiles, 10)},
				{"Pending KYC", strconv.FormatInt(stats.PendingKYC, 10)},
				{"Open tickets", strconv.FormatInt(stats.OpenTickets, 10)},
				{"Pending withdrawals", strconv.FormatInt(stats.PendingWithdrawals, 10)},
			})
			return nil
		},
	}

	adminCmd.AddCommand(profilesCmd, balanceCmd, kycCmd, ticketsCmd, replyCmd, statsCmd)
	return adminCmd
}

func (a *app) printProfileUpdate(res *client.ProfileUpdate) error {
	if a.jsonOutput() {
		return output.JSON(res)
	}
	output.Success(res.Message)
	if p := res.Profile; p != nil {
		output.KeyValue([][]string{
			{"Balance", output.Money(p.Balance)},
			{"KYC", output.FormatStatus(string(p.KYCStatus))},
		})
	}
	return nil
}

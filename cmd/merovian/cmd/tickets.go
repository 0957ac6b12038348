package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"merovian.backend/cmd/merovian/internal/output"
	"merovian.backend/internal/domain/entities"
	"merovian.backend/pkg/client"
	"merovian.backend/pkg/utils"
)

func newTicketsCmd(a *app) *cobra.Command {
	ticketsCmd := &cobra.Command{
		Use:     "tickets",
		Aliases: []string{"support"},
		Short:   "Support tickets",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List your tickets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			var tickets []*entities.SupportTicket
			err = a.withRefresh(ctx, c, func() (err error) {
				tickets, err = c.Tickets(ctx)
				return err
			})
			if err != nil {
				return err
			}
			return a.printTickets(tickets)
		},
	}

	var subject, message string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a ticket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if subject == "" {
				subject = a.prompt("Subject")
			}
			if message == "" {
				message = a.prompt("Message")
			}
			var created *client.CreatedTicket
			err = a.withRefresh(ctx, c, func() (err error) {
				created, err = client.NewFlows(c, nil).CreateTicket(ctx, subject, message)
				return err
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(created)
			}
			output.Success(created.Notice)
			output.KeyValue([][]string{{"Ticket", created.Ticket.ID.String()}})
			return nil
		},
	}
	createCmd.Flags().StringVarP(&subject, "subject", "s", "", "ticket subject")
	createCmd.Flags().StringVarP(&message, "message", "m", "", "first message")

	showCmd := &cobra.Command{
		Use:   "show TICKET_ID",
		Short: "Show a ticket thread",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ticketID, err := parseID(args[0], "ticket")
			if err != nil {
				return err
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			log := &client.MessageLog{}
			err = a.withRefresh(ctx, c, func() error {
				return loadThread(ctx, log, func(ctx context.Context) ([]*entities.TicketMessage, error) {
					return c.TicketMessages(ctx, ticketID)
				})
			})
			if err != nil {
				return err
			}
			return a.printThread(log.Messages())
		},
	}

	var reply string
	replyCmd := &cobra.Command{
		Use:   "reply TICKET_ID",
		Short: "Add a message to a ticket",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ticketID, err := parseID(args[0], "ticket")
			if err != nil {
				return err
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			if reply == "" {
				reply = a.prompt("Message")
			}
			var msg *entities.TicketMessage
			err = a.withRefresh(ctx, c, func() (err error) {
				msg, err = client.NewFlows(c, nil).SendMessage(ctx, ticketID, reply)
				return err
			})
			if err != nil {
				return err
			}
			if a.jsonOutput() {
				return output.JSON(msg)
			}
			output.Success("Message sent")
			return nil
		},
	}
	replyCmd.Flags().StringVarP(&reply, "message", "m", "", "message text")

	watchCmd := &cobra.Command{
		Use:   "watch TICKET_ID",
		Short: "Follow a ticket thread live",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ticketID, err := parseID(args[0], "ticket")
			if err != nil {
				return err
			}
			c, err := a.authedClient()
			if err != nil {
				return err
			}
			return a.watchThread(ctx, c, ticketID, func(ctx context.Context) ([]*entities.TicketMessage, error) {
				return c.TicketMessages(ctx, ticketID)
			})
		},
	}

	ticketsCmd.AddCommand(listCmd, createCmd, showCmd, replyCmd, watchCmd)
	return ticketsCmd
}

type threadLoader func(ctx context.Context) ([]*entities.TicketMessage, error)

func loadThread(ctx context.Context, log *client.MessageLog, load threadLoader) error {
	msgs, err := load(ctx)
	if err != nil {
		return err
	}
	for _, m := range msgs {
		log.Append(*m)
	}
	return nil
}

// watchThread subscribes before fetching history so no message falls in
// the gap; the log drops the overlap.
func (a *app) watchThread(ctx context.Context, c *client.Client, ticketID uuid.UUID, load threadLoader) error {
	if err := a.withRefresh(ctx, c, func() error { _, err := c.User(ctx); return err }); err != nil {
		return err
	}
	rt, err := c.Realtime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	log := &client.MessageLog{}
	// live messages that beat the history fetch are printed with it
	var mu sync.Mutex
	ready := false
	ch, err := rt.Channel(ctx, entities.TableTicketMessages, entities.ChangeInsert, "ticket_id=eq."+ticketID.String(), func(ev entities.ChangeEvent) {
		var m entities.TicketMessage
		if err := json.Unmarshal(ev.Record, &m); err != nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if log.Append(m) && ready {
			a.printMessage(m)
		}
	})
	if err != nil {
		return err
	}
	defer ch.Close()

	mu.Lock()
	err = loadThread(ctx, log, load)
	if err == nil {
		for _, m := range log.Messages() {
			a.printMessage(m)
		}
		ready = true
	}
	mu.Unlock()
	if err != nil {
		return err
	}

	output.Info("Watching for replies, Ctrl+C to stop")
	select {
	case <-ctx.Done():
		return nil
	case <-rt.Done():
		return rt.Err()
	}
}

func (a *app) printTickets(tickets []*entities.SupportTicket) error {
	if a.jsonOutput() {
		return output.JSON(tickets)
	}
	if len(tickets) == 0 {
		output.Info("No tickets")
		return nil
	}
	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, []string{
			t.ID.String(),
			t.Subject,
			output.FormatStatus(string(t.Status)),
			t.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	output.Table([]string{"ID", "Subject", "Status", "Opened"}, rows)
	return nil
}

func (a *app) printThread(msgs []entities.TicketMessage) error {
	if a.jsonOutput() {
		return output.JSON(msgs)
	}
	if len(msgs) == 0 {
		output.Info("No messages")
		return nil
	}
	for _, m := range msgs {
		a.printMessage(m)
	}
	return nil
}

func (a *app) printMessage(m entities.TicketMessage) {
	if a.jsonOutput() {
		_ = output.JSON(m)
		return
	}
	sender := m.SenderID.String()
	if len(sender) > 8 {
		sender = sender[:8]
	}
	output.Info(fmt.Sprintf("[%s] %s", m.CreatedAt.Format("2006-01-02 15:04"), sender))
	fmt.Fprintln(output.Stdout, "  "+strings.ReplaceAll(m.Message, "\n", "\n  "))
}

func parseID(raw, label string) (uuid.UUID, error) {
	return utils.ParseID(label+" id", raw)
}

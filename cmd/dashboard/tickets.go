package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/tickets"
)

var (
	ticketsStatus   string
	ticketsPriority string
	ticketsFile     string
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Work with support tickets",
}

var ticketsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List support tickets",
	Example: `  dashboard tickets list --status open --priority high`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		if err := authorize(cmd.Context(), client); err != nil {
			return err
		}

		b := tickets.New(client, logger)
		b.Fetch(cmd.Context(), domain.TicketFilter{
			Status:   domain.TicketStatus(ticketsStatus),
			Priority: domain.TicketPriority(ticketsPriority),
		})
		st := b.State()
		if err := printJSON(cmd.OutOrStdout(), st); err != nil {
			return err
		}
		if st.Error != "" {
			return errors.New(st.Error)
		}
		return nil
	},
}

var ticketsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Open a support ticket from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req domain.NewTicketRequest
		if err := readPayload(cmd, ticketsFile, &req); err != nil {
			return err
		}

		client := newClient()
		if err := authorize(cmd.Context(), client); err != nil {
			return err
		}

		t, err := tickets.New(client, logger).Create(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), domain.TicketEnvelope{Ticket: t})
	},
}

var ticketsRespondCmd = &cobra.Command{
	Use:   "respond <ticket-id>",
	Short: "Add a response to a support ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var req domain.TicketResponseRequest
		if err := readPayload(cmd, ticketsFile, &req); err != nil {
			return err
		}

		client := newClient()
		if err := authorize(cmd.Context(), client); err != nil {
			return err
		}

		t, err := tickets.New(client, logger).Respond(cmd.Context(), args[0], req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), domain.TicketEnvelope{Ticket: t})
	},
}

func init() {
	rootCmd.AddCommand(ticketsCmd)
	ticketsCmd.AddCommand(ticketsListCmd, ticketsCreateCmd, ticketsRespondCmd)

	ticketsListCmd.Flags().StringVar(&ticketsStatus, "status", "", "Filter by status: open, in_progress, resolved, closed")
	ticketsListCmd.Flags().StringVar(&ticketsPriority, "priority", "", "Filter by priority: low, medium, high, urgent")
	ticketsCreateCmd.Flags().StringVarP(&ticketsFile, "file", "f", "", "JSON payload file, - for stdin")
	ticketsRespondCmd.Flags().StringVarP(&ticketsFile, "file", "f", "", "JSON payload file, - for stdin")
}

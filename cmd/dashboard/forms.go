package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/submissions"
)

var formFile string

var bidCmd = &cobra.Command{
	Use:   "bid",
	Short: "Submit a business bid",
	RunE: func(cmd *cobra.Command, args []string) error {
		var bid domain.Bid
		if err := readPayload(cmd, formFile, &bid); err != nil {
			return err
		}

		redirect, err := submissions.New(newClient(), logger).SubmitBid(cmd.Context(), bid)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "bid submitted, continue at %s\n", redirect)
		return nil
	},
}

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Create the organization profile of the current provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		var req domain.CompanyProfileRequest
		if err := readPayload(cmd, formFile, &req); err != nil {
			return err
		}

		client := newClient()
		if err := authorize(cmd.Context(), client); err != nil {
			return err
		}

		body, err := submissions.New(client, logger).CreateCompanyProfile(cmd.Context(), req)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(append(body, '\n'))
		return err
	},
}

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Send the contact form",
	RunE: func(cmd *cobra.Command, args []string) error {
		var msg domain.ContactMessage
		if err := readPayload(cmd, formFile, &msg); err != nil {
			return err
		}

		// Результат только в логах
		submissions.New(newClient(), logger).SendContact(cmd.Context(), msg)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{bidCmd, companyCmd, contactCmd} {
		rootCmd.AddCommand(c)
		c.Flags().StringVarP(&formFile, "file", "f", "", "JSON payload file, - for stdin")
	}
}

package main

import (
	"errors"

	"github.com/spf13/cobra"
	"github.com/xela07ax/cybermarket-dashboard/internal/domain"
	"github.com/xela07ax/cybermarket-dashboard/internal/packages"
)

var (
	packagesStatus string
	packagesFile   string
)

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List or create service packages",
}

var packagesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List packages of the current customer",
	Example: `  dashboard packages list
  dashboard packages list --status active`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		if err := authorize(cmd.Context(), client); err != nil {
			return err
		}

		l := packages.New(client, logger)
		l.Fetch(cmd.Context(), domain.PackageStatus(packagesStatus))
		st := l.State()
		if err := printJSON(cmd.OutOrStdout(), st); err != nil {
			return err
		}
		if st.Error != "" {
			return errors.New(st.Error)
		}
		return nil
	},
}

var packagesCreateCmd = &cobra.Command{
	Use:     "create",
	Short:   "Create a package from a JSON file",
	Example: `  echo '{"name":"External pentest"}' | dashboard packages create -f -`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var req domain.NewPackageRequest
		if err := readPayload(cmd, packagesFile, &req); err != nil {
			return err
		}

		client := newClient()
		if err := authorize(cmd.Context(), client); err != nil {
			return err
		}

		pkg, err := packages.New(client, logger).Create(cmd.Context(), req)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), domain.PackageEnvelope{Package: pkg})
	},
}

func init() {
	rootCmd.AddCommand(packagesCmd)
	packagesCmd.AddCommand(packagesListCmd, packagesCreateCmd)

	packagesListCmd.Flags().StringVarP(&packagesStatus, "status", "s", "", "Filter by status: active, upcoming, completed, pending")
	packagesCreateCmd.Flags().StringVarP(&packagesFile, "file", "f", "", "JSON payload file, - for stdin")
}

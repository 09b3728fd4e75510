package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/galxe/wallet-migrator/cmd/migrator/app"
)

var statusIdentity string

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show which assets a legacy wallet still holds",
	PreRunE: requireConfig,
	RunE:    runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusIdentity, "identity", "", "user identity (email) of the legacy wallet")
	_ = statusCmd.MarkFlagRequired("identity")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	application := app.New(cmd.Context(), cfgFile, debugMode)
	if err := application.Init(); err != nil {
		return err
	}
	defer application.Shutdown()

	status, err := application.Service().Status(cmd.Context(), statusIdentity)
	if err != nil {
		return fmt.Errorf("failed to evaluate migration status: %w", err)
	}
	return printStatus(cmd.OutOrStdout(), status)
}

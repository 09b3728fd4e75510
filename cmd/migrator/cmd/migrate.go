package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/AlecAivazis/survey/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/galxe/wallet-migrator/cmd/migrator/app"
)

var (
	migrateIdentity  string
	migrateRecipient string
	migrateYes       bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Move every remaining asset of a legacy wallet to a recipient",
	Long: `Move every remaining asset of a legacy wallet to a recipient.

Assets are attempted independently; a failed asset does not stop the
others. Running migrate again retries whatever is still held.`,
	PreRunE: validateMigrateFlags,
	RunE:    runMigrate,
}

func init() {
	migrateCmd.Flags().StringVar(&migrateIdentity, "identity", "", "user identity (email) of the legacy wallet")
	migrateCmd.Flags().StringVar(&migrateRecipient, "recipient", "", "address receiving the assets")
	migrateCmd.Flags().BoolVarP(&migrateYes, "yes", "y", false, "skip the confirmation prompt")
	_ = migrateCmd.MarkFlagRequired("identity")
	_ = migrateCmd.MarkFlagRequired("recipient")
	rootCmd.AddCommand(migrateCmd)
}

func validateMigrateFlags(cmd *cobra.Command, args []string) error {
	if err := requireConfig(cmd, args); err != nil {
		return err
	}
	if !common.IsHexAddress(migrateRecipient) {
		return fmt.Errorf("invalid recipient address: %q", migrateRecipient)
	}
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application := app.New(ctx, cfgFile, debugMode)
	if err := application.Init(); err != nil {
		return err
	}
	defer application.Shutdown()

	service := application.Service()
	recipient := common.HexToAddress(migrateRecipient)

	status, err := service.Status(ctx, migrateIdentity)
	if err != nil {
		return fmt.Errorf("failed to evaluate migration status: %w", err)
	}
	if err := printStatus(cmd.OutOrStdout(), status); err != nil {
		return err
	}
	if status.MigrationCompleted {
		return nil
	}

	if !migrateYes {
		ok, err := confirmMigration(recipient)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
			return nil
		}
	}

	report, err := service.Migrate(ctx, migrateIdentity, recipient)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	return printReport(cmd.OutOrStdout(), report)
}

func confirmMigration(recipient common.Address) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("Transfer these assets to %s?", recipient.Hex()),
		Default: false,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, fmt.Errorf("failed to confirm migration: %w", err)
	}
	return ok, nil
}

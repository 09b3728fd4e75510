package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/galxe/wallet-migrator/cmd/migrator/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the migration HTTP API",
	Long: `Serve the migration HTTP API and the Prometheus metrics endpoint.

This command will:
1. Load configuration from the specified file
2. Connect to every configured chain
3. Start the API and metric servers
4. Handle graceful shutdown on interrupt`,
	PreRunE: requireConfig,
	RunE:    runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	application := app.New(ctx, cfgFile, debugMode)

	errChan := make(chan error, 1)
	go func() {
		errChan <- application.Serve()
	}()

	var runErr error
	select {
	case <-sigChan:
		log.Info().Msg("Received interrupt signal. Shutting down...")
		cancel()
	case err := <-errChan:
		if err != nil {
			runErr = fmt.Errorf("application error: %w", err)
		}
	}

	if err := application.Shutdown(); err != nil {
		log.Error().Err(err).Msg("Error during shutdown")
	}
	return runErr
}

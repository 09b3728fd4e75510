package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/galxe/wallet-migrator/pkg/version"
)

const defaultConfigPath = "./config/migrator.yaml"

var (
	// Global flags
	cfgFile   string
	debugMode bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "migrator",
	Short: "Legacy custodial wallet asset migrator",
	Long: `Migrator moves the on-chain assets held by a user's legacy custodial
wallet to a wallet the user controls.

Supported asset types:
- ERC20 balances
- ERC721 tokens, one transfer per token id
- ERC1155 tokens, one transfer per held id
- Native coin, minus the gas needed to move it

Legacy wallets are resolved through the configured provider
(privy, venly or local keystore files).`,
	Version:       fmt.Sprintf("%s (Build: %s, Commit: %s)", version.Version, version.BuildTime, version.GitCommit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", defaultConfigPath,
		"config file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false,
		"enable debug logging")

	rootCmd.SetVersionTemplate(`Version: {{.Version}}
`)
}

// requireConfig fails early with a hint when the config file is missing
func requireConfig(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s. Run 'migrator init' first", cfgFile)
	}
	return nil
}

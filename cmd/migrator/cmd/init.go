package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/galxe/wallet-migrator/pkg/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interactively create a configuration file",
	Long: `Interactively create a configuration file.

Provider secrets are written as ${VAR} references and expanded from the
environment when the file is loaded.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

// knownChains are offered as defaults; any other chain id can be added
var knownChains = []struct {
	id   uint64
	name string
	rpc  string
}{
	{1, "Ethereum", "https://ethereum-rpc.publicnode.com"},
	{8453, "Base", "https://mainnet.base.org"},
	{11155111, "Sepolia", "https://ethereum-sepolia-rpc.publicnode.com"},
	{84532, "Base Sepolia", "https://sepolia.base.org"},
}

type initAnswers struct {
	Provider string
	HTTPPort string
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(cfgFile); err == nil && !initForce {
		return fmt.Errorf("config file already exists: %s. Use --force to overwrite", cfgFile)
	}

	cfg := config.DefaultConfig()

	chains, err := collectChains()
	if err != nil {
		return err
	}
	cfg.Chains = chains

	var answers initAnswers
	if err := survey.Ask([]*survey.Question{
		{
			Name: "Provider",
			Prompt: &survey.Select{
				Message: "Choose the legacy wallet provider:",
				Options: []string{config.ProviderPrivy, config.ProviderVenly, config.ProviderKeystore},
				Default: config.ProviderPrivy,
			},
		},
		{
			Name: "HTTPPort",
			Prompt: &survey.Input{
				Message: "Enter HTTP Port:",
				Default: strconv.Itoa(cfg.HTTP.Port),
			},
			Validate: survey.Required,
		},
	}, &answers); err != nil {
		return fmt.Errorf("failed to collect config: %w", err)
	}

	port, err := strconv.Atoi(answers.HTTPPort)
	if err != nil {
		return fmt.Errorf("invalid HTTP port %q: %w", answers.HTTPPort, err)
	}
	cfg.HTTP.Port = port
	cfg.Legacy.Provider = answers.Provider

	switch answers.Provider {
	case config.ProviderPrivy:
		cfg.Legacy.Privy.AppID = "${PRIVY_APP_ID}"
		cfg.Legacy.Privy.AppSecret = "${PRIVY_APP_SECRET}"
	case config.ProviderVenly:
		cfg.Legacy.Venly.ClientID = "${VENLY_CLIENT_ID}"
		cfg.Legacy.Venly.ClientSecret = "${VENLY_CLIENT_SECRET}"
		cfg.Legacy.Venly.SigningMethod = "${VENLY_SIGNING_METHOD}"
	case config.ProviderKeystore:
		cfg.Legacy.Keystore.Accounts = map[string]config.KeystoreAccount{}
	}

	for _, c := range knownChains {
		if _, ok := chains[c.id]; ok {
			cfg.Assets = append(cfg.Assets, config.AssetConfig{Type: "NATIVE", ChainID: c.id})
		}
	}

	if err := os.MkdirAll(filepath.Dir(cfgFile), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(cfgFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "\nConfiguration initialized successfully!")
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "1. Add the token contracts to migrate under 'assets' in %s\n", cfgFile)
	fmt.Fprintln(out, "2. Export the provider credentials referenced by the file")
	fmt.Fprintln(out, "3. Check a wallet:")
	fmt.Fprintln(out, "   migrator status --identity user@example.com")
	return nil
}

func collectChains() (map[uint64]*config.ChainConfig, error) {
	chains := make(map[uint64]*config.ChainConfig)

	options := make([]string, 0, len(knownChains))
	for _, c := range knownChains {
		options = append(options, fmt.Sprintf("%s (%d)", c.name, c.id))
	}
	var selected []int
	if err := survey.AskOne(&survey.MultiSelect{
		Message: "Select the chains holding legacy assets:",
		Options: options,
	}, &selected); err != nil {
		return nil, fmt.Errorf("failed to select chains: %w", err)
	}

	for _, idx := range selected {
		c := knownChains[idx]
		var rpcURL string
		prompt := &survey.Input{
			Message: fmt.Sprintf("Enter RPC URL for %s (%d):", c.name, c.id),
			Default: c.rpc,
			Help:    "The RPC endpoint for this chain",
		}
		if err := survey.AskOne(prompt, &rpcURL, survey.WithValidator(survey.Required)); err != nil {
			return nil, err
		}
		chains[c.id] = &config.ChainConfig{RPC: rpcURL}
	}

	if len(chains) == 0 {
		return nil, fmt.Errorf("at least one chain must be selected")
	}
	return chains, nil
}

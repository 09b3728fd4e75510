package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/galxe/wallet-migrator/cmd/migrator/app"
)

var assetsCmd = &cobra.Command{
	Use:     "assets",
	Short:   "List the assets considered for migration",
	PreRunE: requireConfig,
	RunE:    runAssets,
}

func init() {
	rootCmd.AddCommand(assetsCmd)
}

func runAssets(cmd *cobra.Command, args []string) error {
	registry, err := app.New(cmd.Context(), cfgFile, debugMode).LoadRegistry()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTYPE\tCHAIN\tCONTRACT")
	for i, asset := range registry.All() {
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\n", i+1, asset.Type, asset.ChainID, contractColumn(asset))
	}
	return w.Flush()
}

package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ethereum/go-ethereum/common"

	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/migration"
)

func contractColumn(asset assets.Asset) string {
	if asset.Type == assets.TypeNative {
		return "-"
	}
	return asset.Address.Hex()
}

func printStatus(out io.Writer, status *migration.MigrationStatus) error {
	if status.Address == (common.Address{}) {
		fmt.Fprintln(out, "Legacy wallet: no legacy account")
	} else {
		fmt.Fprintf(out, "Legacy wallet: %s\n", status.Address.Hex())
	}
	if status.MigrationCompleted {
		fmt.Fprintln(out, "Migration completed: nothing left to migrate")
		return nil
	}
	fmt.Fprintf(out, "Assets to migrate: %d\n\n", len(status.AssetsToMigrate))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCHAIN\tCONTRACT")
	for _, asset := range status.AssetsToMigrate {
		fmt.Fprintf(w, "%s\t%d\t%s\n", asset.Type, asset.ChainID, contractColumn(asset))
	}
	return w.Flush()
}

func printReport(out io.Writer, report *migration.Report) error {
	fmt.Fprintf(out, "Sender:    %s\nRecipient: %s\n\n", report.Sender.Hex(), report.Recipient.Hex())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tCHAIN\tCONTRACT\tSTATUS\tTXS\tDETAIL")
	for _, o := range report.Outcomes {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n",
			o.Asset.Type, o.Asset.ChainID, contractColumn(o.Asset), o.Status, len(o.Transactions), o.Reason)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if txs := report.Transactions(); len(txs) > 0 {
		fmt.Fprintln(out, "\nTransactions:")
		for _, tx := range txs {
			fmt.Fprintf(out, "  nonce %d  %s\n", tx.Nonce, tx.Hash.Hex())
		}
	}

	failed := report.Failed()
	if len(failed) == 0 {
		fmt.Fprintln(out, "\nAll assets were attempted successfully.")
		return nil
	}
	kinds := make([]string, 0, len(failed))
	for _, o := range failed {
		kinds = append(kinds, o.Asset.String())
	}
	fmt.Fprintf(out, "\n%d asset(s) failed: %s. Run migrate again to retry.\n", len(failed), strings.Join(kinds, ", "))
	return nil
}

package migration

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog/log"

	"github.com/galxe/wallet-migrator/internal/metric"
	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/balance"
	chainclient "github.com/galxe/wallet-migrator/pkg/common/contracts/ethereum"
	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
)

// the native transfer leaves gas cost * 12/10 unspent
const (
	gasBufferNumerator   = 12
	gasBufferDenominator = 10
)

// Executor submits the transfers of a single asset. Its methods never
// return an error: every failure is reported in the Outcome.
type Executor struct {
	chains   chainclient.Manager
	balances *balance.Reader
}

func NewExecutor(chains chainclient.Manager, balances *balance.Reader) *Executor {
	return &Executor{chains: chains, balances: balances}
}

// Transfer moves a nonce-bound asset using nonces starting at nonce
func (e *Executor) Transfer(ctx context.Context, sender signer.Account, recipient common.Address, asset assets.Asset, nonce uint64) Outcome {
	var outcome Outcome
	switch asset.Type {
	case assets.TypeERC20:
		outcome = e.transferERC20(ctx, sender, recipient, asset, nonce)
	case assets.TypeERC721, assets.TypeERC1155:
		outcome = e.transferTokens(ctx, sender, recipient, asset, nonce)
	case assets.TypeNative:
		outcome = e.transferNative(ctx, sender, recipient, asset)
	default:
		outcome = failed(asset, fmt.Errorf("%w: %s", balance.ErrUnsupportedAssetType, asset.Type), nil)
	}
	return e.record(outcome)
}

// TransferNative moves the native balance minus the gas buffer using the
// sender's live nonce on the asset's chain
func (e *Executor) TransferNative(ctx context.Context, sender signer.Account, recipient common.Address, asset assets.Asset) Outcome {
	return e.record(e.transferNative(ctx, sender, recipient, asset))
}

func (e *Executor) transferERC20(ctx context.Context, sender signer.Account, recipient common.Address, asset assets.Asset, nonce uint64) Outcome {
	client, err := e.chains.GetClientByChainId(asset.ChainID)
	if err != nil {
		return failed(asset, err, nil)
	}

	amount, err := e.balances.GetBalance(ctx, asset.Type, sender.Address(), asset.ChainID, asset.Address)
	if err != nil {
		return failed(asset, err, nil)
	}
	if amount.Sign() == 0 {
		return skipped(asset, "zero balance")
	}

	opts := signer.TransactOpts(ctx, sender, client.ChainID(), nonce)
	tx, err := client.TransferERC20(opts, asset.Address, recipient, amount)
	if err != nil {
		return failed(asset, err, nil)
	}

	return migrated(asset, []TxRecord{{Hash: tx.Hash(), Nonce: tx.Nonce(), Amount: amount}})
}

// transferTokens sends one transaction per owned id. A failed submission
// stops the remaining ids.
func (e *Executor) transferTokens(ctx context.Context, sender signer.Account, recipient common.Address, asset assets.Asset, nonce uint64) Outcome {
	client, err := e.chains.GetClientByChainId(asset.ChainID)
	if err != nil {
		return failed(asset, err, nil)
	}

	owned, err := e.balances.GetOwnedTokenIDs(ctx, asset.Type, sender.Address(), asset.ChainID, asset.Address)
	if err != nil {
		return failed(asset, err, nil)
	}
	if len(owned) == 0 {
		return skipped(asset, "no owned tokens")
	}

	chainID := client.ChainID()
	txs := make([]TxRecord, 0, len(owned))
	for i, token := range owned {
		opts := signer.TransactOpts(ctx, sender, chainID, nonce+uint64(i))

		var (
			tx     *types.Transaction
			amount *big.Int
		)
		if asset.Type == assets.TypeERC721 {
			amount = big.NewInt(1)
			tx, err = client.TransferERC721(opts, asset.Address, sender.Address(), recipient, token.ID)
		} else {
			amount = token.Balance
			tx, err = client.TransferERC1155(opts, asset.Address, sender.Address(), recipient, token.ID, token.Balance)
		}
		if err != nil {
			return failed(asset, fmt.Errorf("token %s: %w", token.ID, err), txs)
		}
		txs = append(txs, TxRecord{Hash: tx.Hash(), Nonce: tx.Nonce(), TokenID: token.ID, Amount: amount})
	}

	return migrated(asset, txs)
}

func (e *Executor) transferNative(ctx context.Context, sender signer.Account, recipient common.Address, asset assets.Asset) Outcome {
	client, err := e.chains.GetClientByChainId(asset.ChainID)
	if err != nil {
		return failed(asset, err, nil)
	}

	funds, err := e.balances.GetBalance(ctx, assets.TypeNative, sender.Address(), asset.ChainID, common.Address{})
	if err != nil {
		return failed(asset, err, nil)
	}
	if funds.Sign() == 0 {
		return skipped(asset, "zero balance")
	}

	// provisional transfer of the full balance
	gas, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  sender.Address(),
		To:    &recipient,
		Value: funds,
	})
	if err != nil {
		return failed(asset, err, nil)
	}
	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return failed(asset, err, nil)
	}

	buffer := GasBuffer(gas, gasPrice)
	amount := new(big.Int).Sub(funds, buffer)
	switch amount.Sign() {
	case -1:
		return failed(asset, fmt.Errorf("%w: balance %s, buffer %s", ErrInsufficientForGas, funds, buffer), nil)
	case 0:
		return skipped(asset, "balance only covers gas")
	}

	nonce, err := client.NonceAt(ctx, sender.Address())
	if err != nil {
		return failed(asset, err, nil)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &recipient,
		Value:    amount,
		Gas:      gas,
		GasPrice: gasPrice,
	})
	signed, err := sender.SignTx(ctx, tx, client.ChainID())
	if err != nil {
		return failed(asset, err, nil)
	}
	if err := client.SendTransaction(ctx, signed); err != nil {
		return failed(asset, err, nil)
	}

	return migrated(asset, []TxRecord{{Hash: signed.Hash(), Nonce: nonce, Amount: amount}})
}

// GasBuffer returns ceil(gas * gasPrice * 1.2)
func GasBuffer(gas uint64, gasPrice *big.Int) *big.Int {
	cost := new(big.Int).Mul(new(big.Int).SetUint64(gas), gasPrice)
	buffer := cost.Mul(cost, big.NewInt(gasBufferNumerator))
	buffer.Add(buffer, big.NewInt(gasBufferDenominator-1))
	return buffer.Div(buffer, big.NewInt(gasBufferDenominator))
}

func (e *Executor) record(o Outcome) Outcome {
	metric.RecordTransfer(o.Asset.Type.String(), string(o.Status))

	switch o.Status {
	case StatusFailed:
		metric.RecordError("transfer_failed")
		log.Error().Err(o.Err).
			Str("asset", o.Asset.String()).
			Int("submitted", len(o.Transactions)).
			Msg("[Executor] transfer failed")
	case StatusSkipped:
		log.Debug().Str("asset", o.Asset.String()).Str("reason", o.Reason).Msg("[Executor] nothing to transfer")
	default:
		hashes := make([]string, len(o.Transactions))
		for i, tx := range o.Transactions {
			hashes[i] = tx.Hash.Hex()
		}
		log.Info().
			Str("asset", o.Asset.String()).
			Str("txs", strings.Join(hashes, ",")).
			Msg("[Executor] transfer submitted")
	}
	return o
}

package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/galxe/wallet-migrator/internal/metric"
	"github.com/galxe/wallet-migrator/pkg/assets"
	chainclient "github.com/galxe/wallet-migrator/pkg/common/contracts/ethereum"
	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
)

// Orchestrator runs a full migration of the registry from one sender
type Orchestrator struct {
	registry *assets.Registry
	chains   chainclient.Manager
	executor *Executor
}

func NewOrchestrator(registry *assets.Registry, chains chainclient.Manager, executor *Executor) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		chains:   chains,
		executor: executor,
	}
}

// Migrate transfers every registry asset held by sender to recipient.
//
// Nonce-bound assets run in registry order on the calling goroutine and share
// one nonce counter per chain, seeded from the chain on first use. Native
// assets run concurrently with their own live nonce. Per-asset failures are
// reported in the returned Report; only invalid parties return an error.
func (o *Orchestrator) Migrate(ctx context.Context, sender signer.Account, recipient common.Address) (*Report, error) {
	if err := validateParties(sender, recipient); err != nil {
		return nil, err
	}

	report := &Report{
		Sender:    sender.Address(),
		Recipient: recipient,
		StartedAt: time.Now(),
	}
	nonceBound, native := o.registry.Partition()

	log.Info().
		Str("sender", report.Sender.Hex()).
		Str("recipient", recipient.Hex()).
		Int("nonce_bound", len(nonceBound)).
		Int("native", len(native)).
		Msg("[Orchestrator] starting migration")

	nonceBoundOutcomes := o.migrateNonceBound(ctx, sender, recipient, nonceBound)
	nativeOutcomes := o.migrateNative(ctx, sender, recipient, native)

	// both groups preserve registry order, so merging restores it
	report.Outcomes = make([]Outcome, 0, o.registry.Len())
	for _, asset := range o.registry.All() {
		if asset.Type.NonceBound() {
			report.Outcomes = append(report.Outcomes, nonceBoundOutcomes[0])
			nonceBoundOutcomes = nonceBoundOutcomes[1:]
		} else {
			report.Outcomes = append(report.Outcomes, nativeOutcomes[0])
			nativeOutcomes = nativeOutcomes[1:]
		}
	}
	report.FinishedAt = time.Now()
	metric.RecordRunDuration(report.FinishedAt.Sub(report.StartedAt))

	log.Info().
		Str("sender", report.Sender.Hex()).
		Int("transactions", len(report.Transactions())).
		Int("failed", len(report.Failed())).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("[Orchestrator] migration finished")
	return report, nil
}

func (o *Orchestrator) migrateNonceBound(ctx context.Context, sender signer.Account, recipient common.Address, list []assets.Asset) []Outcome {
	// chain id -> next nonce, only for chains whose count was fetched
	nonces := make(map[uint64]uint64)
	outcomes := make([]Outcome, len(list))

	for i, asset := range list {
		nonce, ok := nonces[asset.ChainID]
		if !ok {
			fetched, err := o.fetchNonce(ctx, sender, asset.ChainID)
			if err != nil {
				metric.RecordError("nonce_fetch_failed")
				outcomes[i] = o.executor.record(failed(asset, err, nil))
				continue
			}
			nonce = fetched
		}

		outcomes[i] = o.executor.Transfer(ctx, sender, recipient, asset, nonce)
		nonces[asset.ChainID] = nonce + outcomes[i].NoncesUsed()
	}
	return outcomes
}

func (o *Orchestrator) migrateNative(ctx context.Context, sender signer.Account, recipient common.Address, list []assets.Asset) []Outcome {
	outcomes := make([]Outcome, len(list))

	var g errgroup.Group
	for i, asset := range list {
		i, asset := i, asset
		g.Go(func() error {
			outcomes[i] = o.executor.TransferNative(ctx, sender, recipient, asset)
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}

func (o *Orchestrator) fetchNonce(ctx context.Context, sender signer.Account, chainID uint64) (uint64, error) {
	client, err := o.chains.GetClientByChainId(chainID)
	if err != nil {
		return 0, fmt.Errorf("[Orchestrator] %w", err)
	}
	nonce, err := client.NonceAt(ctx, sender.Address())
	if err != nil {
		return 0, fmt.Errorf("[Orchestrator] failed to fetch nonce on chain %d: %w", chainID, err)
	}
	return nonce, nil
}

func validateParties(sender signer.Account, recipient common.Address) error {
	if sender == nil {
		return ErrMissingSender
	}
	if recipient == (common.Address{}) {
		return ErrMissingRecipient
	}
	if recipient == sender.Address() {
		return ErrSameAccount
	}
	return nil
}

package migration

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/galxe/wallet-migrator/internal/metric"
	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/balance"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

// MigrationStatus is derived on every evaluation and never stored
type MigrationStatus struct {
	Address            common.Address `json:"address"`
	MigrationCompleted bool           `json:"migration_completed"`
	AssetsToMigrate    []assets.Asset `json:"assets_to_migrate"`
}

// Evaluator decides which registry assets a legacy wallet still holds
type Evaluator struct {
	registry *assets.Registry
	balances *balance.Reader
	source   wallet.LegacyWalletSource
}

func NewEvaluator(registry *assets.Registry, balances *balance.Reader, source wallet.LegacyWalletSource) *Evaluator {
	return &Evaluator{
		registry: registry,
		balances: balances,
		source:   source,
	}
}

// Evaluate resolves identity to its legacy wallet and evaluates it. An
// identity without a legacy wallet is reported as completed with nothing
// to migrate.
func (e *Evaluator) Evaluate(ctx context.Context, identity string) (*MigrationStatus, error) {
	address, err := e.source.ResolveAddress(ctx, identity)
	if errors.Is(err, wallet.ErrAccountNotFound) {
		log.Info().Str("identity", identity).Msg("[Evaluator] no legacy account, treating as migrated")
		metric.RecordStatusCheck("no_account")
		return &MigrationStatus{MigrationCompleted: true, AssetsToMigrate: []assets.Asset{}}, nil
	}
	if err != nil {
		metric.RecordStatusCheck("error")
		return nil, fmt.Errorf("[Evaluator] failed to resolve legacy address: %w", err)
	}
	return e.EvaluateAddress(ctx, address)
}

// EvaluateAddress queries every registry asset concurrently. Any failed
// query fails the evaluation.
func (e *Evaluator) EvaluateAddress(ctx context.Context, address common.Address) (*MigrationStatus, error) {
	list := e.registry.All()
	amounts := make([]*big.Int, len(list))

	g, gctx := errgroup.WithContext(ctx)
	for i, asset := range list {
		i, asset := i, asset
		g.Go(func() error {
			amount, err := e.balances.Amount(gctx, asset, address)
			if err != nil {
				return fmt.Errorf("%s: %w", asset, err)
			}
			amounts[i] = amount
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metric.RecordStatusCheck("error")
		return nil, fmt.Errorf("[Evaluator] failed to evaluate %s: %w", address.Hex(), err)
	}

	status := &MigrationStatus{
		Address:         address,
		AssetsToMigrate: []assets.Asset{},
	}
	for i, asset := range list {
		if amounts[i] != nil && amounts[i].Sign() > 0 {
			status.AssetsToMigrate = append(status.AssetsToMigrate, asset)
		}
	}
	status.MigrationCompleted = len(status.AssetsToMigrate) == 0

	if status.MigrationCompleted {
		metric.RecordStatusCheck("completed")
	} else {
		metric.RecordStatusCheck("pending")
	}
	log.Debug().
		Str("address", address.Hex()).
		Int("assets_to_migrate", len(status.AssetsToMigrate)).
		Msg("[Evaluator] evaluated migration status")
	return status, nil
}

package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/galxe/wallet-migrator/internal/metric"
	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

// Service is the entry point used by the HTTP API and the CLI
type Service struct {
	registry     *assets.Registry
	source       wallet.LegacyWalletSource
	evaluator    *Evaluator
	orchestrator *Orchestrator
	tracker      *Tracker
}

type ServiceConfig struct {
	Registry     *assets.Registry
	Source       wallet.LegacyWalletSource
	Evaluator    *Evaluator
	Orchestrator *Orchestrator
	Tracker      *Tracker
}

func NewService(cfg *ServiceConfig) (*Service, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is nil")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("legacy wallet source is nil")
	}
	if cfg.Evaluator == nil {
		return nil, fmt.Errorf("evaluator is nil")
	}
	if cfg.Orchestrator == nil {
		return nil, fmt.Errorf("orchestrator is nil")
	}
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = NewTracker()
	}
	return &Service{
		registry:     cfg.Registry,
		source:       cfg.Source,
		evaluator:    cfg.Evaluator,
		orchestrator: cfg.Orchestrator,
		tracker:      tracker,
	}, nil
}

// Assets returns the registry in order
func (s *Service) Assets() []assets.Asset {
	return s.registry.All()
}

// Status evaluates the legacy wallet of identity
func (s *Service) Status(ctx context.Context, identity string) (*MigrationStatus, error) {
	return s.evaluator.Evaluate(ctx, identity)
}

// Migrate moves the legacy wallet's assets of identity to recipient. The run
// is complete once every asset was attempted; failures are in the report.
func (s *Service) Migrate(ctx context.Context, identity string, recipient common.Address) (*Report, error) {
	if err := s.tracker.Begin(identity); err != nil {
		return nil, err
	}

	report, err := s.migrate(ctx, identity, recipient)
	if err != nil {
		s.tracker.Abort(identity)
		metric.RecordError("migration_rejected")
		return nil, err
	}

	s.tracker.Finish(identity, report)
	return report, nil
}

func (s *Service) migrate(ctx context.Context, identity string, recipient common.Address) (*Report, error) {
	sender, err := s.source.ObtainSigner(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("[Service] failed to obtain legacy signer: %w", err)
	}
	if err := validateParties(sender, recipient); err != nil {
		return nil, err
	}

	status, err := s.evaluator.EvaluateAddress(ctx, sender.Address())
	if err != nil {
		return nil, err
	}
	if status.MigrationCompleted {
		log.Info().Str("identity", identity).Msg("[Service] nothing left to migrate")
		now := time.Now()
		report := &Report{
			Sender:     sender.Address(),
			Recipient:  recipient,
			StartedAt:  now,
			FinishedAt: now,
		}
		for _, asset := range s.registry.All() {
			report.Outcomes = append(report.Outcomes, skipped(asset, "nothing to migrate"))
		}
		return report, nil
	}

	// once transfers start the run is not abortable: a cancelled caller must
	// not leave a token batch half sent
	return s.orchestrator.Migrate(context.WithoutCancel(ctx), sender, recipient)
}

// RunState returns the state and last report of identity
func (s *Service) RunState(identity string) Run {
	return s.tracker.Get(identity)
}

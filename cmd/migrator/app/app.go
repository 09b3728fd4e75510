package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/galxe/wallet-migrator/internal/metric"
	"github.com/galxe/wallet-migrator/internal/zerolog"
	"github.com/galxe/wallet-migrator/pkg/api"
	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/balance"
	"github.com/galxe/wallet-migrator/pkg/common/contracts/ethereum"
	"github.com/galxe/wallet-migrator/pkg/config"
	"github.com/galxe/wallet-migrator/pkg/migration"
	"github.com/galxe/wallet-migrator/pkg/wallet"
	"github.com/galxe/wallet-migrator/pkg/wallet/privy"
	"github.com/galxe/wallet-migrator/pkg/wallet/venly"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	ctx        context.Context
	configPath string
	debug      bool

	cfg          *config.Config
	registry     *assets.Registry
	chainManager *ethereum.ChainManager
	source       wallet.LegacyWalletSource
	service      *migration.Service

	metricServer *metric.Server
	apiServer    *api.Server
}

func New(ctx context.Context, configPath string, debug bool) *App {
	return &App{
		ctx:        ctx,
		configPath: configPath,
		debug:      debug,
	}
}

// Init loads the configuration and builds the migration service. It does not
// start any server.
func (a *App) Init() error {
	if err := a.initConfig(); err != nil {
		return err
	}
	if err := a.initChainManager(); err != nil {
		return err
	}
	if err := a.initLegacySource(); err != nil {
		return err
	}
	return a.initService()
}

// LoadRegistry loads only the configuration and asset registry
func (a *App) LoadRegistry() (*assets.Registry, error) {
	if err := a.initConfig(); err != nil {
		return nil, err
	}
	return a.registry, nil
}

func (a *App) Service() *migration.Service {
	return a.service
}

// Serve starts the metric and API servers and blocks until ctx is done or a
// server fails.
func (a *App) Serve() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.initMetrics()
	a.initAPI()

	errChan := make(chan error, 2)
	go func() {
		if err := a.metricServer.Start(); err != nil {
			errChan <- fmt.Errorf("metric server: %w", err)
		}
	}()
	go func() {
		if err := a.apiServer.Start(a.ctx); err != nil {
			errChan <- fmt.Errorf("api server: %w", err)
		}
	}()
	log.Info().
		Str("host", a.cfg.HTTP.Host).
		Int("port", a.cfg.HTTP.Port).
		Int("metric_port", a.cfg.Metric.Port).
		Msg("Migrator is serving")

	select {
	case <-a.ctx.Done():
		return nil
	case err := <-errChan:
		metric.RecordError("server_failed")
		return err
	}
}

func (a *App) initConfig() error {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		metric.RecordError("config_load_failed")
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.cfg = cfg
	zerolog.InitLogger(a.debug, cfg.Logging.Level, cfg.Logging.Format)

	registry, err := assets.FromConfig(cfg.Assets)
	if err != nil {
		metric.RecordError("registry_load_failed")
		return fmt.Errorf("failed to load asset registry: %w", err)
	}
	a.registry = registry
	log.Info().Int("assets", registry.Len()).Int("chains", len(cfg.Chains)).Msg("Config loaded")
	return nil
}

func (a *App) initChainManager() error {
	used := a.registry.Chains()
	inRegistry := make(map[uint64]bool, len(used))
	for _, chainID := range used {
		inRegistry[chainID] = true
	}
	for chainID := range a.cfg.Chains {
		if !inRegistry[chainID] {
			log.Warn().Uint64("chain_id", chainID).Msg("Chain is configured but no asset uses it, not dialling")
		}
	}

	chainManager, err := ethereum.NewManager(a.ctx, a.cfg, used)
	if err != nil {
		metric.RecordError("chain_manager_init_failed")
		return fmt.Errorf("failed to init chain manager: %w", err)
	}
	a.chainManager = chainManager
	log.Info().Interface("chains", chainManager.ListChains()).Msg("Chain manager initialized")
	return nil
}

func (a *App) initLegacySource() error {
	source, err := NewLegacySource(a.cfg.Legacy)
	if err != nil {
		metric.RecordError("legacy_source_init_failed")
		return err
	}
	a.source = source
	log.Info().Str("provider", a.cfg.Legacy.Provider).Msg("Legacy wallet source initialized")
	return nil
}

// NewLegacySource builds the configured provider behind a lookup cache
func NewLegacySource(cfg config.LegacyConfig) (wallet.LegacyWalletSource, error) {
	var source wallet.LegacyWalletSource
	switch cfg.Provider {
	case config.ProviderPrivy:
		source = privy.NewSource(privy.NewClient(cfg.Privy))
	case config.ProviderVenly:
		source = venly.NewSource(venly.NewClient(cfg.Venly))
	case config.ProviderKeystore:
		source = wallet.NewKeystoreSource(cfg.Keystore)
	default:
		return nil, fmt.Errorf("unknown legacy provider %q", cfg.Provider)
	}
	if cfg.CacheTTL <= 0 {
		return source, nil
	}
	return wallet.NewCachedSource(source, cfg.CacheSizeMB*1024*1024, cfg.CacheTTL), nil
}

func (a *App) initService() error {
	reader := balance.NewReader(a.chainManager)
	executor := migration.NewExecutor(a.chainManager, reader)

	service, err := migration.NewService(&migration.ServiceConfig{
		Registry:     a.registry,
		Source:       a.source,
		Evaluator:    migration.NewEvaluator(a.registry, reader, a.source),
		Orchestrator: migration.NewOrchestrator(a.registry, a.chainManager, executor),
		Tracker:      migration.NewTracker(),
	})
	if err != nil {
		metric.RecordError("service_init_failed")
		return fmt.Errorf("failed to init migration service: %w", err)
	}
	a.service = service
	return nil
}

func (a *App) initMetrics() {
	a.metricServer = metric.New(&metric.Config{Port: a.cfg.Metric.Port})
}

func (a *App) initAPI() {
	handler := api.NewHandler(a.service, a.chainManager)
	a.apiServer = api.NewServer(handler, a.cfg.HTTP.Host, a.cfg.HTTP.Port, api.RouterConfig{
		RequestTimeout: a.cfg.HTTP.RequestTimeout,
		RateLimit:      a.cfg.HTTP.RateLimit,
		RateBurst:      a.cfg.HTTP.RateBurst,
	})
}

func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error
	if a.apiServer != nil {
		if err := a.apiServer.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("api server: %w", err))
		}
	}
	if a.metricServer != nil {
		if err := a.metricServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metric server: %w", err))
		}
	}
	if a.chainManager != nil {
		if err := a.chainManager.Close(); err != nil {
			errs = append(errs, fmt.Errorf("chain manager: %w", err))
		}
	}
	return errors.Join(errs...)
}

package ethereum

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/galxe/wallet-migrator/pkg/config"
)

// ChainManager holds one client per configured chain
type ChainManager struct {
	chains map[uint64]Client
	mu     sync.RWMutex
}

// NewManager dials the chains listed in chainIDs using the RPC endpoints
// of cfg. Configured chains that are not listed are left alone.
func NewManager(ctx context.Context, cfg *config.Config, chainIDs []uint64) (*ChainManager, error) {
	m := NewChainManagerWithClients(nil)

	for _, chainID := range chainIDs {
		chainCfg, ok := cfg.Chains[chainID]
		if !ok || chainCfg == nil {
			m.Close()
			return nil, fmt.Errorf("%w: %d has no rpc configured", ErrChainNotFound, chainID)
		}
		if err := m.AddChain(ctx, &Config{ChainID: chainID, RPCEndpoint: chainCfg.RPC}); err != nil {
			m.Close()
			return nil, fmt.Errorf("failed to initialize chain %d: %w", chainID, err)
		}
	}

	return m, nil
}

// NewChainManagerWithClients wraps already constructed clients
func NewChainManagerWithClients(clients map[uint64]Client) *ChainManager {
	m := &ChainManager{
		chains: make(map[uint64]Client, len(clients)),
	}
	for chainID, client := range clients {
		m.chains[chainID] = client
	}
	return m
}

// GetClientByChainId returns the chain instance for a given chain ID
func (m *ChainManager) GetClientByChainId(chainID uint64) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chain, exists := m.chains[chainID]
	if !exists {
		return nil, fmt.Errorf("%w: %d", ErrChainNotFound, chainID)
	}
	return chain, nil
}

// AddChain dials and adds a new chain
func (m *ChainManager) AddChain(ctx context.Context, config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.chains[config.ChainID]; exists {
		return fmt.Errorf("chain already exists: %d", config.ChainID)
	}

	chain, err := NewChainClient(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create chain: %w", err)
	}

	m.chains[config.ChainID] = chain
	return nil
}

// Close closes all chains
func (m *ChainManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for chainID, chain := range m.chains {
		if err := chain.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close chain %d: %w", chainID, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing chains: %v", errs)
	}
	return nil
}

// ListChains returns all available chain IDs in ascending order
func (m *ChainManager) ListChains() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	chainIDs := make([]uint64, 0, len(m.chains))
	for chainID := range m.chains {
		chainIDs = append(chainIDs, chainID)
	}
	sort.Slice(chainIDs, func(i, j int) bool { return chainIDs[i] < chainIDs[j] })
	return chainIDs
}

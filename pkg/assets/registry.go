package assets

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/galxe/wallet-migrator/pkg/config"
)

// Registry is the ordered, read-only list of assets a migration covers.
// Order decides nonce assignment for nonce-bound assets on a chain.
type Registry struct {
	assets []Asset
}

// NewRegistry validates and copies the given assets.
func NewRegistry(list ...Asset) (*Registry, error) {
	out := make([]Asset, len(list))
	for i, a := range list {
		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("asset %d (%s): %w", i, a, err)
		}
		out[i] = a
	}
	return &Registry{assets: out}, nil
}

// FromConfig builds a registry from configuration rows.
func FromConfig(rows []config.AssetConfig) (*Registry, error) {
	list := make([]Asset, 0, len(rows))
	for i, row := range rows {
		t, err := ParseType(row.Type)
		if err != nil {
			return nil, fmt.Errorf("asset %d: %w", i, err)
		}
		a := Asset{Type: t, ChainID: row.ChainID}
		if addr := strings.TrimSpace(row.Address); addr != "" {
			if !common.IsHexAddress(addr) {
				return nil, fmt.Errorf("asset %d: invalid address %q", i, addr)
			}
			a.Address = common.HexToAddress(addr)
		}
		list = append(list, a)
	}
	return NewRegistry(list...)
}

// All returns the assets in registry order.
func (r *Registry) All() []Asset {
	out := make([]Asset, len(r.assets))
	copy(out, r.assets)
	return out
}

func (r *Registry) Len() int { return len(r.assets) }

// Partition splits the registry into nonce-bound and native assets,
// preserving registry order within each group.
func (r *Registry) Partition() (nonceBound, native []Asset) {
	for _, a := range r.assets {
		if a.Type.NonceBound() {
			nonceBound = append(nonceBound, a)
		} else {
			native = append(native, a)
		}
	}
	return nonceBound, native
}

// Chains lists distinct chain ids in first-seen order.
func (r *Registry) Chains() []uint64 {
	seen := make(map[uint64]struct{})
	var ids []uint64
	for _, a := range r.assets {
		if _, ok := seen[a.ChainID]; ok {
			continue
		}
		seen[a.ChainID] = struct{}{}
		ids = append(ids, a.ChainID)
	}
	return ids
}

package wallet

import (
	"context"
	"time"

	"github.com/coocood/freecache"
	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog/log"

	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
)

const minCacheSize = 512 * 1024

// CachedSource memoizes resolved addresses of another source in freecache.
// Lookups that fail are not cached, and signers are always fetched fresh.
type CachedSource struct {
	source LegacyWalletSource
	cache  *freecache.Cache
	ttl    int
}

// NewCachedSource wraps source with a cache of sizeBytes holding entries for ttl.
func NewCachedSource(source LegacyWalletSource, sizeBytes int, ttl time.Duration) *CachedSource {
	if sizeBytes < minCacheSize {
		sizeBytes = minCacheSize
	}
	return &CachedSource{
		source: source,
		cache:  freecache.NewCache(sizeBytes),
		ttl:    ttlSeconds(ttl),
	}
}

// ttlSeconds rounds up: freecache reads an expiry of 0 as never expiring
func ttlSeconds(ttl time.Duration) int {
	return int((ttl + time.Second - 1) / time.Second)
}

func (s *CachedSource) ResolveAddress(ctx context.Context, identity string) (common.Address, error) {
	key := []byte(NormalizeIdentity(identity))
	if cached, err := s.cache.Get(key); err == nil && len(cached) == common.AddressLength {
		return common.BytesToAddress(cached), nil
	}

	addr, err := s.source.ResolveAddress(ctx, identity)
	if err != nil {
		return common.Address{}, err
	}

	if err := s.cache.Set(key, addr.Bytes(), s.ttl); err != nil {
		log.Warn().Err(err).Str("identity", identity).Msg("[CachedSource] failed to cache address")
	}
	return addr, nil
}

func (s *CachedSource) ObtainSigner(ctx context.Context, identity string) (signer.Account, error) {
	return s.source.ObtainSigner(ctx, identity)
}

// Invalidate drops the cached address of identity
func (s *CachedSource) Invalidate(identity string) {
	s.cache.Del([]byte(NormalizeIdentity(identity)))
}

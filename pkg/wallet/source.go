package wallet

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
)

// ErrAccountNotFound is returned when an identity has no legacy wallet
var ErrAccountNotFound = errors.New("legacy account not found")

// LegacyWalletSource resolves a user identity to the custodial wallet that
// holds the assets to migrate
type LegacyWalletSource interface {
	// ResolveAddress returns the legacy wallet address of identity
	ResolveAddress(ctx context.Context, identity string) (common.Address, error)
	// ObtainSigner returns an account able to sign for the legacy wallet
	ObtainSigner(ctx context.Context, identity string) (signer.Account, error)
}

// NormalizeIdentity lower-cases and trims an identity so lookups and cache
// keys agree regardless of how the user typed their email
func NormalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

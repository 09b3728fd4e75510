package venly

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

// Source resolves legacy wallets held in Venly, keyed by user reference.
// Only the user's first wallet is migrated.
type Source struct {
	client *Client
}

func NewSource(client *Client) *Source {
	return &Source{client: client}
}

func (s *Source) ResolveAddress(ctx context.Context, identity string) (common.Address, error) {
	w, err := s.wallet(ctx, identity)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(w.Address), nil
}

func (s *Source) ObtainSigner(ctx context.Context, identity string) (signer.Account, error) {
	w, err := s.wallet(ctx, identity)
	if err != nil {
		return nil, err
	}
	return &Account{
		client:   s.client,
		walletID: w.ID,
		address:  common.HexToAddress(w.Address),
	}, nil
}

func (s *Source) wallet(ctx context.Context, identity string) (*Wallet, error) {
	user, err := s.client.GetUserByReference(ctx, wallet.NormalizeIdentity(identity))
	if err != nil {
		return nil, err
	}
	wallets, err := s.client.GetWallets(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(wallets) == 0 || !common.IsHexAddress(wallets[0].Address) {
		return nil, fmt.Errorf("[Venly] %w: %s has no wallet", wallet.ErrAccountNotFound, identity)
	}
	return &wallets[0], nil
}

// Account signs through the Venly signature endpoint
type Account struct {
	client   *Client
	walletID string
	address  common.Address
}

func (a *Account) Address() common.Address {
	return a.address
}

func (a *Account) SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	raw, err := a.client.SignTransaction(ctx, a.walletID, tx, chainID)
	if err != nil {
		return nil, err
	}
	signed, err := wallet.DecodeSignedTx(raw, chainID, a.address)
	if err != nil {
		return nil, fmt.Errorf("[Venly] %w", err)
	}
	return signed, nil
}

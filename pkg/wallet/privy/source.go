package privy

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

// Source resolves legacy wallets held as Privy embedded wallets
type Source struct {
	client *Client
}

func NewSource(client *Client) *Source {
	return &Source{client: client}
}

func (s *Source) ResolveAddress(ctx context.Context, identity string) (common.Address, error) {
	account, err := s.embeddedWallet(ctx, identity)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(account.Address), nil
}

func (s *Source) ObtainSigner(ctx context.Context, identity string) (signer.Account, error) {
	account, err := s.embeddedWallet(ctx, identity)
	if err != nil {
		return nil, err
	}
	if account.ID == "" {
		return nil, fmt.Errorf("[Privy] embedded wallet of %s has no wallet id", identity)
	}
	return &Account{
		client:   s.client,
		walletID: account.ID,
		address:  common.HexToAddress(account.Address),
	}, nil
}

func (s *Source) embeddedWallet(ctx context.Context, identity string) (LinkedAccount, error) {
	user, err := s.client.GetUserByEmail(ctx, wallet.NormalizeIdentity(identity))
	if err != nil {
		return LinkedAccount{}, err
	}
	account, ok := user.EmbeddedWallet()
	if !ok || !common.IsHexAddress(account.Address) {
		return LinkedAccount{}, fmt.Errorf("[Privy] %w: %s has no embedded wallet", wallet.ErrAccountNotFound, identity)
	}
	return account, nil
}

// Account signs through the Privy wallet RPC endpoint
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
		return nil, fmt.Errorf("[Privy] %w", err)
	}
	return signed, nil
}

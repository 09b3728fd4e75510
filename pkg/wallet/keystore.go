package wallet

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
	"github.com/galxe/wallet-migrator/pkg/config"
)

// KeystoreSource serves legacy wallets kept as local keystore files or raw keys
type KeystoreSource struct {
	accounts map[string]config.KeystoreAccount
}

func NewKeystoreSource(cfg config.KeystoreConfig) *KeystoreSource {
	accounts := make(map[string]config.KeystoreAccount, len(cfg.Accounts))
	for identity, account := range cfg.Accounts {
		accounts[NormalizeIdentity(identity)] = account
	}
	return &KeystoreSource{accounts: accounts}
}

// ResolveAddress reads the address from the keystore file without decrypting it
func (s *KeystoreSource) ResolveAddress(ctx context.Context, identity string) (common.Address, error) {
	account, ok := s.accounts[NormalizeIdentity(identity)]
	if !ok {
		return common.Address{}, fmt.Errorf("[KeystoreSource] %w: %s", ErrAccountNotFound, identity)
	}

	if account.Path == "" {
		local, err := signer.NewLocalSigner(&signer.Config{PrivateKey: account.PrivateKey})
		if err != nil {
			return common.Address{}, fmt.Errorf("[KeystoreSource] failed to load key for %s: %w", identity, err)
		}
		return local.Address(), nil
	}

	data, err := os.ReadFile(account.Path)
	if err != nil {
		return common.Address{}, fmt.Errorf("[KeystoreSource] failed to read keystore: %w", err)
	}
	var header struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return common.Address{}, fmt.Errorf("[KeystoreSource] failed to parse keystore: %w", err)
	}
	if !common.IsHexAddress(header.Address) {
		return common.Address{}, fmt.Errorf("[KeystoreSource] keystore %s has invalid address %q", account.Path, header.Address)
	}
	return common.HexToAddress(header.Address), nil
}

func (s *KeystoreSource) ObtainSigner(ctx context.Context, identity string) (signer.Account, error) {
	account, ok := s.accounts[NormalizeIdentity(identity)]
	if !ok {
		return nil, fmt.Errorf("[KeystoreSource] %w: %s", ErrAccountNotFound, identity)
	}

	local, err := signer.NewLocalSigner(&signer.Config{
		KeystorePath: account.Path,
		Password:     account.Password,
		PrivateKey:   account.PrivateKey,
	})
	if err != nil {
		return nil, fmt.Errorf("[KeystoreSource] failed to load signer for %s: %w", identity, err)
	}
	return local, nil
}

package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// LocalSigner implements Account using a key held in memory
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address ethcommon.Address
}

// NewLocalSigner creates a new local signer from a keystore file or a raw key
func NewLocalSigner(cfg *Config) (*LocalSigner, error) {
	if cfg == nil || !cfg.IsValid() {
		return nil, fmt.Errorf("invalid signer config")
	}

	var key *ecdsa.PrivateKey
	if cfg.KeystorePath != "" {
		keyJson, err := os.ReadFile(cfg.KeystorePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read keystore file: %w", err)
		}
		decrypted, err := keystore.DecryptKey(keyJson, cfg.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt keystore: %w", err)
		}
		key = decrypted.PrivateKey
	} else {
		var err error
		key, err = crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(cfg.PrivateKey), "0x"))
		if err != nil {
			return nil, fmt.Errorf("failed to parse private key: %w", err)
		}
	}

	return &LocalSigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address implements Account
func (s *LocalSigner) Address() ethcommon.Address {
	return s.address
}

// SignTx implements Account
func (s *LocalSigner) SignTx(_ context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error) {
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}
	return signed, nil
}

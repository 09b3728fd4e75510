package signer

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Account is a transaction-signing identity on EVM chains. Implementations
// may hold the key locally or delegate signing to a remote custodian.
type Account interface {
	// Address returns the account address
	Address() ethcommon.Address
	// SignTx signs tx for the given chain
	SignTx(ctx context.Context, tx *types.Transaction, chainID *big.Int) (*types.Transaction, error)
}

// TransactOpts adapts an Account to go-ethereum contract bindings. The nonce
// is pinned so that callers control sequencing.
func TransactOpts(ctx context.Context, account Account, chainID *big.Int, nonce uint64) *bind.TransactOpts {
	from := account.Address()
	return &bind.TransactOpts{
		From:    from,
		Nonce:   new(big.Int).SetUint64(nonce),
		Context: ctx,
		Signer: func(addr ethcommon.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != from {
				return nil, bind.ErrNotAuthorized
			}
			return account.SignTx(ctx, tx, chainID)
		},
	}
}

package ethereum

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/galxe/wallet-migrator/pkg/common/contracts/bindings"
)

// Manager defines the interface for chain management
type Manager interface {
	// GetClientByChainId returns the client for a given chain ID
	GetClientByChainId(chainID uint64) (Client, error)
	// ListChains returns all configured chain IDs
	ListChains() []uint64
	// Close closes all chains
	Close() error
}

// Client defines the chain operations needed to read and move assets
type Client interface {
	// Basic methods
	ChainID() *big.Int
	NonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
	Close() error

	// Balance methods
	NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error)
	ERC20Balance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	ERC721Balance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	OwnedERC721(ctx context.Context, token, owner common.Address) ([]*big.Int, error)
	OwnedERC1155(ctx context.Context, token, owner common.Address) ([]bindings.TokenBalance, error)

	// Transfer methods
	TransferERC20(opts *bind.TransactOpts, token, to common.Address, amount *big.Int) (*types.Transaction, error)
	TransferERC721(opts *bind.TransactOpts, token, from, to common.Address, tokenID *big.Int) (*types.Transaction, error)
	TransferERC1155(opts *bind.TransactOpts, token, from, to common.Address, tokenID, amount *big.Int) (*types.Transaction, error)
}

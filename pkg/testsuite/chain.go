// Package testsuite holds test doubles shared by package tests.
package testsuite

import (
	"context"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"

	"github.com/galxe/wallet-migrator/pkg/common/contracts/bindings"
	ethclient "github.com/galxe/wallet-migrator/pkg/common/contracts/ethereum"
)

// MockChainManager mocks ethereum.Manager
type MockChainManager struct {
	mock.Mock
}

func (m *MockChainManager) GetClientByChainId(chainID uint64) (ethclient.Client, error) {
	args := m.Called(chainID)
	if v := args.Get(0); v != nil {
		return v.(ethclient.Client), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChainManager) ListChains() []uint64 {
	args := m.Called()
	return args.Get(0).([]uint64)
}

func (m *MockChainManager) Close() error {
	args := m.Called()
	return args.Error(0)
}

// NewMockChainManager returns a manager serving the given clients and
// ethclient.ErrChainNotFound for any other chain id
func NewMockChainManager(clients map[uint64]*MockChainClient) *MockChainManager {
	m := new(MockChainManager)
	ids := make([]uint64, 0, len(clients))
	for chainID, client := range clients {
		m.On("GetClientByChainId", chainID).Return(client, nil).Maybe()
		ids = append(ids, chainID)
	}
	m.On("GetClientByChainId", mock.Anything).Return(nil, ethclient.ErrChainNotFound).Maybe()
	m.On("ListChains").Return(ids).Maybe()
	m.On("Close").Return(nil).Maybe()
	return m
}

// MockChainClient mocks ethereum.Client.
// Transfer methods returning a nil transaction without error synthesize one
// carrying the nonce from the supplied TransactOpts.
type MockChainClient struct {
	mock.Mock
	chainID *big.Int
}

func NewMockChainClient(chainID uint64) *MockChainClient {
	mc := &MockChainClient{chainID: new(big.Int).SetUint64(chainID)}
	mc.On("Close").Return(nil).Maybe()
	return mc
}

func (m *MockChainClient) ChainID() *big.Int {
	return new(big.Int).Set(m.chainID)
}

func (m *MockChainClient) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	args := m.Called(ctx, account)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChainClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChainClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	args := m.Called(ctx, msg)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockChainClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockChainClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockChainClient) NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	args := m.Called(ctx, owner)
	if v := args.Get(0); v != nil {
		return v.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChainClient) ERC20Balance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	args := m.Called(ctx, token, owner)
	if v := args.Get(0); v != nil {
		return v.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChainClient) ERC721Balance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	args := m.Called(ctx, token, owner)
	if v := args.Get(0); v != nil {
		return v.(*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChainClient) OwnedERC721(ctx context.Context, token, owner common.Address) ([]*big.Int, error) {
	args := m.Called(ctx, token, owner)
	if v := args.Get(0); v != nil {
		return v.([]*big.Int), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChainClient) OwnedERC1155(ctx context.Context, token, owner common.Address) ([]bindings.TokenBalance, error) {
	args := m.Called(ctx, token, owner)
	if v := args.Get(0); v != nil {
		return v.([]bindings.TokenBalance), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockChainClient) TransferERC20(opts *bind.TransactOpts, token, to common.Address, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, token, to, amount)
	return txOrSynth(args, opts, token)
}

func (m *MockChainClient) TransferERC721(opts *bind.TransactOpts, token, from, to common.Address, tokenID *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, token, from, to, tokenID)
	return txOrSynth(args, opts, token)
}

func (m *MockChainClient) TransferERC1155(opts *bind.TransactOpts, token, from, to common.Address, tokenID, amount *big.Int) (*types.Transaction, error) {
	args := m.Called(opts, token, from, to, tokenID, amount)
	return txOrSynth(args, opts, token)
}

func txOrSynth(args mock.Arguments, opts *bind.TransactOpts, token common.Address) (*types.Transaction, error) {
	if err := args.Error(1); err != nil {
		return nil, err
	}
	if v := args.Get(0); v != nil {
		return v.(*types.Transaction), nil
	}
	var nonce uint64
	if opts != nil && opts.Nonce != nil {
		nonce = opts.Nonce.Uint64()
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &token,
		Gas:      60000,
		GasPrice: big.NewInt(1),
		Value:    new(big.Int),
	}), nil
}

// NonceOf matches TransactOpts pinned to the given nonce
func NonceOf(nonce uint64) interface{} {
	return mock.MatchedBy(func(opts *bind.TransactOpts) bool {
		return opts != nil && opts.Nonce != nil && opts.Nonce.Uint64() == nonce
	})
}

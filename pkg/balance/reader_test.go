package balance

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/common/contracts/bindings"
	"github.com/galxe/wallet-migrator/pkg/common/contracts/ethereum"
	"github.com/galxe/wallet-migrator/pkg/testsuite"
)

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	token = common.HexToAddress("0x00000000000000000000000000000000000000cc")
)

func newTestReader(t *testing.T) (*Reader, *testsuite.MockChainClient) {
	t.Helper()
	client := testsuite.NewMockChainClient(1)
	manager := testsuite.NewMockChainManager(map[uint64]*testsuite.MockChainClient{1: client})
	return NewReader(manager), client
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("native", func(t *testing.T) {
		r, client := newTestReader(t)
		client.On("NativeBalance", mock.Anything, owner).Return(big.NewInt(1e18), nil)

		got, err := r.GetBalance(ctx, assets.TypeNative, owner, 1, common.Address{})
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(1e18), got)
		client.AssertExpectations(t)
	})

	t.Run("erc20", func(t *testing.T) {
		r, client := newTestReader(t)
		client.On("ERC20Balance", mock.Anything, token, owner).Return(big.NewInt(100), nil)

		got, err := r.GetBalance(ctx, assets.TypeERC20, owner, 1, token)
		require.NoError(t, err)
		assert.Equal(t, int64(100), got.Int64())
	})

	t.Run("erc721 counts tokens", func(t *testing.T) {
		r, client := newTestReader(t)
		client.On("ERC721Balance", mock.Anything, token, owner).Return(big.NewInt(2), nil)

		got, err := r.GetBalance(ctx, assets.TypeERC721, owner, 1, token)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Int64())
	})

	t.Run("erc1155 sums owned ids", func(t *testing.T) {
		r, client := newTestReader(t)
		client.On("OwnedERC1155", mock.Anything, token, owner).Return([]bindings.TokenBalance{
			{TokenID: big.NewInt(0), Balance: big.NewInt(3)},
			{TokenID: big.NewInt(4), Balance: big.NewInt(7)},
		}, nil)

		got, err := r.GetBalance(ctx, assets.TypeERC1155, owner, 1, token)
		require.NoError(t, err)
		assert.Equal(t, int64(10), got.Int64())
	})

	t.Run("unknown chain", func(t *testing.T) {
		r, _ := newTestReader(t)
		_, err := r.GetBalance(ctx, assets.TypeNative, owner, 99, common.Address{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ethereum.ErrChainNotFound))
	})

	t.Run("rpc failure propagates", func(t *testing.T) {
		r, client := newTestReader(t)
		rpcErr := errors.New("connection refused")
		client.On("ERC20Balance", mock.Anything, token, owner).Return(nil, rpcErr)

		_, err := r.GetBalance(ctx, assets.TypeERC20, owner, 1, token)
		require.Error(t, err)
		assert.ErrorIs(t, err, rpcErr)
	})

	t.Run("unsupported type", func(t *testing.T) {
		r, _ := newTestReader(t)
		_, err := r.GetBalance(ctx, assets.Type("ERC777"), owner, 1, token)
		assert.ErrorIs(t, err, ErrUnsupportedAssetType)
	})
}

func TestGetOwnedTokenIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("erc721", func(t *testing.T) {
		r, client := newTestReader(t)
		client.On("OwnedERC721", mock.Anything, token, owner).Return([]*big.Int{big.NewInt(5), big.NewInt(9)}, nil)

		owned, err := r.GetOwnedTokenIDs(ctx, assets.TypeERC721, owner, 1, token)
		require.NoError(t, err)
		require.Len(t, owned, 2)
		assert.Equal(t, int64(5), owned[0].ID.Int64())
		assert.Nil(t, owned[0].Balance)
		assert.Equal(t, int64(9), owned[1].ID.Int64())
	})

	t.Run("erc1155 drops empty balances", func(t *testing.T) {
		r, client := newTestReader(t)
		client.On("OwnedERC1155", mock.Anything, token, owner).Return([]bindings.TokenBalance{
			{TokenID: big.NewInt(1), Balance: big.NewInt(0)},
			{TokenID: big.NewInt(2), Balance: big.NewInt(5)},
		}, nil)

		owned, err := r.GetOwnedTokenIDs(ctx, assets.TypeERC1155, owner, 1, token)
		require.NoError(t, err)
		require.Len(t, owned, 1)
		assert.Equal(t, int64(2), owned[0].ID.Int64())
		assert.Equal(t, int64(5), owned[0].Balance.Int64())
	})

	t.Run("fungible types are rejected", func(t *testing.T) {
		r, _ := newTestReader(t)
		for _, typ := range []assets.Type{assets.TypeERC20, assets.TypeNative} {
			_, err := r.GetOwnedTokenIDs(ctx, typ, owner, 1, token)
			assert.ErrorIs(t, err, ErrUnsupportedAssetType)
		}
	})
}

func TestAmount(t *testing.T) {
	ctx := context.Background()
	r, client := newTestReader(t)
	client.On("OwnedERC1155", mock.Anything, token, owner).Return([]bindings.TokenBalance{
		{TokenID: big.NewInt(1), Balance: big.NewInt(100)},
		{TokenID: big.NewInt(2), Balance: big.NewInt(5)},
	}, nil)
	client.On("ERC20Balance", mock.Anything, token, owner).Return(big.NewInt(42), nil)

	count, err := r.Amount(ctx, assets.Asset{Type: assets.TypeERC1155, ChainID: 1, Address: token}, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count.Int64())

	balance, err := r.Amount(ctx, assets.Asset{Type: assets.TypeERC20, ChainID: 1, Address: token}, owner)
	require.NoError(t, err)
	assert.Equal(t, int64(42), balance.Int64())
}

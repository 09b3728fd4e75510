package migration

import (
	"context"
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/common/contracts/bindings"
	"github.com/galxe/wallet-migrator/pkg/wallet"
)

var legacy = common.HexToAddress("0x00000000000000000000000000000000000000aa")

func TestEvaluateNoAccount(t *testing.T) {
	f := newFixture(t)
	source := new(mockSource)
	source.On("ResolveAddress", mock.Anything, "ghost@example.com").Return(common.Address{}, wallet.ErrAccountNotFound)

	status, err := f.evaluator(t, source, erc20A, nativeB).Evaluate(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.True(t, status.MigrationCompleted)
	assert.Empty(t, status.AssetsToMigrate)
	assert.Equal(t, common.Address{}, status.Address)

	encoded, err := json.Marshal(status)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"assets_to_migrate":[]`)
}

func TestEvaluateResolveFailure(t *testing.T) {
	f := newFixture(t)
	source := new(mockSource)
	source.On("ResolveAddress", mock.Anything, "alice@example.com").Return(common.Address{}, errRPCDown)

	_, err := f.evaluator(t, source, erc20A).Evaluate(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, errRPCDown)
}

func TestEvaluatePreservesRegistryOrder(t *testing.T) {
	f := newFixture(t)
	a, b := f.clients[chainA], f.clients[chainB]
	a.On("ERC20Balance", mock.Anything, tokenA, legacy).Return(big.NewInt(1), nil)
	a.On("ERC20Balance", mock.Anything, tokenA2, legacy).Return(big.NewInt(0), nil)
	a.On("OwnedERC721", mock.Anything, nftA, legacy).Return([]*big.Int{big.NewInt(3)}, nil)
	a.On("OwnedERC1155", mock.Anything, multiA, legacy).Return([]bindings.TokenBalance{{TokenID: big.NewInt(1), Balance: big.NewInt(0)}}, nil)
	b.On("NativeBalance", mock.Anything, legacy).Return(big.NewInt(1), nil)

	source := new(mockSource)
	source.On("ResolveAddress", mock.Anything, "alice@example.com").Return(legacy, nil)
	e := f.evaluator(t, source, nativeB, erc20A, erc20A2, erc1155A, erc721A)

	status, err := e.Evaluate(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, legacy, status.Address)
	assert.False(t, status.MigrationCompleted)
	assert.Equal(t, []assets.Asset{nativeB, erc20A, erc721A}, status.AssetsToMigrate)

	// idempotent without transfers in between
	again, err := e.Evaluate(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, status, again)
}

func TestEvaluateQueryFailure(t *testing.T) {
	f := newFixture(t)
	f.clients[chainA].On("ERC20Balance", mock.Anything, tokenA, legacy).Return(big.NewInt(5), nil)
	f.clients[chainB].On("NativeBalance", mock.Anything, legacy).Return(nil, errRPCDown)

	_, err := f.evaluator(t, new(mockSource), erc20A, nativeB).EvaluateAddress(context.Background(), legacy)
	assert.ErrorIs(t, err, errRPCDown)
}

func TestEvaluateZeroEverything(t *testing.T) {
	f := newFixture(t)
	f.clients[chainA].On("ERC20Balance", mock.Anything, tokenA, legacy).Return(big.NewInt(0), nil)
	f.clients[chainA].On("OwnedERC721", mock.Anything, nftA, legacy).Return([]*big.Int{}, nil)
	f.clients[chainB].On("NativeBalance", mock.Anything, legacy).Return(big.NewInt(0), nil)

	status, err := f.evaluator(t, new(mockSource), erc20A, erc721A, nativeB).EvaluateAddress(context.Background(), legacy)
	require.NoError(t, err)
	assert.True(t, status.MigrationCompleted)
	assert.Empty(t, status.AssetsToMigrate)
}

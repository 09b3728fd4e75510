package migration

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/balance"
	"github.com/galxe/wallet-migrator/pkg/common/crypto/signer"
	"github.com/galxe/wallet-migrator/pkg/testsuite"
)

const (
	chainA uint64 = 11155111
	chainB uint64 = 84532

	senderKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
)

var (
	tokenA     = common.HexToAddress("0x1000000000000000000000000000000000000001")
	tokenA2    = common.HexToAddress("0x1000000000000000000000000000000000000002")
	nftA       = common.HexToAddress("0x2000000000000000000000000000000000000001")
	multiA     = common.HexToAddress("0x3000000000000000000000000000000000000001")
	recipient  = common.HexToAddress("0x00000000000000000000000000000000000000bb")
	oneEther   = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	erc20A     = assets.Asset{Type: assets.TypeERC20, ChainID: chainA, Address: tokenA}
	erc20A2    = assets.Asset{Type: assets.TypeERC20, ChainID: chainA, Address: tokenA2}
	erc721A    = assets.Asset{Type: assets.TypeERC721, ChainID: chainA, Address: nftA}
	erc1155A   = assets.Asset{Type: assets.TypeERC1155, ChainID: chainA, Address: multiA}
	nativeA    = assets.Asset{Type: assets.TypeNative, ChainID: chainA}
	nativeB    = assets.Asset{Type: assets.TypeNative, ChainID: chainB}
	errRPCDown = errors.New("rpc unavailable")
)

type fixture struct {
	clients  map[uint64]*testsuite.MockChainClient
	manager  *testsuite.MockChainManager
	reader   *balance.Reader
	executor *Executor
	sender   *signer.LocalSigner
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	sender, err := signer.NewLocalSigner(&signer.Config{PrivateKey: senderKey})
	require.NoError(t, err)

	clients := map[uint64]*testsuite.MockChainClient{
		chainA: testsuite.NewMockChainClient(chainA),
		chainB: testsuite.NewMockChainClient(chainB),
	}
	manager := testsuite.NewMockChainManager(clients)
	reader := balance.NewReader(manager)
	return &fixture{
		clients:  clients,
		manager:  manager,
		reader:   reader,
		executor: NewExecutor(manager, reader),
		sender:   sender,
	}
}

func (f *fixture) orchestrator(t *testing.T, list ...assets.Asset) *Orchestrator {
	t.Helper()
	registry, err := assets.NewRegistry(list...)
	require.NoError(t, err)
	return NewOrchestrator(registry, f.manager, f.executor)
}

func (f *fixture) evaluator(t *testing.T, source *mockSource, list ...assets.Asset) *Evaluator {
	t.Helper()
	registry, err := assets.NewRegistry(list...)
	require.NoError(t, err)
	return NewEvaluator(registry, f.reader, source)
}

// captureSends records native transactions sent on chainID
func (f *fixture) captureSends(chainID uint64) *[]*types.Transaction {
	var sent []*types.Transaction
	f.clients[chainID].On("SendTransaction", mock.Anything, mock.AnythingOfType("*types.Transaction")).
		Run(func(args mock.Arguments) {
			sent = append(sent, args.Get(1).(*types.Transaction))
		}).
		Return(nil)
	return &sent
}

type mockSource struct {
	mock.Mock
}

func (m *mockSource) ResolveAddress(ctx context.Context, identity string) (common.Address, error) {
	args := m.Called(ctx, identity)
	return args.Get(0).(common.Address), args.Error(1)
}

func (m *mockSource) ObtainSigner(ctx context.Context, identity string) (signer.Account, error) {
	args := m.Called(ctx, identity)
	if v := args.Get(0); v != nil {
		return v.(signer.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func nonces(txs []TxRecord) []uint64 {
	out := make([]uint64, len(txs))
	for i, tx := range txs {
		out[i] = tx.Nonce
	}
	return out
}

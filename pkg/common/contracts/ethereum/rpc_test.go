package ethereum_test

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const (
	fakeGasPrice = 1_000_000_000
	fakeGasLimit = 100_000
)

// errRevert makes a fake contract method revert
var errRevert = fmt.Errorf("execution reverted")

type contractMethod func(args []interface{}) ([]interface{}, error)

type fakeContract struct {
	abi     *abi.ABI
	methods map[string]contractMethod
}

// fakeChain is a minimal JSON-RPC node: it serves the chain id, balances,
// nonces, gas values and eth_call against registered fake contracts, and
// records every raw transaction it receives.
type fakeChain struct {
	t         *testing.T
	chainID   uint64
	results   map[string]interface{}
	contracts map[common.Address]*fakeContract

	mu  sync.Mutex
	txs []*types.Transaction
}

func newFakeChain(t *testing.T, chainID uint64) *fakeChain {
	t.Helper()
	return &fakeChain{
		t:       t,
		chainID: chainID,
		results: map[string]interface{}{
			"eth_gasPrice":    hexutil.EncodeUint64(fakeGasPrice),
			"eth_estimateGas": hexutil.EncodeUint64(fakeGasLimit),
			"eth_getCode":     "0x6080",
		},
		contracts: make(map[common.Address]*fakeContract),
	}
}

// withContract registers methods served for address under the given ABI
func (c *fakeChain) withContract(address common.Address, parsed *abi.ABI, methods map[string]contractMethod) *fakeChain {
	c.contracts[address] = &fakeContract{abi: parsed, methods: methods}
	return c
}

func (c *fakeChain) withResult(method string, result interface{}) *fakeChain {
	c.results[method] = result
	return c
}

func (c *fakeChain) start() *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(c.serve))
	c.t.Cleanup(srv.Close)
	return srv
}

func (c *fakeChain) sent() []*types.Transaction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Transaction(nil), c.txs...)
}

type rpcRequest struct {
	ID     json.RawMessage   `json:"id"`
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (c *fakeChain) serve(w http.ResponseWriter, r *http.Request) {
	var req rpcRequest
	require.NoError(c.t, json.NewDecoder(r.Body).Decode(&req))

	result, rpcErr := c.dispatch(req)
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
	if rpcErr != nil {
		resp["error"] = rpcErr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	require.NoError(c.t, json.NewEncoder(w).Encode(resp))
}

func (c *fakeChain) dispatch(req rpcRequest) (interface{}, *rpcError) {
	switch req.Method {
	case "eth_chainId":
		return hexutil.EncodeUint64(c.chainID), nil
	case "eth_getBlockByNumber":
		// no base fee, so bindings build legacy transactions
		return &types.Header{
			Number:     big.NewInt(1),
			Difficulty: big.NewInt(0),
			GasLimit:   30_000_000,
		}, nil
	case "eth_call":
		return c.call(req.Params)
	case "eth_sendRawTransaction":
		var raw hexutil.Bytes
		require.NoError(c.t, json.Unmarshal(req.Params[0], &raw))
		tx := new(types.Transaction)
		require.NoError(c.t, tx.UnmarshalBinary(raw))
		c.mu.Lock()
		c.txs = append(c.txs, tx)
		c.mu.Unlock()
		return tx.Hash(), nil
	}
	if result, ok := c.results[req.Method]; ok {
		return result, nil
	}
	return nil, &rpcError{Code: -32601, Message: fmt.Sprintf("method %s not found", req.Method)}
}

func (c *fakeChain) call(params []json.RawMessage) (interface{}, *rpcError) {
	var msg struct {
		To    common.Address `json:"to"`
		Input hexutil.Bytes  `json:"input"`
	}
	require.NoError(c.t, json.Unmarshal(params[0], &msg))

	contract, ok := c.contracts[msg.To]
	if !ok || len(msg.Input) < 4 {
		return hexutil.Bytes{}, nil
	}
	method, err := contract.abi.MethodById(msg.Input[:4])
	require.NoError(c.t, err)

	handler, ok := contract.methods[method.Name]
	if !ok {
		return nil, &rpcError{Code: 3, Message: "execution reverted", Data: "0x"}
	}
	args, err := method.Inputs.Unpack(msg.Input[4:])
	require.NoError(c.t, err)

	out, err := handler(args)
	if err != nil {
		return nil, &rpcError{Code: 3, Message: err.Error(), Data: "0x"}
	}
	packed, err := method.Outputs.Pack(out...)
	require.NoError(c.t, err)
	return hexutil.Bytes(packed), nil
}

package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/galxe/wallet-migrator/pkg/common/contracts/bindings"
)

// JSON-RPC error code geth uses for reverted calls
const revertErrorCode = 3

// ChainClient wraps an RPC connection to a single chain and the token
// bindings used against it
type ChainClient struct {
	client  *ethclient.Client
	chainID *big.Int
}

// NewChainClient creates a new Ethereum client for a specific chain and
// checks that the endpoint serves the configured chain
func NewChainClient(ctx context.Context, cfg *Config) (*ChainClient, error) {
	ethClient, err := ethclient.DialContext(ctx, cfg.RPCEndpoint)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to connect to Ethereum node: %w", err)
	}

	remoteID, err := ethClient.ChainID(ctx)
	if err != nil {
		ethClient.Close()
		return nil, fmt.Errorf("[ChainClient] failed to get chain id: %w", err)
	}
	if remoteID.Uint64() != cfg.ChainID {
		ethClient.Close()
		return nil, fmt.Errorf("[ChainClient] %w: configured %d, rpc %s", ErrChainIDMismatch, cfg.ChainID, remoteID)
	}

	return &ChainClient{
		client:  ethClient,
		chainID: new(big.Int).SetUint64(cfg.ChainID),
	}, nil
}

// Close implements Client
func (c *ChainClient) Close() error {
	c.client.Close()
	return nil
}

// ChainID returns the chain id this client was verified against
func (c *ChainClient) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

// NonceAt returns the transaction count of account, pending transactions included
func (c *ChainClient) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := c.client.PendingNonceAt(ctx, account)
	if err != nil {
		return 0, fmt.Errorf("[ChainClient] failed to get nonce: %w", err)
	}
	return nonce, nil
}

func (c *ChainClient) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	price, err := c.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to suggest gas price: %w", err)
	}
	return price, nil
}

func (c *ChainClient) EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	gas, err := c.client.EstimateGas(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("[ChainClient] failed to estimate gas: %w", err)
	}
	return gas, nil
}

func (c *ChainClient) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.client.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("[ChainClient] failed to send transaction: %w", err)
	}
	return nil
}

// Balance methods

// NativeBalance returns the latest native coin balance in wei
func (c *ChainClient) NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	balance, err := c.client.BalanceAt(ctx, owner, nil)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to get native balance: %w", err)
	}
	return balance, nil
}

func (c *ChainClient) ERC20Balance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	erc20, err := bindings.NewERC20(token, c.client)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to create erc20 binding: %w", err)
	}
	balance, err := erc20.BalanceOf(&bind.CallOpts{Context: ctx}, owner)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to get erc20 balance: %w", err)
	}
	return balance, nil
}

func (c *ChainClient) ERC721Balance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	erc721, err := bindings.NewERC721(token, c.client)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to create erc721 binding: %w", err)
	}
	count, err := erc721.BalanceOf(&bind.CallOpts{Context: ctx}, owner)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to get erc721 balance: %w", err)
	}
	return count, nil
}

// OwnedERC721 enumerates owner's token ids through ERC721Enumerable. Tokens
// without tokenOfOwnerByIndex are scanned with ownerOf over
// [0, nextTokenIdToMint) instead.
func (c *ChainClient) OwnedERC721(ctx context.Context, token, owner common.Address) ([]*big.Int, error) {
	erc721, err := bindings.NewERC721(token, c.client)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to create erc721 binding: %w", err)
	}
	opts := &bind.CallOpts{Context: ctx}

	count, err := erc721.BalanceOf(opts, owner)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to get erc721 balance: %w", err)
	}
	if !count.IsUint64() {
		return nil, fmt.Errorf("[ChainClient] erc721 balance out of range: %s", count)
	}
	if count.Sign() == 0 {
		return nil, nil
	}

	ids := make([]*big.Int, 0, count.Uint64())
	for i := uint64(0); i < count.Uint64(); i++ {
		id, err := erc721.TokenOfOwnerByIndex(opts, owner, new(big.Int).SetUint64(i))
		if err != nil {
			if i == 0 && isRevert(err) {
				return c.scanERC721Owners(opts, erc721, owner, count.Uint64())
			}
			return nil, fmt.Errorf("[ChainClient] failed to get erc721 token at index %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// scanERC721Owners walks minted ids until want tokens of owner are found
func (c *ChainClient) scanERC721Owners(opts *bind.CallOpts, erc721 *bindings.ERC721, owner common.Address, want uint64) ([]*big.Int, error) {
	next, err := erc721.NextTokenIdToMint(opts)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] erc721 is not enumerable and has no nextTokenIdToMint: %w", err)
	}
	if !next.IsUint64() {
		return nil, fmt.Errorf("[ChainClient] erc721 token id range out of bounds: %s", next)
	}

	ids := make([]*big.Int, 0, want)
	for i := uint64(0); i < next.Uint64() && uint64(len(ids)) < want; i++ {
		id := new(big.Int).SetUint64(i)
		holder, err := erc721.OwnerOf(opts, id)
		if err != nil {
			// burned ids revert
			if isRevert(err) {
				continue
			}
			return nil, fmt.Errorf("[ChainClient] failed to get owner of erc721 token %d: %w", i, err)
		}
		if holder == owner {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// isRevert reports whether err is an EVM revert rather than a transport failure
func isRevert(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertErrorCode {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

// OwnedERC1155 scans ids [0, nextTokenIdToMint) with one balanceOfBatch call
// and returns the ids owner holds a positive balance of
func (c *ChainClient) OwnedERC1155(ctx context.Context, token, owner common.Address) ([]bindings.TokenBalance, error) {
	erc1155, err := bindings.NewERC1155(token, c.client)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to create erc1155 binding: %w", err)
	}
	opts := &bind.CallOpts{Context: ctx}

	next, err := erc1155.NextTokenIdToMint(opts)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to get erc1155 next token id: %w", err)
	}
	if !next.IsUint64() {
		return nil, fmt.Errorf("[ChainClient] erc1155 token id range out of bounds: %s", next)
	}
	if next.Sign() == 0 {
		return nil, nil
	}

	n := next.Uint64()
	owners := make([]common.Address, n)
	ids := make([]*big.Int, n)
	for i := uint64(0); i < n; i++ {
		owners[i] = owner
		ids[i] = new(big.Int).SetUint64(i)
	}

	balances, err := erc1155.BalanceOfBatch(opts, owners, ids)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to get erc1155 balances: %w", err)
	}

	var owned []bindings.TokenBalance
	for i, balance := range balances {
		if balance != nil && balance.Sign() > 0 {
			owned = append(owned, bindings.TokenBalance{TokenID: ids[i], Balance: balance})
		}
	}
	return owned, nil
}

// Transfer methods

func (c *ChainClient) TransferERC20(opts *bind.TransactOpts, token, to common.Address, amount *big.Int) (*types.Transaction, error) {
	erc20, err := bindings.NewERC20(token, c.client)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to create erc20 binding: %w", err)
	}
	tx, err := erc20.Transfer(opts, to, amount)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to transfer erc20: %w", err)
	}
	return tx, nil
}

func (c *ChainClient) TransferERC721(opts *bind.TransactOpts, token, from, to common.Address, tokenID *big.Int) (*types.Transaction, error) {
	erc721, err := bindings.NewERC721(token, c.client)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to create erc721 binding: %w", err)
	}
	tx, err := erc721.TransferFrom(opts, from, to, tokenID)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to transfer erc721 token %s: %w", tokenID, err)
	}
	return tx, nil
}

func (c *ChainClient) TransferERC1155(opts *bind.TransactOpts, token, from, to common.Address, tokenID, amount *big.Int) (*types.Transaction, error) {
	erc1155, err := bindings.NewERC1155(token, c.client)
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to create erc1155 binding: %w", err)
	}
	tx, err := erc1155.SafeTransferFrom(opts, from, to, tokenID, amount, []byte{})
	if err != nil {
		return nil, fmt.Errorf("[ChainClient] failed to transfer erc1155 token %s: %w", tokenID, err)
	}
	return tx, nil
}

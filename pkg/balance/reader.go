package balance

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/galxe/wallet-migrator/pkg/assets"
	"github.com/galxe/wallet-migrator/pkg/common/contracts/ethereum"
)

var ErrUnsupportedAssetType = errors.New("unsupported asset type")

// OwnedToken is one token id held by an owner. Balance is nil for ERC721.
type OwnedToken struct {
	ID      *big.Int `json:"id"`
	Balance *big.Int `json:"balance,omitempty"`
}

// Reader reads balances and token ownership from the configured chains.
// It does not retry; RPC failures are returned to the caller.
type Reader struct {
	chains ethereum.Manager
}

func NewReader(chains ethereum.Manager) *Reader {
	return &Reader{chains: chains}
}

// GetBalance returns the owned amount in the asset's smallest unit: wei for
// NATIVE, token units for ERC20, the number of tokens for ERC721 and the sum
// of all owned ids for ERC1155.
func (r *Reader) GetBalance(ctx context.Context, assetType assets.Type, owner common.Address, chainID uint64, contract common.Address) (*big.Int, error) {
	client, err := r.chains.GetClientByChainId(chainID)
	if err != nil {
		return nil, fmt.Errorf("[BalanceReader] %w", err)
	}

	var balance *big.Int
	switch assetType {
	case assets.TypeNative:
		balance, err = client.NativeBalance(ctx, owner)
	case assets.TypeERC20:
		balance, err = client.ERC20Balance(ctx, contract, owner)
	case assets.TypeERC721:
		balance, err = client.ERC721Balance(ctx, contract, owner)
	case assets.TypeERC1155:
		var owned []OwnedToken
		owned, err = r.ownedERC1155(ctx, client, contract, owner)
		balance = new(big.Int)
		for _, t := range owned {
			balance.Add(balance, t.Balance)
		}
	default:
		return nil, fmt.Errorf("[BalanceReader] %w: %s", ErrUnsupportedAssetType, assetType)
	}
	if err != nil {
		return nil, fmt.Errorf("[BalanceReader] failed to read %s balance on chain %d: %w", assetType, chainID, err)
	}
	if balance == nil {
		balance = new(big.Int)
	}
	return balance, nil
}

// GetOwnedTokenIDs enumerates the ids owner holds of a non-fungible contract.
func (r *Reader) GetOwnedTokenIDs(ctx context.Context, assetType assets.Type, owner common.Address, chainID uint64, contract common.Address) ([]OwnedToken, error) {
	if assetType != assets.TypeERC721 && assetType != assets.TypeERC1155 {
		return nil, fmt.Errorf("[BalanceReader] %w: %s", ErrUnsupportedAssetType, assetType)
	}

	client, err := r.chains.GetClientByChainId(chainID)
	if err != nil {
		return nil, fmt.Errorf("[BalanceReader] %w", err)
	}

	var owned []OwnedToken
	if assetType == assets.TypeERC721 {
		var ids []*big.Int
		ids, err = client.OwnedERC721(ctx, contract, owner)
		for _, id := range ids {
			owned = append(owned, OwnedToken{ID: id})
		}
	} else {
		owned, err = r.ownedERC1155(ctx, client, contract, owner)
	}
	if err != nil {
		return nil, fmt.Errorf("[BalanceReader] failed to enumerate %s tokens on chain %d: %w", assetType, chainID, err)
	}
	return owned, nil
}

// Amount is the quantity used to decide whether an asset still needs
// migrating: the balance for fungible assets and the number of owned ids
// for non-fungible ones.
func (r *Reader) Amount(ctx context.Context, asset assets.Asset, owner common.Address) (*big.Int, error) {
	switch asset.Type {
	case assets.TypeERC721, assets.TypeERC1155:
		owned, err := r.GetOwnedTokenIDs(ctx, asset.Type, owner, asset.ChainID, asset.Address)
		if err != nil {
			return nil, err
		}
		return big.NewInt(int64(len(owned))), nil
	default:
		return r.GetBalance(ctx, asset.Type, owner, asset.ChainID, asset.Address)
	}
}

func (r *Reader) ownedERC1155(ctx context.Context, client ethereum.Client, contract, owner common.Address) ([]OwnedToken, error) {
	balances, err := client.OwnedERC1155(ctx, contract, owner)
	if err != nil {
		return nil, err
	}
	owned := make([]OwnedToken, 0, len(balances))
	for _, b := range balances {
		if b.Balance == nil || b.Balance.Sign() <= 0 {
			continue
		}
		owned = append(owned, OwnedToken{ID: b.TokenID, Balance: b.Balance})
	}
	return owned, nil
}

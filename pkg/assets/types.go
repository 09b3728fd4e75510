package assets

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Type identifies how an asset is held and moved on chain.
type Type string

const (
	TypeERC20   Type = "ERC20"
	TypeERC721  Type = "ERC721"
	TypeERC1155 Type = "ERC1155"
	TypeNative  Type = "NATIVE"
)

var (
	ErrUnknownType    = errors.New("unknown asset type")
	ErrMissingAddress = errors.New("contract address is required for token assets")
	ErrUnexpectedAddr = errors.New("native assets must not carry a contract address")
	ErrMissingChainID = errors.New("chain id is required")
)

// ParseType accepts the registry spelling of a type, case-insensitively.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToUpper(strings.TrimSpace(s))); t {
	case TypeERC20, TypeERC721, TypeERC1155, TypeNative:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

func (t Type) String() string { return string(t) }

// NonceBound reports whether transfers of this type share the sender's
// per-chain nonce sequence with other assets in the same run.
func (t Type) NonceBound() bool {
	return t != TypeNative
}

// Asset is one migratable unit.
type Asset struct {
	Type    Type           `json:"type"`
	ChainID uint64         `json:"chain_id"`
	Address common.Address `json:"address,omitempty"`
}

// Validate enforces that Address is set iff the asset is a token.
func (a Asset) Validate() error {
	if _, err := ParseType(string(a.Type)); err != nil {
		return err
	}
	if a.ChainID == 0 {
		return ErrMissingChainID
	}
	hasAddr := a.Address != (common.Address{})
	if a.Type == TypeNative && hasAddr {
		return ErrUnexpectedAddr
	}
	if a.Type != TypeNative && !hasAddr {
		return ErrMissingAddress
	}
	return nil
}

func (a Asset) String() string {
	if a.Type == TypeNative {
		return fmt.Sprintf("%s@%d", a.Type, a.ChainID)
	}
	return fmt.Sprintf("%s:%s@%d", a.Type, a.Address.Hex(), a.ChainID)
}

// MarshalJSON drops the zero address for native assets.
func (a Asset) MarshalJSON() ([]byte, error) {
	type wire struct {
		Type    Type   `json:"type"`
		ChainID uint64 `json:"chain_id"`
		Address string `json:"address,omitempty"`
	}
	w := wire{Type: a.Type, ChainID: a.ChainID}
	if a.Type != TypeNative {
		w.Address = a.Address.Hex()
	}
	return json.Marshal(w)
}

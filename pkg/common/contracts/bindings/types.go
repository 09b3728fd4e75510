package bindings

import (
	"math/big"
)

// TokenBalance is one owned ERC-1155 id together with the owned amount.
type TokenBalance struct {
	TokenID *big.Int
	Balance *big.Int
}

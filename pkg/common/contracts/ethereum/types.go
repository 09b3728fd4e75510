package ethereum

import (
	"errors"
)

var (
	// ErrChainNotFound is returned for chain ids without a configured client
	ErrChainNotFound = errors.New("chain not found")
	// ErrChainIDMismatch is returned when an RPC serves a different chain than configured
	ErrChainIDMismatch = errors.New("rpc chain id does not match configured chain id")
)

// Config contains Ethereum client configuration
type Config struct {
	ChainID     uint64
	RPCEndpoint string
}

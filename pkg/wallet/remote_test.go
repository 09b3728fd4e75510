package wallet

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSignedTx(t *testing.T) {
	key, err := crypto.HexToECDSA(anvilKey)
	require.NoError(t, err)
	chainID := big.NewInt(84532)

	to := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	tx := types.NewTx(&types.LegacyTx{Nonce: 7, To: &to, Gas: 21000, GasPrice: big.NewInt(10), Value: big.NewInt(5)})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(chainID), key)
	require.NoError(t, err)
	raw, err := signed.MarshalBinary()
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		got, err := DecodeSignedTx(hexutil.Encode(raw), chainID, anvilAddress)
		require.NoError(t, err)
		assert.Equal(t, signed.Hash(), got.Hash())
		assert.Equal(t, uint64(7), got.Nonce())
	})

	t.Run("wrong signer", func(t *testing.T) {
		_, err := DecodeSignedTx(hexutil.Encode(raw), chainID, to)
		assert.Error(t, err)
	})

	t.Run("wrong chain", func(t *testing.T) {
		_, err := DecodeSignedTx(hexutil.Encode(raw), big.NewInt(1), anvilAddress)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := DecodeSignedTx("0xzz", chainID, anvilAddress)
		assert.Error(t, err)
	})
}

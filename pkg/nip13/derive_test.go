package nip13_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

func newTestPublicAccount(t *testing.T) symbol.PublicAccount {
	t.Helper()
	privateKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	account, err := symbol.NewPublicAccount(privateKey.PubKey(), symbol.Testnet)
	require.NoError(t, err)
	return account
}

func TestTokenNonce(t *testing.T) {
	target := newTestPublicAccount(t)
	operators := []symbol.Address{
		newTestPublicAccount(t).Address,
		newTestPublicAccount(t).Address,
	}

	t.Run("deterministic", func(t *testing.T) {
		first, err := nip13.TokenNonce(target, 1000, "AcmeShares", "Acme Corp", operators)
		require.NoError(t, err)
		second, err := nip13.TokenNonce(target, 1000, "AcmeShares", "Acme Corp", operators)
		require.NoError(t, err)
		require.Equal(t, first, second)

		firstId, err := nip13.TokenMosaicId(target, 1000, "AcmeShares", "Acme Corp", operators)
		require.NoError(t, err)
		secondId, err := nip13.TokenMosaicId(target, 1000, "AcmeShares", "Acme Corp", operators)
		require.NoError(t, err)
		require.Equal(t, firstId, secondId)
		require.Less(t, uint64(firstId), uint64(1)<<63)
	})

	t.Run("sensitive to every field", func(t *testing.T) {
		base, err := nip13.TokenNonce(target, 1000, "AcmeShares", "Acme Corp", operators)
		require.NoError(t, err)

		otherSupply, err := nip13.TokenNonce(target, 999, "AcmeShares", "Acme Corp", operators)
		require.NoError(t, err)
		require.NotEqual(t, base, otherSupply)

		otherName, err := nip13.TokenNonce(target, 1000, "OtherShares", "Acme Corp", operators)
		require.NoError(t, err)
		require.NotEqual(t, base, otherName)

		otherSource, err := nip13.TokenNonce(target, 1000, "AcmeShares", "Other Corp", operators)
		require.NoError(t, err)
		require.NotEqual(t, base, otherSource)

		otherOperators, err := nip13.TokenNonce(
			target, 1000, "AcmeShares", "Acme Corp", operators[:1],
		)
		require.NoError(t, err)
		require.NotEqual(t, base, otherOperators)

		otherTarget, err := nip13.TokenNonce(
			newTestPublicAccount(t), 1000, "AcmeShares", "Acme Corp", operators,
		)
		require.NoError(t, err)
		require.NotEqual(t, base, otherTarget)
	})

	t.Run("missing target", func(t *testing.T) {
		_, err := nip13.TokenNonce(symbol.PublicAccount{}, 1000, "AcmeShares", "Acme Corp", nil)
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing target account")
	})
}

func TestPartitionIndex(t *testing.T) {
	owner := newTestPublicAccount(t).Address

	t.Run("stable and bounded", func(t *testing.T) {
		first, err := nip13.PartitionIndex(owner)
		require.NoError(t, err)
		second, err := nip13.PartitionIndex(owner)
		require.NoError(t, err)
		require.Equal(t, first, second)
		require.Less(t, first, uint32(1)<<24)
	})

	t.Run("distinct owners", func(t *testing.T) {
		first, err := nip13.PartitionIndex(owner)
		require.NoError(t, err)
		second, err := nip13.PartitionIndex(newTestPublicAccount(t).Address)
		require.NoError(t, err)
		require.NotEqual(t, first, second)
	})

	t.Run("missing owner", func(t *testing.T) {
		_, err := nip13.PartitionIndex(symbol.Address{})
		require.Error(t, err)
	})
}

func TestPartitionPath(t *testing.T) {
	owner := newTestPublicAccount(t).Address

	path, err := nip13.PartitionPath(owner)
	require.NoError(t, err)
	require.True(t, nip13.IsValidPath(path))

	again, err := nip13.PartitionPath(owner)
	require.NoError(t, err)
	require.Equal(t, path, again)

	index, err := nip13.PartitionIndex(owner)
	require.NoError(t, err)
	expected, incErr := nip13.IncrementPathLevel(
		nip13.RootPath, nip13.PathLevelAddress, index,
	)
	require.NoError(t, incErr)
	require.Equal(t, expected, path)
}

package symbol_test

import (
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

func TestAggregateTransaction(t *testing.T) {
	target := newTestAccount(t)
	partition := newTestAccount(t)

	transfer, err := symbol.NewTransferTransaction(
		partition.Address, []symbol.Mosaic{{Id: 42, Amount: 1}}, "NIP13(v1):transfer:0123456789abcdef",
	)
	require.NoError(t, err)
	multisig := symbol.NewMultisigAccountModificationTransaction(
		1, 1, []symbol.Address{target.Address}, nil,
	)

	inners := []symbol.InnerTransaction{
		{Transaction: transfer, Signer: target.PublicAccount},
		{Transaction: multisig, Signer: partition.PublicAccount},
		{Transaction: transfer, Signer: target.PublicAccount},
	}

	t.Run("required cosigners", func(t *testing.T) {
		aggregate, err := symbol.NewAggregateTransaction(symbol.Testnet, inners, 0)
		require.NoError(t, err)

		cosigners := aggregate.RequiredCosigners()
		require.Len(t, cosigners, 2)
		require.Equal(t, target.PublicAccount, cosigners[0])
		require.Equal(t, partition.PublicAccount, cosigners[1])
	})

	t.Run("serialize round trip", func(t *testing.T) {
		aggregate, err := symbol.NewAggregateTransaction(symbol.Testnet, inners, 100)
		require.NoError(t, err)

		payload, err := aggregate.Serialize()
		require.NoError(t, err)
		require.NotEmpty(t, payload)

		parsed, err := symbol.ParseAggregateTransaction(payload)
		require.NoError(t, err)
		require.Equal(t, symbol.Testnet, parsed.Network)
		require.Equal(t, uint64(100), parsed.MaxFee)
		require.Len(t, parsed.Inners, len(inners))

		for i, inner := range parsed.Inners {
			require.Equal(t, inners[i].Transaction.Type(), inner.Transaction.Type())
			require.Equal(t, inners[i].Signer, inner.Signer)
		}

		parsedTransfer, ok := parsed.Inners[0].Transaction.(*symbol.TransferTransaction)
		require.True(t, ok)
		require.Equal(t, transfer.Recipient, parsedTransfer.Recipient)
		require.Equal(t, transfer.Mosaics, parsedTransfer.Mosaics)
		require.Equal(t, transfer.Message, parsedTransfer.Message)
	})

	t.Run("hash", func(t *testing.T) {
		aggregate, err := symbol.NewAggregateTransaction(symbol.Testnet, inners, 0)
		require.NoError(t, err)

		first, err := aggregate.Hash("generation-hash-a")
		require.NoError(t, err)
		second, err := aggregate.Hash("generation-hash-a")
		require.NoError(t, err)
		require.Equal(t, first, second)

		other, err := aggregate.Hash("generation-hash-b")
		require.NoError(t, err)
		require.NotEqual(t, first, other)
	})

	t.Run("invalid", func(t *testing.T) {
		t.Run("missing inners", func(t *testing.T) {
			_, err := symbol.NewAggregateTransaction(symbol.Testnet, nil, 0)
			require.Error(t, err)
			require.Contains(t, err.Error(), "missing inner transactions")
		})
		t.Run("missing transaction", func(t *testing.T) {
			_, err := symbol.NewAggregateTransaction(symbol.Testnet, []symbol.InnerTransaction{
				{Signer: target.PublicAccount},
			}, 0)
			require.Error(t, err)
			require.Contains(t, err.Error(), "missing transaction at index 0")
		})
		t.Run("missing signer", func(t *testing.T) {
			_, err := symbol.NewAggregateTransaction(symbol.Testnet, []symbol.InnerTransaction{
				{Transaction: transfer},
			}, 0)
			require.Error(t, err)
			require.Contains(t, err.Error(), "missing signer at index 0")
		})
		t.Run("invalid network", func(t *testing.T) {
			_, err := symbol.NewAggregateTransaction(symbol.NetworkType(0x00), inners, 0)
			require.Error(t, err)
			require.Contains(t, err.Error(), "invalid network type")
		})
		t.Run("unexpected envelope type", func(t *testing.T) {
			payload := fmt.Sprintf(
				`{"type":%d,"network":%d,"transactions":[]}`,
				symbol.TransactionTypeTransfer, symbol.Testnet,
			)
			_, err := symbol.ParseAggregateTransaction([]byte(payload))
			require.Error(t, err)
			require.Contains(t, err.Error(), "unexpected transaction type")
		})
	})
}

func newTestAccount(t *testing.T) *symbol.Account {
	t.Helper()
	privateKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	account, err := symbol.NewAccount(privateKey, symbol.Testnet)
	require.NoError(t, err)
	return account
}

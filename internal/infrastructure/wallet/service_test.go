package seedwallet_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	seedwallet "github.com/tokenstd/nip13d/internal/infrastructure/wallet"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

const testSeedHex = "000102030405060708090a0b0c0d0e0f"

func TestNewKeyProvider(t *testing.T) {
	fixtures := []struct {
		name    string
		seed    string
		network symbol.NetworkType
	}{
		{"missing seed", "", symbol.Testnet},
		{"malformed seed", "not-hex", symbol.Testnet},
		{"invalid network", testSeedHex, symbol.NetworkType(0x42)},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			provider, err := seedwallet.NewKeyProvider(f.seed, f.network)
			require.Error(t, err)
			require.Nil(t, provider)
		})
	}

	provider, err := seedwallet.NewKeyProvider(testSeedHex, symbol.Testnet)
	require.NoError(t, err)
	require.NotNil(t, provider)
	require.Equal(t, symbol.Testnet, provider.Network())
}

func TestDeriveAccount(t *testing.T) {
	provider, err := seedwallet.NewKeyProvider(testSeedHex, symbol.Testnet)
	require.NoError(t, err)

	target, err := provider.DeriveAccount("m/44'/4343'/0'/0'/0'")
	require.NoError(t, err)
	require.NotNil(t, target)
	require.True(t, strings.HasPrefix(target.Address.Plain(), symbol.Testnet.HRP()))

	sibling, err := provider.DeriveAccount("m/44'/4343'/1'/0'/0'")
	require.NoError(t, err)
	require.NotEqual(t, target.Address, sibling.Address)

	// Same seed, same path, same account.
	other, err := seedwallet.NewKeyProvider(testSeedHex, symbol.Testnet)
	require.NoError(t, err)
	again, err := other.DeriveAccount("m/44'/4343'/0'/0'/0'")
	require.NoError(t, err)
	require.Equal(t, target.PublicAccount, again.PublicAccount)

	_, err = provider.DeriveAccount("m/44/4343/0/0/0")
	require.Error(t, err)
}

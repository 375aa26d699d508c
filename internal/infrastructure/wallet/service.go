package seedwallet

import (
	"encoding/hex"
	"fmt"

	"github.com/tokenstd/nip13d/internal/core/ports"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

type service struct {
	wallet *symbol.Wallet
}

// NewKeyProvider builds the daemon's signing key provider from a hex encoded
// wallet seed. Every account the daemon signs with is derived from this seed,
// nothing else touches the key material.
func NewKeyProvider(seedHex string, network symbol.NetworkType) (ports.KeyProvider, error) {
	if len(seedHex) <= 0 {
		return nil, fmt.Errorf("missing wallet seed")
	}
	seed, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet seed: %s", err)
	}
	if !network.Valid() {
		return nil, fmt.Errorf("invalid network type 0x%x", byte(network))
	}

	wallet, err := symbol.NewWallet(seed, network)
	if err != nil {
		return nil, fmt.Errorf("failed to build wallet: %s", err)
	}
	return &service{wallet}, nil
}

func (s *service) DeriveAccount(path string) (*symbol.Account, error) {
	return s.wallet.DeriveAccount(path)
}

func (s *service) Network() symbol.NetworkType {
	return s.wallet.Network()
}

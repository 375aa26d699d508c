package symbol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// Wallet derives accounts from a seed along hardened BIP44-style paths.
type Wallet struct {
	master  *hdkeychain.ExtendedKey
	network NetworkType
}

// NewWallet builds an HD wallet from the given seed. Only the extended key
// version bytes of the chain params matter for derivation, so the bitcoin
// mainnet params are used regardless of the target network.
func NewWallet(seed []byte, network NetworkType) (*Wallet, error) {
	master, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}
	return &Wallet{master: master, network: network}, nil
}

func (w *Wallet) Network() NetworkType {
	return w.network
}

// DeriveAccount walks the given path ("m/44'/4343'/0'/0'/0'") from the master
// key and returns the account at the leaf. All levels must be hardened.
func (w *Wallet) DeriveAccount(path string) (*Account, error) {
	levels, err := ParsePathLevels(path)
	if err != nil {
		return nil, err
	}

	key := w.master
	for _, level := range levels {
		key, err = key.Derive(hdkeychain.HardenedKeyStart + level)
		if err != nil {
			return nil, err
		}
	}

	priv, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}
	return NewAccount(priv, w.network)
}

// ParsePathLevels splits a derivation path into its child indexes. Every
// level must carry the hardened marker and fit below 2^31.
func ParsePathLevels(path string) ([]uint32, error) {
	trimmed := strings.TrimSpace(path)
	if !strings.HasPrefix(trimmed, "m/") {
		return nil, fmt.Errorf("invalid derivation path: %s", path)
	}

	parts := strings.Split(strings.TrimPrefix(trimmed, "m/"), "/")
	levels := make([]uint32, 0, len(parts))
	for _, part := range parts {
		if !strings.HasSuffix(part, "'") {
			return nil, fmt.Errorf("derivation level %s is not hardened", part)
		}
		index, err := strconv.ParseUint(strings.TrimSuffix(part, "'"), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid derivation level %s", part)
		}
		if index >= hdkeychain.HardenedKeyStart {
			return nil, fmt.Errorf("derivation level %s out of range", part)
		}
		levels = append(levels, uint32(index))
	}
	return levels, nil
}

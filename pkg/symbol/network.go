package symbol

import "fmt"

// NetworkType identifies the target network of an address or transaction.
type NetworkType byte

const (
	Mainnet NetworkType = 0x68
	Testnet NetworkType = 0x98
)

func (n NetworkType) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("unknown (0x%x)", byte(n))
	}
}

// HRP returns the bech32 human readable prefix for addresses of this network.
func (n NetworkType) HRP() string {
	if n == Mainnet {
		return "nem"
	}
	return "tnem"
}

func (n NetworkType) Valid() bool {
	return n == Mainnet || n == Testnet
}

// NetworkTypeFromString parses a network name ("mainnet" or "testnet").
func NetworkTypeFromString(s string) (NetworkType, error) {
	switch s {
	case "mainnet":
		return Mainnet, nil
	case "testnet":
		return Testnet, nil
	default:
		return 0, fmt.Errorf("unknown network type: %s", s)
	}
}

// NetworkConfig carries the network-wide parameters every composed
// transaction depends on.
type NetworkConfig struct {
	Type             NetworkType
	GenerationHash   string
	CurrencyMosaicId MosaicId
}

package ports

import "github.com/tokenstd/nip13d/pkg/symbol"

// KeyProvider derives the deterministic accounts of the standard from a
// wallet seed. Derivation is pure, the provider holds no per-token state.
type KeyProvider interface {
	// DeriveAccount returns the signing account at the given hardened path.
	DeriveAccount(path string) (*symbol.Account, error)
	// Network returns the network accounts are derived for.
	Network() symbol.NetworkType
}

package domain

import "github.com/tokenstd/nip13d/pkg/symbol"

// TokenPartition is one partition account holding a share of the token on
// behalf of an owner. Partitions compare structurally: two values are the
// same partition iff all fields match.
type TokenPartition struct {
	Name    string
	Owner   symbol.Address
	Account symbol.PublicAccount
	Amount  uint64
}

func (p TokenPartition) IsZero() bool {
	return p == TokenPartition{}
}

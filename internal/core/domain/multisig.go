package domain

import "github.com/tokenstd/nip13d/pkg/symbol"

// MultisigInfo is one consolidated multisig account record, as flattened out
// of the nested cosignatory graph.
type MultisigInfo struct {
	Account     symbol.PublicAccount
	MinApproval int
	MinRemoval  int
	// Cosignatories are the accounts allowed to sign for this account.
	Cosignatories []symbol.Address
	// MultisigAddresses are the accounts this account cosigns for.
	MultisigAddresses []symbol.Address
}

func (m MultisigInfo) HasCosignatory(addr symbol.Address) bool {
	for _, cosignatory := range m.Cosignatories {
		if cosignatory == addr {
			return true
		}
	}
	return false
}

package domain

import "github.com/tokenstd/nip13d/pkg/symbol"

// MosaicInfo is the on-chain definition of the token's mosaic.
type MosaicInfo struct {
	Id           symbol.MosaicId
	Supply       uint64
	Owner        symbol.PublicAccount
	Divisibility uint8
	Flags        symbol.MosaicFlags
}

// MetadataEntry is one decoded metadata field attached to the token or one of
// its accounts. Field carries the well-known name when the scoped key is part
// of the standard's key registry, the raw hex key otherwise.
type MetadataEntry struct {
	Field  string
	Key    symbol.ScopedMetadataKey
	Value  string
	Target symbol.Address
}

// RestrictionEntry is one decoded restriction rule. Global entries have a
// zero Target and a comparison Type, address-scoped entries carry the
// restricted address and a plain value.
type RestrictionEntry struct {
	Field  string
	Key    symbol.ScopedMetadataKey
	Type   symbol.RestrictionType
	Value  uint64
	Target symbol.Address
}

// TransferRecord is one raw incoming transfer as reported by the network
// gateway, before marker filtering.
type TransferRecord struct {
	Sender    symbol.PublicAccount
	Recipient symbol.Address
	Mosaics   []symbol.Mosaic
	Message   string
}

func (r TransferRecord) AmountOf(id symbol.MosaicId) uint64 {
	for _, mosaic := range r.Mosaics {
		if mosaic.Id == id {
			return mosaic.Amount
		}
	}
	return 0
}

// TokenSnapshot is the reconstructed on-chain state of one token at
// synchronization time. Commands read it, never write it.
type TokenSnapshot struct {
	TokenId string
	Mosaic  MosaicInfo
	// Multisig is the consolidated cosignatory graph, top (least nested)
	// first.
	Multisig     []MultisigInfo
	Partitions   []TokenPartition
	Metadata     []MetadataEntry
	Restrictions []RestrictionEntry
	SyncedAt     int64
}

// Operators returns the cosignatories of the token's target account, the
// accounts allowed to act on the issuer's behalf.
func (s TokenSnapshot) Operators() []symbol.Address {
	if len(s.Multisig) == 0 {
		return nil
	}
	return s.Multisig[0].Cosignatories
}

func (s TokenSnapshot) IsOperator(addr symbol.Address) bool {
	if len(s.Multisig) == 0 {
		return false
	}
	return s.Multisig[0].HasCosignatory(addr)
}

// PartitionByOwner finds the partition held on behalf of the given owner.
func (s TokenSnapshot) PartitionByOwner(owner symbol.Address) *TokenPartition {
	for i := range s.Partitions {
		if s.Partitions[i].Owner == owner {
			return &s.Partitions[i]
		}
	}
	return nil
}

// PartitionByAccount finds the partition whose holding account matches the
// given address.
func (s TokenSnapshot) PartitionByAccount(addr symbol.Address) *TokenPartition {
	for i := range s.Partitions {
		if s.Partitions[i].Account.Address == addr {
			return &s.Partitions[i]
		}
	}
	return nil
}

// MetadataValue returns the current value of a well-known metadata field.
func (s TokenSnapshot) MetadataValue(field string) (string, bool) {
	for _, entry := range s.Metadata {
		if entry.Field == field {
			return entry.Value, true
		}
	}
	return "", false
}

// GlobalRestriction returns the network-wide restriction rule for a field.
func (s TokenSnapshot) GlobalRestriction(field string) *RestrictionEntry {
	for i := range s.Restrictions {
		if s.Restrictions[i].Field == field && s.Restrictions[i].Target.IsZero() {
			return &s.Restrictions[i]
		}
	}
	return nil
}

// AddressRestriction returns the restriction value scoped to one address.
func (s TokenSnapshot) AddressRestriction(field string, target symbol.Address) *RestrictionEntry {
	for i := range s.Restrictions {
		if s.Restrictions[i].Field == field && s.Restrictions[i].Target == target {
			return &s.Restrictions[i]
		}
	}
	return nil
}

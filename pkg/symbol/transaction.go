package symbol

import "fmt"

// TransactionType identifies a transaction kind on the wire.
type TransactionType uint16

const (
	TransactionTypeTransfer                    TransactionType = 0x4154
	TransactionTypeNamespaceRegistration       TransactionType = 0x414e
	TransactionTypeMosaicDefinition            TransactionType = 0x414d
	TransactionTypeMosaicSupplyChange          TransactionType = 0x424d
	TransactionTypeMosaicAlias                 TransactionType = 0x434e
	TransactionTypeMultisigAccountModification TransactionType = 0x4155
	TransactionTypeAccountMetadata             TransactionType = 0x4144
	TransactionTypeMosaicMetadata              TransactionType = 0x4244
	TransactionTypeAccountMosaicRestriction    TransactionType = 0x4250
	TransactionTypeMosaicGlobalRestriction     TransactionType = 0x4151
	TransactionTypeMosaicAddressRestriction    TransactionType = 0x4251
	TransactionTypeAggregateBonded             TransactionType = 0x4241
)

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeTransfer:
		return "transfer"
	case TransactionTypeNamespaceRegistration:
		return "namespace_registration"
	case TransactionTypeMosaicDefinition:
		return "mosaic_definition"
	case TransactionTypeMosaicSupplyChange:
		return "mosaic_supply_change"
	case TransactionTypeMosaicAlias:
		return "mosaic_alias"
	case TransactionTypeMultisigAccountModification:
		return "multisig_account_modification"
	case TransactionTypeAccountMetadata:
		return "account_metadata"
	case TransactionTypeMosaicMetadata:
		return "mosaic_metadata"
	case TransactionTypeAccountMosaicRestriction:
		return "account_mosaic_restriction"
	case TransactionTypeMosaicGlobalRestriction:
		return "mosaic_global_restriction"
	case TransactionTypeMosaicAddressRestriction:
		return "mosaic_address_restriction"
	case TransactionTypeAggregateBonded:
		return "aggregate_bonded"
	default:
		return fmt.Sprintf("unknown_%04x", uint16(t))
	}
}

// Transaction is implemented by every transaction kind that can be embedded
// in an aggregate.
type Transaction interface {
	Type() TransactionType
}

// MosaicFlags are the capability bits of a mosaic definition.
type MosaicFlags uint8

const (
	MosaicFlagSupplyMutable MosaicFlags = 1 << iota
	MosaicFlagTransferable
	MosaicFlagRestrictable
	MosaicFlagRevokable
)

func (f MosaicFlags) Has(flag MosaicFlags) bool {
	return f&flag == flag
}

// SupplyAction tells whether a supply change mints or burns units.
type SupplyAction uint8

const (
	SupplyActionDecrease SupplyAction = 0
	SupplyActionIncrease SupplyAction = 1
)

// AliasAction tells whether an alias transaction links or unlinks a name.
type AliasAction uint8

const (
	AliasActionUnlink AliasAction = 0
	AliasActionLink   AliasAction = 1
)

// RestrictionType is the comparison operator of a mosaic global restriction.
type RestrictionType uint8

const (
	RestrictionTypeNone RestrictionType = 0
	RestrictionTypeEq   RestrictionType = 1
	RestrictionTypeNe   RestrictionType = 2
	RestrictionTypeLt   RestrictionType = 3
	RestrictionTypeLe   RestrictionType = 4
	RestrictionTypeGt   RestrictionType = 5
	RestrictionTypeGe   RestrictionType = 6
)

func (r RestrictionType) String() string {
	switch r {
	case RestrictionTypeNone:
		return "NONE"
	case RestrictionTypeEq:
		return "EQ"
	case RestrictionTypeNe:
		return "NE"
	case RestrictionTypeLt:
		return "LT"
	case RestrictionTypeLe:
		return "LE"
	case RestrictionTypeGt:
		return "GT"
	case RestrictionTypeGe:
		return "GE"
	default:
		return fmt.Sprintf("UNKNOWN_%d", uint8(r))
	}
}

// RestrictionTypeFromString parses the symbolic name of a comparison rule.
func RestrictionTypeFromString(s string) (RestrictionType, error) {
	for _, restrictionType := range []RestrictionType{
		RestrictionTypeNone, RestrictionTypeEq, RestrictionTypeNe,
		RestrictionTypeLt, RestrictionTypeLe, RestrictionTypeGt, RestrictionTypeGe,
	} {
		if restrictionType.String() == s {
			return restrictionType, nil
		}
	}
	return RestrictionTypeNone, fmt.Errorf("unknown restriction type %s", s)
}

const maxMessageSize = 1023

// TransferTransaction moves mosaics between accounts, optionally carrying a
// plain-text message.
type TransferTransaction struct {
	Recipient Address  `json:"recipient"`
	Mosaics   []Mosaic `json:"mosaics"`
	Message   string   `json:"message,omitempty"`
}

func NewTransferTransaction(
	recipient Address, mosaics []Mosaic, message string,
) (*TransferTransaction, error) {
	if recipient.IsZero() {
		return nil, fmt.Errorf("missing recipient address")
	}
	if len(message) > maxMessageSize {
		return nil, fmt.Errorf(
			"message size %d exceeds the maximum of %d", len(message), maxMessageSize,
		)
	}
	return &TransferTransaction{
		Recipient: recipient,
		Mosaics:   mosaics,
		Message:   message,
	}, nil
}

func (t *TransferTransaction) Type() TransactionType {
	return TransactionTypeTransfer
}

// NamespaceRegistrationTransaction registers a root namespace or a
// sub-namespace under an existing parent.
type NamespaceRegistrationTransaction struct {
	Id       NamespaceId `json:"id"`
	ParentId NamespaceId `json:"parentId,omitempty"`
	Name     string      `json:"name"`
	Root     bool        `json:"root"`
	Duration uint64      `json:"duration,omitempty"`
}

func NewNamespaceRegistrationTransaction(
	name string, parent NamespaceId, duration uint64,
) (*NamespaceRegistrationTransaction, error) {
	id, err := NamespaceIdFromName(name, parent)
	if err != nil {
		return nil, err
	}
	return &NamespaceRegistrationTransaction{
		Id:       id,
		ParentId: parent,
		Name:     name,
		Root:     parent == 0,
		Duration: duration,
	}, nil
}

func (t *NamespaceRegistrationTransaction) Type() TransactionType {
	return TransactionTypeNamespaceRegistration
}

// MosaicDefinitionTransaction creates a new mosaic owned by the signer.
type MosaicDefinitionTransaction struct {
	Nonce        MosaicNonce `json:"nonce"`
	Id           MosaicId    `json:"id"`
	Flags        MosaicFlags `json:"flags"`
	Divisibility uint8       `json:"divisibility"`
	Duration     uint64      `json:"duration,omitempty"`
}

func NewMosaicDefinitionTransaction(
	nonce MosaicNonce, owner Address, flags MosaicFlags, divisibility uint8, duration uint64,
) (*MosaicDefinitionTransaction, error) {
	id, err := NewMosaicId(nonce, owner)
	if err != nil {
		return nil, err
	}
	return &MosaicDefinitionTransaction{
		Nonce:        nonce,
		Id:           id,
		Flags:        flags,
		Divisibility: divisibility,
		Duration:     duration,
	}, nil
}

func (t *MosaicDefinitionTransaction) Type() TransactionType {
	return TransactionTypeMosaicDefinition
}

// MosaicSupplyChangeTransaction mints or burns mosaic units.
type MosaicSupplyChangeTransaction struct {
	Id     MosaicId     `json:"mosaicId"`
	Action SupplyAction `json:"action"`
	Delta  uint64       `json:"delta"`
}

func NewMosaicSupplyChangeTransaction(
	id MosaicId, action SupplyAction, delta uint64,
) *MosaicSupplyChangeTransaction {
	return &MosaicSupplyChangeTransaction{Id: id, Action: action, Delta: delta}
}

func (t *MosaicSupplyChangeTransaction) Type() TransactionType {
	return TransactionTypeMosaicSupplyChange
}

// MosaicAliasTransaction links a namespace to a mosaic id.
type MosaicAliasTransaction struct {
	Action      AliasAction `json:"action"`
	NamespaceId NamespaceId `json:"namespaceId"`
	MosaicId    MosaicId    `json:"mosaicId"`
}

func NewMosaicAliasTransaction(
	action AliasAction, namespaceId NamespaceId, mosaicId MosaicId,
) *MosaicAliasTransaction {
	return &MosaicAliasTransaction{
		Action:      action,
		NamespaceId: namespaceId,
		MosaicId:    mosaicId,
	}
}

func (t *MosaicAliasTransaction) Type() TransactionType {
	return TransactionTypeMosaicAlias
}

// MultisigAccountModificationTransaction converts the signer into a multisig
// account or edits its cosignatory set.
type MultisigAccountModificationTransaction struct {
	MinApprovalDelta int8      `json:"minApprovalDelta"`
	MinRemovalDelta  int8      `json:"minRemovalDelta"`
	AddressAdditions []Address `json:"addressAdditions,omitempty"`
	AddressDeletions []Address `json:"addressDeletions,omitempty"`
}

func NewMultisigAccountModificationTransaction(
	minApprovalDelta, minRemovalDelta int8, additions, deletions []Address,
) *MultisigAccountModificationTransaction {
	return &MultisigAccountModificationTransaction{
		MinApprovalDelta: minApprovalDelta,
		MinRemovalDelta:  minRemovalDelta,
		AddressAdditions: additions,
		AddressDeletions: deletions,
	}
}

func (t *MultisigAccountModificationTransaction) Type() TransactionType {
	return TransactionTypeMultisigAccountModification
}

// AccountMetadataTransaction attaches a keyed value to an account.
type AccountMetadataTransaction struct {
	TargetAddress  Address           `json:"targetAddress"`
	Key            ScopedMetadataKey `json:"scopedMetadataKey"`
	ValueSizeDelta int16             `json:"valueSizeDelta"`
	Value          []byte            `json:"value"`
}

func NewAccountMetadataTransaction(
	target Address, key ScopedMetadataKey, valueSizeDelta int16, value []byte,
) *AccountMetadataTransaction {
	return &AccountMetadataTransaction{
		TargetAddress:  target,
		Key:            key,
		ValueSizeDelta: valueSizeDelta,
		Value:          value,
	}
}

func (t *AccountMetadataTransaction) Type() TransactionType {
	return TransactionTypeAccountMetadata
}

// MosaicMetadataTransaction attaches a keyed value to a mosaic.
type MosaicMetadataTransaction struct {
	TargetAddress  Address           `json:"targetAddress"`
	TargetMosaicId MosaicId          `json:"targetMosaicId"`
	Key            ScopedMetadataKey `json:"scopedMetadataKey"`
	ValueSizeDelta int16             `json:"valueSizeDelta"`
	Value          []byte            `json:"value"`
}

func NewMosaicMetadataTransaction(
	target Address, mosaicId MosaicId, key ScopedMetadataKey, valueSizeDelta int16, value []byte,
) *MosaicMetadataTransaction {
	return &MosaicMetadataTransaction{
		TargetAddress:  target,
		TargetMosaicId: mosaicId,
		Key:            key,
		ValueSizeDelta: valueSizeDelta,
		Value:          value,
	}
}

func (t *MosaicMetadataTransaction) Type() TransactionType {
	return TransactionTypeMosaicMetadata
}

// AccountMosaicRestrictionTransaction filters which mosaics the signing
// account may hold or transact.
type AccountMosaicRestrictionTransaction struct {
	Additions []MosaicId `json:"restrictionAdditions,omitempty"`
	Deletions []MosaicId `json:"restrictionDeletions,omitempty"`
}

func NewAccountMosaicRestrictionTransaction(
	additions, deletions []MosaicId,
) *AccountMosaicRestrictionTransaction {
	return &AccountMosaicRestrictionTransaction{
		Additions: additions,
		Deletions: deletions,
	}
}

func (t *AccountMosaicRestrictionTransaction) Type() TransactionType {
	return TransactionTypeAccountMosaicRestriction
}

// MosaicGlobalRestrictionTransaction sets a network-wide rule every holder of
// the mosaic must satisfy.
type MosaicGlobalRestrictionTransaction struct {
	MosaicId          MosaicId          `json:"mosaicId"`
	ReferenceMosaicId MosaicId          `json:"referenceMosaicId,omitempty"`
	Key               ScopedMetadataKey `json:"restrictionKey"`
	PreviousValue     uint64            `json:"previousRestrictionValue"`
	PreviousType      RestrictionType   `json:"previousRestrictionType"`
	NewValue          uint64            `json:"newRestrictionValue"`
	NewType           RestrictionType   `json:"newRestrictionType"`
}

func NewMosaicGlobalRestrictionTransaction(
	mosaicId MosaicId, key ScopedMetadataKey,
	prevValue uint64, prevType RestrictionType,
	newValue uint64, newType RestrictionType,
) *MosaicGlobalRestrictionTransaction {
	return &MosaicGlobalRestrictionTransaction{
		MosaicId:      mosaicId,
		Key:           key,
		PreviousValue: prevValue,
		PreviousType:  prevType,
		NewValue:      newValue,
		NewType:       newType,
	}
}

func (t *MosaicGlobalRestrictionTransaction) Type() TransactionType {
	return TransactionTypeMosaicGlobalRestriction
}

// MosaicAddressRestrictionTransaction sets a per-address value checked against
// the mosaic's global restriction rule.
type MosaicAddressRestrictionTransaction struct {
	MosaicId      MosaicId          `json:"mosaicId"`
	Key           ScopedMetadataKey `json:"restrictionKey"`
	TargetAddress Address           `json:"targetAddress"`
	PreviousValue uint64            `json:"previousRestrictionValue"`
	NewValue      uint64            `json:"newRestrictionValue"`
}

func NewMosaicAddressRestrictionTransaction(
	mosaicId MosaicId, key ScopedMetadataKey, target Address, prevValue, newValue uint64,
) *MosaicAddressRestrictionTransaction {
	return &MosaicAddressRestrictionTransaction{
		MosaicId:      mosaicId,
		Key:           key,
		TargetAddress: target,
		PreviousValue: prevValue,
		NewValue:      newValue,
	}
}

func (t *MosaicAddressRestrictionTransaction) Type() TransactionType {
	return TransactionTypeMosaicAddressRestriction
}

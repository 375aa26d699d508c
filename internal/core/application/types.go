package application

import (
	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// CommandKind enumerates the operations of the standard as a closed set, so
// dispatch is exhaustive at compile time instead of a string-keyed lookup.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandCreateToken
	CommandPublishToken
	CommandCreatePartition
	CommandTransferOwnership
	CommandTransferOwnershipWithData
	CommandBatchTransferOwnership
	CommandBatchTransferOwnershipWithData
	CommandForcedTransfer
	CommandLockBalance
	CommandUnlockBalance
	CommandModifyMetadata
	CommandModifyRestriction
	CommandDelegateIssuerPower
	CommandRevokeIssuerPower
	CommandAttachDocument
)

var commandNames = map[CommandKind]string{
	CommandCreateToken:                    "CreateToken",
	CommandPublishToken:                   "PublishToken",
	CommandCreatePartition:                "CreatePartition",
	CommandTransferOwnership:              "TransferOwnership",
	CommandTransferOwnershipWithData:      "TransferOwnershipWithData",
	CommandBatchTransferOwnership:         "BatchTransferOwnership",
	CommandBatchTransferOwnershipWithData: "BatchTransferOwnershipWithData",
	CommandForcedTransfer:                 "ForcedTransfer",
	CommandLockBalance:                    "LockBalance",
	CommandUnlockBalance:                  "UnlockBalance",
	CommandModifyMetadata:                 "ModifyMetadata",
	CommandModifyRestriction:              "ModifyRestriction",
	CommandDelegateIssuerPower:            "DelegateIssuerPower",
	CommandRevokeIssuerPower:              "RevokeIssuerPower",
	CommandAttachDocument:                 "AttachDocument",
}

func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Verb returns the descriptor verb commands of this kind embed in their
// marker messages.
func (k CommandKind) Verb() nip13.Verb {
	switch k {
	case CommandCreateToken:
		return nip13.VerbCreate
	case CommandPublishToken:
		return nip13.VerbPublish
	case CommandCreatePartition:
		return nip13.VerbPartition
	case CommandTransferOwnership, CommandTransferOwnershipWithData:
		return nip13.VerbTransfer
	case CommandBatchTransferOwnership, CommandBatchTransferOwnershipWithData:
		return nip13.VerbBatch
	case CommandForcedTransfer:
		return nip13.VerbForcedTransfer
	case CommandLockBalance:
		return nip13.VerbLock
	case CommandUnlockBalance:
		return nip13.VerbUnlock
	case CommandModifyMetadata:
		return nip13.VerbMetadata
	case CommandModifyRestriction:
		return nip13.VerbRestriction
	case CommandDelegateIssuerPower, CommandRevokeIssuerPower:
		return nip13.VerbAddOperator
	case CommandAttachDocument:
		return nip13.VerbDocument
	default:
		return nip13.VerbData
	}
}

// CommandKindFromName resolves a command name to its kind, failing with
// INVALID_COMMAND for unknown names.
func CommandKindFromName(name string) (CommandKind, errors.Error) {
	for kind, kindName := range commandNames {
		if kindName == name {
			return kind, nil
		}
	}
	return CommandUnknown, errors.INVALID_COMMAND.New(
		"unknown command %s", name,
	).WithMetadata(errors.CommandMetadata{Command: name})
}

// Option names recognized across commands. Each command declares which of
// these are mandatory.
const (
	OptionName         = "name"
	OptionSource       = "source"
	OptionOperators    = "operators"
	OptionSupply       = "supply"
	OptionMetadata     = "metadata"
	OptionDivisibility = "divisibility"
	OptionAccount      = "account"
	OptionRecipient    = "recipient"
	OptionSender       = "sender"
	OptionAmount       = "amount"
	OptionPartition    = "partition"
	OptionHolder       = "holder"
	OptionField        = "field"
	OptionValue        = "value"
	OptionRestrictee   = "restrictee"
	OptionType         = "type"
	OptionOperator     = "operator"
	OptionDocument     = "document"
	OptionData         = "data"
	OptionBatch        = "batch"
)

// Well-known metadata and restriction fields of the standard. On-chain they
// are keyed by their hashed scoped key, the registry below maps them back.
const (
	FieldName           = "Name"
	FieldSource         = "Source"
	FieldISIN           = "ISIN"
	FieldMarketCode     = "MIC"
	FieldClassification = "Class"
	FieldUserRole       = "User_Role"
)

// User_Role values assigned through address restrictions.
const (
	RoleTarget uint64 = 1
	RoleHolder uint64 = 2
	RoleLocker uint64 = 3

	// MaxUserRole is the global cap set at creation: only target and holder
	// roles may hold the token under normal operation.
	MaxUserRole uint64 = 2
)

var (
	fieldKeys map[string]symbol.ScopedMetadataKey
	keyFields map[symbol.ScopedMetadataKey]string
)

func init() {
	fields := []string{
		FieldName, FieldSource, FieldISIN, FieldMarketCode, FieldClassification,
		FieldUserRole,
	}
	fieldKeys = make(map[string]symbol.ScopedMetadataKey, len(fields))
	keyFields = make(map[symbol.ScopedMetadataKey]string, len(fields))
	for _, field := range fields {
		key, err := symbol.ScopedMetadataKeyFromName(field)
		if err != nil {
			panic(err)
		}
		fieldKeys[field] = key
		keyFields[key] = field
	}
}

// FieldKey returns the scoped key a field is stored under on-chain. Unknown
// fields hash to a fresh key, so custom fields are allowed.
func FieldKey(field string) (symbol.ScopedMetadataKey, error) {
	if key, ok := fieldKeys[field]; ok {
		return key, nil
	}
	return symbol.ScopedMetadataKeyFromName(field)
}

// KeyField maps a scoped key back to its well-known field name, or the hex
// form of the key when unknown.
func KeyField(key symbol.ScopedMetadataKey) string {
	if field, ok := keyFields[key]; ok {
		return field
	}
	return key.Hex()
}

// AllowanceResult is the outcome of a canExecute check. A negative result is
// not an error, execute converts it into OPERATION_FORBIDDEN.
type AllowanceResult struct {
	Allowed bool
	Reason  string
}

// ExecutionResult is the outcome of one successfully composed operation.
type ExecutionResult struct {
	ContractId string
	TokenId    string
	Command    string
	// URI is the serialized aggregate wrapped into a web+symbol link.
	URI  string
	Hash string
	// InnerCount is the number of inner transactions in the aggregate.
	InnerCount int
	// Cosigners are the distinct required cosigners, in signing order.
	Cosigners []symbol.PublicAccount
	// Aggregate is the composed transaction, unsigned.
	Aggregate *symbol.AggregateTransaction
}

// TokenInfo aggregates everything the daemon knows about one tracked token.
type TokenInfo struct {
	Token     domain.TrackedToken
	Snapshot  *domain.TokenSnapshot
	Contracts []domain.ContractRecord
}

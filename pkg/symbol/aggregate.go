package symbol

import (
	"encoding/json"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// InnerTransaction pairs a transaction with the account designated to sign it
// once the enclosing aggregate is announced.
type InnerTransaction struct {
	Transaction Transaction
	Signer      PublicAccount
}

// AggregateTransaction bonds an ordered list of inner transactions into one
// atomic unit. It is produced unsigned, every distinct inner signer must
// cosign before the network accepts it.
type AggregateTransaction struct {
	Network NetworkType
	Inners  []InnerTransaction
	MaxFee  uint64
}

func NewAggregateTransaction(
	network NetworkType, inners []InnerTransaction, maxFee uint64,
) (*AggregateTransaction, error) {
	if !network.Valid() {
		return nil, fmt.Errorf("invalid network type %d", network)
	}
	if len(inners) == 0 {
		return nil, fmt.Errorf("missing inner transactions")
	}
	for i, inner := range inners {
		if inner.Transaction == nil {
			return nil, fmt.Errorf("missing transaction at index %d", i)
		}
		if inner.Signer.IsZero() {
			return nil, fmt.Errorf("missing signer at index %d", i)
		}
	}
	return &AggregateTransaction{
		Network: network,
		Inners:  inners,
		MaxFee:  maxFee,
	}, nil
}

func (a *AggregateTransaction) Type() TransactionType {
	return TransactionTypeAggregateBonded
}

// RequiredCosigners returns the distinct inner signers in order of first
// appearance.
func (a *AggregateTransaction) RequiredCosigners() []PublicAccount {
	seen := make(map[string]struct{})
	cosigners := make([]PublicAccount, 0, len(a.Inners))
	for _, inner := range a.Inners {
		if _, ok := seen[inner.Signer.PublicKey]; ok {
			continue
		}
		seen[inner.Signer.PublicKey] = struct{}{}
		cosigners = append(cosigners, inner.Signer)
	}
	return cosigners
}

// Serialize encodes the aggregate as its canonical JSON payload.
func (a *AggregateTransaction) Serialize() ([]byte, error) {
	return json.Marshal(a)
}

// Hash computes the aggregate hash binding the payload to a network through
// its generation hash.
func (a *AggregateTransaction) Hash(generationHash string) (string, error) {
	payload, err := a.Serialize()
	if err != nil {
		return "", err
	}
	buf := make([]byte, 0, len(payload)+len(generationHash))
	buf = append(buf, payload...)
	buf = append(buf, []byte(generationHash)...)
	return chainhash.HashH(buf).String(), nil
}

type innerEnvelope struct {
	Type            TransactionType `json:"type"`
	SignerPublicKey string          `json:"signerPublicKey"`
	Body            json.RawMessage `json:"body"`
}

type aggregateEnvelope struct {
	Type         TransactionType `json:"type"`
	Network      NetworkType     `json:"network"`
	MaxFee       uint64          `json:"maxFee,omitempty"`
	Transactions []innerEnvelope `json:"transactions"`
}

func (a *AggregateTransaction) MarshalJSON() ([]byte, error) {
	envelope := aggregateEnvelope{
		Type:         TransactionTypeAggregateBonded,
		Network:      a.Network,
		MaxFee:       a.MaxFee,
		Transactions: make([]innerEnvelope, 0, len(a.Inners)),
	}
	for _, inner := range a.Inners {
		body, err := json.Marshal(inner.Transaction)
		if err != nil {
			return nil, err
		}
		envelope.Transactions = append(envelope.Transactions, innerEnvelope{
			Type:            inner.Transaction.Type(),
			SignerPublicKey: inner.Signer.PublicKey,
			Body:            body,
		})
	}
	return json.Marshal(envelope)
}

func (a *AggregateTransaction) UnmarshalJSON(buf []byte) error {
	var envelope aggregateEnvelope
	if err := json.Unmarshal(buf, &envelope); err != nil {
		return err
	}
	if envelope.Type != TransactionTypeAggregateBonded {
		return fmt.Errorf("unexpected transaction type %s", envelope.Type)
	}
	if !envelope.Network.Valid() {
		return fmt.Errorf("invalid network type %d", envelope.Network)
	}

	inners := make([]InnerTransaction, 0, len(envelope.Transactions))
	for i, wrapped := range envelope.Transactions {
		tx, err := emptyTransactionOfType(wrapped.Type)
		if err != nil {
			return fmt.Errorf("invalid transaction at index %d: %s", i, err)
		}
		if err := json.Unmarshal(wrapped.Body, tx); err != nil {
			return fmt.Errorf("invalid transaction at index %d: %s", i, err)
		}
		signer, err := PublicAccountFromKey(wrapped.SignerPublicKey, envelope.Network)
		if err != nil {
			return fmt.Errorf("invalid signer at index %d: %s", i, err)
		}
		inners = append(inners, InnerTransaction{Transaction: tx, Signer: signer})
	}

	a.Network = envelope.Network
	a.MaxFee = envelope.MaxFee
	a.Inners = inners
	return nil
}

// ParseAggregateTransaction decodes an aggregate from its canonical JSON
// payload.
func ParseAggregateTransaction(payload []byte) (*AggregateTransaction, error) {
	aggregate := &AggregateTransaction{}
	if err := json.Unmarshal(payload, aggregate); err != nil {
		return nil, err
	}
	if len(aggregate.Inners) == 0 {
		return nil, fmt.Errorf("missing inner transactions")
	}
	return aggregate, nil
}

func emptyTransactionOfType(t TransactionType) (Transaction, error) {
	switch t {
	case TransactionTypeTransfer:
		return &TransferTransaction{}, nil
	case TransactionTypeNamespaceRegistration:
		return &NamespaceRegistrationTransaction{}, nil
	case TransactionTypeMosaicDefinition:
		return &MosaicDefinitionTransaction{}, nil
	case TransactionTypeMosaicSupplyChange:
		return &MosaicSupplyChangeTransaction{}, nil
	case TransactionTypeMosaicAlias:
		return &MosaicAliasTransaction{}, nil
	case TransactionTypeMultisigAccountModification:
		return &MultisigAccountModificationTransaction{}, nil
	case TransactionTypeAccountMetadata:
		return &AccountMetadataTransaction{}, nil
	case TransactionTypeMosaicMetadata:
		return &MosaicMetadataTransaction{}, nil
	case TransactionTypeAccountMosaicRestriction:
		return &AccountMosaicRestrictionTransaction{}, nil
	case TransactionTypeMosaicGlobalRestriction:
		return &MosaicGlobalRestrictionTransaction{}, nil
	case TransactionTypeMosaicAddressRestriction:
		return &MosaicAddressRestrictionTransaction{}, nil
	default:
		return nil, fmt.Errorf("unsupported transaction type %s", t)
	}
}

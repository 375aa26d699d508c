package nip13

import (
	"fmt"
	"strconv"
	"strings"
)

// Verb is the operation tag embedded in a descriptor marker.
type Verb string

const (
	VerbCreate         Verb = "create"
	VerbPublish        Verb = "publish"
	VerbPartition      Verb = "partition"
	VerbTransfer       Verb = "transfer"
	VerbMetadata       Verb = "metadata"
	VerbRestriction    Verb = "restriction"
	VerbDocument       Verb = "document"
	VerbLock           Verb = "lock"
	VerbUnlock         Verb = "unlock"
	VerbForcedTransfer Verb = "forced-transfer"
	VerbAddOperator    Verb = "add-operator"
	VerbBatch          Verb = "batch"
	VerbData           Verb = "data"
)

func (v Verb) Valid() bool {
	switch v {
	case VerbCreate, VerbPublish, VerbPartition, VerbTransfer, VerbMetadata,
		VerbRestriction, VerbDocument, VerbLock, VerbUnlock, VerbForcedTransfer,
		VerbAddOperator, VerbBatch, VerbData:
		return true
	default:
		return false
	}
}

const markerPrefix = "NIP13"

// Marker returns the constant prefix identifying any descriptor of the
// current revision, the needle indexers scan transfer messages for.
func Marker() string {
	return fmt.Sprintf("%s(v%d)", markerPrefix, Revision)
}

// HasMarker reports whether a transfer message starts with the descriptor
// marker of the current revision.
func HasMarker(message string) bool {
	return strings.HasPrefix(message, Marker())
}

// Descriptor is the structured string embedded in composed transfer messages.
// Partition-registry reconstruction parses it back from on-chain transfers,
// so the encoded format is a wire contract.
type Descriptor struct {
	Revision int
	Verb     Verb
	TokenId  string
	Payload  []string
}

// NewDescriptor builds a descriptor of the current revision. Payload fields
// are appended after the token id, colon separated.
func NewDescriptor(verb Verb, tokenId string, payload ...string) Descriptor {
	return Descriptor{
		Revision: Revision,
		Verb:     verb,
		TokenId:  tokenId,
		Payload:  payload,
	}
}

func (d Descriptor) String() string {
	fields := make([]string, 0, 3+len(d.Payload))
	fields = append(fields,
		fmt.Sprintf("%s(v%d)", markerPrefix, d.Revision),
		string(d.Verb),
		d.TokenId,
	)
	fields = append(fields, d.Payload...)
	return strings.Join(fields, ":")
}

// ParseDescriptor decodes a transfer message back into a descriptor.
func ParseDescriptor(message string) (Descriptor, error) {
	parts := strings.Split(message, ":")
	if len(parts) < 3 {
		return Descriptor{}, fmt.Errorf("malformed descriptor %s", message)
	}

	head := parts[0]
	if !strings.HasPrefix(head, markerPrefix+"(v") || !strings.HasSuffix(head, ")") {
		return Descriptor{}, fmt.Errorf("missing %s marker in %s", markerPrefix, message)
	}
	revision, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(head, markerPrefix+"(v"), ")"))
	if err != nil {
		return Descriptor{}, fmt.Errorf("invalid revision in descriptor %s", message)
	}

	verb := Verb(parts[1])
	if !verb.Valid() {
		return Descriptor{}, fmt.Errorf("unknown verb %s in descriptor %s", parts[1], message)
	}
	if len(parts[2]) == 0 {
		return Descriptor{}, fmt.Errorf("missing token id in descriptor %s", message)
	}

	descriptor := Descriptor{
		Revision: revision,
		Verb:     verb,
		TokenId:  parts[2],
	}
	if len(parts) > 3 {
		descriptor.Payload = parts[3:]
	}
	return descriptor, nil
}

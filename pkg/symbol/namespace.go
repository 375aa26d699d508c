package symbol

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// namespaceIdFlag is the high bit distinguishing namespace ids from mosaic ids.
const namespaceIdFlag uint64 = 1 << 63

const maxNamespaceDepth = 3

// NamespaceId is the 64-bit identifier of a (sub)namespace.
type NamespaceId uint64

func (n NamespaceId) Hex() string {
	return fmt.Sprintf("%016x", uint64(n))
}

// NamespaceIdFromName derives the id of a single namespace segment under the
// given parent (0 for a root namespace).
func NamespaceIdFromName(name string, parent NamespaceId) (NamespaceId, error) {
	if err := validateNamespaceName(name); err != nil {
		return 0, err
	}

	parentBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(parentBytes, uint64(parent))

	hasher := sha3.New256()
	// nolint:errcheck
	hasher.Write(parentBytes)
	hasher.Write([]byte(name))
	digest := hasher.Sum(nil)

	id := binary.LittleEndian.Uint64(digest[:8]) | namespaceIdFlag
	return NamespaceId(id), nil
}

// NamespacePath resolves the ids of every level of a dot-separated namespace
// name, root first.
func NamespacePath(fullName string) ([]NamespaceId, error) {
	segments := strings.Split(fullName, ".")
	if len(segments) > maxNamespaceDepth {
		return nil, fmt.Errorf(
			"namespace %s exceeds the maximum depth of %d", fullName, maxNamespaceDepth,
		)
	}

	path := make([]NamespaceId, 0, len(segments))
	parent := NamespaceId(0)
	for _, segment := range segments {
		id, err := NamespaceIdFromName(segment, parent)
		if err != nil {
			return nil, err
		}
		path = append(path, id)
		parent = id
	}
	return path, nil
}

func validateNamespaceName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("missing namespace name")
	}
	if len(name) > 64 {
		return fmt.Errorf("namespace name %s exceeds 64 characters", name)
	}
	for i, r := range name {
		isLower := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		isSeparator := r == '_' || r == '-'
		if i == 0 && !isLower && !isDigit {
			return fmt.Errorf("namespace name %s must start with a letter or digit", name)
		}
		if !isLower && !isDigit && !isSeparator {
			return fmt.Errorf("invalid character %q in namespace name %s", r, name)
		}
	}
	return nil
}

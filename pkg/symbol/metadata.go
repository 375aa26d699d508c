package symbol

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// ScopedMetadataKey is the 64-bit key under which a metadata value is attached
// to an account or mosaic.
type ScopedMetadataKey uint64

// ScopedMetadataKeyFromName derives a metadata key from a human-readable name.
func ScopedMetadataKeyFromName(name string) (ScopedMetadataKey, error) {
	if len(name) == 0 {
		return 0, fmt.Errorf("missing metadata key name")
	}

	digest := sha3.Sum256([]byte(name))
	key := binary.LittleEndian.Uint64(digest[:8]) | namespaceIdFlag
	return ScopedMetadataKey(key), nil
}

func ScopedMetadataKeyFromHex(s string) (ScopedMetadataKey, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("invalid metadata key length, got %d want 16", len(s))
	}
	key, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid metadata key format, must be hex")
	}
	return ScopedMetadataKey(key), nil
}

func (k ScopedMetadataKey) Hex() string {
	return fmt.Sprintf("%016x", uint64(k))
}

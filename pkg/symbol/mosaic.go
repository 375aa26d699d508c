package symbol

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"golang.org/x/crypto/sha3"
)

// MosaicNonce is the 4-byte nonce a mosaic id is derived from.
type MosaicNonce [4]byte

// MosaicNonceFromBytes copies the left-most 4 bytes of buf into a nonce.
func MosaicNonceFromBytes(buf []byte) (MosaicNonce, error) {
	if len(buf) < 4 {
		return MosaicNonce{}, fmt.Errorf("invalid nonce length, got %d want at least 4", len(buf))
	}
	var nonce MosaicNonce
	copy(nonce[:], buf[:4])
	return nonce, nil
}

func (n MosaicNonce) Uint32() uint32 {
	return binary.LittleEndian.Uint32(n[:])
}

func (n MosaicNonce) Hex() string {
	return fmt.Sprintf("%02x%02x%02x%02x", n[0], n[1], n[2], n[3])
}

// MosaicId is the 63-bit identifier of a mosaic.
type MosaicId uint64

// NewMosaicId computes the deterministic mosaic id owned by the given
// address: the left-most 8 bytes of sha3-256(nonce || address payload), with
// the high bit cleared so the id never collides with namespace ids.
func NewMosaicId(nonce MosaicNonce, owner Address) (MosaicId, error) {
	ownerBytes, err := owner.Bytes()
	if err != nil {
		return 0, err
	}

	hasher := sha3.New256()
	// nolint:errcheck
	hasher.Write(nonce[:])
	hasher.Write(ownerBytes)
	digest := hasher.Sum(nil)

	id := binary.LittleEndian.Uint64(digest[:8]) &^ namespaceIdFlag
	return MosaicId(id), nil
}

// MosaicIdFromHex parses a 16-char hex mosaic id.
func MosaicIdFromHex(s string) (MosaicId, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("invalid mosaic id length, got %d want 16", len(s))
	}
	id, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mosaic id format, must be hex")
	}
	return MosaicId(id), nil
}

func (m MosaicId) Hex() string {
	return fmt.Sprintf("%016x", uint64(m))
}

func (m MosaicId) String() string {
	return m.Hex()
}

// Mosaic pairs a mosaic id with an amount.
type Mosaic struct {
	Id     MosaicId `json:"id"`
	Amount uint64   `json:"amount"`
}

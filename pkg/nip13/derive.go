package nip13

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/tokenstd/nip13d/pkg/symbol"
)

// TokenNonce derives the deterministic mosaic nonce of a token from its
// defining tuple: the left-most 4 bytes of sha3-512 over the canonical
// concatenation of the tuple fields.
func TokenNonce(
	target symbol.PublicAccount,
	supply uint64,
	name, source string,
	operators []symbol.Address,
) (symbol.MosaicNonce, error) {
	if target.IsZero() {
		return symbol.MosaicNonce{}, fmt.Errorf("missing target account")
	}

	operatorList := make([]string, 0, len(operators))
	for _, operator := range operators {
		operatorList = append(operatorList, operator.Plain())
	}

	input := strings.Join([]string{
		target.PublicKey,
		strconv.FormatUint(supply, 10),
		name,
		source,
		strings.Join(operatorList, ","),
	}, "-")

	digest := sha3.Sum512([]byte(input))
	return symbol.MosaicNonceFromBytes(digest[:])
}

// TokenMosaicId derives the deterministic mosaic id of the token tuple,
// owned by the target account.
func TokenMosaicId(
	target symbol.PublicAccount,
	supply uint64,
	name, source string,
	operators []symbol.Address,
) (symbol.MosaicId, error) {
	nonce, err := TokenNonce(target, supply, name, source, operators)
	if err != nil {
		return 0, err
	}
	return symbol.NewMosaicId(nonce, target.Address)
}

// PartitionIndex derives the Address-level derivation step of the partition
// owned by the given address: the right-most 3 bytes of sha3-512 over the
// plain address, read big-endian. The result always fits a hardened BIP44
// index.
func PartitionIndex(owner symbol.Address) (uint32, error) {
	if owner.IsZero() {
		return 0, fmt.Errorf("missing owner address")
	}

	digest := sha3.Sum512([]byte(owner.Plain()))
	tail := digest[len(digest)-3:]
	return uint32(tail[0])<<16 | uint32(tail[1])<<8 | uint32(tail[2]), nil
}

// PartitionPath derives the partition's path by stepping the Address level of
// the fixed root by the owner's partition index. Collisions between owners
// are accepted rather than resolved.
func PartitionPath(owner symbol.Address) (string, error) {
	index, err := PartitionIndex(owner)
	if err != nil {
		return "", err
	}
	path, pathErr := IncrementPathLevel(RootPath, PathLevelAddress, index)
	if pathErr != nil {
		return "", pathErr
	}
	return path, nil
}

package nip13

import (
	"fmt"
	"strings"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// Revision is the standard revision embedded in descriptor markers.
const Revision = 1

// Purpose and coin type shared by every derivation path of the standard.
const (
	PathPurpose  uint32 = 44
	PathCoinType uint32 = 4343
)

// RootPath is the fixed derivation root every token account descends from.
const RootPath = "m/44'/4343'/1313'/0'/0'"

const (
	pathDepth    = 5
	maxPathIndex = uint64(1) << 31
)

// PathLevel addresses one of the five hardened levels of a derivation path.
type PathLevel int

const (
	PathLevelPurpose PathLevel = iota
	PathLevelCoinType
	PathLevelAccount
	PathLevelRemote
	PathLevelAddress
)

func (l PathLevel) String() string {
	switch l {
	case PathLevelPurpose:
		return "purpose"
	case PathLevelCoinType:
		return "coin_type"
	case PathLevelAccount:
		return "account"
	case PathLevelRemote:
		return "remote"
	case PathLevelAddress:
		return "address"
	default:
		return fmt.Sprintf("unknown_%d", int(l))
	}
}

// IsValidPath reports whether path is a well-formed five-level hardened path
// rooted at the standard's purpose and coin type.
func IsValidPath(path string) bool {
	levels, err := symbol.ParsePathLevels(path)
	if err != nil {
		return false
	}
	if len(levels) != pathDepth {
		return false
	}
	return levels[PathLevelPurpose] == PathPurpose && levels[PathLevelCoinType] == PathCoinType
}

// AssertValidPath fails with INVALID_DERIVATION_PATH unless path is valid.
func AssertValidPath(path string) errors.Error {
	if !IsValidPath(path) {
		return errors.INVALID_DERIVATION_PATH.New(
			"invalid derivation path %s", path,
		).WithMetadata(errors.PathMetadata{Path: path})
	}
	return nil
}

// IncrementPathLevel bumps one of the Account, Remote or Address levels of
// path by step. Purpose and CoinType are protected.
func IncrementPathLevel(path string, level PathLevel, step uint32) (string, errors.Error) {
	levels, err := parsePath(path)
	if err != nil {
		return "", err
	}
	if err := assertMutableLevel(path, level); err != nil {
		return "", err
	}

	next := uint64(levels[level]) + uint64(step)
	if next >= maxPathIndex {
		return "", errors.INVALID_DERIVATION_PATH.New(
			"level %s of path %s overflows the hardened index range", level, path,
		).WithMetadata(errors.PathMetadata{Path: path, Level: level.String()})
	}
	levels[level] = uint32(next)
	return formatPath(levels), nil
}

// DecrementPathLevel lowers one of the Account, Remote or Address levels of
// path by step, flooring at zero.
func DecrementPathLevel(path string, level PathLevel, step uint32) (string, errors.Error) {
	levels, err := parsePath(path)
	if err != nil {
		return "", err
	}
	if err := assertMutableLevel(path, level); err != nil {
		return "", err
	}

	if step >= levels[level] {
		levels[level] = 0
	} else {
		levels[level] -= step
	}
	return formatPath(levels), nil
}

// GetPaths returns count sequential paths, the first being start itself and
// each next one stepping the Address level by one. Used to pre-derive
// operator key sets.
func GetPaths(start string, count int) ([]string, errors.Error) {
	if err := AssertValidPath(start); err != nil {
		return nil, err
	}

	paths := make([]string, 0, count)
	path := start
	for i := 0; i < count; i++ {
		if i > 0 {
			var err errors.Error
			path, err = IncrementPathLevel(path, PathLevelAddress, 1)
			if err != nil {
				return nil, err
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func parsePath(path string) ([]uint32, errors.Error) {
	if err := AssertValidPath(path); err != nil {
		return nil, err
	}
	levels, err := symbol.ParsePathLevels(path)
	if err != nil {
		return nil, errors.INVALID_DERIVATION_PATH.Wrap(err).
			WithMetadata(errors.PathMetadata{Path: path})
	}
	return levels, nil
}

func assertMutableLevel(path string, level PathLevel) errors.Error {
	switch level {
	case PathLevelAccount, PathLevelRemote, PathLevelAddress:
		return nil
	default:
		return errors.INVALID_DERIVATION_PATH.New(
			"path level %s is protected", level,
		).WithMetadata(errors.PathMetadata{Path: path, Level: level.String()})
	}
}

func formatPath(levels []uint32) string {
	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		parts = append(parts, fmt.Sprintf("%d'", level))
	}
	return "m/" + strings.Join(parts, "/")
}

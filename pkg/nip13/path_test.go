package nip13_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
)

func TestIsValidPath(t *testing.T) {
	fixtures := []struct {
		name  string
		path  string
		valid bool
	}{
		{"root path", nip13.RootPath, true},
		{"other account", "m/44'/4343'/9'/0'/0'", true},
		{"other address", "m/44'/4343'/1313'/0'/4221'", true},
		{"wrong purpose", "m/45'/4343'/1313'/0'/0'", false},
		{"wrong coin type", "m/44'/0'/1313'/0'/0'", false},
		{"four levels", "m/44'/4343'/1313'/0'", false},
		{"six levels", "m/44'/4343'/1313'/0'/0'/0'", false},
		{"non hardened level", "m/44'/4343'/1313'/0'/0", false},
		{"missing prefix", "44'/4343'/1313'/0'/0'", false},
		{"empty", "", false},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			require.Equal(t, f.valid, nip13.IsValidPath(f.path))
			err := nip13.AssertValidPath(f.path)
			if f.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.Equal(t, errors.INVALID_DERIVATION_PATH.Code, err.Code())
			}
		})
	}
}

func TestIncrementDecrementPathLevel(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		levels := []nip13.PathLevel{
			nip13.PathLevelAccount, nip13.PathLevelRemote, nip13.PathLevelAddress,
		}
		for _, level := range levels {
			t.Run(level.String(), func(t *testing.T) {
				for _, step := range []uint32{1, 7, 4221, 1 << 20} {
					incremented, err := nip13.IncrementPathLevel(nip13.RootPath, level, step)
					require.NoError(t, err)
					require.True(t, nip13.IsValidPath(incremented))
					require.NotEqual(t, nip13.RootPath, incremented)

					decremented, err := nip13.DecrementPathLevel(incremented, level, step)
					require.NoError(t, err)
					require.Equal(t, nip13.RootPath, decremented)
				}
			})
		}
	})

	t.Run("decrement floors at zero", func(t *testing.T) {
		path, err := nip13.DecrementPathLevel(
			"m/44'/4343'/1313'/2'/0'", nip13.PathLevelRemote, 10,
		)
		require.NoError(t, err)
		require.Equal(t, "m/44'/4343'/1313'/0'/0'", path)
	})

	t.Run("protected levels", func(t *testing.T) {
		for _, level := range []nip13.PathLevel{
			nip13.PathLevelPurpose, nip13.PathLevelCoinType,
		} {
			t.Run(level.String(), func(t *testing.T) {
				_, err := nip13.IncrementPathLevel(nip13.RootPath, level, 1)
				require.Error(t, err)
				require.Equal(t, errors.INVALID_DERIVATION_PATH.Code, err.Code())

				_, err = nip13.DecrementPathLevel(nip13.RootPath, level, 1)
				require.Error(t, err)
				require.Equal(t, errors.INVALID_DERIVATION_PATH.Code, err.Code())
			})
		}
	})

	t.Run("invalid path", func(t *testing.T) {
		_, err := nip13.IncrementPathLevel("m/44'/0'/0'/0'/0'", nip13.PathLevelAddress, 1)
		require.Error(t, err)
		require.Equal(t, errors.INVALID_DERIVATION_PATH.Code, err.Code())
	})

	t.Run("overflow", func(t *testing.T) {
		path, err := nip13.IncrementPathLevel(
			nip13.RootPath, nip13.PathLevelAddress, 1<<31-1,
		)
		require.NoError(t, err)
		_, err = nip13.IncrementPathLevel(path, nip13.PathLevelAddress, 1)
		require.Error(t, err)
		require.Equal(t, errors.INVALID_DERIVATION_PATH.Code, err.Code())
	})
}

func TestGetPaths(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		paths, err := nip13.GetPaths(nip13.RootPath, 4)
		require.NoError(t, err)
		require.Len(t, paths, 4)
		require.Equal(t, nip13.RootPath, paths[0])
		require.Equal(t, []string{
			"m/44'/4343'/1313'/0'/0'",
			"m/44'/4343'/1313'/0'/1'",
			"m/44'/4343'/1313'/0'/2'",
			"m/44'/4343'/1313'/0'/3'",
		}, paths)
	})

	t.Run("zero count", func(t *testing.T) {
		paths, err := nip13.GetPaths(nip13.RootPath, 0)
		require.NoError(t, err)
		require.Empty(t, paths)
	})

	t.Run("invalid start", func(t *testing.T) {
		_, err := nip13.GetPaths("m/44'/1'/0'/0'/0'", 3)
		require.Error(t, err)
		require.Equal(t, errors.INVALID_DERIVATION_PATH.Code, err.Code())
	})
}

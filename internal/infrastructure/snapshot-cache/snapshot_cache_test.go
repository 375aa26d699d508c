package snapshotcache_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
	inmemorycache "github.com/tokenstd/nip13d/internal/infrastructure/snapshot-cache/inmemory"
	rediscache "github.com/tokenstd/nip13d/internal/infrastructure/snapshot-cache/redis"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

const cachedTokenId = "4ad8a34709d51f22"

func TestSnapshotCacheImplementations(t *testing.T) {
	inmemory, err := inmemorycache.NewSnapshotCache(time.Minute)
	require.NoError(t, err)

	type cacheCase struct {
		name  string
		cache ports.SnapshotCache
	}
	caches := []cacheCase{
		{"inmemory", inmemory},
	}

	// The redis implementation runs the same suite against a real server.
	if url := os.Getenv("NIP13D_TEST_REDIS_URL"); url != "" {
		redisOpts, err := redis.ParseURL(url)
		require.NoError(t, err)
		cache, err := rediscache.NewSnapshotCache(redis.NewClient(redisOpts), time.Minute)
		require.NoError(t, err)
		caches = append(caches, cacheCase{"redis", cache})
	}

	for _, tt := range caches {
		t.Run(tt.name, func(t *testing.T) {
			runSnapshotCacheTests(t, tt.cache)
		})
	}
}

func TestSnapshotCacheRejectsInvalidTTL(t *testing.T) {
	cache, err := inmemorycache.NewSnapshotCache(0)
	require.Error(t, err)
	require.Nil(t, cache)
}

func TestSnapshotCacheExpiry(t *testing.T) {
	cache, err := inmemorycache.NewSnapshotCache(50 * time.Millisecond)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	snapshot := freshSnapshot(t, cachedTokenId)

	err = cache.Set(ctx, snapshot)
	require.NoError(t, err)

	got, err := cache.Get(ctx, cachedTokenId)
	require.NoError(t, err)
	require.NotNil(t, got)

	time.Sleep(80 * time.Millisecond)

	got, err = cache.Get(ctx, cachedTokenId)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestSnapshotCacheConcurrentAccess(t *testing.T) {
	cache, err := inmemorycache.NewSnapshotCache(time.Minute)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()

	wg := sync.WaitGroup{}
	wg.Add(30)
	for i := 0; i < 10; i++ {
		tokenId := fmt.Sprintf("%016x", uint64(i)+1)
		snapshot := freshSnapshot(t, tokenId)
		go func() {
			defer wg.Done()
			require.NoError(t, cache.Set(ctx, snapshot))
		}()
		go func() {
			defer wg.Done()
			_, err := cache.Get(ctx, tokenId)
			require.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			require.NoError(t, cache.Delete(ctx, tokenId))
		}()
	}
	wg.Wait()
}

func runSnapshotCacheTests(t *testing.T, cache ports.SnapshotCache) {
	ctx := context.Background()

	t.Run("get_returns_nil_when_absent", func(t *testing.T) {
		got, err := cache.Get(ctx, "feedface00000000")
		require.NoError(t, err)
		require.Nil(t, got)
	})

	t.Run("set_then_get_round_trips", func(t *testing.T) {
		snapshot := freshSnapshot(t, cachedTokenId)

		err := cache.Set(ctx, snapshot)
		require.NoError(t, err)

		got, err := cache.Get(ctx, cachedTokenId)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, snapshot, *got)
	})

	t.Run("set_overwrites_previous_snapshot", func(t *testing.T) {
		snapshot := freshSnapshot(t, cachedTokenId)
		snapshot.SyncedAt = time.Now().Unix() + 60
		snapshot.Partitions = nil

		err := cache.Set(ctx, snapshot)
		require.NoError(t, err)

		got, err := cache.Get(ctx, cachedTokenId)
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, snapshot.SyncedAt, got.SyncedAt)
		require.Empty(t, got.Partitions)
	})

	t.Run("delete_drops_the_snapshot", func(t *testing.T) {
		err := cache.Delete(ctx, cachedTokenId)
		require.NoError(t, err)

		got, err := cache.Get(ctx, cachedTokenId)
		require.NoError(t, err)
		require.Nil(t, got)
	})
}

func freshSnapshot(t *testing.T, tokenId string) domain.TokenSnapshot {
	t.Helper()

	target := freshAccount(t)
	operator := freshAccount(t)
	owner := freshAccount(t)
	partition := freshAccount(t)

	id, err := symbol.MosaicIdFromHex(tokenId)
	require.NoError(t, err)

	return domain.TokenSnapshot{
		TokenId: tokenId,
		Mosaic: domain.MosaicInfo{
			Id:     id,
			Supply: 1000,
			Owner:  target,
			Flags:  symbol.MosaicFlagTransferable | symbol.MosaicFlagRestrictable,
		},
		Multisig: []domain.MultisigInfo{{
			Account:       target,
			MinApproval:   2,
			MinRemoval:    2,
			Cosignatories: []symbol.Address{operator.Address},
		}},
		Partitions: []domain.TokenPartition{{
			Name:    "series-a",
			Owner:   owner.Address,
			Account: partition,
			Amount:  400,
		}},
		Metadata: []domain.MetadataEntry{{
			Field:  "ISIN",
			Key:    symbol.ScopedMetadataKey(0x1234),
			Value:  "US0378331005",
			Target: target.Address,
		}},
		Restrictions: []domain.RestrictionEntry{{
			Field: "KYC",
			Key:   symbol.ScopedMetadataKey(0x9999),
			Type:  symbol.RestrictionTypeEq,
			Value: 1,
		}},
		SyncedAt: time.Now().Unix(),
	}
}

func freshAccount(t *testing.T) symbol.PublicAccount {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	account, err := symbol.NewAccount(priv, symbol.Testnet)
	require.NoError(t, err)
	return account.PublicAccount
}

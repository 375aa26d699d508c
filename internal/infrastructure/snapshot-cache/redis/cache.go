package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
)

const snapshotKeyPrefix = "snapshotCache:token"

type snapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewSnapshotCache(rdb *redis.Client, ttl time.Duration) (ports.SnapshotCache, error) {
	if rdb == nil {
		return nil, fmt.Errorf("missing redis client")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	return &snapshotCache{rdb, ttl}, nil
}

func (c *snapshotCache) Get(
	ctx context.Context, tokenId string,
) (*domain.TokenSnapshot, error) {
	buf, err := c.rdb.Get(ctx, snapshotKey(tokenId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	snapshot := &domain.TokenSnapshot{}
	if err := json.Unmarshal(buf, snapshot); err != nil {
		return nil, fmt.Errorf("malformed snapshot for token %s in storage: %v", tokenId, err)
	}
	return snapshot, nil
}

func (c *snapshotCache) Set(ctx context.Context, snapshot domain.TokenSnapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey(snapshot.TokenId), buf, c.ttl).Err()
}

func (c *snapshotCache) Delete(ctx context.Context, tokenId string) error {
	return c.rdb.Del(ctx, snapshotKey(tokenId)).Err()
}

func (c *snapshotCache) Close() {
	// nolint:all
	c.rdb.Close()
}

func snapshotKey(tokenId string) string {
	return fmt.Sprintf("%s:%s", snapshotKeyPrefix, tokenId)
}

package inmemorycache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
)

type cacheEntry struct {
	snapshot  domain.TokenSnapshot
	expiresAt time.Time
}

type snapshotCache struct {
	lock      sync.RWMutex
	ttl       time.Duration
	snapshots map[string]cacheEntry
}

func NewSnapshotCache(ttl time.Duration) (ports.SnapshotCache, error) {
	if ttl <= 0 {
		return nil, fmt.Errorf("ttl must be positive")
	}
	return &snapshotCache{
		ttl:       ttl,
		snapshots: make(map[string]cacheEntry),
	}, nil
}

func (c *snapshotCache) Get(
	_ context.Context, tokenId string,
) (*domain.TokenSnapshot, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	entry, ok := c.snapshots[tokenId]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	snapshot := entry.snapshot
	return &snapshot, nil
}

func (c *snapshotCache) Set(_ context.Context, snapshot domain.TokenSnapshot) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.snapshots[snapshot.TokenId] = cacheEntry{
		snapshot:  snapshot,
		expiresAt: time.Now().Add(c.ttl),
	}
	return nil
}

func (c *snapshotCache) Delete(_ context.Context, tokenId string) error {
	c.lock.Lock()
	defer c.lock.Unlock()

	delete(c.snapshots, tokenId)
	return nil
}

func (c *snapshotCache) Close() {}

package ports

import (
	"context"

	"github.com/tokenstd/nip13d/internal/core/domain"
)

// SnapshotCache holds the live token snapshots the watcher keeps fresh, so
// commands can synchronize without hitting the gateway on every execution.
// Implementations may be process-local or shared through redis.
type SnapshotCache interface {
	// Get returns the cached snapshot of a token, nil when absent or expired.
	Get(ctx context.Context, tokenId string) (*domain.TokenSnapshot, error)
	// Set stores a snapshot, refreshing its TTL.
	Set(ctx context.Context, snapshot domain.TokenSnapshot) error
	// Delete drops a token's snapshot.
	Delete(ctx context.Context, tokenId string) error

	Close()
}

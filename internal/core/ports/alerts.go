package ports

import "context"

const (
	ContractAnnounced Topic = "Contract Announced"
	SnapshotStale     Topic = "Snapshot Stale"
)

type Topic string

type Alerts interface {
	Publish(ctx context.Context, topic Topic, message interface{}) error
}

// ContractAnnouncedAlert is published after a composed contract has been
// handed to the network node.
type ContractAnnouncedAlert struct {
	ContractId string
	TokenId    string
	Command    string
	Hash       string
	InnerCount int
	Cosigners  int
}

// SnapshotStaleAlert is published when the watcher fails to refresh the
// snapshot of a tracked token, meaning commands on that token fall back to
// whatever the cache still holds.
type SnapshotStaleAlert struct {
	TokenId string
	Name    string
	Reason  string
}

package application

import (
	"context"
	"sort"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// SnapshotService reconstructs the live on-chain state of tracked tokens and
// keeps it in the snapshot cache, so command synchronization stays cheap.
type SnapshotService struct {
	gateway ports.NetworkGateway
	cache   ports.SnapshotCache
}

func NewSnapshotService(
	gateway ports.NetworkGateway, cache ports.SnapshotCache,
) *SnapshotService {
	return &SnapshotService{gateway: gateway, cache: cache}
}

func (s *SnapshotService) Close() {
	s.cache.Close()
}

// Sync returns the cached snapshot of a token, refreshing it from the
// network when absent or expired.
func (s *SnapshotService) Sync(
	ctx context.Context, token domain.TokenIdentifier,
) (*domain.TokenSnapshot, errors.Error) {
	snapshot, err := s.cache.Get(ctx, token.Hex())
	if err != nil {
		log.WithError(err).WithField("token", token.Hex()).
			Warn("failed to read snapshot cache, refreshing from network")
	}
	if snapshot != nil {
		return snapshot, nil
	}
	return s.Refresh(ctx, token)
}

// Refresh rebuilds a token's snapshot from the network gateway and stores it
// in the cache. Cache write failures are logged, not returned, the fresh
// snapshot is still served.
func (s *SnapshotService) Refresh(
	ctx context.Context, token domain.TokenIdentifier,
) (*domain.TokenSnapshot, errors.Error) {
	var (
		mosaic       *domain.MosaicInfo
		graph        map[int][]domain.MultisigInfo
		metadata     []domain.MetadataEntry
		restrictions []domain.RestrictionEntry
	)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		info, err := s.gateway.MosaicInfo(egCtx, token.Id)
		if err != nil {
			return err
		}
		mosaic = info
		return nil
	})
	eg.Go(func() error {
		multisigGraph, err := s.gateway.MultisigGraph(egCtx, token.Target.Address)
		if err != nil {
			return err
		}
		graph = multisigGraph
		return nil
	})
	eg.Go(func() error {
		entries, err := s.gateway.MosaicMetadata(egCtx, token.Id)
		if err != nil {
			return err
		}
		metadata = entries
		return nil
	})
	eg.Go(func() error {
		entries, err := s.gateway.MosaicRestrictions(egCtx, token.Id)
		if err != nil {
			return err
		}
		restrictions = entries
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, gatewayError(err)
	}

	multisig := ConsolidateMultisigGraph(graph)
	partitions, err := s.resolvePartitions(ctx, token, multisig)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.TokenSnapshot{
		TokenId:      token.Hex(),
		Multisig:     multisig,
		Partitions:   partitions,
		Metadata:     resolveFields(metadata),
		Restrictions: resolveRestrictionFields(restrictions),
		SyncedAt:     time.Now().Unix(),
	}
	if mosaic != nil {
		snapshot.Mosaic = *mosaic
	}

	if err := s.cache.Set(ctx, *snapshot); err != nil {
		log.WithError(err).WithField("token", token.Hex()).
			Warn("failed to store snapshot in cache")
	}

	log.WithField("token", token.Hex()).
		WithField("partitions", len(partitions)).
		WithField("operators", len(snapshot.Operators())).
		Debug("refreshed token snapshot")
	return snapshot, nil
}

// Forget drops a token's cached snapshot.
func (s *SnapshotService) Forget(ctx context.Context, tokenId string) errors.Error {
	if err := s.cache.Delete(ctx, tokenId); err != nil {
		return errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"token": tokenId,
		})
	}
	return nil
}

// ConsolidateMultisigGraph flattens the per-depth cosignatory graph into one
// list, shallowest depth first. The queried account's own record ends up at
// index zero.
func ConsolidateMultisigGraph(graph map[int][]domain.MultisigInfo) []domain.MultisigInfo {
	depths := make([]int, 0, len(graph))
	for depth := range graph {
		depths = append(depths, depth)
	}
	sort.Ints(depths)

	consolidated := make([]domain.MultisigInfo, 0, len(graph))
	for _, depth := range depths {
		consolidated = append(consolidated, graph[depth]...)
	}
	return consolidated
}

// resolvePartitions rebuilds the partition registry from the consolidated
// multisig graph. Every account the token's operators cosign for, other
// than the target itself, is a candidate. Candidates whose incoming marker
// history identifies them as locker accounts are skipped, the rest are
// resolved concurrently against the gateway.
func (s *SnapshotService) resolvePartitions(
	ctx context.Context,
	token domain.TokenIdentifier,
	multisig []domain.MultisigInfo,
) ([]domain.TokenPartition, errors.Error) {
	candidates := partitionCandidates(token.Target.Address, multisig)
	if len(candidates) == 0 {
		return nil, nil
	}

	partitions := make([]*domain.TokenPartition, len(candidates))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, candidate := range candidates {
		eg.Go(func() error {
			partition, err := s.resolvePartition(egCtx, token, candidate, i)
			if err != nil {
				return err
			}
			partitions[i] = partition
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, gatewayError(err)
	}

	resolved := make([]domain.TokenPartition, 0, len(partitions))
	for _, partition := range partitions {
		if partition != nil {
			resolved = append(resolved, *partition)
		}
	}
	return resolved, nil
}

// resolvePartition reconstructs one partition from its on-chain traces. It
// returns nil for candidates identified as locker accounts.
func (s *SnapshotService) resolvePartition(
	ctx context.Context,
	token domain.TokenIdentifier,
	candidate symbol.Address,
	index int,
) (*domain.TokenPartition, error) {
	account, err := s.gateway.AccountInfo(ctx, candidate)
	if err != nil {
		return nil, err
	}
	transfers, err := s.gateway.IncomingTransfers(ctx, candidate)
	if err != nil {
		return nil, err
	}
	balance, err := s.gateway.AccountBalance(ctx, candidate, token.Id)
	if err != nil {
		return nil, err
	}

	naming, lockerOnly := scanMarkers(token.Hex(), transfers)
	if lockerOnly {
		return nil, nil
	}

	partition := &domain.TokenPartition{
		// Candidates without a surviving naming marker keep a positional name.
		Name:   strconv.Itoa(index),
		Amount: balance,
	}
	if account != nil {
		partition.Account = *account
	}
	if naming != nil {
		if len(naming.Payload) > 0 {
			partition.Name = naming.Payload[0]
		}
		if len(naming.Payload) > 1 {
			if owner, err := symbol.DecodeAddress(naming.Payload[1]); err == nil {
				partition.Owner = owner
			}
		}
	}
	return partition, nil
}

// partitionCandidates collects the accounts cosigned by the token's
// operators, excluding the target account, in deterministic address order.
func partitionCandidates(
	target symbol.Address, multisig []domain.MultisigInfo,
) []symbol.Address {
	seen := make(map[symbol.Address]struct{})
	candidates := make([]symbol.Address, 0)
	for _, entry := range multisig {
		for _, addr := range entry.MultisigAddresses {
			if addr == target || addr.IsZero() {
				continue
			}
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			candidates = append(candidates, addr)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Plain() < candidates[j].Plain()
	})
	return candidates
}

// scanMarkers walks an account's incoming transfers, newest first, and
// returns the most recent naming marker (the partition, transfer and batch
// verbs carry a [name, owner] payload). An account whose marker history is
// exclusively lock verbs is a locker, not a partition.
func scanMarkers(
	tokenId string, transfers []domain.TransferRecord,
) (naming *nip13.Descriptor, lockerOnly bool) {
	sawLock := false
	for _, transfer := range transfers {
		if !nip13.HasMarker(transfer.Message) {
			continue
		}
		descriptor, err := nip13.ParseDescriptor(transfer.Message)
		if err != nil || descriptor.TokenId != tokenId {
			continue
		}
		switch descriptor.Verb {
		case nip13.VerbPartition, nip13.VerbTransfer, nip13.VerbBatch:
			if naming == nil {
				marker := descriptor
				naming = &marker
			}
		case nip13.VerbLock:
			sawLock = true
		}
	}
	return naming, naming == nil && sawLock
}

// resolveFields maps raw scoped keys back to the standard's field names.
func resolveFields(entries []domain.MetadataEntry) []domain.MetadataEntry {
	for i := range entries {
		if entries[i].Field == "" {
			entries[i].Field = KeyField(entries[i].Key)
		}
	}
	return entries
}

func resolveRestrictionFields(entries []domain.RestrictionEntry) []domain.RestrictionEntry {
	for i := range entries {
		if entries[i].Field == "" {
			entries[i].Field = KeyField(entries[i].Key)
		}
	}
	return entries
}

// gatewayError passes typed gateway failures through and wraps anything else
// as a network availability failure.
func gatewayError(err error) errors.Error {
	if typed, ok := err.(errors.Error); ok {
		return typed
	}
	return errors.NETWORK_UNAVAILABLE.Wrap(err)
}

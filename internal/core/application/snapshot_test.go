package application

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// Mock implementations for snapshot and service tests

type mockNetworkGateway struct {
	mock.Mock
}

func (m *mockNetworkGateway) Network(ctx context.Context) (*symbol.NetworkConfig, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*symbol.NetworkConfig), args.Error(1)
}

func (m *mockNetworkGateway) AccountInfo(
	ctx context.Context, addr symbol.Address,
) (*symbol.PublicAccount, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*symbol.PublicAccount), args.Error(1)
}

func (m *mockNetworkGateway) MultisigGraph(
	ctx context.Context, addr symbol.Address,
) (map[int][]domain.MultisigInfo, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int][]domain.MultisigInfo), args.Error(1)
}

func (m *mockNetworkGateway) MosaicInfo(
	ctx context.Context, id symbol.MosaicId,
) (*domain.MosaicInfo, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MosaicInfo), args.Error(1)
}

func (m *mockNetworkGateway) IncomingTransfers(
	ctx context.Context, addr symbol.Address,
) ([]domain.TransferRecord, error) {
	args := m.Called(ctx, addr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TransferRecord), args.Error(1)
}

func (m *mockNetworkGateway) MosaicMetadata(
	ctx context.Context, id symbol.MosaicId,
) ([]domain.MetadataEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.MetadataEntry), args.Error(1)
}

func (m *mockNetworkGateway) MosaicRestrictions(
	ctx context.Context, id symbol.MosaicId,
) ([]domain.RestrictionEntry, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RestrictionEntry), args.Error(1)
}

func (m *mockNetworkGateway) AccountBalance(
	ctx context.Context, addr symbol.Address, id symbol.MosaicId,
) (uint64, error) {
	args := m.Called(ctx, addr, id)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockNetworkGateway) Announce(ctx context.Context, payload []byte) (string, error) {
	args := m.Called(ctx, payload)
	return args.String(0), args.Error(1)
}

func (m *mockNetworkGateway) Close() {}

// recordingSnapshotCache is an in-memory cache that remembers writes, so
// tests can assert what the snapshot service stored.
type recordingSnapshotCache struct {
	snapshots map[string]*domain.TokenSnapshot
}

func newRecordingSnapshotCache() *recordingSnapshotCache {
	return &recordingSnapshotCache{snapshots: make(map[string]*domain.TokenSnapshot)}
}

func (c *recordingSnapshotCache) Get(
	_ context.Context, tokenId string,
) (*domain.TokenSnapshot, error) {
	return c.snapshots[tokenId], nil
}

func (c *recordingSnapshotCache) Set(_ context.Context, snapshot domain.TokenSnapshot) error {
	c.snapshots[snapshot.TokenId] = &snapshot
	return nil
}

func (c *recordingSnapshotCache) Delete(_ context.Context, tokenId string) error {
	delete(c.snapshots, tokenId)
	return nil
}

func (c *recordingSnapshotCache) Close() {}

func TestConsolidateMultisigGraph(t *testing.T) {
	target := freshOwner(t)
	operator := freshOwner(t)

	graph := map[int][]domain.MultisigInfo{
		1: {{Account: symbol.PublicAccount{Address: operator}}},
		0: {{Account: symbol.PublicAccount{Address: target}, MinApproval: 1}},
	}

	consolidated := ConsolidateMultisigGraph(graph)
	require.Len(t, consolidated, 2)
	require.Equal(t, target, consolidated[0].Account.Address)
	require.Equal(t, operator, consolidated[1].Account.Address)

	require.Empty(t, ConsolidateMultisigGraph(nil))
}

func TestPartitionCandidates(t *testing.T) {
	target := freshOwner(t)
	first := freshOwner(t)
	second := freshOwner(t)

	multisig := []domain.MultisigInfo{
		{MultisigAddresses: []symbol.Address{target, first, {}}},
		{MultisigAddresses: []symbol.Address{first, second}},
	}

	candidates := partitionCandidates(target, multisig)
	require.Len(t, candidates, 2)
	require.NotContains(t, candidates, target)
	require.NotContains(t, candidates, symbol.Address{})
	// Deterministic ordering regardless of graph traversal order.
	require.True(t, candidates[0].Plain() < candidates[1].Plain())
}

func TestScanMarkers(t *testing.T) {
	tokenId := "0123456789abcdef"
	marker := func(verb nip13.Verb, payload ...string) string {
		return nip13.NewDescriptor(verb, tokenId, payload...).String()
	}

	fixtures := []struct {
		name       string
		transfers  []domain.TransferRecord
		wantName   string
		wantLocker bool
	}{
		{
			name: "newest naming marker wins",
			transfers: []domain.TransferRecord{
				{Message: marker(nip13.VerbTransfer, "renamed", "owner")},
				{Message: marker(nip13.VerbPartition, "original", "owner")},
			},
			wantName: "renamed",
		},
		{
			name: "batch markers name partitions too",
			transfers: []domain.TransferRecord{
				{Message: marker(nip13.VerbBatch, "series-c", "owner")},
			},
			wantName: "series-c",
		},
		{
			name: "lock-only history marks a locker",
			transfers: []domain.TransferRecord{
				{Message: marker(nip13.VerbLock, "series-a")},
				{Message: marker(nip13.VerbLock, "series-a")},
			},
			wantLocker: true,
		},
		{
			name: "a naming marker outranks lock markers",
			transfers: []domain.TransferRecord{
				{Message: marker(nip13.VerbLock, "series-a")},
				{Message: marker(nip13.VerbPartition, "series-a", "owner")},
			},
			wantName: "series-a",
		},
		{
			name: "foreign and plain messages are ignored",
			transfers: []domain.TransferRecord{
				{Message: "thanks for the coffee"},
				{Message: nip13.NewDescriptor(nip13.VerbTransfer, "feedface00000000", "other").String()},
				{Message: marker(nip13.VerbUnlock, "series-a")},
			},
		},
	}

	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			naming, lockerOnly := scanMarkers(tokenId, f.transfers)
			require.Equal(t, f.wantLocker, lockerOnly)
			if f.wantName == "" {
				require.Nil(t, naming)
				return
			}
			require.NotNil(t, naming)
			require.Equal(t, f.wantName, naming.Payload[0])
		})
	}
}

func TestSnapshotRefresh(t *testing.T) {
	env := newCommandTestEnv(t)
	token := env.token

	named := env.partitionAccount(t, freshOwner(t))
	unnamed := env.partitionAccount(t, freshOwner(t))
	locker := env.lockerAccount(t, freshOwner(t))
	namedOwner := freshOwner(t)

	operatorRecord := domain.MultisigInfo{
		Account: env.operators[0].PublicAccount,
		MultisigAddresses: []symbol.Address{
			env.target.Address, named.Address, unnamed.Address, locker.Address,
		},
	}
	graph := map[int][]domain.MultisigInfo{
		0: {{
			Account:       env.target.PublicAccount,
			MinApproval:   1,
			MinRemoval:    1,
			Cosignatories: []symbol.Address{env.operators[0].Address, env.operators[1].Address},
		}},
		1: {operatorRecord},
	}

	isinKey, err := FieldKey(FieldISIN)
	require.NoError(t, err)
	roleKey, err := FieldKey(FieldUserRole)
	require.NoError(t, err)

	gw := &mockNetworkGateway{}
	gw.On("MosaicInfo", mock.Anything, token.Id).Return(&domain.MosaicInfo{
		Id: token.Id, Supply: 1000, Owner: env.target.PublicAccount,
	}, nil)
	gw.On("MultisigGraph", mock.Anything, env.target.Address).Return(graph, nil)
	gw.On("MosaicMetadata", mock.Anything, token.Id).Return([]domain.MetadataEntry{
		{Key: isinKey, Value: "US1234567890"},
	}, nil)
	gw.On("MosaicRestrictions", mock.Anything, token.Id).Return([]domain.RestrictionEntry{
		{Key: roleKey, Type: symbol.RestrictionTypeLe, Value: MaxUserRole},
	}, nil)

	gw.On("AccountInfo", mock.Anything, named.Address).Return(&named.PublicAccount, nil)
	gw.On("AccountInfo", mock.Anything, unnamed.Address).Return(&unnamed.PublicAccount, nil)
	gw.On("AccountInfo", mock.Anything, locker.Address).Return(&locker.PublicAccount, nil)
	gw.On("IncomingTransfers", mock.Anything, named.Address).Return([]domain.TransferRecord{
		{Message: nip13.NewDescriptor(
			nip13.VerbPartition, token.Hex(), "alpha", namedOwner.Plain(),
		).String()},
	}, nil)
	gw.On("IncomingTransfers", mock.Anything, unnamed.Address).
		Return([]domain.TransferRecord{}, nil)
	gw.On("IncomingTransfers", mock.Anything, locker.Address).Return([]domain.TransferRecord{
		{Message: nip13.NewDescriptor(nip13.VerbLock, token.Hex(), "alpha").String()},
	}, nil)
	gw.On("AccountBalance", mock.Anything, named.Address, token.Id).Return(uint64(300), nil)
	gw.On("AccountBalance", mock.Anything, unnamed.Address, token.Id).Return(uint64(50), nil)
	gw.On("AccountBalance", mock.Anything, locker.Address, token.Id).Return(uint64(200), nil)

	cache := newRecordingSnapshotCache()
	service := NewSnapshotService(gw, cache)

	snapshot, refreshErr := service.Refresh(context.Background(), token)
	require.Nil(t, refreshErr)
	require.NotNil(t, snapshot)
	gw.AssertExpectations(t)

	require.Equal(t, token.Hex(), snapshot.TokenId)
	require.Equal(t, uint64(1000), snapshot.Mosaic.Supply)
	require.Len(t, snapshot.Operators(), 2)
	require.True(t, snapshot.IsOperator(env.operators[0].Address))

	// The locker candidate is filtered out, the two partitions survive.
	require.Len(t, snapshot.Partitions, 2)

	alpha := snapshot.PartitionByAccount(named.Address)
	require.NotNil(t, alpha)
	require.Equal(t, "alpha", alpha.Name)
	require.Equal(t, namedOwner, alpha.Owner)
	require.Equal(t, uint64(300), alpha.Amount)
	require.Equal(t, alpha, snapshot.PartitionByOwner(namedOwner))

	// Marker-less accounts keep the positional name of their candidate slot.
	candidates := partitionCandidates(env.target.Address, ConsolidateMultisigGraph(graph))
	positional := ""
	for i, candidate := range candidates {
		if candidate == unnamed.Address {
			positional = strconv.Itoa(i)
		}
	}
	fallback := snapshot.PartitionByAccount(unnamed.Address)
	require.NotNil(t, fallback)
	require.Equal(t, positional, fallback.Name)
	require.True(t, fallback.Owner.IsZero())

	// Raw keys are mapped back to the standard's field names.
	value, ok := snapshot.MetadataValue(FieldISIN)
	require.True(t, ok)
	require.Equal(t, "US1234567890", value)
	rule := snapshot.GlobalRestriction(FieldUserRole)
	require.NotNil(t, rule)
	require.Equal(t, MaxUserRole, rule.Value)

	// The refreshed snapshot lands in the cache.
	cached, cacheErr := cache.Get(context.Background(), token.Hex())
	require.NoError(t, cacheErr)
	require.NotNil(t, cached)
	require.Len(t, cached.Partitions, 2)
}

func TestSnapshotSync(t *testing.T) {
	t.Run("serves from the cache without touching the network", func(t *testing.T) {
		env := newCommandTestEnv(t)
		cache := newRecordingSnapshotCache()
		require.NoError(t, cache.Set(context.Background(), *env.snapshot))

		gw := &mockNetworkGateway{}
		service := NewSnapshotService(gw, cache)

		snapshot, err := service.Sync(context.Background(), env.token)
		require.Nil(t, err)
		require.Equal(t, env.snapshot.TokenId, snapshot.TokenId)
		gw.AssertNotCalled(t, "MosaicInfo", mock.Anything, mock.Anything)
	})

	t.Run("wraps gateway failures as network errors", func(t *testing.T) {
		env := newCommandTestEnv(t)
		gw := &mockNetworkGateway{}
		gw.On("MosaicInfo", mock.Anything, env.token.Id).
			Return(nil, fmt.Errorf("connection refused"))
		gw.On("MultisigGraph", mock.Anything, env.target.Address).
			Return(map[int][]domain.MultisigInfo{}, nil).Maybe()
		gw.On("MosaicMetadata", mock.Anything, env.token.Id).
			Return([]domain.MetadataEntry{}, nil).Maybe()
		gw.On("MosaicRestrictions", mock.Anything, env.token.Id).
			Return([]domain.RestrictionEntry{}, nil).Maybe()

		service := NewSnapshotService(gw, newRecordingSnapshotCache())

		snapshot, err := service.Sync(context.Background(), env.token)
		require.Nil(t, snapshot)
		require.NotNil(t, err)
		require.Equal(t, errors.NETWORK_UNAVAILABLE.Code, err.Code())
	})
}

func TestSnapshotForget(t *testing.T) {
	env := newCommandTestEnv(t)
	cache := newRecordingSnapshotCache()
	require.NoError(t, cache.Set(context.Background(), *env.snapshot))

	service := NewSnapshotService(&mockNetworkGateway{}, cache)
	require.Nil(t, service.Forget(context.Background(), env.token.Hex()))

	dropped, err := cache.Get(context.Background(), env.token.Hex())
	require.NoError(t, err)
	require.Nil(t, dropped)
}

package ports

import (
	"context"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// NetworkGateway is the read/announce surface of a chain node. Snapshot
// services consume its raw query results, retries and timeouts live behind
// this port.
type NetworkGateway interface {
	// Network returns the parameters of the chain the gateway points at.
	Network(ctx context.Context) (*symbol.NetworkConfig, error)
	// AccountInfo resolves the public account registered at an address.
	AccountInfo(ctx context.Context, addr symbol.Address) (*symbol.PublicAccount, error)
	// MultisigGraph fetches the nested cosignatory graph of an account,
	// keyed by graph depth, top (least nested) depth first.
	MultisigGraph(ctx context.Context, addr symbol.Address) (map[int][]domain.MultisigInfo, error)
	// MosaicInfo fetches the on-chain definition of a mosaic.
	MosaicInfo(ctx context.Context, id symbol.MosaicId) (*domain.MosaicInfo, error)
	// IncomingTransfers lists the confirmed transfers received by an account,
	// newest first.
	IncomingTransfers(ctx context.Context, addr symbol.Address) ([]domain.TransferRecord, error)
	// MosaicMetadata lists the raw metadata entries attached to a mosaic.
	MosaicMetadata(ctx context.Context, id symbol.MosaicId) ([]domain.MetadataEntry, error)
	// MosaicRestrictions lists the global and address-scoped restriction
	// entries of a mosaic.
	MosaicRestrictions(ctx context.Context, id symbol.MosaicId) ([]domain.RestrictionEntry, error)
	// AccountBalance returns the amount of the given mosaic held by addr.
	AccountBalance(ctx context.Context, addr symbol.Address, id symbol.MosaicId) (uint64, error)
	// Announce hands a composed aggregate payload to the network and returns
	// the network-assigned receipt hash.
	Announce(ctx context.Context, payload []byte) (string, error)

	Close()
}

package domain

import "context"

type ContractRepository interface {
	// AddContract persists a freshly composed contract.
	AddContract(ctx context.Context, contract ContractRecord) error
	// GetContract retrieves a contract by id.
	GetContract(ctx context.Context, id string) (*ContractRecord, error)
	// GetContractsByToken retrieves all contracts composed for a token,
	// newest first.
	GetContractsByToken(ctx context.Context, tokenId string) ([]ContractRecord, error)
	// MarkAnnounced flags a contract as handed to the network.
	MarkAnnounced(ctx context.Context, id string) error

	Close()
}

package badgerdb

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"

	"github.com/tokenstd/nip13d/internal/core/domain"
)

const contractStoreDir = "contracts"

type contractRepository struct {
	store *badgerhold.Store
}

type contractDTO struct {
	Id         string
	TokenId    string
	Command    string
	URI        string
	Hash       string
	InnerCount int
	Cosigners  []string
	Announced  bool
	CreatedAt  int64
}

func NewContractRepository(config ...interface{}) (domain.ContractRepository, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, contractStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open contract store: %s", err)
	}

	return &contractRepository{store}, nil
}

func (r *contractRepository) AddContract(ctx context.Context, contract domain.ContractRecord) error {
	dto := newContractDTO(contract)
	insertFn := func() error {
		return r.store.Insert(contract.Id, dto)
	}
	if err := insertFn(); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("contract %s already exists", contract.Id)
		}
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = insertFn()
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *contractRepository) GetContract(
	ctx context.Context, contractId string,
) (*domain.ContractRecord, error) {
	var dto contractDTO
	err := r.store.Get(contractId, &dto)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("contract %s not found", contractId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	contract := dto.toContract()
	return &contract, nil
}

func (r *contractRepository) GetContractsByToken(
	ctx context.Context, tokenId string,
) ([]domain.ContractRecord, error) {
	dtos := make([]contractDTO, 0)
	query := badgerhold.Where("TokenId").Eq(tokenId)
	if err := r.store.Find(&dtos, query); err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}

	contracts := make([]domain.ContractRecord, 0, len(dtos))
	for _, dto := range dtos {
		contracts = append(contracts, dto.toContract())
	}
	// Newest first.
	sort.SliceStable(contracts, func(i, j int) bool {
		return contracts[i].CreatedAt > contracts[j].CreatedAt
	})
	return contracts, nil
}

func (r *contractRepository) MarkAnnounced(ctx context.Context, contractId string) error {
	updateFn := func() error {
		var dto contractDTO
		if err := r.store.Get(contractId, &dto); err != nil {
			return err
		}
		dto.Announced = true
		return r.store.Update(contractId, dto)
	}
	if err := updateFn(); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("contract %s not found", contractId)
		}
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = updateFn()
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *contractRepository) Close() {
	// nolint:all
	r.store.Close()
}

func newContractDTO(contract domain.ContractRecord) contractDTO {
	return contractDTO{
		Id:         contract.Id,
		TokenId:    contract.TokenId,
		Command:    contract.Command,
		URI:        contract.URI,
		Hash:       contract.Hash,
		InnerCount: contract.InnerCount,
		Cosigners:  contract.Cosigners,
		Announced:  contract.Announced,
		CreatedAt:  contract.CreatedAt,
	}
}

func (d contractDTO) toContract() domain.ContractRecord {
	return domain.ContractRecord{
		Id:         d.Id,
		TokenId:    d.TokenId,
		Command:    d.Command,
		URI:        d.URI,
		Hash:       d.Hash,
		InnerCount: d.InnerCount,
		Cosigners:  d.Cosigners,
		Announced:  d.Announced,
		CreatedAt:  d.CreatedAt,
	}
}

package db

import (
	"fmt"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
	badgerdb "github.com/tokenstd/nip13d/internal/infrastructure/db/badger"
)

var (
	tokenStoreTypes = map[string]func(...interface{}) (domain.TrackedTokenRepository, error){
		"badger": badgerdb.NewTrackedTokenRepository,
	}
	contractStoreTypes = map[string]func(...interface{}) (domain.ContractRepository, error){
		"badger": badgerdb.NewContractRepository,
	}
)

type ServiceConfig struct {
	DataStoreType   string
	DataStoreConfig []interface{}
}

type service struct {
	tokenStore    domain.TrackedTokenRepository
	contractStore domain.ContractRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	tokenStoreFactory, ok := tokenStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("token store type not supported")
	}
	contractStoreFactory, ok := contractStoreTypes[config.DataStoreType]
	if !ok {
		return nil, fmt.Errorf("contract store type not supported")
	}

	tokenStore, err := tokenStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %s", err)
	}
	contractStore, err := contractStoreFactory(config.DataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open contract store: %s", err)
	}

	return &service{tokenStore, contractStore}, nil
}

func (s *service) Tokens() domain.TrackedTokenRepository {
	return s.tokenStore
}

func (s *service) Contracts() domain.ContractRepository {
	return s.contractStore
}

func (s *service) Close() {
	s.tokenStore.Close()
	s.contractStore.Close()
}

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
	"github.com/tokenstd/nip13d/pkg/symbol"
)

const tokenStoreDir = "tokens"

type trackedTokenRepository struct {
	store *badgerhold.Store
}

type trackedTokenDTO struct {
	TokenId         string
	Name            string
	Source          string
	Network         byte
	TargetPublicKey string
	AccountIndex    uint32
	CreatedAt       int64
	UpdatedAt       int64
}

func NewTrackedTokenRepository(config ...interface{}) (domain.TrackedTokenRepository, error) {
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
		dir = filepath.Join(baseDir, tokenStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %s", err)
	}

	return &trackedTokenRepository{store}, nil
}

func (r *trackedTokenRepository) AddToken(ctx context.Context, token domain.TrackedToken) error {
	dto := newTrackedTokenDTO(token)
	insertFn := func() error {
		return r.store.Insert(token.TokenId, dto)
	}
	if err := insertFn(); err != nil {
		if errors.Is(err, badgerhold.ErrKeyExists) {
			return fmt.Errorf("token %s is already tracked", token.TokenId)
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

func (r *trackedTokenRepository) GetToken(
	ctx context.Context, tokenId string,
) (*domain.TrackedToken, error) {
	var dto trackedTokenDTO
	err := r.store.Get(tokenId, &dto)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("token %s not found", tokenId)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	token := dto.toToken()
	return &token, nil
}

func (r *trackedTokenRepository) GetAllTokens(ctx context.Context) ([]domain.TrackedToken, error) {
	dtos := make([]trackedTokenDTO, 0)
	if err := r.store.Find(&dtos, &badgerhold.Query{}); err != nil {
		return nil, fmt.Errorf("failed to list tokens: %w", err)
	}

	tokens := make([]domain.TrackedToken, 0, len(dtos))
	for _, dto := range dtos {
		tokens = append(tokens, dto.toToken())
	}
	sort.SliceStable(tokens, func(i, j int) bool {
		return tokens[i].CreatedAt < tokens[j].CreatedAt
	})
	return tokens, nil
}

func (r *trackedTokenRepository) UpdateToken(
	ctx context.Context, token domain.TrackedToken,
) error {
	dto := newTrackedTokenDTO(token)
	updateFn := func() error {
		return r.store.Update(token.TokenId, dto)
	}
	if err := updateFn(); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return fmt.Errorf("token %s not found", token.TokenId)
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

func (r *trackedTokenRepository) DeleteToken(ctx context.Context, tokenId string) error {
	err := r.store.Delete(tokenId, trackedTokenDTO{})
	if errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("token %s not found", tokenId)
	}
	return err
}

func (r *trackedTokenRepository) Close() {
	// nolint:all
	r.store.Close()
}

func newTrackedTokenDTO(token domain.TrackedToken) trackedTokenDTO {
	return trackedTokenDTO{
		TokenId:         token.TokenId,
		Name:            token.Name,
		Source:          token.Source,
		Network:         byte(token.Network),
		TargetPublicKey: token.TargetPublicKey,
		AccountIndex:    token.AccountIndex,
		CreatedAt:       token.CreatedAt,
		UpdatedAt:       token.UpdatedAt,
	}
}

func (d trackedTokenDTO) toToken() domain.TrackedToken {
	return domain.TrackedToken{
		TokenId:         d.TokenId,
		Name:            d.Name,
		Source:          d.Source,
		Network:         symbol.NetworkType(d.Network),
		TargetPublicKey: d.TargetPublicKey,
		AccountIndex:    d.AccountIndex,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

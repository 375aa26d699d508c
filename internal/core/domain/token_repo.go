package domain

import "context"

type TrackedTokenRepository interface {
	// AddToken persists a newly tracked token, failing if the token id is
	// already tracked.
	AddToken(ctx context.Context, token TrackedToken) error
	// GetToken retrieves a tracked token by its hex mosaic id.
	GetToken(ctx context.Context, tokenId string) (*TrackedToken, error)
	// GetAllTokens retrieves every tracked token.
	GetAllTokens(ctx context.Context) ([]TrackedToken, error)
	// UpdateToken overwrites an existing tracked token.
	UpdateToken(ctx context.Context, token TrackedToken) error
	// DeleteToken stops tracking a token.
	DeleteToken(ctx context.Context, tokenId string) error

	Close()
}

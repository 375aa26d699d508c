package ports

import "github.com/tokenstd/nip13d/internal/core/domain"

type RepoManager interface {
	Tokens() domain.TrackedTokenRepository
	Contracts() domain.ContractRepository
	Close()
}

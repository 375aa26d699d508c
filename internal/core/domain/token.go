package domain

import (
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// TokenIdentifier binds the deterministic mosaic id a token is known by to
// the chain it was issued on and the target account that administers it.
type TokenIdentifier struct {
	Id     symbol.MosaicId
	Source TokenSource
	Target symbol.PublicAccount
}

func NewTokenIdentifier(
	id symbol.MosaicId, source TokenSource, target symbol.PublicAccount,
) TokenIdentifier {
	return TokenIdentifier{Id: id, Source: source, Target: target}
}

func TokenIdentifierFromHex(
	s string, source TokenSource, target symbol.PublicAccount,
) (TokenIdentifier, error) {
	id, err := symbol.MosaicIdFromHex(s)
	if err != nil {
		return TokenIdentifier{}, err
	}
	return TokenIdentifier{Id: id, Source: source, Target: target}, nil
}

func (t TokenIdentifier) Hex() string {
	return t.Id.Hex()
}

func (t TokenIdentifier) IsZero() bool {
	return t.Id == 0
}

// TokenSource pins a token to the chain it was issued on, by generation hash.
type TokenSource struct {
	Source string
}

func (s TokenSource) IsZero() bool {
	return s.Source == ""
}

// TrackedToken is a token the daemon keeps a snapshot of and composes
// operations for.
type TrackedToken struct {
	// TokenId is the hex encoded mosaic id.
	TokenId string
	Name    string
	Source  string
	Network symbol.NetworkType
	// TargetPublicKey is the compressed public key of the token's target
	// account.
	TargetPublicKey string
	// AccountIndex is the Account-level derivation step the target account
	// was derived with.
	AccountIndex uint32
	CreatedAt    int64
	UpdatedAt    int64
}

func (t TrackedToken) Target() (symbol.PublicAccount, error) {
	return symbol.PublicAccountFromKey(t.TargetPublicKey, t.Network)
}

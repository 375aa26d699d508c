package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// minRequiredOperators is the smallest operator set a token may be issued
// with or reduced to. Below two operators the all-but-one approval threshold
// degenerates into single-key control.
const minRequiredOperators = 2

// Service is the operation surface of the daemon: token issuance, contract
// composition for every lifecycle command, announcement, and tracked-token
// queries.
type Service interface {
	Start() error
	Stop()

	// CreateToken derives a fresh token identity from the issuance options,
	// composes the full issuance contract and starts tracking the token.
	CreateToken(
		ctx context.Context, actor symbol.PublicAccount, opts Options,
	) (*ExecutionResult, errors.Error)
	// Execute composes the contract of one lifecycle command on a tracked
	// token.
	Execute(
		ctx context.Context, kind CommandKind, tokenId string,
		actor symbol.PublicAccount, opts Options,
	) (*ExecutionResult, errors.Error)
	// CanExecute dry-runs the argument and authorization checks of a command
	// without composing anything.
	CanExecute(
		ctx context.Context, kind CommandKind, tokenId string,
		actor symbol.PublicAccount, opts Options,
	) (AllowanceResult, errors.Error)
	// Announce submits a previously composed contract to the network and
	// returns the network receipt hash.
	Announce(ctx context.Context, contractId string) (string, errors.Error)

	// TrackToken registers an externally issued token for snapshotting and
	// command composition.
	TrackToken(
		ctx context.Context, tokenId, name, source, targetPubkey string, accountIndex uint32,
	) errors.Error
	UntrackToken(ctx context.Context, tokenId string) errors.Error
	ListTokens(ctx context.Context) ([]domain.TrackedToken, errors.Error)
	GetTokenInfo(ctx context.Context, tokenId string) (*TokenInfo, errors.Error)
}

type service struct {
	// services
	repoManager ports.RepoManager
	gateway     ports.NetworkGateway
	keys        ports.KeyProvider
	snapshots   *SnapshotService
	watcher     *watcher
	alerts      ports.Alerts

	// config
	network symbol.NetworkConfig
	params  TransactionParams

	// stop and warmup go routine handlers
	stop func()
	ctx  context.Context
	wg   *sync.WaitGroup
}

func NewService(
	repoManager ports.RepoManager,
	gateway ports.NetworkGateway,
	keys ports.KeyProvider,
	cache ports.SnapshotCache,
	scheduler ports.SchedulerService,
	alerts ports.Alerts,
	maxFee uint64,
	deadline, refreshInterval time.Duration,
) (Service, error) {
	ctx := context.Background()

	network, err := gateway.Network(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch network parameters: %s", err)
	}
	if keys.Network() != network.Type {
		return nil, fmt.Errorf(
			"wallet derives %s accounts but the node runs %s", keys.Network(), network.Type,
		)
	}

	snapshots := NewSnapshotService(gateway, cache)

	ctx, cancel := context.WithCancel(ctx)
	svc := &service{
		repoManager: repoManager,
		gateway:     gateway,
		keys:        keys,
		snapshots:   snapshots,
		watcher:     newWatcher(repoManager, snapshots, scheduler, alerts, refreshInterval),
		alerts:      alerts,
		network:     *network,
		params:      TransactionParams{MaxFee: maxFee, Deadline: deadline},
		stop:        cancel,
		ctx:         ctx,
		wg:          &sync.WaitGroup{},
	}
	return svc, nil
}

func (s *service) Start() error {
	log.Debug("starting snapshot watcher...")
	if err := s.watcher.start(); err != nil {
		return err
	}

	log.Debug("starting app service...")
	s.wg.Add(1)
	go s.warmup()
	return nil
}

func (s *service) Stop() {
	s.stop()
	s.wg.Wait()
	s.watcher.stop()
	log.Debug("stopped snapshot watcher")
	s.snapshots.Close()
	s.gateway.Close()
	log.Debug("closed connection to network gateway")
	s.repoManager.Close()
	log.Debug("closed connection to db")
}

func (s *service) CreateToken(
	ctx context.Context, actor symbol.PublicAccount, opts Options,
) (*ExecutionResult, errors.Error) {
	operators, err := opts.AddressList(OptionOperators)
	if err != nil {
		return nil, err
	}
	if opts.Has(OptionOperators) && len(operators) < minRequiredOperators {
		return nil, errors.MINIMUM_REQUIRED_OPERATORS.New(
			"a token requires at least %d operators, got %d",
			minRequiredOperators, len(operators),
		).WithMetadata(errors.OperatorsMetadata{
			Count:    len(operators),
			Required: minRequiredOperators,
		})
	}

	identifier, accountIndex, err := s.issuanceIdentity(opts)
	if err != nil {
		return nil, err
	}

	cmd, err := newCommand(
		CommandCreateToken, s.newExecContext(actor, opts), identifier, s.keys, s.snapshots,
	)
	if err != nil {
		return nil, err
	}
	result, err := cmd.Execute(ctx, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now().Unix()
	tracked := domain.TrackedToken{
		TokenId:         identifier.Hex(),
		Name:            opts.GetOrDefault(OptionName, ""),
		Source:          identifier.Source.Source,
		Network:         s.network.Type,
		TargetPublicKey: identifier.Target.PublicKey,
		AccountIndex:    accountIndex,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if addErr := s.repoManager.Tokens().AddToken(ctx, tracked); addErr != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(addErr).WithMetadata(map[string]any{
			"token": identifier.Hex(),
		})
	}
	s.saveContract(ctx, result)

	log.WithField("token", identifier.Hex()).
		WithField("target", identifier.Target.Address.Plain()).
		Info("composed issuance contract")
	return result, nil
}

func (s *service) Execute(
	ctx context.Context, kind CommandKind, tokenId string,
	actor symbol.PublicAccount, opts Options,
) (*ExecutionResult, errors.Error) {
	if kind == CommandCreateToken {
		return nil, errors.INVALID_COMMAND.New(
			"%s does not run against a tracked token", kind,
		).WithMetadata(errors.CommandMetadata{Command: kind.String()})
	}

	token, identifier, err := s.trackedToken(ctx, tokenId)
	if err != nil {
		return nil, err
	}

	if kind == CommandRevokeIssuerPower {
		if err := s.assertRevokeKeepsQuorum(ctx, identifier); err != nil {
			return nil, err
		}
	}

	cmd, err := newCommand(kind, s.newExecContext(actor, opts), identifier, s.keys, s.snapshots)
	if err != nil {
		return nil, err
	}
	result, err := cmd.Execute(ctx, actor)
	if err != nil {
		return nil, err
	}

	s.saveContract(ctx, result)

	token.UpdatedAt = time.Now().Unix()
	if updateErr := s.repoManager.Tokens().UpdateToken(ctx, *token); updateErr != nil {
		log.WithError(updateErr).WithField("token", tokenId).
			Warn("failed to touch tracked token")
	}
	return result, nil
}

func (s *service) CanExecute(
	ctx context.Context, kind CommandKind, tokenId string,
	actor symbol.PublicAccount, opts Options,
) (AllowanceResult, errors.Error) {
	var identifier domain.TokenIdentifier
	if kind == CommandCreateToken {
		derived, _, err := s.issuanceIdentity(opts)
		if err != nil {
			return AllowanceResult{}, err
		}
		identifier = derived
	} else {
		_, tracked, err := s.trackedToken(ctx, tokenId)
		if err != nil {
			return AllowanceResult{}, err
		}
		identifier = tracked
	}

	cmd, err := newCommand(kind, s.newExecContext(actor, opts), identifier, s.keys, s.snapshots)
	if err != nil {
		return AllowanceResult{}, err
	}
	if err := cmd.Synchronize(ctx); err != nil {
		return AllowanceResult{}, err
	}
	return cmd.CanExecute(actor)
}

func (s *service) Announce(ctx context.Context, contractId string) (string, errors.Error) {
	contract, err := s.repoManager.Contracts().GetContract(ctx, contractId)
	if err != nil {
		return "", errors.INVALID_OPTION.Wrap(err).WithMetadata(errors.ArgumentMetadata{
			Argument: "contract_id",
		})
	}

	uri, parseErr := symbol.ParseTransactionURI(contract.URI)
	if parseErr != nil {
		return "", errors.INTERNAL_ERROR.Wrap(parseErr).WithMetadata(map[string]any{
			"contract": contractId,
		})
	}
	receipt, announceErr := s.gateway.Announce(ctx, uri.Payload)
	if announceErr != nil {
		return "", gatewayError(announceErr)
	}

	if markErr := s.repoManager.Contracts().MarkAnnounced(ctx, contractId); markErr != nil {
		log.WithError(markErr).WithField("contract", contractId).
			Warn("failed to mark contract as announced")
	}
	s.sendAnnouncedAlert(contract)

	log.WithField("contract", contractId).WithField("hash", contract.Hash).
		Info("announced contract")
	return receipt, nil
}

func (s *service) TrackToken(
	ctx context.Context, tokenId, name, source, targetPubkey string, accountIndex uint32,
) errors.Error {
	id, err := symbol.MosaicIdFromHex(tokenId)
	if err != nil {
		return invalidOption("token_id", tokenId)
	}
	if _, err := symbol.PublicAccountFromKey(targetPubkey, s.network.Type); err != nil {
		return invalidOption("target", targetPubkey)
	}

	now := time.Now().Unix()
	token := domain.TrackedToken{
		TokenId:         id.Hex(),
		Name:            name,
		Source:          source,
		Network:         s.network.Type,
		TargetPublicKey: targetPubkey,
		AccountIndex:    accountIndex,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if addErr := s.repoManager.Tokens().AddToken(ctx, token); addErr != nil {
		return errors.INTERNAL_ERROR.Wrap(addErr).WithMetadata(map[string]any{
			"token": id.Hex(),
		})
	}

	log.WithField("token", id.Hex()).Info("tracking token")
	return nil
}

func (s *service) UntrackToken(ctx context.Context, tokenId string) errors.Error {
	if err := s.repoManager.Tokens().DeleteToken(ctx, tokenId); err != nil {
		return errors.INVALID_OPTION.Wrap(err).WithMetadata(errors.ArgumentMetadata{
			Argument: "token_id",
		})
	}
	if err := s.snapshots.Forget(ctx, tokenId); err != nil {
		log.WithError(err).WithField("token", tokenId).
			Warn("failed to drop cached snapshot")
	}

	log.WithField("token", tokenId).Info("untracked token")
	return nil
}

func (s *service) ListTokens(ctx context.Context) ([]domain.TrackedToken, errors.Error) {
	tokens, err := s.repoManager.Tokens().GetAllTokens(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return tokens, nil
}

func (s *service) GetTokenInfo(ctx context.Context, tokenId string) (*TokenInfo, errors.Error) {
	token, identifier, err := s.trackedToken(ctx, tokenId)
	if err != nil {
		return nil, err
	}

	snapshot, syncErr := s.snapshots.Sync(ctx, identifier)
	if syncErr != nil {
		return nil, syncErr
	}
	contracts, contractsErr := s.repoManager.Contracts().GetContractsByToken(ctx, token.TokenId)
	if contractsErr != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(contractsErr).WithMetadata(map[string]any{
			"token": token.TokenId,
		})
	}

	return &TokenInfo{
		Token:     *token,
		Snapshot:  snapshot,
		Contracts: contracts,
	}, nil
}

// warmup pre-fills the snapshot cache for every tracked token at boot, so
// the first command after a restart does not pay the full refresh cost.
func (s *service) warmup() {
	defer s.wg.Done()

	tokens, err := s.repoManager.Tokens().GetAllTokens(s.ctx)
	if err != nil {
		log.WithError(err).Warn("failed to list tracked tokens for warmup")
		return
	}

	for _, token := range tokens {
		if s.ctx.Err() != nil {
			return
		}
		identifier, idErr := trackedIdentifier(token)
		if idErr != nil {
			log.WithError(idErr).WithField("token", token.TokenId).
				Warn("skipping warmup of token with invalid identity")
			continue
		}
		if _, refreshErr := s.snapshots.Refresh(s.ctx, identifier); refreshErr != nil {
			log.WithError(refreshErr).WithField("token", token.TokenId).
				Warn("failed to warm up snapshot")
		}
	}
	log.Debugf("warmed up snapshots for %d tokens", len(tokens))
}

func (s *service) newExecContext(actor symbol.PublicAccount, opts Options) Context {
	return NewContext(actor, s.network, s.params, opts)
}

// issuanceIdentity derives the deterministic identity of a token about to be
// issued: the target account at the requested account index and the mosaic
// id of the issuance tuple.
func (s *service) issuanceIdentity(opts Options) (domain.TokenIdentifier, uint32, errors.Error) {
	accountIndex, err := opts.Uint32(OptionAccount)
	if err != nil {
		return domain.TokenIdentifier{}, 0, err
	}
	supply, err := opts.Uint64(OptionSupply)
	if err != nil {
		return domain.TokenIdentifier{}, 0, err
	}
	operators, err := opts.AddressList(OptionOperators)
	if err != nil {
		return domain.TokenIdentifier{}, 0, err
	}
	name := opts.GetOrDefault(OptionName, "")
	source := opts.GetOrDefault(OptionSource, s.network.GenerationHash)

	targetPath, pathErr := nip13.IncrementPathLevel(
		nip13.RootPath, nip13.PathLevelAccount, accountIndex,
	)
	if pathErr != nil {
		return domain.TokenIdentifier{}, 0, pathErr
	}
	target, deriveErr := s.keys.DeriveAccount(targetPath)
	if deriveErr != nil {
		return domain.TokenIdentifier{}, 0, errors.INTERNAL_ERROR.Wrap(deriveErr).
			WithMetadata(map[string]any{"path": targetPath})
	}

	mosaicId, idErr := nip13.TokenMosaicId(target.PublicAccount, supply, name, source, operators)
	if idErr != nil {
		return domain.TokenIdentifier{}, 0, errors.INTERNAL_ERROR.Wrap(idErr).
			WithMetadata(map[string]any{"name": name})
	}

	identifier := domain.NewTokenIdentifier(
		mosaicId, domain.TokenSource{Source: source}, target.PublicAccount,
	)
	return identifier, accountIndex, nil
}

// trackedToken loads a tracked token and rebuilds its identifier.
func (s *service) trackedToken(
	ctx context.Context, tokenId string,
) (*domain.TrackedToken, domain.TokenIdentifier, errors.Error) {
	token, err := s.repoManager.Tokens().GetToken(ctx, tokenId)
	if err != nil {
		return nil, domain.TokenIdentifier{}, errors.INVALID_OPTION.Wrap(err).
			WithMetadata(errors.ArgumentMetadata{Argument: "token_id"})
	}

	identifier, idErr := trackedIdentifier(*token)
	if idErr != nil {
		return nil, domain.TokenIdentifier{}, errors.INTERNAL_ERROR.Wrap(idErr).
			WithMetadata(map[string]any{"token": tokenId})
	}
	return token, identifier, nil
}

// trackedIdentifier rebuilds a token's identifier from its tracked record.
func trackedIdentifier(token domain.TrackedToken) (domain.TokenIdentifier, error) {
	target, err := token.Target()
	if err != nil {
		return domain.TokenIdentifier{}, err
	}
	return domain.TokenIdentifierFromHex(
		token.TokenId, domain.TokenSource{Source: token.Source}, target,
	)
}

// assertRevokeKeepsQuorum refuses a revocation that would shrink the
// operator set below the minimum.
func (s *service) assertRevokeKeepsQuorum(
	ctx context.Context, identifier domain.TokenIdentifier,
) errors.Error {
	snapshot, err := s.snapshots.Sync(ctx, identifier)
	if err != nil {
		return err
	}

	remaining := len(snapshot.Operators()) - 1
	if remaining < minRequiredOperators {
		return errors.MINIMUM_REQUIRED_OPERATORS.New(
			"revoking would leave %d operators, at least %d required",
			remaining, minRequiredOperators,
		).WithMetadata(errors.OperatorsMetadata{
			Count:    remaining,
			Required: minRequiredOperators,
		})
	}
	return nil
}

// saveContract persists the composed contract. Persistence failures are
// logged, the caller still gets the composed result.
func (s *service) saveContract(ctx context.Context, result *ExecutionResult) {
	cosigners := make([]string, 0, len(result.Cosigners))
	for _, cosigner := range result.Cosigners {
		cosigners = append(cosigners, cosigner.PublicKey)
	}

	contract := domain.ContractRecord{
		Id:         result.ContractId,
		TokenId:    result.TokenId,
		Command:    result.Command,
		URI:        result.URI,
		Hash:       result.Hash,
		InnerCount: result.InnerCount,
		Cosigners:  cosigners,
		CreatedAt:  time.Now().Unix(),
	}
	if err := s.repoManager.Contracts().AddContract(ctx, contract); err != nil {
		log.WithError(err).WithField("contract", result.ContractId).
			Warn("failed to persist contract")
	}
}

package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// Command is the execution contract of one operation of the standard.
type Command interface {
	Kind() CommandKind
	// Synchronize refreshes the in-memory snapshot from the network. It is
	// idempotent and must complete before CanExecute/Execute on commands
	// whose checks read on-chain state.
	Synchronize(ctx context.Context) errors.Error
	// CanExecute asserts that every mandatory argument is present, failing
	// with MISSING_ARGUMENT naming the first absent one, then applies the
	// authorization predicate. A failed authorization returns a negative
	// result, not an error.
	CanExecute(actor symbol.PublicAccount) (AllowanceResult, errors.Error)
	// Execute re-checks CanExecute, promotes a negative result to
	// OPERATION_FORBIDDEN, composes the ordered transaction/signer list and
	// wraps it into one unsigned aggregate. Zero composed transactions fail
	// with EMPTY_CONTRACT.
	Execute(ctx context.Context, actor symbol.PublicAccount) (*ExecutionResult, errors.Error)
}

// composeFunc builds the index-aligned transaction/signer list of one command
// from an immutable option bag. Variants wrap a base composeFunc with
// decorators that prepend or append segments.
type composeFunc func(ctx context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error)

// baseCommand is the shared execution skeleton. Concrete commands configure
// it with their mandatory argument list, authorization mode and composition
// function.
type baseCommand struct {
	kind      CommandKind
	execCtx   Context
	token     domain.TokenIdentifier
	target    symbol.PublicAccount
	keys      ports.KeyProvider
	snapshots *SnapshotService
	snapshot  *domain.TokenSnapshot

	mandatoryArgs []string
	// allowAnyActor disables the operator authorization predicate.
	allowAnyActor bool
	// skipSync marks commands whose composition never reads on-chain state.
	skipSync bool
	compose  composeFunc
}

func newBaseCommand(
	execCtx Context,
	token domain.TokenIdentifier,
	keys ports.KeyProvider,
	snapshots *SnapshotService,
) *baseCommand {
	return &baseCommand{
		execCtx:   execCtx,
		token:     token,
		target:    token.Target,
		keys:      keys,
		snapshots: snapshots,
	}
}

// newCommand builds the concrete command for a kind. The switch is
// exhaustive over the closed kind set.
func newCommand(
	kind CommandKind,
	execCtx Context,
	token domain.TokenIdentifier,
	keys ports.KeyProvider,
	snapshots *SnapshotService,
) (Command, errors.Error) {
	base := newBaseCommand(execCtx, token, keys, snapshots)
	switch kind {
	case CommandCreateToken:
		return newCreateTokenCommand(base), nil
	case CommandPublishToken:
		return newPublishTokenCommand(base), nil
	case CommandCreatePartition:
		return newCreatePartitionCommand(base), nil
	case CommandTransferOwnership:
		return newTransferOwnershipCommand(base), nil
	case CommandTransferOwnershipWithData:
		return newTransferOwnershipWithDataCommand(base), nil
	case CommandBatchTransferOwnership:
		return newBatchTransferOwnershipCommand(base), nil
	case CommandBatchTransferOwnershipWithData:
		return newBatchTransferOwnershipWithDataCommand(base), nil
	case CommandForcedTransfer:
		return newForcedTransferCommand(base), nil
	case CommandLockBalance:
		return newLockBalanceCommand(base), nil
	case CommandUnlockBalance:
		return newUnlockBalanceCommand(base), nil
	case CommandModifyMetadata:
		return newModifyMetadataCommand(base), nil
	case CommandModifyRestriction:
		return newModifyRestrictionCommand(base), nil
	case CommandDelegateIssuerPower:
		return newDelegateIssuerPowerCommand(base), nil
	case CommandRevokeIssuerPower:
		return newRevokeIssuerPowerCommand(base), nil
	case CommandAttachDocument:
		return newAttachDocumentCommand(base), nil
	default:
		return nil, errors.INVALID_COMMAND.New(
			"unknown command kind %d", kind,
		).WithMetadata(errors.CommandMetadata{Command: kind.String()})
	}
}

func (c *baseCommand) Kind() CommandKind {
	return c.kind
}

func (c *baseCommand) Synchronize(ctx context.Context) errors.Error {
	if c.skipSync {
		if c.snapshot == nil {
			c.snapshot = &domain.TokenSnapshot{TokenId: c.token.Hex()}
		}
		return nil
	}

	snapshot, err := c.snapshots.Sync(ctx, c.token)
	if err != nil {
		return err
	}
	c.snapshot = snapshot
	return nil
}

func (c *baseCommand) CanExecute(actor symbol.PublicAccount) (AllowanceResult, errors.Error) {
	opts := c.execCtx.Options()
	for _, arg := range c.mandatoryArgs {
		if !opts.Has(arg) {
			return AllowanceResult{}, errors.MISSING_ARGUMENT.New(
				"missing mandatory argument %s for command %s", arg, c.kind,
			).WithMetadata(errors.ArgumentMetadata{
				Command:  c.kind.String(),
				Argument: arg,
			})
		}
	}

	if c.allowAnyActor {
		return AllowanceResult{Allowed: true}, nil
	}
	if c.snapshot == nil || !c.snapshot.IsOperator(actor.Address) {
		return AllowanceResult{
			Allowed: false,
			Reason: fmt.Sprintf(
				"actor %s is not an operator of token %s", actor.Address, c.token.Hex(),
			),
		}, nil
	}
	return AllowanceResult{Allowed: true}, nil
}

func (c *baseCommand) Execute(
	ctx context.Context, actor symbol.PublicAccount,
) (*ExecutionResult, errors.Error) {
	if c.snapshot == nil {
		if err := c.Synchronize(ctx); err != nil {
			return nil, err
		}
	}

	allowance, err := c.CanExecute(actor)
	if err != nil {
		return nil, err
	}
	if !allowance.Allowed {
		return nil, errors.OPERATION_FORBIDDEN.New(
			"%s", allowance.Reason,
		).WithMetadata(errors.OperationMetadata{
			Command: c.kind.String(),
			TokenId: c.token.Hex(),
			Actor:   actor.Address.Plain(),
		})
	}

	inners, err := c.compose(ctx, c.execCtx.Options())
	if err != nil {
		return nil, err
	}
	if len(inners) == 0 {
		return nil, errors.EMPTY_CONTRACT.New(
			"command %s composed no transactions for token %s", c.kind, c.token.Hex(),
		).WithMetadata(errors.ContractMetadata{
			Command: c.kind.String(),
			TokenId: c.token.Hex(),
		})
	}

	return c.wrap(inners)
}

// wrap bundles the composed list into one unsigned aggregate and serializes
// it as a transaction URI.
func (c *baseCommand) wrap(inners []symbol.InnerTransaction) (*ExecutionResult, errors.Error) {
	network := c.execCtx.Network()

	aggregate, err := symbol.NewAggregateTransaction(
		network.Type, inners, c.execCtx.Params().MaxFee,
	)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"command": c.kind.String(),
		})
	}
	payload, err := aggregate.Serialize()
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"command": c.kind.String(),
		})
	}
	hash, err := aggregate.Hash(network.GenerationHash)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"command": c.kind.String(),
		})
	}

	result := &ExecutionResult{
		ContractId: uuid.NewString(),
		TokenId:    c.token.Hex(),
		Command:    c.kind.String(),
		URI:        symbol.NewTransactionURI(payload, network.GenerationHash).String(),
		Hash:       hash,
		InnerCount: len(inners),
		Cosigners:  aggregate.RequiredCosigners(),
		Aggregate:  aggregate,
	}

	log.WithField("command", c.kind.String()).
		WithField("token", c.token.Hex()).
		WithField("txs", len(inners)).
		Debug("composed aggregate contract")
	return result, nil
}

// descriptor renders the marker message of this command, with optional
// payload fields appended.
func (c *baseCommand) descriptor(payload ...string) string {
	return nip13.NewDescriptor(c.kind.Verb(), c.token.Hex(), payload...).String()
}

// proofTransfer is the zero-value execution-proof transfer to the target
// account carrying the command's descriptor, signed by the target.
func (c *baseCommand) proofTransfer(payload ...string) (symbol.InnerTransaction, errors.Error) {
	tx, err := symbol.NewTransferTransaction(c.target.Address, nil, c.descriptor(payload...))
	if err != nil {
		return symbol.InnerTransaction{}, errors.INTERNAL_ERROR.Wrap(err).
			WithMetadata(map[string]any{"command": c.kind.String()})
	}
	return symbol.InnerTransaction{Transaction: tx, Signer: c.target}, nil
}

// derivePartition resolves the deterministic partition account of an owner.
func (c *baseCommand) derivePartition(owner symbol.Address) (*symbol.Account, errors.Error) {
	path, err := nip13.PartitionPath(owner)
	if err != nil {
		if typed, ok := err.(errors.Error); ok {
			return nil, typed
		}
		return nil, errors.INVALID_DERIVATION_PATH.Wrap(err).
			WithMetadata(errors.PathMetadata{Path: nip13.RootPath})
	}
	account, deriveErr := c.keys.DeriveAccount(path)
	if deriveErr != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(deriveErr).WithMetadata(map[string]any{
			"command": c.kind.String(),
			"path":    path,
		})
	}
	return account, nil
}

// deriveLocker resolves the deterministic locker account of a partition: one
// Remote-level step above the partition's own path.
func (c *baseCommand) deriveLocker(owner symbol.Address) (*symbol.Account, errors.Error) {
	partitionPath, err := nip13.PartitionPath(owner)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"command": c.kind.String(),
		})
	}
	lockerPath, pathErr := nip13.IncrementPathLevel(partitionPath, nip13.PathLevelRemote, 1)
	if pathErr != nil {
		return nil, pathErr
	}
	account, deriveErr := c.keys.DeriveAccount(lockerPath)
	if deriveErr != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(deriveErr).WithMetadata(map[string]any{
			"command": c.kind.String(),
			"path":    lockerPath,
		})
	}
	return account, nil
}

// transfer builds one inner token transfer carrying the command descriptor.
func (c *baseCommand) transfer(
	from symbol.PublicAccount, to symbol.Address, amount uint64, message string,
) (symbol.InnerTransaction, errors.Error) {
	tx, err := symbol.NewTransferTransaction(
		to, []symbol.Mosaic{{Id: c.token.Id, Amount: amount}}, message,
	)
	if err != nil {
		return symbol.InnerTransaction{}, errors.INTERNAL_ERROR.Wrap(err).
			WithMetadata(map[string]any{"command": c.kind.String()})
	}
	return symbol.InnerTransaction{Transaction: tx, Signer: from}, nil
}

// userRoleKey is the scoped restriction key of the User_Role field.
func (c *baseCommand) userRoleKey() (symbol.ScopedMetadataKey, errors.Error) {
	key, err := FieldKey(FieldUserRole)
	if err != nil {
		return 0, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"command": c.kind.String(),
		})
	}
	return key, nil
}

// feeMosaic is the network currency mosaic partitions must be allowed to
// hold to pay fees.
func (c *baseCommand) feeMosaic() symbol.MosaicId {
	return c.execCtx.Network().CurrencyMosaicId
}

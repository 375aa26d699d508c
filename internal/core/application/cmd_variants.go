package application

import (
	"context"
	"strconv"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// The transfer variants are plain decorators over the base transfer
// composition: a trailing data message, a fan-out over batch entries, or
// both stacked.

func newTransferOwnershipWithDataCommand(base *baseCommand) Command {
	base.kind = CommandTransferOwnershipWithData
	base.mandatoryArgs = []string{OptionRecipient, OptionAmount, OptionData}
	base.compose = withDataSegment(base, composeTransferOwnership(base))
	return base
}

func newBatchTransferOwnershipCommand(base *baseCommand) Command {
	base.kind = CommandBatchTransferOwnership
	base.mandatoryArgs = []string{OptionBatch}
	base.compose = batchFanout(base, composeTransferOwnership(base))
	return base
}

func newBatchTransferOwnershipWithDataCommand(base *baseCommand) Command {
	base.kind = CommandBatchTransferOwnershipWithData
	base.mandatoryArgs = []string{OptionBatch, OptionData}
	base.compose = batchFanout(base, withDataSegment(base, composeTransferOwnership(base)))
	return base
}

// withDataSegment appends a free-form data message to the parent
// composition. An empty parent composition stays empty, the data transfer
// never rides alone.
func withDataSegment(c *baseCommand, parent composeFunc) composeFunc {
	return func(ctx context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		inners, err := parent(ctx, opts)
		if err != nil || len(inners) == 0 {
			return inners, err
		}

		data, _ := opts.Get(OptionData)
		message := nip13.NewDescriptor(nip13.VerbData, c.token.Hex(), data).String()
		tx, txErr := symbol.NewTransferTransaction(c.target.Address, nil, message)
		if txErr != nil {
			return nil, errors.INVALID_OPTION.Wrap(txErr).WithMetadata(errors.ArgumentMetadata{
				Command:  c.kind.String(),
				Argument: OptionData,
			})
		}
		return append(inners, symbol.InnerTransaction{Transaction: tx, Signer: c.target}), nil
	}
}

// batchFanout re-runs the parent composition once per batch entry, deriving
// an immutable per-iteration option bag carrying that entry's recipient and
// amount. One entry with an unsatisfiable precondition empties the whole
// batch, the aggregate is all-or-nothing anyway.
func batchFanout(c *baseCommand, parent composeFunc) composeFunc {
	return func(ctx context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		entries, err := opts.BatchEntries(OptionBatch)
		if err != nil {
			return nil, err
		}
		if len(entries) == 0 {
			return nil, nil
		}

		proof, proofErr := c.proofTransfer()
		if proofErr != nil {
			return nil, proofErr
		}
		inners := []symbol.InnerTransaction{proof}
		for _, entry := range entries {
			derived := opts.With(
				CommandOption{Name: OptionRecipient, Value: entry.Recipient.Plain()},
				CommandOption{Name: OptionAmount, Value: strconv.FormatUint(entry.Amount, 10)},
			)
			segment, segmentErr := parent(ctx, derived)
			if segmentErr != nil {
				return nil, segmentErr
			}
			if len(segment) == 0 {
				return nil, nil
			}
			inners = append(inners, segment...)
		}
		return inners, nil
	}
}

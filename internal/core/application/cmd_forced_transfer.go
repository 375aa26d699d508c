package application

import (
	"context"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newForcedTransferCommand seizes units out of a holder's partition under
// operator authority. The partition multisig makes this possible without the
// holder's cooperation. Composes nothing when the partition does not exist.
func newForcedTransferCommand(base *baseCommand) Command {
	base.kind = CommandForcedTransfer
	base.mandatoryArgs = []string{OptionPartition, OptionAmount}
	base.compose = composeForcedTransfer(base)
	return base
}

func composeForcedTransfer(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		owner, err := opts.Address(OptionPartition)
		if err != nil {
			return nil, err
		}
		amount, err := opts.Uint64(OptionAmount)
		if err != nil {
			return nil, err
		}
		recipient, err := opts.Address(OptionRecipient)
		if err != nil {
			return nil, err
		}

		partition := c.snapshot.PartitionByOwner(owner)
		if partition == nil {
			partition = c.snapshot.PartitionByAccount(owner)
		}
		if partition == nil {
			return nil, nil
		}

		// Seized units return to the target unless an explicit recipient is
		// given. A recipient with a partition of their own receives there.
		destination := c.target.Address
		if !recipient.IsZero() {
			destination = recipient
			if dest := c.snapshot.PartitionByOwner(recipient); dest != nil {
				destination = dest.Account.Address
			}
		}

		seizure, txErr := c.transfer(
			partition.Account, destination, amount, c.descriptor(partition.Name),
		)
		if txErr != nil {
			return nil, txErr
		}
		return []symbol.InnerTransaction{seizure}, nil
	}
}

package application

import (
	"context"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newUnlockBalanceCommand releases previously locked units back into the
// owner's partition, staging the same target round-trip as the lock but in
// reverse. The locker account stays provisioned for later locks.
func newUnlockBalanceCommand(base *baseCommand) Command {
	base.kind = CommandUnlockBalance
	base.mandatoryArgs = []string{OptionPartition, OptionAmount}
	base.compose = composeUnlockBalance(base)
	return base
}

func composeUnlockBalance(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		owner, err := opts.Address(OptionPartition)
		if err != nil {
			return nil, err
		}
		amount, err := opts.Uint64(OptionAmount)
		if err != nil {
			return nil, err
		}

		partition := c.snapshot.PartitionByOwner(owner)
		if partition == nil {
			return nil, nil
		}
		locker, lockerErr := c.deriveLocker(partition.Owner)
		if lockerErr != nil {
			return nil, lockerErr
		}

		release, releaseErr := c.transfer(
			locker.PublicAccount, c.target.Address, amount, c.descriptor(partition.Name),
		)
		if releaseErr != nil {
			return nil, releaseErr
		}
		restitution, restitutionErr := c.transfer(
			c.target, partition.Account.Address, amount, c.descriptor(partition.Name),
		)
		if restitutionErr != nil {
			return nil, restitutionErr
		}
		return []symbol.InnerTransaction{release, restitution}, nil
	}
}

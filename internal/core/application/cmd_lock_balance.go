package application

import (
	"context"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newLockBalanceCommand freezes part of a partition's balance by parking it
// on the partition's deterministic locker account. The mosaic is restricted,
// so the units stage a round-trip through the target instead of moving
// directly. The first lock of a partition also provisions the locker.
func newLockBalanceCommand(base *baseCommand) Command {
	base.kind = CommandLockBalance
	base.mandatoryArgs = []string{OptionPartition, OptionAmount}
	base.compose = composeLockBalance(base)
	return base
}

func composeLockBalance(c *baseCommand) composeFunc {
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

		inners := make([]symbol.InnerTransaction, 0, 4)
		if c.snapshot.AddressRestriction(FieldUserRole, locker.Address) == nil {
			setup, setupErr := lockerSetupSegment(c, locker.PublicAccount)
			if setupErr != nil {
				return nil, setupErr
			}
			inners = append(inners, setup...)
		}

		staging, stagingErr := c.transfer(
			partition.Account, c.target.Address, amount, c.descriptor(partition.Name),
		)
		if stagingErr != nil {
			return nil, stagingErr
		}
		parking, parkingErr := c.transfer(
			c.target, locker.Address, amount, c.descriptor(partition.Name),
		)
		if parkingErr != nil {
			return nil, parkingErr
		}
		return append(inners, staging, parking), nil
	}
}

// lockerSetupSegment provisions a fresh locker account: operator multisig
// plus the locker role, so the global role cap keeps everyone else out.
func lockerSetupSegment(
	c *baseCommand, locker symbol.PublicAccount,
) ([]symbol.InnerTransaction, errors.Error) {
	operators := c.snapshot.Operators()
	userRole, err := c.userRoleKey()
	if err != nil {
		return nil, err
	}

	threshold := int8(len(operators))
	return []symbol.InnerTransaction{
		{
			Transaction: symbol.NewMultisigAccountModificationTransaction(
				threshold, threshold, operators, nil,
			),
			Signer: locker,
		},
		{
			Transaction: symbol.NewMosaicAddressRestrictionTransaction(
				c.token.Id, userRole, locker.Address, 0, RoleLocker,
			),
			Signer: c.target,
		},
	}, nil
}

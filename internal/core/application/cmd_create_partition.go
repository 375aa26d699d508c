package application

import (
	"context"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newCreatePartitionCommand provisions the deterministic partition account of
// an owner: operator multisig, on-chain name, mosaic allowances and the
// holder role. Composes nothing when the owner's partition already exists.
func newCreatePartitionCommand(base *baseCommand) Command {
	base.kind = CommandCreatePartition
	base.mandatoryArgs = []string{OptionName, OptionPartition}
	base.compose = composeCreatePartition(base)
	return base
}

func composeCreatePartition(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		owner, err := opts.Address(OptionPartition)
		if err != nil {
			return nil, err
		}
		name := opts.GetOrDefault(OptionName, "")
		holder, err := opts.Address(OptionHolder)
		if err != nil {
			return nil, err
		}

		if c.snapshot.PartitionByOwner(owner) != nil {
			return nil, nil
		}

		partition, deriveErr := c.derivePartition(owner)
		if deriveErr != nil {
			return nil, deriveErr
		}

		inners, setupErr := partitionSetupSegment(c, partition.PublicAccount, name, holder)
		if setupErr != nil {
			return nil, setupErr
		}

		// The closing marker transfer is what the registry reconstruction
		// parses the partition's name and owner back out of.
		marker, markerErr := symbol.NewTransferTransaction(
			partition.Address, nil, c.descriptor(name, owner.Plain()),
		)
		if markerErr != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(markerErr).WithMetadata(map[string]any{
				"command": c.kind.String(),
			})
		}
		return append(inners, symbol.InnerTransaction{
			Transaction: marker,
			Signer:      c.target,
		}), nil
	}
}

// partitionSetupSegment emits the four provisioning transactions of a fresh
// partition account, in fixed order: multisig conversion, name metadata and
// mosaic allowance signed by the partition, then the holder-role restriction
// signed by the target.
func partitionSetupSegment(
	c *baseCommand, partition symbol.PublicAccount, name string, holder symbol.Address,
) ([]symbol.InnerTransaction, errors.Error) {
	operators := c.snapshot.Operators()
	cosignatories := make([]symbol.Address, 0, len(operators)+1)
	cosignatories = append(cosignatories, operators...)
	if !holder.IsZero() {
		cosignatories = append(cosignatories, holder)
	}

	nameKey, err := FieldKey(FieldName)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"command": c.kind.String(),
		})
	}
	userRole, roleErr := c.userRoleKey()
	if roleErr != nil {
		return nil, roleErr
	}

	// Every operator must approve partition changes, partitions hold customer
	// balances.
	threshold := int8(len(operators))
	return []symbol.InnerTransaction{
		{
			Transaction: symbol.NewMultisigAccountModificationTransaction(
				threshold, threshold, cosignatories, nil,
			),
			Signer: partition,
		},
		{
			Transaction: symbol.NewAccountMetadataTransaction(
				partition.Address, nameKey, int16(len(name)), []byte(name),
			),
			Signer: partition,
		},
		{
			Transaction: symbol.NewAccountMosaicRestrictionTransaction(
				[]symbol.MosaicId{c.token.Id, c.feeMosaic()}, nil,
			),
			Signer: partition,
		},
		{
			Transaction: symbol.NewMosaicAddressRestrictionTransaction(
				c.token.Id, userRole, partition.Address, 0, RoleHolder,
			),
			Signer: c.target,
		},
	}, nil
}

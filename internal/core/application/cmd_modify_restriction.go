package application

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newModifyRestrictionCommand edits a restriction rule of the token. A
// restrictee equal to the target (the default) edits the network-wide global
// rule, any other restrictee edits the per-address value of that owner's
// partition. Composes nothing when the partition does not exist.
func newModifyRestrictionCommand(base *baseCommand) Command {
	base.kind = CommandModifyRestriction
	base.mandatoryArgs = []string{OptionField, OptionValue}
	base.compose = composeModifyRestriction(base)
	return base
}

func composeModifyRestriction(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		field := opts.GetOrDefault(OptionField, "")
		value, err := opts.Uint64(OptionValue)
		if err != nil {
			return nil, err
		}
		restrictee, err := opts.Address(OptionRestrictee)
		if err != nil {
			return nil, err
		}
		if restrictee.IsZero() {
			restrictee = c.target.Address
		}

		key, keyErr := FieldKey(field)
		if keyErr != nil {
			return nil, errors.INVALID_OPTION.Wrap(keyErr).WithMetadata(errors.ArgumentMetadata{
				Command:  c.kind.String(),
				Argument: OptionField,
			})
		}

		if restrictee == c.target.Address {
			return composeGlobalRestriction(c, opts, field, key, value)
		}
		return composeAddressRestriction(c, field, key, restrictee, value)
	}
}

// composeGlobalRestriction rewrites the network-wide rule of a field. The
// previous value/type pair is fixed by the standard: the creation-time
// User_Role rule for that key, no rule for anything else.
func composeGlobalRestriction(
	c *baseCommand, opts Options, field string, key symbol.ScopedMetadataKey, value uint64,
) ([]symbol.InnerTransaction, errors.Error) {
	prevValue, prevType := uint64(0), symbol.RestrictionTypeNone
	newType := symbol.RestrictionTypeEq
	if field == FieldUserRole {
		prevValue, prevType = RoleLocker, symbol.RestrictionTypeLe
		newType = symbol.RestrictionTypeLe
	}
	if name, ok := opts.Get(OptionType); ok {
		parsed, err := symbol.RestrictionTypeFromString(name)
		if err != nil {
			return nil, invalidOption(OptionType, name)
		}
		newType = parsed
	}

	log.WithField("token", c.token.Hex()).WithField("field", field).
		Warn("rewriting a global restriction can break holder compliance")

	proof, err := c.proofTransfer(field)
	if err != nil {
		return nil, err
	}
	return []symbol.InnerTransaction{
		proof,
		{
			Transaction: symbol.NewMosaicGlobalRestrictionTransaction(
				c.token.Id, key, prevValue, prevType, value, newType,
			),
			Signer: c.target,
		},
	}, nil
}

// composeAddressRestriction rewrites the per-address value of the
// restrictee's partition, with the previous value read from the snapshot.
func composeAddressRestriction(
	c *baseCommand, field string, key symbol.ScopedMetadataKey,
	restrictee symbol.Address, value uint64,
) ([]symbol.InnerTransaction, errors.Error) {
	partition := c.snapshot.PartitionByOwner(restrictee)
	if partition == nil {
		partition = c.snapshot.PartitionByAccount(restrictee)
	}
	if partition == nil {
		return nil, nil
	}

	prevValue := uint64(0)
	if entry := c.snapshot.AddressRestriction(field, partition.Account.Address); entry != nil {
		prevValue = entry.Value
	}

	proof, err := c.proofTransfer(field)
	if err != nil {
		return nil, err
	}
	return []symbol.InnerTransaction{
		proof,
		{
			Transaction: symbol.NewMosaicAddressRestrictionTransaction(
				c.token.Id, key, partition.Account.Address, prevValue, value,
			),
			Signer: c.target,
		},
	}, nil
}

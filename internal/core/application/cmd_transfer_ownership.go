package application

import (
	"context"
	"strconv"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newTransferOwnershipCommand moves token units between owners. The
// composition branches on who the sender is: the target account issues into
// a (possibly fresh) partition, a partition either funds another partition
// or hands its whole account over by swapping the holder cosignatory.
func newTransferOwnershipCommand(base *baseCommand) Command {
	base.kind = CommandTransferOwnership
	base.mandatoryArgs = []string{OptionRecipient, OptionAmount}
	base.compose = composeTransferOwnership(base)
	return base
}

func composeTransferOwnership(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		recipient, err := opts.Address(OptionRecipient)
		if err != nil {
			return nil, err
		}
		amount, err := opts.Uint64(OptionAmount)
		if err != nil {
			return nil, err
		}
		sender, err := opts.Address(OptionSender)
		if err != nil {
			return nil, err
		}
		if sender.IsZero() {
			sender = c.target.Address
		}

		if sender == c.target.Address {
			return composeIssuerTransfer(c, opts, recipient, amount)
		}
		return composeHolderTransfer(c, sender, recipient, amount)
	}
}

// composeIssuerTransfer moves units from the target into the recipient
// owner's partition, provisioning the partition first when it does not exist
// yet.
func composeIssuerTransfer(
	c *baseCommand, opts Options, recipient symbol.Address, amount uint64,
) ([]symbol.InnerTransaction, errors.Error) {
	if existing := c.snapshot.PartitionByOwner(recipient); existing != nil {
		funding, err := c.transfer(
			c.target, existing.Account.Address, amount,
			c.descriptor(existing.Name, recipient.Plain()),
		)
		if err != nil {
			return nil, err
		}
		return []symbol.InnerTransaction{funding}, nil
	}

	partition, err := c.derivePartition(recipient)
	if err != nil {
		return nil, err
	}
	// Unnamed partitions take the next positional name, matching how the
	// registry reconstruction names marker-less accounts.
	name := opts.GetOrDefault(OptionName, strconv.Itoa(len(c.snapshot.Partitions)))

	inners, setupErr := partitionSetupSegment(
		c, partition.PublicAccount, name, symbol.Address{},
	)
	if setupErr != nil {
		return nil, setupErr
	}

	funding, fundErr := c.transfer(
		c.target, partition.Address, amount, c.descriptor(name, recipient.Plain()),
	)
	if fundErr != nil {
		return nil, fundErr
	}
	return append(inners, funding), nil
}

// composeHolderTransfer moves units out of an existing partition. Without a
// destination partition the account itself changes hands: the holder
// cosignatory is swapped and the partition re-marked for the new owner.
func composeHolderTransfer(
	c *baseCommand, sender, recipient symbol.Address, amount uint64,
) ([]symbol.InnerTransaction, errors.Error) {
	source := c.snapshot.PartitionByOwner(sender)
	if source == nil {
		source = c.snapshot.PartitionByAccount(sender)
	}
	if source == nil {
		return nil, nil
	}

	if dest := c.snapshot.PartitionByOwner(recipient); dest != nil {
		funding, err := c.transfer(
			source.Account, dest.Account.Address, amount,
			c.descriptor(dest.Name, recipient.Plain()),
		)
		if err != nil {
			return nil, err
		}
		return []symbol.InnerTransaction{funding}, nil
	}

	marker, err := symbol.NewTransferTransaction(
		source.Account.Address, nil, c.descriptor(source.Name, recipient.Plain()),
	)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err).WithMetadata(map[string]any{
			"command": c.kind.String(),
		})
	}
	return []symbol.InnerTransaction{
		{
			Transaction: symbol.NewMultisigAccountModificationTransaction(
				0, 0, []symbol.Address{recipient}, []symbol.Address{sender},
			),
			Signer: source.Account,
		},
		{
			Transaction: marker,
			Signer:      source.Account,
		},
	}, nil
}

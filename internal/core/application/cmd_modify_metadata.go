package application

import (
	"context"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newModifyMetadataCommand updates one metadata field of the token's mosaic.
// The size delta is accounted against the synchronized previous value, the
// chain rejects metadata updates with a wrong delta.
func newModifyMetadataCommand(base *baseCommand) Command {
	base.kind = CommandModifyMetadata
	base.mandatoryArgs = []string{OptionField, OptionValue}
	base.compose = composeModifyMetadata(base)
	return base
}

func composeModifyMetadata(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		field := opts.GetOrDefault(OptionField, "")
		value := opts.GetOrDefault(OptionValue, "")

		key, keyErr := FieldKey(field)
		if keyErr != nil {
			return nil, errors.INVALID_OPTION.Wrap(keyErr).WithMetadata(errors.ArgumentMetadata{
				Command:  c.kind.String(),
				Argument: OptionField,
			})
		}

		proof, err := c.proofTransfer(field)
		if err != nil {
			return nil, err
		}

		previous, _ := c.snapshot.MetadataValue(field)
		return []symbol.InnerTransaction{
			proof,
			{
				Transaction: symbol.NewMosaicMetadataTransaction(
					c.target.Address, c.token.Id, key,
					int16(len(value)-len(previous)), []byte(value),
				),
				Signer: c.target,
			},
		}, nil
	}
}

package application

import (
	"context"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newPublishTokenCommand re-registers the token's namespace, re-links the
// mosaic alias and records the source network on-chain. Issuers run it after
// creation to make the token discoverable, and again when the namespace
// lease needs renewal.
func newPublishTokenCommand(base *baseCommand) Command {
	base.kind = CommandPublishToken
	base.mandatoryArgs = []string{OptionName}
	base.compose = composePublishToken(base)
	return base
}

func composePublishToken(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		name := opts.GetOrDefault(OptionName, "")
		source := opts.GetOrDefault(OptionSource, c.token.Source.Source)

		inners := make([]symbol.InnerTransaction, 0, 6)

		proof, err := c.proofTransfer()
		if err != nil {
			return nil, err
		}
		inners = append(inners, proof)

		namespaces, err := namespaceSegment(c, name)
		if err != nil {
			return nil, err
		}
		inners = append(inners, namespaces...)

		leaf, err := leafNamespace(name)
		if err != nil {
			return nil, err
		}
		inners = append(inners, symbol.InnerTransaction{
			Transaction: symbol.NewMosaicAliasTransaction(
				symbol.AliasActionLink, leaf, c.token.Id,
			),
			Signer: c.target,
		})

		key, keyErr := FieldKey(FieldSource)
		if keyErr != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(keyErr).WithMetadata(map[string]any{
				"command": c.kind.String(),
			})
		}
		previous, _ := c.snapshot.MetadataValue(FieldSource)
		inners = append(inners, symbol.InnerTransaction{
			Transaction: symbol.NewMosaicMetadataTransaction(
				c.target.Address, c.token.Id, key,
				int16(len(source)-len(previous)), []byte(source),
			),
			Signer: c.target,
		})
		return inners, nil
	}
}

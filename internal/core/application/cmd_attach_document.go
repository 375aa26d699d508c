package application

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newAttachDocumentCommand anchors an off-chain document to the token: the
// document's digest is stored as mosaic metadata under a key hashed from the
// document name. Re-attaching under the same name supersedes the digest.
func newAttachDocumentCommand(base *baseCommand) Command {
	base.kind = CommandAttachDocument
	base.mandatoryArgs = []string{OptionName, OptionDocument}
	base.compose = composeAttachDocument(base)
	return base
}

func composeAttachDocument(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		name := opts.GetOrDefault(OptionName, "")
		document := opts.GetOrDefault(OptionDocument, "")

		key, keyErr := symbol.ScopedMetadataKeyFromName(name)
		if keyErr != nil {
			return nil, errors.INVALID_OPTION.Wrap(keyErr).WithMetadata(errors.ArgumentMetadata{
				Command:  c.kind.String(),
				Argument: OptionName,
			})
		}
		digest := chainhash.HashH([]byte(document)).String()

		previous := ""
		for _, entry := range c.snapshot.Metadata {
			if entry.Key == key {
				previous = entry.Value
				break
			}
		}

		proof, err := c.proofTransfer(name)
		if err != nil {
			return nil, err
		}
		return []symbol.InnerTransaction{
			proof,
			{
				Transaction: symbol.NewMosaicMetadataTransaction(
					c.target.Address, c.token.Id, key,
					int16(len(digest)-len(previous)), []byte(digest),
				),
				Signer: c.target,
			},
		}, nil
	}
}

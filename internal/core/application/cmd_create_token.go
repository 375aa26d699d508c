package application

import (
	"context"
	"strings"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// tokenMosaicFlags are the capability bits every token of the standard is
// issued with. Revocation stays disabled, forced transfers go through the
// partition multisig instead.
const tokenMosaicFlags = symbol.MosaicFlagSupplyMutable |
	symbol.MosaicFlagTransferable |
	symbol.MosaicFlagRestrictable

// newCreateTokenCommand issues a new token: it converts the target account
// into the operator multisig, registers the token's namespace, defines the
// backing mosaic and seals it with the standard's restriction rules. The
// token does not exist yet, so any actor may run it and there is no network
// state to synchronize.
func newCreateTokenCommand(base *baseCommand) Command {
	base.kind = CommandCreateToken
	base.mandatoryArgs = []string{
		OptionName, OptionSource, OptionOperators, OptionSupply, OptionMetadata,
	}
	base.allowAnyActor = true
	base.skipSync = true
	base.compose = composeCreateToken(base)
	return base
}

func composeCreateToken(c *baseCommand) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		name := opts.GetOrDefault(OptionName, "")
		source := opts.GetOrDefault(OptionSource, "")
		supply, err := opts.Uint64(OptionSupply)
		if err != nil {
			return nil, err
		}
		operators, err := opts.AddressList(OptionOperators)
		if err != nil {
			return nil, err
		}
		metadata, err := opts.Pairs(OptionMetadata)
		if err != nil {
			return nil, err
		}
		divisibility, err := opts.Uint32(OptionDivisibility)
		if err != nil {
			return nil, err
		}

		inners := make([]symbol.InnerTransaction, 0, 16)

		proof, err := c.proofTransfer()
		if err != nil {
			return nil, err
		}
		inners = append(inners, proof)

		// All but one operator must approve any change, so the loss of a
		// single operator key never deadlocks the token.
		threshold := int8(len(operators) - 1)
		inners = append(inners, symbol.InnerTransaction{
			Transaction: symbol.NewMultisigAccountModificationTransaction(
				threshold, threshold, operators, nil,
			),
			Signer: c.target,
		})

		namespaces, nsErr := namespaceSegment(c, name)
		if nsErr != nil {
			return nil, nsErr
		}
		inners = append(inners, namespaces...)

		nonce, nonceErr := nip13.TokenNonce(c.target, supply, name, source, operators)
		if nonceErr != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(nonceErr).WithMetadata(map[string]any{
				"command": c.kind.String(),
			})
		}
		definition, defErr := symbol.NewMosaicDefinitionTransaction(
			nonce, c.target.Address, tokenMosaicFlags, uint8(divisibility), 0,
		)
		if defErr != nil {
			return nil, errors.INTERNAL_ERROR.Wrap(defErr).WithMetadata(map[string]any{
				"command": c.kind.String(),
			})
		}
		inners = append(inners, symbol.InnerTransaction{Transaction: definition, Signer: c.target})

		if supply > 0 {
			inners = append(inners, symbol.InnerTransaction{
				Transaction: symbol.NewMosaicSupplyChangeTransaction(
					c.token.Id, symbol.SupplyActionIncrease, supply,
				),
				Signer: c.target,
			})
		}

		leaf, leafErr := leafNamespace(name)
		if leafErr != nil {
			return nil, leafErr
		}
		inners = append(inners, symbol.InnerTransaction{
			Transaction: symbol.NewMosaicAliasTransaction(
				symbol.AliasActionLink, leaf, c.token.Id,
			),
			Signer: c.target,
		})

		for _, field := range []string{FieldMarketCode, FieldISIN, FieldClassification} {
			value := metadata[field]
			if value == "" {
				continue
			}
			key, keyErr := FieldKey(field)
			if keyErr != nil {
				return nil, errors.INTERNAL_ERROR.Wrap(keyErr).WithMetadata(map[string]any{
					"command": c.kind.String(),
				})
			}
			inners = append(inners, symbol.InnerTransaction{
				Transaction: symbol.NewMosaicMetadataTransaction(
					c.target.Address, c.token.Id, key, int16(len(value)), []byte(value),
				),
				Signer: c.target,
			})
		}

		inners = append(inners,
			symbol.InnerTransaction{
				Transaction: symbol.NewAccountMosaicRestrictionTransaction(
					[]symbol.MosaicId{c.token.Id}, nil,
				),
				Signer: c.target,
			},
			symbol.InnerTransaction{
				Transaction: symbol.NewAccountMosaicRestrictionTransaction(
					[]symbol.MosaicId{c.feeMosaic()}, nil,
				),
				Signer: c.target,
			},
		)

		userRole, roleErr := c.userRoleKey()
		if roleErr != nil {
			return nil, roleErr
		}
		inners = append(inners,
			symbol.InnerTransaction{
				Transaction: symbol.NewMosaicGlobalRestrictionTransaction(
					c.token.Id, userRole,
					0, symbol.RestrictionTypeNone,
					MaxUserRole, symbol.RestrictionTypeLe,
				),
				Signer: c.target,
			},
			symbol.InnerTransaction{
				Transaction: symbol.NewMosaicAddressRestrictionTransaction(
					c.token.Id, userRole, c.target.Address, 0, RoleTarget,
				),
				Signer: c.target,
			},
		)
		return inners, nil
	}
}

// namespaceSegment registers every dot-separated segment of the token name,
// root first, each signed by the target.
func namespaceSegment(c *baseCommand, name string) ([]symbol.InnerTransaction, errors.Error) {
	inners := make([]symbol.InnerTransaction, 0, 3)
	parent := symbol.NamespaceId(0)
	for _, segment := range strings.Split(name, ".") {
		registration, err := symbol.NewNamespaceRegistrationTransaction(segment, parent, 0)
		if err != nil {
			return nil, errors.INVALID_OPTION.Wrap(err).WithMetadata(errors.ArgumentMetadata{
				Command:  c.kind.String(),
				Argument: OptionName,
			})
		}
		inners = append(inners, symbol.InnerTransaction{
			Transaction: registration,
			Signer:      c.target,
		})
		parent = registration.Id
	}
	return inners, nil
}

// leafNamespace resolves the id of the last segment of a dotted name, the
// namespace the mosaic alias points at.
func leafNamespace(name string) (symbol.NamespaceId, errors.Error) {
	path, err := symbol.NamespacePath(name)
	if err != nil {
		return 0, errors.INVALID_OPTION.Wrap(err).WithMetadata(errors.ArgumentMetadata{
			Argument: OptionName,
		})
	}
	return path[len(path)-1], nil
}

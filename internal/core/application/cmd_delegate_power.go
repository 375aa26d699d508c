package application

import (
	"context"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// newDelegateIssuerPowerCommand adds an operator to the target multisig and
// mirrors the addition into every partition, so the operator set stays
// consistent across all accounts of the token.
func newDelegateIssuerPowerCommand(base *baseCommand) Command {
	base.kind = CommandDelegateIssuerPower
	base.mandatoryArgs = []string{OptionOperator}
	base.compose = composeOperatorRewire(base, true)
	return base
}

// newRevokeIssuerPowerCommand removes an operator everywhere the delegate
// command added one. The minimum operator-set size is enforced at the
// service boundary, not here.
func newRevokeIssuerPowerCommand(base *baseCommand) Command {
	base.kind = CommandRevokeIssuerPower
	base.mandatoryArgs = []string{OptionOperator}
	base.compose = composeOperatorRewire(base, false)
	return base
}

// composeOperatorRewire emits one multisig modification for the target and
// one per existing partition, all moving the same operator in or out. The
// approval thresholds track the set size, adding raises them by one and
// removing lowers them by one.
func composeOperatorRewire(c *baseCommand, add bool) composeFunc {
	return func(_ context.Context, opts Options) ([]symbol.InnerTransaction, errors.Error) {
		operator, err := opts.Address(OptionOperator)
		if err != nil {
			return nil, err
		}
		if operator.IsZero() {
			value, _ := opts.Get(OptionOperator)
			return nil, invalidOption(OptionOperator, value)
		}

		var additions, deletions []symbol.Address
		delta := int8(1)
		if add {
			additions = []symbol.Address{operator}
		} else {
			deletions = []symbol.Address{operator}
			delta = -1
		}

		proof, proofErr := c.proofTransfer(operator.Plain())
		if proofErr != nil {
			return nil, proofErr
		}

		inners := []symbol.InnerTransaction{
			proof,
			{
				Transaction: symbol.NewMultisigAccountModificationTransaction(
					delta, delta, additions, deletions,
				),
				Signer: c.target,
			},
		}
		for _, partition := range c.snapshot.Partitions {
			inners = append(inners, symbol.InnerTransaction{
				Transaction: symbol.NewMultisigAccountModificationTransaction(
					delta, delta, additions, deletions,
				),
				Signer: partition.Account,
			})
		}
		return inners, nil
	}
}

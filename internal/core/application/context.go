package application

import (
	"time"

	"github.com/tokenstd/nip13d/pkg/nip13"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// TransactionParams carries the network-facing parameters every composed
// aggregate is wrapped with.
type TransactionParams struct {
	MaxFee   uint64
	Deadline time.Duration
}

// Context carries the immutable parameters of one command execution. Batch
// fan-out derives per-iteration copies through WithOptions instead of
// mutating a shared bag, so a context can never observe writes from another
// iteration.
type Context struct {
	revision int
	actor    symbol.PublicAccount
	network  symbol.NetworkConfig
	params   TransactionParams
	options  Options
}

func NewContext(
	actor symbol.PublicAccount,
	network symbol.NetworkConfig,
	params TransactionParams,
	options Options,
) Context {
	return Context{
		revision: nip13.Revision,
		actor:    actor,
		network:  network,
		params:   params,
		options:  options,
	}
}

func (c Context) Revision() int {
	return c.revision
}

func (c Context) Actor() symbol.PublicAccount {
	return c.actor
}

func (c Context) Network() symbol.NetworkConfig {
	return c.network
}

func (c Context) Params() TransactionParams {
	return c.params
}

func (c Context) Options() Options {
	return c.options
}

// WithOptions returns a copy of the context carrying the given options, the
// receiver is left untouched.
func (c Context) WithOptions(options Options) Context {
	c.options = options
	return c
}

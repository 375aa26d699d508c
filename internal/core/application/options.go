package application

import (
	"strconv"
	"strings"

	"github.com/tokenstd/nip13d/pkg/errors"
	"github.com/tokenstd/nip13d/pkg/symbol"
)

// CommandOption is one named argument of an execution.
type CommandOption struct {
	Name  string
	Value string
}

// Options is an immutable named-option bag. With returns derived copies, the
// original is never touched.
type Options struct {
	values map[string]string
}

func NewOptions(opts ...CommandOption) Options {
	values := make(map[string]string, len(opts))
	for _, opt := range opts {
		values[opt.Name] = opt.Value
	}
	return Options{values: values}
}

func (o Options) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

func (o Options) Get(name string) (string, bool) {
	value, ok := o.values[name]
	return value, ok
}

// GetOrDefault returns the value of name, or fallback when the option is
// absent.
func (o Options) GetOrDefault(name, fallback string) string {
	if value, ok := o.values[name]; ok {
		return value
	}
	return fallback
}

// With returns a copy of the bag with the given options set on top of the
// existing ones.
func (o Options) With(opts ...CommandOption) Options {
	values := make(map[string]string, len(o.values)+len(opts))
	for name, value := range o.values {
		values[name] = value
	}
	for _, opt := range opts {
		values[opt.Name] = opt.Value
	}
	return Options{values: values}
}

// Uint64 parses a numeric option. Absence yields zero, presence of a
// non-numeric value fails with INVALID_OPTION.
func (o Options) Uint64(name string) (uint64, errors.Error) {
	value, ok := o.values[name]
	if !ok {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, invalidOption(name, value)
	}
	return parsed, nil
}

// Uint32 parses a numeric option bounded to 32 bits.
func (o Options) Uint32(name string) (uint32, errors.Error) {
	value, ok := o.values[name]
	if !ok {
		return 0, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return 0, invalidOption(name, value)
	}
	return uint32(parsed), nil
}

// Bool parses a boolean option, treating absence as false.
func (o Options) Bool(name string) (bool, errors.Error) {
	value, ok := o.values[name]
	if !ok {
		return false, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, invalidOption(name, value)
	}
	return parsed, nil
}

// Address parses an address option. Absence yields a zero address.
func (o Options) Address(name string) (symbol.Address, errors.Error) {
	value, ok := o.values[name]
	if !ok {
		return symbol.Address{}, nil
	}
	addr, err := symbol.DecodeAddress(value)
	if err != nil {
		return symbol.Address{}, invalidOption(name, value)
	}
	return addr, nil
}

// AddressList parses a comma-separated list of addresses.
func (o Options) AddressList(name string) ([]symbol.Address, errors.Error) {
	value, ok := o.values[name]
	if !ok || len(value) == 0 {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	addrs := make([]symbol.Address, 0, len(parts))
	for _, part := range parts {
		addr, err := symbol.DecodeAddress(strings.TrimSpace(part))
		if err != nil {
			return nil, invalidOption(name, value)
		}
		addrs = append(addrs, addr)
	}
	return addrs, nil
}

// Pairs parses a comma-separated list of key=value pairs.
func (o Options) Pairs(name string) (map[string]string, errors.Error) {
	value, ok := o.values[name]
	if !ok || len(value) == 0 {
		return nil, nil
	}
	pairs := make(map[string]string)
	for _, part := range strings.Split(value, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || len(kv[0]) == 0 {
			return nil, invalidOption(name, value)
		}
		pairs[kv[0]] = kv[1]
	}
	return pairs, nil
}

// BatchEntry is one (recipient, amount) pair of a batch fan-out.
type BatchEntry struct {
	Recipient symbol.Address
	Amount    uint64
}

// BatchEntries parses a semicolon-separated list of recipient:amount pairs.
func (o Options) BatchEntries(name string) ([]BatchEntry, errors.Error) {
	value, ok := o.values[name]
	if !ok || len(value) == 0 {
		return nil, nil
	}
	parts := strings.Split(value, ";")
	entries := make([]BatchEntry, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(strings.TrimSpace(part), ":")
		if len(fields) != 2 {
			return nil, invalidOption(name, value)
		}
		recipient, err := symbol.DecodeAddress(fields[0])
		if err != nil {
			return nil, invalidOption(name, value)
		}
		amount, parseErr := strconv.ParseUint(fields[1], 10, 64)
		if parseErr != nil {
			return nil, invalidOption(name, value)
		}
		entries = append(entries, BatchEntry{Recipient: recipient, Amount: amount})
	}
	return entries, nil
}

func invalidOption(name, value string) errors.Error {
	return errors.INVALID_OPTION.New(
		"invalid value %q for option %s", value, name,
	).WithMetadata(errors.ArgumentMetadata{Argument: name})
}

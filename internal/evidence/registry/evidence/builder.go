package evidence

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateValue is returned when a name is added twice to one Builder.
	ErrDuplicateValue = errors.New("duplicate evidence value")
	// ErrUndeclaredValue is returned when a name is not declared by the Code.
	ErrUndeclaredValue = errors.New("undeclared evidence value")
	// ErrTypeMismatch is returned when a value's type differs from its declaration.
	ErrTypeMismatch = errors.New("evidence value type mismatch")
	// ErrUnsupportedType is returned for Go values with no evidence type.
	ErrUnsupportedType = errors.New("unsupported evidence value type")
)

// Builder accumulates evidence values for one request. Violations of the
// builder contract are programming errors: the first one is returned from
// Add and sticks, so Values reports it too.
//
// A Builder is request-scoped and not safe for concurrent use.
type Builder struct {
	code   Code
	values []Value
	names  map[string]struct{}
	err    error
}

// AddOption adjusts a single Add call.
type AddOption func(*Value)

// Optional marks the value as non-mandatory.
func Optional() AddOption {
	return func(v *Value) { v.Mandatory = false }
}

// NewBuilder returns a Builder that checks names and types against code.
// A code without declared values accepts any name.
func NewBuilder(code Code) *Builder {
	return &Builder{
		code:  code,
		names: make(map[string]struct{}, len(code.Values)),
	}
}

// Add appends a value. Values are mandatory unless Optional is passed.
func (b *Builder) Add(name string, value any, source string, opts ...AddOption) error {
	if b.err != nil {
		return b.err
	}
	if _, dup := b.names[name]; dup {
		return b.fail(fmt.Errorf("%w: %q in %s", ErrDuplicateValue, name, b.code.Name))
	}

	typ, ok := TypeOf(value)
	if !ok {
		return b.fail(fmt.Errorf("%w: %q is %T", ErrUnsupportedType, name, value))
	}
	if len(b.code.Values) > 0 {
		spec, declared := b.code.Spec(name)
		if !declared {
			return b.fail(fmt.Errorf("%w: %q in %s", ErrUndeclaredValue, name, b.code.Name))
		}
		if spec.Type != typ {
			return b.fail(fmt.Errorf("%w: %q declared %s, got %s", ErrTypeMismatch, name, spec.Type, typ))
		}
	}

	v := Value{
		Name:      name,
		Type:      typ,
		Value:     value,
		Source:    source,
		Mandatory: true,
	}
	for _, opt := range opts {
		opt(&v)
	}
	b.names[name] = struct{}{}
	b.values = append(b.values, v)
	return nil
}

// Values returns the values in insertion order, or the first contract error.
func (b *Builder) Values() ([]Value, error) {
	if b.err != nil {
		return nil, b.err
	}
	out := make([]Value, len(b.values))
	copy(out, b.values)
	return out, nil
}

func (b *Builder) fail(err error) error {
	b.err = err
	return err
}

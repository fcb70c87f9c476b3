package datatypes

import (
	"fmt"
	"sort"
	"sync"

	base "github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/typecast"
)

// Factory builds a ClickHouse descriptor from construction options.
type Factory func(opts base.Options) (Type, error)

// Registry maps type keys to ClickHouse descriptor factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding every ClickHouse descriptor.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}

	r.Register(base.KeyString, override(base.KeyString, &chType{sql: fixed("String"), def: emptyString, wire: []string{"String"}}))
	r.Register(base.KeyChar, override(base.KeyChar, &chType{sql: fixedString, def: emptyString, wire: []string{"String"}}))
	r.Register(base.KeyText, override(base.KeyText, &chType{def: emptyString, wire: []string{"String"}}))
	r.Register(base.KeyTinyInt, override(base.KeyTinyInt, &chType{sql: integer("Int8"), def: zero, wire: []string{"Int8"}}))
	r.Register(base.KeySmallInt, override(base.KeySmallInt, &chType{sql: integer("Int16"), def: zero, wire: []string{"Int16"}}))
	r.Register(base.KeyMediumInt, override(base.KeyMediumInt, &chType{sql: integer("Int32"), def: zero, wire: []string{"Int32"}}))
	r.Register(base.KeyInteger, override(base.KeyInteger, &chType{sql: integer("Int32"), def: zero, wire: []string{"Int32"}}))
	r.Register(base.KeyBigInt, override(base.KeyBigInt, &chType{sql: integer("Int64"), def: zero, wire: []string{"Int64"}}))
	r.Register(base.KeyFloat, override(base.KeyFloat, &chType{sql: fixed("Float32"), def: zero, wire: []string{"Float32"}}))
	r.Register(base.KeyBoolean, override(base.KeyBoolean, &chType{sql: fixed("Int8"), def: zero, stringify: stringifyBoolean, wire: []string{"Int8"}}))
	r.Register(base.KeyDecimal, decimalFactory)
	r.Register(base.KeyDate, parsing(base.KeyDate, &chType{sql: fixed("DateTime"), def: func() any { return ZeroDateTime }, stringify: stringifyDate, wire: []string{"DateTime"}}, ParseDate))
	r.Register(base.KeyDateOnly, parsing(base.KeyDateOnly, &chType{sql: fixed("Date"), def: func() any { return ZeroDate }, wire: []string{"Date"}}, ParseDateOnly))
	r.Register(base.KeyUUID, override(base.KeyUUID, &chType{sql: fixed("UUID"), def: func() any { return NilUUID }, stringify: stringifyUUID, wire: []string{"UUID"}}))
	r.Register(base.KeyEnum, override(base.KeyEnum, &chType{sql: enum("Enum8"), def: zero, wire: []string{"Enum8"}}))
	r.Register(base.KeyEnum16, override(base.KeyEnum16, &chType{sql: enum("Enum16"), def: zero, wire: []string{"Enum16"}}))
	r.Register(base.KeyBlob, override(base.KeyBlob, &chType{sql: fixed("String"), def: emptyString, stringify: stringifyBlob, wire: []string{"String"}}))
	r.Register(base.KeyJSON, override(base.KeyJSON, &chType{def: emptyString, stringify: stringifyJSON, wire: []string{"String"}}))
	r.Register(base.KeyArray, r.arrayFactory)

	return r
}

// override returns a factory that copies proto's hooks onto the generic
// descriptor of key.
func override(key string, proto *chType) Factory {
	return func(opts base.Options) (Type, error) {
		parent, err := base.New(key, opts)
		if err != nil {
			return nil, err
		}
		t := *proto
		t.parent = parent
		return &t, nil
	}
}

// parsing is override for descriptors that also decode wire values.
func parsing(key string, proto *chType, parse typecast.ParseFunc) Factory {
	return func(opts base.Options) (Type, error) {
		parent, err := base.New(key, opts)
		if err != nil {
			return nil, err
		}
		t := *proto
		t.parent = parent
		return &parsingType{chType: &t, parse: parse}, nil
	}
}

func decimalFactory(opts base.Options) (Type, error) {
	parent, err := base.New(base.KeyDecimal, opts)
	if err != nil {
		return nil, err
	}
	return &chType{
		parent: parent,
		sql: func(o base.Options, ro *base.RenderOptions) string {
			name := parent.ToSQL(ro)
			if o.Unsigned {
				return "U" + name
			}
			return name
		},
		def:       zero,
		stringify: stringifyDecimal,
		wire:      []string{"Decimal"},
	}, nil
}

// arrayFactory builds Array(T). Elements are extended to their ClickHouse
// descriptor; a missing element type means String.
func (r *Registry) arrayFactory(opts base.Options) (Type, error) {
	elem := opts.Element
	if elem == nil {
		elem = base.MustNew(base.KeyString, base.Options{})
	}
	extended, err := r.Extend(elem)
	if err != nil {
		return nil, fmt.Errorf("array element: %w", err)
	}
	opts.Element = extended

	parent, err := base.New(base.KeyArray, opts)
	if err != nil {
		return nil, err
	}
	return &chType{
		parent: parent,
		sql: func(o base.Options, ro *base.RenderOptions) string {
			return "Array(" + o.Element.ToSQL(ro) + ")"
		},
		def:       func() any { return []any{} },
		stringify: stringifyArray,
		escapes:   noEscape,
		wire:      []string{"Array"},
	}, nil
}

// Register installs the factory for key, replacing any previous one.
func (r *Registry) Register(key string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[key] = f
}

// Get builds the ClickHouse descriptor for key.
func (r *Registry) Get(key string, opts base.Options) (Type, error) {
	r.mu.RLock()
	f, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", base.ErrUnknownType, key)
	}
	return f(opts)
}

// Resolve builds the ClickHouse descriptor for key, or the generic one when
// ClickHouse declares no override.
func (r *Registry) Resolve(key string, opts base.Options) (base.Type, error) {
	r.mu.RLock()
	_, ok := r.factories[key]
	r.mu.RUnlock()
	if !ok {
		return base.New(key, opts)
	}
	return r.Get(key, opts)
}

// Extend builds the ClickHouse descriptor for old's key from old's options.
// Types that are already ClickHouse descriptors, or have no ClickHouse
// override, are returned as is.
func (r *Registry) Extend(old base.Type) (base.Type, error) {
	if _, ok := old.(Type); ok {
		return old, nil
	}
	r.mu.RLock()
	_, ok := r.factories[old.Key()]
	r.mu.RUnlock()
	if !ok {
		return old, nil
	}
	return r.Get(old.Key(), old.Options())
}

// NativeName returns the DDL type name for key.
func (r *Registry) NativeName(key string, opts base.Options, ro *base.RenderOptions) (string, error) {
	t, err := r.Resolve(key, opts)
	if err != nil {
		return "", err
	}
	return t.ToSQL(ro), nil
}

// DefaultValue returns the default of key's descriptor built with zero options.
func (r *Registry) DefaultValue(key string) (any, error) {
	t, err := r.Resolve(key, base.Options{})
	if err != nil {
		return nil, err
	}
	return t.DefaultValue(), nil
}

// Literal renders v as SQL literal text for key.
func (r *Registry) Literal(key string, opts base.Options, v any, ro *base.RenderOptions) (string, error) {
	t, err := r.Resolve(key, opts)
	if err != nil {
		return "", err
	}
	return base.Literal(t, v, ro)
}

// Keys returns the registered keys (sorted).
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.factories))
	for k := range r.factories {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Parsers returns the descriptors that decode wire values, in key order.
func (r *Registry) Parsers() []typecast.Parser {
	var parsers []typecast.Parser
	for _, key := range r.Keys() {
		t, err := r.Get(key, base.Options{})
		if err != nil {
			continue
		}
		if p, ok := t.(typecast.Parser); ok {
			parsers = append(parsers, p)
		}
	}
	return parsers
}

// Package typecast maps wire column types reported by a database driver
// to parse functions that override the driver's default decoding.
//
// A Registry is owned by a connection manager. It is refreshed from a
// table of data types when the manager is created (and again when custom
// types are added) and consulted once per returned field while decoding.
package typecast

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Field describes one column value as returned by the driver.
type Field interface {
	// Name is the column name.
	Name() string
	// Type is the wire type name reported by the driver (e.g. "DateTime").
	Type() string
	// String returns the textual form of the value. ok is false for NULL.
	String() (s string, ok bool)
}

// RawField is a Field that also exposes the value the driver decoded.
type RawField interface {
	Field
	RawValue() any
}

// Options carries the session settings a parser may depend on.
type Options struct {
	// Timezone is a named zone or a fixed offset such as +03:00.
	Timezone string
}

// ParseFunc converts a wire field into its in-memory representation.
type ParseFunc func(f Field, opts Options) (any, error)

// Parser is implemented by data types that can decode wire values.
type Parser interface {
	// WireTypes lists the driver type names the parser handles.
	WireTypes() []string
	// Parse converts a wire field into its in-memory representation.
	Parse(f Field, opts Options) (any, error)
}

// Registry maps wire type names to parse functions.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]ParseFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]ParseFunc)}
}

// Refresh records every wire type declared by the given parsers.
// Later parsers win over earlier ones and over existing entries.
func (r *Registry) Refresh(parsers ...Parser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range parsers {
		for _, wire := range p.WireTypes() {
			r.parsers[wire] = p.Parse
		}
	}
}

// Set registers a single parse function for a wire type.
func (r *Registry) Set(wireType string, fn ParseFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[wireType] = fn
}

// Clear removes every entry.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.parsers)
}

// Lookup returns the parse function for a wire type. Wrapped types such as
// Nullable(DateTime) or DateTime('UTC') fall back to their bare name.
func (r *Registry) Lookup(wireType string) (ParseFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.parsers[wireType]; ok {
		return fn, true
	}
	if base := BaseType(wireType); base != wireType {
		fn, ok := r.parsers[base]
		return fn, ok
	}
	return nil, false
}

// WireTypes returns the registered wire type names (sorted).
func (r *Registry) WireTypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch decodes a field. If a parser is registered for the field's wire
// type it is invoked; otherwise next supplies the driver's default value.
// Errors from either branch are returned unchanged.
func (r *Registry) Dispatch(f Field, opts Options, next func() (any, error)) (any, error) {
	if fn, ok := r.Lookup(f.Type()); ok {
		return fn(f, opts)
	}
	return next()
}

// BaseType strips Nullable(...) and LowCardinality(...) wrappers and type
// parameters from a wire type name: Nullable(DateTime('UTC')) -> DateTime.
func BaseType(wireType string) string {
	t := strings.TrimSpace(wireType)
	for {
		stripped := false
		for _, wrapper := range []string{"Nullable(", "LowCardinality("} {
			if strings.HasPrefix(t, wrapper) && strings.HasSuffix(t, ")") {
				t = t[len(wrapper) : len(t)-1]
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}
	if i := strings.IndexByte(t, '('); i > 0 {
		t = t[:i]
	}
	return t
}

// Value is a Field backed by a value already decoded by the driver.
type Value struct {
	Column   string
	WireType string
	Raw      any
}

// TextField builds a Value holding wire text for the given type.
func TextField(wireType, text string) Value {
	return Value{WireType: wireType, Raw: text}
}

// Name returns the column name.
func (v Value) Name() string { return v.Column }

// Type returns the wire type name.
func (v Value) Type() string { return v.WireType }

// RawValue returns the value as decoded by the driver.
func (v Value) RawValue() any { return v.Raw }

// String returns the textual form of the raw value.
func (v Value) String() (string, bool) {
	switch raw := v.Raw.(type) {
	case nil:
		return "", false
	case string:
		return raw, true
	case *string:
		if raw == nil {
			return "", false
		}
		return *raw, true
	case []byte:
		if raw == nil {
			return "", false
		}
		return string(raw), true
	case time.Time:
		return raw.Format(time.DateTime), true
	case *time.Time:
		if raw == nil {
			return "", false
		}
		return raw.Format(time.DateTime), true
	case fmt.Stringer:
		return raw.String(), true
	default:
		return fmt.Sprint(raw), true
	}
}

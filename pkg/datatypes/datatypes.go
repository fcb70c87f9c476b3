// Package datatypes provides the dialect-independent logical type system.
//
// A Type describes one logical column type: its DDL name, the default value
// used when a column declares none, and how in-memory values become SQL
// literals. Dialect packages wrap these base descriptors and override the
// capabilities that differ for their database; anything they do not
// override resolves through the descriptors defined here.
package datatypes

import (
	"fmt"
)

// Logical type keys.
const (
	KeyString    = "STRING"
	KeyChar      = "CHAR"
	KeyText      = "TEXT"
	KeyTinyInt   = "TINYINT"
	KeySmallInt  = "SMALLINT"
	KeyMediumInt = "MEDIUMINT"
	KeyInteger   = "INTEGER"
	KeyBigInt    = "BIGINT"
	KeyFloat     = "FLOAT"
	KeyBoolean   = "BOOLEAN"
	KeyDecimal   = "DECIMAL"
	KeyDate      = "DATE"
	KeyDateOnly  = "DATEONLY"
	KeyUUID      = "UUID"
	KeyEnum      = "ENUM"
	KeyEnum16    = "ENUM16"
	KeyBlob      = "BLOB"
	KeyJSON      = "JSON"
	KeyArray     = "ARRAY"
)

// OperationWhere marks literals rendered inside a comparison or filter clause.
const OperationWhere = "where"

// Options holds the construction options of a type.
type Options struct {
	// Length for STRING/CHAR/integers, fractional seconds for DATE.
	Length int
	// Variant selects tiny/medium/long for TEXT and BLOB.
	Variant string
	Binary  bool

	Precision int
	Scale     int
	Unsigned  bool
	Zerofill  bool

	// Values lists the permitted ENUM values in declaration order.
	Values []string

	// Element is the contained type of an ARRAY.
	Element Type
}

// RenderOptions is supplied by the statement generator at render time.
type RenderOptions struct {
	// Escape turns a value into literal SQL text. Nil uses EscapeValue.
	Escape func(v any) string
	// Operation names the clause the literal is rendered for ("where", "insert", ...).
	Operation string
	// Timezone is a named zone or a fixed offset such as +03:00.
	Timezone string
}

// EscapeFunc returns the configured escaper or the generic fallback.
func (ro *RenderOptions) EscapeFunc() func(v any) string {
	if ro == nil || ro.Escape == nil {
		return EscapeValue
	}
	return ro.Escape
}

// Zone returns the configured timezone or the empty string.
func (ro *RenderOptions) Zone() string {
	if ro == nil {
		return ""
	}
	return ro.Timezone
}

// Type is the capability set shared by every logical type descriptor.
type Type interface {
	// Key is the stable identifier of the type family.
	Key() string
	// Options returns the construction options.
	Options() Options
	// ToSQL returns the DDL type name.
	ToSQL(ro *RenderOptions) string
	// DefaultValue is used when a column declares no explicit default.
	DefaultValue() any
	// Stringify converts v into the value handed to the escaper, or into
	// Raw text that is embedded as is.
	Stringify(v any, ro *RenderOptions) (any, error)
	// Escapes reports whether stringified values pass through the escaper.
	Escapes() bool
}

// Raw is SQL text that is embedded into statements without escaping.
type Raw string

// Literal renders v as SQL literal text for type t.
func Literal(t Type, v any, ro *RenderOptions) (string, error) {
	s, err := t.Stringify(v, ro)
	if err != nil {
		return "", err
	}
	if raw, ok := s.(Raw); ok {
		return string(raw), nil
	}
	if !t.Escapes() {
		return text(s), nil
	}
	return ro.EscapeFunc()(s), nil
}

func text(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case Raw:
		return string(s)
	case []byte:
		return string(s)
	default:
		return fmt.Sprint(v)
	}
}

// Package datatypes holds the ClickHouse type descriptors. Each descriptor
// wraps the generic descriptor of the same key and overrides the DDL name,
// the default value and, where ClickHouse differs, literal rendering.
package datatypes

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	base "github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
)

// Type is a ClickHouse type descriptor.
type Type interface {
	base.Type
	// WireTypes lists the ClickHouse wire names the type corresponds to.
	WireTypes() []string
}

// NilUUID is the default value of UUID columns.
const NilUUID = "00000000-0000-0000-0000-000000000000"

// chType overrides selected capabilities of a generic descriptor.
// Nil hooks resolve to the wrapped descriptor.
type chType struct {
	parent    base.Type
	sql       func(o base.Options, ro *base.RenderOptions) string
	def       func() any
	stringify func(v any, o base.Options, ro *base.RenderOptions) (any, error)
	escapes   *bool
	wire      []string
}

func (t *chType) Key() string           { return t.parent.Key() }
func (t *chType) Options() base.Options { return t.parent.Options() }
func (t *chType) WireTypes() []string   { return t.wire }

func (t *chType) ToSQL(ro *base.RenderOptions) string {
	if t.sql == nil {
		return t.parent.ToSQL(ro)
	}
	return t.sql(t.parent.Options(), ro)
}

func (t *chType) DefaultValue() any {
	if t.def == nil {
		return t.parent.DefaultValue()
	}
	return t.def()
}

func (t *chType) Stringify(v any, ro *base.RenderOptions) (any, error) {
	if t.stringify == nil {
		return t.parent.Stringify(v, ro)
	}
	return t.stringify(v, t.parent.Options(), ro)
}

func (t *chType) Escapes() bool {
	if t.escapes == nil {
		return t.parent.Escapes()
	}
	return *t.escapes
}

var noEscape = new(bool)

func fixed(name string) func(base.Options, *base.RenderOptions) string {
	return func(base.Options, *base.RenderOptions) string { return name }
}

// integer renders name, or its unsigned UInt variant.
func integer(name string) func(base.Options, *base.RenderOptions) string {
	return func(o base.Options, _ *base.RenderOptions) string {
		if o.Unsigned {
			return "U" + name
		}
		return name
	}
}

func emptyString() any { return "" }
func zero() any        { return 0 }

func fixedString(o base.Options, _ *base.RenderOptions) string {
	length := o.Length
	if length == 0 {
		length = 255
	}
	return "FixedString(" + strconv.Itoa(length) + ")"
}

func enum(name string) func(base.Options, *base.RenderOptions) string {
	return func(o base.Options, ro *base.RenderOptions) string {
		escape := ro.EscapeFunc()
		pairs := make([]string, len(o.Values))
		for i, v := range o.Values {
			pairs[i] = escape(v) + " = " + strconv.Itoa(i+1)
		}
		return name + "(" + strings.Join(pairs, ", ") + ")"
	}
}

func stringifyBoolean(v any, _ base.Options, _ *base.RenderOptions) (any, error) {
	if b, ok := v.(bool); ok && b {
		return 1, nil
	}
	return 0, nil
}

func stringifyBlob(v any, _ base.Options, _ *base.RenderOptions) (any, error) {
	if isEmpty(v) {
		return base.Raw("''"), nil
	}
	return base.MarshalJSON(v)
}

func stringifyJSON(v any, _ base.Options, ro *base.RenderOptions) (any, error) {
	if s, ok := v.(string); ok && ro != nil && ro.Operation == base.OperationWhere {
		return base.Raw(s), nil
	}
	return base.MarshalJSON(v)
}

// ZeroDateTime and ZeroDate are the defaults of DATE and DATEONLY columns.
// The server stores them as the epoch.
const (
	ZeroDateTime = "0000-00-00 00:00:00"
	ZeroDate     = "0000-00-00"
)

func stringifyDate(v any, _ base.Options, ro *base.RenderOptions) (any, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok && (s == ZeroDateTime || s == ZeroDate) {
		return s, nil
	}
	t, err := base.ApplyTimezone(v, ro.Zone())
	if err != nil {
		return nil, err
	}
	return t.Format(DateTimeLayout), nil
}

func stringifyUUID(v any, _ base.Options, _ *base.RenderOptions) (any, error) {
	switch id := v.(type) {
	case uuid.UUID:
		return id.String(), nil
	case *uuid.UUID:
		if id == nil {
			return nil, nil
		}
		return id.String(), nil
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid uuid %q: %w", id, err)
		}
		return parsed.String(), nil
	default:
		return v, nil
	}
}

func stringifyDecimal(v any, _ base.Options, _ *base.RenderOptions) (any, error) {
	switch d := v.(type) {
	case decimal.Decimal:
		return base.Raw(d.String()), nil
	case *decimal.Decimal:
		if d == nil {
			return nil, nil
		}
		return base.Raw(d.String()), nil
	default:
		return v, nil
	}
}

func stringifyArray(v any, o base.Options, ro *base.RenderOptions) (any, error) {
	if v == nil {
		return base.Raw("NULL"), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("array value must be a sequence, got %T", v)
	}

	parts := make([]string, rv.Len())
	for i := range parts {
		s, err := base.Literal(o.Element, rv.Index(i).Interface(), ro)
		if err != nil {
			return nil, fmt.Errorf("array element %d: %w", i, err)
		}
		parts[i] = s
	}
	return "[" + strings.Join(parts, ",") + "]", nil
}

func isEmpty(v any) bool {
	switch b := v.(type) {
	case nil:
		return true
	case string:
		return b == ""
	case []byte:
		return len(b) == 0
	}
	return false
}

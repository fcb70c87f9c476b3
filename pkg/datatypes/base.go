package datatypes

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// ErrUnknownType is returned for keys that no type system declares.
var ErrUnknownType = errors.New("unknown data type")

// descriptor is the generic implementation behind every base type.
type descriptor struct {
	key       string
	opts      Options
	sql       func(o Options, ro *RenderOptions) string
	stringify func(v any, o Options, ro *RenderOptions) (any, error)
	escapes   bool
}

func (d *descriptor) Key() string                    { return d.key }
func (d *descriptor) Options() Options               { return d.opts }
func (d *descriptor) ToSQL(ro *RenderOptions) string { return d.sql(d.opts, ro) }
func (d *descriptor) DefaultValue() any              { return nil }
func (d *descriptor) Escapes() bool                  { return d.escapes }

func (d *descriptor) Stringify(v any, ro *RenderOptions) (any, error) {
	if d.stringify == nil {
		return v, nil
	}
	return d.stringify(v, d.opts, ro)
}

type definition struct {
	sql       func(o Options, ro *RenderOptions) string
	stringify func(v any, o Options, ro *RenderOptions) (any, error)
}

var definitions = map[string]definition{
	KeyString:    {sql: stringSQL("VARCHAR")},
	KeyChar:      {sql: stringSQL("CHAR")},
	KeyText:      {sql: variantSQL("TEXT")},
	KeyTinyInt:   {sql: integerSQL("TINYINT")},
	KeySmallInt:  {sql: integerSQL("SMALLINT")},
	KeyMediumInt: {sql: integerSQL("MEDIUMINT")},
	KeyInteger:   {sql: integerSQL("INTEGER")},
	KeyBigInt:    {sql: integerSQL("BIGINT")},
	KeyFloat:     {sql: integerSQL("FLOAT")},
	KeyBoolean:   {sql: fixedSQL("TINYINT(1)")},
	KeyDecimal:   {sql: decimalSQL},
	KeyDate:      {sql: dateSQL, stringify: stringifyDate},
	KeyDateOnly:  {sql: fixedSQL("DATE"), stringify: stringifyDateOnly},
	KeyUUID:      {sql: fixedSQL("UUID")},
	KeyEnum:      {sql: enumSQL("ENUM")},
	KeyEnum16:    {sql: enumSQL("ENUM")},
	KeyBlob:      {sql: variantSQL("BLOB")},
	KeyJSON:      {sql: fixedSQL("JSON"), stringify: stringifyJSON},
	KeyArray:     {sql: arraySQL},
}

// New builds the generic descriptor for key.
func New(key string, opts Options) (Type, error) {
	s, ok := definitions[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, key)
	}
	return &descriptor{key: key, opts: opts, sql: s.sql, stringify: s.stringify, escapes: true}, nil
}

// MustNew is like New but panics on unknown keys. Use it for package-level tables.
func MustNew(key string, opts Options) Type {
	t, err := New(key, opts)
	if err != nil {
		panic(err)
	}
	return t
}

// Keys returns every generic type key (sorted).
func Keys() []string {
	keys := make([]string, 0, len(definitions))
	for k := range definitions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func fixedSQL(name string) func(Options, *RenderOptions) string {
	return func(Options, *RenderOptions) string { return name }
}

func stringSQL(name string) func(Options, *RenderOptions) string {
	return func(o Options, _ *RenderOptions) string {
		length := o.Length
		if length == 0 {
			length = 255
		}
		s := fmt.Sprintf("%s(%d)", name, length)
		if o.Binary {
			s += " BINARY"
		}
		return s
	}
}

func variantSQL(name string) func(Options, *RenderOptions) string {
	return func(o Options, _ *RenderOptions) string {
		switch strings.ToLower(o.Variant) {
		case "tiny":
			return "TINY" + name
		case "medium":
			return "MEDIUM" + name
		case "long":
			return "LONG" + name
		default:
			return name
		}
	}
}

func integerSQL(name string) func(Options, *RenderOptions) string {
	return func(o Options, _ *RenderOptions) string {
		s := name
		if o.Length > 0 {
			s += "(" + strconv.Itoa(o.Length) + ")"
		}
		if o.Unsigned {
			s += " UNSIGNED"
		}
		if o.Zerofill {
			s += " ZEROFILL"
		}
		return s
	}
}

func decimalSQL(o Options, _ *RenderOptions) string {
	switch {
	case o.Precision > 0 && o.Scale > 0:
		return fmt.Sprintf("DECIMAL(%d,%d)", o.Precision, o.Scale)
	case o.Precision > 0:
		return fmt.Sprintf("DECIMAL(%d)", o.Precision)
	default:
		return "DECIMAL"
	}
}

func dateSQL(o Options, _ *RenderOptions) string {
	if o.Length > 0 {
		return fmt.Sprintf("DATETIME(%d)", o.Length)
	}
	return "DATETIME"
}

func enumSQL(name string) func(Options, *RenderOptions) string {
	return func(o Options, ro *RenderOptions) string {
		escape := ro.EscapeFunc()
		values := make([]string, len(o.Values))
		for i, v := range o.Values {
			values[i] = escape(v)
		}
		return name + "(" + strings.Join(values, ", ") + ")"
	}
}

func arraySQL(o Options, ro *RenderOptions) string {
	if o.Element == nil {
		return "ARRAY"
	}
	return o.Element.ToSQL(ro) + "[]"
}

func stringifyDate(v any, _ Options, ro *RenderOptions) (any, error) {
	t, err := ApplyTimezone(v, ro.Zone())
	if err != nil {
		return nil, err
	}
	return t.Format("2006-01-02 15:04:05.000 -07:00"), nil
}

func stringifyDateOnly(v any, _ Options, _ *RenderOptions) (any, error) {
	switch d := v.(type) {
	case time.Time:
		return d.Format(time.DateOnly), nil
	case *time.Time:
		if d == nil {
			return nil, nil
		}
		return d.Format(time.DateOnly), nil
	default:
		return v, nil
	}
}

func stringifyJSON(v any, _ Options, _ *RenderOptions) (any, error) {
	return MarshalJSON(v)
}

// MarshalJSON serializes v to its JSON text.
func MarshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to serialize value: %w", err)
	}
	return string(b), nil
}

package dialect

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
)

var backslashEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\b", `\b`,
	"\f", `\f`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

// Escape renders v as a SQL literal for this dialect.
// Slices other than []byte render as bracketed lists of escaped elements.
func (d *Dialect) Escape(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case datatypes.Raw:
		return string(val)
	case string:
		return d.quoteString(val)
	case []byte:
		if d.Literals == LiteralBackslash {
			return d.quoteString(string(val))
		}
		return datatypes.EscapeValue(val)
	case time.Time:
		return d.quoteString(val.Format("2006-01-02 15:04:05.000"))
	case fmt.Stringer:
		return d.quoteString(val.String())
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = d.Escape(rv.Index(i).Interface())
		}
		return "[" + strings.Join(parts, ",") + "]"
	}
	return datatypes.EscapeValue(v)
}

func (d *Dialect) quoteString(s string) string {
	if d.Literals == LiteralBackslash {
		return "'" + backslashEscaper.Replace(s) + "'"
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

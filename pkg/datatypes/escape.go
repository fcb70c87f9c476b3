package datatypes

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EscapeValue is the generic literal escaper used when a dialect supplies none.
// Strings are single-quoted with embedded quotes doubled.
func EscapeValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case Raw:
		return string(val)
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", val)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case string:
		return "'" + strings.ReplaceAll(val, "'", "''") + "'"
	case []byte:
		return "X'" + hex.EncodeToString(val) + "'"
	case time.Time:
		return "'" + val.Format("2006-01-02 15:04:05.000") + "'"
	case fmt.Stringer:
		return EscapeValue(val.String())
	default:
		return EscapeValue(fmt.Sprint(val))
	}
}

package datatypes

import (
	"fmt"
	"time"

	base "github.com/leapstack-labs/clickhouse-dialect/pkg/datatypes"
	"github.com/leapstack-labs/clickhouse-dialect/pkg/typecast"
)

// DateTimeLayout is the literal format of ClickHouse DateTime values.
const DateTimeLayout = time.DateTime

// wireLayouts are the DateTime text forms the server returns.
var wireLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// parsingType is a descriptor that also decodes wire values.
type parsingType struct {
	*chType
	parse typecast.ParseFunc
}

// Parse converts a wire field into its in-memory representation.
func (t *parsingType) Parse(f typecast.Field, opts typecast.Options) (any, error) {
	return t.parse(f, opts)
}

// ParseDate reads DateTime wire text as wall clock time in the configured
// timezone. A named zone is looked up in the tz database; anything else is
// read as a fixed offset. Values the driver already decoded keep their
// instant and are only moved into the timezone.
func ParseDate(f typecast.Field, opts typecast.Options) (any, error) {
	text, ok := f.String()
	if !ok {
		return nil, nil
	}

	tz := opts.Timezone
	if tz == "" {
		tz = base.DefaultTimezone
	}
	loc, err := base.Location(tz)
	if err != nil {
		return nil, err
	}

	if t, ok := driverTime(f); ok {
		return t.In(loc), nil
	}

	for _, layout := range wireLayouts {
		if t, err := time.ParseInLocation(layout, text, loc); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("cannot parse %s value %q", f.Type(), text)
}

// ParseDateOnly returns Date wire text unchanged. A time.Time from the
// driver is formatted as its calendar day.
func ParseDateOnly(f typecast.Field, _ typecast.Options) (any, error) {
	text, ok := f.String()
	if !ok {
		return nil, nil
	}
	if t, ok := driverTime(f); ok {
		return t.Format(time.DateOnly), nil
	}
	return text, nil
}

func driverTime(f typecast.Field) (time.Time, bool) {
	rf, ok := f.(typecast.RawField)
	if !ok {
		return time.Time{}, false
	}
	switch t := rf.RawValue().(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t != nil {
			return *t, true
		}
	}
	return time.Time{}, false
}

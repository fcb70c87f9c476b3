package datatypes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // named zones must resolve without a system zoneinfo
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "+00:00"

// IsOffset reports whether tz is a fixed offset such as +03:00, -0330 or Z.
func IsOffset(tz string) bool {
	if tz == "Z" {
		return true
	}
	return len(tz) > 1 && (tz[0] == '+' || tz[0] == '-')
}

// IsNamedZone reports whether tz names a zone in the tz database.
func IsNamedZone(tz string) bool {
	if tz == "" || IsOffset(tz) {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Location resolves tz to a location. The empty string means UTC.
func Location(tz string) (*time.Location, error) {
	switch {
	case tz == "":
		return time.UTC, nil
	case IsOffset(tz):
		secs, err := offsetSeconds(tz)
		if err != nil {
			return nil, err
		}
		return time.FixedZone(tz, secs), nil
	default:
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		return loc, nil
	}
}

func offsetSeconds(tz string) (int, error) {
	if tz == "Z" {
		return 0, nil
	}
	sign := 1
	if tz[0] == '-' {
		sign = -1
	}
	digits := strings.ReplaceAll(tz[1:], ":", "")
	if len(digits) != 2 && len(digits) != 4 {
		return 0, fmt.Errorf("invalid timezone offset %q", tz)
	}
	hours, err := strconv.Atoi(digits[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid timezone offset %q: %w", tz, err)
	}
	minutes := 0
	if len(digits) == 4 {
		if minutes, err = strconv.Atoi(digits[2:]); err != nil {
			return 0, fmt.Errorf("invalid timezone offset %q: %w", tz, err)
		}
	}
	if hours > 14 || minutes > 59 {
		return 0, fmt.Errorf("invalid timezone offset %q", tz)
	}
	return sign * (hours*3600 + minutes*60), nil
}

// naiveLayouts are accepted for date strings without zone information.
var naiveLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// ApplyTimezone converts v to a time.Time expressed in tz. Strings carrying
// an offset keep their instant; naive strings are read as wall clock in tz.
func ApplyTimezone(v any, tz string) (time.Time, error) {
	loc, err := Location(tz)
	if err != nil {
		return time.Time{}, err
	}

	switch d := v.(type) {
	case time.Time:
		return d.In(loc), nil
	case *time.Time:
		if d == nil {
			return time.Time{}, fmt.Errorf("cannot convert nil time")
		}
		return d.In(loc), nil
	case string:
		if t, err := time.Parse(time.RFC3339Nano, d); err == nil {
			return t.In(loc), nil
		}
		for _, layout := range naiveLayouts {
			if t, err := time.ParseInLocation(layout, d, loc); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("invalid date value %q", d)
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to a date", v)
	}
}

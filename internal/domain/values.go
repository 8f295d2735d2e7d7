package domain

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

const (
	dayLayout       = "2006-01-02"
	timestampLayout = "2006-01-02 15:04:05.000000-07:00"
)

// Day is a calendar date stored as YYYY-MM-DD. SQLite hands it back as text,
// postgres as a time value; both scan to the same string.
type Day string

func DayOf(t time.Time) Day {
	return Day(t.UTC().Format(dayLayout))
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(t.Format(dayLayout)), nil
}

func (d Day) String() string {
	return string(d)
}

func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Day(v.Format(dayLayout))
	case string:
		*d = normalizeDay(v)
	case []byte:
		*d = normalizeDay(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Day", src)
	}
	return nil
}

func (d Day) Value() (driver.Value, error) {
	return string(d), nil
}

// normalizeDay trims a time suffix some drivers append to DATE columns.
func normalizeDay(s string) Day {
	s = strings.TrimSpace(s)
	if len(s) > len(dayLayout) {
		s = s[:len(dayLayout)]
	}
	return Day(s)
}

// Timestamp is a UTC instant written with microsecond precision so every
// backend round-trips and orders it the same way.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC().Truncate(time.Microsecond)}
}

var timestampLayouts = []string{
	timestampLayout,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time = time.Time{}
		return nil
	case time.Time:
		ts.Time = v.UTC()
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (ts *Timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time = t.UTC()
			return nil
		}
	}
	return fmt.Errorf("cannot parse timestamp %q", s)
}

func (ts Timestamp) Value() (driver.Value, error) {
	return ts.UTC().Format(timestampLayout), nil
}

// Package calendar implements timezone-naive civil dates and the month grid
// the event calendar is rendered from. All equality, bucketing and grid
// placement is done on (year, month, day) triples only; routing a civil date
// through an instant would shift it across the UTC boundary for users west
// of Greenwich, which is the bug this package exists to prevent.
package calendar

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a wire string is not a valid YYYY-MM-DD date.
var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

// CivilDate is a calendar day with no time-of-day or timezone component.
// Two values representing the same civil date are always equal, regardless
// of how they were constructed.
type CivilDate struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31
}

// String returns the canonical wire format, zero-padded YYYY-MM-DD.
func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Parse converts a wire string back into a CivilDate.
//
// Parsing is strict: the string must match YYYY-MM-DD with a month of 1-12
// and a day that exists in that month. Out-of-range values are rejected
// rather than normalized. The three fields are parsed as plain integers and
// the date is constructed directly, never through instant-based parsing.
func Parse(s string) (CivilDate, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return CivilDate{}, ErrInvalidDate
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return CivilDate{}, ErrInvalidDate
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return CivilDate{}, ErrInvalidDate
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return CivilDate{}, ErrInvalidDate
	}

	if month < 1 || month > 12 {
		return CivilDate{}, ErrInvalidDate
	}
	if day < 1 || day > daysIn(year, month) {
		return CivilDate{}, ErrInvalidDate
	}

	return CivilDate{Year: year, Month: month, Day: day}, nil
}

// FromTime reads the civil date of t in t's own location.
func FromTime(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: int(m), Day: d}
}

// Today returns the current civil date in the process's local zone.
func Today() CivilDate {
	return FromTime(time.Now())
}

// IsZero reports whether d is the zero value.
func (d CivilDate) IsZero() bool {
	return d == CivilDate{}
}

// SameDay reports year+month+day equality. This, not instant comparison,
// is the only correct way to assign events to grid cells.
func SameDay(a, b CivilDate) bool {
	return a == b
}

// Before reports whether d is earlier than other in calendar order.
func (d CivilDate) Before(other CivilDate) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// Weekday returns the day of the week, 0=Sunday.
//
// time.Date is used only to derive the weekday; the construction is fixed
// to UTC so the result never depends on the process's local offset.
func (d CivilDate) Weekday() int {
	t := time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
	return int(t.Weekday())
}

// AddDays returns the civil date n days after d (n may be negative).
func (d CivilDate) AddDays(n int) CivilDate {
	t := time.Date(d.Year, time.Month(d.Month), d.Day+n, 0, 0, 0, 0, time.UTC)
	return FromTime(t)
}

// AddMonths returns day 1 of the month n months after d's month.
// Used for prev/next month navigation.
func (d CivilDate) AddMonths(n int) CivilDate {
	t := time.Date(d.Year, time.Month(d.Month+n), 1, 0, 0, 0, 0, time.UTC)
	return FromTime(t)
}

// FirstOfMonth returns day 1 of d's month.
func (d CivilDate) FirstOfMonth() CivilDate {
	return CivilDate{Year: d.Year, Month: d.Month, Day: 1}
}

// DaysInMonth returns the number of days in d's month.
func (d CivilDate) DaysInMonth() int {
	return daysIn(d.Year, d.Month)
}

func daysIn(year, month int) int {
	// day 0 of the next month normalizes to the last day of this one
	t := time.Date(year, time.Month(month+1), 0, 0, 0, 0, 0, time.UTC)
	return t.Day()
}

// MarshalJSON encodes the date as its wire string.
func (d CivilDate) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON decodes a wire string.
func (d *CivilDate) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the date as its wire string, which Postgres accepts for
// DATE columns.
func (d CivilDate) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan reads a DATE column. Drivers hand DATE back as time.Time or as the
// wire string depending on configuration; both carry the civil fields we
// need, so neither path consults the session timezone.
func (d *CivilDate) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CivilDate", src)
	}
}

// GormDataType tells gorm to migrate CivilDate columns as DATE.
func (CivilDate) GormDataType() string {
	return "date"
}

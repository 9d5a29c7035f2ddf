package task

import (
	"fmt"
	"time"
)

const dateKeyLayout = "2006-01-02"

// DateKey is a calendar-date-only string in YYYY-MM-DD form. All recurrence
// comparisons happen on DateKeys so that time-of-day and timezone offsets can
// never make two renderings of the same local date compare unequal.
// Lexicographic order on DateKeys matches chronological order.
type DateKey string

// DateKeyOf reduces a timestamp to the calendar date in its own location.
func DateKeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateKeyLayout))
}

// ParseDateKey validates s as a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	if _, err := time.Parse(dateKeyLayout, s); err != nil {
		return "", fmt.Errorf("invalid date key %q: %w", s, err)
	}
	return DateKey(s), nil
}

// Valid reports whether k is a well-formed YYYY-MM-DD key.
func (k DateKey) Valid() bool {
	_, err := time.Parse(dateKeyLayout, string(k))
	return err == nil
}

func (k DateKey) String() string {
	return string(k)
}

// Before reports whether k falls on an earlier calendar date than other.
func (k DateKey) Before(other DateKey) bool {
	return k < other
}

// date returns the parsed calendar date at midnight UTC; zero if malformed.
func (k DateKey) date() time.Time {
	d, err := time.Parse(dateKeyLayout, string(k))
	if err != nil {
		return time.Time{}
	}
	return d
}

// Weekday returns the day of the week k falls on.
func (k DateKey) Weekday() time.Weekday {
	return k.date().Weekday()
}

// Day returns the day of the month, 1-31.
func (k DateKey) Day() int {
	return k.date().Day()
}

// Month returns the month of the year.
func (k DateKey) Month() time.Month {
	return k.date().Month()
}

// DaysInMonth returns the length of the month k falls in.
func (k DateKey) DaysInMonth() int {
	d := k.date()
	return time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddDays returns the key n calendar days after k (n may be negative).
func (k DateKey) AddDays(n int) DateKey {
	return DateKeyOf(k.date().AddDate(0, 0, n))
}

// UTC returns midnight UTC on the key's date. Used where a caller needs an
// instant anchored to the calendar date regardless of the host timezone.
func (k DateKey) UTC() time.Time {
	return k.date()
}

// Time returns the key as a local timestamp at the given time of day.
func (k DateKey) Time(hour, minute int) time.Time {
	d := k.date()
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.Local)
}

package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month is a calendar month, 1 through 12.
type Month int

// Months returns January through December.
func Months() []Month {
	out := make([]Month, 12)
	for i := range out {
		out[i] = Month(i + 1)
	}
	return out
}

// ParseMonth accepts a two-digit key ("06"), a bare number ("6"), a full
// English name ("June") or its three-letter abbreviation ("jun").
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		m := Month(n)
		if !m.Valid() {
			return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
		}
		return m, nil
	}

	lower := strings.ToLower(s)
	for _, m := range Months() {
		name := strings.ToLower(m.Name())
		if lower == name || (len(lower) == 3 && strings.HasPrefix(name, lower)) {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
}

// Valid reports whether m is in 1..12.
func (m Month) Valid() bool {
	return m >= 1 && m <= 12
}

// Key returns the two-digit path/query key, "01" through "12".
func (m Month) Key() string {
	return fmt.Sprintf("%02d", int(m))
}

// Name returns the English month name.
func (m Month) Name() string {
	return time.Month(m).String()
}

// DaysIn returns the number of days in m for the given year.
func (m Month) DaysIn(year int) int {
	// Day 0 of the next month normalizes to the last day of m.
	return time.Date(year, time.Month(m)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ValidDate reports whether (year, month, day) names a real calendar day.
func ValidDate(year int, month Month, day int) bool {
	return month.Valid() && day >= 1 && day <= month.DaysIn(year)
}

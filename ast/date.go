package ast

import (
	"fmt"
	"time"
)

// Date is a calendar date without time or location. The zero value is not a
// meaningful date; use DefaultDate when no date is known.
type Date struct {
	Year  int
	Month int
	Day   int
}

// DefaultDate is 1970-01-01.
var DefaultDate = Date{Year: 1970, Month: 1, Day: 1}

// Today returns the current local date.
func Today() Date {
	return DateFromTime(time.Now())
}

// DateFromTime truncates t to its calendar date.
func DateFromTime(t time.Time) Date {
	return Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}
}

// ParseDate parses a date string in YYYY-MM-DD format.
//
// Example:
//
//	date, err := ast.ParseDate("2024-01-15")
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateFromTime(t), nil
}

// Time returns the date at midnight UTC.
func (d Date) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

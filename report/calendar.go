package report

import (
	"fmt"
	"time"
)

// Month is a calendar month. Reports bucket rows by the half-open date range
// [first day of the month, first day of the next month).
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses "YYYY-MM".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("month %q: want YYYY-MM: %w", s, err)
	}
	return MonthOf(t), nil
}

// First is midnight UTC of the first day of m.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next is the month after m.
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// Lower is the inclusive lower bound of m as stored in TEXT date columns.
func (m Month) Lower() string {
	return m.First().Format(time.DateOnly)
}

// Upper is the exclusive upper bound of m. Any "YYYY-MM-DD..." text inside m
// sorts between Lower and Upper.
func (m Month) Upper() string {
	return m.Next().Lower()
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Window returns n consecutive months ending with the month of ref, oldest first.
func Window(ref time.Time, n int) []Month {
	if n <= 0 {
		return nil
	}
	last := MonthOf(ref).First()
	out := make([]Month, n)
	for i := 0; i < n; i++ {
		out[i] = MonthOf(last.AddDate(0, i-n+1, 0))
	}
	return out
}

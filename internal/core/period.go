package core

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// Period is a calendar month used as an aggregation bucket.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod normalises out-of-range months, so NewPeriod(2024, 0) is 2023-12.
func NewPeriod(year int, month time.Month) Period {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Year: t.Year(), Month: t.Month()}
}

// PeriodOf returns the month containing t in loc.
func PeriodOf(t time.Time, loc *time.Location) Period {
	t = t.In(loc)
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriod parses a "YYYY-MM" key.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: invalid period %q", ErrValidation, s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Label is the short display label, e.g. "Jan 2024".
func (p Period) Label() string {
	return p.First(time.UTC).Format("Jan 2006")
}

func (p Period) Prev() Period { return p.AddMonths(-1) }
func (p Period) Next() Period { return p.AddMonths(1) }

func (p Period) AddMonths(n int) Period {
	return NewPeriod(p.Year, p.Month+time.Month(n))
}

// First returns midnight of the first day of the month in loc.
func (p Period) First(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// Days returns the length of the month.
func (p Period) Days() int {
	return time.Date(p.Year, p.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Contains reports whether t falls in the month when viewed in loc.
func (p Period) Contains(t time.Time, loc *time.Location) bool {
	return PeriodOf(t, loc) == p
}

func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

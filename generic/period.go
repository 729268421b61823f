package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - The evaluation month
// =============================================================================

// Period is the month an evaluation covers. Volumes, working days and
// results are always scoped to exactly one period.
type Period struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
}

// NewPeriod returns the period for a year and month.
func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// ParsePeriod parses a "YYYY-MM" string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("%w: period %q must be YYYY-MM", ErrInvalidInput, s)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Valid reports whether the period names a real month.
func (p Period) Valid() bool {
	return p.Year > 0 && p.Month >= time.January && p.Month <= time.December
}

// Start returns the first day of the period.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// CalendarDays returns the number of calendar days in the period.
func (p Period) CalendarDays() int {
	return p.End().Day()
}

// String returns the period as "YYYY-MM".
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

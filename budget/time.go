package budget

import (
	"time"
)

// =============================================================================
// DATE - Day-granular point in time used by the engine
// =============================================================================

// Date is the engine's view of "now": a calendar day. All reconciliation and
// metrics decisions are day-granular.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time to its calendar day.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Time returns midnight UTC on the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// ISO returns the RFC3339 timestamp used on transactions.
func (d Date) ISO() string { return d.Time().Format(time.RFC3339) }

// DaysInMonth returns the number of days in the date's month.
func (d Date) DaysInMonth() int {
	return time.Date(d.Year, d.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1).Day()
}

// PrevMonth returns the calendar month preceding the date's month.
func (d Date) PrevMonth() (int, time.Month) {
	if d.Month == time.January {
		return d.Year - 1, time.December
	}
	return d.Year, d.Month - 1
}

func (d Date) String() string { return d.Time().Format("2006-01-02") }

// =============================================================================
// CLOCK - Injectable time source
// =============================================================================

// Clock supplies the current day. Injectable so reconciliation and metrics
// are deterministic under test.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Today() Date { return DateOf(time.Now()) }

// FixedClock always returns the same day.
type FixedClock struct {
	Date Date
}

func (c FixedClock) Today() Date { return c.Date }

// Package period implements the recurring 21st-to-20th monthly reporting
// cycle: period derivation from a calendar date, the physical-inventory
// window around a period's close, and missed-period detection.
package period

import (
	"fmt"
	"time"

	"lmis/internal/core/apperror"
)

const (
	// BeginDay is the day of month on which every period starts.
	BeginDay = 21
	// EndDay is the day of month on which every period ends (inclusive).
	EndDay = 20

	// InventoryDaysBefore and InventoryDaysAfter bound the physical-count
	// window relative to the period end.
	InventoryDaysBefore = 2
	InventoryDaysAfter  = 6

	// SubmissionBeginDay and SubmissionEndDay bound the calendar window in
	// which a just-closed period may still be reported. A period whose
	// window has fully elapsed is missed.
	SubmissionBeginDay = 18
	SubmissionEndDay   = 26
)

// DateLayout is the wire format for period boundary dates.
const DateLayout = "2006-01-02"

// Period is an immutable reporting interval. Begin is always the 21st of
// some month, End the 20th of the following month, both inclusive.
type Period struct {
	Begin time.Time
	End   time.Time
}

// Containing derives the period that the given date falls into.
// A date on the 21st belongs to the period beginning that day; a date on
// the 20th belongs to the period ending that day.
func Containing(d time.Time) Period {
	y, m, day := d.Date()
	if day >= BeginDay {
		return Period{
			Begin: date(y, m, BeginDay, d.Location()),
			End:   date(y, m+1, EndDay, d.Location()),
		}
	}
	return Period{
		Begin: date(y, m-1, BeginDay, d.Location()),
		End:   date(y, m, EndDay, d.Location()),
	}
}

// FromBegin reconstructs the canonical period starting at the given date.
// The begin day must be the 21st; the end is re-derived rather than trusted
// from the caller.
func FromBegin(begin time.Time) (Period, error) {
	if begin.Day() != BeginDay {
		return Period{}, apperror.NewValidation(
			fmt.Sprintf("period must begin on day %d, got day %d", BeginDay, begin.Day()))
	}
	return Containing(begin), nil
}

// Parse builds a period from a wire-format begin date.
func Parse(beginDate string) (Period, error) {
	begin, err := time.Parse(DateLayout, beginDate)
	if err != nil {
		return Period{}, apperror.NewValidation("invalid period begin date").WithCause(err)
	}
	return FromBegin(begin)
}

// Previous returns the period immediately preceding p. The boundary days
// are re-derived so month-length variation is absorbed correctly.
func (p Period) Previous() Period {
	// The day before Begin is the 20th, which sits inside the prior period.
	return Containing(p.Begin.AddDate(0, 0, -1))
}

// Next returns the period immediately following p.
func (p Period) Next() Period {
	return Containing(p.End.AddDate(0, 0, 1))
}

// InventoryWindow returns the physical-count window surrounding the
// period's close: end-2d through end+6d, possibly crossing into the
// following month.
func (p Period) InventoryWindow() (begin, end time.Time) {
	return p.End.AddDate(0, 0, -InventoryDaysBefore), p.End.AddDate(0, 0, InventoryDaysAfter)
}

// Contains reports whether d falls inside the period, boundaries inclusive.
func (p Period) Contains(d time.Time) bool {
	return !d.Before(p.Begin) && !d.After(p.End)
}

// IsMissed reports whether the period's inventory window has fully elapsed
// at the given instant without the period having been reported. Same month
// as the period end with the day at or past the submission cutoff counts
// as missed; any later month always does.
func (p Period) IsMissed(now time.Time) bool {
	offset := monthOffset(p.End, now)
	if offset > 0 {
		return true
	}
	return offset == 0 && now.Day() >= SubmissionEndDay
}

// IsWithinSubmissionWindow reports whether the calendar day of now falls
// inside the [18, 26) reporting window.
func IsWithinSubmissionWindow(now time.Time) bool {
	day := now.Day()
	return day >= SubmissionBeginDay && day < SubmissionEndDay
}

// Equal reports whether two periods cover the same interval.
func (p Period) Equal(other Period) bool {
	return p.Begin.Equal(other.Begin) && p.End.Equal(other.End)
}

// String renders the period as "2006-01-02..2006-01-02".
func (p Period) String() string {
	return p.Begin.Format(DateLayout) + ".." + p.End.Format(DateLayout)
}

// monthOffset counts whole calendar months from base to now; same month
// yields 0, the following month 1.
func monthOffset(base, now time.Time) int {
	return (now.Year()-base.Year())*12 + int(now.Month()) - int(base.Month())
}

// date normalizes to midnight. time.Date handles out-of-range months, so
// m+1 in December and m-1 in January roll the year correctly.
func date(y int, m time.Month, d int, loc *time.Location) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Package cycle implements billing-cycle math for recurring charges:
// monthly-equivalent cost normalization, next-due-date projection and the
// due-soon check. All functions are pure and calendar-day granular.
package cycle

import (
	"time"

	"github.com/shopspring/decimal"

	"gitlab.com/hmwai/subtrack/internal/models"
)

// DueSoonWindowDays is the inclusive due-soon horizon: a charge whose next
// due date is today through seven days out counts as due soon.
const DueSoonWindowDays = 7

var (
	three      = decimal.NewFromInt(3)
	six        = decimal.NewFromInt(6)
	twelve     = decimal.NewFromInt(12)
	yearDays   = decimal.NewFromInt(365)
	cycle28x12 = decimal.NewFromInt(28 * 12)
)

// MonthlyEquivalent normalizes a per-cycle price to an average-per-month
// figure for cross-cycle comparison and aggregation.
//
// The every-28-days conversion approximates the true annual frequency:
// 365/28 cycles per year, averaged over 12 months. The 365 is deliberate
// (not 365.25); leap years are ignored in this approximation.
func MonthlyEquivalent(price decimal.Decimal, billingCycle string) decimal.Decimal {
	switch billingCycle {
	case models.CycleMonthly:
		return price
	case models.CycleYearly:
		return price.Div(twelve)
	case models.CycleQuarterly:
		return price.Div(three)
	case models.CycleHalfYearly:
		return price.Div(six)
	case models.CycleEvery28:
		return price.Mul(yearDays).Div(cycle28x12)
	default:
		// Unrecognized cycles are billed as if monthly.
		return price
	}
}

// NextDueDate returns the next occurrence of a charge's due date on or
// after the reference date. Both dates are truncated to midnight UTC
// before comparison. A start date in the future is itself the next due
// date; otherwise a cursor rolls forward from the start one increment at
// a time and stops as soon as it is no longer before the reference.
//
// Calendar increments use time.Time.AddDate, so a month-end start
// overflows rather than clamps: Jan 31 + 1 month lands on Mar 2 (Mar 3 in
// a non-leap year), and subsequent increments roll from that new day.
// every-28-days advances by exactly 28 days regardless of month
// boundaries.
func NextDueDate(startDate time.Time, billingCycle string, referenceDate time.Time) time.Time {
	start := Midnight(startDate)
	ref := Midnight(referenceDate)

	if start.After(ref) {
		return start
	}

	due := start
	for due.Before(ref) {
		due = advance(due, billingCycle)
	}
	return due
}

// DaysUntilDue returns the number of whole days from the reference date to
// the next due date. Zero means due today.
func DaysUntilDue(startDate time.Time, billingCycle string, referenceDate time.Time) int {
	due := NextDueDate(startDate, billingCycle, referenceDate)
	return int(due.Sub(Midnight(referenceDate)) / (24 * time.Hour))
}

// IsDueSoon reports whether the next due date falls within the due-soon
// window: today up to DueSoonWindowDays days out, both ends inclusive.
func IsDueSoon(startDate time.Time, billingCycle string, referenceDate time.Time) bool {
	days := DaysUntilDue(startDate, billingCycle, referenceDate)
	return days >= 0 && days <= DueSoonWindowDays
}

// Midnight strips the time-of-day and location from t, keeping the
// calendar date in UTC. Due-date math never looks at hours.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// advance moves the cursor forward by one billing increment. Unrecognized
// cycles advance as monthly, mirroring MonthlyEquivalent's fallback.
func advance(t time.Time, billingCycle string) time.Time {
	switch billingCycle {
	case models.CycleYearly:
		return t.AddDate(1, 0, 0)
	case models.CycleQuarterly:
		return t.AddDate(0, 3, 0)
	case models.CycleHalfYearly:
		return t.AddDate(0, 6, 0)
	case models.CycleEvery28:
		return t.AddDate(0, 0, 28)
	case models.CycleMonthly:
		return t.AddDate(0, 1, 0)
	default:
		return t.AddDate(0, 1, 0)
	}
}

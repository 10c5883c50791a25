package cycle

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gitlab.com/hmwai/subtrack/internal/models"
)

func drawCycle(t *rapid.T) string {
	return rapid.SampledFrom(models.BillingCycles).Draw(t, "cycle")
}

func drawDate(t *rapid.T, label string) time.Time {
	y := rapid.IntRange(2000, 2040).Draw(t, label+"_year")
	m := rapid.IntRange(1, 12).Draw(t, label+"_month")
	d := rapid.IntRange(1, 28).Draw(t, label+"_day")
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestMonthlyEquivalentLinearInPrice(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		cycle := drawCycle(rt)
		cents := rapid.Int64Range(0, 10_000_000).Draw(rt, "cents")
		price := decimal.New(cents, -2)

		doubled := MonthlyEquivalent(price.Mul(decimal.NewFromInt(2)), cycle)
		twice := MonthlyEquivalent(price, cycle).Mul(decimal.NewFromInt(2))

		// Division rounds at decimal's fixed precision, so compare within a
		// tolerance rather than demanding identical digits.
		diff := doubled.Sub(twice).Abs()
		require.True(rt, diff.LessThan(decimal.New(1, -9)),
			"price=%s cycle=%s: %s vs %s", price, cycle, doubled, twice)
	})
}

func TestNextDueDateNeverBeforeReference(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		cycle := drawCycle(rt)
		start := drawDate(rt, "start")
		ref := drawDate(rt, "ref")

		due := NextDueDate(start, cycle, ref)

		if start.After(ref) {
			require.Equal(rt, start, due)
			return
		}
		require.False(rt, due.Before(ref), "due %s before ref %s", due, ref)

		// One increment earlier must have been before the reference,
		// otherwise the cursor overshot.
		if !due.Equal(start) {
			require.True(rt, due.Sub(ref) < 366*24*time.Hour,
				"due %s implausibly far past ref %s", due, ref)
		}
	})
}

func TestNextDueDateIdempotentProperty(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		cycle := drawCycle(rt)
		start := drawDate(rt, "start")
		ref := drawDate(rt, "ref")

		require.Equal(rt, NextDueDate(start, cycle, ref), NextDueDate(start, cycle, ref))
	})
}

func TestIsDueSoonMatchesDaysUntilDue(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		cycle := drawCycle(rt)
		start := drawDate(rt, "start")
		ref := drawDate(rt, "ref")

		days := DaysUntilDue(start, cycle, ref)
		require.Equal(rt, days >= 0 && days <= DueSoonWindowDays, IsDueSoon(start, cycle, ref))
	})
}

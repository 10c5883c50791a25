// Package charts renders the dashboard analytics chart: monthly-equivalent
// spend broken down by category.
package charts

import (
	"fmt"
	"sort"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"

	"gitlab.com/hmwai/subtrack/internal/cycle"
	"gitlab.com/hmwai/subtrack/internal/models"
)

// GenerateCategoryChart creates a pie chart of monthly-equivalent spend per
// category across the given charges. Inactive charges are skipped, matching
// every other monetary aggregation. Returns PNG image bytes.
func GenerateCategoryChart(chargeList []models.Charge, title string) ([]byte, error) {
	totals := AggregateByCategory(chargeList)
	if len(totals) == 0 {
		return nil, fmt.Errorf("no active charges to chart")
	}

	// Deterministic slice order so the same data always renders the same.
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]float64, 0, len(names))
	for _, name := range names {
		values = append(values, totals[name].InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: title,
		}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	return buf, nil
}

// AggregateByCategory sums the monthly-equivalent cost of active charges
// per category. Uncategorized charges group under "Others".
func AggregateByCategory(chargeList []models.Charge) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)

	for i := range chargeList {
		c := &chargeList[i]
		if !c.Active {
			continue
		}

		name := c.Category
		if name == "" {
			name = "Others"
		}

		totals[name] = totals[name].Add(cycle.MonthlyEquivalent(c.Price, c.BillingCycle))
	}

	return totals
}

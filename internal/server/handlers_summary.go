package server

import (
	"net/http"
	"sort"

	"github.com/shopspring/decimal"

	"gitlab.com/hmwai/subtrack/internal/charts"
	"gitlab.com/hmwai/subtrack/internal/cycle"
	"gitlab.com/hmwai/subtrack/internal/logger"
)

// categoryTotal is one slice of the category breakdown.
type categoryTotal struct {
	Category     string          `json:"category"`
	MonthlyTotal decimal.Decimal `json:"monthlyTotal"`
}

// dueSoonEntry is a charge due within the due-soon window.
type dueSoonEntry struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	NextDueDate  string `json:"nextDueDate"`
	DaysUntilDue int    `json:"daysUntilDue"`
}

// summaryView is the dashboard payload: aggregate spend, the category
// breakdown and upcoming due dates. Everything here is derived from the
// charge collection on each request; nothing is stored.
type summaryView struct {
	MonthlyTotal decimal.Decimal `json:"monthlyTotal"`
	YearlyTotal  decimal.Decimal `json:"yearlyTotal"`
	ActiveCount  int             `json:"activeCount"`
	TotalCount   int             `json:"totalCount"`
	Categories   []categoryTotal `json:"categories"`
	DueSoon      []dueSoonEntry  `json:"dueSoon"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	chargeList, err := s.store.List(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load charges for summary")
		respondError(w, r, http.StatusInternalServerError, "could not load charges")
		return
	}

	ref := s.now()
	summary := summaryView{
		TotalCount: len(chargeList),
		Categories: []categoryTotal{},
		DueSoon:    []dueSoonEntry{},
	}

	monthly := decimal.Zero
	for i := range chargeList {
		c := &chargeList[i]
		if !c.Active {
			continue
		}
		summary.ActiveCount++
		monthly = monthly.Add(cycle.MonthlyEquivalent(c.Price, c.BillingCycle))

		if cycle.IsDueSoon(c.StartDate, c.BillingCycle, ref) {
			summary.DueSoon = append(summary.DueSoon, dueSoonEntry{
				ID:           c.ID,
				Name:         c.Name,
				NextDueDate:  cycle.NextDueDate(c.StartDate, c.BillingCycle, ref).Format(dateLayout),
				DaysUntilDue: cycle.DaysUntilDue(c.StartDate, c.BillingCycle, ref),
			})
		}
	}

	summary.MonthlyTotal = monthly.Round(2)
	summary.YearlyTotal = monthly.Mul(decimal.NewFromInt(12)).Round(2)

	for category, total := range charts.AggregateByCategory(chargeList) {
		summary.Categories = append(summary.Categories, categoryTotal{
			Category:     category,
			MonthlyTotal: total.Round(2),
		})
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		// Largest spend first; ties alphabetical for stable output.
		if !summary.Categories[i].MonthlyTotal.Equal(summary.Categories[j].MonthlyTotal) {
			return summary.Categories[i].MonthlyTotal.GreaterThan(summary.Categories[j].MonthlyTotal)
		}
		return summary.Categories[i].Category < summary.Categories[j].Category
	})

	sort.Slice(summary.DueSoon, func(i, j int) bool {
		return summary.DueSoon[i].DaysUntilDue < summary.DueSoon[j].DaysUntilDue
	})

	respondOK(w, r, summary)
}

func (s *Server) handleSummaryChart(w http.ResponseWriter, r *http.Request) {
	chargeList, err := s.store.ListActive(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load charges for chart")
		respondError(w, r, http.StatusInternalServerError, "could not load charges")
		return
	}

	png, err := charts.GenerateCategoryChart(chargeList, "Monthly Spend by Category")
	if err != nil {
		respondError(w, r, http.StatusNotFound, "no active charges to chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		logger.Log.Error().Err(err).Msg("failed to write chart response")
	}
}

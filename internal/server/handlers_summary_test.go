package server

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/hmwai/subtrack/internal/models"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	netflix := testCharge(t, "Netflix", models.CycleMonthly, "15.99", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	spotify := testCharge(t, "Spotify", models.CycleYearly, "120", time.Date(2023, 6, 18, 0, 0, 0, 0, time.UTC))
	spotify.Category = "Music"
	cancelled := testCharge(t, "Old Gym", models.CycleMonthly, "50", time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	cancelled.Active = false

	srv := newTestServer(newFakeStore(netflix, spotify, cancelled), nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, err)
	var view summaryView
	require.NoError(t, json.Unmarshal(data, &view))

	// 15.99 + 120/12 = 25.99 monthly; the cancelled charge is excluded.
	require.True(t, mustDecimal(t, "25.99").Equal(view.MonthlyTotal))
	require.True(t, mustDecimal(t, "311.88").Equal(view.YearlyTotal))
	require.Equal(t, 2, view.ActiveCount)
	require.Equal(t, 3, view.TotalCount)

	require.Len(t, view.Categories, 2)
	require.Equal(t, "Entertainment", view.Categories[0].Category)
	require.True(t, mustDecimal(t, "15.99").Equal(view.Categories[0].MonthlyTotal))
	require.Equal(t, "Music", view.Categories[1].Category)

	// Pinned reference date 2024-06-15: Spotify renews 2024-06-18, three
	// days out, inside the due-soon window. Netflix is due 2024-07-10.
	require.Len(t, view.DueSoon, 1)
	require.Equal(t, "Spotify", view.DueSoon[0].Name)
	require.Equal(t, "2024-06-18", view.DueSoon[0].NextDueDate)
	require.Equal(t, 3, view.DueSoon[0].DaysUntilDue)
}

func TestSummaryEmpty(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	data, err := json.Marshal(decodeResponse(t, rec).Data)
	require.NoError(t, err)
	var view summaryView
	require.NoError(t, json.Unmarshal(data, &view))

	require.True(t, view.MonthlyTotal.IsZero())
	require.Zero(t, view.TotalCount)
	require.Empty(t, view.DueSoon)
}

func TestSummaryChart(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(
		testCharge(t, "Netflix", models.CycleMonthly, "15.99", time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)),
	), nil)

	rec := doRequest(t, srv, http.MethodGet, "/api/v1/summary/chart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	require.NotEmpty(t, rec.Body.Bytes())
}

func TestSummaryChartNoActiveCharges(t *testing.T) {
	t.Parallel()

	srv := newTestServer(newFakeStore(), nil)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/summary/chart", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

package transfer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"gitlab.com/hmwai/subtrack/internal/cycle"
	"gitlab.com/hmwai/subtrack/internal/models"
)

// GenerateChargesCSV renders the charge collection as a CSV file for
// spreadsheet users. The monthly-equivalent column is derived, never
// stored, so it is recomputed here.
func GenerateChargesCSV(charges []models.Charge) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"ID", "Name", "Price", "Currency", "Billing Cycle", "Monthly Equivalent",
		"Category", "Start Date", "Active", "Payment Method", "Notes",
	}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range charges {
		c := &charges[i]
		row := []string{
			c.ID,
			c.Name,
			c.Price.StringFixed(2),
			c.Currency,
			c.BillingCycle,
			cycle.MonthlyEquivalent(c.Price, c.BillingCycle).StringFixed(2),
			c.Category,
			c.StartDate.Format(dateLayout),
			strconv.FormatBool(c.Active),
			c.PaymentMethod,
			c.Notes,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

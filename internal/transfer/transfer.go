// Package transfer implements the export/import and shareable-link
// boundaries: a field-for-field JSON snapshot of the charge collection,
// a CSV rendering, and a URL-safe encoding of the snapshot. Import and
// link-apply are all-or-nothing; a payload with any invalid entry is
// rejected in its entirety.
package transfer

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gitlab.com/hmwai/subtrack/internal/models"
)

// ErrInvalidSnapshot indicates a structurally invalid payload: not a
// list, or a list element failing the minimal entry check.
var ErrInvalidSnapshot = errors.New("invalid snapshot payload")

// dateLayout is the wire format for calendar dates. Start dates have no
// time component.
const dateLayout = "2006-01-02"

// exportedCharge is the wire shape of one charge. Field names follow the
// export file format rather than Go conventions so snapshots stay
// readable in any text editor.
type exportedCharge struct {
	ID             string           `json:"id,omitempty"`
	Name           string           `json:"name"`
	Price          *decimal.Decimal `json:"price"`
	Currency       string           `json:"currency,omitempty"`
	BillingCycle   string           `json:"billingCycle,omitempty"`
	Category       string           `json:"category,omitempty"`
	StartDate      string           `json:"startDate,omitempty"`
	Active         *bool            `json:"active,omitempty"`
	PaymentMethod  string           `json:"paymentMethod,omitempty"`
	PaymentDetails string           `json:"paymentDetails,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

// MarshalSnapshot serializes the full collection, field for field, as the
// downloadable export artifact.
func MarshalSnapshot(charges []models.Charge) ([]byte, error) {
	out := make([]exportedCharge, 0, len(charges))
	for i := range charges {
		c := &charges[i]
		price := c.Price
		active := c.Active
		out = append(out, exportedCharge{
			ID:             c.ID,
			Name:           c.Name,
			Price:          &price,
			Currency:       c.Currency,
			BillingCycle:   c.BillingCycle,
			Category:       c.Category,
			StartDate:      c.StartDate.Format(dateLayout),
			Active:         &active,
			PaymentMethod:  c.PaymentMethod,
			PaymentDetails: c.PaymentDetails,
			Notes:          c.Notes,
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot parses an exported payload back into charges. Each
// entry must carry a name and a defined, non-negative price; entries
// missing an ID get one assigned. Defaults mirror manual entry: missing
// currency, cycle, category and active flag fall back rather than fail.
func UnmarshalSnapshot(data []byte) ([]models.Charge, error) {
	var in []exportedCharge
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	charges := make([]models.Charge, 0, len(in))
	for i, e := range in {
		c, err := e.toCharge()
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidSnapshot, i, err)
		}
		charges = append(charges, c)
	}
	return charges, nil
}

func (e *exportedCharge) toCharge() (models.Charge, error) {
	if strings.TrimSpace(e.Name) == "" {
		return models.Charge{}, errors.New("missing name")
	}
	if e.Price == nil {
		return models.Charge{}, errors.New("missing price")
	}
	if e.Price.IsNegative() {
		return models.Charge{}, errors.New("negative price")
	}

	c := models.Charge{
		ID:             e.ID,
		Name:           strings.TrimSpace(e.Name),
		Price:          *e.Price,
		Currency:       e.Currency,
		BillingCycle:   e.BillingCycle,
		Category:       e.Category,
		Active:         true,
		PaymentMethod:  e.PaymentMethod,
		PaymentDetails: e.PaymentDetails,
		Notes:          e.Notes,
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Currency == "" {
		c.Currency = models.DefaultCurrency
	}
	if !models.KnownBillingCycle(c.BillingCycle) {
		c.BillingCycle = models.CycleMonthly
	}
	if c.Category == "" {
		c.Category = "Others"
	}
	if e.Active != nil {
		c.Active = *e.Active
	}

	if e.StartDate != "" {
		date, err := time.Parse(dateLayout, e.StartDate)
		if err != nil {
			return models.Charge{}, fmt.Errorf("bad start date %q", e.StartDate)
		}
		c.StartDate = date
	} else {
		now := time.Now().UTC()
		c.StartDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	return c, nil
}

// EncodeSharePayload turns the collection into a URL-safe string suitable
// for a query parameter. The encoding is reversible, not confidential.
func EncodeSharePayload(charges []models.Charge) (string, error) {
	// The share payload is compact JSON; pretty-printing only bloats the URL.
	out := make([]exportedCharge, 0, len(charges))
	for i := range charges {
		c := &charges[i]
		price := c.Price
		active := c.Active
		out = append(out, exportedCharge{
			ID:             c.ID,
			Name:           c.Name,
			Price:          &price,
			Currency:       c.Currency,
			BillingCycle:   c.BillingCycle,
			Category:       c.Category,
			StartDate:      c.StartDate.Format(dateLayout),
			Active:         &active,
			PaymentMethod:  c.PaymentMethod,
			PaymentDetails: c.PaymentDetails,
			Notes:          c.Notes,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("failed to marshal share payload: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeSharePayload reverses EncodeSharePayload, applying the same
// validation and ID assignment as a file import. The caller offers the
// result as an all-or-nothing overwrite, never a merge.
func DecodeSharePayload(payload string) ([]models.Charge, error) {
	data, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return UnmarshalSnapshot(data)
}

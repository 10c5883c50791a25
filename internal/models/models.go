// Package models defines the domain entities for the subscription tracker.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency assigned to charges created without one.
const DefaultCurrency = "USD"

// MaxNameLength is the maximum allowed length for charge names.
const MaxNameLength = 100

// Billing cycle values. The set is closed; anything outside it is
// tolerated by the cycle math (treated as monthly) but rejected on input.
const (
	CycleMonthly    = "monthly"
	CycleYearly     = "yearly"
	CycleQuarterly  = "quarterly"
	CycleHalfYearly = "half-yearly"
	CycleEvery28    = "every-28-days"
)

// BillingCycles lists every recognized billing cycle.
var BillingCycles = []string{
	CycleMonthly,
	CycleYearly,
	CycleQuarterly,
	CycleHalfYearly,
	CycleEvery28,
}

// KnownBillingCycle reports whether cycle is one of the recognized values.
func KnownBillingCycle(cycle string) bool {
	switch cycle {
	case CycleMonthly, CycleYearly, CycleQuarterly, CycleHalfYearly, CycleEvery28:
		return true
	}
	return false
}

// DefaultCategories is the seeded category set. Category stays free-form on
// a charge; this list only drives seeding, AI extraction and chart grouping.
var DefaultCategories = []string{
	"Entertainment",
	"Music",
	"Utilities",
	"Insurance",
	"EMI / Loan",
	"Cloud & Software",
	"Fitness",
	"News & Reading",
	"Food Delivery",
	"Others",
}

// Category represents a charge category.
type Category struct {
	ID        int
	Name      string
	CreatedAt time.Time
}

// Charge represents a single recurring charge: a subscription, a bill, an
// insurance premium or an EMI. Price is the amount billed once per cycle,
// denominated in Currency. StartDate anchors all due-date projection and
// carries no time-of-day component. Inactive charges are excluded from
// monetary aggregation but kept in storage.
type Charge struct {
	ID             string
	Name           string
	Price          decimal.Decimal
	Currency       string
	BillingCycle   string
	Category       string
	StartDate      time.Time
	Active         bool
	PaymentMethod  string
	PaymentDetails string
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PartialCharge is a draft charge with every field independently optional.
// It is what AI extraction produces; the caller merges it field-by-field
// into a full Charge with defaults for anything left unset.
type PartialCharge struct {
	Name          *string
	Price         *decimal.Decimal
	Currency      *string
	BillingCycle  *string
	Category      *string
	StartDate     *time.Time
	PaymentMethod *string
	Notes         *string
}

// Merge fills a Charge from the partial, applying defaults for missing
// fields. The reference date becomes the start date when none was
// extracted. The result has no ID yet; assignment happens at creation.
func (p *PartialCharge) Merge(now time.Time) Charge {
	c := Charge{
		Currency:     DefaultCurrency,
		BillingCycle: CycleMonthly,
		Category:     "Others",
		StartDate:    time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Active:       true,
	}
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Price != nil {
		c.Price = *p.Price
	}
	if p.Currency != nil && *p.Currency != "" {
		c.Currency = *p.Currency
	}
	if p.BillingCycle != nil && KnownBillingCycle(*p.BillingCycle) {
		c.BillingCycle = *p.BillingCycle
	}
	if p.Category != nil && *p.Category != "" {
		c.Category = *p.Category
	}
	if p.StartDate != nil {
		c.StartDate = *p.StartDate
	}
	if p.PaymentMethod != nil {
		c.PaymentMethod = *p.PaymentMethod
	}
	if p.Notes != nil {
		c.Notes = *p.Notes
	}
	return c
}

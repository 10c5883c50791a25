package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"gitlab.com/hmwai/subtrack/internal/models"
)

// ParseChargeTimeout is the timeout for the extraction API call.
const ParseChargeTimeout = 30 * time.Second

// MaxInputLength caps the free-text description embedded in the prompt.
const MaxInputLength = 400

// ErrParseTimeout indicates the Gemini API call timed out.
var ErrParseTimeout = errors.New("charge extraction timed out")

// ErrNoData indicates no usable charge could be extracted from the text.
// The caller surfaces this to the user and falls back to manual entry;
// no automatic retry is made.
var ErrNoData = errors.New("no usable charge data extracted")

// chargeResponse is the JSON structure returned by Gemini.
type chargeResponse struct {
	Name          string `json:"name"`
	Price         string `json:"price"`
	Currency      string `json:"currency"`
	BillingCycle  string `json:"billing_cycle"`
	Category      string `json:"category"`
	StartDate     string `json:"start_date"`
	PaymentMethod string `json:"payment_method"`
	Notes         string `json:"notes"`
}

// ParseCharge extracts a draft recurring charge from a free-text
// description like "Netflix premium 15.49 eur billed monthly since last
// June". Fields that cannot be determined stay nil on the result.
func (c *Client) ParseCharge(ctx context.Context, text string) (*models.PartialCharge, error) {
	if c == nil || c.generator == nil {
		return nil, fmt.Errorf("gemini client not initialized")
	}

	text = SanitizeForPrompt(text, MaxInputLength)
	if text == "" {
		return nil, fmt.Errorf("description is required")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ParseChargeTimeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildChargePrompt(text)},
			},
		},
	}

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, contents, chargeExtractionConfig())
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrParseTimeout
		}
		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	if resp == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	fullText := resp.Text()
	if fullText == "" {
		return nil, fmt.Errorf("no text content in response")
	}

	partial, err := parseChargeResponse(fullText)
	if err != nil {
		return nil, err
	}

	// A draft with neither a name nor a price is useless to the form.
	if partial.Name == nil && partial.Price == nil {
		return nil, ErrNoData
	}

	return partial, nil
}

// chargeExtractionConfig constrains the model to a JSON object whose
// billing_cycle and category values come from the closed enumerations.
func chargeExtractionConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(400),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: "You are a JSON API. You MUST respond with ONLY valid JSON, no preamble or explanation. Output a single JSON object."},
			},
		},
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"name": {
					Type:        genai.TypeString,
					Description: "Display name of the subscription or bill",
				},
				"price": {
					Type:        genai.TypeString,
					Description: "Amount billed per cycle as a numeric string, e.g. \"15.49\"; empty if unknown",
				},
				"currency": {
					Type:        genai.TypeString,
					Description: "ISO-4217-like currency code, e.g. USD; empty if unknown",
				},
				"billing_cycle": {
					Type:        genai.TypeString,
					Enum:        models.BillingCycles,
					Description: "Recurrence interval of the charge",
				},
				"category": {
					Type:        genai.TypeString,
					Enum:        models.DefaultCategories,
					Description: "Best-matching category from the provided list",
				},
				"start_date": {
					Type:        genai.TypeString,
					Description: "Start date of the billing cycle in YYYY-MM-DD format; empty if unknown",
				},
				"payment_method": {
					Type:        genai.TypeString,
					Description: "Payment method if mentioned, e.g. credit-card, upi; empty otherwise",
				},
				"notes": {
					Type:        genai.TypeString,
					Description: "Any remaining detail worth keeping; empty otherwise",
				},
			},
			Required: []string{"name", "price", "billing_cycle", "category"},
		},
	}
}

func buildChargePrompt(text string) string {
	return fmt.Sprintf(`Extract a recurring charge from this description: "%s"

Rules:
- billing_cycle must be one of: %s
- category must be one of: %s
- Leave any field you cannot determine empty; never invent a price
- "per year"/"annual" means yearly, "every quarter" means quarterly, "twice a year" means half-yearly

Return JSON only.`,
		text,
		strings.Join(models.BillingCycles, ", "),
		strings.Join(models.DefaultCategories, ", "))
}

func parseChargeResponse(response string) (*models.PartialCharge, error) {
	jsonText := extractJSON(response)
	if jsonText == "" {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var cr chargeResponse
	if err := json.Unmarshal([]byte(jsonText), &cr); err != nil {
		return nil, fmt.Errorf("failed to parse charge response: %w", err)
	}

	partial := &models.PartialCharge{}

	if name := strings.TrimSpace(cr.Name); name != "" {
		partial.Name = &name
	}
	if cr.Price != "" && cr.Price != "0" {
		price, err := decimal.NewFromString(cr.Price)
		if err != nil {
			return nil, fmt.Errorf("failed to parse price %q: %w", cr.Price, err)
		}
		if price.IsNegative() {
			return nil, fmt.Errorf("extracted price %q is negative", cr.Price)
		}
		partial.Price = &price
	}
	if cr.Currency != "" {
		currency := strings.ToUpper(strings.TrimSpace(cr.Currency))
		partial.Currency = &currency
	}
	if models.KnownBillingCycle(cr.BillingCycle) {
		partial.BillingCycle = &cr.BillingCycle
	}
	if cr.Category != "" {
		partial.Category = &cr.Category
	}
	if cr.StartDate != "" {
		if date, err := time.Parse("2006-01-02", cr.StartDate); err == nil {
			partial.StartDate = &date
		}
	}
	if cr.PaymentMethod != "" {
		partial.PaymentMethod = &cr.PaymentMethod
	}
	if cr.Notes != "" {
		partial.Notes = &cr.Notes
	}

	return partial, nil
}

// extractJSON pulls a JSON object out of text that may contain preamble.
// Gemini sometimes returns "Here is the JSON:\n{...}" even with
// ResponseMIMEType set to application/json.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	end := strings.LastIndex(text, "}")
	if end == -1 || end <= start {
		return ""
	}

	return text[start : end+1]
}

// SanitizeForPrompt strips characters that could break prompt structure
// out of user input and truncates it to maxLength.
func SanitizeForPrompt(input string, maxLength int) string {
	input = strings.ReplaceAll(input, `"`, `'`)
	input = strings.ReplaceAll(input, "`", "'")
	input = strings.ReplaceAll(input, "\x00", "")

	// Collapse all whitespace runs, which also removes injected newlines.
	input = strings.Join(strings.Fields(input), " ")

	if len(input) > maxLength {
		input = strings.TrimSpace(input[:maxLength])
	}

	return input
}

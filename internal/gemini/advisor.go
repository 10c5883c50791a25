package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"gitlab.com/hmwai/subtrack/internal/cycle"
	"gitlab.com/hmwai/subtrack/internal/logger"
	"gitlab.com/hmwai/subtrack/internal/models"
)

// AdviceTimeout is the timeout for the advice API call.
const AdviceTimeout = 30 * time.Second

// FallbackAdvice is shown whenever advice generation fails. The UI never
// sees an error from this path.
const FallbackAdvice = "Review your recurring charges for duplicate services, " +
	"annual plans that could replace monthly ones, and subscriptions you " +
	"have not used in the last month. Cancelling even one unused service " +
	"usually saves more than downgrading several."

// SavingsAdvice generates free-form savings tips from the full record
// list. Any failure — no client, API error, empty output — yields
// FallbackAdvice; errors are logged, never returned.
func (c *Client) SavingsAdvice(ctx context.Context, charges []models.Charge) string {
	if c == nil || c.generator == nil {
		return FallbackAdvice
	}
	if len(charges) == 0 {
		return "No recurring charges tracked yet. Add a few subscriptions to get tailored savings tips."
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, AdviceTimeout)
	defer cancel()

	temp := float32(0.7)
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: buildAdvicePrompt(charges)},
			},
		},
	}

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, contents, &genai.GenerateContentConfig{
		Temperature:     &temp,
		MaxOutputTokens: int32(800),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("SavingsAdvice: Gemini API call failed")
		return FallbackAdvice
	}
	if resp == nil {
		logger.Log.Warn().Msg("SavingsAdvice: nil response from Gemini")
		return FallbackAdvice
	}

	advice := strings.TrimSpace(resp.Text())
	if advice == "" {
		logger.Log.Warn().Msg("SavingsAdvice: empty response from Gemini")
		return FallbackAdvice
	}

	return advice
}

// buildAdvicePrompt renders the charge list as a compact table the model
// can reason over. Names are sanitized before embedding.
func buildAdvicePrompt(charges []models.Charge) string {
	var b strings.Builder
	b.WriteString("Here are my recurring subscriptions and bills, one per line as ")
	b.WriteString("name | category | billing cycle | price per cycle | monthly equivalent | active:\n\n")

	for _, c := range charges {
		monthly := cycle.MonthlyEquivalent(c.Price, c.BillingCycle)
		fmt.Fprintf(&b, "%s | %s | %s | %s %s | %s %s | %t\n",
			SanitizeForPrompt(c.Name, models.MaxNameLength),
			SanitizeForPrompt(c.Category, models.MaxNameLength),
			c.BillingCycle,
			c.Price.StringFixed(2), c.Currency,
			monthly.StringFixed(2), c.Currency,
			c.Active)
	}

	b.WriteString(`
Give me 3-5 specific, actionable tips to reduce this spending.
Consider overlapping services, yearly-plan switches and low-value charges.
Keep it short: plain text, one tip per line, no markdown headings.`)
	return b.String()
}

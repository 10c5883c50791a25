package gemini

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"gitlab.com/hmwai/subtrack/internal/models"
)

// mockGenerator is a canned ContentGenerator for tests.
type mockGenerator struct {
	response   *genai.GenerateContentResponse
	err        error
	lastConfig *genai.GenerateContentConfig
}

func (m *mockGenerator) GenerateContent(
	_ context.Context,
	_ string,
	_ []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	m.lastConfig = config
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: text},
					},
				},
			},
		},
	}
}

func TestParseCharge(t *testing.T) {
	t.Parallel()

	t.Run("extracts a full charge", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{
			response: textResponse(`{"name": "Netflix", "price": "15.49", "currency": "eur",
				"billing_cycle": "monthly", "category": "Entertainment",
				"start_date": "2023-06-01", "payment_method": "credit-card", "notes": "family plan"}`),
		}
		client := NewClientWithGenerator(mock)

		partial, err := client.ParseCharge(context.Background(), "netflix family 15.49 eur monthly since june 2023 on my credit card")
		require.NoError(t, err)
		require.NotNil(t, partial)
		require.Equal(t, "Netflix", *partial.Name)
		require.Equal(t, "15.49", partial.Price.String())
		require.Equal(t, "EUR", *partial.Currency)
		require.Equal(t, models.CycleMonthly, *partial.BillingCycle)
		require.Equal(t, "Entertainment", *partial.Category)
		require.Equal(t, time.Date(2023, time.June, 1, 0, 0, 0, 0, time.UTC), *partial.StartDate)
		require.Equal(t, "credit-card", *partial.PaymentMethod)
		require.Equal(t, "family plan", *partial.Notes)
	})

	t.Run("partial extraction leaves missing fields nil", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{
			response: textResponse(`{"name": "Gym", "price": "", "billing_cycle": "monthly", "category": "Fitness"}`),
		}
		client := NewClientWithGenerator(mock)

		partial, err := client.ParseCharge(context.Background(), "my gym membership")
		require.NoError(t, err)
		require.Equal(t, "Gym", *partial.Name)
		require.Nil(t, partial.Price)
		require.Nil(t, partial.Currency)
		require.Nil(t, partial.StartDate)
	})

	t.Run("strips markdown and preamble around the JSON", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{
			response: textResponse("Here is the JSON:\n```json\n{\"name\": \"Spotify\", \"price\": \"10.99\", \"billing_cycle\": \"monthly\", \"category\": \"Music\"}\n```"),
		}
		client := NewClientWithGenerator(mock)

		partial, err := client.ParseCharge(context.Background(), "spotify 10.99")
		require.NoError(t, err)
		require.Equal(t, "Spotify", *partial.Name)
	})

	t.Run("unknown billing cycle is dropped not propagated", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{
			response: textResponse(`{"name": "Box", "price": "5", "billing_cycle": "weekly", "category": "Others"}`),
		}
		client := NewClientWithGenerator(mock)

		partial, err := client.ParseCharge(context.Background(), "weekly snack box 5 bucks")
		require.NoError(t, err)
		require.Nil(t, partial.BillingCycle)
	})

	t.Run("neither name nor price yields ErrNoData", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{
			response: textResponse(`{"name": "", "price": "", "billing_cycle": "monthly", "category": "Others"}`),
		}
		client := NewClientWithGenerator(mock)

		partial, err := client.ParseCharge(context.Background(), "something vague")
		require.ErrorIs(t, err, ErrNoData)
		require.Nil(t, partial)
	})

	t.Run("negative price is rejected", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{
			response: textResponse(`{"name": "Weird", "price": "-3", "billing_cycle": "monthly", "category": "Others"}`),
		}
		client := NewClientWithGenerator(mock)

		_, err := client.ParseCharge(context.Background(), "weird refund thing")
		require.Error(t, err)
		require.Contains(t, err.Error(), "negative")
	})

	t.Run("malformed JSON is an error", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{response: textResponse(`{"name": "Broken`)}
		client := NewClientWithGenerator(mock)

		_, err := client.ParseCharge(context.Background(), "whatever")
		require.Error(t, err)
	})

	t.Run("timeout maps to ErrParseTimeout", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{err: context.DeadlineExceeded}
		client := NewClientWithGenerator(mock)

		_, err := client.ParseCharge(context.Background(), "netflix 10")
		require.ErrorIs(t, err, ErrParseTimeout)
	})

	t.Run("API failure propagates as error", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{err: errors.New("quota exceeded")}
		client := NewClientWithGenerator(mock)

		_, err := client.ParseCharge(context.Background(), "netflix 10")
		require.Error(t, err)
		require.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("empty input returns error before calling the API", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{}
		client := NewClientWithGenerator(mock)

		_, err := client.ParseCharge(context.Background(), "   ")
		require.Error(t, err)
		require.Contains(t, err.Error(), "description is required")
	})

	t.Run("nil generator returns error", func(t *testing.T) {
		t.Parallel()

		client := &Client{}
		_, err := client.ParseCharge(context.Background(), "netflix 10")
		require.Error(t, err)
		require.Contains(t, err.Error(), "not initialized")
	})

	t.Run("schema restricts cycles and categories to the closed sets", func(t *testing.T) {
		t.Parallel()

		mock := &mockGenerator{
			response: textResponse(`{"name": "X", "price": "1", "billing_cycle": "monthly", "category": "Others"}`),
		}
		client := NewClientWithGenerator(mock)

		_, err := client.ParseCharge(context.Background(), "x 1")
		require.NoError(t, err)
		require.NotNil(t, mock.lastConfig)
		require.Equal(t, models.BillingCycles, mock.lastConfig.ResponseSchema.Properties["billing_cycle"].Enum)
		require.Equal(t, models.DefaultCategories, mock.lastConfig.ResponseSchema.Properties["category"].Enum)
	})
}

func TestSanitizeForPrompt(t *testing.T) {
	t.Parallel()

	require.Equal(t, "say 'hi'", SanitizeForPrompt(`say "hi"`, 100))
	require.Equal(t, "a b c", SanitizeForPrompt("a\n\nb\t c", 100))
	require.Equal(t, "abc", SanitizeForPrompt("abcdef", 3))
	require.Equal(t, "", SanitizeForPrompt("\x00", 100))
}

package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"gitlab.com/hmwai/subtrack/internal/gemini"
	"gitlab.com/hmwai/subtrack/internal/logger"
)

type extractRequest struct {
	Text string `json:"text" validate:"required,max=400"`
}

// extractResponse carries the draft the model produced. The client shows it
// in the charge form for the user to confirm or fix before saving; nothing
// is persisted here.
type extractResponse struct {
	Draft chargeView `json:"draft"`
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if s.ai == nil {
		respondError(w, r, http.StatusServiceUnavailable, "AI extraction is not configured")
		return
	}

	var req extractRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondValidationError(w, r, err)
		return
	}

	if s.metrics != nil {
		s.metrics.ExtractionCalls.Add(r.Context(), 1)
	}

	partial, err := s.ai.ParseCharge(r.Context(), req.Text)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("charge extraction failed")
		if errors.Is(err, gemini.ErrParseTimeout) {
			respondError(w, r, http.StatusGatewayTimeout, "extraction timed out, please enter the charge manually")
			return
		}
		respondError(w, r, http.StatusBadGateway, "could not extract a charge, please enter it manually")
		return
	}

	draft := partial.Merge(s.now())
	respondOK(w, r, extractResponse{Draft: s.chargeToView(&draft)})
}

type adviceResponse struct {
	Advice string `json:"advice"`
}

func (s *Server) handleAdvice(w http.ResponseWriter, r *http.Request) {
	chargeList, err := s.store.ListActive(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load charges for advice")
		respondError(w, r, http.StatusInternalServerError, "could not load charges")
		return
	}

	if s.ai == nil {
		respondOK(w, r, adviceResponse{Advice: gemini.FallbackAdvice})
		return
	}

	if s.metrics != nil {
		s.metrics.AdviceCalls.Add(r.Context(), 1)
	}

	// SavingsAdvice falls back to canned guidance on any model failure,
	// so this path never surfaces an error to the client.
	respondOK(w, r, adviceResponse{Advice: s.ai.SavingsAdvice(r.Context(), chargeList)})
}

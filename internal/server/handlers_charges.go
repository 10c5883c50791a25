package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/shopspring/decimal"

	"gitlab.com/hmwai/subtrack/internal/cycle"
	"gitlab.com/hmwai/subtrack/internal/logger"
	"gitlab.com/hmwai/subtrack/internal/models"
	"gitlab.com/hmwai/subtrack/internal/repository"
)

const dateLayout = "2006-01-02"

// chargeRequest is the JSON body for creating or updating a charge.
type chargeRequest struct {
	Name           string           `json:"name" validate:"required,max=100"`
	Price          *decimal.Decimal `json:"price" validate:"required"`
	Currency       string           `json:"currency"`
	BillingCycle   string           `json:"billingCycle" validate:"required,oneof=monthly yearly quarterly half-yearly every-28-days"`
	Category       string           `json:"category"`
	StartDate      string           `json:"startDate" validate:"required"`
	Active         *bool            `json:"active"`
	PaymentMethod  string           `json:"paymentMethod"`
	PaymentDetails string           `json:"paymentDetails"`
	Notes          string           `json:"notes"`
}

// toCharge converts a validated request into the domain model. Defaults
// mirror the import boundary: missing currency and category fall back,
// active defaults to true.
func (req *chargeRequest) toCharge() (models.Charge, error) {
	if req.Price.IsNegative() {
		return models.Charge{}, errors.New("price must not be negative")
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return models.Charge{}, errors.New("startDate must be in YYYY-MM-DD format")
	}

	c := models.Charge{
		Name:           req.Name,
		Price:          *req.Price,
		Currency:       req.Currency,
		BillingCycle:   req.BillingCycle,
		Category:       req.Category,
		StartDate:      start,
		Active:         true,
		PaymentMethod:  req.PaymentMethod,
		PaymentDetails: req.PaymentDetails,
		Notes:          req.Notes,
	}
	if c.Currency == "" {
		c.Currency = models.DefaultCurrency
	}
	if c.Category == "" {
		c.Category = "Others"
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	return c, nil
}

// chargeView is the JSON shape of a charge in responses, carrying the
// derived dashboard fields alongside the stored ones.
type chargeView struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Currency       string          `json:"currency"`
	BillingCycle   string          `json:"billingCycle"`
	Category       string          `json:"category"`
	StartDate      string          `json:"startDate"`
	Active         bool            `json:"active"`
	PaymentMethod  string          `json:"paymentMethod,omitempty"`
	PaymentDetails string          `json:"paymentDetails,omitempty"`
	Notes          string          `json:"notes,omitempty"`

	MonthlyEquivalent decimal.Decimal `json:"monthlyEquivalent"`
	NextDueDate       string          `json:"nextDueDate"`
	DaysUntilDue      int             `json:"daysUntilDue"`
	DueSoon           bool            `json:"dueSoon"`
}

func (s *Server) chargeToView(c *models.Charge) chargeView {
	ref := s.now()
	due := cycle.NextDueDate(c.StartDate, c.BillingCycle, ref)
	days := cycle.DaysUntilDue(c.StartDate, c.BillingCycle, ref)

	return chargeView{
		ID:             c.ID,
		Name:           c.Name,
		Price:          c.Price,
		Currency:       c.Currency,
		BillingCycle:   c.BillingCycle,
		Category:       c.Category,
		StartDate:      c.StartDate.Format(dateLayout),
		Active:         c.Active,
		PaymentMethod:  c.PaymentMethod,
		PaymentDetails: c.PaymentDetails,
		Notes:          c.Notes,

		MonthlyEquivalent: cycle.MonthlyEquivalent(c.Price, c.BillingCycle).Round(2),
		NextDueDate:       due.Format(dateLayout),
		DaysUntilDue:      days,
		DueSoon:           days >= 0 && days <= cycle.DueSoonWindowDays,
	}
}

func (s *Server) handleListCharges(w http.ResponseWriter, r *http.Request) {
	chargeList, err := s.store.List(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to list charges")
		respondError(w, r, http.StatusInternalServerError, "could not load charges")
		return
	}

	views := make([]chargeView, 0, len(chargeList))
	for i := range chargeList {
		views = append(views, s.chargeToView(&chargeList[i]))
	}
	respondOK(w, r, views)
}

func (s *Server) handleGetCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	charge, err := s.store.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrChargeNotFound) {
		respondError(w, r, http.StatusNotFound, "charge not found")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).Str("id", id).Msg("failed to get charge")
		respondError(w, r, http.StatusInternalServerError, "could not load charge")
		return
	}

	respondOK(w, r, s.chargeToView(charge))
}

func (s *Server) handleCreateCharge(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeChargeRequest(w, r)
	if !ok {
		return
	}

	charge, err := req.toCharge()
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.store.Create(r.Context(), &charge); err != nil {
		logger.Log.Error().Err(err).Msg("failed to create charge")
		respondError(w, r, http.StatusInternalServerError, "could not create charge")
		return
	}

	logger.Log.Info().Str("id", charge.ID).Str("name", charge.Name).Msg("charge created")
	if s.metrics != nil {
		s.metrics.ChargesCreated.Add(r.Context(), 1)
	}
	render.Status(r, http.StatusCreated)
	respondOK(w, r, s.chargeToView(&charge))
}

func (s *Server) handleUpdateCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	req, ok := s.decodeChargeRequest(w, r)
	if !ok {
		return
	}

	charge, err := req.toCharge()
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	charge.ID = id

	err = s.store.Update(r.Context(), &charge)
	if errors.Is(err, repository.ErrChargeNotFound) {
		respondError(w, r, http.StatusNotFound, "charge not found")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).Str("id", id).Msg("failed to update charge")
		respondError(w, r, http.StatusInternalServerError, "could not update charge")
		return
	}

	respondOK(w, r, s.chargeToView(&charge))
}

func (s *Server) handleDeleteCharge(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrChargeNotFound) {
		respondError(w, r, http.StatusNotFound, "charge not found")
		return
	}
	if err != nil {
		logger.Log.Error().Err(err).Str("id", id).Msg("failed to delete charge")
		respondError(w, r, http.StatusInternalServerError, "could not delete charge")
		return
	}

	logger.Log.Info().Str("id", id).Msg("charge deleted")
	respondOK(w, r, map[string]string{"deleted": id})
}

// decodeChargeRequest decodes and validates a charge body, writing the
// error response itself when the input is bad.
func (s *Server) decodeChargeRequest(w http.ResponseWriter, r *http.Request) (*chargeRequest, bool) {
	var req chargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	if err := s.validate.Struct(&req); err != nil {
		respondValidationError(w, r, err)
		return nil, false
	}
	return &req, true
}

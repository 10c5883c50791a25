// Package server exposes the tracker over HTTP: charge CRUD, dashboard
// summary, AI extraction and advice, export/import and share links.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"gitlab.com/hmwai/subtrack/internal/config"
	"gitlab.com/hmwai/subtrack/internal/models"
	"gitlab.com/hmwai/subtrack/internal/telemetry"
)

// ChargeStore is the record-store collaborator: it supplies and persists
// the charge collection. *repository.ChargeRepository implements it;
// handler tests use an in-memory fake.
type ChargeStore interface {
	Create(ctx context.Context, charge *models.Charge) error
	GetByID(ctx context.Context, id string) (*models.Charge, error)
	Update(ctx context.Context, charge *models.Charge) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Charge, error)
	ListActive(ctx context.Context) ([]models.Charge, error)
	ReplaceAll(ctx context.Context, charges []models.Charge) error
	ListCategories(ctx context.Context) ([]models.Category, error)
}

// AI is the pair of language-model collaborators. Nil when no API key is
// configured; handlers degrade instead of failing.
type AI interface {
	ParseCharge(ctx context.Context, text string) (*models.PartialCharge, error)
	SavingsAdvice(ctx context.Context, charges []models.Charge) string
}

// Server wires the collaborators into an HTTP handler.
type Server struct {
	cfg      *config.Config
	store    ChargeStore
	ai       AI
	metrics  *telemetry.Metrics
	validate *validator.Validate

	// now supplies the reference date for all due-date math; tests pin it.
	now func() time.Time
}

// New creates a Server. ai and metrics may be nil.
func New(cfg *config.Config, store ChargeStore, ai AI, metrics *telemetry.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		ai:       ai,
		metrics:  metrics,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Router builds the chi router with all API routes mounted under /api/v1.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Route("/charges", func(r chi.Router) {
			r.Get("/", s.handleListCharges)
			r.Post("/", s.handleCreateCharge)
			r.Get("/{id}", s.handleGetCharge)
			r.Put("/{id}", s.handleUpdateCharge)
			r.Delete("/{id}", s.handleDeleteCharge)
		})

		r.Get("/categories", s.handleListCategories)

		r.Get("/summary", s.handleSummary)
		r.Get("/summary/chart", s.handleSummaryChart)

		r.Post("/extract", s.handleExtract)
		r.Get("/advice", s.handleAdvice)

		r.Get("/export", s.handleExportJSON)
		r.Get("/export/csv", s.handleExportCSV)
		r.Post("/import", s.handleImport)

		r.Get("/share", s.handleShareLink)
		r.Post("/share/decode", s.handleShareDecode)
	})

	return otelhttp.NewHandler(r, "subtrack")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondOK(w, r, map[string]string{"status": "healthy"})
}

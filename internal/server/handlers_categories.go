package server

import (
	"net/http"

	"gitlab.com/hmwai/subtrack/internal/logger"
)

// categoryView is one entry of the category dropdown.
type categoryView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// handleListCategories serves the seeded category set backing the charge
// form's dropdown. Category stays free-form on a charge; this list is a
// suggestion, not a constraint.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to list categories")
		respondError(w, r, http.StatusInternalServerError, "could not load categories")
		return
	}

	views := make([]categoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, categoryView{ID: cat.ID, Name: cat.Name})
	}
	respondOK(w, r, views)
}

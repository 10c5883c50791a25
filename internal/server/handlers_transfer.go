package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/render"

	"gitlab.com/hmwai/subtrack/internal/logger"
	"gitlab.com/hmwai/subtrack/internal/transfer"
)

// maxImportBody caps import and share payloads. A personal tracker holds
// at most a few hundred charges; anything past this is not a snapshot.
const maxImportBody = 1 << 20

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	chargeList, err := s.store.List(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load charges for export")
		respondError(w, r, http.StatusInternalServerError, "could not load charges")
		return
	}

	data, err := transfer.MarshalSnapshot(chargeList)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to marshal snapshot")
		respondError(w, r, http.StatusInternalServerError, "could not build export")
		return
	}

	filename := fmt.Sprintf("subtrack-export-%s.json", s.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		logger.Log.Error().Err(err).Msg("failed to write export response")
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	chargeList, err := s.store.List(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load charges for export")
		respondError(w, r, http.StatusInternalServerError, "could not load charges")
		return
	}

	data, err := transfer.GenerateChargesCSV(chargeList)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to generate CSV")
		respondError(w, r, http.StatusInternalServerError, "could not build export")
		return
	}

	filename := fmt.Sprintf("subtrack-export-%s.csv", s.now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		logger.Log.Error().Err(err).Msg("failed to write export response")
	}
}

type importResponse struct {
	Imported int `json:"imported"`
}

// handleImport replaces the whole collection with the uploaded snapshot.
// The snapshot is validated in full before anything is written, so a bad
// entry leaves the existing collection untouched.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBody))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "could not read request body")
		return
	}

	chargeList, err := transfer.UnmarshalSnapshot(body)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("invalid snapshot: %v", err))
		return
	}

	if err := s.store.ReplaceAll(r.Context(), chargeList); err != nil {
		logger.Log.Error().Err(err).Msg("failed to replace charges on import")
		respondError(w, r, http.StatusInternalServerError, "could not import charges")
		return
	}

	logger.Log.Info().Int("count", len(chargeList)).Msg("imported charge snapshot")
	if s.metrics != nil {
		s.metrics.ChargesImported.Add(r.Context(), int64(len(chargeList)))
	}
	respondOK(w, r, importResponse{Imported: len(chargeList)})
}

type shareLinkResponse struct {
	Payload string `json:"payload"`
	Link    string `json:"link"`
}

func (s *Server) handleShareLink(w http.ResponseWriter, r *http.Request) {
	chargeList, err := s.store.List(r.Context())
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to load charges for share link")
		respondError(w, r, http.StatusInternalServerError, "could not load charges")
		return
	}

	payload, err := transfer.EncodeSharePayload(chargeList)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to encode share payload")
		respondError(w, r, http.StatusInternalServerError, "could not build share link")
		return
	}

	respondOK(w, r, shareLinkResponse{
		Payload: payload,
		Link:    fmt.Sprintf("%s/?data=%s", s.cfg.BaseURL, payload),
	})
}

type shareDecodeRequest struct {
	Payload string `json:"payload" validate:"required"`
}

type shareDecodeResponse struct {
	Charges []chargeView `json:"charges"`
}

// handleShareDecode previews the charges inside a share payload without
// touching the stored collection. Applying the payload goes through
// /import semantics on the client's confirmation.
func (s *Server) handleShareDecode(w http.ResponseWriter, r *http.Request) {
	var req shareDecodeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		respondValidationError(w, r, err)
		return
	}

	chargeList, err := transfer.DecodeSharePayload(req.Payload)
	if err != nil {
		respondError(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("invalid share payload: %v", err))
		return
	}

	views := make([]chargeView, 0, len(chargeList))
	for i := range chargeList {
		views = append(views, s.chargeToView(&chargeList[i]))
	}
	respondOK(w, r, shareDecodeResponse{Charges: views})
}

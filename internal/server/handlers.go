package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/procsight/procsight/internal/analysis"
	"github.com/procsight/procsight/internal/telemetry"
)

// maxTrackBodyBytes caps ingestion request bodies.
const maxTrackBodyBytes = 8 << 20

func (s *Server) handleLiveTable(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	records, summary, err := s.registry.LiveTable(sessionID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"series":   records,
		"insights": []interface{}{},
		"summary":  summary,
	})
}

func (s *Server) handleZeroActivity(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	records, err := s.registry.ZeroActivity(sessionID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"series": records,
	})
}

func (s *Server) handleProcessDetail(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")
	processID := r.PathValue("process")

	detail, err := s.registry.ProcessDetail(sessionID, processID)
	if err != nil {
		if errors.Is(err, analysis.ErrProcessNotFound) {
			s.writeJSON(w, http.StatusNotFound, map[string]interface{}{
				"error": err.Error(),
			})
			return
		}
		s.serverError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTrackBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "failed to read request body",
		})
		return
	}

	var batch telemetry.Batch
	if err := json.Unmarshal(body, &batch); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "invalid batch payload",
		})
		return
	}

	if err := s.registry.Ingest(sessionID, batch); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	data, err := s.registry.PreferencesData(sessionID)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxTrackBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "failed to read request body",
		})
		return
	}

	updateErrs, err := s.registry.UpdatePreferences(sessionID, body)
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	if updateErrs == nil {
		updateErrs = []string{}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"errors": updateErrs,
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("session")

	if err := s.registry.Delete(sessionID); err != nil {
		s.serverError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) serverError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("Request failed",
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	s.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error": "internal error",
	})
}

package api

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/api/presenter"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

const defaultAuditLimit = 50

// handleAudit processes requests to retrieve audit log entries.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	// filters
	q := r.URL.Query()
	limitStr := q.Get("limit")

	limit := defaultAuditLimit
	if limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v <= 0 {
			logger.Warn().Str("limit", limitStr).Msg("invalid limit parameter")
			presenter.Error(w, r, "invalid limit parameter", core.CodeBadRequest, http.StatusBadRequest)
			return
		}
		limit = v
	}

	entries, err := s.service.AuditLog(r.Context(), service.AuditFilter{
		CorrelationID: q.Get("correlation_id"),
		NegotiationID: q.Get("negotiation_id"),
		TransferID:    q.Get("transfer_id"),
		Participant:   q.Get("participant"),
	}, limit)
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, entries, http.StatusOK)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.Reset(r.Context())
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, res, http.StatusOK)
}

func (s *Server) handleReloadCatalog(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ReloadCatalog(r.Context())
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, res, http.StatusOK)
}

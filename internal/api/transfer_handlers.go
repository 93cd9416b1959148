package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/api/presenter"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

func (s *Server) handleCreateTransfer(w http.ResponseWriter, r *http.Request) {
	var payload service.CreateTransferRequest
	if err := DecodePayload(r, &payload, false); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("failed to decode transfer request")
		presenter.Err(w, r, err)
		return
	}

	t, err := s.service.CreateTransfer(r.Context(), payload)
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, t, http.StatusCreated)
}

func (s *Server) handleAdvanceTransfer(w http.ResponseWriter, r *http.Request) {
	action, err := core.ParseTransferAction(chi.URLParam(r, "action"))
	if err != nil {
		presenter.Error(w, r, err.Error(), core.CodeBadRequest, http.StatusBadRequest)
		return
	}

	var payload ActionPayload
	if err := DecodePayload(r, &payload, true /* allow empty */); err != nil {
		presenter.Err(w, r, err)
		return
	}

	t, err := s.service.AdvanceTransfer(r.Context(), chi.URLParam(r, "id"), action, payload.Reason)
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, t, http.StatusOK)
}

// handleFetchData writes the raw payload of a completed transfer.
func (s *Server) handleFetchData(w http.ResponseWriter, r *http.Request) {
	data, err := s.service.FetchData(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write transfer data")
	}
}

func (s *Server) handleGetTransfer(w http.ResponseWriter, r *http.Request) {
	t, err := s.service.GetTransfer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, t, http.StatusOK)
}

func (s *Server) handleListTransfers(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListTransfers(r.Context(), r.URL.Query().Get("agreement_id"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, list, http.StatusOK)
}

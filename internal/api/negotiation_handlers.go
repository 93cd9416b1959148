package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/api/presenter"
	"github.com/darmiel/vertrag/internal/core"
	"github.com/darmiel/vertrag/internal/service"
)

// ActionPayload is the optional body of a negotiation or transfer action.
type ActionPayload struct {
	// Reason is recorded for terminate actions.
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleCreateNegotiation(w http.ResponseWriter, r *http.Request) {
	var payload service.CreateNegotiationRequest
	if err := DecodePayload(r, &payload, false); err != nil {
		log.Ctx(r.Context()).Warn().Err(err).Msg("failed to decode negotiation request")
		presenter.Err(w, r, err)
		return
	}

	n, err := s.service.CreateNegotiation(r.Context(), payload)
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, n, http.StatusCreated)
}

func (s *Server) handleAdvanceNegotiation(w http.ResponseWriter, r *http.Request) {
	action, err := core.ParseNegotiationAction(chi.URLParam(r, "action"))
	if err != nil {
		presenter.Error(w, r, err.Error(), core.CodeBadRequest, http.StatusBadRequest)
		return
	}

	var payload ActionPayload
	if err := DecodePayload(r, &payload, true /* allow empty */); err != nil {
		presenter.Err(w, r, err)
		return
	}

	res, err := s.service.AdvanceNegotiation(r.Context(), chi.URLParam(r, "id"), action, payload.Reason)
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, res, http.StatusOK)
}

func (s *Server) handleGetNegotiation(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.GetNegotiation(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, n, http.StatusOK)
}

func (s *Server) handleListNegotiations(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListNegotiations(r.Context(), r.URL.Query().Get("consumer_id"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, list, http.StatusOK)
}

func (s *Server) handleListAgreements(w http.ResponseWriter, r *http.Request) {
	list, err := s.service.ListAgreements(r.Context())
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, list, http.StatusOK)
}

func (s *Server) handleGetAgreement(w http.ResponseWriter, r *http.Request) {
	agreement, err := s.service.GetAgreement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, agreement, http.StatusOK)
}

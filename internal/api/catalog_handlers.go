package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/darmiel/vertrag/internal/api/presenter"
	"github.com/darmiel/vertrag/internal/service"
)

func (s *Server) handleListAssets(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListAssets(r.Context())
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, entries, http.StatusOK)
}

func (s *Server) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	entry, err := s.service.GetAsset(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, entry, http.StatusOK)
}

func (s *Server) handlePreviewAsset(w http.ResponseWriter, r *http.Request) {
	preview, err := s.service.PreviewAsset(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, preview, http.StatusOK)
}

// handleExplain evaluates a policy without starting a negotiation.
func (s *Server) handleExplain(w http.ResponseWriter, r *http.Request) {
	var payload service.ExplainRequest
	if err := DecodePayload(r, &payload, false); err != nil {
		presenter.Err(w, r, err)
		return
	}

	res, err := s.service.Explain(r.Context(), payload)
	if err != nil {
		presenter.Err(w, r, err)
		return
	}
	presenter.JSON(w, r, res, http.StatusOK)
}

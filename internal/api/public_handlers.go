package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/darmiel/vertrag/internal/api/presenter"
	"github.com/darmiel/vertrag/internal/buildinfo"
	"github.com/darmiel/vertrag/internal/core"
)

// handleHealth responds with a simple OK status to indicate the server is healthy.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleAbout responds with service information including version and commit hash.
func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	info := buildinfo.GetBuildInfo()
	info.Participant = s.service.ParticipantID()
	presenter.JSON(w, r, info, http.StatusOK)
}

func writeBadRoute(w http.ResponseWriter, r *http.Request, status int, msg string) {
	code := core.CodeBadRequest
	if status == http.StatusNotFound {
		code = core.CodeNotFound
	}
	presenter.Error(w, r, msg, code, status)
}

// DecodePayload strictly decodes a JSON request body into dest.
// Decoding errors wrap core.ErrBadRequest.
func DecodePayload(r *http.Request, dest any, allowEmpty bool) error {
	mediaType, _, _ := strings.Cut(r.Header.Get("Content-Type"), ";")
	switch strings.TrimSpace(mediaType) {
	case "application/json", "":
		// strict encoding for JSON
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dest); err != nil {
			if !errors.Is(err, io.EOF) || !allowEmpty {
				return fmt.Errorf("%w: invalid request payload: %v", core.ErrBadRequest, err)
			}
		}
		// ensure there's no extra data
		if dec.More() {
			return fmt.Errorf("%w: extra data in request body", core.ErrBadRequest)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported content type", core.ErrBadRequest)
	}
}

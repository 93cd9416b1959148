package presenter

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/darmiel/vertrag/internal/api/middleware"
	"github.com/darmiel/vertrag/internal/core"
)

type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

func JSON(w http.ResponseWriter, r *http.Request, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("failed to write json response")
	}
}

func Error(w http.ResponseWriter, r *http.Request, msg, code string, status int) {
	resp := ErrorResponse{
		Error:         msg,
		Code:          code,
		CorrelationID: middleware.CorrelationCtx(r.Context()),
	}
	JSON(w, r, resp, status)
}

// Err writes err with the status code matching its error code.
func Err(w http.ResponseWriter, r *http.Request, err error) {
	code := core.ErrorCode(err)
	status := StatusForCode(code)
	if status >= http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}
	Error(w, r, err.Error(), code, status)
}

// StatusForCode maps an error code onto the HTTP status it is served with.
func StatusForCode(code string) int {
	switch code {
	case core.CodeNotFound:
		return http.StatusNotFound
	case core.CodeInvalidTransition, core.CodeInvalidState:
		return http.StatusConflict
	case core.CodeInvalidPolicy:
		return http.StatusUnprocessableEntity
	case core.CodeUnauthorized:
		return http.StatusForbidden
	case core.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

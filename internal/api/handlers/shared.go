package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/ndewijer/Dividend-Tracker-Backend/internal/api/response"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/apperrors"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/service"
	"github.com/ndewijer/Dividend-Tracker-Backend/internal/validation"
)

// respondValidationError sends 400 with the offending fields as details.
func respondValidationError(w http.ResponseWriter, err error) {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		response.RespondError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
		return
	}
	response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
}

// respondServiceError logs err and sends a generic JSON error. Missing broker
// credentials are a configuration problem and map to 503; everything else,
// including upstream failures after retries, maps to 500.
func respondServiceError(w http.ResponseWriter, r *http.Request, op error, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, apperrors.ErrMissingCredentials) {
		status = http.StatusServiceUnavailable
	}

	zerolog.Ctx(r.Context()).Error().
		Err(err).
		Bool("upstream", service.IsUpstreamError(err)).
		Msg(op.Error())

	response.RespondError(w, status, op.Error(), err.Error())
}

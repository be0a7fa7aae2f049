package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/api/response"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/apperrors"
	"github.com/ndewijer/Portfolio-Valuation-Engine/internal/validation"
)

// maxBodyBytes bounds decoded request bodies.
const maxBodyBytes = 1 << 20

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// respondServiceError maps a service error onto an HTTP status:
// validation failures are 400, missing resources 404, everything else 500.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	var vErr *validation.Error
	switch {
	case errors.As(err, &vErr):
		response.RespondError(w, http.StatusBadRequest, "validation failed", vErr.Fields)
	case errors.Is(err, apperrors.ErrValidation):
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
	case errors.Is(err, apperrors.ErrPortfolioNotFound), errors.Is(err, apperrors.ErrHoldingNotFound):
		response.RespondError(w, http.StatusNotFound, err.Error(), "")
	default:
		response.RespondError(w, http.StatusInternalServerError, message, err.Error())
	}
}

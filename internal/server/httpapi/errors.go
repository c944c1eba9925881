package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/userhub/internal/common"
	"github.com/go-playground/validator/v10"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps a service error to an HTTP status and writes a JSON body.
// Anything unmapped is reported as a generic 500 without leaking details.
func writeError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verrs.Error()})
		return
	}

	var status int
	var msg string

	switch {
	case errors.Is(err, errBadJSON):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrWeakPassword):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrDuplicateUser):
		status, msg = http.StatusConflict, "username or email already taken"
	case errors.Is(err, common.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, common.ErrAccountLocked):
		status, msg = http.StatusLocked, "account temporarily locked"
	case errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		status, msg = http.StatusUnauthorized, "token expired"
	case errors.Is(err, common.ErrInvalidToken):
		status, msg = http.StatusUnauthorized, "invalid token"
	case errors.Is(err, common.ErrorNotFound):
		status, msg = http.StatusNotFound, "not found"
	case errors.Is(err, common.ErrRateLimited):
		status, msg = http.StatusTooManyRequests, "too many requests"
	default:
		status, msg = http.StatusInternalServerError, "internal error"
	}

	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// decodeAndValidate parses a JSON request body into dst and runs the
// validator over it.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadJSON
	}
	return validate.Struct(dst)
}

var errBadJSON = errors.New("invalid JSON body")

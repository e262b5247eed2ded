// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/maxp/merchant-portal/internal/shared"
)

// Sentinel errors for the HTTP layer.
var (
	ErrNotFound   = errors.New("resource not found")
	ErrBadRequest = errors.New("bad request")
)

// StatusFor maps an error to the status code shown to clients.
func StatusFor(err error) int {
	var vErr *shared.ValidationError
	switch {
	case errors.As(err, &vErr), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case shared.IsRemote(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	switch status {
	case http.StatusBadRequest:
		Problem(w, status, ProblemValidation, "Validation Failed", shared.UserSafeMessage(err))
	case http.StatusNotFound:
		Problem(w, status, ProblemNotFound, "Not Found", err.Error())
	case http.StatusBadGateway:
		Problem(w, status, ProblemUpstream, "Upstream Unavailable", shared.UserSafeMessage(err))
	default:
		Problem(w, status, ProblemInternal, "Internal Error", "")
	}
}

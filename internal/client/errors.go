package client

import (
	"errors"
	"fmt"
	"net/http"

	"stockroom/internal/domain"
)

// ErrUnauthorized is returned when the API refuses the bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-2xx answer from the API. It unwraps to the domain error
// matching its status, so callers can use errors.Is(err, domain.ErrNotFound).
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusBadRequest:
		return domain.ErrInvalidInput
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status == http.StatusNotFound:
		return domain.ErrNotFound
	case e.Status == http.StatusConflict:
		return domain.ErrConflict
	case e.Status >= 500:
		return domain.ErrStoreFailure
	}
	return nil
}

package access

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no principal is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is wrapped by every DeniedError.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidPrincipal is returned by Principal.Validate.
	ErrInvalidPrincipal = errors.New("invalid principal")
)

// DeniedError reports which check refused a principal.
type DeniedError struct {
	Principal Principal
	Resource  Resource
	Decision  Decision
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("%s: %s denied %s", ErrForbidden, e.Principal.Role, e.Decision.Reason)
}

func (e *DeniedError) Unwrap() error {
	return ErrForbidden
}

// HTTPStatus maps an authorization error to the status a request guard
// should answer with.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrInvalidPrincipal):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

package apiclient

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable means the service could not be reached or refused the
	// request. Callers with a fallback (the project cache) test for it.
	ErrUnavailable = errors.New("service unavailable")

	// ErrUnexpectedShape means the response decoded but lacked a field the
	// caller depends on.
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

// StatusError is a non-2xx response.
type StatusError struct {
	Service string
	Path    string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d) for %s: %s", e.Service, e.Status, e.Path, e.Body)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrUnavailable
}

// MissingField reports a response without the named field.
func MissingField(service, field string) error {
	return fmt.Errorf("%s response has no %q: %w", service, field, ErrUnexpectedShape)
}

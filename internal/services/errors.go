package services

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by all services. Handlers match these with
// errors.Is and translate them to HTTP statuses; nothing below the handler
// boundary knows about HTTP.
var (
	ErrUnauthenticated = errors.New("authentication required")
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrForbidden       = errors.New("forbidden")
	ErrPersistence     = errors.New("persistence failure")
)

func notFoundf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

func validationf(format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

func persistencef(err error) error {
	return fmt.Errorf("%v: %w", err, ErrPersistence)
}

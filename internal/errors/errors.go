package errors

import (
	"errors"
	"fmt"
)

// Common error types for the portfolio server
var (
	// Input errors - the caller passed something empty or malformed.
	// Never retried, always reported immediately.
	ErrInvalidInput = errors.New("invalid input")

	// Authentication errors. Unknown username, wrong password and failed
	// session validation all collapse into ErrInvalidCredentials on the
	// outside; the distinction only exists in server-side logs.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Account errors
	ErrAccountNotFound = errors.New("account not found")

	// Storage errors - the backing store could not be reached or the
	// operation failed for reasons unrelated to input validity. Must never
	// be reported as a credential failure.
	ErrStorage = errors.New("storage error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

package apperr

import "errors"

var (
	// ErrNotFound signals a missing row.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized signals a request with no valid session.
	ErrUnauthorized = errors.New("authentication required")
	// ErrForbidden signals an ownership mismatch on a fetched resource.
	ErrForbidden = errors.New("unauthorized")
	// ErrValidation signals bad user input (file type, dates, missing fields).
	ErrValidation = errors.New("invalid input")
	// ErrGeneration signals a failed or unparseable model response.
	ErrGeneration = errors.New("generation failed")
)

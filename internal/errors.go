package internal

import "errors"

var (
	// ErrInvalidDate is returned for text that is not a YYYY-MM-DD calendar date
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidInput is returned when user supplied fields fail validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnknownFormat is returned for an unregistered import format
	ErrUnknownFormat = errors.New("unknown format")

	// ErrUnknownStorage is returned for an unsupported storage backend name
	ErrUnknownStorage = errors.New("unknown storage backend")
)

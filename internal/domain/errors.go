package domain

import "errors"

var (
	// ErrNotFound is returned when a product, variant or review does not exist
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal is returned when the persistence layer fails
	ErrInternal = errors.New("internal error")
)

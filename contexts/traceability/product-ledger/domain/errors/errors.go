package errors

import "errors"

var (
	ErrPermissionDenied       = errors.New("permission denied")
	ErrInvalidInput           = errors.New("invalid product input")
	ErrProductNotFound        = errors.New("product not found")
	ErrIdempotencyKeyRequired = errors.New("idempotency key required")
	ErrIdempotencyConflict    = errors.New("idempotency key conflict")
)

package errors

import "errors"

var (
	ErrPermissionDenied  = errors.New("permission denied")
	ErrInvalidIdentity   = errors.New("invalid handler identity")
	ErrHandlerNotFound   = errors.New("handler not found")
	ErrAlreadyAuthorized = errors.New("handler already authorized")
	ErrNotAuthorized     = errors.New("handler not authorized")
	ErrCannotRevokeOwner = errors.New("cannot revoke owner")
)

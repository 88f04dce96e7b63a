// Package errdefs holds the sentinel errors core operations return.
// NotFound covers both absent entities and entities owned by someone else, so
// callers cannot probe for existence.
package errdefs

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("validation error")
)

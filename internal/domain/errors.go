package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrValidation    = errors.New("validation error")
	ErrHandleTaken   = fmt.Errorf("%w: handle already taken", ErrValidation)
	ErrHandleClaimed = fmt.Errorf("%w: account already has a handle", ErrValidation)
	// ErrNoHandle: publishing requires a claimed handle.
	ErrNoHandle = fmt.Errorf("%w: no handle claimed", ErrNotFound)
)

package service

import (
	"errors"

	"habitpact/internal/repository"
)

// Domain errors surfaced to the API layer. Handlers map these to HTTP
// status codes; anything else is a 500.
var (
	ErrNotFound           = errors.New("not found")
	ErrAlreadyMarked      = errors.New("habit already marked today")
	ErrAlreadyConfirmed   = errors.New("transaction already confirmed")
	ErrInvalidStatus      = errors.New("invalid habit status")
	ErrNameRequired       = errors.New("habit name is required")
	ErrNoPartner          = errors.New("an accountability partner is required")
	ErrSelfPartner        = errors.New("cannot partner with yourself")
	ErrHasPartner         = errors.New("user already has a partner")
	ErrRequestPending     = errors.New("a partner request is already pending")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// fromStore translates storage-layer sentinels into domain errors.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAlreadyConfirmed):
		return ErrAlreadyConfirmed
	case errors.Is(err, repository.ErrAlreadyMarked):
		return ErrAlreadyMarked
	case errors.Is(err, repository.ErrHasPartner):
		return ErrHasPartner
	}
	return err
}

package repository

import "errors"

var (
	// ErrNotFound is returned when a row does not exist or is not visible
	// to the requesting user.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyConfirmed is returned when confirming a transaction that
	// has already left the pending state.
	ErrAlreadyConfirmed = errors.New("transaction already confirmed")

	// ErrAlreadyMarked is returned when a mark loses the compare-and-set
	// on last_marked_date to a concurrent mark.
	ErrAlreadyMarked = errors.New("habit already marked for this day")

	// ErrHasPartner is returned when linking would overwrite an existing
	// partnership on either side.
	ErrHasPartner = errors.New("user already has a partner")
)

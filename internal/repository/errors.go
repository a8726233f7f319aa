// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values let handlers
// distinguish failure scenarios without inspecting SQL errors:
// ErrForbidden maps to 403, the conflict family to 409, and
// sql.ErrNoRows (returned directly by lookups) to 404.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an operation cannot proceed because of
// conflicting state, such as an illegal booking status transition.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned when registering with an email address
// that is already taken.
var ErrEmailExists = errors.New("email already exists")

// ErrInsufficientSlots is returned by the availability ledger when a
// date has no entry or fewer remaining slots than requested.
var ErrInsufficientSlots = errors.New("not enough slots available on selected date")

// ErrDuplicateReview is returned when a non-deleted review already
// exists for the same (user, tour) pair.
var ErrDuplicateReview = errors.New("tour already reviewed")

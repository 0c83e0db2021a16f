// Package repository implements data access over MySQL. Sentinel errors
// declared here let handlers translate failure scenarios to HTTP statuses
// without inspecting driver errors; plain not-found is signalled with
// sql.ErrNoRows throughout.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation on a
// resource owned by someone else. Handlers translate this to HTTP 403.
var ErrForbidden = errors.New("forbidden")

// ErrDuplicate is returned when a vendor already has an application for
// the target event. Handlers translate this to HTTP 409.
var ErrDuplicate = errors.New("duplicate application")

// ErrNoCapacity is returned when an approval (or a new application) would
// need a seat on an event whose remaining capacity is exhausted.
var ErrNoCapacity = errors.New("no capacity left")

// ErrEmailExists is returned when registering with an email that is
// already taken. Handlers translate this to HTTP 409.
var ErrEmailExists = errors.New("email already exists")

// ErrInvalidState is returned when a decision value is not one of the
// states an organizer may set.
var ErrInvalidState = errors.New("invalid application state")

// Package repository implements the seat assignment store on top of
// database/sql.  Sentinel errors let the service and handler layers tell a
// lookup miss apart from a real storage failure.
package repository

import "errors"

// ErrSeatNotFound is returned when no stored assignment matches a query.
// Handlers translate it into an HTTP 404 response.
var ErrSeatNotFound = errors.New("seat not found")

// ErrIdentityMismatch is returned at startup when the configured identity
// mode disagrees with the mode the stored rows were written under, or when
// stored rows would violate the configured identity.
var ErrIdentityMismatch = errors.New("identity mode mismatch")

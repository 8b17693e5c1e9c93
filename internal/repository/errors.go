package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateAccount is returned when trying to link an already-linked provider account
	ErrDuplicateAccount = errors.New("provider account already linked")

	// ErrDuplicateSession is returned when a session token collides with an existing one
	ErrDuplicateSession = errors.New("session with this token already exists")
)

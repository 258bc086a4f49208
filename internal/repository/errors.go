// Package repository stores registrations and attendance logs in flat CSV
// tables. Sentinel errors let handlers map failure cases onto HTTP responses
// without string matching: validation problems become 400s, duplicate state
// becomes 409, missing rows become 404.
package repository

import "errors"

// Registration validation failures. All are reported to the submitter and
// leave the table untouched.
var (
	ErrInvalidName         = errors.New("names cannot contain digits or the '|' character")
	ErrAlreadyRegistered   = errors.New("this person is already registered")
	ErrChildWithChildren   = errors.New("children cannot register children under their name")
	ErrParentRequired      = errors.New("parent/guardian is required for children")
	ErrTooManyParents      = errors.New("at most 2 parents can be selected")
	ErrParentNotRegistered = errors.New("parent is not registered")
	ErrEmailExists         = errors.New("this email is already registered")
	ErrPhoneExists         = errors.New("this phone number is already registered")
)

// Lookup and positional-mutation failures.
var (
	ErrNotFound = errors.New("registration not found")
	ErrBadIndex = errors.New("invalid row index")
)

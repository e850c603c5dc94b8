package library

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrBookNotFound       = errors.New("book not found")
	// ErrBookUnavailable covers both a missing book and one that is already out.
	ErrBookUnavailable = errors.New("book is not available")
	ErrNotBorrower     = errors.New("book is not borrowed by this user")
	ErrUnknownFormat   = errors.New("unknown export format")
)

package auth

import "errors"

var (
	// ErrInvalidCredentials is returned when no stored account matches the email and password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUserExists is returned when registering an email that already has an account.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidInput is returned for registration input that fails validation.
	ErrInvalidInput = errors.New("invalid registration input")
	// ErrNotAuthenticated is returned by operations that need a signed-in user.
	ErrNotAuthenticated = errors.New("not signed in")
	// ErrSuperseded is returned by a sign-in attempt overtaken by a later attempt or a logout.
	ErrSuperseded = errors.New("sign-in superseded by a later session change")
)

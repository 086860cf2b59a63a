package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("current password is incorrect")
	ErrPasswordUnchanged  = errors.New("new password must differ from the current password")
	ErrWeakPassword       = errors.New("new password must be at least 8 characters")
)

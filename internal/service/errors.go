// Package service holds the application logic behind the HTTP handlers.
package service

import "errors"

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidID          = errors.New("Invalid ID")
	ErrUserExists         = errors.New("User already exists")
	ErrEmailInUse         = errors.New("Email already in use")
	ErrUserNotFound       = errors.New("User not found")
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrInvalidOTP         = errors.New("Invalid or expired OTP")
	ErrEmailRequired      = errors.New("provider did not return an email address")
	ErrStorageDisabled    = errors.New("file storage is not configured")

	ErrNotFound = errors.New("not found")
)

package service

import "errors"

var (
	// ErrValidation marks malformed or rejected input.
	ErrValidation = errors.New("validation failed")

	// ErrBadCredentials marks a failed credential check. The message carries
	// no detail about which factor failed.
	ErrBadCredentials = errors.New("invalid credentials")
)

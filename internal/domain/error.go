package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid query execution context")
	ErrUserNotLinked      = errors.New("user has no linked telegram account")
	ErrPhoneNotRegistered = errors.New("phone number is not registered on the platform")
)

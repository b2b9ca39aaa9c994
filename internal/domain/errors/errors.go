package errors

import "errors"

var (
	ErrDuplicateOrder     = errors.New("order already exists")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("license expired")
	ErrDeviceMismatch     = errors.New("license bound to another device")
	ErrAlreadyActivated   = errors.New("license already activated")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

package services

import "errors"

var (
	ErrLoginNotFound        = errors.New("no registered user with that email")
	ErrExternalService      = errors.New("purpose verification failed")
	ErrPassNotFound         = errors.New("gate pass not found")
	ErrUnauthorized         = errors.New("not authorized for this operation")
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrGuestDetailsRequired = errors.New("visitor name and email are required without a session")
	ErrRequestInProgress    = errors.New("a pass request is already in progress")
	ErrInvalidStatus        = errors.New("invalid pass status")
	ErrUnknownView          = errors.New("unknown view")
)

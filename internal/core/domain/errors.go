package domain

import "errors"

var (
	ErrNotFound        = errors.New("record not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUnexpectedShape = errors.New("unexpected response shape")
)

package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrNotReady            = errors.New("not ready")
	ErrInvalidURL          = errors.New("invalid url")
	ErrInvalidFormat       = errors.New("invalid format")
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

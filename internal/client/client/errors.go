package client

import "errors"

var (
	ErrUnavailable = errors.New("server unavailable")
	ErrTooLarge    = errors.New("upload too large")
)

package proxy

import "errors"

// Client construction errors.
var (
	// ErrEmptyToken is returned when the proxy token is empty.
	ErrEmptyToken = errors.New("proxy token is required")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

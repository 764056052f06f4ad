package model

import "errors"

var (
	// ErrClientNotFound is returned when an operation references a sid the
	// registry does not hold.
	ErrClientNotFound = errors.New("client not found")

	// ErrSessionNotFound is returned when a session record is not in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrClientClosed is returned when sending to a client whose connection
	// has already been torn down.
	ErrClientClosed = errors.New("client closed")
)

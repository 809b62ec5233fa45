package models

import "errors"

// Error kinds shared between services and handlers. Handlers translate
// these into HTTP status codes; everything else is an upstream or
// transport failure.
var (
	// ErrClientInput marks a malformed or incomplete inbound payload.
	ErrClientInput = errors.New("invalid client input")

	// ErrConfiguration marks a missing server credential or base URL.
	ErrConfiguration = errors.New("missing configuration")
)

package sentinel

import "errors"

// Sentinel errors for storage facts. Stores return these (optionally wrapped)
// and the registry service translates them into coded domain errors:
// - ErrNotFound: row does not exist
// - ErrAlreadyUsed: a unique key (principal, passport number, holder slot) is taken
// - ErrUnavailable: backing store or sink cannot be reached
var (
	ErrNotFound    = errors.New("not found")
	ErrAlreadyUsed = errors.New("already used")
	ErrUnavailable = errors.New("unavailable")
)

package models

import dErrors "ledgerpass/pkg/domain-errors"

// Stable numeric error codes expected by registry callers.
const (
	ErrCodeUnauthorized  uint32 = 1
	ErrCodeInvalidInput  uint32 = 2
	ErrCodeAlreadyExists uint32 = 3
	ErrCodeNotFound      uint32 = 4
)

// NumericCode maps err onto the registry taxonomy. Errors outside the
// taxonomy (infrastructure failures) map to 0.
func NumericCode(err error) uint32 {
	if err == nil {
		return 0
	}
	switch dErrors.CodeOf(err) {
	case dErrors.CodeUnauthorized:
		return ErrCodeUnauthorized
	case dErrors.CodeInvalidInput:
		return ErrCodeInvalidInput
	case dErrors.CodeAlreadyExists:
		return ErrCodeAlreadyExists
	case dErrors.CodeNotFound:
		return ErrCodeNotFound
	default:
		return 0
	}
}

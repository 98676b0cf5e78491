package domain

import (
	"strings"

	dErrors "ledgerpass/pkg/domain-errors"
)

const (
	maxPrincipalLength      = 150
	maxPassportNumberLength = 64
)

// Principal identifies a ledger account: the registry owner, an authority or
// a passport holder.
//
// Usage: construct via ParsePrincipal at trust boundaries; direct casting
// bypasses validation.
type Principal string

// ParsePrincipal validates an account identifier from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, too long or
// contains characters outside [A-Za-z0-9._-].
func ParsePrincipal(s string) (Principal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal cannot be empty")
	}
	if len(s) > maxPrincipalLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal is too long")
	}
	if !isIdentifier(s, "._-") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal contains invalid characters")
	}
	return Principal(s), nil
}

func (p Principal) String() string {
	return string(p)
}

func (p Principal) IsZero() bool {
	return p == ""
}

// PassportNumber is the unique, human-readable credential identifier.
// Invariant: immutable once issued and never reused.
type PassportNumber string

// ParsePassportNumber validates a credential number from external input.
//
// Errors: returns CodeInvalidInput when the value is empty, too long or
// contains characters outside [A-Za-z0-9-].
func ParsePassportNumber(s string) (PassportNumber, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "passport number cannot be empty")
	}
	if len(s) > maxPassportNumberLength {
		return "", dErrors.New(dErrors.CodeInvalidInput, "passport number is too long")
	}
	if !isIdentifier(s, "-") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "passport number contains invalid characters")
	}
	return PassportNumber(s), nil
}

func (n PassportNumber) String() string {
	return string(n)
}

func (n PassportNumber) IsZero() bool {
	return n == ""
}

func isIdentifier(s string, extra string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(extra, r):
		default:
			return false
		}
	}
	return true
}

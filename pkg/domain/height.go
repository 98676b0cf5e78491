package domain

import (
	"math"
	"strconv"

	dErrors "ledgerpass/pkg/domain-errors"
)

// MaxHeight bounds the logical clock so heights fit signed 64-bit storage.
const MaxHeight Height = math.MaxInt64

// Height is the ledger's monotonic logical clock. Issuance times, expiries
// and validity periods are all expressed in heights, never wall-clock time.
type Height uint64

// Add returns h+d.
//
// Errors: returns CodeInvalidInput when the sum would exceed MaxHeight.
func (h Height) Add(d Height) (Height, error) {
	if d > MaxHeight || h > MaxHeight-d {
		return 0, dErrors.New(dErrors.CodeInvalidInput, "height overflow")
	}
	return h + d, nil
}

// Before reports whether h is strictly lower than other.
func (h Height) Before(other Height) bool {
	return h < other
}

func (h Height) String() string {
	return strconv.FormatUint(uint64(h), 10)
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpass/pkg/domain"
	dErrors "ledgerpass/pkg/domain-errors"
)

func strPtr(s string) *string { return &s }

func validIssue() IssuePassport {
	return IssuePassport{
		Number:         "US123456789",
		Holder:         "wallet_2",
		FullName:       "John Smith",
		BirthDate:      631152000,
		Nationality:    "United States",
		ValidityPeriod: 525600,
		MetadataURL:    strPtr("https://metadata.example.com/passport/US123456789"),
	}
}

// TestPassportValidityWindow encodes the derived-validity invariant:
// valid on [IssuedAt, ExpiryHeight), invalid from ExpiryHeight on.
func TestPassportValidityWindow(t *testing.T) {
	req := validIssue()
	req.ValidityPeriod = 1
	p, err := NewPassport(req, "wallet_1", 10)
	require.NoError(t, err)

	assert.Equal(t, domain.Height(10), p.IssuedAt)
	assert.Equal(t, domain.Height(11), p.ExpiryHeight)
	assert.True(t, p.IsValidAt(10))
	assert.False(t, p.IsValidAt(11))
	assert.False(t, p.IsValidAt(500))
}

func TestPassportExtend(t *testing.T) {
	t.Run("adds to stored expiry even when expired", func(t *testing.T) {
		req := validIssue()
		req.ValidityPeriod = 1
		p, err := NewPassport(req, "wallet_1", 10)
		require.NoError(t, err)
		require.False(t, p.IsValidAt(20))

		require.NoError(t, p.Extend(5))

		assert.Equal(t, domain.Height(16), p.ExpiryHeight)
		assert.True(t, p.IsValidAt(15))
		assert.False(t, p.IsValidAt(16))
	})

	t.Run("rejects overflow without mutating", func(t *testing.T) {
		p, err := NewPassport(validIssue(), "wallet_1", 10)
		require.NoError(t, err)
		before := p.ExpiryHeight

		err = p.Extend(domain.MaxHeight)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Equal(t, before, p.ExpiryHeight)
	})
}

func TestPassportRevocationIsTerminal(t *testing.T) {
	p, err := NewPassport(validIssue(), "wallet_1", 10)
	require.NoError(t, err)

	p.Revoke()
	require.NoError(t, p.Extend(1_000_000))

	assert.False(t, p.IsValidAt(10))
	assert.False(t, p.View(11).IsValid)
}

func TestPassportMetadata(t *testing.T) {
	p, err := NewPassport(validIssue(), "wallet_1", 1)
	require.NoError(t, err)

	require.NoError(t, p.SetMetadataURL(strPtr("  https://updated.example.com/US123456789 ")))
	require.NotNil(t, p.MetadataURL)
	assert.Equal(t, "https://updated.example.com/US123456789", *p.MetadataURL)

	require.NoError(t, p.SetMetadataURL(nil))
	assert.Nil(t, p.MetadataURL)

	require.NoError(t, p.SetMetadataURL(strPtr("   ")))
	assert.Nil(t, p.MetadataURL)
}

func TestNewPassportValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *IssuePassport)
	}{
		{"missing number", func(r *IssuePassport) { r.Number = "" }},
		{"missing holder", func(r *IssuePassport) { r.Holder = "" }},
		{"oversized name", func(r *IssuePassport) { r.FullName = string(make([]byte, 129)) }},
		{"oversized url", func(r *IssuePassport) { r.MetadataURL = strPtr(string(make([]byte, 257))) }},
		{"validity overflow", func(r *IssuePassport) { r.ValidityPeriod = domain.MaxHeight }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validIssue()
			tt.mutate(&req)
			_, err := NewPassport(req, "wallet_1", 10)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		})
	}
}

func TestNumericCode(t *testing.T) {
	assert.Equal(t, ErrCodeUnauthorized, NumericCode(dErrors.New(dErrors.CodeUnauthorized, "x")))
	assert.Equal(t, ErrCodeInvalidInput, NumericCode(dErrors.New(dErrors.CodeInvalidInput, "x")))
	assert.Equal(t, ErrCodeAlreadyExists, NumericCode(dErrors.New(dErrors.CodeAlreadyExists, "x")))
	assert.Equal(t, ErrCodeNotFound, NumericCode(dErrors.New(dErrors.CodeNotFound, "x")))
	assert.Equal(t, uint32(0), NumericCode(dErrors.New(dErrors.CodeInternal, "x")))
	assert.Equal(t, uint32(0), NumericCode(nil))
}

package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "ledgerpass/pkg/domain-errors"
)

func TestHashAndVerify(t *testing.T) {
	secret, err := Generate()
	require.NoError(t, err)
	assert.Len(t, secret, 43)

	hash, err := Hash(secret)
	require.NoError(t, err)
	assert.True(t, IsHash(hash))
	assert.False(t, IsHash(secret))

	require.NoError(t, Verify(secret, hash))

	err = Verify("not-the-secret", hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := Hash("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerpass/internal/registry/models"
	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/platform/circuit"
	"ledgerpass/pkg/platform/sentinel"
)

type flakyBackend struct {
	err     error
	gets    int
	sets    int
	fills   int
	deletes int
}

func (f *flakyBackend) Get(context.Context, domain.PassportNumber) (*models.Passport, error) {
	f.gets++
	if f.err != nil {
		return nil, f.err
	}
	return nil, sentinel.ErrNotFound
}

func (f *flakyBackend) Set(context.Context, *models.Passport) error {
	f.sets++
	return f.err
}

func (f *flakyBackend) SetIfAbsent(context.Context, *models.Passport) error {
	f.fills++
	return f.err
}

func (f *flakyBackend) Delete(context.Context, domain.PassportNumber) error {
	f.deletes++
	return f.err
}

func TestGuardedCacheSkipsFailingBackend(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{err: errors.New("connection refused")}
	guarded := NewGuardedCache(backend, circuit.New("passport-cache", circuit.WithFailureThreshold(2)), nil)

	for range 2 {
		_, err := guarded.Get(ctx, "US123")
		require.Error(t, err)
	}
	assert.Equal(t, 2, backend.gets)

	// open: reads become misses without touching the backend
	_, err := guarded.Get(ctx, "US123")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	require.NoError(t, guarded.SetIfAbsent(ctx, &models.Passport{Number: "US123"}))
	assert.Equal(t, 2, backend.gets)
	assert.Equal(t, 0, backend.fills)

	// evictions still go through
	assert.Error(t, guarded.Delete(ctx, "US123"))
	assert.Equal(t, 1, backend.deletes)
}

func TestGuardedCacheWriteBecomesEvictionWhileOpen(t *testing.T) {
	ctx := context.Background()
	backend := &flakyBackend{err: errors.New("connection refused")}
	breaker := circuit.New("passport-cache", circuit.WithFailureThreshold(1))
	guarded := NewGuardedCache(backend, breaker, nil)

	// Given an open breaker
	_, err := guarded.Get(ctx, "US123")
	require.Error(t, err)
	require.True(t, breaker.IsOpen())

	// When a committed row is written through
	err = guarded.Set(ctx, &models.Passport{Number: "US123", Revoked: true})

	// Then the backend sees an eviction for it instead of a write
	assert.Error(t, err)
	assert.Equal(t, 0, backend.sets)
	assert.Equal(t, 1, backend.deletes)
}

func TestGuardedCacheMissIsHealthy(t *testing.T) {
	backend := &flakyBackend{}
	breaker := circuit.New("passport-cache", circuit.WithFailureThreshold(1))
	guarded := NewGuardedCache(backend, breaker, nil)

	_, err := guarded.Get(context.Background(), "US123")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.False(t, breaker.IsOpen())
}

package auth

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerpass/pkg/domain"
	"ledgerpass/pkg/requestcontext"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
	seen   string
}

func (s *stubValidator) ValidateToken(token string) (*JWTClaims, error) {
	s.seen = token
	return s.claims, s.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var sender domain.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sender = requestcontext.Principal(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		v := &stubValidator{}
		rec := httptest.NewRecorder()
		RequireAuth(v, logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, v.seen, "validator should not be called without a token")
	})

	t.Run("non-bearer scheme is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Basic d2FsbGV0OnB3")
		rec := httptest.NewRecorder()
		RequireAuth(&stubValidator{}, logger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid token is unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer expired")
		rec := httptest.NewRecorder()
		RequireAuth(&stubValidator{err: errors.New("token expired")}, logger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"unauthorized","error_description":"Invalid or expired token"}`, rec.Body.String())
	})

	t.Run("valid token sets the sender", func(t *testing.T) {
		v := &stubValidator{claims: &JWTClaims{Principal: "wallet_1", JTI: "jti-1"}}
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		RequireAuth(v, logger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "good", v.seen)
		assert.Equal(t, domain.Principal("wallet_1"), sender)
	})
}

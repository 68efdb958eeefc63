package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"signaling-server/internal/service/auth"

	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	identity auth.Identity
	err      error
	header   string
}

func (s *stubVerifier) IdentityFromAuthorizationHeader(header string) (auth.Identity, error) {
	s.header = header
	return s.identity, s.err
}

func TestValidateJWTMiddlewareStoresIdentity(t *testing.T) {
	verifier := &stubVerifier{identity: auth.Identity{UserID: "u1", Email: "u1@example.com"}}

	var got auth.Identity
	handler := ValidateJWTMiddleware(verifier)(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		require.True(t, ok)
		got = identity
	})

	req := httptest.NewRequest(http.MethodGet, "/calls", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Bearer token", verifier.header)
	require.Equal(t, "u1", got.UserID)
}

func TestValidateJWTMiddlewareRejects(t *testing.T) {
	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"verifier error", "Bearer bad", errors.New("invalid token")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := ValidateJWTMiddleware(&stubVerifier{err: tt.err})(func(w http.ResponseWriter, r *http.Request) {
				called = true
			})

			req := httptest.NewRequest(http.MethodGet, "/calls", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler(rec, req)

			require.Equal(t, http.StatusUnauthorized, rec.Code)
			require.False(t, called)
		})
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	_, ok := IdentityFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	require.False(t, ok)
}

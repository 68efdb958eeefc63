package middleware

import (
	"context"
	"net/http"

	"signaling-server/internal/service/auth"
)

type identityKey struct{}

type IdentityVerifier interface {
	IdentityFromAuthorizationHeader(header string) (auth.Identity, error)
}

// ValidateJWTMiddleware rejects requests without a valid bearer token and
// stores the verified identity on the request context.
func ValidateJWTMiddleware(verifier IdentityVerifier) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")

			if tokenString == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			identity, err := verifier.IdentityFromAuthorizationHeader(tokenString)
			if err != nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, identity)))
		}
	}
}

func IdentityFromContext(ctx context.Context) (auth.Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(auth.Identity)
	return identity, ok
}

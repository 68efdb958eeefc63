package auth

import (
	"context"
	"net/http"
	"strings"

	internaljwt "signaling-server/internal/jwt"
)

const tokenQueryParam = "token"

type Service struct {
	secret     string
	collection string
	names      DisplayNameResolver
}

func New(secret, collection string, names DisplayNameResolver) *Service {
	return &Service{
		secret:     secret,
		collection: collection,
		names:      names,
	}
}

// Authenticate extracts the handshake token from the Authorization header
// or, for browsers that cannot set headers on a WebSocket upgrade, from the
// token query parameter.
func (s *Service) Authenticate(r *http.Request) (Identity, error) {
	var (
		identity Identity
		err      error
	)
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		identity, err = s.IdentityFromAuthorizationHeader(header)
	} else {
		identity, err = s.IdentityFromToken(r.URL.Query().Get(tokenQueryParam))
	}
	if err != nil {
		return Identity{}, err
	}

	identity.DisplayName = s.displayName(r.Context(), identity)
	return identity, nil
}

func (s *Service) IdentityFromAuthorizationHeader(header string) (Identity, error) {
	authHeader := strings.TrimSpace(header)
	if authHeader == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "missing authorization header", nil)
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid authorization header format", nil)
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return s.identityFromToken(token)
}

func (s *Service) IdentityFromToken(token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "empty token", nil)
	}
	return s.identityFromToken(token)
}

func (s *Service) identityFromToken(token string) (Identity, error) {
	if token == "" {
		return Identity{}, newError(ErrorCodeUnauthorized, "empty token", nil)
	}

	claims, err := internaljwt.ParseToken(s.secret, token)
	if err != nil {
		return Identity{}, newError(ErrorCodeUnauthorized, "invalid token", err)
	}

	if claims.CollectionID == "" || claims.CollectionID != s.collection {
		return Identity{}, newError(ErrorCodeUnauthorized, "token issued for another identity collection", nil)
	}
	if claims.Type != "" && claims.Type != internaljwt.TokenTypeAuth {
		return Identity{}, newError(ErrorCodeUnauthorized, "token is not an auth token", nil)
	}

	return Identity{
		UserID:       claims.ID,
		Email:        claims.Email,
		CollectionID: claims.CollectionID,
	}, nil
}

func (s *Service) displayName(ctx context.Context, identity Identity) string {
	if s.names == nil {
		return identity.UserID
	}
	return s.names.DisplayName(ctx, identity.UserID, identity.Email)
}

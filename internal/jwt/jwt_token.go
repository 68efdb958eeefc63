package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const DefaultTokenTTL = 15 * time.Minute

func CreateToken(secret string, user User, validUntil int64) (string, error) {
	if secret == "" {
		return "", fmt.Errorf("signing secret is empty")
	}
	if user.Id == "" || user.CollectionID == "" {
		return "", fmt.Errorf("user id and collection are required")
	}

	if validUntil == 0 {
		validUntil = time.Now().Add(DefaultTokenTTL).Unix()
	}

	claims := jwt.MapClaims{
		ClaimID:         user.Id,
		ClaimEmail:      user.Email,
		ClaimCollection: user.CollectionID,
		ClaimType:       TokenTypeAuth,
		ClaimExpires:    validUntil,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken verifies the signature and expiry of an access token.
func ParseToken(secret, tokenString string) (Claims, error) {
	if len(tokenString) == 0 {
		return Claims{}, fmt.Errorf("token string is empty")
	}
	if secret == "" {
		return Claims{}, fmt.Errorf("verification secret is empty")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return Claims{}, fmt.Errorf("unauthorized: %w", err)
	}
	if !token.Valid {
		return Claims{}, fmt.Errorf("token is not valid - unauthorized")
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("claims of unauthorized type")
	}

	// MapClaims.Valid accepts tokens without exp, these never expire so refuse them.
	exp, ok := mapClaims[ClaimExpires].(float64)
	if !ok {
		return Claims{}, fmt.Errorf("token has no expiry")
	}

	claims := Claims{
		ID:           stringClaim(mapClaims, ClaimID),
		Email:        stringClaim(mapClaims, ClaimEmail),
		CollectionID: stringClaim(mapClaims, ClaimCollection),
		Type:         stringClaim(mapClaims, ClaimType),
		ExpiresAt:    time.Unix(int64(exp), 0),
	}
	if claims.ID == "" {
		return Claims{}, fmt.Errorf("token missing subject")
	}
	return claims, nil
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}

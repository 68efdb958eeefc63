package jwt

import "time"

const (
	ClaimID         = "id"
	ClaimEmail      = "email"
	ClaimCollection = "collectionId"
	ClaimType       = "type"
	ClaimExpires    = "exp"
)

const TokenTypeAuth = "auth"

type User struct {
	Id           string `json:"id"`
	Email        string `json:"email"`
	CollectionID string `json:"collectionId"`
}

type Claims struct {
	ID           string
	Email        string
	CollectionID string
	Type         string
	ExpiresAt    time.Time
}

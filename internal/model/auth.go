package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims binding a bearer token to one screening
// session. Only the holder can replay the result or submit answers.
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

package models

import "github.com/golang-jwt/jwt/v5"

// CallerClaims identifies the caller of an admin operation. Subject is the
// owner id stamped on created slots.
type CallerClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

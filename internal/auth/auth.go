// Package auth provides bearer token validation for the HTTP API.
package auth

import "crypto/subtle"

// ValidateToken performs constant-time comparison of the provided token
// against the expected token to prevent timing attacks.
func ValidateToken(provided, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) == 1
}

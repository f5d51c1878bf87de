package auth

import "github.com/MatzeKitt/km-advanced-menu/internal/domain/models"

// JWTVerifier defines the interface for JWT token verification.
// This abstraction keeps the middleware agnostic to where signing keys
// come from.
type JWTVerifier interface {
	// VerifyToken validates a JWT token string and returns the parsed claims.
	// Returns an error if the token is invalid, expired, or has an invalid signature.
	VerifyToken(tokenString string) (*models.AdminClaims, error)

	// Close releases any resources held by the verifier (e.g., HTTP connections for JWKS).
	Close() error
}

// NonceManager issues and checks the authenticity token embedded in the
// admin form
type NonceManager interface {
	// Issue creates a token for a user and action
	Issue(userID, action string) (string, error)

	// Verify checks that a token was issued for this user and action and
	// has not expired
	Verify(token, userID, action string) error
}

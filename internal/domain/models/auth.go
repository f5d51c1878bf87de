package models

import "github.com/golang-jwt/jwt/v5"

// AdminClaims represents the JWT claims of an admin session token.
type AdminClaims struct {
	jwt.RegisteredClaims                        // Standard JWT claims (sub, iss, aud, exp, iat, etc.)
	Email                string                 `json:"email"`
	AppMetadata          map[string]interface{} `json:"app_metadata"`
	Role                 string                 `json:"role"` // "authenticated" or "anon"
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AdminClaims) GetUserID() string {
	return c.Subject
}

// Capabilities returns app_metadata.capabilities. Entries that are not
// strings are ignored.
func (c *AdminClaims) Capabilities() []string {
	raw, ok := c.AppMetadata["capabilities"].([]interface{})
	if !ok {
		return nil
	}
	caps := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			caps = append(caps, s)
		}
	}
	return caps
}

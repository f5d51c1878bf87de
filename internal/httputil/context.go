package httputil

import (
	"context"
	"net/http"
)

// Context key type to avoid collisions
type contextKey string

const (
	principalKey contextKey = "principal"
)

// Principal is the authenticated admin user of a request
type Principal struct {
	UserID       string
	Capabilities []string
}

// Can reports whether the principal holds a capability
func (p Principal) Can(capability string) bool {
	for _, c := range p.Capabilities {
		if c == capability {
			return true
		}
	}
	return false
}

// WithPrincipal adds the authenticated user to the request context
func WithPrincipal(r *http.Request, p Principal) *http.Request {
	ctx := context.WithValue(r.Context(), principalKey, p)
	return r.WithContext(ctx)
}

// GetPrincipal retrieves the authenticated user, ok=false if the request is anonymous
func GetPrincipal(r *http.Request) (Principal, bool) {
	p, ok := r.Context().Value(principalKey).(Principal)
	return p, ok
}

// GetUserID retrieves the user ID, returns empty string if not found
func GetUserID(r *http.Request) string {
	p, _ := GetPrincipal(r)
	return p.UserID
}

package middleware

import (
	"net/http"

	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
)

// RequireCapability rejects principals that lack a capability with 403.
// It must run after AuthMiddleware.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := httputil.GetPrincipal(r)
			if !ok || !p.Can(capability) {
				httputil.RespondError(w, http.StatusForbidden, "missing capability "+capability)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

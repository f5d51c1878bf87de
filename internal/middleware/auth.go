package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/MatzeKitt/km-advanced-menu/internal/auth"
	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
)

// SessionCookie carries the admin JWT for browser requests
const SessionCookie = "km_session"

// AuthMiddleware verifies the admin JWT from the Authorization header or
// the session cookie and stores the principal in the request context.
// Requests without a valid token get 401.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, detail := authenticate(verifier, logger, r)
			if detail != "" {
				httputil.RespondError(w, http.StatusUnauthorized, detail)
				return
			}
			next.ServeHTTP(w, httputil.WithPrincipal(r, principal))
		})
	}
}

// OptionalAuth stores the principal when the request carries a valid
// token and passes every request on. Handlers that ignore anonymous
// callers read the principal themselves.
func OptionalAuth(verifier auth.JWTVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if principal, detail := authenticate(verifier, logger, r); detail == "" {
				r = httputil.WithPrincipal(r, principal)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate returns the principal of the request, or the reason it has
// none
func authenticate(verifier auth.JWTVerifier, logger *slog.Logger, r *http.Request) (httputil.Principal, string) {
	token := bearerToken(r)
	if token == "" {
		return httputil.Principal{}, "missing authentication token"
	}

	claims, err := verifier.VerifyToken(token)
	if err != nil {
		logger.Debug("authentication failed", "path", r.URL.Path, "error", err)
		return httputil.Principal{}, "invalid authentication token"
	}

	return httputil.Principal{
		UserID:       claims.GetUserID(),
		Capabilities: claims.Capabilities(),
	}, ""
}

// bearerToken reads "Authorization: Bearer <token>", falling back to the
// session cookie
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		return cookie.Value
	}
	return ""
}

package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
)

const errorPage = "<!DOCTYPE html><title>Error</title><p>The menu could not be loaded.</p>"

// Recovery turns a panic into a 500. The admin page and the public menu
// are fetched by browsers, so HTML requests get an HTML body and API
// clients get problem JSON.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				logger.Error("panic recovered",
					"error", rec,
					"method", r.Method,
					"route", r.Pattern,
					"path", r.URL.Path,
					"user_id", httputil.GetUserID(r),
					"stack", string(debug.Stack()),
				)

				if strings.Contains(r.Header.Get("Accept"), "text/html") {
					httputil.RespondHTML(w, http.StatusInternalServerError, []byte(errorPage))
					return
				}
				httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
			}()

			next.ServeHTTP(w, r)
		})
	}
}

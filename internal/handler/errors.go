package handler

import (
	"errors"
	"net/http"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
)

// handleError converts domain errors to problem responses. Validation and
// missing-item errors carry their subject as extra members.
func handleError(w http.ResponseWriter, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.ItemNotFoundError
		httpErr       domain.HTTPError
	)

	switch {
	case errors.As(err, &validationErr) && validationErr.Field != "":
		httputil.RespondProblem(w, http.StatusBadRequest, validationErr.Error(),
			map[string]any{"field": validationErr.Field})
	case errors.As(err, &notFoundErr):
		httputil.RespondProblem(w, http.StatusNotFound, notFoundErr.Error(),
			map[string]any{"object": notFoundErr.Object, "id": notFoundErr.ID, "site_id": notFoundErr.SiteID})
	case errors.As(err, &httpErr):
		httputil.RespondError(w, httpErr.StatusCode(), httpErr.Error())
	case errors.Is(err, domain.ErrValidation):
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		httputil.RespondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		httputil.RespondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrForbidden):
		httputil.RespondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrConflict):
		httputil.RespondError(w, http.StatusConflict, err.Error())
	default:
		httputil.RespondError(w, http.StatusInternalServerError, "internal server error")
	}
}

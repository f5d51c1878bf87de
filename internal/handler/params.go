package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// pathID reads a positive integer path parameter
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: name, Message: "must be a positive integer"}
	}
	return id, nil
}

// queryID reads an optional non-negative integer query parameter
func queryID(q url.Values, name string, fallback int64) (int64, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, &domain.ValidationError{Field: name, Message: "must be a non-negative integer"}
	}
	return id, nil
}

// truthy reads a shortcode style flag. Absent, empty, "0", "false", "no"
// and "off" are false; anything else is true.
func truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// parsePublicQuery reads the menu attributes and the requesting page
func parsePublicQuery(q url.Values, mainSiteID int64) (models.Options, models.Current, error) {
	opts := models.Options{
		Arrows:          truthy(q.Get("arrows")),
		OnlyCurrentSite: truthy(q.Get("only_current_site")),
		OnlySub:         truthy(q.Get("only_sub")),
	}
	if raw := strings.TrimSpace(q.Get("depth")); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil {
			return opts, models.Current{}, &domain.ValidationError{Field: "depth", Message: "must be an integer"}
		}
		opts.Depth = depth
	}

	var current models.Current
	var err error
	if current.SiteID, err = queryID(q, "site", mainSiteID); err != nil {
		return opts, current, err
	}
	if current.Category, err = queryID(q, "cat", 0); err != nil {
		return opts, current, err
	}
	if current.Page, err = queryID(q, "page_id", 0); err != nil {
		return opts, current, err
	}
	return opts, current, nil
}

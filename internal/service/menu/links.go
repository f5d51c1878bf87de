package menu

import (
	"strings"

	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// LinkResolver resolves the public URL of a menu item
type LinkResolver interface {
	CategoryLink(c models.Category) string
	PageLink(p models.Page) string
}

// permalinks builds pretty permalinks from slugs: categories live under
// /category/ with their ancestor slugs, pages under their parent pages.
type permalinks struct {
	base       string
	categories map[int64]models.Category
	pages      map[int64]models.Page
}

// NewPermalinkResolver creates a resolver for one site
func NewPermalinkResolver(siteURL string, categories []models.Category, pages []models.Page) LinkResolver {
	l := &permalinks{
		base:       strings.TrimRight(siteURL, "/"),
		categories: make(map[int64]models.Category, len(categories)),
		pages:      make(map[int64]models.Page, len(pages)),
	}
	for _, c := range categories {
		l.categories[c.ID] = c
	}
	for _, p := range pages {
		l.pages[p.ID] = p
	}
	return l
}

func (l *permalinks) CategoryLink(c models.Category) string {
	slugs := []string{c.Slug}
	seen := map[int64]bool{c.ID: true}
	for parent := c.ParentID; parent != 0 && !seen[parent]; {
		seen[parent] = true
		pc, ok := l.categories[parent]
		if !ok {
			break
		}
		slugs = append(slugs, pc.Slug)
		parent = pc.ParentID
	}
	return l.base + "/category/" + joinReversed(slugs) + "/"
}

func (l *permalinks) PageLink(p models.Page) string {
	slugs := []string{p.Slug}
	seen := map[int64]bool{p.ID: true}
	for parent := p.ParentID; parent != 0 && !seen[parent]; {
		seen[parent] = true
		pp, ok := l.pages[parent]
		if !ok {
			break
		}
		slugs = append(slugs, pp.Slug)
		parent = pp.ParentID
	}
	return l.base + "/" + joinReversed(slugs) + "/"
}

func joinReversed(parts []string) string {
	out := make([]string, len(parts))
	for i, p := range parts {
		out[len(parts)-1-i] = p
	}
	return strings.Join(out, "/")
}

package menu

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

//go:embed templates/public.html
var publicFS embed.FS

var publicTemplate = template.Must(template.New("public").ParseFS(publicFS, "templates/public.html"))

// TextFilter reduces a stored title to display text
type TextFilter interface {
	Text(title string) string
}

// publicSite is one nav block of the public menu
type publicSite struct {
	Title       string
	TitleHidden bool
	SubNav      bool
	Items       []publicItem
}

// publicItem is one li of the public menu
type publicItem struct {
	Classes  string
	Link     string
	Title    string
	Arrow    bool
	Submenu  bool
	Children []publicItem
}

// PublicRenderer renders snapshots as navigation markup
type PublicRenderer struct {
	titles TextFilter
}

// NewPublicRenderer creates a renderer. titles may be nil, in which case
// titles are printed as stored (still escaped).
func NewPublicRenderer(titles TextFilter) *PublicRenderer {
	return &PublicRenderer{titles: titles}
}

// RenderPublicMenu renders one nav block per site of the snapshot.
func (r *PublicRenderer) RenderPublicMenu(snapshot *models.Snapshot, opts models.Options, current models.Current) (template.HTML, error) {
	if opts.Arrows {
		opts.Depth = 0
	}

	var sites []publicSite
	for _, forest := range sortSites(snapshot.Sites, current.SiteID) {
		if opts.OnlyCurrentSite && forest.Site.ID != current.SiteID {
			continue
		}

		w := &publicWalk{
			renderer: r,
			forest:   &forest,
			opts:     opts,
			current:  current,
		}
		if forest.Site.ID != current.SiteID {
			// Other sites never hold the current item
			w.current = models.Current{SiteID: current.SiteID}
		}

		if opts.OnlySub {
			sites = append(sites, w.subSite())
			// The requesting site sorts first; only its block is shown
			break
		}
		sites = append(sites, publicSite{
			Title:       forest.Site.Name,
			TitleHidden: forest.Site.ID != current.SiteID,
			Items:       w.items(forest.Roots, 1),
		})
	}

	var buf bytes.Buffer
	if err := publicTemplate.ExecuteTemplate(&buf, "public", sites); err != nil {
		return "", fmt.Errorf("render public menu: %w", err)
	}
	return template.HTML(buf.String()), nil
}

// publicWalk holds the state of rendering one site
type publicWalk struct {
	renderer *PublicRenderer
	forest   *models.Forest
	opts     models.Options
	current  models.Current
}

// items renders siblings at level (top level = 1). Children nest while
// the level is below the depth limit.
func (w *publicWalk) items(ids []int, level int) []publicItem {
	out := make([]publicItem, 0, len(ids))
	for _, id := range ids {
		node := &w.forest.Nodes[id]
		item := w.item(node, level)
		if len(node.Children) > 0 && (w.opts.Depth == 0 || level < w.opts.Depth) {
			item.Submenu = true
			item.Children = w.items(node.Children, level+1)
		}
		out = append(out, item)
	}
	return out
}

// subSite renders only the descendants of the current item. Items above
// it are walked through without being printed.
func (w *publicWalk) subSite() publicSite {
	ref, ok := w.current.Ref()
	if ok {
		if idx, level, found := w.findCurrent(w.forest.Roots, 1, ref); found {
			return publicSite{
				SubNav: true,
				Items:  w.subItems(w.forest.Nodes[idx].Children, level+1, ref),
			}
		}
	}
	return publicSite{
		Title: w.forest.Site.Name,
		Items: []publicItem{},
	}
}

// findCurrent locates the first placement of ref in pre-order, descending
// only as far as the inclusive depth cutoff allows.
func (w *publicWalk) findCurrent(ids []int, level int, ref models.Ref) (int, int, bool) {
	for _, id := range ids {
		node := &w.forest.Nodes[id]
		if node.Ref == ref {
			return id, level, true
		}
		if len(node.Children) > 0 && (w.opts.Depth == 0 || level <= w.opts.Depth) {
			if idx, l, found := w.findCurrent(node.Children, level+1, ref); found {
				return idx, l, true
			}
		}
	}
	return 0, 0, false
}

// subItems renders descendants of the current item. A node is printed
// only when the current item is one of its stored ancestors; other nodes
// hand their printed descendants up to the enclosing list.
func (w *publicWalk) subItems(ids []int, level int, ref models.Ref) []publicItem {
	out := make([]publicItem, 0, len(ids))
	for _, id := range ids {
		node := &w.forest.Nodes[id]
		descend := len(node.Children) > 0 && (w.opts.Depth == 0 || level <= w.opts.Depth)

		if !node.HasAncestor(ref) {
			if descend {
				out = append(out, w.subItems(node.Children, level+1, ref)...)
			}
			continue
		}

		item := w.item(node, level)
		if descend {
			item.Submenu = true
			item.Children = w.subItems(node.Children, level+1, ref)
		}
		out = append(out, item)
	}
	return out
}

func (w *publicWalk) item(node *models.Node, level int) publicItem {
	classes := w.classes(node, level)
	return publicItem{
		Classes: strings.Join(classes, " "),
		Link:    node.Link,
		Title:   w.title(node.Title),
		Arrow:   w.opts.Arrows && hasClass(classes, "menu-item-has-children"),
	}
}

// classes computes the CSS classes of an item at level.
func (w *publicWalk) classes(node *models.Node, level int) []string {
	isCurrent := w.current.Is(node.Ref)
	isActive := isCurrent
	if !isCurrent && len(node.Children) > 0 {
		isActive = w.hasActiveChildren(node.Children, level)
	}

	classes := []string{"menu-item"}
	if len(node.Children) > 0 && (w.opts.Depth == 0 || level <= w.opts.Depth) {
		classes = append(classes, "menu-item-has-children")
	}
	if isActive {
		classes = append(classes, "current-menu-ancestor", "current-page-ancestor")
	}
	if isCurrent {
		classes = append(classes, "current-menu-item")
	}
	if !isActive && !isCurrent {
		classes = append(classes, "is-hidden")
	}
	return classes
}

// hasActiveChildren reports whether the current item is anywhere below a
// node at level. Only the node's own level is checked against the depth
// limit; descendants are searched to any depth.
func (w *publicWalk) hasActiveChildren(ids []int, level int) bool {
	if w.opts.Depth > 0 && level > w.opts.Depth {
		return false
	}
	for _, id := range ids {
		node := &w.forest.Nodes[id]
		if w.current.Is(node.Ref) {
			return true
		}
		if w.hasActiveChildren(node.Children, level) {
			return true
		}
	}
	return false
}

func (w *publicWalk) title(title string) string {
	if w.renderer.titles != nil {
		title = w.renderer.titles.Text(title)
	}
	return displayTitle(title)
}

func hasClass(classes []string, class string) bool {
	for _, c := range classes {
		if c == class {
			return true
		}
	}
	return false
}

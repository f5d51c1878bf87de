package menu

import (
	"sort"

	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// entry is a sibling candidate before it is placed in the arena
type entry struct {
	ref models.Ref
	key int
}

// forestBuilder holds the lookups of one BuildForest call
type forestBuilder struct {
	categories map[int64]models.Category
	pages      map[int64]models.Page
	links      LinkResolver

	catChildren  map[int64][]int64 // category forest, reachable only
	pageChildren map[int64][]int64 // page forest minus categorized pages
	catPages     map[int64][]int64 // pages filed under a category

	forest *models.Forest
}

// BuildForest merges the categories and pages of one site into a single
// ordered forest.
//
// Categories and pages are first arranged into two independent forests by
// their stored parents, each level keeping the order of the input after a
// stable sort by order key. Items whose parent chain does not reach the top
// level are dropped. Every page that belongs to categories is then moved,
// with its page subtree, under each of those categories. Finally the
// remaining top-level categories and pages are merged into one sibling
// list sorted stably by order key, and positions are numbered in pre-order.
func BuildForest(categories []models.Category, pages []models.Page, links LinkResolver) *models.Forest {
	b := &forestBuilder{
		categories:   make(map[int64]models.Category, len(categories)),
		pages:        make(map[int64]models.Page, len(pages)),
		links:        links,
		catChildren:  make(map[int64][]int64),
		pageChildren: make(map[int64][]int64),
		catPages:     make(map[int64][]int64),
		forest:       &models.Forest{Nodes: []models.Node{}, Roots: []int{}},
	}

	sortedCats := make([]models.Category, len(categories))
	copy(sortedCats, categories)
	sort.SliceStable(sortedCats, func(i, j int) bool {
		return sortedCats[i].OrderKey() < sortedCats[j].OrderKey()
	})
	sortedPages := make([]models.Page, len(pages))
	copy(sortedPages, pages)
	sort.SliceStable(sortedPages, func(i, j int) bool {
		return sortedPages[i].OrderKey() < sortedPages[j].OrderKey()
	})

	for _, c := range sortedCats {
		b.categories[c.ID] = c
	}
	for _, p := range sortedPages {
		b.pages[p.ID] = p
	}

	// Pass 1: category forest
	catParents := make([]parented, len(sortedCats))
	for i, c := range sortedCats {
		catParents[i] = parented{id: c.ID, parent: c.ParentID}
	}
	b.catChildren = extract(catParents)

	// Pass 2: page forest
	pageParents := make([]parented, len(sortedPages))
	for i, p := range sortedPages {
		pageParents[i] = parented{id: p.ID, parent: p.ParentID}
	}
	pageChildren := extract(pageParents)

	// Pass 3: file categorized pages under their categories. Category
	// membership wins over post_parent.
	inCatForest := reachable(b.catChildren)
	inPageForest := reachable(pageChildren)
	for _, p := range sortedPages {
		if !inPageForest[p.ID] || len(p.CategoryIDs) == 0 {
			continue
		}
		for _, catID := range uniqueIDs(p.CategoryIDs) {
			if inCatForest[catID] {
				b.catPages[catID] = append(b.catPages[catID], p.ID)
			}
		}
	}
	for parent, kids := range pageChildren {
		for _, id := range kids {
			if len(b.pages[id].CategoryIDs) == 0 {
				b.pageChildren[parent] = append(b.pageChildren[parent], id)
			}
		}
	}

	// Pass 4: one top-level list, categories first, then stable sort
	var top []entry
	for _, id := range b.catChildren[0] {
		top = append(top, entry{ref: b.categories[id].Ref(), key: b.categories[id].OrderKey()})
	}
	for _, id := range b.pageChildren[0] {
		top = append(top, entry{ref: b.pages[id].Ref(), key: b.pages[id].OrderKey()})
	}
	sortEntries(top)
	for _, e := range top {
		b.forest.Roots = append(b.forest.Roots, b.place(e.ref, models.NoParent, 0))
	}

	numberPositions(b.forest)
	return b.forest
}

// place appends ref and its subtree to the arena and returns its index
func (b *forestBuilder) place(ref models.Ref, parent, depth int) int {
	idx := len(b.forest.Nodes)
	node := models.Node{
		Ref:      ref,
		Parent:   parent,
		Depth:    depth,
		Children: []int{},
	}

	var children []entry
	switch ref.Object {
	case models.ObjectCategory:
		c := b.categories[ref.ID]
		node.Title = c.Name
		node.OrderKey = c.OrderKey()
		node.CategoryAncestors = b.categoryAncestors(c.ParentID)
		if b.links != nil {
			node.Link = b.links.CategoryLink(c)
		}
		for _, id := range b.catChildren[c.ID] {
			children = append(children, entry{ref: b.categories[id].Ref(), key: b.categories[id].OrderKey()})
		}
		for _, id := range b.catPages[c.ID] {
			children = append(children, entry{ref: b.pages[id].Ref(), key: b.pages[id].OrderKey()})
		}
		sortEntries(children)
	case models.ObjectPage:
		p := b.pages[ref.ID]
		node.Title = p.Title
		node.OrderKey = p.OrderKey()
		node.PageAncestors = b.pageAncestors(p.ParentID)
		for _, catID := range uniqueIDs(p.CategoryIDs) {
			node.CategoryAncestors = appendUnique(node.CategoryAncestors, catID)
			for _, a := range b.categoryAncestors(b.categories[catID].ParentID) {
				node.CategoryAncestors = appendUnique(node.CategoryAncestors, a)
			}
		}
		if b.links != nil {
			node.Link = b.links.PageLink(p)
		}
		for _, id := range b.pageChildren[p.ID] {
			children = append(children, entry{ref: b.pages[id].Ref(), key: b.pages[id].OrderKey()})
		}
	}

	b.forest.Nodes = append(b.forest.Nodes, node)
	for _, child := range children {
		childIdx := b.place(child.ref, idx, depth+1)
		b.forest.Nodes[idx].Children = append(b.forest.Nodes[idx].Children, childIdx)
	}
	return idx
}

// categoryAncestors walks stored category parents starting at parent
func (b *forestBuilder) categoryAncestors(parent int64) []int64 {
	var out []int64
	seen := map[int64]bool{}
	for parent != 0 && !seen[parent] {
		seen[parent] = true
		out = append(out, parent)
		c, ok := b.categories[parent]
		if !ok {
			break
		}
		parent = c.ParentID
	}
	return out
}

// pageAncestors walks stored page parents starting at parent
func (b *forestBuilder) pageAncestors(parent int64) []int64 {
	var out []int64
	seen := map[int64]bool{}
	for parent != 0 && !seen[parent] {
		seen[parent] = true
		out = append(out, parent)
		p, ok := b.pages[parent]
		if !ok {
			break
		}
		parent = p.ParentID
	}
	return out
}

type parented struct {
	id     int64
	parent int64
}

// extract arranges items into a parent-linked forest starting at parent 0.
// Each parent's children keep input order. Items that never become
// reachable from 0 (missing parent, cycle) are left out.
func extract(items []parented) map[int64][]int64 {
	byParent := make(map[int64][]int64)
	for _, it := range items {
		byParent[it.parent] = append(byParent[it.parent], it.id)
	}

	out := make(map[int64][]int64)
	placed := make(map[int64]bool)
	queue := []int64{0}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		for _, id := range byParent[parent] {
			if placed[id] || id == 0 {
				continue
			}
			placed[id] = true
			out[parent] = append(out[parent], id)
			queue = append(queue, id)
		}
	}
	return out
}

func reachable(children map[int64][]int64) map[int64]bool {
	out := make(map[int64]bool)
	for _, kids := range children {
		for _, id := range kids {
			out[id] = true
		}
	}
	return out
}

// sortEntries orders siblings by key; ties keep their order
func sortEntries(entries []entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].key < entries[j].key
	})
}

// numberPositions assigns 1-based positions in pre-order
func numberPositions(f *models.Forest) {
	pos := 0
	f.Walk(func(_ int, n *models.Node) {
		pos++
		n.Position = pos
	})
}

func uniqueIDs(ids []int64) []int64 {
	var out []int64
	for _, id := range ids {
		out = appendUnique(out, id)
	}
	return out
}

func appendUnique(ids []int64, id int64) []int64 {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

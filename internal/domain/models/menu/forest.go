package menu

import "time"

// NoParent is the Parent index of root nodes.
const NoParent = -1

// Node is one placement of a category or page in a forest. A page filed
// under several categories has one Node per placement, all sharing a Ref.
type Node struct {
	Ref      Ref    `json:"ref"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	OrderKey int    `json:"order_key"`
	Parent   int    `json:"parent"`
	Children []int  `json:"children,omitempty"`
	Depth    int    `json:"depth"`
	Position int    `json:"position"`

	// Ancestors as stored in the content store, independent of where the
	// node was placed.
	CategoryAncestors []int64 `json:"category_ancestors,omitempty"`
	PageAncestors     []int64 `json:"page_ancestors,omitempty"`
}

// HasAncestor reports whether ref is a stored ancestor of the node.
func (n *Node) HasAncestor(ref Ref) bool {
	ids := n.PageAncestors
	if ref.Object == ObjectCategory {
		ids = n.CategoryAncestors
	}
	for _, id := range ids {
		if id == ref.ID {
			return true
		}
	}
	return false
}

// Forest is the merged category/page menu of one site. Nodes is an arena
// in pre-order; Roots and Children index into it.
type Forest struct {
	Site  Site   `json:"meta"`
	Nodes []Node `json:"nodes"`
	Roots []int  `json:"roots"`
}

// Walk visits every node in pre-order.
func (f *Forest) Walk(fn func(idx int, n *Node)) {
	var visit func(ids []int)
	visit = func(ids []int) {
		for _, id := range ids {
			fn(id, &f.Nodes[id])
			visit(f.Nodes[id].Children)
		}
	}
	visit(f.Roots)
}

// Snapshot is the assembled menu of every site. It is the cached value.
type Snapshot struct {
	Sites   []Forest  `json:"sites"`
	BuiltAt time.Time `json:"built_at"`
}

// Site returns the forest of one site, nil if the snapshot has none.
func (s *Snapshot) Site(id int64) *Forest {
	for i := range s.Sites {
		if s.Sites[i].Site.ID == id {
			return &s.Sites[i]
		}
	}
	return nil
}

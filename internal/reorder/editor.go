// Package reorder is the structural editor behind the admin menu list.
//
// The list is flat: hierarchy lives only in each item's depth and parent
// reference. Every operation moves an item together with its descendant
// block and then restores the list invariants: the first item is at depth
// 0, no item is more than one level deeper than its predecessor, no item
// is deeper than config.GlobalMaxDepth, parents point at the nearest
// preceding item one level up, and positions run 1..n.
package reorder

import (
	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// DefaultRowHeight is the height of one list row in pixels
const DefaultRowHeight = 42

// Options configure the pointer geometry of an editor
type Options struct {
	DepthWidth int  // px per level, config.DepthWidthPx when 0
	RowHeight  int  // px per row, DefaultRowHeight when 0
	RTL        bool // pointer offsets grow leftwards

	// TargetTolerance is how far in px the dragged row may overlap the
	// previous row before it nests as deep as allowed. 0 snaps on any
	// overlap.
	TargetTolerance int
}

// Editor owns one editable menu list. It is not safe for concurrent use;
// a list is edited by one request or one client at a time.
type Editor struct {
	items    []models.NodeRecord
	changed  bool
	maxDepth int
	drag     *Drag
	opts     Options
}

// NewEditor creates an editor over a copy of records. The list is
// normalized right away, which does not count as a change.
func NewEditor(records []models.NodeRecord, opts Options) *Editor {
	if opts.DepthWidth <= 0 {
		opts.DepthWidth = config.DepthWidthPx
	}
	if opts.RowHeight <= 0 {
		opts.RowHeight = DefaultRowHeight
	}
	e := &Editor{
		items: append([]models.NodeRecord(nil), records...),
		opts:  opts,
	}
	e.settle()
	return e
}

// Records returns the list in submission order
func (e *Editor) Records() []models.NodeRecord {
	return append([]models.NodeRecord(nil), e.items...)
}

// Len returns the number of items
func (e *Editor) Len() int { return len(e.items) }

// Changed reports whether an edit changed the list since it was loaded.
// Saving ends an editor's life; the next request loads a fresh one.
func (e *Editor) Changed() bool { return e.changed }

// MaxDepth is the deepest level in the list
func (e *Editor) MaxDepth() int { return e.maxDepth }

// Dragging reports whether a drag gesture is in progress
func (e *Editor) Dragging() bool { return e.drag != nil }

// blockEnd returns the index after the descendant block of items[index]
func blockEnd(items []models.NodeRecord, index int) int {
	depth := items[index].Depth
	end := index + 1
	for end < len(items) && items[end].Depth > depth {
		end++
	}
	return end
}

// shift moves every item of block by diff levels
func shift(block []models.NodeRecord, diff int) {
	for i := range block {
		block[i].Depth += diff
	}
}

// settle restores the list invariants after a structural change
func (e *Editor) settle() {
	prevDepth := -1
	for i := range e.items {
		item := &e.items[i]
		limit := prevDepth + 1
		if limit > config.GlobalMaxDepth {
			limit = config.GlobalMaxDepth
		}
		if item.Depth > limit {
			item.Depth = limit
		}
		if item.Depth < 0 {
			item.Depth = 0
		}
		prevDepth = item.Depth
	}

	e.maxDepth = 0
	for i := range e.items {
		item := &e.items[i]
		item.Position = i + 1
		if item.Depth > e.maxDepth {
			e.maxDepth = item.Depth
		}

		item.ParentID, item.ParentType = 0, ""
		if item.Depth == 0 {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			if e.items[j].Depth == item.Depth-1 {
				item.ParentID = e.items[j].ID
				item.ParentType = e.items[j].ObjectType
				break
			}
		}
	}
}

// layout captures the structure that decides whether a move changed anything
type layout []struct {
	ref   models.Ref
	depth int
}

func (e *Editor) layout() layout {
	l := make(layout, len(e.items))
	for i, item := range e.items {
		l[i].ref = item.Ref()
		l[i].depth = item.Depth
	}
	return l
}

func (l layout) equal(other layout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

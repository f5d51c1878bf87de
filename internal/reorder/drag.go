package reorder

import (
	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// Drag is one drag gesture. The dragged item and its descendants are
// detached for the whole gesture and travel as one block; a placeholder
// marks where they will land.
//
// Geometry is in pixels relative to the list: x is the offset of the
// dragged row's leading edge from the list's leading edge (negative
// towards the left in right-to-left lists), y the offset of its top from
// the list top. Rows are Options.RowHeight tall and the
// placeholder is as tall as the block.
type Drag struct {
	editor        *Editor
	block         []models.NodeRecord
	originalDepth int
	currentDepth  int
	placeholder   int // insertion index into the remaining items

	prevBottom    int
	nextThreshold int
	minDepth      int
	maxDepth      int
}

// BeginDrag starts dragging the item at index. It returns nil when the
// index is out of range or another gesture is in progress.
func (e *Editor) BeginDrag(index int) *Drag {
	if e.drag != nil || index < 0 || index >= len(e.items) {
		return nil
	}

	end := blockEnd(e.items, index)
	d := &Drag{
		editor:      e,
		block:       e.cut(index, end),
		placeholder: index,
	}
	d.originalDepth = d.block[0].Depth
	d.currentDepth = d.originalDepth
	d.updateBounds()
	e.drag = d
	return d
}

// Placeholder returns the insertion index among the remaining items
func (d *Drag) Placeholder() int { return d.placeholder }

// Depth returns the depth the block root would land at
func (d *Drag) Depth() int { return d.currentDepth }

// Bounds returns the depth range allowed at the placeholder
func (d *Drag) Bounds() (min, max int) { return d.minDepth, d.maxDepth }

// MoveTo puts the placeholder at index among the remaining items. An
// index outside the list is pulled back to its nearest end.
func (d *Drag) MoveTo(index int) {
	if d.editor.drag != d {
		return
	}
	remaining := len(d.editor.items)
	if index < 0 {
		index = 0
	}
	if index > remaining {
		index = remaining
	}
	d.placeholder = index
	d.updateBounds()
	d.clampDepth()
}

// Pointer tracks the dragged row. The horizontal offset picks the depth
// within the allowed range. A row pushed up into the previous row by more
// than Options.TargetTolerance nests as deep as allowed, and a row
// reaching a third into the next row pushes the placeholder past it.
func (d *Drag) Pointer(x, y int) {
	if d.editor.drag != d {
		return
	}
	opts := d.editor.opts

	depth := floorDiv(x, opts.DepthWidth)
	if opts.RTL {
		depth = -depth
	}

	if depth > d.maxDepth || y < d.prevBottom-opts.TargetTolerance {
		depth = d.maxDepth
	} else if depth < d.minDepth {
		depth = d.minDepth
	}
	d.currentDepth = depth

	helperHeight := len(d.block) * opts.RowHeight
	if d.nextThreshold != 0 && y+helperHeight > d.nextThreshold {
		d.placeholder++
		d.updateBounds()
		d.clampDepth()
	}
}

// Drop lands the block at the placeholder with the root at the current
// depth; descendants keep their offsets. The gesture ends and the editor
// is marked changed.
func (d *Drag) Drop() {
	e := d.editor
	if e.drag != d {
		return
	}
	shift(d.block, d.currentDepth-d.originalDepth)
	e.insert(d.placeholder, d.block)
	e.drag = nil
	e.settle()
	e.changed = true
}

// updateBounds recomputes the neighbours of the placeholder
func (d *Drag) updateBounds() {
	items := d.editor.items
	h := d.editor.opts.RowHeight

	d.prevBottom, d.nextThreshold = 0, 0
	d.minDepth, d.maxDepth = 0, 0

	if d.placeholder > 0 {
		prev := items[d.placeholder-1]
		d.prevBottom = d.placeholder * h
		d.maxDepth = prev.Depth + 1
		if d.maxDepth > config.GlobalMaxDepth {
			d.maxDepth = config.GlobalMaxDepth
		}
	}
	if d.placeholder < len(items) {
		next := items[d.placeholder]
		nextTop := d.placeholder*h + len(d.block)*h
		d.nextThreshold = nextTop + h/3
		d.minDepth = next.Depth
	}
}

func (d *Drag) clampDepth() {
	if d.currentDepth > d.maxDepth {
		d.currentDepth = d.maxDepth
	}
	if d.currentDepth < d.minDepth {
		d.currentDepth = d.minDepth
	}
}

// floorDiv divides rounding towards negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

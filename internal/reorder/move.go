package reorder

import (
	"fmt"

	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// Direction is a discrete move of the admin move buttons
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Top   Direction = "top"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection validates a direction name
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case Up, Down, Top, Left, Right:
		return d, nil
	}
	return "", fmt.Errorf("unknown move direction %q", s)
}

// Move applies a discrete move to the item at index and its descendant
// block. It reports whether the list changed; moves at a boundary, or
// while a drag is in progress, do nothing.
func (e *Editor) Move(index int, dir Direction) bool {
	if e.drag != nil || index < 0 || index >= len(e.items) {
		return false
	}

	before := e.layout()
	switch dir {
	case Up:
		e.moveUp(index)
	case Down:
		e.moveDown(index)
	case Top:
		e.moveTop(index)
	case Left:
		e.moveLeft(index)
	case Right:
		e.moveRight(index)
	default:
		return false
	}
	e.settle()

	if before.equal(e.layout()) {
		return false
	}
	e.changed = true
	return true
}

// moveUp puts the block before the previous item, taking over its depth
// when that item is a sub item. A block arriving at the top becomes top
// level.
func (e *Editor) moveUp(index int) {
	if index == 0 {
		return
	}
	end := blockEnd(e.items, index)
	block := e.cut(index, end)

	target := index - 1
	prevDepth := e.items[target].Depth
	rootDepth := block[0].Depth
	switch {
	case target == 0:
		shift(block, -rootDepth)
	case prevDepth != 0:
		shift(block, prevDepth-rootDepth)
	}
	e.insert(target, block)
}

// moveDown puts the block after the next item. If that item has children
// the block becomes its first child.
func (e *Editor) moveDown(index int) {
	end := blockEnd(e.items, index)
	if end >= len(e.items) {
		return
	}
	next := e.items[end]
	nextHasChildren := end+1 < len(e.items) && e.items[end+1].Depth > next.Depth

	block := e.cut(index, end)
	rootDepth := block[0].Depth
	if nextHasChildren || rootDepth > next.Depth+1 {
		shift(block, next.Depth+1-rootDepth)
	}
	// next now sits at index
	e.insert(index+1, block)
}

// moveTop puts the block first, at top level
func (e *Editor) moveTop(index int) {
	if index == 0 {
		return
	}
	end := blockEnd(e.items, index)
	block := e.cut(index, end)
	shift(block, -block[0].Depth)
	e.insert(0, block)
}

// moveLeft outdents the block by one level
func (e *Editor) moveLeft(index int) {
	if e.items[index].Depth == 0 {
		return
	}
	end := blockEnd(e.items, index)
	shift(e.items[index:end], -1)
}

// moveRight indents the block under the previous item. The first item,
// an item that already is a child of its predecessor, and blocks that
// would exceed the depth limit stay put.
func (e *Editor) moveRight(index int) {
	if index == 0 {
		return
	}
	item, prev := e.items[index], e.items[index-1]
	if item.ParentID == prev.ID && item.ParentType == prev.ObjectType {
		return
	}
	if item.Depth+1 > prev.Depth+1 {
		return
	}
	end := blockEnd(e.items, index)
	for _, member := range e.items[index:end] {
		if member.Depth+1 > config.GlobalMaxDepth {
			return
		}
	}
	shift(e.items[index:end], 1)
}

// cut removes items[start:end] from the list and returns them
func (e *Editor) cut(start, end int) []models.NodeRecord {
	block := append([]models.NodeRecord(nil), e.items[start:end]...)
	e.items = append(e.items[:start], e.items[end:]...)
	return block
}

// insert puts block at index, clamping index into the list
func (e *Editor) insert(index int, block []models.NodeRecord) {
	if index < 0 {
		index = 0
	}
	if index > len(e.items) {
		index = len(e.items)
	}
	items := make([]models.NodeRecord, 0, len(e.items)+len(block))
	items = append(items, e.items[:index]...)
	items = append(items, block...)
	items = append(items, e.items[index:]...)
	e.items = items
}

package reorder

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// Operation kinds of a script
const (
	OpMove = "move"
	OpDrag = "drag"
)

// Operation is one scripted edit. A move uses Index and Direction. A drag
// picks up the block at Index, moves the placeholder to Target among the
// remaining items and lets go at pointer offset X. Y defaults to the
// placeholder's own row, which neither snaps nor shifts.
type Operation struct {
	Op        string `json:"op"`
	Index     int    `json:"index"`
	Direction string `json:"direction,omitempty"`
	Target    int    `json:"target,omitempty"`
	X         int    `json:"x,omitempty"`
	Y         *int   `json:"y,omitempty"`
}

// Validate checks the operation shape
func (o Operation) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.Op, validation.Required, validation.In(OpMove, OpDrag)),
		validation.Field(&o.Index, validation.Min(0)),
		validation.Field(&o.Direction,
			validation.When(o.Op == OpMove, validation.Required, validation.In(string(Up), string(Down), string(Top), string(Left), string(Right))),
		),
	)
}

// Result is the list after a script
type Result struct {
	Records  []models.NodeRecord `json:"records"`
	MaxDepth int                 `json:"max_depth"`
	Changed  bool                `json:"changed"`
}

// Run applies ops in order to a fresh editor over records. Operations
// that hit a boundary are no-ops, exactly as in the interactive editor.
func Run(records []models.NodeRecord, ops []Operation, opts Options) (*Result, error) {
	for i, op := range ops {
		if err := op.Validate(); err != nil {
			return nil, &domain.ValidationError{Field: fmt.Sprintf("operations[%d]", i), Message: err.Error()}
		}
	}

	e := NewEditor(records, opts)
	for _, op := range ops {
		switch op.Op {
		case OpMove:
			e.Move(op.Index, Direction(op.Direction))
		case OpDrag:
			e.DragTo(op.Index, op.Target, op.X, op.Y)
		}
	}

	return &Result{
		Records:  e.Records(),
		MaxDepth: e.MaxDepth(),
		Changed:  e.Changed(),
	}, nil
}

// DragTo runs a whole drag gesture. y nil means the row sits exactly on
// the placeholder. It reports false when the gesture could not start.
func (e *Editor) DragTo(index, target, x int, y *int) bool {
	d := e.BeginDrag(index)
	if d == nil {
		return false
	}
	d.MoveTo(target)
	pointerY := d.Placeholder() * e.opts.RowHeight
	if y != nil {
		pointerY = *y
	}
	d.Pointer(x, pointerY)
	d.Drop()
	return true
}

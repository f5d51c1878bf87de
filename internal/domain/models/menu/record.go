package menu

// NodeRecord is one row of the flat edit list. Hierarchy is carried by
// Depth and the parent reference only.
type NodeRecord struct {
	ID         int64      `json:"id"`
	ObjectType ObjectType `json:"object_type"`
	Object     Object     `json:"object"`
	Title      string     `json:"title"`
	ParentID   int64      `json:"parent_id"`
	ParentType ObjectType `json:"parent_type"`
	Position   int        `json:"position"`
	Depth      int        `json:"depth"`
}

// Ref returns the identity of the record.
func (r NodeRecord) Ref() Ref { return Ref{Object: r.Object, ID: r.ID} }

// Key returns the form key of the record.
func (r NodeRecord) Key() string { return r.Ref().Key() }

// ParentEntry is one element of a submitted parent chain.
type ParentEntry struct {
	ID   int64      `json:"id"`
	Type ObjectType `json:"type"`
}

// SubmittedItem is one distinct item of a submission. An item placed more
// than once (a page in several categories) carries one parent entry and
// one position per placement.
type SubmittedItem struct {
	Key       string        `json:"key"`
	ObjectID  int64         `json:"object_id"`
	Object    Object        `json:"object"`
	Type      ObjectType    `json:"type"`
	Parents   []ParentEntry `json:"parents"`
	Positions []int         `json:"positions,omitempty"`
}

// ItemsFromRecords groups a flat edit list into submission items the way
// the admin form does: first appearance decides the order, repeated
// placements append to the parent chain.
func ItemsFromRecords(records []NodeRecord) []SubmittedItem {
	index := make(map[string]int, len(records))
	items := make([]SubmittedItem, 0, len(records))
	for _, r := range records {
		k := r.Key()
		i, ok := index[k]
		if !ok {
			i = len(items)
			index[k] = i
			items = append(items, SubmittedItem{
				Key:      k,
				ObjectID: r.ID,
				Object:   r.Object,
				Type:     r.ObjectType,
			})
		}
		items[i].Parents = append(items[i].Parents, ParentEntry{ID: r.ParentID, Type: r.ParentType})
		items[i].Positions = append(items[i].Positions, r.Position)
	}
	return items
}

// MaxDepth returns the deepest record depth, 0 for an empty list
func MaxDepth(records []NodeRecord) int {
	max := 0
	for _, r := range records {
		if r.Depth > max {
			max = r.Depth
		}
	}
	return max
}

package menu

// TermUpdate is a pending change to one category.
type TermUpdate struct {
	ID        int64  `json:"id"`
	Parent    *int64 `json:"parent,omitempty"`
	MenuOrder *int   `json:"menu_order,omitempty"`
}

// PostUpdate is a pending change to one page. Fields is set when
// menu_order or post_parent differ, Categories when the set differs.
type PostUpdate struct {
	ID         int64       `json:"id"`
	Fields     *PostFields `json:"fields,omitempty"`
	Categories []int64     `json:"categories,omitempty"`
	SetCats    bool        `json:"set_categories"`
}

// PostFields are the page columns the menu writes.
type PostFields struct {
	MenuOrder int   `json:"menu_order"`
	ParentID  int64 `json:"post_parent"`
}

// MutationResult summarises an applied submission.
type MutationResult struct {
	Terms   []TermUpdate `json:"terms"`
	Posts   []PostUpdate `json:"posts"`
	Skipped []string     `json:"skipped,omitempty"`
}

// Writes counts the store calls the result caused.
func (r *MutationResult) Writes() int {
	n := 0
	for _, t := range r.Terms {
		if t.Parent != nil {
			n++
		}
		if t.MenuOrder != nil {
			n++
		}
	}
	for _, p := range r.Posts {
		if p.Fields != nil {
			n++
		}
		if p.SetCats {
			n++
		}
	}
	return n
}

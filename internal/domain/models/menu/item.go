package menu

import (
	"fmt"
	"strconv"
	"strings"
)

// Object identifies which content collection a menu item comes from.
type Object string

const (
	ObjectCategory Object = "category"
	ObjectPage     Object = "page"
)

// ObjectType is the storage model behind an Object. Categories are
// taxonomy terms, pages are posts.
type ObjectType string

const (
	TypeTaxonomy ObjectType = "taxonomy"
	TypePostType ObjectType = "post_type"
)

// Type returns the storage model of the object.
func (o Object) Type() ObjectType {
	if o == ObjectCategory {
		return TypeTaxonomy
	}
	return TypePostType
}

// Ref is the identity of a menu item. IDs are unique per Object only, so a
// category and a page may share a numeric ID.
type Ref struct {
	Object Object `json:"object"`
	ID     int64  `json:"id"`
}

// Key returns the form key of the item, e.g. "category-12".
func (r Ref) Key() string {
	return fmt.Sprintf("%s-%d", r.Object, r.ID)
}

// ParseRefKey reverses Ref.Key.
func ParseRefKey(key string) (Ref, error) {
	i := strings.LastIndexByte(key, '-')
	if i <= 0 {
		return Ref{}, fmt.Errorf("invalid item key %q", key)
	}
	id, err := strconv.ParseInt(key[i+1:], 10, 64)
	if err != nil {
		return Ref{}, fmt.Errorf("invalid item key %q: %w", key, err)
	}
	obj := Object(key[:i])
	if obj != ObjectCategory && obj != ObjectPage {
		return Ref{}, fmt.Errorf("invalid item object %q", obj)
	}
	return Ref{Object: obj, ID: id}, nil
}

// Site is one site of the network.
type Site struct {
	ID   int64  `json:"site_id"`
	Name string `json:"site_name"`
	URL  string `json:"url"`
}

// Category is a taxonomy term of the "category" taxonomy. MenuOrder is
// the "menu-order" term meta, 0 when unset.
type Category struct {
	ID        int64  `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	Slug      string `json:"slug" yaml:"slug"`
	ParentID  int64  `json:"parent" yaml:"parent"`
	MenuOrder int    `json:"menu_order" yaml:"menu_order"`
}

// Page is a published page. CategoryIDs is its category membership.
type Page struct {
	ID          int64   `json:"id" yaml:"id"`
	Title       string  `json:"title" yaml:"title"`
	Slug        string  `json:"slug" yaml:"slug"`
	Status      string  `json:"status" yaml:"status"`
	ParentID    int64   `json:"parent" yaml:"parent"`
	MenuOrder   int     `json:"menu_order" yaml:"menu_order"`
	CategoryIDs []int64 `json:"categories" yaml:"categories"`
}

// PageStatusPublish is the only status pages are listed with.
const PageStatusPublish = "publish"

func (c Category) Ref() Ref      { return Ref{Object: ObjectCategory, ID: c.ID} }
func (c Category) OrderKey() int { return orderKey(c.MenuOrder) }

func (p Page) Ref() Ref      { return Ref{Object: ObjectPage, ID: p.ID} }
func (p Page) OrderKey() int { return orderKey(p.MenuOrder) }

// DefaultOrderKey sorts unordered items after every ordered one.
const DefaultOrderKey = 100000

func orderKey(v int) int {
	if v == 0 {
		return DefaultOrderKey
	}
	return v
}

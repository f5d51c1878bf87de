package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
	"github.com/MatzeKitt/km-advanced-menu/internal/httputil"
)

// Admin form field names. Every list row posts one field per name, keyed
// by the record key ("page-12"); fields ending in [] repeat per placement.
const (
	fieldDBID       = "menu-item-db-id"
	fieldObjectID   = "menu-item-object-id"
	fieldObject     = "menu-item-object"
	fieldParentID   = "menu-item-parent-id"
	fieldParentType = "menu-item-parent-type"
	fieldPosition   = "menu-item-position"
	fieldType       = "menu-item-type"
	fieldTitle      = "menu-item-title"
	fieldDepth      = "menu-item-depth"

	fieldNonce   = "_wpnonce"
	fieldChanged = "menu-changed"
	fieldMove    = "move"
)

// splitFieldName splits "menu-item-parent-id[page-12][]" into its base
// name and key
func splitFieldName(name string) (base, key string, ok bool) {
	name = strings.TrimSuffix(name, "[]")
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return "", "", false
	}
	return name[:open], name[open+1 : len(name)-1], true
}

// parseMenuRows rebuilds the flat list from the posted rows. A row starts
// at its menu-item-db-id field; the fields after it up to the next row
// belong to it. Fields of other forms are ignored.
func parseMenuRows(fields []httputil.FormField) ([]models.NodeRecord, error) {
	var records []models.NodeRecord
	var current *models.NodeRecord
	var currentKey string

	for _, f := range fields {
		base, key, ok := splitFieldName(f.Key)
		if !ok || !strings.HasPrefix(base, "menu-item-") {
			continue
		}

		if base == fieldDBID {
			ref, err := models.ParseRefKey(key)
			if err != nil {
				return nil, &domain.ValidationError{Field: f.Key, Message: err.Error()}
			}
			records = append(records, models.NodeRecord{
				ID:         ref.ID,
				Object:     ref.Object,
				ObjectType: ref.Object.Type(),
				Position:   len(records) + 1,
			})
			current = &records[len(records)-1]
			currentKey = key
			continue
		}
		if current == nil || key != currentKey {
			return nil, &domain.ValidationError{Field: f.Key, Message: "field outside its menu row"}
		}

		if err := applyRowField(current, base, f.Value); err != nil {
			return nil, &domain.ValidationError{Field: f.Key, Message: err.Error()}
		}
	}
	return records, nil
}

func applyRowField(r *models.NodeRecord, base, value string) error {
	switch base {
	case fieldObjectID:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id != r.ID {
			return fmt.Errorf("object id %q does not match row", value)
		}
	case fieldObject:
		if models.Object(value) != r.Object {
			return fmt.Errorf("object %q does not match row", value)
		}
	case fieldType:
		r.ObjectType = models.ObjectType(value)
	case fieldParentID:
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid parent id %q", value)
		}
		r.ParentID = id
	case fieldParentType:
		r.ParentType = models.ObjectType(value)
	case fieldPosition:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid position %q", value)
		}
		r.Position = n
	case fieldDepth:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid depth %q", value)
		}
		r.Depth = n
	case fieldTitle:
		r.Title = value
	}
	return nil
}

// parseMoveButton reads the pressed move button, "<index>:<direction>"
func parseMoveButton(value string) (int, string, error) {
	rawIndex, direction, ok := strings.Cut(value, ":")
	if !ok {
		return 0, "", &domain.ValidationError{Field: fieldMove, Message: "expected index:direction"}
	}
	index, err := strconv.Atoi(rawIndex)
	if err != nil {
		return 0, "", &domain.ValidationError{Field: fieldMove, Message: "invalid index"}
	}
	return index, direction, nil
}

package menu

import (
	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// editCursor is the running position shared by one edit walk
type editCursor struct {
	position int
}

// RenderEditTree flattens a forest into the edit list: one record per
// placement, in pre-order, with depth and parent reference made explicit.
func RenderEditTree(forest *models.Forest) []models.NodeRecord {
	records := make([]models.NodeRecord, 0, len(forest.Nodes))
	cursor := &editCursor{}
	records = appendEditRecords(records, forest, forest.Roots, 0, models.Ref{}, cursor)
	return records
}

func appendEditRecords(records []models.NodeRecord, forest *models.Forest, ids []int, depth int, parent models.Ref, cursor *editCursor) []models.NodeRecord {
	for _, id := range ids {
		node := &forest.Nodes[id]
		cursor.position++

		record := models.NodeRecord{
			ID:         node.Ref.ID,
			ObjectType: node.Ref.Object.Type(),
			Object:     node.Ref.Object,
			Title:      displayTitle(node.Title),
			Position:   cursor.position,
			Depth:      depth,
		}
		if parent.ID != 0 {
			record.ParentID = parent.ID
			record.ParentType = parent.Object.Type()
		}
		records = append(records, record)

		if len(node.Children) > 0 {
			records = appendEditRecords(records, forest, node.Children, depth+1, node.Ref, cursor)
		}
	}
	return records
}

func displayTitle(title string) string {
	if title == "" {
		return config.NoTitlePlaceholder
	}
	return title
}

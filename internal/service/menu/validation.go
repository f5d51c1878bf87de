package menu

import (
	"fmt"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/MatzeKitt/km-advanced-menu/internal/config"
	"github.com/MatzeKitt/km-advanced-menu/internal/domain"
	models "github.com/MatzeKitt/km-advanced-menu/internal/domain/models/menu"
)

// ValidateOptions checks public menu attributes
func ValidateOptions(opts models.Options) error {
	err := validation.ValidateStruct(&opts,
		validation.Field(&opts.Depth, validation.Min(0)),
	)
	if err != nil {
		return &domain.ValidationError{Message: err.Error()}
	}
	return nil
}

// validateSubmission checks the shape of submitted items. Items that are
// well formed but missing from the store are skipped later, not rejected.
func validateSubmission(items []models.SubmittedItem) error {
	if len(items) > config.MaxSubmittedItems {
		return &domain.ValidationError{
			Field:   "items",
			Message: fmt.Sprintf("at most %d items can be submitted", config.MaxSubmittedItems),
		}
	}

	for i := range items {
		item := &items[i]
		err := validation.ValidateStruct(item,
			validation.Field(&item.ObjectID, validation.Required, validation.Min(int64(1))),
			validation.Field(&item.Object, validation.In(models.ObjectCategory, models.ObjectPage)),
			validation.Field(&item.Type, validation.In(models.TypeTaxonomy, models.TypePostType)),
		)
		if err != nil {
			return &domain.ValidationError{Field: fmt.Sprintf("items[%d]", i), Message: err.Error()}
		}

		for j := range item.Parents {
			parent := &item.Parents[j]
			err := validation.ValidateStruct(parent,
				validation.Field(&parent.ID, validation.Min(int64(0))),
				validation.Field(&parent.Type, validation.In(models.TypeTaxonomy, models.TypePostType)),
			)
			if err != nil {
				return &domain.ValidationError{Field: fmt.Sprintf("items[%d].parents[%d]", i, j), Message: err.Error()}
			}
		}
	}
	return nil
}

// validateMenuOrder checks a non-empty category order field and returns
// its value
func validateMenuOrder(value string) (int, error) {
	if err := validation.Validate(value, validation.Required, is.Int); err != nil {
		return 0, &domain.ValidationError{Field: "menu_order", Message: err.Error()}
	}
	n, err := strconv.Atoi(value)
	if err == nil {
		err = validation.Validate(n, validation.Min(0), validation.Max(config.MaxMenuOrder))
	}
	if err != nil {
		return 0, &domain.ValidationError{Field: "menu_order", Message: err.Error()}
	}
	return n, nil
}

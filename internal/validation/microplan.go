package validation

import (
	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
)

// ValidateMicroplanTargets applies the wider microplan target range. The
// optional-column activation rule (a column anyone filled is validated for
// everyone) is shared with the standard validator.
func ValidateMicroplanTargets(rows []sheet.Row, schema domain.SheetSchema) []domain.SheetError {
	return ValidateTargets(rows, schema, MicroplanBounds)
}

// Collect merges validator outputs in order. Validators never mutate shared
// state; the coordinating caller merges their returned lists.
func Collect(lists ...[]domain.SheetError) []domain.SheetError {
	var merged []domain.SheetError
	for _, list := range lists {
		merged = append(merged, list...)
	}
	return merged
}

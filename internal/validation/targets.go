package validation

import (
	"fmt"
	"math"
	"strconv"

	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
)

// TargetBounds are the inclusive limits applied when a column rule does not
// carry its own range.
type TargetBounds struct {
	Min int64
	Max int64
}

// StandardBounds are used by regular campaign templates.
var StandardBounds = TargetBounds{Min: domain.DefaultMinTarget, Max: domain.DefaultMaxTarget}

// MicroplanBounds are used by microplan templates, which allow much larger
// aggregate targets.
var MicroplanBounds = TargetBounds{Min: domain.MicroplanMinTarget, Max: domain.MicroplanMaxTarget}

// ValidateTargets checks every target column of the schema across every row.
// A required column is always validated. An optional column is silently
// skipped when empty, unless any row in the sheet filled it in, in which case
// the column is validated across all rows (variable target templates permit
// this indirection). All rows are checked; nothing stops early.
func ValidateTargets(rows []sheet.Row, schema domain.SheetSchema, bounds TargetBounds) []domain.SheetError {
	var errs []domain.SheetError

	for _, column := range schema.TargetColumns() {
		min, max := column.MinTarget, column.MaxTarget
		if min == 0 && max == 0 {
			min, max = bounds.Min, bounds.Max
		}

		effectiveRequired := column.Required || columnHasAnyValue(rows, column.Name)

		for _, row := range rows {
			raw := row.Get(column.Name)
			if raw == "" {
				if effectiveRequired {
					errs = append(errs, domain.SheetError{
						Row:     row.Number,
						Message: fmt.Sprintf("Value in column %q is required and must be a number from %d to %d", column.Name, min, max),
					})
				}
				continue
			}

			value, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
				errs = append(errs, domain.SheetError{
					Row:     row.Number,
					Message: fmt.Sprintf("Value in column %q is not a number", column.Name),
				})
				continue
			}
			if value != math.Trunc(value) {
				errs = append(errs, domain.SheetError{
					Row:     row.Number,
					Message: fmt.Sprintf("Value in column %q must be a whole number", column.Name),
				})
				continue
			}
			if int64(value) < min || int64(value) > max {
				errs = append(errs, domain.SheetError{
					Row:     row.Number,
					Message: fmt.Sprintf("Value in column %q must be from %d to %d", column.Name, min, max),
				})
			}
		}
	}

	return errs
}

// ParseTarget converts a validated target cell into an int64.
func ParseTarget(raw string) (int64, bool) {
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value != math.Trunc(value) {
		return 0, false
	}
	return int64(value), true
}

func columnHasAnyValue(rows []sheet.Row, column string) bool {
	for _, row := range rows {
		if row.Get(column) != "" {
			return true
		}
	}
	return false
}

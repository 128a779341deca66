package validation

import (
	"fmt"
	"strings"

	"github.com/hcm-console/project-factory/internal/domain"
	"github.com/hcm-console/project-factory/internal/sheet"
)

// ValidateRequired checks non-target required columns for presence.
func ValidateRequired(rows []sheet.Row, schema domain.SheetSchema) []domain.SheetError {
	var errs []domain.SheetError
	for _, column := range schema.Columns {
		if !column.Required || column.IsTarget {
			continue
		}
		for _, row := range rows {
			if row.Get(column.Name) == "" {
				errs = append(errs, domain.SheetError{
					Row:     row.Number,
					Message: fmt.Sprintf("Value in column %q is required", column.Name),
				})
			}
		}
	}
	return errs
}

// ValidateUnique detects duplicate values within the sheet for every column
// flagged unique. Rows whose identifier column is already filled were
// processed on a previous pass and are exempt from the duplicate check on
// re-validation.
func ValidateUnique(rows []sheet.Row, schema domain.SheetSchema, identifierColumn string) []domain.SheetError {
	var errs []domain.SheetError
	for _, column := range schema.Columns {
		if !column.Unique {
			continue
		}

		seen := make(map[string]int)
		for _, row := range rows {
			if identifierColumn != "" && row.Get(identifierColumn) != "" {
				continue
			}
			value := row.Get(column.Name)
			if value == "" {
				continue
			}
			if firstRow, dup := seen[value]; dup {
				errs = append(errs, domain.SheetError{
					Row:     row.Number,
					Message: fmt.Sprintf("Value %q in column %q is already used at row %d", value, column.Name, firstRow),
				})
				continue
			}
			seen[value] = row.Number
		}
	}
	return errs
}

// ValidateBoundaryCodes checks every comma-separated boundary code cited in
// the given column against the campaign's enriched boundary set, producing
// one error per unmatched code.
func ValidateBoundaryCodes(rows []sheet.Row, column string, validCodes map[string]struct{}) []domain.SheetError {
	var errs []domain.SheetError
	for _, row := range rows {
		raw := row.Get(column)
		if raw == "" {
			continue
		}
		for _, code := range SplitBoundaryCodes(raw) {
			if _, ok := validCodes[code]; !ok {
				errs = append(errs, domain.SheetError{
					Row:     row.Number,
					Message: fmt.Sprintf("Boundary code %q is not part of the selected campaign boundaries", code),
				})
			}
		}
	}
	return errs
}

// ValidateActivePresence rejects a sheet that has a usage column but not a
// single row marked active. The error is anchored at the first data row.
func ValidateActivePresence(rows []sheet.Row, usageColumn string) []domain.SheetError {
	for _, row := range rows {
		if strings.EqualFold(row.Get(usageColumn), domain.UsageActive) {
			return nil
		}
	}
	return []domain.SheetError{{
		Row:     domain.SheetRowOffset,
		Message: fmt.Sprintf("At least one row must be marked %s in column %q", domain.UsageActive, usageColumn),
	}}
}

// SplitBoundaryCodes splits a comma-separated boundary code cell, trimming
// whitespace and dropping empty segments.
func SplitBoundaryCodes(raw string) []string {
	var codes []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			codes = append(codes, part)
		}
	}
	return codes
}

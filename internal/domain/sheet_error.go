package domain

import "strings"

// Sheet annotation columns written back onto invalid rows.
const (
	StatusColumn       = "#status#"
	ErrorDetailsColumn = "#errorDetails#"
	StatusInvalid      = "INVALID"
)

// SheetRowOffset converts a zero-based data index into the row number shown
// to operators: uploaded sheets carry a fixed 2-row header/metadata block, so
// data index i is reported as row i+3.
const SheetRowOffset = 3

// SheetError is one row-level validation problem. Errors are accumulated and
// surfaced as a batch so the console can highlight every bad row at once.
type SheetError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// SheetRowNumber maps a zero-based data index to its operator-facing row.
func SheetRowNumber(index int) int {
	return index + SheetRowOffset
}

// JoinMessages concatenates error messages for the #errorDetails# column,
// separating with ". " and avoiding doubled periods.
func JoinMessages(messages []string) string {
	trimmed := make([]string, 0, len(messages))
	for _, message := range messages {
		message = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(message), "."))
		if message != "" {
			trimmed = append(trimmed, message)
		}
	}
	return strings.Join(trimmed, ". ")
}

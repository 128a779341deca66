package sheet

import "github.com/hcm-console/project-factory/internal/domain"

// Annotate writes #status#/#errorDetails# cells onto rows that collected
// validation errors. Rows without errors are left untouched so previously
// written annotations survive partial re-validation.
func Annotate(rows []Row, errs []domain.SheetError) {
	if len(errs) == 0 {
		return
	}

	byRow := make(map[int][]string)
	for _, sheetErr := range errs {
		byRow[sheetErr.Row] = append(byRow[sheetErr.Row], sheetErr.Message)
	}

	for i := range rows {
		messages, ok := byRow[rows[i].Number]
		if !ok {
			continue
		}
		if rows[i].Cells == nil {
			rows[i].Cells = make(map[string]string)
		}
		rows[i].Cells[domain.StatusColumn] = domain.StatusInvalid
		rows[i].Cells[domain.ErrorDetailsColumn] = domain.JoinMessages(messages)
	}
}

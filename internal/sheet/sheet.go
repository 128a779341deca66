package sheet

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hcm-console/project-factory/internal/domain"
)

var (
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}
)

// headerBlockRows is the fixed header/metadata block at the top of every
// uploaded template: row 1 carries localized headers, row 2 carries template
// metadata. Data starts at row 3.
const headerBlockRows = 2

// Localizer maps localized column headers back to canonical column keys.
type Localizer map[string]string

// Canonical resolves a localized header; unknown headers pass through as-is.
func (l Localizer) Canonical(header string) string {
	header = strings.TrimSpace(header)
	if l == nil {
		return header
	}
	if canonical, ok := l[header]; ok {
		return canonical
	}
	return header
}

// Row is one parsed data row keyed by canonical column name. Number is the
// operator-facing row number (data index i reports as i+3).
type Row struct {
	Number int
	Cells  map[string]string
}

// Get returns a trimmed cell value, empty when the column is absent.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Cells[column])
}

// Parse reads an uploaded xlsx or csv payload into data rows. The first sheet
// of a workbook is used; rows that are entirely empty are skipped but still
// consume a row number so operator-facing numbering matches the file.
func Parse(fileName string, payload []byte, loc Localizer) ([]Row, error) {
	if len(payload) == 0 {
		return nil, errors.New("file is empty")
	}

	ext := strings.ToLower(filepath.Ext(fileName))
	var records [][]string
	var err error
	switch ext {
	case ".csv":
		records, err = readCSV(payload)
	case ".xlsx":
		records, err = readExcel(payload)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return buildRows(records, loc)
}

func readCSV(payload []byte) ([][]string, error) {
	reader := bufio.NewReader(bytes.NewReader(payload))
	if prefix, err := reader.Peek(len(byteOrderMark)); err == nil && bytes.Equal(prefix, byteOrderMark) {
		_, _ = reader.Discard(len(byteOrderMark))
	}

	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return records, nil
}

func readExcel(payload []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	return rows, nil
}

func buildRows(records [][]string, loc Localizer) ([]Row, error) {
	if len(records) == 0 {
		return nil, errors.New("no rows found in file")
	}

	headers := make([]string, len(records[0]))
	for idx, header := range records[0] {
		headers[idx] = loc.Canonical(header)
	}
	if len(cleanRow(headers)) == 0 {
		return nil, errors.New("header row is empty")
	}

	var rows []Row
	for idx := headerBlockRows; idx < len(records); idx++ {
		record := records[idx]
		if len(cleanRow(record)) == 0 {
			continue
		}

		cells := make(map[string]string, len(headers))
		for col, header := range headers {
			if header == "" {
				continue
			}
			if col < len(record) {
				cells[header] = strings.TrimSpace(record[col])
			} else {
				cells[header] = ""
			}
		}

		rows = append(rows, Row{
			Number: domain.SheetRowNumber(idx - headerBlockRows),
			Cells:  cells,
		})
	}

	return rows, nil
}

func cleanRow(row []string) []string {
	var cleaned []string
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			cleaned = append(cleaned, cell)
		}
	}
	return cleaned
}

package extraction

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// IsSpreadsheet reports whether an uploaded export is an Excel workbook.
func IsSpreadsheet(filename, contentType string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".xlsx") || contentType == xlsxContentType
}

// SpreadsheetToCSV flattens the first worksheet of an .xlsx workbook into CSV text
// so it can go through the same extraction path as a CSV export.
func SpreadsheetToCSV(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("unable to read sheet %s: %w", sheets[0], err)
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return b.String(), nil
}

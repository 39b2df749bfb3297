package extraction

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	"golang.org/x/text/encoding/charmap"
)

// TextDecoder turns stored export bytes into UTF-8 text. Workbooks are
// flattened to CSV. Bytes that are not valid UTF-8 are read as Windows-1252,
// the code page desktop bookkeeping software writes its exports in.
type TextDecoder struct{}

var _ gateways.ExportDecoder = (*TextDecoder)(nil)

// NewTextDecoder creates a TextDecoder.
func NewTextDecoder() *TextDecoder {
	return &TextDecoder{}
}

func (d *TextDecoder) Decode(filename string, contentType string, data []byte) (string, error) {
	if IsSpreadsheet(filename, contentType) {
		return SpreadsheetToCSV(bytes.NewReader(data))
	}

	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if utf8.Valid(data) {
		return string(data), nil
	}

	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("export is neither UTF-8 nor Windows-1252 text: %w", err)
	}
	return string(decoded), nil
}

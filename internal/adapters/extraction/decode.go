package extraction

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
)

// ErrNotRowList is returned when extractor output cannot be read as a list of rows.
var ErrNotRowList = errors.New("extraction output is not a JSON array of rows")

// DecodeRows reads a JSON array of row objects out of free-form model output.
// Markdown fences and surrounding prose are tolerated. An object wrapping the
// array under "entities" or "rows" is accepted. Array elements that are not
// objects are kept as {"value": ...} rows so nothing is dropped.
func DecodeRows(text string) ([]domain.RawRow, error) {
	payload := strings.TrimSpace(text)
	payload = strings.TrimPrefix(payload, "```json")
	payload = strings.TrimPrefix(payload, "```")
	payload = strings.TrimSuffix(payload, "```")
	payload = strings.TrimSpace(payload)

	if strings.HasPrefix(payload, "{") {
		var wrapper map[string]json.RawMessage
		if err := decodeNumbers([]byte(payload), &wrapper); err == nil {
			for _, key := range []string{"entities", "rows"} {
				if inner, ok := wrapper[key]; ok {
					payload = string(inner)
					break
				}
			}
		}
	}

	start := strings.Index(payload, "[")
	end := strings.LastIndex(payload, "]")
	if start < 0 || end < start {
		return nil, ErrNotRowList
	}

	var elems []json.RawMessage
	if err := decodeNumbers([]byte(payload[start:end+1]), &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRowList, err)
	}

	rows := make([]domain.RawRow, 0, len(elems))
	for _, elem := range elems {
		var obj map[string]any
		if err := decodeNumbers(elem, &obj); err == nil && obj != nil {
			rows = append(rows, domain.RawRow(obj))
			continue
		}
		var scalar any
		if err := decodeNumbers(elem, &scalar); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNotRowList, err)
		}
		rows = append(rows, domain.RawRow{"value": scalar})
	}
	return rows, nil
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

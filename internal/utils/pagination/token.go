package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

// EncodeMultiFieldToken creates an opaque token from any number of string fields.
func EncodeMultiFieldToken(fields ...string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(strings.Join(fields, "|")))
}

// DecodeMultiFieldToken decodes a token into its component fields.
func DecodeMultiFieldToken(token string) ([]string, error) {
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	return strings.Split(string(decodedBytes), "|"), nil
}

// EncodeRowIndexToken creates the cursor for the page after rowIndex of a migration.
func EncodeRowIndexToken(migrationID string, rowIndex int) string {
	return EncodeMultiFieldToken(migrationID, strconv.Itoa(rowIndex))
}

// DecodeRowIndexToken returns the last row index seen. The token must have been
// issued for the same migration.
func DecodeRowIndexToken(token string, migrationID string) (int, error) {
	parts, err := DecodeMultiFieldToken(token)
	if err != nil {
		return 0, err
	}
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid pagination token format (split)")
	}
	if parts[0] != migrationID {
		return 0, fmt.Errorf("pagination token was issued for a different migration")
	}
	rowIndex, err := strconv.Atoi(parts[1])
	if err != nil || rowIndex < 0 {
		return 0, fmt.Errorf("invalid pagination token format (row index)")
	}
	return rowIndex, nil
}

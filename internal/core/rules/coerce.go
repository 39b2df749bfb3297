package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// canonical field names looked up in a RawRow
const (
	fieldEntityType    = "entityType"
	fieldLegacyID      = "legacyId"
	fieldName          = "name"
	fieldMappedAccount = "mappedAccount"
	fieldAmount        = "amount"
	fieldDate          = "date"
	fieldMemo          = "memo"
	fieldNotes         = "notes"
)

// fieldAliases are compared after normalizeKey.
var fieldAliases = map[string][]string{
	fieldEntityType:    {"entitytype", "type", "recordtype", "entity"},
	fieldLegacyID:      {"legacyid", "id", "refnum", "docnum", "externalid", "number", "num"},
	fieldName:          {"name", "displayname", "fullname", "customer", "vendor"},
	fieldMappedAccount: {"mappedaccount", "account", "accountname", "accnt"},
	fieldAmount:        {"amount", "amt", "total", "balance"},
	fieldDate:          {"date", "txndate", "transactiondate", "invoicedate"},
	fieldMemo:          {"memo", "description", "desc"},
	fieldNotes:         {"notes", "note"},
}

func normalizeKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// rowView indexes a RawRow by normalized key.
type rowView map[string]any

func newRowView(row domain.RawRow) rowView {
	v := make(rowView, len(row))
	for k, val := range row {
		nk := normalizeKey(k)
		// first non-blank value wins when keys collide after normalization
		if existing, ok := v[nk]; ok && !isBlank(existing) {
			continue
		}
		v[nk] = val
	}
	return v
}

// lookup returns the first non-blank value among the field's aliases.
func (v rowView) lookup(field string) (any, bool) {
	for _, alias := range fieldAliases[field] {
		if val, ok := v[alias]; ok && !isBlank(val) {
			return val, true
		}
	}
	return nil, false
}

func (v rowView) lookupString(field string) *string {
	val, ok := v.lookup(field)
	if !ok {
		return nil
	}
	s := displayValue(val)
	return &s
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	}
	return false
}

// displayValue renders a raw value the way it appears in review reasons.
func displayValue(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case json.Number:
		return x.String()
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

var (
	errEmptyAmount  = errors.New("empty amount")
	errNonFinite    = errors.New("amount is not finite")
	errAmbiguousSep = errors.New("ambiguous decimal separator")
	isoCodePrefix   = regexp.MustCompile(`^([A-Za-z]{3})\s*`)
	isoCodeSuffix   = regexp.MustCompile(`\s*([A-Za-z]{3})$`)
	commaGrouped    = regexp.MustCompile(`^[+-]?\d{1,3}(,\d{3})+(\.\d+)?$`)
	amountSeparator = strings.NewReplacer("'", "", "_", "", " ", "", "\u00a0", "")
)

// ParseAmount coerces a raw monetary value into a decimal. Currency symbols,
// ISO 4217 codes and thousands separators are stripped. Accounting-style
// parentheses mean a negative value. Commas are only accepted as thousands
// separators ahead of a dot decimal point; "1.234,56" is rejected rather
// than guessed at.
func ParseAmount(v any) (decimal.Decimal, error) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return decimal.Zero, errNonFinite
		}
		return decimal.NewFromFloat(x), nil
	case float32:
		return ParseAmount(float64(x))
	case int:
		return decimal.NewFromInt(int64(x)), nil
	case int64:
		return decimal.NewFromInt(x), nil
	case int32:
		return decimal.NewFromInt(int64(x)), nil
	case decimal.Decimal:
		return x, nil
	case json.Number:
		return parseAmountString(x.String())
	case string:
		return parseAmountString(x)
	}
	return decimal.Zero, fmt.Errorf("unsupported amount value of type %T", v)
}

func parseAmountString(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	s = strings.Map(func(r rune) rune {
		if unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, s)
	s = stripISOCode(strings.TrimSpace(s))
	s = amountSeparator.Replace(s)
	if s == "" {
		return decimal.Zero, errEmptyAmount
	}
	if strings.Contains(s, ",") {
		if !commaGrouped.MatchString(s) {
			return decimal.Zero, fmt.Errorf("%w in %q", errAmbiguousSep, raw)
		}
		s = strings.ReplaceAll(s, ",", "")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// stripISOCode removes a leading or trailing currency code. Three letters that
// are not a known ISO 4217 code are left in place so the amount fails to parse.
func stripISOCode(s string) string {
	for _, affix := range []*regexp.Regexp{isoCodePrefix, isoCodeSuffix} {
		m := affix.FindStringSubmatchIndex(s)
		if m == nil {
			continue
		}
		if _, err := currency.ParseISO(strings.ToUpper(s[m[2]:m[3]])); err == nil {
			s = strings.TrimSpace(s[:m[0]] + s[m[1]:])
		}
	}
	return s
}

// dateLayouts are tried in order. Slash dates are month-first.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"1/2/2006",
	"1/2/06",
	"1-2-2006",
	"2006/1/2",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
}

// NormalizeDate parses a raw date into YYYY-MM-DD.
func NormalizeDate(v any) (string, error) {
	s := displayValue(v)
	if s == "" {
		return "", errors.New("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

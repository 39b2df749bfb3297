package extraction

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/ledger_migrator/internal/core/domain"
	"github.com/SscSPs/ledger_migrator/internal/core/ports/gateways"
	"github.com/SscSPs/ledger_migrator/internal/core/rules"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// ErrEmptyExport is returned for exports with no content at all.
	ErrEmptyExport = errors.New("export file is empty")
	// ErrUnreadableExport is returned when the export is neither IIF nor CSV.
	ErrUnreadableExport = errors.New("export file could not be read as IIF or CSV")
)

// sourceKey holds every original column of a row, keyed by its source header.
const sourceKey = "source"

// TypeMatcher recognizes entity type names. *rules.EntityValidator implements it.
type TypeMatcher interface {
	MatchType(raw string) (domain.EntityType, bool)
}

// RuleExtractor reads QuickBooks IIF and CSV exports without calling out to a model.
type RuleExtractor struct {
	types TypeMatcher
}

var _ gateways.Extractor = (*RuleExtractor)(nil)

// NewRuleExtractor creates a RuleExtractor. A CSV "Type" column is only used as
// the entity type when types recognizes it. A nil matcher uses the default whitelist.
func NewRuleExtractor(types TypeMatcher) *RuleExtractor {
	if types == nil {
		types = rules.NewEntityValidator(rules.DefaultValidatorConfig())
	}
	return &RuleExtractor{types: types}
}

// Name identifies the extractor in logs and metrics.
func (e *RuleExtractor) Name() string { return "rules" }

// Extract splits the export into rows in source order.
func (e *RuleExtractor) Extract(ctx context.Context, rawText string) ([]domain.RawRow, error) {
	_, span := tracer.Start(ctx, "RuleExtractor.Extract")
	defer span.End()

	text := strings.TrimPrefix(rawText, "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyExport
	}

	var (
		rows []domain.RawRow
		err  error
	)
	if looksLikeIIF(text) {
		span.SetAttributes(attribute.String("export.format", "iif"))
		rows = parseIIF(text)
	} else {
		span.SetAttributes(attribute.String("export.format", "csv"))
		rows, err = parseCSV(text, e.types)
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("export.rows", len(rows)))
	return rows, nil
}

func looksLikeIIF(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		return strings.HasPrefix(line, "!")
	}
	return false
}

// --- IIF ---

var iifSectionTypes = map[string]domain.EntityType{
	"ACCNT":   domain.EntityTypeAccount,
	"CUST":    domain.EntityTypeCustomer,
	"VEND":    domain.EntityTypeVendor,
	"INVITEM": domain.EntityTypeItem,
	"EMP":     domain.EntityTypeEmployee,
	"CLASS":   domain.EntityTypeClass,
	"TRNS":    domain.EntityTypeTransaction,
	"SPL":     domain.EntityTypeTransaction,
}

// iifNonRecords are section markers that carry no entity.
var iifNonRecords = map[string]bool{
	"HDR":     true,
	"ENDTRNS": true,
}

// iifPositional names the columns of sections whose header line lists no fields.
var iifPositional = map[string][]string{
	"ACCNT":   {"NAME", "ACCNTTYPE", "DESC", "OBAMOUNT"},
	"CUST":    {"NAME", "COMPANYNAME", "FIRSTNAME", "LASTNAME", "PHONE1", "EMAIL", "BALANCE"},
	"VEND":    {"NAME", "COMPANYNAME", "FIRSTNAME", "LASTNAME", "PHONE1", "EMAIL", "BALANCE"},
	"INVITEM": {"NAME", "INVITEMTYPE", "DESC", "PRICE", "COST", "ACCNT"},
	"TRNS":    {"DATE", "TRNSTYPE", "DOCNUM", "CUSTOMER", "VENDOR", "ACCNT", "MEMO", "AMOUNT"},
}

var iifCanonical = []struct {
	field   string
	columns []string
}{
	{"name", []string{"NAME", "CUSTOMER", "VENDOR"}},
	{"legacyId", []string{"DOCNUM", "REFNUM", "TRNSID", "SPLID"}},
	{"mappedAccount", []string{"ACCNT"}},
	{"amount", []string{"AMOUNT", "OBAMOUNT", "BALANCE", "PRICE"}},
	{"date", []string{"DATE"}},
	{"memo", []string{"MEMO", "DESC"}},
}

func parseIIF(text string) []domain.RawRow {
	headers := make(map[string][]string)
	current := ""
	rows := make([]domain.RawRow, 0)

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		first := strings.ToUpper(strings.TrimSpace(fields[0]))

		if strings.HasPrefix(first, "!") {
			current = strings.TrimPrefix(first, "!")
			cols := make([]string, 0, len(fields)-1)
			for _, f := range fields[1:] {
				if f = strings.ToUpper(strings.TrimSpace(f)); f != "" {
					cols = append(cols, f)
				}
			}
			headers[current] = cols
			continue
		}

		section, values := current, fields
		if _, known := headers[first]; known || iifNonRecords[first] || iifSectionTypes[first] != "" {
			section, values = first, fields[1:]
		}
		if iifNonRecords[section] || section == "" && allBlank(values) {
			continue
		}

		rows = append(rows, iifRow(section, columnsFor(headers, section, len(values)), values))
	}
	return rows
}

func columnsFor(headers map[string][]string, section string, n int) []string {
	cols := headers[section]
	if len(cols) == 0 {
		cols = iifPositional[section]
	}
	out := make([]string, n)
	for i := range out {
		if i < len(cols) {
			out[i] = cols[i]
		} else {
			out[i] = fmt.Sprintf("COL%d", i+1)
		}
	}
	return out
}

func iifRow(section string, columns, values []string) domain.RawRow {
	source := make(map[string]any, len(values)+1)
	byColumn := make(map[string]string, len(values))
	for i, col := range columns {
		v := strings.TrimSpace(values[i])
		source[col] = v
		byColumn[col] = v
	}
	source["SECTION"] = section

	row := domain.RawRow{sourceKey: source}
	for _, c := range iifCanonical {
		for _, col := range c.columns {
			if v := byColumn[col]; v != "" {
				row[c.field] = v
				break
			}
		}
	}

	entityType, ok := iifSectionTypes[section]
	switch {
	case !ok:
		row["entityType"] = section
	case section == "TRNS" && strings.EqualFold(byColumn["TRNSTYPE"], "INVOICE"):
		row["entityType"] = string(domain.EntityTypeInvoice)
	default:
		row["entityType"] = string(entityType)
	}
	return row
}

// --- CSV ---

func parseCSV(text string, types TypeMatcher) ([]domain.RawRow, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableExport, err)
	}

	start := 0
	for start < len(records) && allBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrEmptyExport
	}

	header := make([]string, len(records[start]))
	index := make(map[string]int, len(header))
	for i, h := range records[start] {
		header[i] = strings.TrimSpace(h)
		key := columnKey(h)
		if _, dup := index[key]; !dup && key != "" {
			index[key] = i
		}
	}
	layout := inferLayout(index)

	rows := make([]domain.RawRow, 0, len(records)-start-1)
	for _, rec := range records[start+1:] {
		if allBlank(rec) {
			continue
		}
		rows = append(rows, csvRow(header, index, layout, rec, types))
	}
	return rows, nil
}

func sniffDelimiter(text string) rune {
	firstLine, _, _ := strings.Cut(text, "\n")
	if strings.Count(firstLine, "\t") > strings.Count(firstLine, ",") {
		return '\t'
	}
	return ','
}

// columnKey lowercases a header and drops everything but letters and digits.
func columnKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

type csvLayout struct {
	entityType    domain.EntityType
	transactional bool
	nameColumns   []string
}

func inferLayout(index map[string]int) csvLayout {
	has := func(k string) bool { _, ok := index[k]; return ok }

	switch {
	case has("date") && (has("amount") || has("total")):
		return csvLayout{entityType: domain.EntityTypeTransaction, transactional: true, nameColumns: []string{"name", "customer", "vendor", "payee"}}
	case has("item") || has("itemtype"):
		return csvLayout{entityType: domain.EntityTypeItem, nameColumns: []string{"item", "name"}}
	case has("customer"):
		return csvLayout{entityType: domain.EntityTypeCustomer, nameColumns: []string{"customer", "name"}}
	case has("vendor"):
		return csvLayout{entityType: domain.EntityTypeVendor, nameColumns: []string{"vendor", "name"}}
	case has("employee"):
		return csvLayout{entityType: domain.EntityTypeEmployee, nameColumns: []string{"employee", "name"}}
	case has("class"):
		return csvLayout{entityType: domain.EntityTypeClass, nameColumns: []string{"class", "name"}}
	case has("location"):
		return csvLayout{entityType: domain.EntityTypeLocation, nameColumns: []string{"location", "name"}}
	case has("account") || has("accounttype"):
		return csvLayout{entityType: domain.EntityTypeAccount, nameColumns: []string{"account", "name"}}
	}
	return csvLayout{nameColumns: []string{"name"}}
}

func csvRow(header []string, index map[string]int, layout csvLayout, rec []string, types TypeMatcher) domain.RawRow {
	source := make(map[string]any, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("column%d", i+1)
		}
		if i < len(rec) {
			source[h] = strings.TrimSpace(rec[i])
		} else {
			source[h] = ""
		}
	}

	get := func(keys ...string) string {
		for _, k := range keys {
			if i, ok := index[k]; ok && i < len(rec) {
				if v := strings.TrimSpace(rec[i]); v != "" {
					return v
				}
			}
		}
		return ""
	}

	row := domain.RawRow{sourceKey: source}
	set := func(field, v string) {
		if v != "" {
			row[field] = v
		}
	}

	set("entityType", csvEntityType(types, layout, get("entitytype", "recordtype"), get("type")))
	set("name", get(layout.nameColumns...))
	set("legacyId", get("legacyid", "id", "num", "refnum", "docnum", "number"))
	if layout.transactional || layout.entityType == domain.EntityTypeItem {
		set("mappedAccount", get("account", "split"))
	} else {
		set("mappedAccount", get("parentaccount", "mappedaccount"))
	}
	set("amount", get("amount", "total", "balance", "openbalance", "price", "rate"))
	set("date", get("date", "txndate", "transactiondate"))
	set("memo", get("memo", "description", "memodescription"))
	set("notes", get("notes", "note"))
	return row
}

func csvEntityType(types TypeMatcher, layout csvLayout, explicit, typeColumn string) string {
	if explicit != "" {
		return explicit
	}
	if typeColumn != "" {
		if t, ok := types.MatchType(typeColumn); ok {
			return string(t)
		}
	}
	if layout.entityType != "" {
		return string(layout.entityType)
	}
	return typeColumn
}

func allBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

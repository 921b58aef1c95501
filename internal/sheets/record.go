package sheets

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Record is one decoded sheet row keyed by header name.
type Record map[string]any

// Kind is the value type of a column.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Column is a named, typed sheet column.
type Column struct {
	Name string
	Kind Kind
}

// Schema is the ordered column list of a sheet.
type Schema struct {
	columns []Column
	kinds   map[string]Kind
}

// NewSchema builds a schema from columns in header order.
func NewSchema(columns ...Column) *Schema {
	s := &Schema{
		columns: append([]Column(nil), columns...),
		kinds:   make(map[string]Kind, len(columns)),
	}
	for _, c := range columns {
		s.kinds[c.Name] = c.Kind
	}
	return s
}

// Headers returns the column names in order.
func (s *Schema) Headers() []string {
	if s == nil {
		return nil
	}
	headers := make([]string, len(s.columns))
	for i, c := range s.columns {
		headers[i] = c.Name
	}
	return headers
}

// Columns returns a copy of the columns.
func (s *Schema) Columns() []Column {
	if s == nil {
		return nil
	}
	return append([]Column(nil), s.columns...)
}

// Kind returns the kind of the named column.
func (s *Schema) Kind(name string) (Kind, bool) {
	if s == nil {
		return KindString, false
	}
	k, ok := s.kinds[name]
	return k, ok
}

// Decode zips a row against the header row. Columns known to schema are
// decoded by kind; other columns keep the raw cell so a rewrite leaves them
// unchanged. Missing trailing cells decode as empty. A nil schema decodes
// every column with InferValue.
func Decode(headers, row []string, schema *Schema) Record {
	rec := make(Record, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if schema == nil {
			rec[h] = InferValue(h, cell)
		} else if kind, ok := schema.Kind(h); ok {
			rec[h] = decodeCell(kind, cell)
		} else {
			rec[h] = cell
		}
	}
	return rec
}

// decodeCell converts a cell by kind. Empty number and bool cells decode to
// nil. Cells that fail to parse are kept as the raw string so the typed
// unmarshal can report the column.
func decodeCell(kind Kind, cell string) any {
	switch kind {
	case KindNumber:
		v := strings.TrimSpace(cell)
		if v == "" {
			return nil
		}
		if f, ok := parseNumber(v); ok {
			return f
		}
		return cell
	case KindBool:
		v := strings.TrimSpace(cell)
		if v == "" {
			return nil
		}
		if b, ok := parseBool(v); ok {
			return b
		}
		return cell
	case KindList:
		return splitList(cell)
	default:
		return cell
	}
}

// InferValue applies the legacy type guessing used for columns without a
// schema: "true"/"false" become bools, numeric strings become float64, and a
// comma-containing value under a header ending in "s" becomes a list.
// Anything else stays a string. "007" infers as 7 and "12 Main, Springfield"
// under "address" infers as a list; typed schemas exist to avoid both.
func InferValue(header, cell string) any {
	switch cell {
	case "true":
		return true
	case "false":
		return false
	}
	if strings.TrimSpace(cell) != "" {
		if f, ok := parseNumber(strings.TrimSpace(cell)); ok {
			return f
		}
	}
	if strings.Contains(cell, ",") && strings.HasSuffix(header, "s") {
		return splitList(cell)
	}
	return cell
}

// Encode maps a record to a row following headers. Fields missing from
// headers are dropped; headers missing from the record become empty cells.
func Encode(headers []string, rec Record) []string {
	row := make([]string, len(headers))
	for i, h := range headers {
		v, ok := rec[h]
		if !ok || v == nil {
			continue
		}
		row[i] = FormatValue(v)
	}
	return row
}

// FormatValue renders a value as a cell string. Lists are joined with ", ".
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case []string:
		return strings.Join(t, ", ")
	case []any:
		parts := make([]string, len(t))
		for i, p := range t {
			parts[i] = FormatValue(p)
		}
		return strings.Join(parts, ", ")
	case fmt.Stringer:
		return t.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	return fmt.Sprint(v)
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func splitList(cell string) []string {
	items := []string{}
	for _, part := range strings.Split(cell, ",") {
		if p := strings.TrimSpace(part); p != "" {
			items = append(items, p)
		}
	}
	return items
}

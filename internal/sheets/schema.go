package sheets

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"sync"
)

// FieldError reports a cell that could not be stored in its struct field.
type FieldError struct {
	Column string
	Value  any
	Kind   Kind
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("column %q: cannot use %#v as %s", e.Column, e.Value, e.Kind)
}

type field struct {
	index []int
	name  string
	kind  Kind
}

type structCodec struct {
	fields []field
	schema *Schema
}

var codecs sync.Map // reflect.Type -> *structCodec

// codecFor builds the column mapping of a struct type from its `sheet` tags.
// Untagged and "-" tagged fields are ignored.
func codecFor(t reflect.Type) (*structCodec, error) {
	if c, ok := codecs.Load(t); ok {
		return c.(*structCodec), nil
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("sheets: %s is not a struct", t)
	}

	c := &structCodec{}
	var columns []Column
	seen := make(map[string]bool)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := strings.Split(sf.Tag.Get("sheet"), ",")[0]
		if name == "" || name == "-" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("sheets: %s: duplicate column %q", t, name)
		}
		seen[name] = true

		kind, err := kindOf(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("sheets: %s.%s: %w", t, sf.Name, err)
		}
		c.fields = append(c.fields, field{index: sf.Index, name: name, kind: kind})
		columns = append(columns, Column{Name: name, Kind: kind})
	}
	c.schema = NewSchema(columns...)

	actual, _ := codecs.LoadOrStore(t, c)
	return actual.(*structCodec), nil
}

func kindOf(t reflect.Type) (Kind, error) {
	switch t.Kind() {
	case reflect.String:
		return KindString, nil
	case reflect.Bool:
		return KindBool, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return KindNumber, nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.String {
			return KindList, nil
		}
	}
	return KindString, fmt.Errorf("unsupported field type %s", t)
}

// SchemaOf derives the sheet schema of struct type T.
func SchemaOf[T any]() (*Schema, error) {
	c, err := codecFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return c.schema, nil
}

// MustSchemaOf is SchemaOf for package-level model declarations.
func MustSchemaOf[T any]() *Schema {
	s, err := SchemaOf[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// Marshal converts a struct (or pointer to struct) into a Record.
func Marshal(v any) (Record, error) {
	rv := reflect.Indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, fmt.Errorf("sheets: cannot marshal nil")
	}
	c, err := codecFor(rv.Type())
	if err != nil {
		return nil, err
	}

	rec := make(Record, len(c.fields))
	for _, f := range c.fields {
		fv := rv.FieldByIndex(f.index)
		switch f.kind {
		case KindString:
			rec[f.name] = fv.String()
		case KindBool:
			rec[f.name] = fv.Bool()
		case KindList:
			list := make([]string, fv.Len())
			for i := range list {
				list[i] = fv.Index(i).String()
			}
			rec[f.name] = list
		case KindNumber:
			switch fv.Kind() {
			case reflect.Float32, reflect.Float64:
				rec[f.name] = fv.Float()
			case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
				rec[f.name] = int64(fv.Uint())
			default:
				rec[f.name] = fv.Int()
			}
		}
	}
	return rec, nil
}

// Unmarshal stores a Record into the struct pointed to by v. Columns absent
// from the record leave their field untouched.
func Unmarshal(rec Record, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("sheets: Unmarshal needs a non-nil pointer, got %T", v)
	}
	rv = rv.Elem()
	c, err := codecFor(rv.Type())
	if err != nil {
		return err
	}

	for _, f := range c.fields {
		val, ok := rec[f.name]
		if !ok || val == nil {
			continue
		}
		if err := setField(rv.FieldByIndex(f.index), f, val); err != nil {
			return err
		}
	}
	return nil
}

func setField(fv reflect.Value, f field, val any) error {
	bad := &FieldError{Column: f.name, Value: val, Kind: f.kind}

	switch f.kind {
	case KindString:
		fv.SetString(FormatValue(val))

	case KindBool:
		switch t := val.(type) {
		case bool:
			fv.SetBool(t)
		case string:
			b, ok := parseBool(strings.TrimSpace(t))
			if !ok {
				return bad
			}
			fv.SetBool(b)
		default:
			return bad
		}

	case KindList:
		var list []string
		switch t := val.(type) {
		case []string:
			list = append([]string{}, t...)
		case []any:
			list = make([]string, len(t))
			for i, p := range t {
				list[i] = FormatValue(p)
			}
		default:
			list = splitList(FormatValue(t))
		}
		out := reflect.MakeSlice(fv.Type(), len(list), len(list))
		for i, s := range list {
			out.Index(i).SetString(s)
		}
		fv.Set(out)

	case KindNumber:
		var n float64
		switch t := val.(type) {
		case float64:
			n = t
		case int64:
			n = float64(t)
		case int:
			n = float64(t)
		case string:
			parsed, ok := parseNumber(strings.TrimSpace(t))
			if !ok {
				return bad
			}
			n = parsed
		default:
			return bad
		}
		switch fv.Kind() {
		case reflect.Float32, reflect.Float64:
			fv.SetFloat(n)
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			if n < 0 || n != math.Trunc(n) || fv.OverflowUint(uint64(n)) {
				return bad
			}
			fv.SetUint(uint64(n))
		default:
			if n != math.Trunc(n) || fv.OverflowInt(int64(n)) {
				return bad
			}
			fv.SetInt(int64(n))
		}
	}
	return nil
}

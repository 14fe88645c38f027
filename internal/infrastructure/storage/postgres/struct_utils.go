package postgres

import (
	"reflect"
	"sync"
)

// columnField describes one struct field that maps to a table column, or an
// embedded struct whose columns are spliced in at its position.
type columnField struct {
	index    int
	column   string
	embedded reflect.Type
}

// recordLayout is the cached column layout of a record type.
type recordLayout struct {
	fields []columnField
}

// layouts caches recordLayout per reflect.Type. Record types are few and
// fixed, so entries are never evicted.
var layouts sync.Map

// layoutOf returns the column layout of t, computing it on first use.
// Pointer types are dereferenced; non-struct types have an empty layout.
func layoutOf(t reflect.Type) *recordLayout {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if cached, ok := layouts.Load(t); ok {
		return cached.(*recordLayout)
	}

	layout := &recordLayout{}
	if t.Kind() == reflect.Struct {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)

			// Embedded structs contribute their own columns in place
			if field.Anonymous {
				layout.fields = append(layout.fields, columnField{index: i, embedded: field.Type})
				continue
			}

			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" {
				continue
			}
			layout.fields = append(layout.fields, columnField{index: i, column: tag})
		}
	}

	actual, _ := layouts.LoadOrStore(t, layout)
	return actual.(*recordLayout)
}

// columns lists column names in declaration order.
func (l *recordLayout) columns() []string {
	var cols []string
	for _, f := range l.fields {
		if f.embedded != nil {
			cols = append(cols, layoutOf(f.embedded).columns()...)
			continue
		}
		cols = append(cols, f.column)
	}
	return cols
}

// ExtractDBColumns returns the "db" tag names of T in declaration order,
// with embedded structs expanded in place. Fields tagged "-" or untagged
// are skipped.
//
// Usage:
//
//	columns := ExtractDBColumns[FormatRecord]()
//	// Returns: ["name", "encoding", "payload", "compression", ...]
func ExtractDBColumns[T any]() []string {
	var zero T
	return layoutOf(reflect.TypeOf(zero)).columns()
}

// StructToMap converts a record to a column -> value map for squirrel's
// SetMap. Only tagged columns are included. Returns nil for non-structs.
func StructToMap(v any) map[string]any {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	res := make(map[string]any)
	collectColumns(rv, res)
	return res
}

func collectColumns(rv reflect.Value, into map[string]any) {
	for _, f := range layoutOf(rv.Type()).fields {
		fv := rv.Field(f.index)
		if f.embedded == nil {
			into[f.column] = fv.Interface()
			continue
		}
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if fv.Kind() == reflect.Struct {
			collectColumns(fv, into)
		}
	}
}

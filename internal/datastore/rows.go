package datastore

import (
	"reflect"
	"strings"
)

// RowOptions configures RowFromStruct.
type RowOptions struct {
	// Omit lists column names to leave out
	Omit map[string]bool
	// JoinStringSlices turns []string fields into comma-separated text
	JoinStringSlices bool
}

// RowFromStruct converts a struct into a row keyed by its json tag names,
// the same names the site snapshot uses. Fields tagged "-" and unexported
// fields are skipped. Slices of anything other than strings cannot be stored
// in a single column and are dropped.
func RowFromStruct(value any, opts RowOptions) map[string]any {
	row := make(map[string]any)
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return row
		}
		v = v.Elem()
	}
	appendColumns(v, row, opts)
	return row
}

func appendColumns(v reflect.Value, row map[string]any, opts RowOptions) {
	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}

		value := v.Field(i)
		if field.Anonymous && value.Kind() == reflect.Struct {
			appendColumns(value, row, opts)
			continue
		}

		name := columnName(field)
		if name == "" || opts.Omit[name] {
			continue
		}

		if value.Kind() == reflect.Slice {
			if !opts.JoinStringSlices || value.Type().Elem().Kind() != reflect.String {
				continue
			}
			items := make([]string, value.Len())
			for j := 0; j < value.Len(); j++ {
				items[j] = value.Index(j).String()
			}
			row[name] = strings.Join(items, ",")
			continue
		}

		row[name] = value.Interface()
	}
}

func columnName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "-" {
		return ""
	}
	if name, _, _ := strings.Cut(tag, ","); name != "" {
		return name
	}
	return strings.ToLower(field.Name)
}

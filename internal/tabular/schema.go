package tabular

import "time"

// Field describes one column of a record type T: its canonical name, the
// declared kind, optional header aliases and accessors into T.
type Field[T any] struct {
	Name    string
	Kind    Kind
	Aliases []string
	Width   float64

	// Title overrides Name as the exported column header.
	Title string

	// Managed fields are assigned by the system and never read from input.
	Managed bool

	Set func(rec *T, v Value)
	Get func(rec *T) any
}

// Value is a coerced cell. Number is set for KindNumber fields, Time for
// KindDate fields and Text for KindString fields.
type Value struct {
	Number *float64
	Time   *time.Time
	Text   string
}

// Schema is an ordered, static field table.
type Schema[T any] []Field[T]

// Diagnostic records a field whose raw value could not be coerced. The field
// is still written, as nil or "".
type Diagnostic struct {
	Field  string `json:"field"`
	Raw    string `json:"raw"`
	Reason string `json:"reason"`
}

// MapRow copies every non-managed field of schema from row into dst. Missing
// numbers stay nil and missing strings become "".
func MapRow[T any](row Row, schema Schema[T], dst *T) []Diagnostic {
	return mapRow(row, schema, dst, false)
}

// MapRowPresent is MapRow restricted to fields that have a matching column in
// row; every other field of dst is left as is.
func MapRowPresent[T any](row Row, schema Schema[T], dst *T) []Diagnostic {
	return mapRow(row, schema, dst, true)
}

func mapRow[T any](row Row, schema Schema[T], dst *T, presentOnly bool) []Diagnostic {
	var diags []Diagnostic
	for _, f := range schema {
		if f.Managed || f.Set == nil {
			continue
		}
		raw, found := row.Lookup(append([]string{f.Name}, f.Aliases...)...)
		if presentOnly && !found {
			continue
		}
		switch f.Kind {
		case KindNumber:
			n, err := CoerceNumber(raw)
			if err != nil {
				diags = append(diags, Diagnostic{Field: f.Name, Raw: Stringify(raw), Reason: err.Error()})
			}
			f.Set(dst, Value{Number: n})
		case KindDate:
			ts, err := CoerceDate(raw)
			if err != nil {
				diags = append(diags, Diagnostic{Field: f.Name, Raw: Stringify(raw), Reason: err.Error()})
			}
			f.Set(dst, Value{Time: ts})
		default:
			f.Set(dst, Value{Text: CoerceString(raw)})
		}
	}
	return diags
}

// Headers returns the canonical field names in schema order.
func (s Schema[T]) Headers() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
	}
	return out
}

// Titles returns the exported column headers in schema order.
func (s Schema[T]) Titles() []string {
	out := make([]string, len(s))
	for i, f := range s {
		out[i] = f.Name
		if f.Title != "" {
			out[i] = f.Title
		}
	}
	return out
}

// Values returns rec's fields in schema order. Nil numbers and times are
// returned as a nil interface so writers can leave the cell empty.
func (s Schema[T]) Values(rec *T) []any {
	out := make([]any, len(s))
	for i, f := range s {
		if f.Get == nil {
			continue
		}
		v := f.Get(rec)
		switch p := v.(type) {
		case *float64:
			if p == nil {
				continue
			}
			v = *p
		case *time.Time:
			if p == nil {
				continue
			}
			v = *p
		}
		out[i] = v
	}
	return out
}

// Field looks up a field by canonical name.
func (s Schema[T]) Field(name string) (Field[T], bool) {
	for _, f := range s {
		if f.Name == name {
			return f, true
		}
	}
	return Field[T]{}, false
}

package tabular

import (
	"maps"
	"slices"
	"strings"
)

// Cell is a single column of a raw row. Value is nil when the sheet cell was
// absent or blank.
type Cell struct {
	Header string
	Value  any
}

// Row is one raw input row, ordered as the columns appear in the sheet.
type Row []Cell

// RowFromMap builds a Row from loosely keyed input such as a decoded JSON
// body. Keys listed in order come first; the rest follow alphabetically.
func RowFromMap(values map[string]any, order []string) Row {
	row := make(Row, 0, len(values))
	seen := make(map[string]struct{}, len(order))
	for _, k := range order {
		v, ok := values[k]
		if _, dup := seen[k]; !ok || dup {
			continue
		}
		seen[k] = struct{}{}
		row = append(row, Cell{Header: k, Value: v})
	}
	for _, k := range slices.Sorted(maps.Keys(values)) {
		if _, ok := seen[k]; ok {
			continue
		}
		row = append(row, Cell{Header: k, Value: values[k]})
	}
	return row
}

// Lookup finds the value for a field by comparing normalized headers against
// the field name and its aliases. When several columns normalize to the same
// key, the first non-empty value in column order wins. found reports whether
// any column matched at all.
func (r Row) Lookup(names ...string) (value any, found bool) {
	keys := make([]string, 0, len(names))
	for _, n := range names {
		if k := NormalizeHeader(n); k != "" {
			keys = append(keys, k)
		}
	}
	for _, cell := range r {
		h := NormalizeHeader(cell.Header)
		if h == "" || !containsKey(keys, h) {
			continue
		}
		found = true
		if !isBlank(cell.Value) {
			return cell.Value, true
		}
	}
	return nil, found
}

// Blank reports whether every cell of the row is empty.
func (r Row) Blank() bool {
	for _, cell := range r {
		if !isBlank(cell.Value) {
			return false
		}
	}
	return true
}

func containsKey(keys []string, k string) bool {
	for _, key := range keys {
		if key == k {
			return true
		}
	}
	return false
}

func isBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case *string:
		return t == nil || strings.TrimSpace(*t) == ""
	case *float64:
		return t == nil
	default:
		return false
	}
}

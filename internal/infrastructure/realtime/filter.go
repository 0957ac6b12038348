package realtime

import (
	"fmt"
	"strings"

	"merovian.backend/internal/domain/entities"
)

// Filter is an optional equality match on one row column.
type Filter struct {
	Column string
	Value  string
}

// IsZero reports whether the filter matches every row.
func (f Filter) IsZero() bool {
	return f.Column == ""
}

func (f Filter) String() string {
	if f.IsZero() {
		return ""
	}
	return f.Column + "=eq." + f.Value
}

// Matches reports whether ev carries Column == Value.
func (f Filter) Matches(ev entities.ChangeEvent) bool {
	if f.IsZero() {
		return true
	}
	v, ok := ev.Columns[f.Column]
	return ok && v == f.Value
}

// ParseFilter parses "column=eq.value". An empty string is the zero filter.
func ParseFilter(raw string) (Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Filter{}, nil
	}
	col, rest, ok := strings.Cut(raw, "=")
	if !ok || col == "" {
		return Filter{}, fmt.Errorf("invalid filter %q", raw)
	}
	val, ok := strings.CutPrefix(rest, "eq.")
	if !ok || val == "" {
		return Filter{}, fmt.Errorf("unsupported filter operator in %q", raw)
	}
	return Filter{Column: col, Value: val}, nil
}

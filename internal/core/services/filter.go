package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/unischedule/dashboard/internal/core/domain"
)

// FilterState holds one value per filterable attribute plus a free-text
// search string. Empty values do not filter.
type FilterState struct {
	Search string
	Fields map[string]string
}

// Reset clears every filter in one step.
func (f *FilterState) Reset() {
	f.Search = ""
	f.Fields = nil
}

// Active returns the number of filters that narrow the collection.
func (f FilterState) Active() int {
	n := 0
	if f.Search != "" {
		n++
	}
	for _, v := range f.Fields {
		if v != "" {
			n++
		}
	}
	return n
}

// Schema describes how one resource type is fetched, searched and filtered.
type Schema[T domain.Record] struct {
	// Resource is the collection's path segment below /api.
	Resource string
	// Search lists the fields matched by the free-text search.
	Search []func(T) string
	// Fields maps a filter name to the enum-like attribute it compares.
	Fields map[string]func(T) string
	// ReadOnly collections only support listing.
	ReadOnly bool
}

// FieldNames returns the filter names in stable order.
func (s Schema[T]) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseFilter builds a FilterState, rejecting names the schema does not know.
func (s Schema[T]) ParseFilter(search string, fields map[string]string) (FilterState, error) {
	f := FilterState{Search: search}
	for name, value := range fields {
		if _, ok := s.Fields[name]; !ok {
			return FilterState{}, fmt.Errorf("%w %q (allowed: %s)", ErrUnknownFilter, name, strings.Join(s.FieldNames(), ", "))
		}
		if f.Fields == nil {
			f.Fields = make(map[string]string, len(fields))
		}
		f.Fields[name] = value
	}
	return f, nil
}

// Apply narrows items by each active filter in turn. The result keeps the
// source order and never aliases items.
func (s Schema[T]) Apply(items []T, f FilterState) []T {
	out := make([]T, len(items))
	copy(out, items)

	for _, name := range s.FieldNames() {
		want := f.Fields[name]
		if want == "" {
			continue
		}
		get := s.Fields[name]
		out = narrow(out, func(item T) bool { return get(item) == want })
	}

	if q := strings.ToLower(f.Search); q != "" {
		out = narrow(out, func(item T) bool {
			for _, get := range s.Search {
				if strings.Contains(strings.ToLower(get(item)), q) {
					return true
				}
			}
			return false
		})
	}
	return out
}

func narrow[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, item := range items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

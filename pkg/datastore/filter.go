package datastore

import (
	"fmt"
	"strings"
)

type predicate struct {
	field string
	value interface{}
}

// Filter is an ordered conjunction of equality predicates on named fields.
type Filter struct {
	predicates []predicate
}

// NewFilter starts an empty filter, which matches every record.
func NewFilter() Filter {
	return Filter{}
}

// Eq adds field = value.
func (f Filter) Eq(field string, value interface{}) Filter {
	preds := make([]predicate, len(f.predicates), len(f.predicates)+1)
	copy(preds, f.predicates)
	f.predicates = append(preds, predicate{field: field, value: value})
	return f
}

// EqIf adds field = *value only when value is set.
func EqIf[T any](f Filter, field string, value *T) Filter {
	if value == nil {
		return f
	}
	return f.Eq(field, *value)
}

// Empty reports whether the filter has no predicates.
func (f Filter) Empty() bool {
	return len(f.predicates) == 0
}

// Where translates the filter into a WHERE clause with positional placeholders starting at $1.
// An empty filter yields an empty clause.
func (f Filter) Where() (string, []interface{}) {
	if f.Empty() {
		return "", nil
	}
	conditions := make([]string, 0, len(f.predicates))
	args := make([]interface{}, 0, len(f.predicates))
	for _, p := range f.predicates {
		args = append(args, p.value)
		conditions = append(conditions, fmt.Sprintf("%s = $%d", p.field, len(args)))
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

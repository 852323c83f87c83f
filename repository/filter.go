package repository

import (
	"fmt"
	"strings"
)

// Filter accumulates an AND-conjunction of predicates with positional
// parameters. Only the predicates that are added appear in the clause, so
// adding a predicate can never widen the result set.
type Filter struct {
	clauses []string
	args    []any
}

// NewFilter starts a filter whose placeholders follow args already bound
// by the surrounding statement.
func NewFilter(args ...any) *Filter {
	return &Filter{args: append([]any(nil), args...)}
}

// Bind appends a parameter and returns its placeholder
func (f *Filter) Bind(value any) string {
	f.args = append(f.args, value)
	return fmt.Sprintf("$%d", len(f.args))
}

// Where adds a predicate. Each %s in the format is replaced by the
// placeholder of the corresponding value.
func (f *Filter) Where(format string, values ...any) *Filter {
	placeholders := make([]any, len(values))
	for i, v := range values {
		placeholders[i] = f.Bind(v)
	}
	f.clauses = append(f.clauses, fmt.Sprintf(format, placeholders...))
	return f
}

// EqualFold matches a text column case-insensitively
func (f *Filter) EqualFold(column string, value *string) *Filter {
	if value == nil {
		return f
	}
	return f.Where("lower("+column+") = lower(%s)", *value)
}

// Contains matches a case-insensitive substring of a text column
func (f *Filter) Contains(column string, value *string) *Filter {
	if value == nil {
		return f
	}
	return f.Where(column+` ILIKE '%%' || %s || '%%'`, EscapeLike(*value))
}

// AtLeast adds column >= value when value is set
func (f *Filter) AtLeast(column string, value any) *Filter {
	if isNil(value) {
		return f
	}
	return f.Where(column+" >= %s", value)
}

// AtMost adds column <= value when value is set
func (f *Filter) AtMost(column string, value any) *Filter {
	if isNil(value) {
		return f
	}
	return f.Where(column+" <= %s", value)
}

// Len returns the number of predicates
func (f *Filter) Len() int {
	return len(f.clauses)
}

// Clause renders "WHERE a AND b", or an empty string when nothing was added
func (f *Filter) Clause() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(f.clauses, " AND ")
}

// Args returns the bound parameters in placeholder order
func (f *Filter) Args() []any {
	return f.args
}

// EscapeLike escapes LIKE metacharacters so the value matches literally
func EscapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func isNil(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *int64:
		return x == nil
	case *int:
		return x == nil
	case *float64:
		return x == nil
	}
	return false
}

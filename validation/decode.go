package validation

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
	"time"

	"findata-mcp/internal/apperr"
)

const dateLayout = "2006-01-02"

// decoder pulls typed values out of an untyped argument map. It keeps only
// the first failure; later reads become no-ops returning zero values.
type decoder struct {
	args map[string]any
	err  *apperr.ValidationError
}

func newDecoder(args map[string]any, allowed ...string) *decoder {
	d := &decoder{args: args}

	known := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		known[a] = true
	}
	var unknown []string
	for k := range args {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		d.fail(unknown[0], "is not a recognized argument (accepted: %s)", strings.Join(allowed, ", "))
	}
	return d
}

func (d *decoder) fail(field, format string, args ...any) {
	if d.err == nil {
		d.err = apperr.Invalid(field, format, args...)
	}
}

// lookup returns the raw value; null is treated the same as absent
func (d *decoder) lookup(name string) (any, bool) {
	if d.err != nil {
		return nil, false
	}
	v, ok := d.args[name]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func (d *decoder) str(name string) *string {
	v, ok := d.lookup(name)
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		d.fail(name, "must be a string")
		return nil
	}
	s = strings.TrimSpace(s)
	return &s
}

func (d *decoder) requiredStr(name string) string {
	if s := d.str(name); s != nil {
		return *s
	}
	return ""
}

func (d *decoder) number(name string) *float64 {
	v, ok := d.lookup(name)
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		d.fail(name, "must be a number")
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		d.fail(name, "must be a finite number")
		return nil
	}
	return &f
}

func (d *decoder) integer(name string) *int64 {
	f := d.number(name)
	if f == nil {
		return nil
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > 1<<53 {
		d.fail(name, "must be an integer")
		return nil
	}
	i := int64(*f)
	return &i
}

func (d *decoder) strs(name string) []string {
	v, ok := d.lookup(name)
	if !ok {
		return nil
	}
	var items []any
	switch t := v.(type) {
	case []any:
		items = t
	case []string:
		out := make([]string, len(t))
		for i, s := range t {
			out[i] = strings.TrimSpace(s)
		}
		return out
	default:
		d.fail(name, "must be an array of strings")
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			d.fail(name, "must be an array of strings")
			return nil
		}
		out = append(out, strings.TrimSpace(s))
	}
	return out
}

func (d *decoder) date(name string) *time.Time {
	s := d.str(name)
	if s == nil {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		d.fail(name, "must be a calendar date in YYYY-MM-DD format")
		return nil
	}
	return &t
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

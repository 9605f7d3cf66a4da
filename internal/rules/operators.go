// internal/rules/operators.go
package rules

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/jagodin/financify-public/internal/types"
)

/*
 * Operator registry and comparison logic.
 *
 * The registry is a name -> comparison function table built once at process
 * start and treated as read-only afterwards; no locking is required for
 * reads during a rule run.
 *
 * Built-ins (standard numeric/string/date comparisons):
 *   - equal/notEqual: equality with numeric type mixing
 *   - lessThan/lessThanInclusive/greaterThan/greaterThanInclusive:
 *     numeric comparison, falling back to lexicographic comparison when
 *     both sides are strings (ISO dates order correctly this way)
 *   - in/notIn: membership against a list value
 *
 * Custom operators (reproduced exactly, including the asymmetry):
 *   - startsWith/endsWith: case-INsensitive, empty-fact guard
 *   - contains: case-SENSITIVE substring, empty-fact guard
 *   - regexMatch: pattern compiled at evaluation, empty-fact guard
 *
 * The four custom operators guard on an empty fact value by returning false
 * rather than failing: evaluation must never abort because a fact field is
 * empty. An unresolvable regex pattern also compares false.
 *
 * Why function-based: a comparison is a pure predicate with no state, so a
 * map of funcs beats an interface with a dozen single-method implementations.
 */

// CompareFunc compares a transaction fact value against a rule's literal
// value and reports whether the condition matches.
type CompareFunc func(factValue, ruleValue any) bool

// Registry maps operator names to comparison functions.
type Registry map[string]CompareFunc

// NewRegistry returns a registry populated with the built-in and custom
// operators. Callers may Register additional operators before the first run.
func NewRegistry() Registry {
	r := Registry{}

	r.Register("equal", compareEqual)
	r.Register("notEqual", func(fact, value any) bool { return !compareEqual(fact, value) })
	r.Register("lessThan", func(fact, value any) bool { return compareOrdered(fact, value) < 0 })
	r.Register("lessThanInclusive", func(fact, value any) bool { return compareOrdered(fact, value) <= 0 })
	r.Register("greaterThan", func(fact, value any) bool { return compareOrdered(fact, value) > 0 })
	r.Register("greaterThanInclusive", func(fact, value any) bool { return compareOrdered(fact, value) >= 0 })
	r.Register("in", compareIn)
	r.Register("notIn", func(fact, value any) bool { return !compareIn(fact, value) })

	r.Register("startsWith", compareStartsWith)
	r.Register("endsWith", compareEndsWith)
	r.Register("contains", compareContains)
	r.Register("regexMatch", compareRegexMatch)

	return r
}

// Register adds or replaces an operator.
func (r Registry) Register(name string, fn CompareFunc) {
	r[name] = fn
}

// Resolve looks up an operator by name.
// Returns ErrUnknownOperator for names not in the registry; the engine
// contains that error at transaction granularity.
func (r Registry) Resolve(name string) (CompareFunc, error) {
	fn, ok := r[name]
	if !ok {
		return nil, types.ErrUnknownOperator
	}
	return fn, nil
}

// compareEqual performs equality comparison with numeric type mixing so a
// JSON float64 equals a Go int literal. Non-numeric values use deep equality
// (rule values may be lists).
func compareEqual(a, b any) bool {
	if na, nb, ok := asNumbers(a, b); ok {
		return na == nb
	}
	return reflect.DeepEqual(a, b)
}

// compareOrdered performs three-way comparison (-1/0/1). Numbers compare
// numerically; two strings compare lexicographically, which orders ISO
// dates correctly. Incomparable types compare 0, so every ordering operator
// reports a non-match.
func compareOrdered(a, b any) int {
	if na, nb, ok := asNumbers(a, b); ok {
		switch {
		case na < nb:
			return -1
		case na > nb:
			return 1
		default:
			return 0
		}
	}
	sa, oka := a.(string)
	sb, okb := b.(string)
	if oka && okb {
		return strings.Compare(sa, sb)
	}
	return 0
}

// asNumbers attempts to convert both values to float64 for numeric comparison.
func asNumbers(a, b any) (float64, float64, bool) {
	na, oka := toFloat64(a)
	nb, okb := toFloat64(b)
	return na, nb, oka && okb
}

// toFloat64 converts value to float64 if it's a numeric type.
// Handles float64, int, int64 from JSON unmarshaling.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// compareIn checks membership of the fact value in a list rule value.
func compareIn(fact, value any) bool {
	list, ok := value.([]any)
	if !ok {
		return false
	}
	for _, elem := range list {
		if compareEqual(fact, elem) {
			return true
		}
	}
	return false
}

// asStrings narrows both sides to strings for the custom text operators.
func asStrings(fact, value any) (string, string, bool) {
	fs, ok1 := fact.(string)
	vs, ok2 := value.(string)
	return fs, vs, ok1 && ok2
}

// compareStartsWith is a case-insensitive prefix match with an empty-fact guard.
func compareStartsWith(fact, value any) bool {
	fs, vs, ok := asStrings(fact, value)
	if !ok || len(fs) == 0 {
		return false
	}
	return strings.HasPrefix(strings.ToLower(fs), strings.ToLower(vs))
}

// compareEndsWith is a case-insensitive suffix match with an empty-fact guard.
func compareEndsWith(fact, value any) bool {
	fs, vs, ok := asStrings(fact, value)
	if !ok || len(fs) == 0 {
		return false
	}
	return strings.HasSuffix(strings.ToLower(fs), strings.ToLower(vs))
}

// compareContains is a case-SENSITIVE substring match with an empty-fact
// guard. The asymmetry with startsWith/endsWith is intentional and must not
// be "fixed".
func compareContains(fact, value any) bool {
	fs, vs, ok := asStrings(fact, value)
	if !ok || len(fs) == 0 {
		return false
	}
	return strings.Contains(fs, vs)
}

// compareRegexMatch compiles the rule value as a regular expression and
// tests the fact value. Empty fact or an invalid pattern compares false.
func compareRegexMatch(fact, value any) bool {
	fs, vs, ok := asStrings(fact, value)
	if !ok || len(fs) == 0 {
		return false
	}
	re, err := regexp.Compile(vs)
	if err != nil {
		return false
	}
	return re.MatchString(fs)
}

// internal/rules/operators_test.go
package rules

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestRegistry_Resolve(t *testing.T) {
	reg := NewRegistry()

	for _, name := range []string{
		"equal", "notEqual", "lessThan", "lessThanInclusive",
		"greaterThan", "greaterThanInclusive", "in", "notIn",
		"startsWith", "endsWith", "contains", "regexMatch",
	} {
		if _, err := reg.Resolve(name); err != nil {
			t.Errorf("Resolve(%q) error = %v, want nil", name, err)
		}
	}

	if _, err := reg.Resolve("bogusOperator"); err == nil {
		t.Error("Resolve(bogusOperator) error = nil, want ErrUnknownOperator")
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := NewRegistry()
	reg.Register("alwaysTrue", func(fact, value any) bool { return true })

	fn, err := reg.Resolve("alwaysTrue")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want nil", err)
	}
	if !fn(nil, nil) {
		t.Error("alwaysTrue(nil, nil) = false, want true")
	}
}

// Case semantics are asymmetric on purpose: startsWith/endsWith fold case,
// contains does not.
func TestCustomOperators_CaseSemantics(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		fact     any
		value    any
		want     bool
	}{
		{"startsWith folds case", "startsWith", "Coffee Shop", "coffee", true},
		{"startsWith non-prefix", "startsWith", "Coffee Shop", "shop", false},
		{"startsWith empty fact", "startsWith", "", "x", false},
		{"endsWith folds case", "endsWith", "Coffee Shop", "SHOP", true},
		{"endsWith non-suffix", "endsWith", "Coffee Shop", "coffee", false},
		{"endsWith empty fact", "endsWith", "", "x", false},
		{"contains is case-sensitive", "contains", "Coffee", "OFFEE", false},
		{"contains exact substring", "contains", "Coffee", "offee", true},
		{"contains empty fact", "contains", "", "", false},
		{"regexMatch basic", "regexMatch", "UBER *TRIP 42", `UBER \*TRIP \d+`, true},
		{"regexMatch non-match", "regexMatch", "Lyft Ride", `^UBER`, false},
		{"regexMatch empty fact", "regexMatch", "", ".*", false},
		{"regexMatch invalid pattern", "regexMatch", "anything", "([", false},
		{"startsWith non-string fact", "startsWith", 42.0, "4", false},
	}

	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := reg.Resolve(tt.operator)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.operator, err)
			}
			if got := fn(tt.fact, tt.value); got != tt.want {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.operator, tt.fact, tt.value, got, tt.want)
			}
		})
	}
}

func TestBuiltinOperators(t *testing.T) {
	tests := []struct {
		name     string
		operator string
		fact     any
		value    any
		want     bool
	}{
		{"equal strings", "equal", "Coffee", "Coffee", true},
		{"equal numeric mixing", "equal", float64(100), int(100), true},
		{"equal mismatched", "equal", "Coffee", "Tea", false},
		{"notEqual", "notEqual", "Coffee", "Tea", true},
		{"lessThan numbers", "lessThan", float64(50), float64(100), true},
		{"lessThan equal values", "lessThan", float64(100), float64(100), false},
		{"lessThanInclusive equal values", "lessThanInclusive", float64(100), float64(100), true},
		{"greaterThan numbers", "greaterThan", float64(150), float64(100), true},
		{"greaterThan incomparable types", "greaterThan", "abc", float64(1), false},
		{"greaterThanInclusive", "greaterThanInclusive", float64(100), float64(100), true},
		{"lessThan ISO dates", "lessThan", "2024-01-01", "2024-06-15", true},
		{"greaterThan ISO dates", "greaterThan", "2024-06-15", "2024-01-01", true},
		{"in member", "in", "groceries", []any{"groceries", "dining"}, true},
		{"in non-member", "in", "rent", []any{"groceries", "dining"}, false},
		{"in numeric mixing", "in", float64(5), []any{int(5), int(7)}, true},
		{"notIn", "notIn", "rent", []any{"groceries", "dining"}, true},
		{"in non-list value", "in", "x", "not-a-list", false},
	}

	reg := NewRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := reg.Resolve(tt.operator)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", tt.operator, err)
			}
			if got := fn(tt.fact, tt.value); got != tt.want {
				t.Errorf("%s(%v, %v) = %v, want %v", tt.operator, tt.fact, tt.value, got, tt.want)
			}
		})
	}
}

// The empty-fact guard must hold for every string the rule side supplies:
// text operators never match an empty fact and never panic on odd input.
func TestCustomOperators_EmptyGuardProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	reg := NewRegistry()

	properties.Property("empty fact never matches any text operator", prop.ForAll(
		func(value string) bool {
			for _, name := range []string{"startsWith", "endsWith", "contains", "regexMatch"} {
				fn, err := reg.Resolve(name)
				if err != nil {
					return false
				}
				if fn("", value) {
					return false
				}
			}
			return true
		},
		gen.AnyString(),
	))

	properties.Property("startsWith matches any non-empty string against its own prefix", prop.ForAll(
		func(s string, cut int) bool {
			if len(s) == 0 {
				return true
			}
			prefix := s[:cut%len(s)]
			fn, _ := reg.Resolve("startsWith")
			return fn(s, prefix)
		},
		gen.AlphaString(),
		gen.IntRange(0, 1000),
	))

	properties.TestingRun(t)
}

// internal/rules/compile.go
package rules

import (
	"fmt"

	"github.com/jagodin/financify-public/internal/types"
)

/*
 * Rule compilation and validation.
 *
 * Compiles types.Rule to CompiledRule, validating structural shape so a
 * malformed rule fails at construction time with ErrMalformedRule, before it
 * ever reaches the engine:
 *   - name length 1-60
 *   - every leaf fact is a recognized fact name
 *   - every condition node is exactly a leaf or a group
 *   - event envelope type is literally "multiple"
 *   - every action type is one of the six recognized kinds
 *
 * Operator names are deliberately NOT checked against the registry here:
 * they resolve lazily at evaluation time, so a rule can be stored with a
 * bogus operator and only fail when run, triggering the engine's
 * per-transaction containment.
 */

// Rule name bounds enforced at compile time.
const (
	MinRuleNameLength = 1
	MaxRuleNameLength = 60
)

// CompiledRule is a validated rule ready for evaluation. It retains the
// original definition so the stored blob round-trips verbatim.
type CompiledRule struct {
	RuleID     int64
	UserID     int64
	Name       string
	Priority   int // stored and round-tripped; evaluation order is caller-supplied order
	Conditions types.Conditions
	Actions    []types.Action
	Definition types.RuleDefinition
}

// Compile validates a rule definition.
// Returns an error wrapping ErrMalformedRule describing the first violation.
func Compile(def types.RuleDefinition) (*CompiledRule, error) {
	if len(def.Name) < MinRuleNameLength || len(def.Name) > MaxRuleNameLength {
		return nil, fmt.Errorf("%w: name must be %d-%d characters, got %d",
			types.ErrMalformedRule, MinRuleNameLength, MaxRuleNameLength, len(def.Name))
	}

	if def.Conditions.Any == nil && def.Conditions.All == nil {
		return nil, fmt.Errorf("%w: conditions must contain an any or all group", types.ErrMalformedRule)
	}
	for i, node := range def.Conditions.Any {
		if err := validateNode(node); err != nil {
			return nil, fmt.Errorf("%w in any[%d]", err, i)
		}
	}
	for i, node := range def.Conditions.All {
		if err := validateNode(node); err != nil {
			return nil, fmt.Errorf("%w in all[%d]", err, i)
		}
	}

	if def.Event.Type != types.EventTypeMultiple {
		return nil, fmt.Errorf("%w: event type must be %q, got %q",
			types.ErrMalformedRule, types.EventTypeMultiple, def.Event.Type)
	}
	for i, action := range def.Event.Params {
		if !types.KnownActionType(action.Type) {
			return nil, fmt.Errorf("%w: unknown action type %q at params[%d]",
				types.ErrMalformedRule, action.Type, i)
		}
	}

	return &CompiledRule{
		Name:       def.Name,
		Priority:   def.Priority,
		Conditions: def.Conditions,
		Actions:    def.Event.Params,
		Definition: def,
	}, nil
}

// CompileRule validates a stored rule, carrying its identity through.
func CompileRule(rule types.Rule) (*CompiledRule, error) {
	compiled, err := Compile(rule.Definition)
	if err != nil {
		return nil, err
	}
	compiled.RuleID = rule.RuleID
	compiled.UserID = rule.UserID
	return compiled, nil
}

// validateNode checks one condition tree node recursively.
// A node must be exactly one of: comparison leaf, nested group.
func validateNode(node types.Condition) error {
	leaf, group := node.Leaf(), node.Group()

	switch {
	case leaf && group:
		return fmt.Errorf("%w: condition node is both a leaf and a group", types.ErrMalformedRule)
	case group:
		for _, child := range node.Any {
			if err := validateNode(child); err != nil {
				return err
			}
		}
		for _, child := range node.All {
			if err := validateNode(child); err != nil {
				return err
			}
		}
		return nil
	case leaf:
		if !types.KnownFact(node.Fact) {
			return fmt.Errorf("%w: unknown fact %q", types.ErrMalformedRule, node.Fact)
		}
		if node.Operator == "" {
			return fmt.Errorf("%w: leaf condition missing operator", types.ErrMalformedRule)
		}
		return nil
	default:
		return fmt.Errorf("%w: condition node is neither a leaf nor a group", types.ErrMalformedRule)
	}
}

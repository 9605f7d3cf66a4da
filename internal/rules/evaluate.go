// internal/rules/evaluate.go
package rules

import (
	"github.com/jagodin/financify-public/internal/types"
)

/*
 * Condition tree evaluation.
 *
 * Evaluates a compiled rule's condition tree against one transaction's fact
 * bag. Group semantics:
 *   - any: logical OR, short-circuits on first match; an empty any list is false
 *   - all: logical AND, short-circuits on first non-match; an empty all list
 *     is true (vacuous truth)
 *   - both populated at the top level: combined with AND
 *
 * Leaf evaluation resolves the operator lazily against the registry. An
 * unknown operator name is a configuration error and propagates up; the
 * engine catches it at transaction granularity, so one bad rule poisons only
 * the transaction currently being evaluated.
 */

// EvaluateRule checks whether the rule's condition tree matches the fact bag.
func EvaluateRule(reg Registry, rule *CompiledRule, facts map[string]any) (bool, error) {
	return evalTopLevel(reg, rule.Conditions, facts)
}

// evalTopLevel distinguishes a present-but-empty group (nil vs empty slice)
// because the two have different vacuous values: an empty any is false, an
// empty all is true.
func evalTopLevel(reg Registry, conds types.Conditions, facts map[string]any) (bool, error) {
	anyPresent := conds.Any != nil
	allPresent := conds.All != nil

	if anyPresent {
		matched, err := evalAny(reg, conds.Any, facts)
		if err != nil || !matched {
			return false, err
		}
	}
	if allPresent {
		return evalAll(reg, conds.All, facts)
	}
	return anyPresent, nil
}

// evalAny is logical OR: true if any child evaluates true. Empty list is false.
func evalAny(reg Registry, nodes []types.Condition, facts map[string]any) (bool, error) {
	for _, node := range nodes {
		matched, err := evalNode(reg, node, facts)
		if err != nil {
			return false, err
		}
		if matched {
			return true, nil
		}
	}
	return false, nil
}

// evalAll is logical AND: true if all children evaluate true. Empty list is true.
func evalAll(reg Registry, nodes []types.Condition, facts map[string]any) (bool, error) {
	for _, node := range nodes {
		matched, err := evalNode(reg, node, facts)
		if err != nil {
			return false, err
		}
		if !matched {
			return false, nil
		}
	}
	return true, nil
}

// evalNode dispatches a single tree node: nested group or comparison leaf.
// Compile validates leaf-XOR-group shape, so a node reaching here is one or
// the other.
func evalNode(reg Registry, node types.Condition, facts map[string]any) (bool, error) {
	if node.Group() {
		return evalTopLevel(reg, types.Conditions{Any: node.Any, All: node.All}, facts)
	}

	fn, err := reg.Resolve(node.Operator)
	if err != nil {
		return false, err
	}
	return fn(facts[node.Fact], node.Value), nil
}

// internal/rules/engine.go
package rules

import (
	"encoding/json"
	"log/slog"

	"github.com/jagodin/financify-public/internal/types"
)

/*
 * Rule engine orchestration.
 *
 * Run evaluates every supplied rule against every transaction in a batch and
 * partitions the batch into untouched / updated / deleted. The engine is a
 * stateless pure function over its inputs: it holds nothing between calls,
 * never touches persistence, and never mutates an input transaction. Dry-run
 * vs apply is therefore decided entirely by the caller (the service persists
 * the outcome only on apply).
 *
 * Per transaction, independently of all others:
 *   1. Evaluate each rule's condition tree against the fact bag.
 *   2. Collect matched rules' action lists in rule order. The engine does
 *      not sort by priority; callers own any pre-sort (the stored priority
 *      field is round-tripped but unused, matching observed behavior).
 *   3. Flatten into one ordered action sequence and fold left-to-right into
 *      a sparse patch. Same-type actions: last write wins. DELETE sets a
 *      flag without stopping the fold; once set, the final classification
 *      is deleted regardless of any field edits that also occurred.
 *   4. Classify: no actions -> untouched (original record), deleted flag ->
 *      deleted (original record), otherwise updated (sparse patch).
 *
 * Containment is mandatory: any evaluation error (unknown operator) is
 * logged with the run id and degrades that single transaction to untouched;
 * the batch continues. One corrupt rule must never abort a run. Individual
 * actions that fail to decode are likewise logged and skipped without
 * aborting the fold.
 *
 * Output slices preserve input order, so identical inputs always produce
 * identical outcomes.
 */

// Outcome partitions a batch. Every input transaction id appears in exactly
// one of the three sets.
type Outcome struct {
	Updated   []types.Patch
	Deleted   []types.Transaction
	Untouched []types.Transaction
}

// Run evaluates rules against transactions and returns the partitioned
// outcome. The registry and rule set are explicit parameters; the engine
// retains no references to either across calls.
func Run(runID types.RunID, reg Registry, ruleSet []*CompiledRule, transactions []types.Transaction) Outcome {
	var out Outcome

	for _, tx := range transactions {
		actions, err := matchActions(reg, ruleSet, tx)
		if err != nil {
			// Contained per transaction: degrade to untouched, keep going.
			slog.Warn("rule evaluation failed, leaving transaction untouched",
				"run_id", runID,
				"transaction_id", tx.TransactionID,
				"user_id", tx.UserID,
				"error", err)
			out.Untouched = append(out.Untouched, tx)
			continue
		}

		patch, deleted := foldActions(runID, tx, actions)

		switch {
		case deleted:
			out.Deleted = append(out.Deleted, tx)
		case !patch.Empty():
			out.Updated = append(out.Updated, patch)
		default:
			out.Untouched = append(out.Untouched, tx)
		}
	}

	return out
}

// matchActions evaluates every rule against one transaction and returns the
// flattened action lists of all matching rules, in rule order. The first
// evaluation error aborts the whole transaction's rule pass.
func matchActions(reg Registry, ruleSet []*CompiledRule, tx types.Transaction) ([]types.Action, error) {
	facts := tx.FactBag()

	var actions []types.Action
	for _, rule := range ruleSet {
		matched, err := EvaluateRule(reg, rule, facts)
		if err != nil {
			return nil, err
		}
		if matched {
			actions = append(actions, rule.Actions...)
		}
	}
	return actions, nil
}

// foldActions folds an ordered action sequence into a sparse patch.
// Later same-type actions overwrite earlier ones. An action whose payload
// fails to decode is logged and skipped; the fold continues.
func foldActions(runID types.RunID, tx types.Transaction, actions []types.Action) (types.Patch, bool) {
	patch := types.Patch{
		TransactionID:   tx.TransactionID,
		TransactionKind: tx.TransactionKind,
		UserID:          tx.UserID,
	}
	deleted := false

	for _, action := range actions {
		if err := applyAction(&patch, &deleted, action); err != nil {
			slog.Warn("skipping action with bad payload",
				"run_id", runID,
				"transaction_id", tx.TransactionID,
				"action_type", action.Type,
				"error", err)
		}
	}

	return patch, deleted
}

// applyAction writes one action's target field into the patch.
func applyAction(patch *types.Patch, deleted *bool, action types.Action) error {
	switch action.Type {
	case types.ActionSetName:
		var name string
		if err := json.Unmarshal(action.Params.Value, &name); err != nil {
			return err
		}
		patch.Name = &name
	case types.ActionSetNote:
		var note string
		if err := json.Unmarshal(action.Params.Value, &note); err != nil {
			return err
		}
		patch.Note = &note
	case types.ActionSetCategory:
		ref, err := types.DecodeCategoryRef(action.Params.Value)
		if err != nil {
			return err
		}
		patch.CategoryID = &ref.CategoryID
	case types.ActionSetTags:
		// Wholesale replacement, not a merge.
		var tags []string
		if err := json.Unmarshal(action.Params.Value, &tags); err != nil {
			return err
		}
		patch.Tags = &tags
	case types.ActionDelete:
		*deleted = true
	case types.ActionMarkCleared:
		status := types.StatusCleared
		patch.Status = &status
	}
	return nil
}

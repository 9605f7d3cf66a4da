package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jagodin/financify-public/internal/core/db"
	"github.com/jagodin/financify-public/internal/types"
)

// RuleStore persists transaction rules. The rule definition (condition tree
// plus event envelope) is stored as an opaque JSON blob and round-tripped
// verbatim: store, load, evaluate must behave identically to the in-memory
// definition.
type RuleStore struct {
	q *db.Queries
}

// NewRuleStore returns a store backed by the given query set.
func NewRuleStore(q *db.Queries) *RuleStore {
	return &RuleStore{q: q}
}

type ruleRow struct {
	RuleID     int64  `db:"transaction_rule_id"`
	UserID     int64  `db:"user_id"`
	Enabled    bool   `db:"enabled"`
	Definition string `db:"definition"`
}

func (r ruleRow) toRule() (types.Rule, error) {
	rule := types.Rule{
		RuleID:  r.RuleID,
		UserID:  r.UserID,
		Enabled: r.Enabled,
	}
	if err := json.Unmarshal([]byte(r.Definition), &rule.Definition); err != nil {
		return types.Rule{}, fmt.Errorf("failed to decode definition for rule %d: %w", r.RuleID, err)
	}
	return rule, nil
}

// FetchAll returns the user's rules, optionally restricted to enabled ones.
func (s *RuleStore) FetchAll(ctx context.Context, userID int64, enabledOnly bool) ([]types.Rule, error) {
	name := "list-rules"
	if enabledOnly {
		name = "list-enabled-rules"
	}
	var rows []ruleRow
	if err := s.q.Select(ctx, name, &rows, userID); err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	return rowsToRules(rows)
}

// FetchByIDs returns the user's rules with the given ids.
// An empty id list means all of the user's rules.
func (s *RuleStore) FetchByIDs(ctx context.Context, userID int64, ids []int64, enabledOnly bool) ([]types.Rule, error) {
	if len(ids) == 0 {
		return s.FetchAll(ctx, userID, enabledOnly)
	}
	name := "list-rules-by-ids"
	if enabledOnly {
		name = "list-enabled-rules-by-ids"
	}
	var rows []ruleRow
	if err := s.q.SelectIn(ctx, name, &rows, userID, ids); err != nil {
		return nil, fmt.Errorf("failed to list rules by ids: %w", err)
	}
	return rowsToRules(rows)
}

// FetchOne returns a single rule by id, scoped to the user.
// Returns ErrRuleNotFound when the id doesn't exist or isn't the user's.
func (s *RuleStore) FetchOne(ctx context.Context, userID, ruleID int64) (types.Rule, error) {
	var row ruleRow
	if err := s.q.Get(ctx, "get-rule", &row, ruleID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Rule{}, fmt.Errorf("%w: id %d", types.ErrRuleNotFound, ruleID)
		}
		return types.Rule{}, fmt.Errorf("failed to get rule %d: %w", ruleID, err)
	}
	return row.toRule()
}

// InsertMany stores rules in one transaction, all-or-nothing, and returns
// them with generated ids.
func (s *RuleStore) InsertMany(ctx context.Context, rules []types.Rule) ([]types.Rule, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	tx, err := s.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rule insert: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	inserted := make([]types.Rule, 0, len(rules))
	for _, rule := range rules {
		definition, err := json.Marshal(rule.Definition)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule definition: %w", err)
		}

		err = s.q.GetTx(ctx, tx, "insert-rule", &rule.RuleID,
			rule.UserID, rule.Enabled, string(definition), now, now)
		if err != nil {
			return nil, fmt.Errorf("failed to insert rule: %w", err)
		}
		inserted = append(inserted, rule)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rule insert: %w", err)
	}
	return inserted, nil
}

// ReplaceMany overwrites rule bodies in one transaction, all-or-nothing.
// Every rule must already exist and belong to the id's user; a miss aborts
// the whole batch with ErrRuleNotFound.
func (s *RuleStore) ReplaceMany(ctx context.Context, rules []types.Rule) ([]types.Rule, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	tx, err := s.q.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin rule replace: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, rule := range rules {
		definition, err := json.Marshal(rule.Definition)
		if err != nil {
			return nil, fmt.Errorf("failed to encode rule definition: %w", err)
		}

		res, err := s.q.ExecTx(ctx, tx, "update-rule",
			rule.Enabled, string(definition), now, rule.RuleID, rule.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to replace rule %d: %w", rule.RuleID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("failed to replace rule %d: %w", rule.RuleID, err)
		}
		if affected == 0 {
			return nil, fmt.Errorf("%w: id %d", types.ErrRuleNotFound, rule.RuleID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rule replace: %w", err)
	}
	return rules, nil
}

// DeleteOne removes a rule by id, scoped to the user.
// Returns ErrRuleNotFound when the id doesn't exist or isn't the user's.
func (s *RuleStore) DeleteOne(ctx context.Context, userID, ruleID int64) error {
	res, err := s.q.Exec(ctx, "delete-rule", ruleID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete rule %d: %w", ruleID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete rule %d: %w", ruleID, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: id %d", types.ErrRuleNotFound, ruleID)
	}
	return nil
}

func rowsToRules(rows []ruleRow) ([]types.Rule, error) {
	rules := make([]types.Rule, 0, len(rows))
	for _, row := range rows {
		rule, err := row.toRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

package api

import (
	"context"
	"fmt"

	"github.com/jagodin/financify-public/internal/rules"
	"github.com/jagodin/financify-public/internal/types"
)

// AddRulesRequest creates rules in bulk. Validation is all-or-nothing: one
// malformed definition rejects the whole submission before anything is
// stored.
type AddRulesRequest struct {
	UserID int64                  `json:"user_id"`
	Rules  []types.RuleDefinition `json:"rules"`
}

// ReplaceRule is one element of a bulk edit. Editing sends a complete new
// rule body; there is no partial patch of a rule.
type ReplaceRule struct {
	RuleID     int64                `json:"transaction_rule_id"`
	Enabled    bool                 `json:"enabled"`
	Definition types.RuleDefinition `json:"rule"`
}

// AddRules validates and stores new rules for the user. Returns the stored
// rules with generated ids.
func (s *Service) AddRules(ctx context.Context, req AddRulesRequest) ([]types.Rule, error) {
	if len(req.Rules) == 0 {
		return nil, nil
	}

	toInsert := make([]types.Rule, 0, len(req.Rules))
	for i, def := range req.Rules {
		if _, err := rules.Compile(def); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		toInsert = append(toInsert, types.Rule{
			UserID:     req.UserID,
			Enabled:    true,
			Definition: def,
		})
	}

	inserted, err := s.rules.InsertMany(ctx, toInsert)
	if err != nil {
		return nil, fmt.Errorf("failed to store rules: %w", err)
	}
	return inserted, nil
}

// ListRules returns all of the user's rules, disabled ones included.
func (s *Service) ListRules(ctx context.Context, userID int64) ([]types.Rule, error) {
	return s.rules.FetchAll(ctx, userID, false)
}

// GetRule returns a single rule by id. Returns ErrRuleNotFound when the rule
// doesn't exist or belongs to another user.
func (s *Service) GetRule(ctx context.Context, userID, ruleID int64) (types.Rule, error) {
	return s.rules.FetchOne(ctx, userID, ruleID)
}

// ReplaceRules overwrites existing rules with complete new bodies,
// all-or-nothing. Every body is validated before anything is written.
func (s *Service) ReplaceRules(ctx context.Context, userID int64, replacements []ReplaceRule) ([]types.Rule, error) {
	if len(replacements) == 0 {
		return nil, nil
	}

	toReplace := make([]types.Rule, 0, len(replacements))
	for i, r := range replacements {
		if _, err := rules.Compile(r.Definition); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		toReplace = append(toReplace, types.Rule{
			RuleID:     r.RuleID,
			UserID:     userID,
			Enabled:    r.Enabled,
			Definition: r.Definition,
		})
	}

	replaced, err := s.rules.ReplaceMany(ctx, toReplace)
	if err != nil {
		return nil, err
	}
	return replaced, nil
}

// DeleteRule removes a rule by id. Returns ErrRuleNotFound when the rule
// doesn't exist or belongs to another user.
func (s *Service) DeleteRule(ctx context.Context, userID, ruleID int64) error {
	return s.rules.DeleteOne(ctx, userID, ruleID)
}

package api

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jagodin/financify-public/internal/rules"
	"github.com/jagodin/financify-public/internal/types"
)

// ApplyRulesRequest selects the transactions and rules for a run. Empty id
// lists mean "all of the user's transactions" and "all of the user's enabled
// rules" respectively.
type ApplyRulesRequest struct {
	UserID             int64   `json:"user_id"`
	TransactionIDs     []int64 `json:"transaction_ids"`
	TransactionRuleIDs []int64 `json:"transaction_rule_ids"`
}

// ApplyRulesResponse is the computed outcome of a run. On apply (non-dry-run)
// the arrays reflect the computed partition, not confirmation of durable
// persistence: persistence failures are logged, never surfaced here.
type ApplyRulesResponse struct {
	RunID                 types.RunID         `json:"run_id"`
	UpdatedTransactions   []types.Patch       `json:"updatedTransactions"`
	DeletedTransactions   []types.Transaction `json:"deletedTransactions"`
	UntouchedTransactions []types.Transaction `json:"untouchedTransactions"`
	UpdatedCount          int                 `json:"updatedTransactionsCount"`
	DeletedCount          int                 `json:"deletedTransactionsCount"`
}

// ApplyRules evaluates the selected rules against the selected transactions
// and persists the outcome.
func (s *Service) ApplyRules(ctx context.Context, req ApplyRulesRequest) (*ApplyRulesResponse, error) {
	return s.run(ctx, req, false)
}

// PreviewRules evaluates exactly as ApplyRules but never persists. Preview
// and apply must be behaviorally identical except for the persistence side
// effect.
func (s *Service) PreviewRules(ctx context.Context, req ApplyRulesRequest) (*ApplyRulesResponse, error) {
	return s.run(ctx, req, true)
}

func (s *Service) run(ctx context.Context, req ApplyRulesRequest, dryRun bool) (*ApplyRulesResponse, error) {
	if req.UserID <= 0 {
		return nil, fmt.Errorf("user_id must be positive, got %d", req.UserID)
	}

	transactions, err := s.transactions.FetchByIDs(ctx, req.UserID, req.TransactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	if len(transactions) > s.cfg.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d transactions, maximum %d",
			types.ErrBatchTooLarge, len(transactions), s.cfg.MaxBatchSize)
	}

	stored, err := s.rules.FetchByIDs(ctx, req.UserID, req.TransactionRuleIDs, true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rules: %w", err)
	}

	runID := types.NewRunID()
	compiled := s.compileStored(runID, stored)

	outcome := rules.Run(runID, s.registry, compiled, transactions)

	if !dryRun {
		s.persist(ctx, runID, req.UserID, outcome)
	}

	return &ApplyRulesResponse{
		RunID:                 runID,
		UpdatedTransactions:   outcome.Updated,
		DeletedTransactions:   outcome.Deleted,
		UntouchedTransactions: outcome.Untouched,
		UpdatedCount:          len(outcome.Updated),
		DeletedCount:          len(outcome.Deleted),
	}, nil
}

// compileStored validates stored rules for evaluation. A stored rule that no
// longer compiles is skipped and logged; the run continues with the others.
func (s *Service) compileStored(runID types.RunID, stored []types.Rule) []*rules.CompiledRule {
	compiled := make([]*rules.CompiledRule, 0, len(stored))
	for _, rule := range stored {
		cr, err := rules.CompileRule(rule)
		if err != nil {
			slog.Warn("skipping malformed stored rule",
				"run_id", runID,
				"transaction_rule_id", rule.RuleID,
				"user_id", rule.UserID,
				"error", err)
			continue
		}
		compiled = append(compiled, cr)
	}
	return compiled
}

// persist writes the outcome through the repository. The update and delete
// steps are independent: each failure is logged and does not prevent the
// other step or alter the returned outcome.
func (s *Service) persist(ctx context.Context, runID types.RunID, userID int64, outcome rules.Outcome) {
	if len(outcome.Updated) > 0 {
		if err := s.transactions.BulkUpdate(ctx, outcome.Updated); err != nil {
			slog.Error("failed to persist transaction updates",
				"run_id", runID,
				"user_id", userID,
				"count", len(outcome.Updated),
				"error", err)
		}
	}

	if len(outcome.Deleted) > 0 {
		ids := make([]int64, len(outcome.Deleted))
		for i, tx := range outcome.Deleted {
			ids[i] = tx.TransactionID
		}
		if err := s.transactions.BulkDelete(ctx, userID, ids); err != nil {
			slog.Error("failed to persist transaction deletes",
				"run_id", runID,
				"user_id", userID,
				"count", len(ids),
				"error", err)
		}
	}
}

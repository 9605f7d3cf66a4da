// Package api implements the rules service boundary: apply/preview of rules
// over transaction batches plus rule management. The HTTP layer is an
// external collaborator; it hands this package already-authorized requests
// and maps returned errors onto status codes.
package api

import (
	"context"
	"fmt"

	"github.com/jagodin/financify-public/internal/core/config"
	"github.com/jagodin/financify-public/internal/rules"
	"github.com/jagodin/financify-public/internal/types"
)

// TransactionRepository is the persistence boundary for transactions.
// Implemented by store.TransactionStore.
type TransactionRepository interface {
	FetchByIDs(ctx context.Context, userID int64, ids []int64) ([]types.Transaction, error)
	BulkUpdate(ctx context.Context, patches []types.Patch) error
	BulkDelete(ctx context.Context, userID int64, ids []int64) error
}

// RuleRepository is the persistence boundary for rule definitions.
// Implemented by store.RuleStore.
type RuleRepository interface {
	FetchByIDs(ctx context.Context, userID int64, ids []int64, enabledOnly bool) ([]types.Rule, error)
	FetchAll(ctx context.Context, userID int64, enabledOnly bool) ([]types.Rule, error)
	FetchOne(ctx context.Context, userID, ruleID int64) (types.Rule, error)
	InsertMany(ctx context.Context, rules []types.Rule) ([]types.Rule, error)
	ReplaceMany(ctx context.Context, rules []types.Rule) ([]types.Rule, error)
	DeleteOne(ctx context.Context, userID, ruleID int64) error
}

// Service orchestrates the rule engine against the repositories. It holds no
// per-run state; the operator registry is built once and read-only afterwards.
type Service struct {
	transactions TransactionRepository
	rules        RuleRepository
	registry     rules.Registry
	cfg          *config.Config
}

// NewService creates a service instance with its dependencies.
func NewService(transactions TransactionRepository, ruleRepo RuleRepository, cfg *config.Config) (*Service, error) {
	if transactions == nil {
		return nil, fmt.Errorf("transactions cannot be nil")
	}
	if ruleRepo == nil {
		return nil, fmt.Errorf("ruleRepo cannot be nil")
	}
	if cfg == nil {
		return nil, fmt.Errorf("cfg cannot be nil")
	}

	return &Service{
		transactions: transactions,
		rules:        ruleRepo,
		registry:     rules.NewRegistry(),
		cfg:          cfg,
	}, nil
}

// Package store implements the transaction and rule repositories over the
// named-query layer in internal/core/db. All reads and writes are scoped to
// a user id; cross-user access is impossible by construction.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jagodin/financify-public/internal/core/db"
	"github.com/jagodin/financify-public/internal/types"
)

// TransactionStore persists transactions.
type TransactionStore struct {
	q *db.Queries
}

// NewTransactionStore returns a store backed by the given query set.
func NewTransactionStore(q *db.Queries) *TransactionStore {
	return &TransactionStore{q: q}
}

// transactionRow maps a transactions table row. Tags are stored as a JSON
// text column for driver portability.
type transactionRow struct {
	TransactionID   int64         `db:"transaction_id"`
	UserID          int64         `db:"user_id"`
	TransactionKind string        `db:"transaction_kind"`
	Name            string        `db:"name"`
	Note            string        `db:"note"`
	Amount          float64       `db:"amount"`
	Date            string        `db:"date"`
	Status          string        `db:"status"`
	CategoryID      sql.NullInt64 `db:"category_id"`
	Tags            string        `db:"tags"`
	AccountID       int64         `db:"account_id"`
}

func (r transactionRow) toTransaction() (types.Transaction, error) {
	tx := types.Transaction{
		TransactionID:   r.TransactionID,
		UserID:          r.UserID,
		TransactionKind: r.TransactionKind,
		Name:            r.Name,
		Note:            r.Note,
		Amount:          r.Amount,
		Date:            r.Date,
		Status:          types.Status(r.Status),
		AccountID:       r.AccountID,
	}
	if r.CategoryID.Valid {
		id := r.CategoryID.Int64
		tx.CategoryID = &id
	}
	if err := json.Unmarshal([]byte(r.Tags), &tx.Tags); err != nil {
		return types.Transaction{}, fmt.Errorf("failed to decode tags for transaction %d: %w", r.TransactionID, err)
	}
	return tx, nil
}

// FetchAll returns every transaction belonging to the user, newest first.
func (s *TransactionStore) FetchAll(ctx context.Context, userID int64) ([]types.Transaction, error) {
	var rows []transactionRow
	if err := s.q.Select(ctx, "list-transactions", &rows, userID); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return rowsToTransactions(rows)
}

// FetchByIDs returns the user's transactions with the given ids.
// An empty id list means all of the user's transactions.
func (s *TransactionStore) FetchByIDs(ctx context.Context, userID int64, ids []int64) ([]types.Transaction, error) {
	if len(ids) == 0 {
		return s.FetchAll(ctx, userID)
	}
	var rows []transactionRow
	if err := s.q.SelectIn(ctx, "list-transactions-by-ids", &rows, userID, ids); err != nil {
		return nil, fmt.Errorf("failed to list transactions by ids: %w", err)
	}
	return rowsToTransactions(rows)
}

// Insert stores a new transaction and fills in its generated id.
func (s *TransactionStore) Insert(ctx context.Context, tx *types.Transaction) error {
	tags, err := json.Marshal(tx.Tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	if tx.Tags == nil {
		tags = []byte("[]")
	}

	var categoryID any
	if tx.CategoryID != nil {
		categoryID = *tx.CategoryID
	}

	now := time.Now().UTC().Format(time.RFC3339)
	err = s.q.Get(ctx, "insert-transaction", &tx.TransactionID,
		tx.UserID, tx.TransactionKind, tx.Name, tx.Note, tx.Amount, tx.Date,
		string(tx.Status), categoryID, string(tags), tx.AccountID, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// BulkUpdate applies sparse patches in a single database transaction.
// Nil patch fields leave the stored column unchanged (COALESCE in the named
// query); identity fields select the row.
func (s *TransactionStore) BulkUpdate(ctx context.Context, patches []types.Patch) error {
	if len(patches) == 0 {
		return nil
	}

	tx, err := s.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin bulk update: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, p := range patches {
		var tags any
		if p.Tags != nil {
			encoded, err := json.Marshal(*p.Tags)
			if err != nil {
				return fmt.Errorf("failed to encode tags for transaction %d: %w", p.TransactionID, err)
			}
			tags = string(encoded)
		}

		var status any
		if p.Status != nil {
			status = string(*p.Status)
		}

		_, err := s.q.ExecTx(ctx, tx, "update-transaction",
			p.Name, p.Note, p.CategoryID, tags, status, now,
			p.TransactionID, p.UserID)
		if err != nil {
			return fmt.Errorf("failed to update transaction %d: %w", p.TransactionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit bulk update: %w", err)
	}
	return nil
}

// BulkDelete removes the user's transactions with the given ids.
func (s *TransactionStore) BulkDelete(ctx context.Context, userID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.q.ExecIn(ctx, "delete-transactions-by-ids", userID, ids); err != nil {
		return fmt.Errorf("failed to delete transactions: %w", err)
	}
	return nil
}

func rowsToTransactions(rows []transactionRow) ([]types.Transaction, error) {
	txs := make([]types.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := row.toTransaction()
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

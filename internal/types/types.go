// Package types provides domain models shared across financify components.
//
// Zero-dependency design: types.go, rules.go, and errors.go use only
// encoding/json so the rule engine and stores can share one vocabulary
// without pulling in driver or transport dependencies. ID utilities in
// ids.go import uuid but are isolated for selective inclusion.
package types

import "encoding/json"

// Status is the clearing state of a transaction.
type Status string

const (
	StatusCleared   Status = "cleared"
	StatusUncleared Status = "uncleared"
)

// Transaction is the financial record rules evaluate against. The engine
// treats it as an immutable fact bag and never mutates it in place; edits
// are expressed as a separate Patch.
type Transaction struct {
	TransactionID   int64    `json:"transaction_id"`
	UserID          int64    `json:"user_id"`
	TransactionKind string   `json:"transaction_kind"`
	Name            string   `json:"name"`
	Note            string   `json:"note"`
	Amount          float64  `json:"amount"`
	Date            string   `json:"date"`
	Status          Status   `json:"status"`
	CategoryID      *int64   `json:"category_id,omitempty"`
	Tags            []string `json:"tags"`
	AccountID       int64    `json:"account_id"`
}

// FactBag returns the named fields available to condition evaluation.
// The set mirrors the recognized fact names validated at rule compile time.
func (t Transaction) FactBag() map[string]any {
	return map[string]any{
		FactName:   t.Name,
		FactNote:   t.Note,
		FactAmount: t.Amount,
		FactDate:   t.Date,
	}
}

// Patch is a sparse mutation record: identity fields plus only the fields a
// rule run actually wrote. Nil pointers mean "leave unchanged". Applied via
// upsert keyed by (transaction_id, user_id).
type Patch struct {
	TransactionID   int64     `json:"transaction_id"`
	TransactionKind string    `json:"transaction_kind"`
	UserID          int64     `json:"user_id"`
	Name            *string   `json:"name,omitempty"`
	Note            *string   `json:"note,omitempty"`
	CategoryID      *int64    `json:"category_id,omitempty"`
	Tags            *[]string `json:"tags,omitempty"`
	Status          *Status   `json:"status,omitempty"`
}

// Empty reports whether the patch carries no field writes.
func (p Patch) Empty() bool {
	return p.Name == nil && p.Note == nil && p.CategoryID == nil &&
		p.Tags == nil && p.Status == nil
}

// CategoryRef is the payload of a SET_CATEGORY action. The patch stores only
// the identifier, never the nested object.
type CategoryRef struct {
	CategoryID int64 `json:"category_id"`
}

// DecodeCategoryRef parses a SET_CATEGORY action value.
func DecodeCategoryRef(raw json.RawMessage) (CategoryRef, error) {
	var ref CategoryRef
	err := json.Unmarshal(raw, &ref)
	return ref, err
}

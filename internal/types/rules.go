// internal/types/rules.go
package types

import "encoding/json"

/*
 * Domain types for transaction rules.
 *
 * Provides Rule, RuleDefinition, Conditions, Condition, Event, and Action
 * structures used by internal/rules for compilation and evaluation. These
 * types are wire-format agnostic: they marshal to the same JSON shape the
 * rule store persists, so a stored definition round-trips verbatim.
 *
 * Key types:
 *   - Rule: persisted row, identity (transaction_rule_id, user_id) + enabled flag
 *   - RuleDefinition: name, priority, condition tree, event envelope
 *   - Condition: leaf comparison OR nested any/all group (exactly one)
 *   - Event: fixed "multiple" envelope carrying the ordered action list
 *   - Action: a single mutation instruction (SET_NAME, DELETE, ...)
 */

// Recognized fact names. Leaves referencing anything else are rejected at
// compile time.
const (
	FactName   = "name"
	FactNote   = "note"
	FactAmount = "amount"
	FactDate   = "date"
)

// KnownFact reports whether name is an evaluable fact.
func KnownFact(name string) bool {
	switch name {
	case FactName, FactNote, FactAmount, FactDate:
		return true
	}
	return false
}

// ActionType enumerates the mutations a matched rule may request.
type ActionType string

const (
	ActionSetName     ActionType = "SET_NAME"
	ActionSetNote     ActionType = "SET_NOTE"
	ActionSetCategory ActionType = "SET_CATEGORY"
	ActionSetTags     ActionType = "SET_TAGS"
	ActionDelete      ActionType = "DELETE"
	ActionMarkCleared ActionType = "MARK_CLEARED"
)

// KnownActionType reports whether t is one of the six recognized kinds.
func KnownActionType(t ActionType) bool {
	switch t {
	case ActionSetName, ActionSetNote, ActionSetCategory,
		ActionSetTags, ActionDelete, ActionMarkCleared:
		return true
	}
	return false
}

// EventTypeMultiple is the only accepted event envelope type. Every rule
// carries exactly one event wrapping its action list.
const EventTypeMultiple = "multiple"

// Condition is one node of a rule's condition tree: either a leaf comparison
// (Fact/Operator set) or a nested group (Any/All populated). A node with both
// shapes, or neither, is malformed.
type Condition struct {
	Fact     string      `json:"fact,omitempty"`
	Operator string      `json:"operator,omitempty"`
	Value    any         `json:"value,omitempty"`
	Any      []Condition `json:"any,omitempty"`
	All      []Condition `json:"all,omitempty"`
}

// Leaf reports whether the node is a comparison leaf.
func (c Condition) Leaf() bool {
	return c.Fact != "" || c.Operator != ""
}

// Group reports whether the node is an any/all group.
func (c Condition) Group() bool {
	return len(c.Any) > 0 || len(c.All) > 0
}

// Conditions is the top level of a rule's condition tree. Only one of
// Any/All is populated in practice; when both are present they combine
// with AND. No omitempty: a present-but-empty group and an absent group
// evaluate differently (empty all is vacuously true), so the stored blob
// must keep nil as null and empty as [].
type Conditions struct {
	Any []Condition `json:"any"`
	All []Condition `json:"all"`
}

// ActionParams carries the action payload. Value interpretation depends on
// the action type: free text for SET_NAME/SET_NOTE, a category reference for
// SET_CATEGORY, a tag list for SET_TAGS; absent for DELETE and MARK_CLEARED.
type ActionParams struct {
	Value json.RawMessage `json:"value,omitempty"`
}

// Action is a single mutation instruction carried by a matched rule.
type Action struct {
	Type   ActionType   `json:"type"`
	Params ActionParams `json:"params,omitempty"`
}

// Event is the fixed envelope wrapping a rule's action list.
type Event struct {
	Type   string   `json:"type"`
	Params []Action `json:"params"`
}

// RuleDefinition is the user-authored body of a rule: the condition tree and
// the event, plus a label and an optional priority. Priority is stored and
// round-tripped but not used to reorder evaluation; the engine folds matched
// actions in the order rules were supplied.
type RuleDefinition struct {
	Name       string     `json:"name"`
	Priority   int        `json:"priority,omitempty"`
	Conditions Conditions `json:"conditions"`
	Event      Event      `json:"event"`
}

// Rule is a persisted transaction rule. Rules are strictly user-scoped:
// identity is the (transaction_rule_id, user_id) composite and no cross-user
// visibility exists. Disabled rules are excluded from evaluation entirely.
type Rule struct {
	RuleID     int64          `json:"transaction_rule_id"`
	UserID     int64          `json:"user_id"`
	Enabled    bool           `json:"enabled"`
	Definition RuleDefinition `json:"rule"`
}

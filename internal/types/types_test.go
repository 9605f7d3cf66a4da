package types

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFactBag(t *testing.T) {
	tx := Transaction{
		TransactionID: 1,
		Name:          "Coffee Shop",
		Note:          "morning",
		Amount:        4.25,
		Date:          "2024-03-10",
		Status:        StatusCleared,
	}

	facts := tx.FactBag()
	if len(facts) != 4 {
		t.Errorf("FactBag has %d entries, want 4", len(facts))
	}
	if facts[FactName] != "Coffee Shop" || facts[FactNote] != "morning" {
		t.Errorf("string facts = %v/%v", facts[FactName], facts[FactNote])
	}
	if facts[FactAmount] != 4.25 || facts[FactDate] != "2024-03-10" {
		t.Errorf("amount/date facts = %v/%v", facts[FactAmount], facts[FactDate])
	}
	// Status is deliberately not a fact; rules cannot match on it.
	if _, ok := facts["status"]; ok {
		t.Error("status must not appear in the fact bag")
	}
}

func TestPatchEmpty(t *testing.T) {
	if !(Patch{TransactionID: 1, UserID: 1}).Empty() {
		t.Error("identity-only patch must be empty")
	}

	name := "x"
	if (Patch{Name: &name}).Empty() {
		t.Error("patch with a field write must not be empty")
	}

	status := StatusCleared
	if (Patch{Status: &status}).Empty() {
		t.Error("patch with a status write must not be empty")
	}
}

func TestCondition_LeafGroup(t *testing.T) {
	leaf := Condition{Fact: FactName, Operator: "equal", Value: "x"}
	if !leaf.Leaf() || leaf.Group() {
		t.Errorf("leaf classified as leaf=%v group=%v", leaf.Leaf(), leaf.Group())
	}

	group := Condition{Any: []Condition{leaf}}
	if group.Leaf() || !group.Group() {
		t.Errorf("group classified as leaf=%v group=%v", group.Leaf(), group.Group())
	}

	var empty Condition
	if empty.Leaf() || empty.Group() {
		t.Error("zero condition must be neither leaf nor group")
	}
}

func TestDecodeCategoryRef(t *testing.T) {
	ref, err := DecodeCategoryRef(json.RawMessage(`{"category_id":12}`))
	if err != nil {
		t.Fatalf("DecodeCategoryRef failed: %v", err)
	}
	if ref.CategoryID != 12 {
		t.Errorf("CategoryID = %d, want 12", ref.CategoryID)
	}

	if _, err := DecodeCategoryRef(json.RawMessage(`"twelve"`)); err == nil {
		t.Error("expected error for non-object payload")
	}
}

func TestRunID(t *testing.T) {
	id := NewRunID()
	if id == "" {
		t.Fatal("NewRunID returned empty id")
	}

	parsed, err := ParseRunID(string(id))
	if err != nil {
		t.Fatalf("ParseRunID failed: %v", err)
	}
	if parsed != id {
		t.Errorf("ParseRunID = %q, want %q", parsed, id)
	}

	if _, err := ParseRunID("not-a-uuid"); err == nil {
		t.Error("expected error for invalid run id")
	}

	ts := RunIDTime(id)
	if ts.IsZero() {
		t.Fatal("RunIDTime returned zero time for a fresh id")
	}
	if d := time.Since(ts); d < -time.Minute || d > time.Minute {
		t.Errorf("embedded timestamp %v too far from now", ts)
	}

	if !RunIDTime(RunID("garbage")).IsZero() {
		t.Error("RunIDTime must return zero time for invalid ids")
	}
}

func TestRuleJSONShape(t *testing.T) {
	rule := Rule{
		RuleID:  3,
		UserID:  1,
		Enabled: true,
		Definition: RuleDefinition{
			Name: "rename uber",
			Conditions: Conditions{Any: []Condition{
				{Fact: FactName, Operator: "startsWith", Value: "uber"},
			}},
			Event: Event{
				Type: EventTypeMultiple,
				Params: []Action{
					{Type: ActionSetName, Params: ActionParams{Value: json.RawMessage(`"Uber"`)}},
				},
			},
		},
	}

	blob, err := json.Marshal(rule)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	// The wire shape nests the definition under "rule".
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(blob, &wire); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"transaction_rule_id", "user_id", "enabled", "rule"} {
		if _, ok := wire[key]; !ok {
			t.Errorf("wire shape missing %q", key)
		}
	}

	var restored Rule
	if err := json.Unmarshal(blob, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if restored.Definition.Name != rule.Definition.Name {
		t.Errorf("Definition.Name = %q, want %q", restored.Definition.Name, rule.Definition.Name)
	}
	if restored.Definition.Event.Type != EventTypeMultiple {
		t.Errorf("Event.Type = %q, want multiple", restored.Definition.Event.Type)
	}
}

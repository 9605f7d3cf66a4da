package types

import "errors"

// Sentinel errors for financify operations.
var (
	// ErrMalformedRule indicates a rule is structurally invalid: bad fact
	// name, unknown action type, wrong event envelope, or a condition node
	// that is neither a leaf nor a group. Raised at construction time,
	// before a rule reaches the engine.
	ErrMalformedRule = errors.New("malformed rule")

	// ErrUnknownOperator indicates a condition references an operator name
	// not present in the registry. Raised only at evaluation time; the
	// engine contains it at transaction granularity.
	ErrUnknownOperator = errors.New("unknown operator")

	// ErrRuleNotFound indicates a rule id does not exist or is not owned by
	// the requesting user.
	ErrRuleNotFound = errors.New("transaction rule not found")

	// ErrBatchTooLarge indicates a rule run was requested over more
	// transactions than the configured maximum.
	ErrBatchTooLarge = errors.New("transaction batch exceeds maximum size")
)

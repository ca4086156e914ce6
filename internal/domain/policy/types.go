// Package policy contains domain types for the optional operator-defined
// deny rules evaluated after the role checks. Rules can only narrow what
// the gate already allowed, never widen it.
package policy

import "context"

// Rule defines one deny rule. A rule applies when its Match glob matches the
// action key and its CEL Condition (if any) evaluates to true; a matching
// rule drops the action.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string
	// Name is a human-readable name, used in logs.
	Name string
	// Priority determines evaluation order (lower = earlier).
	Priority int
	// Match is a glob pattern over the action key (e.g. "cancel_*", "*").
	// Empty matches everything.
	Match string
	// Condition is a CEL expression over the evaluation context. Empty
	// means the rule applies on glob match alone.
	Condition string
}

// EvaluationContext is the variable set a rule condition sees.
type EvaluationContext struct {
	// Role is the current user role ("" = anonymous).
	Role string
	// Key is the action key (canonical id or unrecognized token).
	Key string
	// Recognized is true when the key is a canonical action.
	Recognized bool
	// Method and Endpoint describe the resolved request.
	Method   string
	Endpoint string
	// Resolved entity ids (0 = absent).
	BinderID int64
	ChargeID int64
	ClientID int64
}

// Decision is the outcome of rule evaluation for one action.
type Decision struct {
	// Denied is true when a rule matched and the action must be dropped.
	Denied bool
	// RuleID and RuleName identify the matching rule.
	RuleID   string
	RuleName string
}

// Engine evaluates resolved actions against the loaded rules.
type Engine interface {
	// Evaluate returns the decision for one action. An empty rule set
	// always returns an allow (zero) decision.
	Evaluate(ctx context.Context, evalCtx EvaluationContext) (Decision, error)
}

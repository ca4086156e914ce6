// Package service contains the application services: the resolution
// pipeline and the deny-rule engine.
package service

import (
	"context"
	"fmt"
	"path"
	"sort"

	"github.com/google/cel-go/cel"

	celeval "github.com/matanmalka1/actiongate/internal/adapter/outbound/cel"
	"github.com/matanmalka1/actiongate/internal/domain/policy"
)

// CompiledRule is a deny rule with its condition pre-compiled.
type CompiledRule struct {
	ID       string
	Name     string
	Priority int
	Match    string
	// Program is nil when the rule has no condition (glob match alone).
	Program cel.Program
}

// RuleService evaluates resolved actions against operator-defined deny
// rules. Rules are compiled once at construction; evaluation is pure and
// safe for concurrent use.
type RuleService struct {
	evaluator *celeval.Evaluator
	rules     []CompiledRule
}

// Compile-time check that RuleService implements policy.Engine.
var _ policy.Engine = (*RuleService)(nil)

// NewRuleService compiles the given rules, ordered by priority. An empty
// rule list yields an engine that allows everything.
func NewRuleService(rules []policy.Rule) (*RuleService, error) {
	evaluator, err := celeval.NewEvaluator()
	if err != nil {
		return nil, err
	}

	compiled := make([]CompiledRule, 0, len(rules))
	for _, r := range rules {
		cr := CompiledRule{ID: r.ID, Name: r.Name, Priority: r.Priority, Match: r.Match}
		if r.Condition != "" {
			if err := evaluator.ValidateExpression(r.Condition); err != nil {
				return nil, fmt.Errorf("rule %q: %w", r.ID, err)
			}
			prg, err := evaluator.Compile(r.Condition)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", r.ID, err)
			}
			cr.Program = prg
		}
		compiled = append(compiled, cr)
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority < compiled[j].Priority
	})

	return &RuleService{evaluator: evaluator, rules: compiled}, nil
}

// Evaluate returns a deny decision for the first matching rule, or the zero
// (allow) decision when no rule matches.
func (s *RuleService) Evaluate(ctx context.Context, evalCtx policy.EvaluationContext) (policy.Decision, error) {
	for _, r := range s.rules {
		if !globMatch(r.Match, evalCtx.Key) {
			continue
		}
		if r.Program != nil {
			ok, err := s.evaluator.Evaluate(ctx, r.Program, evalCtx)
			if err != nil {
				return policy.Decision{}, fmt.Errorf("rule %q: %w", r.ID, err)
			}
			if !ok {
				continue
			}
		}
		return policy.Decision{Denied: true, RuleID: r.ID, RuleName: r.Name}, nil
	}
	return policy.Decision{}, nil
}

// globMatch matches an action key against a rule glob. Empty pattern
// matches everything; a malformed pattern matches nothing.
func globMatch(pattern, key string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	ok, err := path.Match(pattern, key)
	return err == nil && ok
}

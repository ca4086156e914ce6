// Package cel provides the CEL expression evaluator for deny-rule
// conditions.
package cel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/matanmalka1/actiongate/internal/domain/policy"
)

// maxExpressionLength is the maximum allowed length for rule conditions.
const maxExpressionLength = 1024

// maxCostBudget is the CEL runtime cost limit.
const maxCostBudget = 100_000

// maxNestingDepth is the maximum allowed parenthesis/bracket nesting depth.
const maxNestingDepth = 50

// evalTimeout bounds a single condition evaluation.
const evalTimeout = 5 * time.Second

// Evaluator compiles and evaluates CEL conditions for deny rules.
type Evaluator struct {
	env *cel.Env
}

// NewEnvironment creates a CEL environment exposing the rule evaluation
// context: role, key, recognized, method, endpoint and the entity ids.
func NewEnvironment() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("role", cel.StringType),
		cel.Variable("key", cel.StringType),
		cel.Variable("recognized", cel.BoolType),
		cel.Variable("method", cel.StringType),
		cel.Variable("endpoint", cel.StringType),
		cel.Variable("binder_id", cel.IntType),
		cel.Variable("charge_id", cel.IntType),
		cel.Variable("client_id", cel.IntType),
	)
}

// NewEvaluator creates an Evaluator with the rule environment.
func NewEvaluator() (*Evaluator, error) {
	env, err := NewEnvironment()
	if err != nil {
		return nil, fmt.Errorf("create rule environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Compile parses and type-checks a condition, returning a compiled program.
func (e *Evaluator) Compile(expression string) (cel.Program, error) {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation failed: %w", issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("expression must evaluate to bool, got %v", ast.OutputType())
	}
	prg, err := e.env.Program(ast,
		cel.EvalOptions(cel.OptOptimize),
		cel.CostLimit(maxCostBudget),
	)
	if err != nil {
		return nil, fmt.Errorf("program creation failed: %w", err)
	}
	return prg, nil
}

// ValidateExpression checks a condition is syntactically valid and within
// the safety limits (length, nesting depth).
func (e *Evaluator) ValidateExpression(expr string) error {
	if expr == "" {
		return errors.New("expression is empty")
	}
	if len(expr) > maxExpressionLength {
		return fmt.Errorf("expression too long: %d characters (max %d)", len(expr), maxExpressionLength)
	}
	if err := validateNesting(expr); err != nil {
		return err
	}
	if _, err := e.Compile(expr); err != nil {
		return fmt.Errorf("invalid CEL expression: %w", err)
	}
	return nil
}

// validateNesting caps parenthesis/bracket/brace nesting depth.
func validateNesting(expr string) error {
	var depth, maxDepth int
	for _, ch := range expr {
		switch ch {
		case '(', '[', '{':
			depth++
			if depth > maxDepth {
				maxDepth = depth
			}
		case ')', ']', '}':
			depth--
		}
	}
	if maxDepth > maxNestingDepth {
		return fmt.Errorf("expression nesting too deep: %d levels (max %d)", maxDepth, maxNestingDepth)
	}
	return nil
}

// Evaluate runs a compiled condition against the evaluation context.
func (e *Evaluator) Evaluate(ctx context.Context, prg cel.Program, evalCtx policy.EvaluationContext) (bool, error) {
	activation := map[string]any{
		"role":       evalCtx.Role,
		"key":        evalCtx.Key,
		"recognized": evalCtx.Recognized,
		"method":     evalCtx.Method,
		"endpoint":   evalCtx.Endpoint,
		"binder_id":  evalCtx.BinderID,
		"charge_id":  evalCtx.ChargeID,
		"client_id":  evalCtx.ClientID,
	}

	evalCtxWithTimeout, cancel := context.WithTimeout(ctx, evalTimeout)
	defer cancel()

	result, _, err := prg.ContextEval(evalCtxWithTimeout, activation)
	if err != nil {
		return false, fmt.Errorf("evaluation failed: %w", err)
	}
	boolResult, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return a boolean, got %T", result.Value())
	}
	return boolResult, nil
}

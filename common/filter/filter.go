// Package filter evaluates CEL expressions against timeline events, so
// dashboard clients can narrow a timeline with expressions like
// `event.kind == "ownership.granted" && attrs.level == 10`.
package filter

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/apperr"
	"github.com/jasonlin0815/three-kingdoms-strategy-sub002/common/models"
)

// Evaluator evaluates event filter expressions with a compiled-program cache
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new filter evaluator with caching
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("event", cel.DynType),
		cel.Variable("attrs", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Match reports whether the event satisfies the expression. A compile error
// is a validation error: the expression came from the client.
func (e *Evaluator) Match(expr string, event *models.AllianceEvent) (bool, error) {
	prg, err := e.program(expr)
	if err != nil {
		return false, err
	}

	attrs := event.Attrs
	if attrs == nil {
		attrs = map[string]interface{}{}
	}

	out, _, err := prg.Eval(map[string]interface{}{
		"event": map[string]interface{}{
			"kind":        event.Kind,
			"actor":       event.Actor,
			"member_name": event.MemberName,
			"occurred_at": event.OccurredAt,
		},
		"attrs": attrs,
	})
	if err != nil {
		return false, apperr.Validation(apperr.CodeInvalidFilter,
			fmt.Sprintf("filter evaluation failed: %v", err))
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, apperr.Validation(apperr.CodeInvalidFilter,
			fmt.Sprintf("filter must evaluate to a boolean, got %T", out.Value()))
	}

	return result, nil
}

// Check compiles an expression without evaluating it, for upfront request
// validation.
func (e *Evaluator) Check(expr string) error {
	_, err := e.program(expr)
	return err
}

// program returns the compiled program for an expression, compiling and
// caching on first use.
func (e *Evaluator) program(expr string) (cel.Program, error) {
	e.mu.RLock()
	prg, exists := e.cache[expr]
	e.mu.RUnlock()

	if exists {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, apperr.Validation(apperr.CodeInvalidFilter,
			fmt.Sprintf("invalid filter expression: %v", issues.Err()))
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL program: %w", err)
	}

	e.mu.Lock()
	e.cache[expr] = prg
	e.mu.Unlock()

	return prg, nil
}

// CacheSize returns the number of cached expressions
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

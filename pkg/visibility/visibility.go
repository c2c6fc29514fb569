// Package visibility computes which fields of a form are shown for a given
// snapshot of submitted values.
package visibility

import (
	"fmt"
	"sort"

	"github.com/goliatone/go-formcompiler/internal/graph"
	"github.com/goliatone/go-formcompiler/pkg/definition"
)

// Map holds the visibility of every field, keyed by field id. Each Compute
// call returns a fresh Map.
type Map map[string]bool

// Hidden lists the ids of hidden fields in sorted order.
func (m Map) Hidden() []string {
	var out []string
	for id, shown := range m {
		if !shown {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Context carries what an Evaluator needs to decide a single condition.
type Context struct {
	// Field is the conditioned field.
	Field definition.FieldDefinition
	// Target is the field the condition points at.
	Target definition.FieldDefinition
	// Value is the current value submitted under Target.Name; nil when absent.
	Value any
	// Values is the whole snapshot, keyed by field name.
	Values map[string]any
}

// Evaluator decides whether a condition holds.
type Evaluator interface {
	Eval(cond definition.Condition, ctx Context) (bool, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(cond definition.Condition, ctx Context) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(cond definition.Condition, ctx Context) (bool, error) {
	return fn(cond, ctx)
}

// DefaultEvaluator compares the target's current value with the condition
// value using definition.Matches.
type DefaultEvaluator struct{}

// Eval implements Evaluator.
func (DefaultEvaluator) Eval(cond definition.Condition, ctx Context) (bool, error) {
	if !cond.Operator.Valid() {
		return false, fmt.Errorf("visibility: field %q uses unsupported operator %q", ctx.Field.ID, cond.Operator)
	}
	return definition.Matches(cond.Operator, ctx.Value, cond.Value), nil
}

// Option customises an Engine.
type Option func(*Engine)

// WithEvaluator swaps the condition evaluator.
func WithEvaluator(e Evaluator) Option {
	return func(engine *Engine) {
		if e != nil {
			engine.evaluator = e
		}
	}
}

// Engine evaluates field conditions in dependency order.
type Engine struct {
	evaluator Evaluator
}

// NewEngine constructs an Engine using DefaultEvaluator unless overridden.
func NewEngine(options ...Option) *Engine {
	e := &Engine{evaluator: DefaultEvaluator{}}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e
}

// Compute returns the visibility of every field in def, keyed by field id,
// for values keyed by field name.
//
// A field without a condition is visible. A conditioned field is visible when
// its target is visible and the condition holds against the target's current
// value. order must list targets before their dependents (see
// schema.Schema.Order); when empty it is derived from def, which fails for
// cyclic definitions.
func (e *Engine) Compute(def definition.FormDefinition, order []string, values map[string]any) (Map, error) {
	if len(order) == 0 {
		plan, err := graph.Analyze(def)
		if err != nil {
			return nil, err
		}
		order = plan.Order
	}

	index := def.IndexByID()
	result := make(Map, len(def.Fields))

	visit := func(id string) error {
		i, ok := index[id]
		if !ok {
			return fmt.Errorf("visibility: evaluation order names unknown field %q", id)
		}
		if _, done := result[id]; done {
			return nil
		}
		shown, err := e.fieldVisible(def, index, def.Fields[i], values, result)
		if err != nil {
			return err
		}
		result[id] = shown
		return nil
	}

	for _, id := range order {
		if err := visit(id); err != nil {
			return nil, err
		}
	}
	// Fields left out of a partial order are evaluated in declaration order.
	for _, field := range def.Fields {
		if err := visit(field.ID); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (e *Engine) fieldVisible(def definition.FormDefinition, index map[string]int, field definition.FieldDefinition, values map[string]any, result Map) (bool, error) {
	cond := field.Condition
	if cond == nil {
		return true, nil
	}

	i, ok := index[cond.TargetFieldID]
	if !ok {
		return false, fmt.Errorf("visibility: field %q depends on unknown field %q", field.ID, cond.TargetFieldID)
	}
	targetShown, evaluated := result[cond.TargetFieldID]
	if !evaluated {
		return false, fmt.Errorf("visibility: field %q evaluated before its target %q", field.ID, cond.TargetFieldID)
	}
	if !targetShown {
		return false, nil
	}

	target := def.Fields[i]
	return e.evaluator.Eval(*cond, Context{
		Field:  field,
		Target: target,
		Value:  values[target.Name],
		Values: values,
	})
}

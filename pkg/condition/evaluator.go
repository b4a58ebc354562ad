// Package condition decides field visibility from condition strings bound
// to each field's declared dependencies.
package condition

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// State is the visibility of a conditional field.
type State int

const (
	Visible State = iota
	Hidden
)

func (s State) String() string {
	if s == Hidden {
		return "hidden"
	}
	return "visible"
}

// Transition records a change of state for one field.
type Transition struct {
	Field string
	From  State
	To    State
}

// Error reports a condition that could not be parsed or evaluated. The
// field keeps its previous state.
type Error struct {
	Field     string
	Condition string
	Err       error
}

func (e *Error) Error() string {
	return fmt.Sprintf("condition: field %q: %q: %v", e.Field, e.Condition, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type entry struct {
	control schema.Control
	expr    *Expr
	err     error
}

// Evaluator tracks the visibility of every conditional field of one
// structure level.
type Evaluator struct {
	order      []string
	entries    map[string]*entry
	dependents map[string][]string
	states     map[string]State
}

// New compiles the conditions of s. Compile errors are kept and reported
// whenever the field is evaluated.
func New(s *schema.Structure) *Evaluator {
	e := &Evaluator{
		entries:    make(map[string]*entry),
		dependents: make(map[string][]string),
		states:     make(map[string]State),
	}
	if s == nil {
		return e
	}
	for _, control := range s.Controls {
		if !control.Conditional() {
			continue
		}
		ent := &entry{control: control}
		ent.expr, ent.err = Parse(control.Condition)
		if ent.err == nil && ent.expr.MaxPlaceholder() >= len(control.Dependencies) {
			ent.err = fmt.Errorf("placeholder ${%d} is outside the %d declared dependencies", ent.expr.MaxPlaceholder(), len(control.Dependencies))
		}
		e.entries[control.Name] = ent
		e.order = append(e.order, control.Name)
		e.states[control.Name] = Visible
		for _, dep := range control.Dependencies {
			if !contains(e.dependents[dep], control.Name) {
				e.dependents[dep] = append(e.dependents[dep], control.Name)
			}
		}
	}
	return e
}

// Init evaluates every conditional field against data and returns the
// resulting state of each as a transition from Visible. Fields whose
// condition fails stay Visible and are reported in the joined error.
func (e *Evaluator) Init(data map[string]any) ([]Transition, error) {
	var (
		out  []Transition
		errs []error
	)
	for _, name := range e.order {
		state, err := e.evaluate(name, data)
		if err != nil {
			errs = append(errs, err)
			state = Visible
		}
		e.states[name] = state
		out = append(out, Transition{Field: name, From: Visible, To: state})
	}
	return out, errors.Join(errs...)
}

// Changed re-evaluates the fields depending on field and returns the
// transitions that actually changed state, in declaration order.
func (e *Evaluator) Changed(field string, data map[string]any) ([]Transition, error) {
	var (
		out  []Transition
		errs []error
	)
	for _, name := range e.dependents[field] {
		next, err := e.evaluate(name, data)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		prev := e.states[name]
		if prev == next {
			continue
		}
		e.states[name] = next
		out = append(out, Transition{Field: name, From: prev, To: next})
	}
	return out, errors.Join(errs...)
}

// State returns the current state of field. Unconditional fields are
// always Visible.
func (e *Evaluator) State(field string) State {
	return e.states[field]
}

// Hidden lists the fields currently hidden.
func (e *Evaluator) Hidden() []string {
	var out []string
	for _, name := range e.order {
		if e.states[name] == Hidden {
			out = append(out, name)
		}
	}
	return out
}

// Dependents lists the conditional fields that read field.
func (e *Evaluator) Dependents(field string) []string {
	return append([]string(nil), e.dependents[field]...)
}

func (e *Evaluator) evaluate(name string, data map[string]any) (State, error) {
	ent := e.entries[name]
	if ent == nil {
		return Visible, nil
	}
	if ent.err != nil {
		return Visible, &Error{Field: name, Condition: ent.control.Condition, Err: ent.err}
	}
	ok, err := ent.expr.Eval(Bind(ent.control.Dependencies, data))
	if err != nil {
		return Visible, &Error{Field: name, Condition: ent.control.Condition, Err: err}
	}
	if ok {
		return Visible, nil
	}
	return Hidden, nil
}

// Evaluate checks one control against data without tracking state.
func Evaluate(control schema.Control, data map[string]any) (bool, error) {
	expr, err := Parse(control.Condition)
	if err != nil {
		return false, &Error{Field: control.Name, Condition: control.Condition, Err: err}
	}
	ok, err := expr.Eval(Bind(control.Dependencies, data))
	if err != nil {
		return false, &Error{Field: control.Name, Condition: control.Condition, Err: err}
	}
	return ok, nil
}

// Bind returns the string value of each dependency in data. Lists are
// joined with commas and missing values bind to "".
func Bind(dependencies []string, data map[string]any) []string {
	out := make([]string, len(dependencies))
	for i, dep := range dependencies {
		out[i] = stringify(data[dep])
	}
	return out
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, stringify(item))
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

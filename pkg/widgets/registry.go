package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetSignature = "signature"
	WidgetScanner   = "scanner"
)

// Matcher decides whether a widget should capture the supplied control.
type Matcher func(control schema.Control) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	factory  Factory
	order    int
}

// Registry selects capture widgets for controls based on explicit layout
// hints or registered matchers. Higher priority wins; ties fall back to
// registration order. An empty registry never resolves a widget.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget with the provided name, priority, matcher and
// factory. Callers should avoid duplicate names; the latest registration
// wins when a name is looked up directly.
func (r *Registry) Register(name string, priority int, matcher Matcher, factory Factory) {
	if r == nil || matcher == nil || factory == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.rules = append(r.rules, rule{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		factory:  factory,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for a control. A non-empty hint from the
// layout is honoured before matcher evaluation when it names a registered
// widget.
func (r *Registry) Resolve(control schema.Control, hint string) (string, bool) {
	if r == nil {
		return "", false
	}
	if hint = strings.TrimSpace(hint); hint != "" {
		if _, ok := r.Factory(hint); ok {
			return hint, true
		}
	}
	r.mu.RLock()
	if len(r.rules) == 0 {
		r.mu.RUnlock()
		return "", false
	}
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()
	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	for _, entry := range rules {
		if entry.match(control) {
			return entry.name, true
		}
	}
	return "", false
}

// Factory returns the factory registered under name.
func (r *Registry) Factory(name string) (Factory, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.rules) - 1; i >= 0; i-- {
		if r.rules[i].name == name {
			return r.rules[i].factory, true
		}
	}
	return nil, false
}

// New instantiates the named widget for control.
func (r *Registry) New(name string, control schema.Control) (Widget, bool) {
	factory, ok := r.Factory(name)
	if !ok {
		return nil, false
	}
	return factory(control), true
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetSignature, 90, func(control schema.Control) bool {
		if control.Type != schema.TypeBinary {
			return false
		}
		return strings.Contains(strings.ToLower(control.Format), "signature")
	}, func(control schema.Control) Widget {
		return NewSignature(control.Name)
	})

	r.Register(WidgetScanner, 80, func(control schema.Control) bool {
		if control.Type != schema.TypeText {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(control.Format)) {
		case "qr", "barcode", "scan", "scanner":
			return true
		}
		return false
	}, func(control schema.Control) Widget {
		return NewScanner(control.Name)
	})
}

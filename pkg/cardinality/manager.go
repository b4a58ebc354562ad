package cardinality

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// Attribute and class names shared with the builder and renderers.
const (
	AttrTrigger  = "t"
	AttrManager  = "data-manager"
	AttrField    = "data-field"
	AttrElement  = "data-element"
	AttrRange    = "data-range"
	AttrConfig   = "data-config"
	AttrInstance = "data-instance"

	TriggerAdd    = "add"
	TriggerRemove = "remove"

	ClassInstance = "_instance"
)

var (
	// ErrNotManager is returned when a node is not a manager container.
	ErrNotManager = errors.New("cardinality: node is not a manager")
	// ErrUnknownInstance is returned when no instance has the given id.
	ErrUnknownInstance = errors.New("cardinality: unknown instance")
	// ErrLimitReached is returned when adding past the declared maximum.
	ErrLimitReached = errors.New("cardinality: instance limit reached")
)

// Payload is what the add trigger carries: the owning field, its range, the
// element each instance is built from and the builder config.
type Payload struct {
	Field   string
	Range   schema.Range
	Element layout.Element
	Config  map[string]string
}

// ManagerClass is the class of the manager container for field.
func ManagerClass(field string) string {
	return "_cardinality-manager[" + field + "]"
}

// NewManager creates a detached manager container with its add trigger.
func NewManager(t *tree.Tree, p Payload) (tree.NodeID, error) {
	container := t.Create(tree.KindContainer, "div")
	container.AddClass("_cardinality-manager", ManagerClass(p.Field))
	container.SetAttr(AttrManager, p.Field)

	trigger := t.Create(tree.KindButton, "button")
	trigger.SetAttr("type", "button")
	trigger.SetAttr(AttrTrigger, TriggerAdd)
	trigger.Text = "+"
	if err := EncodePayload(trigger, p); err != nil {
		return tree.None, err
	}
	if err := tree.Append(t, container.ID, trigger.ID); err != nil {
		return tree.None, err
	}
	if err := SyncTrigger(t, container.ID); err != nil {
		return tree.None, err
	}
	return container.ID, nil
}

// EncodePayload stores p in the attributes of the trigger node.
func EncodePayload(n *tree.Node, p Payload) error {
	element, err := json.Marshal(p.Element)
	if err != nil {
		return fmt.Errorf("cardinality: encode element: %w", err)
	}
	n.SetAttr(AttrField, p.Field)
	n.SetAttr(AttrElement, string(element))
	n.SetAttr(AttrRange, p.Range.String())
	if len(p.Config) > 0 {
		config, err := json.Marshal(p.Config)
		if err != nil {
			return fmt.Errorf("cardinality: encode config: %w", err)
		}
		n.SetAttr(AttrConfig, string(config))
	}
	return nil
}

// DecodePayload reads the payload back from a trigger node.
func DecodePayload(n *tree.Node) (Payload, error) {
	p := Payload{Field: n.Attr(AttrField)}
	if err := json.Unmarshal([]byte(n.Attr(AttrElement)), &p.Element); err != nil {
		return Payload{}, fmt.Errorf("cardinality: decode element: %w", err)
	}
	spec := schema.ParseCardinality(n.Attr(AttrRange))
	if spec.Kind != schema.CardinalityRange {
		return Payload{}, fmt.Errorf("cardinality: trigger for %q has invalid range %q", p.Field, n.Attr(AttrRange))
	}
	p.Range = spec.Range
	if raw := n.Attr(AttrConfig); raw != "" {
		if err := json.Unmarshal([]byte(raw), &p.Config); err != nil {
			return Payload{}, fmt.Errorf("cardinality: decode config: %w", err)
		}
	}
	return p, nil
}

// InstanceFunc builds one detached instance subtree from the payload.
type InstanceFunc func(p Payload) (tree.NodeID, error)

// Managers returns every manager container under from.
func Managers(t *tree.Tree, from tree.NodeID) []tree.NodeID {
	return tree.Find(t, from, isManager)
}

// Manager returns the manager container for field under from.
func Manager(t *tree.Tree, from tree.NodeID, field string) (tree.NodeID, bool) {
	return tree.First(t, from, tree.All(isManager, tree.ByAttr(AttrManager, field)))
}

func isManager(n *tree.Node) bool {
	return n.Kind == tree.KindContainer && n.Attr(AttrManager) != ""
}

// Trigger returns the add trigger of manager.
func Trigger(t *tree.Tree, manager tree.NodeID) (tree.NodeID, bool) {
	n := t.Node(manager)
	if n == nil || !isManager(n) {
		return tree.None, false
	}
	for _, child := range n.Children {
		if c := t.Node(child); c != nil && c.Attr(AttrTrigger) == TriggerAdd {
			return child, true
		}
	}
	return tree.None, false
}

// Instances lists the instance containers of manager in order.
func Instances(t *tree.Tree, manager tree.NodeID) []tree.NodeID {
	n := t.Node(manager)
	if n == nil {
		return nil
	}
	var out []tree.NodeID
	for _, child := range n.Children {
		if c := t.Node(child); c != nil && c.HasClass(ClassInstance) {
			out = append(out, child)
		}
	}
	return out
}

// Count is the number of instances added through manager.
func Count(t *tree.Tree, manager tree.NodeID) int {
	return len(Instances(t, manager))
}

// Full reports whether manager cannot take another instance.
func Full(t *tree.Tree, manager tree.NodeID) (bool, error) {
	trigger, ok := Trigger(t, manager)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrNotManager, manager)
	}
	rng, err := rangeOf(t.Node(trigger))
	if err != nil {
		return false, err
	}
	return rng.Bounded() && Count(t, manager) >= rng.Max-rng.Min, nil
}

// SyncTrigger hides the add trigger once the instance count reaches
// max-min and shows it otherwise. Unbounded managers never hide it.
func SyncTrigger(t *tree.Tree, manager tree.NodeID) error {
	trigger, ok := Trigger(t, manager)
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotManager, manager)
	}
	full, err := Full(t, manager)
	if err != nil {
		return err
	}
	return tree.SetHidden(t, trigger, full)
}

func rangeOf(n *tree.Node) (schema.Range, error) {
	spec := schema.ParseCardinality(n.Attr(AttrRange))
	if spec.Kind != schema.CardinalityRange {
		return schema.Range{}, fmt.Errorf("cardinality: invalid range %q", n.Attr(AttrRange))
	}
	return spec.Range, nil
}

// Add builds a new instance, inserts it right before the add trigger and
// updates the trigger visibility. It returns the instance container and its
// id.
func Add(t *tree.Tree, manager tree.NodeID, build InstanceFunc) (tree.NodeID, string, error) {
	trigger, ok := Trigger(t, manager)
	if !ok {
		return tree.None, "", fmt.Errorf("%w: %d", ErrNotManager, manager)
	}
	full, err := Full(t, manager)
	if err != nil {
		return tree.None, "", err
	}
	if full {
		return tree.None, "", ErrLimitReached
	}
	payload, err := DecodePayload(t.Node(trigger))
	if err != nil {
		return tree.None, "", err
	}

	content, err := build(payload)
	if err != nil {
		return tree.None, "", fmt.Errorf("cardinality: build instance of %q: %w", payload.Field, err)
	}

	id := uuid.NewString()
	wrapper := t.Create(tree.KindContainer, "div")
	wrapper.AddClass(ClassInstance)
	wrapper.SetAttr(AttrInstance, id)

	remove := t.Create(tree.KindButton, "button")
	remove.SetAttr("type", "button")
	remove.SetAttr(AttrTrigger, TriggerRemove)
	remove.SetAttr(AttrInstance, id)
	remove.Text = "-"

	for _, child := range []tree.NodeID{content, remove.ID} {
		if err := tree.Append(t, wrapper.ID, child); err != nil {
			return tree.None, "", err
		}
	}
	if err := tree.InsertBefore(t, trigger, wrapper.ID); err != nil {
		return tree.None, "", err
	}
	if err := SyncTrigger(t, manager); err != nil {
		return tree.None, "", err
	}
	if logger.IsVerbose() {
		logger.Verbose("cardinality: added instance " + id + " to " + payload.Field + " (" + strconv.Itoa(Count(t, manager)) + " added)")
	}
	return wrapper.ID, id, nil
}

// Instance returns the container of the instance with id.
func Instance(t *tree.Tree, id string) (tree.NodeID, bool) {
	return tree.First(t, t.Root(), tree.All(tree.ByClass(ClassInstance), tree.ByAttr(AttrInstance, id)))
}

// Remove deletes exactly the instance with id and returns its manager.
func Remove(t *tree.Tree, id string) (tree.NodeID, error) {
	instance, ok := Instance(t, id)
	if !ok {
		return tree.None, fmt.Errorf("%w: %s", ErrUnknownInstance, id)
	}
	manager := t.Node(instance).Parent
	if err := tree.Remove(t, instance); err != nil {
		return tree.None, err
	}
	if err := SyncTrigger(t, manager); err != nil {
		return tree.None, err
	}
	logger.Verbose("cardinality: removed instance", id)
	return manager, nil
}

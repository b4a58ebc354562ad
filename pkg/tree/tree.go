package tree

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnknownNode is returned when an id does not address a node.
	ErrUnknownNode = errors.New("tree: unknown node")
	// ErrAttached is returned when attaching a node that already has a parent.
	ErrAttached = errors.New("tree: node already attached")
	// ErrRoot is returned when an operation cannot apply to the root.
	ErrRoot = errors.New("tree: operation not allowed on root")
	// ErrCycle is returned when a node would become its own descendant.
	ErrCycle = errors.New("tree: node cannot contain itself")
)

// Tree owns every node of one form. It is not safe for concurrent use; the
// form serialises access.
type Tree struct {
	nodes map[NodeID]*Node
	root  NodeID
	next  NodeID
}

// New returns a tree holding only a root node.
func New() *Tree {
	t := &Tree{nodes: make(map[NodeID]*Node)}
	t.root = t.Create(KindRoot, "form").ID
	return t
}

// Root returns the root id.
func (t *Tree) Root() NodeID {
	return t.root
}

// Node returns the node for id or nil.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil {
		return nil
	}
	return t.nodes[id]
}

// Len reports the number of nodes, detached ones included.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Create allocates a detached node.
func (t *Tree) Create(kind Kind, tag string) *Node {
	t.next++
	n := &Node{ID: t.next, Kind: kind, Tag: tag}
	t.nodes[n.ID] = n
	return n
}

// Clone returns a deep copy. NodeIDs are preserved.
func (t *Tree) Clone() *Tree {
	out := &Tree{nodes: make(map[NodeID]*Node, len(t.nodes)), root: t.root, next: t.next}
	for id, n := range t.nodes {
		out.nodes[id] = n.clone()
	}
	return out
}

func (t *Tree) lookup(id NodeID) (*Node, error) {
	n := t.Node(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	return n, nil
}

// Append attaches the detached node child as the last child of parent.
func Append(t *Tree, parent, child NodeID) error {
	p, c, err := attachable(t, parent, child)
	if err != nil {
		return err
	}
	p.Children = append(p.Children, child)
	c.Parent = parent
	return nil
}

// InsertBefore attaches the detached node child right before anchor.
func InsertBefore(t *Tree, anchor, child NodeID) error {
	a, err := t.lookup(anchor)
	if err != nil {
		return err
	}
	if a.Parent == None {
		return fmt.Errorf("tree: insert before detached node %d: %w", anchor, ErrRoot)
	}
	p, c, err := attachable(t, a.Parent, child)
	if err != nil {
		return err
	}
	idx := slices.Index(p.Children, anchor)
	p.Children = slices.Insert(p.Children, idx, child)
	c.Parent = p.ID
	return nil
}

func attachable(t *Tree, parent, child NodeID) (*Node, *Node, error) {
	p, err := t.lookup(parent)
	if err != nil {
		return nil, nil, err
	}
	c, err := t.lookup(child)
	if err != nil {
		return nil, nil, err
	}
	if child == t.root {
		return nil, nil, ErrRoot
	}
	if c.Parent != None {
		return nil, nil, fmt.Errorf("%w: %d", ErrAttached, child)
	}
	if Contains(t, child, parent) {
		return nil, nil, ErrCycle
	}
	return p, c, nil
}

// Remove detaches id from its parent and deletes it with all descendants.
func Remove(t *Tree, id NodeID) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	if id == t.root {
		return ErrRoot
	}
	if p := t.Node(n.Parent); p != nil {
		p.Children = slices.DeleteFunc(p.Children, func(c NodeID) bool { return c == id })
	}
	Walk(t, id, func(d *Node) bool {
		delete(t.nodes, d.ID)
		return true
	})
	return nil
}

// ReplaceChildren removes the current children of id and attaches the
// detached nodes children in order.
func ReplaceChildren(t *Tree, id NodeID, children ...NodeID) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	for _, old := range slices.Clone(n.Children) {
		if slices.Contains(children, old) {
			n.Children = slices.DeleteFunc(n.Children, func(c NodeID) bool { return c == old })
			t.nodes[old].Parent = None
			continue
		}
		if err := Remove(t, old); err != nil {
			return err
		}
	}
	for _, child := range children {
		if err := Append(t, id, child); err != nil {
			return err
		}
	}
	return nil
}

// SetHidden toggles the hidden flag of id.
func SetHidden(t *Tree, id NodeID, hidden bool) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	n.Hidden = hidden
	return nil
}

// SetText replaces the text of id.
func SetText(t *Tree, id NodeID, text string) error {
	n, err := t.lookup(id)
	if err != nil {
		return err
	}
	n.Text = text
	return nil
}

// Walk visits from and its descendants in document order. Returning false
// from fn skips the children of the visited node.
func Walk(t *Tree, from NodeID, fn func(*Node) bool) {
	n := t.Node(from)
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, child := range slices.Clone(n.Children) {
		Walk(t, child, fn)
	}
}

// Find returns every node under from, from included, that matches.
func Find(t *Tree, from NodeID, match func(*Node) bool) []NodeID {
	var out []NodeID
	Walk(t, from, func(n *Node) bool {
		if match(n) {
			out = append(out, n.ID)
		}
		return true
	})
	return out
}

// First returns the first matching node under from in document order.
func First(t *Tree, from NodeID, match func(*Node) bool) (NodeID, bool) {
	found := None
	Walk(t, from, func(n *Node) bool {
		if found != None {
			return false
		}
		if match(n) {
			found = n.ID
			return false
		}
		return true
	})
	return found, found != None
}

// Closest returns id or its nearest ancestor that matches.
func Closest(t *Tree, id NodeID, match func(*Node) bool) (NodeID, bool) {
	for n := t.Node(id); n != nil; n = t.Node(n.Parent) {
		if match(n) {
			return n.ID, true
		}
	}
	return None, false
}

// Contains reports whether id is ancestor itself or one of its descendants.
func Contains(t *Tree, ancestor, id NodeID) bool {
	_, ok := Closest(t, id, func(n *Node) bool { return n.ID == ancestor })
	return ok
}

// Visible reports whether id and all of its ancestors are shown.
func Visible(t *Tree, id NodeID) bool {
	n := t.Node(id)
	if n == nil {
		return false
	}
	_, hidden := Closest(t, id, func(n *Node) bool { return n.Hidden })
	return !hidden
}

// Attached reports whether id is reachable from the root.
func Attached(t *Tree, id NodeID) bool {
	return Contains(t, t.root, id)
}

// ByKind matches nodes of any of the given kinds.
func ByKind(kinds ...Kind) func(*Node) bool {
	return func(n *Node) bool {
		return slices.Contains(kinds, n.Kind)
	}
}

// ByAttr matches nodes whose attribute key equals value.
func ByAttr(key, value string) func(*Node) bool {
	return func(n *Node) bool {
		return n.Attr(key) == value
	}
}

// ByClass matches nodes carrying class.
func ByClass(class string) func(*Node) bool {
	return func(n *Node) bool {
		return n.HasClass(class)
	}
}

// All matches nodes satisfying every matcher.
func All(matchers ...func(*Node) bool) func(*Node) bool {
	return func(n *Node) bool {
		for _, m := range matchers {
			if !m(n) {
				return false
			}
		}
		return true
	}
}

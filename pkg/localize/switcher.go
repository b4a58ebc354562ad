// Package localize fills the slot nodes of a tree with the texts of one
// language. Each slot kind has a resolver; callers can replace any of them.
package localize

import (
	"fmt"

	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// MissingTranslationHandler returns the text to show when lang has no text
// for slot. The default handler returns "".
type MissingTranslationHandler func(lang string, slot tree.SlotKey) string

func missingTranslationDefault(string, tree.SlotKey) string {
	return ""
}

// Context is what a resolver may read.
type Context struct {
	Structure *schema.Structure
	Language  string
	Units     map[string]string
	OnMissing MissingTranslationHandler
}

func (c Context) missing(slot tree.SlotKey) string {
	if c.OnMissing == nil {
		return missingTranslationDefault(c.Language, slot)
	}
	return c.OnMissing(c.Language, slot)
}

// Resolver fills one slot node.
type Resolver func(t *tree.Tree, slot *tree.Node, ctx Context) error

// Option configures a Switcher.
type Option func(*Switcher)

// WithResolver replaces the resolver for kind.
func WithResolver(kind tree.SlotKind, fn Resolver) Option {
	return func(s *Switcher) {
		if fn != nil {
			s.resolvers[kind] = fn
		}
	}
}

// Switcher resolves slots through a resolver registry keyed by slot kind.
type Switcher struct {
	resolvers map[tree.SlotKind]Resolver
}

// NewSwitcher returns a switcher with the default resolvers installed.
func NewSwitcher(options ...Option) *Switcher {
	s := &Switcher{resolvers: map[tree.SlotKind]Resolver{
		tree.SlotMetaName:        resolveMetaName,
		tree.SlotMetaDescription: resolveMetaDescription,
		tree.SlotCategory:        resolveCategory,
		tree.SlotControl:         resolveControl,
		tree.SlotEntry:           resolveEntry,
		tree.SlotUnit:            resolveUnit,
	}}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Switch resolves every slot under scope for ctx.Language. Running it twice
// with the same language yields the same tree.
func (s *Switcher) Switch(t *tree.Tree, scope tree.NodeID, ctx Context) error {
	slots := tree.Find(t, scope, func(n *tree.Node) bool {
		return n.Kind == tree.KindSlot && n.Slot != nil
	})
	for _, id := range slots {
		n := t.Node(id)
		if n == nil {
			continue
		}
		resolve, ok := s.resolvers[n.Slot.Kind]
		if !ok {
			logger.Verbose("localize: no resolver for slot", n.Slot.String())
			continue
		}
		if err := resolve(t, n, ctx); err != nil {
			return fmt.Errorf("localize: resolve %s: %w", n.Slot, err)
		}
	}
	return nil
}

package form

import (
	"context"

	"github.com/goliatone/go-formengine/pkg/capture"
	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/localize"
	"github.com/goliatone/go-formengine/pkg/overlay"
	"github.com/goliatone/go-formengine/pkg/tree"
	"github.com/goliatone/go-formengine/pkg/widgets"
)

// SubmitHandler receives the captured record of a valid submit.
type SubmitHandler func(ctx context.Context, data capture.Data) error

// Option customises a form.
type Option func(*config)

type config struct {
	showFlagged     bool
	defaultLanguage string
	onSubmit        SubmitHandler
	layout          *layout.Layout
	overlays        []overlay.Overlay
	preprocessor    overlay.Preprocessor
	widgets         *widgets.Registry
	resolvers       []localize.Option
	onMissing       localize.MissingTranslationHandler
}

func defaultConfig() config {
	return config{
		preprocessor: overlay.Passthrough,
		widgets:      widgets.NewRegistry(),
	}
}

// WithShowFlagged starts flagged fields revealed.
func WithShowFlagged(show bool) Option {
	return func(c *config) {
		c.showFlagged = show
	}
}

// WithDefaultLanguage sets the preferred language. It is matched against the
// structure's languages; see localize.ResolveLanguage.
func WithDefaultLanguage(lang string) Option {
	return func(c *config) {
		c.defaultLanguage = lang
	}
}

// WithSubmitHandler sets the callback Submit hands the captured record to.
func WithSubmitHandler(fn SubmitHandler) Option {
	return func(c *config) {
		c.onSubmit = fn
	}
}

// WithFormLayout overrides the layout passed to New.
func WithFormLayout(l layout.Layout) Option {
	return func(c *config) {
		c.layout = &l
	}
}

// WithOverlays supplies additional overlays. Unit overlays feed the unit
// parts; all of them are handed to the preprocessor.
func WithOverlays(overlays ...overlay.Overlay) Option {
	return func(c *config) {
		c.overlays = append(c.overlays, overlays...)
	}
}

// WithPreprocessor sets the collaborator that transforms prefill data before
// the tree is built.
func WithPreprocessor(p overlay.Preprocessor) Option {
	return func(c *config) {
		if p != nil {
			c.preprocessor = p
		}
	}
}

// WithWidgets replaces the capture widget registry. Pass nil to disable
// widgets entirely.
func WithWidgets(reg *widgets.Registry) Option {
	return func(c *config) {
		c.widgets = reg
	}
}

// WithResolver replaces the localization resolver for one slot kind.
func WithResolver(kind tree.SlotKind, fn localize.Resolver) Option {
	return func(c *config) {
		c.resolvers = append(c.resolvers, localize.WithResolver(kind, fn))
	}
}

// WithMissingTranslation sets the text used when a slot has no translation.
func WithMissingTranslation(fn localize.MissingTranslationHandler) Option {
	return func(c *config) {
		c.onMissing = fn
	}
}

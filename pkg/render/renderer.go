// Package render defines the renderer contract over form snapshots plus the
// helpers renderers share: a name registry, chrome translation, hidden
// fields and validation error mapping.
package render

import (
	"context"

	"github.com/goliatone/go-formengine/pkg/form"
)

// Renderer converts a form snapshot into a byte representation (HTML, text).
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, snap *form.Snapshot, options RenderOptions) ([]byte, error)
}

package form

import (
	"context"
	"fmt"

	"github.com/untillpro/goutils/logger"

	"github.com/goliatone/go-formengine/pkg/capture"
)

// Capture returns the current record, hidden fields included.
func (f *Form) Capture() capture.Data {
	f.mu.Lock()
	defer f.mu.Unlock()
	return capture.Capture(f.source())
}

// CaptureVisible returns the current record without hidden fields.
func (f *Form) CaptureVisible() capture.Data {
	f.mu.Lock()
	defer f.mu.Unlock()
	return capture.Visible(f.source())
}

// Validate checks the form and its live sub-forms and marks offending
// nodes. It returns nil or a *capture.ValidationError.
func (f *Form) Validate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return capture.Validate(f.source())
}

// Submit waits for pending file reads, validates, captures the visible
// record and hands it to the submit handler. A failed validation returns
// the *capture.ValidationError and the handler is not called.
func (f *Form) Submit(ctx context.Context) (capture.Data, error) {
	f.mu.Lock()
	if err := f.waitUploads(ctx); err != nil {
		f.mu.Unlock()
		return nil, fmt.Errorf("form: submit: %w", err)
	}
	if err := capture.Validate(f.source()); err != nil {
		f.mu.Unlock()
		logger.Verbose("form: submit blocked:", err)
		return nil, err
	}
	data := capture.Visible(f.source())
	handler := f.cfg.onSubmit
	f.mu.Unlock()

	if handler == nil {
		return data, nil
	}
	if err := handler(ctx, data); err != nil {
		return data, fmt.Errorf("form: submit handler: %w", err)
	}
	return data, nil
}

func (f *Form) waitUploads(ctx context.Context) error {
	if err := f.uploads.wait(ctx); err != nil {
		return err
	}
	for _, sub := range f.children() {
		if err := sub.waitUploads(ctx); err != nil {
			return err
		}
	}
	return nil
}

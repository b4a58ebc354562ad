// Package widgets provides capture widgets that stand in for, or add to, a
// plain input: a signature pad for Binary controls and a code scanner for
// Text controls. The hardware behind them is out of scope; the widgets only
// hold the content a device hands them.
package widgets

import (
	"sync"

	"github.com/goliatone/go-formengine/pkg/schema"
)

// Widget holds captured content. An empty Value means nothing was captured
// and the underlying input value is used instead.
type Widget interface {
	Name() string
	Field() string
	Value() string
	Clear()
}

// Factory creates a widget instance for one control.
type Factory func(control schema.Control) Widget

// Signature stores a drawn signature as a data URL.
type Signature struct {
	mu      sync.Mutex
	field   string
	content string
}

// NewSignature returns an empty signature pad bound to field.
func NewSignature(field string) *Signature {
	return &Signature{field: field}
}

func (s *Signature) Name() string  { return WidgetSignature }
func (s *Signature) Field() string { return s.field }

// SetContent stores the encoded drawing.
func (s *Signature) SetContent(dataURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.content = dataURL
}

func (s *Signature) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

func (s *Signature) Clear() {
	s.SetContent("")
}

// Scanner stores the last decoded code.
type Scanner struct {
	mu     sync.Mutex
	field  string
	result string
}

// NewScanner returns an empty scanner bound to field.
func NewScanner(field string) *Scanner {
	return &Scanner{field: field}
}

func (s *Scanner) Name() string  { return WidgetScanner }
func (s *Scanner) Field() string { return s.field }

// SetResult stores a decoded code.
func (s *Scanner) SetResult(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = code
}

func (s *Scanner) Value() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

func (s *Scanner) Clear() {
	s.SetResult("")
}

// Setter is implemented by widgets that accept content from a driver.
type Setter interface {
	Set(value string)
}

func (s *Signature) Set(value string) { s.SetContent(value) }
func (s *Scanner) Set(value string)   { s.SetResult(value) }

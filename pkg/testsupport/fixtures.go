// Package testsupport holds fixtures and golden helpers shared by package
// tests.
package testsupport

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formengine/pkg/layout"
	"github.com/goliatone/go-formengine/pkg/overlay"
	"github.com/goliatone/go-formengine/pkg/schema"
)

// Fixture names.
const (
	NameStructure      = "testdata/name.json"
	HouseholdStructure = "testdata/household.yaml"
	HouseholdLayout    = "testdata/household.layout.json"
	UnitOverlays       = "testdata/units.json"
)

//go:embed testdata
var fixtures embed.FS

// FS exposes the embedded fixtures.
func FS() fs.FS {
	return fixtures
}

// LoadStructure decodes a structure fixture, returning an error for callers
// managing setup outside of *testing.T.
func LoadStructure(path string) (*schema.Structure, error) {
	if path == "" {
		return nil, errors.New("testsupport: structure path is required")
	}
	return schema.LoadFS(fixtures, path)
}

// MustStructure decodes a structure fixture or fails the test.
func MustStructure(t testing.TB, path string) *schema.Structure {
	t.Helper()
	s, err := LoadStructure(path)
	if err != nil {
		t.Fatalf("load structure: %v", err)
	}
	return s
}

// MustLayout decodes a layout fixture or fails the test.
func MustLayout(t testing.TB, path string) layout.Layout {
	t.Helper()
	l, err := layout.LoadFS(fixtures, path)
	if err != nil {
		t.Fatalf("load layout: %v", err)
	}
	return l
}

// MustOverlays decodes an overlay fixture or fails the test.
func MustOverlays(t testing.TB, path string) []overlay.Overlay {
	t.Helper()
	data, err := fs.ReadFile(fixtures, path)
	if err != nil {
		t.Fatalf("read overlays: %v", err)
	}
	out, err := overlay.Decode(data, path)
	if err != nil {
		t.Fatalf("decode overlays: %v", err)
	}
	return out
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t testing.TB, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t testing.TB, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

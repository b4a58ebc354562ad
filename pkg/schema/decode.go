package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decode parses a structure document. JSON is tried first and YAML second.
func Decode(data []byte, source string) (*Structure, error) {
	var out Structure
	if err := DecodeDocument(data, source, &out); err != nil {
		return nil, err
	}
	if err := Validate(&out); err != nil {
		return nil, fmt.Errorf("schema: %s: %w", source, err)
	}
	return &out, nil
}

// LoadFile reads and decodes a structure from disk.
func LoadFile(path string) (*Structure, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Decode(data, path)
}

// LoadFS reads and decodes a structure from fsys.
func LoadFS(fsys fs.FS, path string) (*Structure, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("schema: read %s: %w", path, err)
	}
	return Decode(data, path)
}

// DecodeDocument parses data into out, trying JSON before YAML. Documents
// that look like JSON report the JSON error.
func DecodeDocument(data []byte, source string, out any) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("schema: file %s is empty", source)
	}

	jsonErr := json.Unmarshal(data, out)
	if jsonErr == nil {
		return nil
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return fmt.Errorf("schema: parse %s: %w", source, jsonErr)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("schema: parse %s: invalid JSON or YAML: %w", source, err)
	}
	return nil
}

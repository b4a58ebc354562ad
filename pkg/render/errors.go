package render

import (
	"errors"
	"strings"

	"github.com/goliatone/go-formengine/pkg/capture"
)

// ErrorMapping splits errors into field-level messages keyed by dotted
// capture paths and form-level messages.
type ErrorMapping struct {
	Fields map[string][]string
	Form   []string
}

// Empty reports whether the mapping carries no message.
func (m ErrorMapping) Empty() bool {
	return len(m.Fields) == 0 && len(m.Form) == 0
}

// MapError turns an error returned by form.Submit into an ErrorMapping. A
// *capture.ValidationError contributes one field entry per issue; anything
// else becomes a form-level message.
func MapError(err error) ErrorMapping {
	var mapping ErrorMapping
	if err == nil {
		return mapping
	}
	var invalid *capture.ValidationError
	if !errors.As(err, &invalid) {
		mapping.Form = normalizeMessages([]string{err.Error()})
		return mapping
	}
	mapping.Fields = make(map[string][]string)
	for _, issue := range invalid.Issues {
		msgs := normalizeMessages(append(mapping.Fields[issue.Field], issue.Message))
		if len(msgs) > 0 {
			mapping.Fields[issue.Field] = msgs
		}
	}
	if len(mapping.Fields) == 0 {
		mapping.Fields = nil
	}
	return mapping
}

// MergeFormErrors concatenates form-level messages, trimming whitespace and
// removing duplicates while preserving order.
func MergeFormErrors(existing []string, extras ...string) []string {
	combined := make([]string, 0, len(existing)+len(extras))
	combined = append(combined, existing...)
	combined = append(combined, extras...)
	return normalizeMessages(combined)
}

func normalizeMessages(messages []string) []string {
	if len(messages) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(messages))
	out := make([]string, 0, len(messages))
	for _, msg := range messages {
		trimmed := strings.TrimSpace(msg)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

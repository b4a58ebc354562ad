package capture

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formengine/pkg/schema"
	"github.com/goliatone/go-formengine/pkg/tree"
)

// Validation messages set on offending nodes.
const (
	MessageRequired = "required"
	MessageNumber   = "must be a number"
	MessageDate     = "must be a date (YYYY-MM-DD)"
)

// DateLayout is the ISO date format Date inputs must hold.
const DateLayout = "2006-01-02"

// Issue is one failed check. Field is dotted for sub-form fields.
type Issue struct {
	Field   string
	Node    tree.NodeID
	Message string
}

// ValidationError lists every issue found by Validate.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.Field+": "+issue.Message)
	}
	return fmt.Sprintf("capture: %d invalid field(s): %s", len(e.Issues), strings.Join(parts, "; "))
}

// Validate checks every visible input and marks offending nodes. Passing
// nodes get their marks cleared. It returns nil or a *ValidationError.
func Validate(src Source) error {
	issues := validate(src, "")
	if len(issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: issues}
}

func validate(src Source, prefix string) []Issue {
	s := src.Structure()
	if s == nil {
		return nil
	}
	t := src.Tree()
	var issues []Issue
	for _, control := range s.Controls {
		field := prefix + control.Name
		for _, container := range Containers(t, control.Name) {
			n, ok := Input(t, container, control.Name)
			if !ok {
				continue
			}
			n.Invalid, n.Message = false, ""
			if src.Hidden(control.Name) || !tree.Visible(t, container) {
				continue
			}
			if control.Type == schema.TypeReference {
				if sub, ok := src.Subform(n.ID); ok {
					issues = append(issues, validate(sub, field+".")...)
				}
				continue
			}
			if msg := check(src, control, container, n); msg != "" {
				n.Invalid, n.Message = true, msg
				issues = append(issues, Issue{Field: field, Node: n.ID, Message: msg})
			}
		}
	}
	return issues
}

func check(src Source, control schema.Control, container tree.NodeID, n *tree.Node) string {
	v := &valueVisitor{src: src, container: container}
	value, err := schema.Visit[any](control, v)
	if err != nil {
		return err.Error()
	}
	required := n.Required
	if n.Kind == tree.KindWidget {
		required = control.Mandatory()
	}
	if required && empty(value) {
		return MessageRequired
	}
	text, _ := value.(string)
	if text == "" {
		return ""
	}
	switch control.Type {
	case schema.TypeNumeric:
		if _, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err != nil {
			return MessageNumber
		}
	case schema.TypeDate:
		if _, err := time.Parse(DateLayout, strings.TrimSpace(text)); err != nil {
			return MessageDate
		}
	}
	return ""
}

func empty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	}
	return false
}

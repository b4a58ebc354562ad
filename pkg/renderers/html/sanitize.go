package html

import (
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	textPolicyOnce sync.Once
	textPolicy     *bluemonday.Policy

	classToken = regexp.MustCompile(`^[A-Za-z0-9_\-\[\]:.]+$`)
)

// sanitizeText cleans translated texts that may carry inline markup.
func sanitizeText(raw string) string {
	return strings.TrimSpace(textSanitizer().Sanitize(raw))
}

func textSanitizer() *bluemonday.Policy {
	textPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("b", "strong", "i", "em", "u", "br", "code", "small")
		policy.AllowAttrs("href").OnElements("a")
		policy.AllowStandardURLs()
		policy.RequireNoFollowOnLinks(true)
		textPolicy = policy
	})
	return textPolicy
}

// classTokens keeps the class tokens that are safe to emit unquoted inside
// a class attribute.
func classTokens(classes []string) []string {
	out := make([]string, 0, len(classes))
	for _, class := range classes {
		if classToken.MatchString(class) {
			out = append(out, class)
		}
	}
	return out
}

// styleText keeps css from closing its style element early.
func styleText(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

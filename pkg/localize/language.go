package localize

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Match finds preferred in available: an exact match first, then the first
// available language that starts with preferred.
func Match(available []string, preferred string) (string, bool) {
	preferred = strings.TrimSpace(preferred)
	if preferred == "" {
		return "", false
	}
	for _, lang := range available {
		if lang == preferred {
			return lang, true
		}
	}
	for _, lang := range available {
		if strings.HasPrefix(lang, preferred) {
			return lang, true
		}
	}
	return "", false
}

// ResolveLanguage picks the display language: the Match for preferred when
// there is one, otherwise the first available language.
func ResolveLanguage(available []string, preferred string) string {
	if lang, ok := Match(available, preferred); ok {
		return lang
	}
	if len(available) == 0 {
		return ""
	}
	return available[0]
}

// DisplayName returns the native name of a language code, or the code when
// it cannot be parsed.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.Self.Name(tag); name != "" {
		return name
	}
	return code
}

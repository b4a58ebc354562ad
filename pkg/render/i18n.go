package render

import (
	"errors"
	"strings"
)

// Chrome keys looked up through the Translator.
const (
	KeySubmit = "submit"
	KeyAdd    = "add"
	KeyRemove = "remove"
	KeyReveal = "reveal"
)

// ErrMissingTranslator is passed to the missing handler when no translator
// is configured.
var ErrMissingTranslator = errors.New("render: translator not configured")

// Translator resolves chrome strings for a language.
type Translator interface {
	Translate(lang, key string, args ...any) (string, error)
}

// MissingTranslationHandler returns the text used when key has no entry for
// lang. fallback is the text the form itself carries.
type MissingTranslationHandler func(lang, key, fallback string, err error) string

func missingTranslationDefault(_ string, key, fallback string, _ error) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

// Catalog is an in-memory Translator keyed by language then key.
type Catalog map[string]map[string]string

// Translate implements Translator.
func (c Catalog) Translate(lang, key string, _ ...any) (string, error) {
	if msg, ok := c[lang][key]; ok {
		return msg, nil
	}
	return "", errors.New("render: no " + lang + " translation for " + key)
}

// Translate resolves key for lang through opts, falling back to the handler.
func Translate(opts RenderOptions, lang, key, fallback string) string {
	onMissing := opts.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}
	if opts.Translator == nil {
		return onMissing(lang, key, fallback, ErrMissingTranslator)
	}
	msg, err := opts.Translator.Translate(lang, key)
	if err != nil || strings.TrimSpace(msg) == "" {
		return onMissing(lang, key, fallback, err)
	}
	return msg
}

// TemplateFuncs returns helpers for template engines. The helper signature
// is translate(lang, key, fallback).
func TemplateFuncs(opts RenderOptions) map[string]any {
	return map[string]any{
		"translate": func(lang, key, fallback string) string {
			return Translate(opts, lang, key, fallback)
		},
	}
}

package render

// RenderOptions describe per-request data that renderers can use to customise
// their output without touching the live form.
type RenderOptions struct {
	// Title overrides the document title. Renderers default to the translated
	// structure name.
	Title string
	// Standalone wraps the form in a complete document instead of a fragment.
	Standalone bool
	// Errors carries messages produced outside the tree, for example by a
	// failed submit handler. Field keys use the dotted capture paths.
	Errors ErrorMapping
	// Hidden inputs emitted at the top of the form.
	Hidden []HiddenField
	// Translator resolves renderer chrome such as the submit label. Form
	// texts come from the structure translations and are never looked up here.
	Translator Translator
	// OnMissing decides the chrome text when the translator has no entry.
	OnMissing MissingTranslationHandler
}

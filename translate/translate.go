// Package translate defines the translation contract used when rendering
// validation errors to user-facing text, together with a small catalog
// implementation that negotiates locales via golang.org/x/text.
//
// Two lookup domains are distinguished: message bodies are translated
// under the errors domain, while field and schema names are translated
// under the schemas domain. A consumer may supply a translator that
// handles one domain and leaves the other in the base language.
package translate

// Translation domains.
const (
	// DomainErrors is the lookup domain for validation message bodies.
	DomainErrors = "errors"
	// DomainSchemas is the lookup domain for field and schema names.
	DomainSchemas = "schemas"
)

// Func translates a message (or message template) under the given domain.
// The params carry the template's named parameters; a translator may use
// them to select grammatical forms, but placeholder interpolation itself
// is performed by the caller after the lookup.
//
// Implementations must fall back to returning the message unchanged when
// no translation exists. They are never called with a missing-translation
// obligation: returning the input is always acceptable.
type Func func(domain, message string, params map[string]any) string

// Identity is the default translator. It returns every message unchanged.
func Identity(domain, message string, params map[string]any) string {
	return message
}

// Safe wraps fn so that a nil translator or a panicking lookup falls back
// to Identity instead of propagating the failure.
func Safe(fn Func) Func {
	if fn == nil {
		return Identity
	}
	return func(domain, message string, params map[string]any) (out string) {
		defer func() {
			if recover() != nil {
				out = message
			}
		}()
		return fn(domain, message, params)
	}
}

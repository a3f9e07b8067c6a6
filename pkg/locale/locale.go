// Package locale resolves the language code exposed by the config and router.
package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Fallback is returned when no usable locale is configured.
const Fallback = "en"

// Provider returns a language code of at least two characters.
type Provider func() string

// LanguageCode derives the base language from the process environment,
// checking LC_ALL, LC_MESSAGES and LANG in that order.
func LanguageCode() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if code, ok := Parse(os.Getenv(key)); ok {
			return code
		}
	}
	return Fallback
}

// Parse extracts the base language from a POSIX locale ("de_DE.UTF-8") or a
// BCP 47 tag ("pt-BR").
func Parse(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if idx := strings.IndexAny(raw, ".@"); idx >= 0 {
		raw = raw[:idx]
	}
	if raw == "" || raw == "C" || raw == "POSIX" {
		return "", false
	}
	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		return "", false
	}
	base, conf := tag.Base()
	if conf == language.No {
		return "", false
	}
	code := base.String()
	if len(code) < 2 || code == "und" {
		return "", false
	}
	return code, true
}

// Static returns a Provider that always answers code, falling back when code
// is not a valid language.
func Static(code string) Provider {
	parsed, ok := Parse(code)
	if !ok {
		parsed = Fallback
	}
	return func() string { return parsed }
}

package l10ncache

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// DefaultLocale is used when no candidate locale is usable.
const DefaultLocale = "en_US"

// NormalizeLocale converts a language tag to the gettext form used in file
// names (e.g., "fr-fr" → "fr_FR", "pt-br" → "pt_BR", "de" → "de").
// Tags that do not parse are returned with "-" replaced by "_".
func NormalizeLocale(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}

	tag, err := language.Parse(strings.ReplaceAll(code, "_", "-"))
	if err != nil {
		return strings.ReplaceAll(code, "-", "_")
	}

	base, _ := tag.Base()
	region, confidence := tag.Region()
	if confidence != language.Exact {
		return base.String()
	}
	return base.String() + "_" + region.String()
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(locale string) string {
	return strings.ReplaceAll(locale, "_", "-")
}

// DetermineLocale returns the first candidate that is a valid language tag,
// normalized, or DefaultLocale.
func DetermineLocale(candidates ...string) string {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, err := language.Parse(strings.ReplaceAll(c, "_", "-")); err != nil {
			continue
		}
		return NormalizeLocale(c)
	}
	return DefaultLocale
}

// LanguageName returns the English name of a locale, or the code itself.
func LanguageName(locale string) string {
	tag, err := language.Parse(ToHTMLLang(locale))
	if err != nil {
		return locale
	}
	if name := display.English.Tags().Name(tag); name != "" {
		return name
	}
	return locale
}

// ScriptLocale extracts the locale from a script-translation file name.
// Files are named "{domain}-{locale}-{hash}.json", or "{locale}-{hash}.json"
// for the default domain. It returns "" when the name has no locale part.
func ScriptLocale(file, domain string) string {
	name := filepath.Base(file)
	if domain != "default" {
		if len(name) <= len(domain) {
			return ""
		}
		name = name[len(domain)+1:]
	}

	locale, _, ok := strings.Cut(name, "-")
	if !ok {
		return ""
	}
	return locale
}

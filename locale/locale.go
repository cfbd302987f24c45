// Package locale classifies and normalizes locale identifiers as they
// appear in file and directory names (en, zh_CN, pt-BR, ...).
//
// Classification is a pure predicate over the name shape: a two-letter
// ISO language code, a language+region pair joined by '_' or '-', or one
// of a short allow-list of well-known compound locales matched
// case-insensitively. Unrecognized names are simply not locales — there
// are no error cases.
package locale

import (
	"strings"

	"golang.org/x/text/language"
)

// wellKnown is the compound-locale allow-list, keyed by lowercase form.
var wellKnown = map[string]string{
	"zh_cn": "zh_CN",
	"zh_tw": "zh_TW",
	"zh_hk": "zh_HK",
	"en_us": "en_US",
	"en_gb": "en_GB",
	"ja_jp": "ja_JP",
	"ko_kr": "ko_KR",
}

// IsLocale reports whether name looks like a locale identifier.
func IsLocale(name string) bool {
	if name == "" {
		return false
	}
	if _, ok := wellKnown[strings.ToLower(name)]; ok {
		return true
	}
	lang, region, sep := split(name)
	if sep && !validRegion(region) {
		return false
	}
	return validLang(lang)
}

// Normalize returns the canonical form of a locale name: lowercase
// language, uppercase region, joined with '_'. Names that are not
// locales are returned unchanged.
func Normalize(name string) string {
	if !IsLocale(name) {
		return name
	}
	if canon, ok := wellKnown[strings.ToLower(name)]; ok {
		return canon
	}
	lang, region, sep := split(name)
	if !sep {
		return strings.ToLower(lang)
	}
	return strings.ToLower(lang) + "_" + strings.ToUpper(region)
}

// BuildCandidates returns lookup variants for a locale in preference
// order: the original spelling, the normalized form, the dash-joined
// variant, and the bare language code. Duplicates are removed while
// preserving order. Used for tolerant locale lookups where files on disk
// may spell the same locale differently.
func BuildCandidates(loc string) []string {
	if loc == "" {
		return nil
	}
	norm := Normalize(loc)
	var out []string
	seen := make(map[string]bool)
	add := func(v string) {
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	add(loc)
	add(norm)
	add(strings.ReplaceAll(norm, "_", "-"))
	if lang, _, sep := split(norm); sep {
		add(lang)
	}
	return out
}

// Language returns the bare language subtag of a locale name
// ("zh_CN" → "zh"). Non-locales are returned unchanged.
func Language(name string) string {
	if !IsLocale(name) {
		return name
	}
	lang, _, _ := split(Normalize(name))
	return lang
}

// split divides a name into language and region around the first '_' or
// '-'. sep reports whether a separator was present.
func split(name string) (lang, region string, sep bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == '_' || name[i] == '-' {
			return name[:i], name[i+1:], true
		}
	}
	return name, "", false
}

// validLang reports whether s is a two-letter ISO language code. The
// shape check keeps obvious non-locales ("js", "go" still pass on shape
// alone) honest by confirming the subtag against the registry.
func validLang(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := s[i] | 0x20 // tolerate uppercase
		if c < 'a' || c > 'z' {
			return false
		}
	}
	_, err := language.ParseBase(strings.ToLower(s))
	return err == nil
}

// validRegion reports whether s is a two-letter region code.
func validRegion(s string) bool {
	if len(s) != 2 {
		return false
	}
	for i := 0; i < 2; i++ {
		c := s[i] | 0x20
		if c < 'a' || c > 'z' {
			return false
		}
	}
	return true
}

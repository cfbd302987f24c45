// Package translation defines the shared data model for indexed
// translation resources: one Entry per leaf key-value pair, one File per
// scanned locale file.
//
// Entries are immutable once parsed — a file's whole entry set is
// replaced wholesale when the file is reparsed. Offsets point at the key
// token in the source file for navigation; for YAML and TOML they are
// line-accurate only (see the format packages).
package translation

import "strings"

// LocaleUnknown marks files whose locale could not be determined from
// their path. Such files are still indexed, never dropped.
const LocaleUnknown = "unknown"

// LocaleDefault is assigned to backend bundle files without a locale
// suffix (messages.properties).
const LocaleDefault = "default"

// Entry is a single leaf key-value pair found in one file.
type Entry struct {
	// Key is the fully-qualified dotted key, unique within a locale.
	Key string
	// Value is the raw string content; placeholders are not interpreted.
	Value string
	// Locale the entry belongs to (en, zh_CN, default, unknown).
	Locale string
	// Path of the owning file.
	Path string
	// Offset and Length locate the key token in the file. Best-effort
	// for formats without precise position tracking.
	Offset int
	Length int
}

// File is one scanned locale file and its current parse result.
type File struct {
	// Path is the file's location, relative to the project root.
	Path string
	// Locale detected from the path.
	Locale string
	// Module is the optional namespace-bearing file name component.
	Module string
	// BusinessUnit for multi-app monorepo layouts (views/<unit>/locales).
	BusinessUnit string
	// KeyPrefix is prepended to every relative key from this file.
	// Either empty or ends with a dot.
	KeyPrefix string
	// Entries maps relative key → entry. Entry.Key carries the prefix.
	Entries map[string]Entry
}

// FullKey returns the fully-qualified key for a key relative to this file.
func (f *File) FullKey(rel string) string {
	return f.KeyPrefix + rel
}

// fallbackChain is the fixed display-locale fallback order applied when
// no locale is requested explicitly.
var fallbackChain = []string{"zh_CN", "zh", "en"}

// PickLocale selects an entry from a locale→entry map using the fixed
// fallback chain zh_CN → zh → en → first available (alphabetical).
// Returns the zero Entry and false when the map is empty.
func PickLocale(byLocale map[string]Entry) (Entry, bool) {
	if len(byLocale) == 0 {
		return Entry{}, false
	}
	for _, loc := range fallbackChain {
		if e, ok := byLocale[loc]; ok {
			return e, true
		}
	}
	first := ""
	for loc := range byLocale {
		if first == "" || loc < first {
			first = loc
		}
	}
	return byLocale[first], true
}

// JoinKey joins dotted key segments, skipping empty parts.
func JoinKey(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ".")
}

// ParentKey returns the dotted path up to the final segment and the
// final segment itself. A single-segment key has an empty parent.
func ParentKey(key string) (parent, leaf string) {
	if i := strings.LastIndexByte(key, '.'); i >= 0 {
		return key[:i], key[i+1:]
	}
	return "", key
}

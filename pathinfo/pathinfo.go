// Package pathinfo derives a translation file's locale, module name,
// business unit, and dotted key prefix from its path.
//
// Path layouts in the wild are conventions, not a schema, so resolution
// is an ordered decision table: the first matching row wins. Adding a new
// layout convention means adding a row, not threading another branch
// through a conditional cascade. Files that match no row degrade to
// locale "unknown" with an empty prefix — they are still indexed.
package pathinfo

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/transkit/transkit/locale"
	"github.com/transkit/transkit/translation"
)

// LocaleDirs are the directory names recognized as locale containers,
// matched case-insensitively.
var LocaleDirs = []string{"locales", "locale", "i18n", "lang", "langs", "messages", "translations"}

// Info is the resolution result for one file path.
type Info struct {
	// Locale detected for the file ("unknown" when undeterminable,
	// "default" for suffix-less backend bundles).
	Locale string
	// Module is the namespace-bearing name component, usually the file's
	// base name. Empty when the base name itself is the locale.
	Module string
	// BusinessUnit holds the segments between a "views" ancestor and the
	// locale directory in monorepo layouts.
	BusinessUnit string
	// KeyPrefix is prepended to every key parsed from the file. Either
	// empty or dot-terminated.
	KeyPrefix string
}

// bundleRe matches backend message-bundle base names:
// messages_zh_CN, messages-en, message_pt-BR.
var bundleRe = regexp.MustCompile(`(?i)^(messages?)[_-]([a-z]{2}(?:[_-][a-z]{2})?)$`)

// IsLocaleDir reports whether a path segment names a locale container.
func IsLocaleDir(seg string) bool {
	for _, d := range LocaleDirs {
		if strings.EqualFold(seg, d) {
			return true
		}
	}
	return false
}

// Parse resolves path (relative to root) into an Info. It never fails:
// unresolvable layouts degrade to locale "unknown" and an empty prefix.
func Parse(path, root string) Info {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)

	segs := strings.Split(rel, "/")
	base := stem(segs[len(segs)-1])
	dirs := segs[:len(segs)-1]

	ctx := pathContext{base: base, dirs: dirs}
	ctx.localeDirIdx = -1
	for i, d := range dirs {
		if IsLocaleDir(d) {
			ctx.localeDirIdx = i // keep the last one
		}
	}
	if m := bundleRe.FindStringSubmatch(base); m != nil {
		ctx.bundleLocale = locale.Normalize(m[2])
		ctx.bundleContainer = m[1]
	}

	for _, row := range rules {
		if info, ok := row.apply(ctx); ok {
			info.finish()
			return info
		}
	}
	// Unreachable: the last row always matches.
	return Info{Locale: translation.LocaleUnknown}
}

// pathContext carries the pre-computed facts each rule sees.
type pathContext struct {
	base            string   // file base name without extension
	dirs            []string // directory segments
	localeDirIdx    int      // index of the last locale directory, -1 if none
	bundleLocale    string   // locale from a messages_<loc> base name
	bundleContainer string   // "messages"/"message" when base is a bundle
}

// after returns the directory segments between the locale directory and
// the file name.
func (c pathContext) after() []string {
	return c.dirs[c.localeDirIdx+1:]
}

// businessUnit extracts the segments between a "views" ancestor and the
// locale directory.
func (c pathContext) businessUnit() string {
	if c.localeDirIdx < 0 {
		return ""
	}
	for v := 0; v < c.localeDirIdx; v++ {
		if strings.EqualFold(c.dirs[v], "views") {
			return strings.Join(c.dirs[v+1:c.localeDirIdx], ".")
		}
	}
	return ""
}

// rule is one row of the resolution decision table.
type rule struct {
	name  string
	apply func(pathContext) (Info, bool)
}

// rules is evaluated in order; the first match wins.
var rules = []rule{
	// locales/en.json — base name is the locale, no module.
	{"locale-dir/locale-file", func(c pathContext) (Info, bool) {
		if c.localeDirIdx < 0 || len(c.after()) != 0 || !locale.IsLocale(c.base) {
			return Info{}, false
		}
		return Info{Locale: c.base, BusinessUnit: c.businessUnit()}, true
	}},

	// i18n/messages_zh_CN.properties — backend bundle directly in a
	// locale directory; container name carries no namespace.
	{"locale-dir/bundle-file", func(c pathContext) (Info, bool) {
		if c.localeDirIdx < 0 || len(c.after()) != 0 || c.bundleContainer == "" {
			return Info{}, false
		}
		return Info{Locale: c.bundleLocale, Module: c.bundleContainer, BusinessUnit: c.businessUnit()}, true
	}},

	// locales/common.json — module file with no locale anywhere.
	{"locale-dir/module-file", func(c pathContext) (Info, bool) {
		if c.localeDirIdx < 0 || len(c.after()) != 0 {
			return Info{}, false
		}
		return Info{Locale: translation.LocaleUnknown, Module: c.base, BusinessUnit: c.businessUnit()}, true
	}},

	// locales/en/common.json — one locale segment, base is the module.
	{"locale-dir/locale/module-file", func(c pathContext) (Info, bool) {
		if c.localeDirIdx < 0 {
			return Info{}, false
		}
		after := c.after()
		if len(after) != 1 || !locale.IsLocale(after[0]) {
			return Info{}, false
		}
		return Info{Locale: after[0], Module: c.base, BusinessUnit: c.businessUnit()}, true
	}},

	// locales/common/en.json — one non-locale segment, base is the locale.
	{"locale-dir/segment/locale-file", func(c pathContext) (Info, bool) {
		if c.localeDirIdx < 0 {
			return Info{}, false
		}
		if len(c.after()) != 1 || !locale.IsLocale(c.base) {
			return Info{}, false
		}
		return Info{Locale: c.base, BusinessUnit: c.businessUnit()}, true
	}},

	// locales/a/b/... — deeper nesting: first locale-shaped segment wins,
	// otherwise fall back to the base name.
	{"locale-dir/deep", func(c pathContext) (Info, bool) {
		if c.localeDirIdx < 0 {
			return Info{}, false
		}
		info := Info{Locale: translation.LocaleUnknown, BusinessUnit: c.businessUnit()}
		for _, seg := range c.after() {
			if locale.IsLocale(seg) {
				info.Locale = seg
				break
			}
		}
		if info.Locale == translation.LocaleUnknown && locale.IsLocale(c.base) {
			info.Locale = c.base
		} else {
			info.Module = c.base
		}
		return info, true
	}},

	// No locale directory at all: reversed segment + base name scan,
	// empty prefix. Covers resources/messages_en.properties bundles.
	{"no-locale-dir", func(c pathContext) (Info, bool) {
		if c.bundleContainer != "" {
			return Info{Locale: c.bundleLocale, Module: c.bundleContainer}, true
		}
		if locale.IsLocale(c.base) {
			return Info{Locale: c.base}, true
		}
		for i := len(c.dirs) - 1; i >= 0; i-- {
			if locale.IsLocale(c.dirs[i]) {
				return Info{Locale: c.dirs[i]}, true
			}
		}
		// resources/messages.properties: suffix-less bundle containers
		// resolve to the default locale with no prefix.
		if suppressedModule(c.base) {
			return Info{Locale: translation.LocaleUnknown, Module: c.base}, true
		}
		return Info{Locale: translation.LocaleUnknown}, true
	}},
}

// finish normalizes the locale and assembles the key prefix.
func (info *Info) finish() {
	switch info.Locale {
	case translation.LocaleUnknown, translation.LocaleDefault:
	default:
		info.Locale = locale.Normalize(info.Locale)
	}

	// Suffix-less bundle containers index under the default locale.
	if suppressedModule(info.Module) && info.Locale == translation.LocaleUnknown {
		info.Locale = translation.LocaleDefault
	}

	var b strings.Builder
	bu := info.BusinessUnit
	if bu != "" && !locale.IsLocale(bu) && !strings.EqualFold(bu, "locales") {
		b.WriteString(bu)
		b.WriteByte('.')
	}
	if info.Module != "" && !suppressedModule(info.Module) {
		b.WriteString(info.Module)
		b.WriteByte('.')
	}
	info.KeyPrefix = b.String()
}

// suppressedModule reports whether a module name is a generic backend
// bundle container rather than a namespace.
func suppressedModule(m string) bool {
	return strings.EqualFold(m, "message") || strings.EqualFold(m, "messages")
}

// stem strips the file extension from a name.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

package index

import (
	"sort"

	"github.com/transkit/transkit/translation"
)

// LocaleCoverage summarizes one locale against the reference locale.
type LocaleCoverage struct {
	Locale     string
	Translated int
	// Missing lists reference keys this locale lacks, sorted.
	Missing []string
	// Coverage is Translated divided by the reference key count.
	Coverage float64
}

// Report is a point-in-time consistency summary of the index.
type Report struct {
	Root      string
	Framework string
	Files     int
	Keys      int
	// ReferenceLocale is the locale other locales are measured against:
	// "en" when indexed, otherwise the alphabetically first locale.
	ReferenceLocale string
	Locales         []LocaleCoverage
	// Orphaned lists keys with no entry in the reference locale, sorted.
	Orphaned []string
}

// Report computes coverage of every locale against the reference
// locale and collects keys orphaned from it.
func (ix *Index) Report() Report {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	locales := make(map[string]bool)
	for _, byLoc := range ix.keys {
		for loc := range byLoc {
			locales[loc] = true
		}
	}

	ref := ""
	if locales["en"] {
		ref = "en"
	} else {
		for loc := range locales {
			if ref == "" || loc < ref {
				ref = loc
			}
		}
	}

	rep := Report{
		Root:            ix.root,
		Framework:       string(ix.fw),
		Files:           len(ix.files),
		Keys:            len(ix.keys),
		ReferenceLocale: ref,
	}
	if ref == "" {
		return rep
	}

	refKeys := 0
	byLocale := make(map[string]*LocaleCoverage)
	for loc := range locales {
		byLocale[loc] = &LocaleCoverage{Locale: loc}
	}
	for key, byLoc := range ix.keys {
		_, inRef := byLoc[ref]
		if inRef {
			refKeys++
		} else {
			rep.Orphaned = append(rep.Orphaned, key)
		}
		for loc, cov := range byLocale {
			if _, ok := byLoc[loc]; ok {
				cov.Translated++
			} else if inRef {
				cov.Missing = append(cov.Missing, key)
			}
		}
	}
	sort.Strings(rep.Orphaned)

	for _, cov := range byLocale {
		sort.Strings(cov.Missing)
		if refKeys > 0 {
			n := cov.Translated - countExtra(ix.keys, cov.Locale, ref)
			cov.Coverage = float64(n) / float64(refKeys)
		}
		rep.Locales = append(rep.Locales, *cov)
	}
	sort.Slice(rep.Locales, func(i, j int) bool {
		return rep.Locales[i].Locale < rep.Locales[j].Locale
	})
	return rep
}

// countExtra counts keys a locale has beyond the reference set, so
// coverage never exceeds 1.0 because of orphans.
func countExtra(keys map[string]map[string]translation.Entry, loc, ref string) int {
	n := 0
	for _, byLoc := range keys {
		_, inLoc := byLoc[loc]
		_, inRef := byLoc[ref]
		if inLoc && !inRef {
			n++
		}
	}
	return n
}

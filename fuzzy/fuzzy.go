// Package fuzzy ranks translation keys against user input for
// completion and quick search. The scorer is a pure additive function
// over independent signals, so rankings are deterministic and each
// signal can be tested in isolation.
package fuzzy

import (
	"sort"
	"strings"
	"unicode"
)

// Candidate couples a key with its value text in the display locale.
// An empty Value disables the value-side bonuses for that key.
type Candidate struct {
	Key   string
	Value string
}

// Match is one scored candidate.
type Match struct {
	Key   string
	Score int
}

// Signal weights. Value-side matches count half their key-side weight.
const (
	wExact         = 100
	wPrefix        = 60
	wSubstring     = 30 // minus match position, floored at substringFloor
	substringFloor = 8
	wWords         = 20
	wWordsOrdered  = 10
	wWordsLeading  = 5
	wAcronym       = 15
	wNamespace     = 25
	wLengthMax     = 10
)

// Rank scores candidates against input and returns matches ordered by
// score descending, ties broken alphabetically. Non-matching keys are
// dropped. Blank input returns every key with a uniform score in
// alphabetical order.
func Rank(input string, cands []Candidate, ns string) []Match {
	input = strings.TrimSpace(input)
	if input == "" {
		out := make([]Match, len(cands))
		for i, c := range cands {
			out[i] = Match{Key: c.Key, Score: 1}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
		return out
	}

	in := strings.ToLower(input)
	words := splitWords(in)

	var out []Match
	for _, c := range cands {
		key := c.Key
		stripped := key
		nsHit := false
		if ns != "" && strings.HasPrefix(key, ns+".") {
			stripped = strings.TrimPrefix(key, ns+".")
			nsHit = true
		}

		s := textScore(in, words, strings.ToLower(stripped), true)
		if c.Value != "" {
			s += textScore(in, words, strings.ToLower(c.Value), false) / 2
		}
		if s == 0 {
			continue
		}
		if nsHit {
			s += wNamespace
		}
		if n := len(key); n < wLengthMax {
			s += wLengthMax - n
		}
		out = append(out, Match{Key: key, Score: s})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// textScore sums the match signals of input against one text, already
// lowercased. Acronym matching applies to dotted keys only.
func textScore(in string, words []string, text string, isKey bool) int {
	s := 0
	if text == in {
		s += wExact
	}
	if strings.HasPrefix(text, in) {
		s += wPrefix
	}
	if pos := strings.Index(text, in); pos >= 0 {
		b := wSubstring - pos
		if b < substringFloor {
			b = substringFloor
		}
		s += b
	}
	if isKey {
		segs := strings.Split(text, ".")
		s += wordScore(words, segs)
		if len(in) >= 2 && strings.Contains(acronym(segs), in) {
			s += wAcronym
		}
	}
	return s
}

// wordScore checks that every input word appears as a substring of some
// key segment, with bonuses for in-order matches and a leading match.
func wordScore(words []string, segs []string) int {
	if len(words) == 0 {
		return 0
	}
	ordered := true
	last := -1
	for _, w := range words {
		found := -1
		for i, seg := range segs {
			if i > last && strings.Contains(seg, w) {
				found = i
				break
			}
		}
		if found < 0 {
			// Out of order still counts, anywhere at all.
			ordered = false
			for i, seg := range segs {
				if strings.Contains(seg, w) {
					found = i
					break
				}
			}
			if found < 0 {
				return 0
			}
		}
		last = found
	}
	s := wWords
	if ordered {
		s += wWordsOrdered
		if strings.Contains(segs[0], words[0]) {
			s += wWordsLeading
		}
	}
	return s
}

// acronym joins the first letters of the key segments.
func acronym(segs []string) string {
	var b strings.Builder
	for _, seg := range segs {
		if seg != "" {
			b.WriteByte(seg[0])
		}
	}
	return b.String()
}

// splitWords breaks input on whitespace and punctuation.
func splitWords(in string) []string {
	return strings.FieldsFunc(in, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

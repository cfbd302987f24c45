// Package srcfile parses JS/TS translation modules — a default-export
// (or module.exports) object literal with string leaves — and provides
// the lexical scanner used to locate i18n call sites in source files.
//
// There is no JS/TS syntax-tree library to lean on here, so the package
// implements a bounded lexical scan: strings, template literals, and
// comments are tracked exactly; everything else is brace/bracket
// balancing. That is sufficient for object-literal flattening and for
// finding call expressions with a string-literal first argument, and it
// degrades to "no entries found" on source it cannot follow.
package srcfile

import (
	"strconv"
	"strings"

	"github.com/transkit/transkit/translation"
)

// Parse flattens a default-export object literal into relative-key →
// entry. Files without a recognizable export yield an empty map.
func Parse(data []byte, prefix, loc, path string) map[string]translation.Entry {
	out := make(map[string]translation.Entry)
	start := exportObjectStart(data)
	if start < 0 {
		return out
	}
	s := &scanner{src: data, pos: start}
	s.object("", func(rel string, keyOff, keyLen int, value string) {
		out[rel] = translation.Entry{
			Key:    prefix + rel,
			Value:  value,
			Locale: loc,
			Path:   path,
			Offset: keyOff,
			Length: keyLen,
		}
	})
	return out
}

// exportAnchors mark a top-level translation object. The first match in
// the file wins.
var exportAnchors = []string{"export default", "module.exports", "exports.default"}

// exportObjectStart returns the offset of the '{' opening the exported
// object literal, or -1. An identifier or call wrapper between the
// anchor and the brace (defineMessages({ ... })) is tolerated.
func exportObjectStart(data []byte) int {
	text := string(data)
	for _, anchor := range exportAnchors {
		idx := strings.Index(text, anchor)
		if idx < 0 {
			continue
		}
		i := idx + len(anchor)
		// Skip '=', identifiers, '(' and whitespace up to the brace.
		for i < len(text) {
			c := text[i]
			switch {
			case c == '{':
				return i
			case c == '=' || c == '(' || c == ' ' || c == '\t' || c == '\n' || c == '\r':
				i++
			case isIdentChar(c) || c == '.':
				i++
			default:
				i = len(text) // unexpected token — not an object export
			}
		}
	}
	return -1
}

// ---------------------------------------------------------------------------
// Object-literal walking
// ---------------------------------------------------------------------------

type scanner struct {
	src []byte
	pos int
}

// object consumes an object literal starting at '{' and emits string
// leaves. Nested objects flatten with '.'; other values are skipped.
func (s *scanner) object(rel string, emit func(rel string, keyOff, keyLen int, value string)) {
	if s.pos >= len(s.src) || s.src[s.pos] != '{' {
		return
	}
	s.pos++ // consume '{'
	for {
		s.skipTrivia()
		if s.pos >= len(s.src) {
			return
		}
		if s.src[s.pos] == '}' {
			s.pos++
			return
		}

		keyOff := s.pos
		key, ok := s.key()
		if !ok {
			s.skipBalancedUntil(',', '}')
			continue
		}
		keyLen := s.pos - keyOff

		s.skipTrivia()
		if s.pos >= len(s.src) || s.src[s.pos] != ':' {
			// Shorthand property or method — skip to the next entry.
			s.skipBalancedUntil(',', '}')
			continue
		}
		s.pos++ // consume ':'
		s.skipTrivia()

		childRel := key
		if rel != "" {
			childRel = rel + "." + key
		}

		if s.pos < len(s.src) {
			switch s.src[s.pos] {
			case '{':
				s.object(childRel, emit)
				s.skipBalancedUntil(',', '}')
				continue
			case '\'', '"', '`':
				if val, ok := s.stringLit(); ok {
					emit(childRel, keyOff, keyLen, val)
				}
			}
		}
		s.skipBalancedUntil(',', '}')
	}
}

// key reads a property name: identifier, quoted string, or number.
func (s *scanner) key() (string, bool) {
	if s.pos >= len(s.src) {
		return "", false
	}
	switch c := s.src[s.pos]; {
	case c == '\'' || c == '"':
		return s.stringLit()
	case isIdentChar(c):
		start := s.pos
		for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
			s.pos++
		}
		return string(s.src[start:s.pos]), true
	default:
		return "", false
	}
}

// stringLit consumes a string or template literal and returns its
// decoded value. Template literals with interpolation are consumed but
// rejected as values.
func (s *scanner) stringLit() (string, bool) {
	quote := s.src[s.pos]
	s.pos++
	var b strings.Builder
	interpolated := false
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\' && s.pos+1 < len(s.src):
			b.WriteString(decodeEscape(s.src, &s.pos))
			continue
		case c == quote:
			s.pos++
			if interpolated {
				return "", false
			}
			return b.String(), true
		case quote == '`' && c == '$' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '{':
			interpolated = true
			s.pos++
		case c == '\n' && quote != '`':
			// Unterminated string — give up on this literal.
			return "", false
		default:
			b.WriteByte(c)
			s.pos++
		}
	}
	return "", false
}

// decodeEscape decodes one backslash escape at *pos, advancing it.
func decodeEscape(src []byte, pos *int) string {
	*pos++ // consume '\'
	c := src[*pos]
	*pos++
	switch c {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'u':
		if *pos < len(src) && src[*pos] == '{' {
			end := *pos + 1
			for end < len(src) && src[end] != '}' {
				end++
			}
			if end < len(src) {
				if n, err := strconv.ParseUint(string(src[*pos+1:end]), 16, 32); err == nil {
					*pos = end + 1
					return string(rune(n))
				}
			}
		} else if *pos+4 <= len(src) {
			if n, err := strconv.ParseUint(string(src[*pos:*pos+4]), 16, 32); err == nil {
				*pos += 4
				return string(rune(n))
			}
		}
		return "u"
	default:
		return string(c)
	}
}

// skipTrivia advances past whitespace and comments.
func (s *scanner) skipTrivia() {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '/':
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case c == '/' && s.pos+1 < len(s.src) && s.src[s.pos+1] == '*':
			s.pos += 2
			for s.pos+1 < len(s.src) && !(s.src[s.pos] == '*' && s.src[s.pos+1] == '/') {
				s.pos++
			}
			s.pos += 2
		default:
			return
		}
	}
}

// skipBalancedUntil consumes tokens until one of the stop bytes appears
// at the current nesting level. A trailing stop ',' is consumed; a stop
// '}' is left for the caller.
func (s *scanner) skipBalancedUntil(stopComma, stopBrace byte) {
	depth := 0
	for s.pos < len(s.src) {
		s.skipTrivia()
		if s.pos >= len(s.src) {
			return
		}
		c := s.src[s.pos]
		switch c {
		case '\'', '"', '`':
			s.stringLit()
			continue
		case '{', '[', '(':
			depth++
		case ']', ')':
			depth--
		case '}':
			if depth == 0 {
				return
			}
			depth--
		case stopComma:
			if depth == 0 {
				s.pos++
				return
			}
		}
		s.pos++
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

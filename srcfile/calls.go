package srcfile

import "strings"

// StringLit is a string literal found in source text.
type StringLit struct {
	Value  string
	Offset int // offset of the opening quote
	Length int // length of the token including quotes
}

// Call is a call expression whose callee matches a watched name.
type Call struct {
	// Name of the callee as written (without any object receiver).
	Name string
	// Offset of the callee name token.
	Offset int
	// ArgsStart is the offset just after the opening parenthesis.
	ArgsStart int
	// Arg is the first argument when it is a plain string literal.
	Arg *StringLit
}

// FindCalls scans source text for call expressions named in names, with
// full string/comment awareness. Both bare calls (t('k')) and member
// calls (i18n.t('k')) match on the final name segment.
func FindCalls(data []byte, names map[string]bool) []Call {
	var calls []Call
	s := &scanner{src: data}
	for s.pos < len(s.src) {
		s.skipTrivia()
		if s.pos >= len(s.src) {
			break
		}
		c := s.src[s.pos]
		switch {
		case c == '\'' || c == '"' || c == '`':
			s.stringLit()
		case isIdentChar(c):
			start := s.pos
			for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
				s.pos++
			}
			name := string(s.src[start:s.pos])
			if !names[name] {
				continue
			}
			save := s.pos
			s.skipTrivia()
			if s.pos >= len(s.src) || s.src[s.pos] != '(' {
				s.pos = save
				continue
			}
			s.pos++ // consume '('
			call := Call{Name: name, Offset: start, ArgsStart: s.pos}
			s.skipTrivia()
			if s.pos < len(s.src) && (s.src[s.pos] == '\'' || s.src[s.pos] == '"' || s.src[s.pos] == '`') {
				litOff := s.pos
				if val, ok := s.stringLit(); ok {
					call.Arg = &StringLit{Value: val, Offset: litOff, Length: s.pos - litOff}
				}
			}
			calls = append(calls, call)
		default:
			s.pos++
		}
	}
	return calls
}

// ---------------------------------------------------------------------------
// Function spans
// ---------------------------------------------------------------------------

// FunctionSpan is the byte range of a function body's braces.
type FunctionSpan struct {
	Start, End int // offsets of '{' and its matching '}'
}

// controlKeywords open parenthesized clauses whose trailing block is a
// control-flow block, not a function body.
var controlKeywords = map[string]bool{
	"if":     true,
	"for":    true,
	"while":  true,
	"switch": true,
	"catch":  true,
	"with":   true,
}

// FunctionSpans returns the brace spans of function bodies: blocks whose
// opening brace follows ')' (function declarations, methods) or '=>'
// (arrow functions), innermost last in source order of their opener.
// Blocks trailing a control clause (if, for, while, switch, catch) stay
// plain blocks even though their brace also follows ')'.
func FunctionSpans(data []byte) []FunctionSpan {
	var spans []FunctionSpan
	var stack []int   // offsets of open function braces; -1 for plain blocks
	var parens []bool // true when the group belongs to a control clause

	s := &scanner{src: data}
	lastSig := byte(0) // last significant byte seen outside trivia
	prevSig := byte(0)
	lastWord := ""     // identifier immediately before the current token
	ctrlClose := false // last ')' closed a control clause
	for s.pos < len(s.src) {
		s.skipTrivia()
		if s.pos >= len(s.src) {
			break
		}
		c := s.src[s.pos]
		switch {
		case c == '\'' || c == '"' || c == '`':
			s.stringLit()
			prevSig, lastSig = lastSig, '"'
			lastWord = ""
			continue
		case isIdentChar(c):
			start := s.pos
			for s.pos < len(s.src) && isIdentChar(s.src[s.pos]) {
				s.pos++
			}
			lastWord = string(s.src[start:s.pos])
			prevSig, lastSig = lastSig, s.src[s.pos-1]
			continue
		case c == '(':
			parens = append(parens, controlKeywords[lastWord])
			lastWord = ""
		case c == ')':
			ctrlClose = false
			if n := len(parens); n > 0 {
				ctrlClose = parens[n-1]
				parens = parens[:n-1]
			}
			lastWord = ""
		case c == '{':
			if (lastSig == ')' && !ctrlClose) || (lastSig == '>' && prevSig == '=') {
				stack = append(stack, s.pos)
			} else {
				stack = append(stack, -1)
			}
			lastWord = ""
		case c == '}':
			if n := len(stack); n > 0 {
				if open := stack[n-1]; open >= 0 {
					spans = append(spans, FunctionSpan{Start: open, End: s.pos})
				}
				stack = stack[:n-1]
			}
			lastWord = ""
		default:
			lastWord = ""
		}
		prevSig, lastSig = lastSig, c
		s.pos++
	}
	return spans
}

// EnclosingFunction returns the innermost function body span containing
// off, or ok=false when the offset is at top level.
func EnclosingFunction(data []byte, off int) (FunctionSpan, bool) {
	best := FunctionSpan{Start: -1}
	found := false
	for _, sp := range FunctionSpans(data) {
		if sp.Start < off && off < sp.End {
			if !found || sp.Start > best.Start {
				best = sp
				found = true
			}
		}
	}
	return best, found
}

// ---------------------------------------------------------------------------
// Hook argument shapes
// ---------------------------------------------------------------------------

// HookArg extracts the namespace from a hook call's first argument:
// a string literal yields itself, an array literal its first string
// element, an object literal the value of its "namespace" or "ns"
// property. Anything else yields "".
func HookArg(data []byte, argsStart int) string {
	s := &scanner{src: data, pos: argsStart}
	s.skipTrivia()
	if s.pos >= len(s.src) {
		return ""
	}
	switch s.src[s.pos] {
	case '\'', '"', '`':
		if v, ok := s.stringLit(); ok {
			return v
		}
	case '[':
		s.pos++
		s.skipTrivia()
		if s.pos < len(s.src) {
			switch s.src[s.pos] {
			case '\'', '"', '`':
				if v, ok := s.stringLit(); ok {
					return v
				}
			}
		}
	case '{':
		ns := ""
		s.object("", func(rel string, _, _ int, value string) {
			if ns == "" && (rel == "namespace" || rel == "ns") {
				ns = value
			}
		})
		return ns
	}
	return ""
}

// SplitNames parses a function-name list separated by ASCII or CJK
// commas/enumeration marks, the format used for the custom-functions
// setting.
func SplitNames(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		switch r {
		case ',', '，', '、', ';', '；':
			return true
		}
		return false
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

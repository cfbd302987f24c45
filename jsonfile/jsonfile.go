// Package jsonfile parses JSON translation files into flat key→entry
// maps. Nested objects are flattened by joining ancestor keys with '.';
// only string leaves become entries.
//
// Offsets point at the opening quote of the key token and are exact:
// gjson reports the raw index of every value, and the key token is
// recovered by scanning backwards from it.
package jsonfile

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/transkit/transkit/translation"
)

// Parse flattens JSON data into relative-key → entry. Malformed input
// yields an empty map, never an error — one broken locale file must not
// abort a scan.
func Parse(data []byte, prefix, loc, path string) map[string]translation.Entry {
	out := make(map[string]translation.Entry)
	if !gjson.ValidBytes(data) {
		return out
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return out
	}
	walk(data, root, "", prefix, loc, path, out)
	return out
}

func walk(raw []byte, obj gjson.Result, rel, prefix, loc, path string, out map[string]translation.Entry) {
	obj.ForEach(func(key, value gjson.Result) bool {
		childRel := key.String()
		if rel != "" {
			childRel = rel + "." + childRel
		}
		switch {
		case value.IsObject():
			walk(raw, value, childRel, prefix, loc, path, out)
		case value.Type == gjson.String:
			off, length := keyToken(raw, key.String(), value.Index)
			out[childRel] = translation.Entry{
				Key:    prefix + childRel,
				Value:  value.String(),
				Locale: loc,
				Path:   path,
				Offset: off,
				Length: length,
			}
		}
		// Non-string leaves (numbers, booleans, arrays, null) are
		// ignored, not errors.
		return true
	})
}

// keyToken locates the quoted key immediately preceding a value's raw
// index. Returns the offset of the opening quote and the token length
// including quotes. Falls back to the value index when the key cannot
// be found (valueIdx 0 means gjson lost track of the raw position).
func keyToken(raw []byte, key string, valueIdx int) (offset, length int) {
	quoted := `"` + escapeKey(key) + `"`
	if valueIdx <= 0 || valueIdx > len(raw) {
		return 0, len(quoted)
	}
	if i := strings.LastIndex(string(raw[:valueIdx]), quoted); i >= 0 {
		return i, len(quoted)
	}
	return valueIdx, len(quoted)
}

// escapeKey applies the JSON string escapes that change how a key
// appears in source text.
func escapeKey(key string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return r.Replace(key)
}

// InsertKey inserts a new leaf under relKey, creating intermediate
// objects as needed, and returns the rewritten file plus the offset of
// the inserted value for caret placement. The rewrite is textual so
// sibling keys, ordering, and formatting are preserved exactly.
func InsertKey(data []byte, relKey, value string) ([]byte, int, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		data = []byte("{}")
	}
	if !gjson.ValidBytes(data) {
		return nil, 0, errMalformed
	}

	// Find the deepest existing ancestor object.
	segs := strings.Split(relKey, ".")
	depth := 0
	target := gjson.ParseBytes(data)
	for depth < len(segs)-1 {
		child := target.Get(escapeQueryKey(segs[depth]))
		if !child.IsObject() {
			break
		}
		target = child
		depth++
	}

	// Build the nested JSON snippet for the remaining segments.
	var b strings.Builder
	caretRel := -1
	for i := depth; i < len(segs); i++ {
		pad := strings.Repeat("  ", i+1)
		if i == len(segs)-1 {
			b.WriteString(pad + `"` + escapeKey(segs[i]) + `": "`)
			caretRel = b.Len()
			b.WriteString(escapeKey(value) + `"`)
		} else {
			b.WriteString(pad + `"` + escapeKey(segs[i]) + `": {` + "\n")
		}
	}
	for i := len(segs) - 2; i >= depth; i-- {
		b.WriteString("\n" + strings.Repeat("  ", i+1) + "}")
	}
	snippet := b.String()

	// Splice the snippet before the target object's closing brace.
	objStart, objEnd := objectSpan(data, target)
	if objEnd < 0 {
		return nil, 0, errMalformed
	}
	inner := strings.TrimSpace(string(data[objStart+1 : objEnd]))
	sep := "\n"
	if inner != "" {
		sep = ",\n"
	}
	insertAt := objEnd
	// Back up over whitespace before the closing brace.
	for insertAt > objStart+1 && isSpace(data[insertAt-1]) {
		insertAt--
	}

	var out []byte
	out = append(out, data[:insertAt]...)
	out = append(out, []byte(sep+snippet+"\n"+strings.Repeat("  ", depth))...)
	out = append(out, data[objEnd:]...)

	caret := insertAt + len(sep) + caretRel
	return out, caret, nil
}

// objectSpan returns the byte range [start, end] of an object's braces
// in the raw data. For the root object the span covers the whole value.
func objectSpan(data []byte, obj gjson.Result) (start, end int) {
	start = obj.Index
	if start == 0 {
		// Root object: find the first brace.
		start = strings.IndexByte(string(data), '{')
		if start < 0 {
			return 0, -1
		}
	}
	depth := 0
	inStr := false
	for i := start; i < len(data); i++ {
		c := data[i]
		if inStr {
			if c == '\\' {
				i++
			} else if c == '"' {
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return start, i
			}
		}
	}
	return start, -1
}

func escapeQueryKey(seg string) string {
	// gjson path syntax treats '.' and '*' specially.
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(seg)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

type malformedError struct{}

func (malformedError) Error() string { return "malformed JSON" }

var errMalformed = malformedError{}

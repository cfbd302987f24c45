// Package tomlfile parses TOML translation files into flat key→entry
// maps. [table] and [[array-of-tables]] headers establish the ancestor
// prefix for the flat keys that follow; nested inline tables flatten the
// same way as the other formats.
//
// Offsets are estimated from a raw line scan keyed by the current table
// header — like YAML, they are line-accurate, not exact.
package tomlfile

import (
	"errors"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/transkit/transkit/translation"
)

var errMalformed = errors.New("malformed toml")

// Parse flattens TOML data into relative-key → entry. Malformed input
// yields an empty map, never an error.
func Parse(data []byte, prefix, loc, path string) map[string]translation.Entry {
	out := make(map[string]translation.Entry)

	var tree map[string]any
	md, err := toml.Decode(string(data), &tree)
	if err != nil {
		return out
	}

	offsets := estimateOffsets(data)

	// MetaData.Keys preserves definition order and includes every key,
	// tables included; only string leaves become entries.
	for _, key := range md.Keys() {
		if md.Type(key...) != "String" {
			continue
		}
		rel := strings.Join(key, ".")
		val, ok := lookup(tree, key)
		if !ok {
			continue
		}
		off, length := offsets[rel], len(key[len(key)-1])
		out[rel] = translation.Entry{
			Key:    prefix + rel,
			Value:  val,
			Locale: loc,
			Path:   path,
			Offset: off,
			Length: length,
		}
	}
	return out
}

// lookup walks the decoded tree along a dotted key.
func lookup(tree map[string]any, key toml.Key) (string, bool) {
	cur := any(tree)
	for _, seg := range key {
		m, ok := tableOf(cur)
		if !ok {
			return "", false
		}
		cur, ok = m[seg]
		if !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	return s, ok
}

// tableOf unwraps a decoded node into a table. [[array-of-tables]]
// nodes decode to a slice of tables; their first element carries the
// leaves under that header.
func tableOf(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case []map[string]any:
		if len(t) > 0 {
			return t[0], true
		}
	}
	return nil, false
}

// InsertKey appends a new leaf under relKey and returns the rewritten
// file plus the offset of the inserted value for caret placement. The
// leaf lands at the end of the owning table's section; when no [table]
// header owns the key yet, one is created at the end of the file. The
// rewrite is textual so existing lines, comments, and ordering are
// preserved exactly.
func InsertKey(data []byte, relKey, value string) ([]byte, int, error) {
	var tree map[string]any
	if _, err := toml.Decode(string(data), &tree); err != nil {
		return nil, 0, errMalformed
	}

	segs := strings.Split(relKey, ".")
	leaf := segs[len(segs)-1]
	table := strings.Join(segs[:len(segs)-1], ".")

	line := encodeKey(leaf) + ` = "`
	caretRel := len(line)
	line += escapeString(value) + `"`

	end, found := sectionEnd(data, table)
	if found {
		var out []byte
		if end == 0 {
			// Empty top section: the key opens the file so it stays
			// ahead of any table headers.
			out = append(out, line...)
			out = append(out, '\n')
			out = append(out, data...)
			return out, caretRel, nil
		}
		out = append(out, data[:end]...)
		out = append(out, '\n')
		caret := len(out) + caretRel
		out = append(out, line...)
		out = append(out, data[end:]...)
		return out, caret, nil
	}

	out := append([]byte(nil), data...)
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	if len(out) > 0 {
		out = append(out, '\n')
	}
	out = append(out, "["+table+"]\n"...)
	caret := len(out) + caretRel
	out = append(out, line...)
	out = append(out, '\n')
	return out, caret, nil
}

// sectionEnd finds the offset just past the last non-blank line of the
// table's section. The top-level section (table == "") always exists;
// a named table is found only when its header appears in the file.
func sectionEnd(data []byte, table string) (int, bool) {
	cur := ""
	found := table == ""
	end := 0
	offset := 0
	for _, raw := range strings.Split(string(data), "\n") {
		lineStart := offset
		offset += len(raw) + 1

		trimmed := strings.TrimSpace(raw)
		if strings.HasPrefix(trimmed, "[") {
			cur = strings.TrimSpace(strings.Trim(trimmed, "[]"))
			if cur == table {
				found = true
				end = lineStart + len(raw)
			}
			continue
		}
		if cur == table && trimmed != "" {
			end = lineStart + len(raw)
		}
	}
	return end, found
}

// encodeKey renders a key segment, quoting it when it is not a bare
// key.
func encodeKey(seg string) string {
	for _, r := range seg {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return `"` + escapeString(seg) + `"`
		}
	}
	return seg
}

// escapeString escapes a value for a basic TOML string.
func escapeString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`, "\r", `\r`)
	return r.Replace(s)
}

// estimateOffsets scans raw lines tracking the active [table] prefix and
// records the offset of each key token. Dotted keys on the left of '='
// and quoted keys are handled; anything the scan cannot place simply
// keeps offset zero.
func estimateOffsets(data []byte) map[string]int {
	offsets := make(map[string]int)
	tablePrefix := ""
	offset := 0

	for _, raw := range strings.Split(string(data), "\n") {
		lineOff := offset
		offset += len(raw) + 1

		trimmed := strings.TrimSpace(raw)
		lead := len(raw) - len(strings.TrimLeft(raw, " \t"))

		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "#"):
			continue

		case strings.HasPrefix(trimmed, "[["):
			header := strings.TrimSuffix(strings.TrimPrefix(trimmed, "[["), "]]")
			tablePrefix = strings.TrimSpace(header)

		case strings.HasPrefix(trimmed, "["):
			header := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
			tablePrefix = strings.TrimSpace(header)

		default:
			eq := indexUnquoted(trimmed, '=')
			if eq < 0 {
				continue
			}
			name := strings.TrimSpace(trimmed[:eq])
			name = strings.Trim(name, `"'`)
			full := name
			if tablePrefix != "" {
				full = tablePrefix + "." + name
			}
			if _, seen := offsets[full]; !seen {
				offsets[full] = lineOff + lead
			}
		}
	}
	return offsets
}

// indexUnquoted finds the first occurrence of c outside quotes.
func indexUnquoted(s string, c byte) int {
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case c:
			return i
		}
	}
	return -1
}

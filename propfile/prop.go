// Package propfile implements reading and writing of Java .properties
// translation files.
//
// Format: one key/value pair per line. The separator is the first
// non-escaped '=', ':', or run of whitespace. Lines starting with '#' or
// '!' are comments and are preserved verbatim on round-trip, as are
// blank lines. Keys and values are independently unescaped: \t \r \n \f
// \\ \uXXXX plus escaped separator and comment characters.
//
// Backend bundles name files by locale suffix (messages_zh_CN.properties)
// rather than by directory, so keys in these files are already fully
// dotted — the parser applies no nesting of its own.
package propfile

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/transkit/transkit/translation"
)

// ---------------------------------------------------------------------------
// File model
// ---------------------------------------------------------------------------

// lineKind classifies each line in the file.
type lineKind int

const (
	lineBlank   lineKind = iota // blank / whitespace-only line
	lineComment                 // comment line (starts with # or !)
	lineEntry                   // key/value pair
)

// line is a single line of the properties file.
type line struct {
	kind   lineKind
	raw    string // original text for comments and blanks
	key    string // unescaped key, entries only
	value  string // unescaped value, entries only
	offset int    // byte offset of the key token in the source
	keyLen int    // length of the escaped key token
}

// File is a parsed .properties file. It preserves document order so that
// round-trip serialization reproduces the source structure.
type File struct {
	lines []line
	index map[string]int // key → index in lines
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// Parse parses .properties content. It is total: malformed escape
// sequences decode to their literal characters rather than failing.
func Parse(data []byte) *File {
	f := &File{index: make(map[string]int)}

	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	offset := 0
	for _, raw := range strings.Split(text, "\n") {
		f.addLine(raw, offset)
		offset += len(raw) + 1
	}
	// Split leaves a trailing empty element when the file ends with \n.
	if n := len(f.lines); n > 0 && f.lines[n-1].kind == lineBlank && strings.HasSuffix(text, "\n") {
		f.lines = f.lines[:n-1]
	}
	return f
}

func (f *File) addLine(raw string, offset int) {
	trimmed := strings.TrimLeft(raw, " \t")
	lead := len(raw) - len(trimmed)

	switch {
	case strings.TrimSpace(raw) == "":
		f.lines = append(f.lines, line{kind: lineBlank, raw: raw})

	case strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!"):
		f.lines = append(f.lines, line{kind: lineComment, raw: raw})

	default:
		rawKey, rawVal := splitKeyValue(trimmed)
		key := Unescape(rawKey)
		if key == "" {
			// Malformed line — keep it as a comment to preserve it.
			f.lines = append(f.lines, line{kind: lineComment, raw: raw})
			return
		}
		if prev, exists := f.index[key]; exists {
			// Duplicate key: last value wins, position is kept.
			f.lines[prev].value = Unescape(rawVal)
			return
		}
		idx := len(f.lines)
		f.lines = append(f.lines, line{
			kind:   lineEntry,
			key:    key,
			value:  Unescape(rawVal),
			offset: offset + lead,
			keyLen: len(strings.TrimRight(rawKey, " \t")),
		})
		f.index[key] = idx
	}
}

// splitKeyValue divides a logical line at the first non-escaped
// separator. '=' and ':' win over whitespace: "key value" separates at
// the space, but "key = value" separates at the '='.
func splitKeyValue(s string) (rawKey, rawValue string) {
	wsIdx := -1
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '\\' {
			i++ // skip the escaped character
			continue
		}
		if c == '=' || c == ':' {
			return s[:i], strings.TrimLeft(s[i+1:], " \t")
		}
		if (c == ' ' || c == '\t') && wsIdx < 0 {
			wsIdx = i
			// Keep scanning: an '=' or ':' after the whitespace is the
			// real separator ("key = value").
			rest := strings.TrimLeft(s[i:], " \t")
			if len(rest) > 0 && (rest[0] == '=' || rest[0] == ':') {
				return s[:i], strings.TrimLeft(rest[1:], " \t")
			}
			return s[:i], rest
		}
	}
	// No separator — the whole line is a key with an empty value.
	return s, ""
}

// ---------------------------------------------------------------------------
// Escaping
// ---------------------------------------------------------------------------

// Unescape decodes backslash escapes: \t \r \n \f \\ \uXXXX. Any other
// escaped character decodes to itself (covers \=, \:, \#, \!, "\ ").
func Unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i == len(s)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'n':
			b.WriteByte('\n')
		case 'f':
			b.WriteByte('\f')
		case 'u':
			if i+4 < len(s) {
				if n, err := strconv.ParseUint(s[i+1:i+5], 16, 32); err == nil {
					b.WriteRune(rune(n))
					i += 4
					continue
				}
			}
			b.WriteByte('u')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// EscapeKey encodes a key for serialization: separators, comment
// markers, whitespace, and backslashes are escaped.
func EscapeKey(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '=', ':', '#', '!', ' ':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// EscapeValue encodes a value for serialization. Separators inside
// values need no escaping; control characters and backslashes do.
// Leading whitespace is escaped so it survives the separator scan.
func EscapeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case ' ':
			if i == 0 {
				b.WriteString(`\ `)
			} else {
				b.WriteByte(' ')
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Engine contract
// ---------------------------------------------------------------------------

// ParseEntries flattens properties data into relative-key → entry,
// matching the contract shared by all format parsers. Keys are already
// dotted in this format, so flattening is the identity.
func ParseEntries(data []byte, prefix, loc, path string) map[string]translation.Entry {
	f := Parse(data)
	out := make(map[string]translation.Entry, len(f.index))
	for _, ln := range f.lines {
		if ln.kind != lineEntry {
			continue
		}
		out[ln.key] = translation.Entry{
			Key:    prefix + ln.key,
			Value:  ln.value,
			Locale: loc,
			Path:   path,
			Offset: ln.offset,
			Length: ln.keyLen,
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Accessors and mutation
// ---------------------------------------------------------------------------

// Keys returns all keys in document order.
func (f *File) Keys() []string {
	keys := make([]string, 0, len(f.index))
	for _, ln := range f.lines {
		if ln.kind == lineEntry {
			keys = append(keys, ln.key)
		}
	}
	return keys
}

// Get returns the value for key and whether it exists.
func (f *File) Get(key string) (string, bool) {
	if idx, ok := f.index[key]; ok {
		return f.lines[idx].value, true
	}
	return "", false
}

// Set replaces the value of an existing key.
func (f *File) Set(key, value string) bool {
	idx, ok := f.index[key]
	if !ok {
		return false
	}
	f.lines[idx].value = value
	return true
}

// Add appends a new key at the end of the file. Returns an error when
// the key already exists.
func (f *File) Add(key, value string) error {
	if _, exists := f.index[key]; exists {
		return fmt.Errorf("key %q already exists", key)
	}
	f.index[key] = len(f.lines)
	f.lines = append(f.lines, line{kind: lineEntry, key: key, value: value})
	return nil
}

// Rename changes a key in place, keeping its position and value. This
// format is flat, so the full dotted key is rewritten.
func (f *File) Rename(oldKey, newKey string) bool {
	idx, ok := f.index[oldKey]
	if !ok {
		return false
	}
	if _, exists := f.index[newKey]; exists {
		return false
	}
	delete(f.index, oldKey)
	f.lines[idx].key = newKey
	f.index[newKey] = idx
	return true
}

// ---------------------------------------------------------------------------
// Serialization
// ---------------------------------------------------------------------------

// Marshal serializes the file back to .properties format, preserving
// comments and blank lines in their original positions.
func (f *File) Marshal() []byte {
	var buf bytes.Buffer
	for _, ln := range f.lines {
		switch ln.kind {
		case lineBlank:
			buf.WriteByte('\n')
		case lineComment:
			buf.WriteString(ln.raw)
			buf.WriteByte('\n')
		case lineEntry:
			buf.WriteString(EscapeKey(ln.key))
			buf.WriteByte('=')
			buf.WriteString(EscapeValue(ln.value))
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}

// KeyOffset returns the byte offset of a key's token in the source the
// file was parsed from, for caret placement after an Add+Marshal cycle
// use OffsetOf on the re-marshaled bytes instead.
func (f *File) KeyOffset(key string) (int, bool) {
	idx, ok := f.index[key]
	if !ok {
		return 0, false
	}
	return f.lines[idx].offset, true
}

// OffsetOf locates a key's token in serialized output.
func OffsetOf(data []byte, key string) int {
	needle := []byte(EscapeKey(key) + "=")
	if i := bytes.Index(data, needle); i >= 0 {
		return i
	}
	return 0
}

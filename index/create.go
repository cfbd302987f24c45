package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/transkit/transkit/jsonfile"
	"github.com/transkit/transkit/propfile"
	"github.com/transkit/transkit/scanner"
	"github.com/transkit/transkit/tomlfile"
	"github.com/transkit/transkit/translation"
	"github.com/transkit/transkit/yamlfile"
)

// ErrNoTargetFile means no indexed file could be matched to the new
// key, neither by prefix nor by sibling keys.
var ErrNoTargetFile = errors.New("no translation file matches the key")

// CreateResult reports the outcome of inserting a key into one file.
type CreateResult struct {
	// Path is root-relative.
	Path   string
	Locale string
	// Offset is the caret position of the inserted value, for editors
	// that jump straight to filling in the translation.
	Offset int
	Err    error
}

// CreateKey inserts a new key into every translation file whose key
// prefix owns it, with the given value as the initial text. When no
// prefix matches, files holding sibling keys are targeted instead.
// Insertion is best-effort per file; individual failures land in the
// per-file result, not in the returned error.
func (ix *Index) CreateKey(ctx context.Context, fullKey, value string) ([]CreateResult, error) {
	if fullKey == "" {
		return nil, errors.New("empty key")
	}
	targets := ix.targetFiles(fullKey)
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoTargetFile, fullKey)
	}

	results := make([]CreateResult, 0, len(targets))
	for _, f := range targets {
		res := CreateResult{Path: f.Path, Locale: f.Locale}
		res.Offset, res.Err = ix.insertKey(f, fullKey, value)
		if res.Err == nil {
			res.Err = ix.InvalidateFile(ctx, f.Path)
		}
		results = append(results, res)
	}
	return results, nil
}

// targetFiles picks the files a new key belongs to: the longest
// matching key prefix wins; prefix-less layouts fall back to files
// already holding a sibling (or ancestor-sibling) of the key.
func (ix *Index) targetFiles(fullKey string) []*translation.File {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	best := 0
	var byPrefix []*translation.File
	for _, f := range ix.files {
		p := f.KeyPrefix
		if p == "" || !strings.HasPrefix(fullKey, p) {
			continue
		}
		if len(p) > best {
			best = len(p)
			byPrefix = byPrefix[:0]
		}
		if len(p) == best {
			byPrefix = append(byPrefix, f)
		}
	}
	if len(byPrefix) > 0 {
		sortFiles(byPrefix)
		return byPrefix
	}

	// Sibling fallback: shorten the key until some file owns a key
	// under the same parent.
	for parent, _ := translation.ParentKey(fullKey); ; parent, _ = translation.ParentKey(parent) {
		if parent == "" {
			break
		}
		var matched []*translation.File
		for _, f := range ix.files {
			for _, e := range f.Entries {
				if strings.HasPrefix(e.Key, parent+".") {
					matched = append(matched, f)
					break
				}
			}
		}
		if len(matched) > 0 {
			sortFiles(matched)
			return matched
		}
	}
	return nil
}

func sortFiles(files []*translation.File) {
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
}

// insertKey splices the new key into one file on disk and returns the
// caret offset for the value.
func (ix *Index) insertKey(f *translation.File, fullKey, value string) (int, error) {
	rel := strings.TrimPrefix(fullKey, f.KeyPrefix)
	if _, exists := f.Entries[rel]; exists {
		return 0, fmt.Errorf("key %q already exists in %s", fullKey, f.Path)
	}
	abs := filepath.Join(ix.root, filepath.FromSlash(f.Path))
	data, err := os.ReadFile(abs)
	if err != nil {
		return 0, err
	}

	var out []byte
	var caret int
	switch scanner.FormatForPath(f.Path) {
	case scanner.FormatJSON:
		out, caret, err = jsonfile.InsertKey(data, rel, value)
	case scanner.FormatYAML:
		out, caret, err = yamlfile.InsertKey(data, rel, value)
	case scanner.FormatTOML:
		out, caret, err = tomlfile.InsertKey(data, rel, value)
	case scanner.FormatProperties:
		pf := propfile.Parse(data)
		if err = pf.Add(rel, value); err == nil {
			out = pf.Marshal()
			caret = propfile.OffsetOf(out, rel) + len(propfile.EscapeKey(rel)) + 1
		}
	default:
		return 0, fmt.Errorf("creating keys in %s files is not supported", filepath.Ext(f.Path))
	}
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(abs, out, 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", f.Path, err)
	}
	return caret, nil
}

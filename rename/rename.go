// Package rename implements key renames across declaration files and
// call sites. Renames are best-effort, not transactional: the engine
// collects every planned edit first (a dry run callers can inspect),
// then applies them file by file so a failure in one target never
// blocks the others, and reports exactly what was touched.
package rename

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/transkit/transkit/index"
	"github.com/transkit/transkit/namespace"
	"github.com/transkit/transkit/propfile"
	"github.com/transkit/transkit/scanner"
	"github.com/transkit/transkit/translation"
)

// Kind distinguishes the two edit phases.
type Kind string

const (
	// KindDeclaration rewrites a key in a locale file.
	KindDeclaration Kind = "declaration"
	// KindUsage rewrites a call-site string literal.
	KindUsage Kind = "usage"
)

// Edit is one planned text replacement.
type Edit struct {
	// Path is root-relative.
	Path string
	Kind Kind
	// Offset and Length give the byte range to replace; OldText is the
	// text expected there, checked before writing.
	Offset  int
	Length  int
	OldText string
	NewText string
}

// Problem records a site that could not be planned or applied.
type Problem struct {
	Path string
	Err  error
}

// Plan is the dry-run result: every edit the rename would make.
type Plan struct {
	OldKey   string
	NewKey   string
	Edits    []Edit
	Problems []Problem
}

// Result reports what Apply actually changed.
type Result struct {
	Applied int
	Failed  []Problem
}

// ErrNoDeclaration means the old key is not declared in any indexed
// file, so there is nothing to rename.
var ErrNoDeclaration = errors.New("key is not declared in any translation file")

// Engine plans and applies renames against one index.
type Engine struct {
	ix  *index.Index
	res *namespace.Resolver
	// goFuncs are the call names searched in Go sources.
	goFuncs map[string]bool
	log     zerolog.Logger
}

// New builds an engine. goFuncs may be nil to skip Go sources.
func New(ix *index.Index, res *namespace.Resolver, goFuncs map[string]bool, log zerolog.Logger) *Engine {
	return &Engine{ix: ix, res: res, goFuncs: goFuncs, log: log}
}

// Plan collects every declaration and usage edit for renaming oldKey to
// newKey, without touching any file.
func (e *Engine) Plan(ctx context.Context, oldKey, newKey string) (*Plan, error) {
	if oldKey == "" || newKey == "" || oldKey == newKey {
		return nil, fmt.Errorf("invalid rename %q -> %q", oldKey, newKey)
	}
	p := &Plan{OldKey: oldKey, NewKey: newKey}

	e.planDeclarations(p)
	if len(p.Edits) == 0 && len(p.Problems) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoDeclaration, oldKey)
	}
	if err := e.planUsages(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// planDeclarations plans one edit per locale file declaring the key.
// Nested formats rename the leaf token in place, which requires the
// parent path to survive the rename; flat formats rewrite the whole
// local key token.
func (e *Engine) planDeclarations(p *Plan) {
	oldParent, oldLeaf := translation.ParentKey(p.OldKey)
	newParent, newLeaf := translation.ParentKey(p.NewKey)

	for _, f := range e.ix.Files() {
		if !strings.HasPrefix(p.OldKey, f.KeyPrefix) {
			continue
		}
		rel := strings.TrimPrefix(p.OldKey, f.KeyPrefix)
		entry, ok := f.Entries[rel]
		if !ok || entry.Key != p.OldKey {
			continue
		}
		if !strings.HasPrefix(p.NewKey, f.KeyPrefix) {
			p.Problems = append(p.Problems, Problem{Path: f.Path,
				Err: fmt.Errorf("new key leaves the file's prefix %q", f.KeyPrefix)})
			continue
		}
		newRel := strings.TrimPrefix(p.NewKey, f.KeyPrefix)

		var oldText, newText string
		switch scanner.FormatForPath(f.Path) {
		case scanner.FormatProperties:
			oldText = propfile.EscapeKey(rel)
			newText = propfile.EscapeKey(newRel)
		case scanner.FormatJSON:
			if oldParent != newParent {
				p.Problems = append(p.Problems, Problem{Path: f.Path,
					Err: errors.New("nested formats only rename the final segment")})
				continue
			}
			oldText = mustQuoteJSON(oldLeaf)
			newText = mustQuoteJSON(newLeaf)
		case scanner.FormatYAML, scanner.FormatTOML, scanner.FormatSource:
			if oldParent != newParent {
				p.Problems = append(p.Problems, Problem{Path: f.Path,
					Err: errors.New("nested formats only rename the final segment")})
				continue
			}
			oldText = oldLeaf
			newText = newLeaf
		default:
			p.Problems = append(p.Problems, Problem{Path: f.Path,
				Err: errors.New("unsupported declaration format")})
			continue
		}

		p.Edits = append(p.Edits, Edit{
			Path:    f.Path,
			Kind:    KindDeclaration,
			Offset:  entry.Offset,
			Length:  entry.Length,
			OldText: oldText,
			NewText: newText,
		})
	}
}

// sourceExts are scanned for call-site usages.
var sourceExts = map[string]bool{
	".js": true, ".mjs": true, ".cjs": true,
	".ts": true, ".mts": true, ".cts": true,
	".jsx": true, ".tsx": true, ".vue": true,
	".go": true,
}

// planUsages scans application sources for call sites resolving to the
// old key and plans literal rewrites that keep each site's namespace
// arithmetic intact.
func (e *Engine) planUsages(ctx context.Context, p *Plan) error {
	root := e.ix.Root()
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDir(name)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !sourceExts[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		// Locale files are handled by the declaration phase.
		if scanner.IsTranslationFile(path, root) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, path)
		rel = filepath.ToSlash(rel)

		var usages []namespace.Usage
		if filepath.Ext(path) == ".go" {
			if len(e.goFuncs) == 0 {
				return nil
			}
			usages = namespace.GoUsages(data, rel, e.goFuncs)
		} else {
			usages = e.res.Usages(data, rel)
		}
		for _, u := range usages {
			if u.Key != p.OldKey && u.Lit.Value != p.OldKey {
				continue
			}
			newLit := p.NewKey
			if u.Key == p.OldKey && u.Key != u.Lit.Value {
				// The site wrote a partial key under a namespace; keep
				// the same namespace arithmetic for the new key.
				ns := strings.TrimSuffix(u.Key, u.Lit.Value)
				if strings.HasPrefix(p.NewKey, ns) {
					newLit = strings.TrimPrefix(p.NewKey, ns)
				}
			}
			quote := data[u.Lit.Offset]
			p.Edits = append(p.Edits, Edit{
				Path:    rel,
				Kind:    KindUsage,
				Offset:  u.Lit.Offset,
				Length:  u.Lit.Length,
				OldText: string(data[u.Lit.Offset : u.Lit.Offset+u.Lit.Length]),
				NewText: string(quote) + newLit + string(quote),
			})
		}
		return nil
	})
}

func skipDir(name string) bool {
	switch name {
	case "node_modules", "dist", "build", "target", "out", "vendor":
		return true
	}
	return false
}

// Apply performs the planned edits file by file, newest offsets first
// so earlier edits do not shift later ones. A mismatch between the
// planned OldText and the file's current content fails that file only.
// The index is refreshed afterwards regardless of partial failures.
func (e *Engine) Apply(ctx context.Context, p *Plan) *Result {
	res := &Result{Failed: append([]Problem(nil), p.Problems...)}

	byPath := make(map[string][]Edit)
	for _, ed := range p.Edits {
		byPath[ed.Path] = append(byPath[ed.Path], ed)
	}
	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			res.Failed = append(res.Failed, Problem{Path: path, Err: err})
			continue
		}
		n, err := e.applyFile(path, byPath[path])
		res.Applied += n
		if err != nil {
			res.Failed = append(res.Failed, Problem{Path: path, Err: err})
			e.log.Warn().Err(err).Str("path", path).Msg("rename edit failed")
		}
	}

	if err := e.ix.Refresh(ctx); err != nil {
		res.Failed = append(res.Failed, Problem{Path: ".", Err: err})
	}
	return res
}

// applyFile applies one file's edits and writes it back. Returns how
// many edits landed.
func (e *Engine) applyFile(path string, edits []Edit) (int, error) {
	abs := filepath.Join(e.ix.Root(), filepath.FromSlash(path))
	data, err := os.ReadFile(abs)
	if err != nil {
		return 0, err
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].Offset > edits[j].Offset })

	for _, ed := range edits {
		end := ed.Offset + ed.Length
		if ed.Offset < 0 || end > len(data) || string(data[ed.Offset:end]) != ed.OldText {
			return 0, fmt.Errorf("content changed at offset %d, expected %q", ed.Offset, ed.OldText)
		}
		data = append(data[:ed.Offset], append([]byte(ed.NewText), data[end:]...)...)
	}
	if err := os.WriteFile(abs, data, 0644); err != nil {
		return 0, fmt.Errorf("writing %s: %w", path, err)
	}
	return len(edits), nil
}

func mustQuoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

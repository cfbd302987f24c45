// Package index maintains the in-memory translation index: every locale
// file under a project root, parsed into fully-qualified dotted keys,
// with locale-aware lookup, prefix search, and per-module scoping.
//
// The index is safe for concurrent use. Reads take a shared lock;
// refreshes build a complete replacement state off to the side and swap
// it in under the write lock, so readers never observe a half-built
// index. Single-file invalidation touches only the entries owned by
// that file.
package index

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/transkit/transkit/framework"
	"github.com/transkit/transkit/jsonfile"
	"github.com/transkit/transkit/locale"
	"github.com/transkit/transkit/pathinfo"
	"github.com/transkit/transkit/propfile"
	"github.com/transkit/transkit/scanner"
	"github.com/transkit/transkit/settings"
	"github.com/transkit/transkit/srcfile"
	"github.com/transkit/transkit/tomlfile"
	"github.com/transkit/transkit/translation"
	"github.com/transkit/transkit/yamlfile"
)

// hintCacheSize bounds the rendered-hint cache.
const hintCacheSize = 512

// Options tune a new Index. The zero value is usable.
type Options struct {
	// Logger receives structured progress and warning events.
	Logger zerolog.Logger
	// Concurrency bounds parallel file parsing during Refresh.
	// Defaults to the CPU count.
	Concurrency int
}

// Index is the translation index for one project root.
type Index struct {
	root string
	log  zerolog.Logger
	sem  chan struct{}

	// initMu serializes Initialize so concurrent first callers share
	// one scan instead of each running their own.
	initMu sync.Mutex

	mu sync.RWMutex
	// files maps root-relative path → parse result.
	files map[string]*translation.File
	// keys maps full dotted key → locale → entry.
	keys map[string]map[string]translation.Entry
	// versions maps root-relative path → content checksum. Hint-cache
	// keys embed the version, so stale renders age out of the LRU
	// instead of needing explicit invalidation.
	versions map[string]string
	// moduleRoots caches directory → nearest manifest ancestor.
	moduleRoots map[string]string
	fw          framework.Framework
	initialized bool

	hints *lru.Cache[string, string]
}

// New creates an index rooted at root. Call Initialize before querying.
func New(root string, opts Options) *Index {
	n := opts.Concurrency
	if n <= 0 {
		n = runtime.NumCPU()
	}
	hints, _ := lru.New[string, string](hintCacheSize)
	return &Index{
		root:        root,
		log:         opts.Logger,
		sem:         make(chan struct{}, n),
		files:       make(map[string]*translation.File),
		keys:        make(map[string]map[string]translation.Entry),
		versions:    make(map[string]string),
		moduleRoots: make(map[string]string),
		fw:          framework.FrameworkNone,
		hints:       hints,
	}
}

// Root returns the project root the index was created with.
func (ix *Index) Root() string { return ix.root }

// Initialize performs the first full scan. Calling it again is a no-op,
// and concurrent callers wait on the first scan rather than running
// their own. A failed scan leaves the index uninitialized so the next
// caller retries.
func (ix *Index) Initialize(ctx context.Context) error {
	ix.initMu.Lock()
	defer ix.initMu.Unlock()
	ix.mu.RLock()
	done := ix.initialized
	ix.mu.RUnlock()
	if done {
		return nil
	}
	return ix.Refresh(ctx)
}

// Refresh rescans the project and atomically replaces the index state.
// On error the previous state is kept.
func (ix *Index) Refresh(ctx context.Context) error {
	paths, err := scanner.Scan(ctx, ix.root, ix.log)
	if err != nil {
		return fmt.Errorf("scanning %s: %w", ix.root, err)
	}
	fw := framework.Detect(ix.root)

	type result struct {
		file    *translation.File
		version string
	}
	results := make([]result, len(paths))
	var wg sync.WaitGroup
	for i, p := range paths {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		wg.Add(1)
		ix.sem <- struct{}{}
		go func(i int, p string) {
			defer wg.Done()
			defer func() { <-ix.sem }()
			f, ver, err := ix.parseFile(p)
			if err != nil {
				ix.log.Warn().Err(err).Str("path", p).Msg("skipping unreadable file")
				return
			}
			results[i] = result{file: f, version: ver}
		}(i, p)
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return err
	}

	files := make(map[string]*translation.File, len(results))
	keys := make(map[string]map[string]translation.Entry)
	versions := make(map[string]string, len(results))
	for _, r := range results {
		if r.file == nil {
			continue
		}
		files[r.file.Path] = r.file
		versions[r.file.Path] = r.version
		addEntries(keys, r.file)
	}

	ix.mu.Lock()
	ix.files = files
	ix.keys = keys
	ix.versions = versions
	ix.moduleRoots = make(map[string]string)
	ix.fw = fw
	ix.initialized = true
	ix.mu.Unlock()

	ix.log.Info().
		Int("files", len(files)).
		Int("keys", len(keys)).
		Str("framework", string(fw)).
		Msg("index refreshed")
	return nil
}

// InvalidateFile reparses a single changed file, replacing only the
// entries it owns. Deleted files are dropped; manifest changes trigger
// framework re-detection instead of a parse.
func (ix *Index) InvalidateFile(ctx context.Context, path string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if framework.IsManifest(path) {
		fw := framework.Detect(ix.root)
		ix.mu.Lock()
		ix.fw = fw
		ix.mu.Unlock()
		return nil
	}
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(ix.root, path)
	}
	rel := ix.relPath(abs)

	if !scanner.IsTranslationFile(abs, ix.root) {
		ix.removeFile(rel)
		return nil
	}
	f, ver, err := ix.parseFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			ix.removeFile(rel)
			return nil
		}
		return err
	}

	ix.mu.Lock()
	if old, ok := ix.files[rel]; ok {
		removeEntries(ix.keys, old)
	}
	ix.files[rel] = f
	ix.versions[rel] = ver
	addEntries(ix.keys, f)
	ix.mu.Unlock()
	return nil
}

// removeFile drops an indexed file and its entries.
func (ix *Index) removeFile(rel string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	old, ok := ix.files[rel]
	if !ok {
		return
	}
	removeEntries(ix.keys, old)
	delete(ix.files, rel)
	delete(ix.versions, rel)
}

// parseFile reads and parses one file. The returned File carries the
// root-relative path; the version is a checksum of the raw content.
func (ix *Index) parseFile(path string) (*translation.File, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	sum := md5.Sum(data)
	rel := ix.relPath(path)
	info := pathinfo.Parse(path, ix.root)

	var entries map[string]translation.Entry
	switch scanner.FormatForPath(path) {
	case scanner.FormatJSON:
		entries = jsonfile.Parse(data, info.KeyPrefix, info.Locale, rel)
	case scanner.FormatYAML:
		entries = yamlfile.Parse(data, info.KeyPrefix, info.Locale, rel)
	case scanner.FormatTOML:
		entries = tomlfile.Parse(data, info.KeyPrefix, info.Locale, rel)
	case scanner.FormatProperties:
		entries = propfile.ParseEntries(data, info.KeyPrefix, info.Locale, rel)
	case scanner.FormatSource:
		entries = srcfile.Parse(data, info.KeyPrefix, info.Locale, rel)
	default:
		entries = map[string]translation.Entry{}
	}

	return &translation.File{
		Path:         rel,
		Locale:       info.Locale,
		Module:       info.Module,
		BusinessUnit: info.BusinessUnit,
		KeyPrefix:    info.KeyPrefix,
		Entries:      entries,
	}, hex.EncodeToString(sum[:]), nil
}

func (ix *Index) relPath(path string) string {
	if rel, err := filepath.Rel(ix.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(path)
}

// addEntries merges a file's entries into the inverted key map.
func addEntries(keys map[string]map[string]translation.Entry, f *translation.File) {
	for _, e := range f.Entries {
		byLoc, ok := keys[e.Key]
		if !ok {
			byLoc = make(map[string]translation.Entry)
			keys[e.Key] = byLoc
		}
		byLoc[e.Locale] = e
	}
}

// removeEntries drops a file's entries, leaving entries the same key
// and locale may have picked up from another file untouched.
func removeEntries(keys map[string]map[string]translation.Entry, f *translation.File) {
	for _, e := range f.Entries {
		byLoc, ok := keys[e.Key]
		if !ok {
			continue
		}
		if cur, ok := byLoc[e.Locale]; ok && cur.Path == f.Path {
			delete(byLoc, e.Locale)
		}
		if len(byLoc) == 0 {
			delete(keys, e.Key)
		}
	}
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// GetTranslation resolves a key in the given locale, tolerating
// spelling variants (zh-CN finds an indexed zh_CN entry) and falling
// back through zh_CN → zh → en → first available when loc is empty or
// has no entry.
func (ix *Index) GetTranslation(key, loc string) (translation.Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	byLoc, ok := ix.keys[key]
	if !ok {
		return translation.Entry{}, false
	}
	for _, cand := range locale.BuildCandidates(loc) {
		if e, ok := byLoc[cand]; ok {
			return e, true
		}
	}
	return translation.PickLocale(byLoc)
}

// GetTranslationStrict resolves a key in the given locale only.
// Spelling variants of the same locale match; the fallback chain does
// not apply, and neither does the bare language code.
func (ix *Index) GetTranslationStrict(key, loc string) (translation.Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	byLoc := ix.keys[key]
	norm := locale.Normalize(loc)
	for _, cand := range locale.BuildCandidates(loc) {
		if locale.Normalize(cand) != norm {
			continue
		}
		if e, ok := byLoc[cand]; ok {
			return e, true
		}
	}
	return translation.Entry{}, false
}

// GetAllTranslations returns every locale's entry for a key.
func (ix *Index) GetAllTranslations(key string) map[string]translation.Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make(map[string]translation.Entry, len(ix.keys[key]))
	for loc, e := range ix.keys[key] {
		out[loc] = e
	}
	return out
}

// GetAllKeys returns every indexed key, sorted.
func (ix *Index) GetAllKeys() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]string, 0, len(ix.keys))
	for k := range ix.keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FindKeysByPrefix returns the sorted keys starting with prefix.
func (ix *Index) FindKeysByPrefix(prefix string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []string
	for k := range ix.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// GetAvailableLocales returns the sorted set of locales seen across all
// indexed files.
func (ix *Index) GetAvailableLocales() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	seen := make(map[string]bool)
	for _, byLoc := range ix.keys {
		for loc := range byLoc {
			seen[loc] = true
		}
	}
	out := make([]string, 0, len(seen))
	for loc := range seen {
		out = append(out, loc)
	}
	sort.Strings(out)
	return out
}

// Files returns a snapshot of the indexed files, sorted by path.
func (ix *Index) Files() []*translation.File {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]*translation.File, 0, len(ix.files))
	for _, f := range ix.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Framework returns the detected i18n framework.
func (ix *Index) Framework() framework.Framework {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.fw
}

// FileVersion returns the content checksum of an indexed file.
func (ix *Index) FileVersion(rel string) (string, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	v, ok := ix.versions[rel]
	return v, ok
}

// ---------------------------------------------------------------------------
// Module scoping
// ---------------------------------------------------------------------------

// manifestNames are probed when resolving a source file's module root.
var manifestNames = []string{"package.json", "go.mod", "pom.xml", "build.gradle", "build.gradle.kts"}

// ModuleRoot returns the nearest ancestor directory of path that holds
// a project manifest, stopping at the index root. Paths outside any
// manifest scope map to the index root itself.
func (ix *Index) ModuleRoot(path string) string {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(ix.root, path)
	}
	dir := filepath.Dir(abs)

	ix.mu.RLock()
	cached, ok := ix.moduleRoots[dir]
	ix.mu.RUnlock()
	if ok {
		return cached
	}

	found := ix.root
	for d := dir; ; d = filepath.Dir(d) {
		if hasManifest(d) {
			found = d
			break
		}
		if d == ix.root || d == filepath.Dir(d) {
			break
		}
	}
	ix.mu.Lock()
	ix.moduleRoots[dir] = found
	ix.mu.Unlock()
	return found
}

func hasManifest(dir string) bool {
	for _, name := range manifestNames {
		if fi, err := os.Stat(filepath.Join(dir, name)); err == nil && !fi.IsDir() {
			return true
		}
	}
	return false
}

// GetTranslationInModule resolves a key considering only translation
// files under the same module root as sourcePath. Monorepos keep one
// index; this scopes lookups so sibling apps with clashing keys do not
// bleed into each other.
func (ix *Index) GetTranslationInModule(key, loc, sourcePath string) (translation.Entry, bool) {
	modRoot := ix.relPath(ix.ModuleRoot(sourcePath))

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	// Same key and locale can exist in sibling modules, so the lookup
	// walks the file table rather than the shared inverted map.
	byLoc := make(map[string]translation.Entry)
	for _, f := range ix.files {
		if !ix.inModuleLocked(f.Path, modRoot) {
			continue
		}
		if !strings.HasPrefix(key, f.KeyPrefix) {
			continue
		}
		if e, ok := f.Entries[strings.TrimPrefix(key, f.KeyPrefix)]; ok && e.Key == key {
			byLoc[e.Locale] = e
		}
	}
	if loc != "" {
		if e, ok := byLoc[loc]; ok {
			return e, true
		}
	}
	return translation.PickLocale(byLoc)
}

// inModuleLocked reports whether a root-relative file path lives under
// a root-relative module root. Callers hold at least the read lock.
func (ix *Index) inModuleLocked(rel, modRoot string) bool {
	if modRoot == "." || modRoot == "" || modRoot == filepath.ToSlash(ix.root) {
		return true
	}
	return rel == modRoot || strings.HasPrefix(rel, modRoot+"/")
}

// ---------------------------------------------------------------------------
// Rendered hints
// ---------------------------------------------------------------------------

// Hint renders the display text for a key under the given settings:
// the translated value alone, or appended after the key, depending on
// the display mode. Renders are cached per file version, so edits
// naturally miss the cache instead of serving stale text.
func (ix *Index) Hint(key string, s settings.Settings) (string, bool) {
	e, ok := ix.GetTranslation(key, s.DisplayLocale)
	if !ok {
		return "", false
	}
	ver, _ := ix.FileVersion(e.Path)
	ck := e.Path + "\x00" + ver + "\x00" + key + "\x00" + e.Locale + "\x00" + string(s.DisplayMode)
	if v, ok := ix.hints.Get(ck); ok {
		return v, true
	}
	var text string
	if s.DisplayMode == settings.DisplayTranslationOnly {
		text = e.Value
	} else {
		text = key + " · " + e.Value
	}
	ix.hints.Add(ck, text)
	return text, true
}

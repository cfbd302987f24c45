// Package scanner walks a project tree and finds translation files.
//
// Two rules decide membership, and IsTranslationFile is the single
// source of truth both for the initial scan and for the file-change
// listener:
//
//  1. the file has a supported extension and lives (at any depth) under
//     a directory whose name matches the locale-directory set, or
//  2. the file matches the backend bundle naming convention
//     (messages_en_US.properties) and has a "resources" ancestor —
//     backend message bundles do not use a locales/ directory.
//
// Build and vendor directories are pruned: anything dot-prefixed plus
// node_modules, dist, build, target, out, vendor.
package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/transkit/transkit/pathinfo"
)

// Format identifies which parser handles a file.
type Format int

const (
	FormatUnknown Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
	FormatProperties
	FormatSource
)

// extFormats maps supported extensions to their format.
var extFormats = map[string]Format{
	".json":       FormatJSON,
	".yaml":       FormatYAML,
	".yml":        FormatYAML,
	".toml":       FormatTOML,
	".properties": FormatProperties,
	".js":         FormatSource,
	".mjs":        FormatSource,
	".cjs":        FormatSource,
	".ts":         FormatSource,
	".mts":        FormatSource,
	".cts":        FormatSource,
}

// skipDirs are directory names pruned during the walk.
var skipDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"out":          true,
	"vendor":       true,
}

// bundleFileRe matches backend bundle file names including extension.
var bundleFileRe = regexp.MustCompile(`(?i)^messages?[_-][a-z]{2}(?:[_-][a-z]{2})?\.properties$`)

// FormatForPath returns the parser format for a path.
func FormatForPath(path string) Format {
	return extFormats[strings.ToLower(filepath.Ext(path))]
}

// Scan walks root and returns translation file paths, sorted. A missing
// root yields an empty slice, not an error; the walk checks ctx between
// directories so large trees stay cancellable.
func Scan(ctx context.Context, root string, log zerolog.Logger) ([]string, error) {
	if _, err := os.Stat(root); err != nil {
		log.Debug().Str("root", root).Msg("project root missing, empty scan")
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		if d.IsDir() {
			if err := ctx.Err(); err != nil {
				return err
			}
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if IsTranslationFile(path, root) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	log.Debug().Int("files", len(files)).Str("root", root).Msg("scan complete")
	return files, nil
}

// IsTranslationFile applies the two membership rules to a single path.
// The file-change listener reuses this so watch and scan can never
// disagree.
func IsTranslationFile(path, root string) bool {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	segs := strings.Split(rel, "/")
	base := segs[len(segs)-1]
	dirs := segs[:len(segs)-1]

	// Excluded ancestors disqualify regardless of naming. Covers paths
	// handed to the listener that never went through the walk pruning.
	for _, d := range dirs {
		if strings.HasPrefix(d, ".") || skipDirs[d] {
			return false
		}
	}

	if FormatForPath(base) != FormatUnknown && hasLocaleDirAncestor(dirs) {
		return true
	}
	if bundleFileRe.MatchString(base) || strings.EqualFold(base, "messages.properties") {
		return hasResourcesAncestor(dirs)
	}
	return false
}

func hasLocaleDirAncestor(dirs []string) bool {
	for _, d := range dirs {
		if pathinfo.IsLocaleDir(d) {
			return true
		}
	}
	return false
}

func hasResourcesAncestor(dirs []string) bool {
	for _, d := range dirs {
		if strings.EqualFold(d, "resources") {
			return true
		}
	}
	return false
}

package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_LocaleDirRule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/locales/en/common.json", `{"a":"b"}`)
	writeFile(t, root, "src/locales/zh/common.json", `{"a":"b"}`)
	writeFile(t, root, "src/app.js", `code`)
	writeFile(t, root, "README.md", `doc`)

	files, err := Scan(context.Background(), root, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("files = %d, want 2: %v", len(files), files)
	}
}

func TestScan_BundleRule(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/main/resources/messages_en_US.properties", "a=b")
	writeFile(t, root, "src/main/resources/messages.properties", "a=b")
	writeFile(t, root, "src/main/other/messages_en.properties", "a=b") // no resources ancestor

	files, err := Scan(context.Background(), root, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("files = %d, want 2: %v", len(files), files)
	}
}

func TestScan_ExcludesBuildDirs(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/locales/en/a.json", `{}`)
	writeFile(t, root, "target/classes/i18n/messages_zh_CN.properties", "a=b")
	writeFile(t, root, "node_modules/pkg/locales/en/b.json", `{}`)
	writeFile(t, root, ".cache/locales/en/c.json", `{}`)

	files, err := Scan(context.Background(), root, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Errorf("files = %d, want 1: %v", len(files), files)
	}
}

func TestScan_MissingRoot(t *testing.T) {
	files, err := Scan(context.Background(), filepath.Join(t.TempDir(), "nope"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 0 {
		t.Errorf("files = %d, want 0", len(files))
	}
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/locales/en/a.json", `{}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Scan(ctx, root, zerolog.Nop()); err == nil {
		t.Error("want cancellation error")
	}
}

func TestIsTranslationFile_MatchesScanRules(t *testing.T) {
	cases := map[string]bool{
		"src/locales/en/common.json":                     true,
		"src/i18n/zh-CN.yaml":                            true,
		"src/lang/en.toml":                               true,
		"src/locales/en/messages.ts":                     true,
		"src/main/resources/i18n/messages.properties":    true,
		"src/main/resources/messages_zh_CN.properties":   true,
		"src/locales/en/readme.md":                       false,
		"src/app.ts":                                     false,
		"node_modules/x/locales/en/a.json":               false,
		"target/classes/i18n/messages_en.properties":     false,
		"src/main/java/messages_en.properties":           false,
	}
	for rel, want := range cases {
		if got := IsTranslationFile(rel, ""); got != want {
			t.Errorf("IsTranslationFile(%q) = %v, want %v", rel, got, want)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	cases := map[string]Format{
		"a.json":       FormatJSON,
		"a.YAML":       FormatYAML,
		"a.yml":        FormatYAML,
		"a.toml":       FormatTOML,
		"a.properties": FormatProperties,
		"a.ts":         FormatSource,
		"a.mjs":        FormatSource,
		"a.txt":        FormatUnknown,
	}
	for path, want := range cases {
		if got := FormatForPath(path); got != want {
			t.Errorf("FormatForPath(%q) = %v, want %v", path, got, want)
		}
	}
}

package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transkit/transkit/index"
)

func setup(t *testing.T, files map[string]string) (string, *index.Index, context.CancelFunc) {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		p := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0644))
	}
	ix := index.New(root, index.Options{Logger: zerolog.Nop()})
	require.NoError(t, ix.Initialize(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	w := New(ix, 50*time.Millisecond, zerolog.Nop())
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond) // let the watch register
	return root, ix, cancel
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, cond(), "condition not reached before deadline")
}

func TestWatcher_PicksUpEdits(t *testing.T) {
	root, ix, cancel := setup(t, map[string]string{
		"locales/en.json": `{"greeting": "Hello"}`,
	})
	defer cancel()

	p := filepath.Join(root, "locales", "en.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"greeting": "Hi", "farewell": "Bye"}`), 0644))

	waitFor(t, func() bool {
		_, ok := ix.GetTranslation("farewell", "en")
		return ok
	})
	e, _ := ix.GetTranslation("greeting", "en")
	assert.Equal(t, "Hi", e.Value)
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	root, ix, cancel := setup(t, map[string]string{
		"locales/en.json": `{"greeting": "Hello"}`,
	})
	defer cancel()

	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"), []byte("# hi"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, []string{"greeting"}, ix.GetAllKeys())
}

func TestWatcher_RemovalDropsEntries(t *testing.T) {
	root, ix, cancel := setup(t, map[string]string{
		"locales/en.json": `{"greeting": "Hello"}`,
		"locales/zh.json": `{"greeting": "你好"}`,
	})
	defer cancel()

	require.NoError(t, os.Remove(filepath.Join(root, "locales", "en.json")))
	waitFor(t, func() bool {
		_, ok := ix.GetTranslationStrict("greeting", "en")
		return !ok
	})
	_, ok := ix.GetTranslationStrict("greeting", "zh")
	assert.True(t, ok)
}

func TestWatcher_DebounceCoalesces(t *testing.T) {
	root, ix, cancel := setup(t, map[string]string{
		"locales/en.json": `{"n": "0"}`,
	})
	defer cancel()

	p := filepath.Join(root, "locales", "en.json")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(p, []byte(`{"n": "`+string(rune('0'+i))+`"}`), 0644))
		time.Sleep(5 * time.Millisecond)
	}
	waitFor(t, func() bool {
		e, ok := ix.GetTranslation("n", "en")
		return ok && e.Value == "4"
	})
}

func TestWatcher_NewDirectory(t *testing.T) {
	root, ix, cancel := setup(t, map[string]string{
		"locales/en.json": `{"a": "1"}`,
	})
	defer cancel()

	dir := filepath.Join(root, "locales", "zh")
	require.NoError(t, os.MkdirAll(dir, 0755))
	time.Sleep(100 * time.Millisecond) // watch registration for the new dir
	require.NoError(t, os.WriteFile(filepath.Join(dir, "common.json"), []byte(`{"b": "2"}`), 0644))

	waitFor(t, func() bool {
		_, ok := ix.GetTranslation("common.b", "zh")
		return ok
	})
}

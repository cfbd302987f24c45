package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, "locales")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "en.json"),
		[]byte(`{"common": {"ok": "OK"}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zh_CN.json"),
		[]byte(`{"common": {"ok": "好"}}`), 0644))
	return root
}

func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestCLI_Status(t *testing.T) {
	root := writeProject(t)
	assert.NoError(t, run(t, "--root", root, "status"))
}

func TestCLI_Keys(t *testing.T) {
	root := writeProject(t)
	assert.NoError(t, run(t, "--root", root, "keys", "common."))
}

func TestCLI_GetMissingKeyFails(t *testing.T) {
	root := writeProject(t)
	assert.Error(t, run(t, "--root", root, "get", "does.not.exist"))
}

func TestCLI_RenameDryRunLeavesFilesAlone(t *testing.T) {
	root := writeProject(t)
	before, err := os.ReadFile(filepath.Join(root, "locales", "en.json"))
	require.NoError(t, err)

	require.NoError(t, run(t, "--root", root, "rename", "--dry-run", "common.ok", "common.confirm"))

	after, err := os.ReadFile(filepath.Join(root, "locales", "en.json"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestCLI_CreateAndGet(t *testing.T) {
	root := writeProject(t)
	require.NoError(t, run(t, "--root", root, "create", "--value", "Cancel", "common.cancel"))
	assert.NoError(t, run(t, "--root", root, "get", "--locale", "en", "common.cancel"))
}

package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TRANSKIT_DISPLAY_LOCALE", "")
	t.Setenv("TRANSKIT_DISPLAY_MODE", "")
	t.Setenv("TRANSKIT_FUNCTIONS", "")
	t.Setenv("TRANSKIT_FRAMEWORK", "")

	s := Load()
	assert.Equal(t, DisplayInline, s.DisplayMode)
	assert.Equal(t, DefaultFunctions, s.Functions)
	assert.Empty(t, s.DisplayLocale)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TRANSKIT_DISPLAY_LOCALE", "")
	t.Setenv("TRANSKIT_DISPLAY_MODE", "")
	t.Setenv("TRANSKIT_FUNCTIONS", "")
	t.Setenv("TRANSKIT_FRAMEWORK", "")

	want := Settings{
		DisplayLocale: "zh_CN",
		DisplayMode:   DisplayTranslationOnly,
		Functions:     "t, $t, translate",
	}
	require.NoError(t, Save(want))

	got := Load()
	assert.Equal(t, want.DisplayLocale, got.DisplayLocale)
	assert.Equal(t, want.DisplayMode, got.DisplayMode)
	assert.Equal(t, want.Functions, got.Functions)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TRANSKIT_DISPLAY_LOCALE", "en")
	t.Setenv("TRANSKIT_DISPLAY_MODE", "translation_only")
	t.Setenv("TRANSKIT_FUNCTIONS", "tr")
	t.Setenv("TRANSKIT_FRAMEWORK", "vue-i18n")

	s := Load()
	assert.Equal(t, "en", s.DisplayLocale)
	assert.Equal(t, DisplayTranslationOnly, s.DisplayMode)
	assert.Equal(t, "tr", s.Functions)
	assert.Equal(t, "vue-i18n", s.Framework)
}

func TestLoad_InvalidModeFallsBack(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TRANSKIT_DISPLAY_LOCALE", "")
	t.Setenv("TRANSKIT_DISPLAY_MODE", "SIDEBAR")
	t.Setenv("TRANSKIT_FUNCTIONS", "")
	t.Setenv("TRANSKIT_FRAMEWORK", "")

	s := Load()
	assert.Equal(t, DisplayInline, s.DisplayMode)
}

func TestFunctionNames(t *testing.T) {
	s := Settings{Functions: "t, $t、i18n.t；formatMessage"}
	names := s.FunctionNames()
	assert.True(t, names["t"])
	assert.True(t, names["$t"])
	assert.True(t, names["formatMessage"])
	assert.False(t, names["i18n.t"], "member calls match on the last segment")
}

func TestFunctionNames_EmptyUsesDefault(t *testing.T) {
	s := Settings{Functions: "   "}
	names := s.FunctionNames()
	assert.True(t, names["t"])
	assert.True(t, names["$t"])
}

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("TRANSKIT_DISPLAY_LOCALE", "")
	t.Setenv("TRANSKIT_DISPLAY_MODE", "")
	t.Setenv("TRANSKIT_FUNCTIONS", "")
	t.Setenv("TRANSKIT_FRAMEWORK", "")
	os.Unsetenv("TRANSKIT_DISPLAY_LOCALE")

	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("TRANSKIT_DISPLAY_LOCALE=ja\n"), 0600))
	LoadEnvFile(env)
	t.Cleanup(func() { os.Unsetenv("TRANSKIT_DISPLAY_LOCALE") })

	s := Load()
	assert.Equal(t, "ja", s.DisplayLocale)
}

// Package settings provides persisted storage for editor-facing
// preferences: display locale, display mode, framework override, and
// the custom translation-function list.
//
// Settings are stored as JSON in the XDG config directory:
//
//	$XDG_CONFIG_HOME/transkit/settings.json  (default: ~/.config/transkit/)
//
// Environment variables override stored values at load time
// (TRANSKIT_DISPLAY_LOCALE, TRANSKIT_DISPLAY_MODE, TRANSKIT_FUNCTIONS,
// TRANSKIT_FRAMEWORK); a .env file in the working directory is honored
// when the loader is pointed at one.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/transkit/transkit/srcfile"
)

// DisplayMode controls how a rendering layer shows translations next to
// key references.
type DisplayMode string

const (
	// DisplayInline appends the translated text after the key.
	DisplayInline DisplayMode = "INLINE"
	// DisplayTranslationOnly replaces the key with the translated text.
	DisplayTranslationOnly DisplayMode = "TRANSLATION_ONLY"
)

// DefaultFunctions is the default custom-function list.
const DefaultFunctions = "t, $t"

// Settings are the persisted preferences.
type Settings struct {
	// DisplayLocale is the locale rendered in hints; empty means unset
	// (the fallback chain zh_CN → zh → en → first available applies).
	DisplayLocale string `json:"displayLocale"`
	// DisplayMode selects append vs replace rendering.
	DisplayMode DisplayMode `json:"displayMode"`
	// Framework overrides auto-detection when non-empty.
	Framework string `json:"framework,omitempty"`
	// Functions is the translation-function name list, separated by
	// ASCII or CJK punctuation.
	Functions string `json:"functions"`
}

// Default returns the settings used before anything is persisted.
func Default() Settings {
	return Settings{
		DisplayMode: DisplayInline,
		Functions:   DefaultFunctions,
	}
}

// FunctionNames parses the custom-function list into a name set.
func (s Settings) FunctionNames() map[string]bool {
	list := s.Functions
	if strings.TrimSpace(list) == "" {
		list = DefaultFunctions
	}
	names := make(map[string]bool)
	for _, n := range srcfile.SplitNames(list) {
		// Member-call patterns (i18n.t) match on the final segment.
		if i := strings.LastIndexByte(n, '.'); i >= 0 {
			n = n[i+1:]
		}
		if n != "" {
			names[n] = true
		}
	}
	return names
}

// path returns the settings file location.
func path() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving config dir: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "transkit", "settings.json"), nil
}

// Load reads persisted settings, applying env overrides. A missing or
// malformed file yields defaults, never an error surfaced to the user.
func Load() Settings {
	s := Default()
	if p, err := path(); err == nil {
		if data, err := os.ReadFile(p); err == nil {
			_ = json.Unmarshal(data, &s)
		}
	}
	s.applyEnv()
	if s.DisplayMode != DisplayTranslationOnly {
		s.DisplayMode = DisplayInline
	}
	return s
}

// LoadEnvFile loads a .env file before env overrides are read. Missing
// files are fine.
func LoadEnvFile(file string) {
	_ = godotenv.Load(file)
}

func (s *Settings) applyEnv() {
	if v := os.Getenv("TRANSKIT_DISPLAY_LOCALE"); v != "" {
		s.DisplayLocale = v
	}
	if v := os.Getenv("TRANSKIT_DISPLAY_MODE"); v != "" {
		s.DisplayMode = DisplayMode(strings.ToUpper(v))
	}
	if v := os.Getenv("TRANSKIT_FUNCTIONS"); v != "" {
		s.Functions = v
	}
	if v := os.Getenv("TRANSKIT_FRAMEWORK"); v != "" {
		s.Framework = v
	}
}

// Save persists settings with 0600 permissions, creating the config
// directory as needed.
func Save(s Settings) error {
	p, err := path()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", p, err)
	}
	return nil
}

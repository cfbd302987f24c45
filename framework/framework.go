// Package framework guesses which i18n framework a project uses by
// probing its manifest and build files. The guess is advisory — it
// tunes labels and default call patterns, never indexing correctness —
// so every probe degrades quietly to FrameworkNone.
package framework

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Framework is the detected i18n framework.
type Framework string

const (
	FrameworkNone         Framework = "none"
	FrameworkReactI18next Framework = "react-i18next"
	FrameworkVueI18n      Framework = "vue-i18n"
	FrameworkI18next      Framework = "i18next"
	FrameworkNextIntl     Framework = "next-intl"
	FrameworkSpring       Framework = "spring"
	FrameworkGoI18n       Framework = "go-i18n"
	FrameworkGotext       Framework = "gotext"
)

// DisplayName returns the label shown in UI surfaces.
func (f Framework) DisplayName() string {
	switch f {
	case FrameworkNone:
		return "none detected"
	default:
		return string(f)
	}
}

// HookNames returns the namespace-hook function names this framework
// establishes ("useTranslation('ns')" and friends).
func (f Framework) HookNames() []string {
	switch f {
	case FrameworkVueI18n:
		return []string{"useI18n", "useTranslation"}
	default:
		return []string{"useTranslation", "getFixedT", "withTranslation"}
	}
}

// npmPackages maps package.json dependency names to frameworks, most
// specific first.
var npmPackages = []struct {
	dep string
	fw  Framework
}{
	{"react-i18next", FrameworkReactI18next},
	{"next-intl", FrameworkNextIntl},
	{"vue-i18n", FrameworkVueI18n},
	{"@nuxtjs/i18n", FrameworkVueI18n},
	{"i18next", FrameworkI18next},
}

// Detect inspects manifests under root and returns the best guess.
// Re-evaluated whenever a manifest file changes.
func Detect(root string) Framework {
	if fw := detectNPM(filepath.Join(root, "package.json")); fw != FrameworkNone {
		return fw
	}
	if fw := detectGo(filepath.Join(root, "go.mod")); fw != FrameworkNone {
		return fw
	}
	if detectSpring(root) {
		return FrameworkSpring
	}
	return FrameworkNone
}

// IsManifest reports whether a path is one of the files Detect reads,
// for change-listener re-evaluation.
func IsManifest(path string) bool {
	switch filepath.Base(path) {
	case "package.json", "go.mod", "pom.xml", "build.gradle", "build.gradle.kts":
		return true
	}
	return false
}

func detectNPM(manifest string) Framework {
	data, err := os.ReadFile(manifest)
	if err != nil {
		return FrameworkNone
	}
	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return FrameworkNone
	}
	has := func(dep string) bool {
		_, a := pkg.Dependencies[dep]
		_, b := pkg.DevDependencies[dep]
		return a || b
	}
	for _, p := range npmPackages {
		if has(p.dep) {
			return p.fw
		}
	}
	return FrameworkNone
}

func detectGo(gomod string) Framework {
	data, err := os.ReadFile(gomod)
	if err != nil {
		return FrameworkNone
	}
	text := string(data)
	switch {
	case strings.Contains(text, "nicksnyder/go-i18n"):
		return FrameworkGoI18n
	case strings.Contains(text, "leonelquinteros/gotext"):
		return FrameworkGotext
	}
	return FrameworkNone
}

func detectSpring(root string) bool {
	for _, name := range []string{"pom.xml", "build.gradle", "build.gradle.kts"} {
		data, err := os.ReadFile(filepath.Join(root, name))
		if err != nil {
			continue
		}
		if strings.Contains(string(data), "springframework") ||
			strings.Contains(string(data), "spring-boot") {
			return true
		}
	}
	return false
}

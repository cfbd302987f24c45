package locale

import (
	"reflect"
	"testing"
)

func TestIsLocale_Simple(t *testing.T) {
	for _, name := range []string{"en", "ru", "de", "zh", "ja", "fr"} {
		if !IsLocale(name) {
			t.Errorf("IsLocale(%q) = false, want true", name)
		}
	}
}

func TestIsLocale_WithRegion(t *testing.T) {
	for _, name := range []string{"zh_CN", "zh-CN", "en_US", "pt_BR", "pt-br", "en-gb"} {
		if !IsLocale(name) {
			t.Errorf("IsLocale(%q) = false, want true", name)
		}
	}
}

func TestIsLocale_Rejects(t *testing.T) {
	for _, name := range []string{"", "common", "js", "messages", "e", "eng_USA", "en_U", "user"} {
		if IsLocale(name) {
			t.Errorf("IsLocale(%q) = true, want false", name)
		}
	}
}

func TestIsLocale_WellKnownCaseInsensitive(t *testing.T) {
	for _, name := range []string{"ZH_CN", "zh_cn", "EN_GB", "Ja_Jp"} {
		if !IsLocale(name) {
			t.Errorf("IsLocale(%q) = false, want true", name)
		}
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"en":     "en",
		"EN":     "en",
		"zh-cn":  "zh_CN",
		"zh_cn":  "zh_CN",
		"pt-BR":  "pt_BR",
		"common": "common", // not a locale, unchanged
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildCandidates(t *testing.T) {
	got := BuildCandidates("zh-cn")
	want := []string{"zh-cn", "zh_CN", "zh-CN", "zh"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildCandidates(zh-cn) = %v, want %v", got, want)
	}
}

func TestBuildCandidates_BareLanguage(t *testing.T) {
	got := BuildCandidates("en")
	want := []string{"en"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildCandidates(en) = %v, want %v", got, want)
	}
}

func TestLanguage(t *testing.T) {
	if got := Language("zh_CN"); got != "zh" {
		t.Errorf("Language(zh_CN) = %q, want zh", got)
	}
	if got := Language("en"); got != "en" {
		t.Errorf("Language(en) = %q, want en", got)
	}
}

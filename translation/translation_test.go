package translation

import "testing"

func TestPickLocale_Chain(t *testing.T) {
	e := func(loc string) Entry { return Entry{Key: "k", Locale: loc} }

	cases := []struct {
		name    string
		locales []string
		want    string
	}{
		{"zh_CN wins", []string{"en", "zh", "zh_CN", "fr"}, "zh_CN"},
		{"zh next", []string{"en", "zh", "fr"}, "zh"},
		{"en next", []string{"en", "fr"}, "en"},
		{"first available", []string{"fr"}, "fr"},
		{"alphabetical tie-break", []string{"ja", "de", "fr"}, "de"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			byLoc := make(map[string]Entry)
			for _, loc := range tc.locales {
				byLoc[loc] = e(loc)
			}
			got, ok := PickLocale(byLoc)
			if !ok {
				t.Fatal("PickLocale returned no entry")
			}
			if got.Locale != tc.want {
				t.Errorf("picked %q, want %q", got.Locale, tc.want)
			}
		})
	}
}

func TestPickLocale_Empty(t *testing.T) {
	if _, ok := PickLocale(nil); ok {
		t.Error("want no entry for empty map")
	}
}

func TestJoinKey(t *testing.T) {
	if got := JoinKey("user", "profile", "name"); got != "user.profile.name" {
		t.Errorf("JoinKey = %q", got)
	}
	if got := JoinKey("", "title", ""); got != "title" {
		t.Errorf("JoinKey skips empties, got %q", got)
	}
	if got := JoinKey(); got != "" {
		t.Errorf("JoinKey() = %q, want empty", got)
	}
}

func TestParentKey(t *testing.T) {
	parent, leaf := ParentKey("user.profile.name")
	if parent != "user.profile" || leaf != "name" {
		t.Errorf("got %q / %q", parent, leaf)
	}

	parent, leaf = ParentKey("title")
	if parent != "" || leaf != "title" {
		t.Errorf("got %q / %q, want empty parent", parent, leaf)
	}
}

func TestFullKey(t *testing.T) {
	f := &File{KeyPrefix: "user."}
	if got := f.FullKey("name"); got != "user.name" {
		t.Errorf("FullKey = %q", got)
	}
	bare := &File{}
	if got := bare.FullKey("name"); got != "name" {
		t.Errorf("FullKey = %q", got)
	}
}

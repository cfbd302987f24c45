package jsonfile

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestParse_NestedFlattening(t *testing.T) {
	data := []byte(`{"user": {"name": "Name", "age": "Age"}}`)
	entries := Parse(data, "", "en", "en.json")

	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if e := entries["user.name"]; e.Value != "Name" {
		t.Errorf("user.name = %q, want Name", e.Value)
	}
	if e := entries["user.age"]; e.Value != "Age" {
		t.Errorf("user.age = %q, want Age", e.Value)
	}
}

func TestParse_PrefixApplied(t *testing.T) {
	data := []byte(`{"name": "Name"}`)
	entries := Parse(data, "user.", "en", "user.json")
	e, ok := entries["name"]
	if !ok {
		t.Fatal("missing relative key name")
	}
	if e.Key != "user.name" {
		t.Errorf("full key = %q, want user.name", e.Key)
	}
	if e.Locale != "en" {
		t.Errorf("locale = %q, want en", e.Locale)
	}
}

func TestParse_NonStringLeavesIgnored(t *testing.T) {
	data := []byte(`{"a": "x", "n": 3, "b": true, "list": ["y"], "z": null}`)
	entries := Parse(data, "", "en", "f.json")
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1 (only string leaves)", len(entries))
	}
}

func TestParse_MalformedYieldsEmpty(t *testing.T) {
	entries := Parse([]byte(`{"a": `), "", "en", "f.json")
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestParse_KeyOffsets(t *testing.T) {
	data := []byte(`{
  "greeting": "Hello",
  "nav": {
    "home": "Home"
  }
}`)
	entries := Parse(data, "", "en", "f.json")

	g := entries["greeting"]
	if got := string(data[g.Offset : g.Offset+g.Length]); got != `"greeting"` {
		t.Errorf("greeting token = %q", got)
	}
	h := entries["nav.home"]
	if got := string(data[h.Offset : h.Offset+h.Length]); got != `"home"` {
		t.Errorf("nav.home token = %q", got)
	}
}

func TestInsertKey_ExistingParent(t *testing.T) {
	data := []byte(`{
  "nav": {
    "home": "Home"
  }
}`)
	out, caret, err := InsertKey(data, "nav.about", "About")
	if err != nil {
		t.Fatal(err)
	}
	if !gjson.ValidBytes(out) {
		t.Fatalf("result is not valid JSON:\n%s", out)
	}
	if got := gjson.GetBytes(out, "nav.about").String(); got != "About" {
		t.Errorf("nav.about = %q, want About", got)
	}
	if got := gjson.GetBytes(out, "nav.home").String(); got != "Home" {
		t.Errorf("sibling nav.home = %q, want Home (must be preserved)", got)
	}
	if caret <= 0 || caret > len(out) {
		t.Errorf("caret = %d out of range", caret)
	}
}

func TestInsertKey_CreatesIntermediateObjects(t *testing.T) {
	out, _, err := InsertKey([]byte(`{}`), "a.b.c", "v")
	if err != nil {
		t.Fatal(err)
	}
	if !gjson.ValidBytes(out) {
		t.Fatalf("result is not valid JSON:\n%s", out)
	}
	if got := gjson.GetBytes(out, "a.b.c").String(); got != "v" {
		t.Errorf("a.b.c = %q, want v", got)
	}
}

func TestInsertKey_EmptyFile(t *testing.T) {
	out, _, err := InsertKey(nil, "k", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"k"`) {
		t.Errorf("missing inserted key: %s", out)
	}
}

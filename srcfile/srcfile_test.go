package srcfile

import (
	"reflect"
	"strings"
	"testing"
)

func TestParse_DefaultExport(t *testing.T) {
	src := []byte(`export default {
  greeting: 'Hello',
  nav: {
    home: "Home",
    about: 'About',
  },
};
`)
	entries := Parse(src, "", "en", "en.ts")
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3: %v", len(entries), entries)
	}
	if e := entries["nav.home"]; e.Value != "Home" {
		t.Errorf("nav.home = %q", e.Value)
	}
	if e := entries["greeting"]; e.Value != "Hello" {
		t.Errorf("greeting = %q", e.Value)
	}
}

func TestParse_ModuleExports(t *testing.T) {
	src := []byte(`module.exports = { ok: 'OK' };`)
	entries := Parse(src, "", "en", "en.cjs")
	if e := entries["ok"]; e.Value != "OK" {
		t.Errorf("ok = %q", e.Value)
	}
}

func TestParse_WrapperCallTolerated(t *testing.T) {
	src := []byte(`export default defineMessages({ title: 'T' });`)
	entries := Parse(src, "", "en", "en.ts")
	if e := entries["title"]; e.Value != "T" {
		t.Errorf("title = %q", e.Value)
	}
}

func TestParse_SkipsNonStringValues(t *testing.T) {
	src := []byte(`export default {
  a: 'text',
  n: 42,
  f: () => 'nope',
  arr: ['x'],
  tpl: ` + "`has ${interp}`" + `,
};`)
	entries := Parse(src, "", "en", "en.js")
	if len(entries) != 1 {
		t.Errorf("entries = %d, want 1: %v", len(entries), entries)
	}
}

func TestParse_QuotedKeysAndComments(t *testing.T) {
	src := []byte(`export default {
  // navigation labels
  'nav.deep': 'Deep', /* inline */
  plain: 'P',
};`)
	entries := Parse(src, "", "en", "en.js")
	if e := entries["nav.deep"]; e.Value != "Deep" {
		t.Errorf("nav.deep = %q", e.Value)
	}
	if e := entries["plain"]; e.Value != "P" {
		t.Errorf("plain = %q", e.Value)
	}
}

func TestParse_KeyOffsets(t *testing.T) {
	src := []byte(`export default { greeting: 'Hello' };`)
	entries := Parse(src, "", "en", "en.js")
	e := entries["greeting"]
	if got := string(src[e.Offset : e.Offset+e.Length]); got != "greeting" {
		t.Errorf("key token = %q", got)
	}
}

func TestParse_NoExportYieldsEmpty(t *testing.T) {
	entries := Parse([]byte(`const x = { a: 'b' };`), "", "en", "f.js")
	if len(entries) != 0 {
		t.Errorf("entries = %d, want 0", len(entries))
	}
}

func TestFindCalls_BareAndMember(t *testing.T) {
	src := []byte(`const a = t('profile.name'); i18n.$t("other.key"); not_t('x');`)
	calls := FindCalls(src, map[string]bool{"t": true, "$t": true})
	if len(calls) != 2 {
		t.Fatalf("calls = %d, want 2: %+v", len(calls), calls)
	}
	if calls[0].Arg == nil || calls[0].Arg.Value != "profile.name" {
		t.Errorf("call 0 arg = %+v", calls[0].Arg)
	}
	if calls[1].Name != "$t" || calls[1].Arg.Value != "other.key" {
		t.Errorf("call 1 = %+v", calls[1])
	}
}

func TestFindCalls_IgnoresStringsAndComments(t *testing.T) {
	src := []byte(`// t('comment')
const s = "t('in string')";
t('real');`)
	calls := FindCalls(src, map[string]bool{"t": true})
	if len(calls) != 1 || calls[0].Arg.Value != "real" {
		t.Errorf("calls = %+v", calls)
	}
}

func TestEnclosingFunction(t *testing.T) {
	src := []byte(`function Outer() {
  const x = t('key');
}
const top = t('toplevel');`)
	calls := FindCalls(src, map[string]bool{"t": true})
	if len(calls) != 2 {
		t.Fatalf("calls = %d", len(calls))
	}

	sp, ok := EnclosingFunction(src, calls[0].Offset)
	if !ok {
		t.Fatal("first call should be inside a function")
	}
	body := string(src[sp.Start : sp.End+1])
	if !strings.Contains(body, "t('key')") {
		t.Errorf("span %+v does not cover the call: %q", sp, body)
	}

	if _, ok := EnclosingFunction(src, calls[1].Offset); ok {
		t.Error("top-level call reported as enclosed")
	}
}

func TestEnclosingFunction_ControlBlocks(t *testing.T) {
	// Braces after if/for/while clauses are plain blocks, so the
	// innermost function span is still the declaring function's body.
	src := []byte(`function F(cond) {
  if (cond) {
    t('inside');
  }
  while (cond) {
    t('loop');
  }
}`)
	calls := FindCalls(src, map[string]bool{"t": true})
	if len(calls) != 2 {
		t.Fatalf("calls = %d", len(calls))
	}
	funcBrace := strings.IndexByte(string(src), '{')
	for _, c := range calls {
		sp, ok := EnclosingFunction(src, c.Offset)
		if !ok {
			t.Fatalf("call at %d not enclosed", c.Offset)
		}
		if sp.Start != funcBrace {
			t.Errorf("call at %d scoped to brace %d, want function body %d", c.Offset, sp.Start, funcBrace)
		}
	}
}

func TestEnclosingFunction_Arrow(t *testing.T) {
	src := []byte(`const C = () => {
  useTranslation('user');
  return t('profile.name');
};`)
	calls := FindCalls(src, map[string]bool{"t": true})
	if len(calls) != 1 {
		t.Fatalf("calls = %d", len(calls))
	}
	if _, ok := EnclosingFunction(src, calls[0].Offset); !ok {
		t.Error("arrow body not detected as function span")
	}
}

func TestHookArg_Shapes(t *testing.T) {
	cases := []struct {
		src  string
		want string
	}{
		{`useTranslation('user')`, "user"},
		{`useTranslation(['user', 'common'])`, "user"},
		{`useTranslation({ ns: 'user' })`, "user"},
		{`useTranslation({ namespace: 'user' })`, "user"},
		{`useTranslation()`, ""},
		{`useTranslation(someVar)`, ""},
	}
	for _, tc := range cases {
		calls := FindCalls([]byte(tc.src), map[string]bool{"useTranslation": true})
		if len(calls) != 1 {
			t.Fatalf("%s: calls = %d", tc.src, len(calls))
		}
		if got := HookArg([]byte(tc.src), calls[0].ArgsStart); got != tc.want {
			t.Errorf("HookArg(%s) = %q, want %q", tc.src, got, tc.want)
		}
	}
}

func TestSplitNames(t *testing.T) {
	got := SplitNames("t, $t，translate、 i18n.t ;tr")
	want := []string{"t", "$t", "translate", "i18n.t", "tr"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SplitNames = %v, want %v", got, want)
	}
}

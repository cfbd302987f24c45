package namespace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transkit/transkit/framework"
)

func resolver() *Resolver {
	return NewResolver(framework.FrameworkReactI18next, map[string]bool{"t": true, "$t": true})
}

// offsetOf returns the position of the first occurrence of marker.
func offsetOf(t *testing.T, src, marker string) int {
	t.Helper()
	i := strings.Index(src, marker)
	require.GreaterOrEqual(t, i, 0, "marker %q not found", marker)
	return i
}

func TestResolve_HookInSameFunction(t *testing.T) {
	src := `
function Profile() {
  const { t } = useTranslation('user');
  return t('profile.name');
}
`
	off := offsetOf(t, src, "'profile.name'")
	assert.Equal(t, "user", resolver().Resolve([]byte(src), off))
	assert.Equal(t, "user.profile.name", resolver().FullKey([]byte(src), off, "profile.name"))
}

func TestResolve_InnerFunctionSeesOuterHook(t *testing.T) {
	src := `
function Page() {
  const { t } = useTranslation('checkout');
  const render = () => {
    return t('total');
  };
  return render();
}
`
	off := offsetOf(t, src, "'total'")
	assert.Equal(t, "checkout", resolver().Resolve([]byte(src), off))
}

func TestResolve_HookInsideControlBlock(t *testing.T) {
	// if/for blocks are not function scopes: a hook bound inside one is
	// visible to calls later in the same function.
	src := `
function Profile(cond) {
  let t;
  if (cond) {
    ({ t } = useTranslation('user'));
  }
  for (const x of items) {
    console.log(x);
  }
  return t('profile.name');
}
`
	off := offsetOf(t, src, "'profile.name'")
	assert.Equal(t, "user", resolver().Resolve([]byte(src), off))
}

func TestResolve_InnerHookShadowsOuter(t *testing.T) {
	src := `
function Page() {
  const { t } = useTranslation('outer');
  const section = () => {
    const { t } = useTranslation('inner');
    return t('title');
  };
  return t('heading');
}
`
	data := []byte(src)
	assert.Equal(t, "inner", resolver().Resolve(data, offsetOf(t, src, "'title'")))
	assert.Equal(t, "outer", resolver().Resolve(data, offsetOf(t, src, "'heading'")))
}

func TestResolve_FirstHookWinsInScope(t *testing.T) {
	src := `
function App() {
  const { t } = useTranslation('first');
  const { t: t2 } = useTranslation('second');
  return t('greeting');
}
`
	off := offsetOf(t, src, "'greeting'")
	assert.Equal(t, "first", resolver().Resolve([]byte(src), off))
}

func TestResolve_TopLevelHook(t *testing.T) {
	src := `
const t = getFixedT(null, 'common');
export const label = t('ok');
`
	off := offsetOf(t, src, "'ok'")
	// getFixedT's first string argument is the namespace only in the
	// single-argument form; null makes the arg shape unrecognized.
	assert.Equal(t, "", resolver().Resolve([]byte(src), off))
}

func TestResolve_ArrayAndObjectArgs(t *testing.T) {
	src := `
function A() {
  const { t } = useTranslation(['shop', 'common']);
  return t('cart.empty');
}
function B() {
  const { t } = useTranslation({ ns: 'admin' });
  return t('panel');
}
`
	data := []byte(src)
	assert.Equal(t, "shop", resolver().Resolve(data, offsetOf(t, src, "'cart.empty'")))
	assert.Equal(t, "admin", resolver().Resolve(data, offsetOf(t, src, "'panel'")))
}

func TestResolve_NoHook(t *testing.T) {
	src := `
function Plain() {
  return t('standalone.key');
}
`
	off := offsetOf(t, src, "'standalone.key'")
	assert.Equal(t, "", resolver().Resolve([]byte(src), off))
	assert.Equal(t, "standalone.key", resolver().FullKey([]byte(src), off, "standalone.key"))
}

func TestUsages(t *testing.T) {
	src := `
function Profile() {
  const { t } = useTranslation('user');
  return t('profile.name') + t('profile.email');
}
const loose = $t('app.title');
`
	usages := resolver().Usages([]byte(src), "src/Profile.tsx")
	require.Len(t, usages, 3)
	assert.Equal(t, "user.profile.name", usages[0].Key)
	assert.Equal(t, "user.profile.email", usages[1].Key)
	assert.Equal(t, "app.title", usages[2].Key, "top-level call has no namespace")
	for _, u := range usages {
		assert.Equal(t, "src/Profile.tsx", u.Path)
		assert.Greater(t, u.Lit.Offset, 0)
	}
}

func TestGoUsages(t *testing.T) {
	src := `package main

import "example.com/app/i18n"

func main() {
	println(i18n.T("app.greeting"))
	println(T("app.farewell"))
	println(T(dynamicKey))
}
`
	usages := GoUsages([]byte(src), "main.go", map[string]bool{"T": true})
	require.Len(t, usages, 2)
	assert.Equal(t, "app.greeting", usages[0].Key)
	assert.Equal(t, "app.farewell", usages[1].Key)
	assert.Equal(t, `"app.greeting"`, src[usages[0].Lit.Offset:usages[0].Lit.Offset+usages[0].Lit.Length])
}

func TestGoUsages_Unparsable(t *testing.T) {
	assert.Nil(t, GoUsages([]byte("not go at all {{{"), "x.go", map[string]bool{"T": true}))
}

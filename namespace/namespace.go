// Package namespace resolves the i18next-style namespace active at a
// position in JS/TS source, and finds translation-call usages for the
// rename engine.
//
// A hook call like useTranslation('user') binds the namespace "user"
// for translation calls inside the same function. Resolution walks the
// scope chain from the innermost enclosing function outward, then the
// top level; within one scope the first hook in document order wins.
package namespace

import (
	"sort"

	"github.com/transkit/transkit/framework"
	"github.com/transkit/transkit/srcfile"
	"github.com/transkit/transkit/translation"
)

// Resolver holds the hook and translation-function name sets for one
// project configuration.
type Resolver struct {
	hooks map[string]bool
	funcs map[string]bool
}

// NewResolver builds a resolver from the detected framework's hook
// names and the configured translation-function list.
func NewResolver(fw framework.Framework, funcs map[string]bool) *Resolver {
	hooks := make(map[string]bool)
	for _, h := range fw.HookNames() {
		hooks[h] = true
	}
	if len(funcs) == 0 {
		funcs = map[string]bool{"t": true, "$t": true}
	}
	return &Resolver{hooks: hooks, funcs: funcs}
}

// Resolve returns the namespace active at off, or "" when no hook call
// is in scope.
func (r *Resolver) Resolve(data []byte, off int) string {
	calls := srcfile.FindCalls(data, r.hooks)
	if len(calls) == 0 {
		return ""
	}
	spans := srcfile.FunctionSpans(data)

	// Scope chain: function spans containing off, innermost first, with
	// the top level (start -1) appended last.
	var chain []int
	for _, sp := range spans {
		if sp.Start < off && off < sp.End {
			chain = append(chain, sp.Start)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(chain)))
	chain = append(chain, -1)

	for _, scope := range chain {
		for _, c := range calls {
			if scopeStart(spans, c.Offset) != scope {
				continue
			}
			if ns := srcfile.HookArg(data, c.ArgsStart); ns != "" {
				return ns
			}
		}
	}
	return ""
}

// scopeStart identifies the innermost function span containing off by
// its opening-brace offset; -1 means top level.
func scopeStart(spans []srcfile.FunctionSpan, off int) int {
	best := -1
	for _, sp := range spans {
		if sp.Start < off && off < sp.End && sp.Start > best {
			best = sp.Start
		}
	}
	return best
}

// FullKey expands a partial key written at off into its fully-qualified
// form using the namespace in scope.
func (r *Resolver) FullKey(data []byte, off int, partial string) string {
	if ns := r.Resolve(data, off); ns != "" {
		return translation.JoinKey(ns, partial)
	}
	return partial
}

// Usage is one translation-function call site referencing a key.
type Usage struct {
	// Path of the source file, root-relative.
	Path string
	// Key is the fully-qualified key after namespace expansion.
	Key string
	// Lit is the argument literal as written, for in-place edits.
	Lit srcfile.StringLit
}

// Usages finds every translation call with a string-literal key in one
// source file, each expanded through the namespace in scope at its
// position.
func (r *Resolver) Usages(data []byte, path string) []Usage {
	var out []Usage
	for _, c := range srcfile.FindCalls(data, r.funcs) {
		if c.Arg == nil {
			continue
		}
		out = append(out, Usage{
			Path: path,
			Key:  r.FullKey(data, c.Offset, c.Arg.Value),
			Lit:  *c.Arg,
		})
	}
	return out
}

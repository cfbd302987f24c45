package namespace

import (
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// GoUsages extracts translation calls with string-literal keys from Go
// source using the real parser. Selector calls (i18n.T, loc.Get) match
// on the final segment; Go has no hook-scoped namespaces, so keys are
// taken as written. Unparsable source yields nil.
func GoUsages(src []byte, path string, names map[string]bool) []Usage {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, path, src, 0)
	if err != nil {
		return nil
	}
	tf := fset.File(f.Pos())

	var out []Usage
	ast.Inspect(f, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok || len(call.Args) == 0 {
			return true
		}
		var name string
		switch fn := call.Fun.(type) {
		case *ast.Ident:
			name = fn.Name
		case *ast.SelectorExpr:
			name = fn.Sel.Name
		default:
			return true
		}
		if !names[name] {
			return true
		}
		lit, ok := call.Args[0].(*ast.BasicLit)
		if !ok || lit.Kind != token.STRING {
			return true
		}
		key, err := strconv.Unquote(lit.Value)
		if err != nil {
			return true
		}
		u := Usage{Path: path, Key: key}
		u.Lit.Value = key
		u.Lit.Offset = tf.Offset(lit.Pos())
		u.Lit.Length = len(lit.Value)
		out = append(out, u)
		return true
	})
	return out
}

// Package noenv reports tests that mutate the process environment.
package noenv

import (
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const doc = `noenv: forbid os.Setenv, os.Unsetenv and t.Setenv in test files

Configuration is built with config.LoadFromMap in tests, so a test never depends on or
changes process-wide state and every package can run its tests in parallel.`

// Analyzer is the noenv analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "noenv",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

const hint = "build the configuration with config.LoadFromMap instead"

func run(pass *analysis.Pass) (interface{}, error) {
	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	ins.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		if !strings.HasSuffix(pass.Fset.Position(call.Pos()).Filename, "_test.go") {
			return
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return
		}

		fn, ok := pass.TypesInfo.ObjectOf(sel.Sel).(*types.Func)
		if !ok || fn.Pkg() == nil {
			return
		}
		switch {
		case fn.Pkg().Path() == "os" && (fn.Name() == "Setenv" || fn.Name() == "Unsetenv"):
			pass.Reportf(call.Pos(), "os.%s is forbidden in tests: %s", fn.Name(), hint)
		case fn.Name() == "Setenv" && isTestingMethod(fn):
			pass.Reportf(call.Pos(), "%s.Setenv is forbidden in tests: %s", receiverName(fn), hint)
		}
	})
	return nil, nil
}

// isTestingMethod reports whether fn is a method of testing.T, testing.B or testing.F.
func isTestingMethod(fn *types.Func) bool {
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return false
	}
	return fn.Pkg().Path() == "testing"
}

func receiverName(fn *types.Func) string {
	recv := fn.Type().(*types.Signature).Recv().Type()
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = ptr.Elem()
	}
	if named, ok := recv.(*types.Named); ok {
		return "testing." + named.Obj().Name()
	}
	return "testing"
}

package interpreter

import (
	"strings"
	"testing"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

func TestValueParametersAreDeepCopied(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Fn("mutate", []*ast.Param{ast.P("items")}, nil, ast.Block(
			ast.ExprS(ast.Call(ast.Member(ast.ID("items"), "push"), ast.Int(99))),
		)),
		ast.Decl("nums", ast.List(ast.Int(1), ast.Int(2))),
		ast.ExprS(ast.Call(ast.ID("mutate"), ast.ID("nums"))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("nums"), "size"))),
	)
	wantInt(t, val, 2)
}

func TestRefParametersShareTheCallersValue(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Fn("mutate", []*ast.Param{ast.PRef("items")}, nil, ast.Block(
			ast.ExprS(ast.Call(ast.Member(ast.ID("items"), "push"), ast.Int(99))),
		)),
		ast.Decl("nums", ast.List(ast.Int(1), ast.Int(2))),
		ast.ExprS(ast.Call(ast.ID("mutate"), ast.ID("nums"))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("nums"), "size"))),
	)
	wantInt(t, val, 3)
}

func TestDefaultsEvaluateInCalleeEnvironment(t *testing.T) {
	// The default for b reads the already-bound parameter a.
	val, _ := evalProgram(t,
		ast.Fn("f", []*ast.Param{
			ast.P("a"),
			ast.PDef("b", ast.Bin("+", ast.ID("a"), ast.Int(1))),
		}, nil, ast.Block(
			ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		)),
		ast.ExprS(ast.Call(ast.ID("f"), ast.Int(5))),
	)
	wantInt(t, val, 11)

	// An explicit argument overrides the default.
	val, _ = evalProgram(t,
		ast.Fn("f", []*ast.Param{
			ast.P("a"),
			ast.PDef("b", ast.Int(100)),
		}, nil, ast.Block(
			ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		)),
		ast.ExprS(ast.Call(ast.ID("f"), ast.Int(1), ast.Int(2))),
	)
	wantInt(t, val, 3)
}

func TestArityMismatchFails(t *testing.T) {
	evalFails(t, "Function 'f' expects",
		ast.Fn("f", []*ast.Param{ast.P("a"), ast.P("b")}, nil, ast.Block()),
		ast.ExprS(ast.Call(ast.ID("f"), ast.Int(1))),
	)
}

func TestParameterTypeChecked(t *testing.T) {
	evalFails(t, "Parameter 'n' of function 'f' expects int, got string",
		ast.Fn("f", []*ast.Param{ast.PT("n", ast.TyInt())}, nil, ast.Block()),
		ast.ExprS(ast.Call(ast.ID("f"), ast.Str("nope"))),
	)
}

func TestReturnTypeChecked(t *testing.T) {
	evalFails(t, "Function 'f' must return int, got string",
		ast.Fn("f", nil, ast.TyInt(), ast.Block(ast.Ret(ast.Str("oops")))),
		ast.ExprS(ast.Call(ast.ID("f"))),
	)
}

func TestGenericParameterBindingFixedByFirstUse(t *testing.T) {
	// Both parameters share T; the first argument fixes it to int, so a
	// string second argument fails.
	evalFails(t, "Parameter 'b' of function 'same' expects int, got string",
		ast.FnG("same", []string{"T"},
			[]*ast.Param{ast.PT("a", ast.TyParam("T")), ast.PT("b", ast.TyParam("T"))},
			nil, ast.Block()),
		ast.ExprS(ast.Call(ast.ID("same"), ast.Int(1), ast.Str("x"))),
	)
}

func TestCallDepthLimit(t *testing.T) {
	err := evalFails(t, "Call depth limit of 1000 exceeded in function 'loop'",
		ast.Fn("loop", nil, nil, ast.Block(
			ast.Ret(ast.Call(ast.ID("loop"))),
		)),
		ast.ExprS(ast.Call(ast.ID("loop"))),
	)
	if !strings.Contains(err.Error(), "missing base case") {
		t.Fatalf("expected remediation hint, got: %v", err)
	}
}

func TestClosuresCaptureDefiningScope(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Fn("counter", nil, nil, ast.Block(
			ast.Decl("n", ast.Int(0)),
			ast.Fn("bump", nil, nil, ast.Block(
				ast.Assign(ast.ID("n"), ast.Bin("+", ast.ID("n"), ast.Int(1))),
				ast.Ret(ast.ID("n")),
			)),
			ast.ExprS(ast.Call(ast.ID("bump"))),
			ast.ExprS(ast.Call(ast.ID("bump"))),
			ast.Ret(ast.Call(ast.ID("bump"))),
		)),
		ast.ExprS(ast.Call(ast.ID("counter"))),
	)
	wantInt(t, val, 3)
}

func TestCallingNonCallableFails(t *testing.T) {
	evalFails(t, "Cannot call a value of type int",
		ast.Decl("x", ast.Int(1)),
		ast.ExprS(ast.Call(ast.ID("x"))),
	)
}

func TestModuleLevelReturnYieldsValue(t *testing.T) {
	interp := New()
	val, _, err := interp.EvaluateModule(ast.Mod(
		ast.Decl("x", ast.Int(5)),
		ast.Ret(ast.Bin("*", ast.ID("x"), ast.Int(2))),
		ast.ExprS(ast.Str("unreachable")),
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	wantInt(t, val, 10)
	if _, ok := val.(runtime.IntValue); !ok {
		t.Fatalf("expected int, got %#v", val)
	}
}

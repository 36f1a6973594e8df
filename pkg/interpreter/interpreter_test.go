package interpreter

import (
	"bytes"
	"strings"
	"testing"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

func evalProgram(t *testing.T, statements ...ast.Statement) (runtime.Value, *Interpreter) {
	t.Helper()
	interp := New()
	val, _, err := interp.EvaluateModule(ast.Mod(statements...))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return val, interp
}

func evalFails(t *testing.T, contains string, statements ...ast.Statement) error {
	t.Helper()
	interp := New()
	_, _, err := interp.EvaluateModule(ast.Mod(statements...))
	if err == nil {
		t.Fatalf("expected failure containing %q", contains)
	}
	if !strings.Contains(err.Error(), contains) {
		t.Fatalf("expected error containing %q, got: %v", contains, err)
	}
	return err
}

func wantInt(t *testing.T, val runtime.Value, expected int32) {
	t.Helper()
	n, ok := val.(runtime.IntValue)
	if !ok || n.Val != expected {
		t.Fatalf("expected int %d, got %#v", expected, val)
	}
}

func wantBool(t *testing.T, val runtime.Value, expected bool) {
	t.Helper()
	b, ok := val.(runtime.BoolValue)
	if !ok || b.Val != expected {
		t.Fatalf("expected bool %v, got %#v", expected, val)
	}
}

func TestArithmeticAndPromotion(t *testing.T) {
	val, _ := evalProgram(t, ast.ExprS(ast.Bin("+", ast.Int(2), ast.Int(3))))
	wantInt(t, val, 5)

	val, _ = evalProgram(t, ast.ExprS(ast.Bin("*", ast.Int(2), ast.Float(1.5))))
	f, ok := val.(runtime.FloatValue)
	if !ok || f.Val != 3.0 {
		t.Fatalf("expected float 3.0, got %#v", val)
	}
}

func TestIntegerOverflowRaises(t *testing.T) {
	evalFails(t, "Integer overflow in 2147483647 + 1",
		ast.ExprS(ast.Bin("+", ast.Int(2147483647), ast.Int(1))))
	evalFails(t, "Integer overflow",
		ast.ExprS(ast.Bin("*", ast.Int(65536), ast.Int(65536))))
	evalFails(t, "Integer overflow",
		ast.ExprS(ast.Un("-", ast.Int(-2147483648))))
}

func TestDivisionAndModuloByZeroRaise(t *testing.T) {
	evalFails(t, "Division by zero in 10 / 0",
		ast.ExprS(ast.Bin("/", ast.Int(10), ast.Int(0))))
	evalFails(t, "Modulo by zero in 10 % 0",
		ast.ExprS(ast.Bin("%", ast.Int(10), ast.Int(0))))
	evalFails(t, "Division by zero",
		ast.ExprS(ast.Bin("/", ast.Float(1.5), ast.Int(0))))
}

func TestNullAwareEquality(t *testing.T) {
	cases := []struct {
		name  string
		left  ast.Expression
		right ast.Expression
		want  bool
	}{
		{"null equals null", ast.Null(), ast.Null(), true},
		{"null is not zero", ast.Null(), ast.Int(0), false},
		{"int equals equal float", ast.Int(5), ast.Float(5.0), true},
		{"string never equals number", ast.Str("5"), ast.Int(5), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			val, _ := evalProgram(t, ast.ExprS(ast.Bin("==", c.left, c.right)))
			wantBool(t, val, c.want)
		})
	}
}

func TestContainerEqualityIsStructural(t *testing.T) {
	val, _ := evalProgram(t, ast.ExprS(ast.Bin("==",
		ast.List(ast.Int(1), ast.Int(2)),
		ast.List(ast.Int(1), ast.Int(2)))))
	wantBool(t, val, true)

	val, _ = evalProgram(t, ast.ExprS(ast.Bin("==",
		ast.Dict(ast.Entry(ast.Str("a"), ast.Int(1))),
		ast.Dict(ast.Entry(ast.Str("a"), ast.Int(2))))))
	wantBool(t, val, false)
}

func TestShortCircuitLogic(t *testing.T) {
	// The right side would fail on evaluation; short circuit must skip it.
	val, _ := evalProgram(t, ast.ExprS(ast.Bin("&&",
		ast.Bool(false),
		ast.Bin("/", ast.Int(1), ast.Int(0)))))
	wantBool(t, val, false)

	val, _ = evalProgram(t, ast.ExprS(ast.Bin("||",
		ast.Bool(true),
		ast.Bin("/", ast.Int(1), ast.Int(0)))))
	wantBool(t, val, true)
}

func TestWhileLoopWithBreakAndContinue(t *testing.T) {
	// sum odd numbers below 10, stopping at 7
	val, _ := evalProgram(t,
		ast.Decl("sum", ast.Int(0)),
		ast.Decl("n", ast.Int(0)),
		ast.While(ast.Bin("<", ast.ID("n"), ast.Int(10)), ast.Block(
			ast.Assign(ast.ID("n"), ast.Bin("+", ast.ID("n"), ast.Int(1))),
			ast.If(ast.Bin("==", ast.Bin("%", ast.ID("n"), ast.Int(2)), ast.Int(0)),
				ast.Block(ast.Cont()), nil),
			ast.If(ast.Bin(">", ast.ID("n"), ast.Int(7)), ast.Block(ast.Brk()), nil),
			ast.Assign(ast.ID("sum"), ast.Bin("+", ast.ID("sum"), ast.ID("n"))),
		)),
		ast.ExprS(ast.ID("sum")),
	)
	wantInt(t, val, 1+3+5+7)
}

func TestForInIteratesListsDictKeysAndStrings(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Decl("total", ast.Int(0)),
		ast.ForIn("x", ast.List(ast.Int(1), ast.Int(2), ast.Int(3)), ast.Block(
			ast.Assign(ast.ID("total"), ast.Bin("+", ast.ID("total"), ast.ID("x"))),
		)),
		ast.ExprS(ast.ID("total")),
	)
	wantInt(t, val, 6)

	// Dict iteration visits keys in sorted order.
	val, _ = evalProgram(t,
		ast.Decl("joined", ast.Str("")),
		ast.ForIn("k", ast.Dict(
			ast.Entry(ast.Str("b"), ast.Int(2)),
			ast.Entry(ast.Str("a"), ast.Int(1)),
		), ast.Block(
			ast.Assign(ast.ID("joined"), ast.Bin("+", ast.ID("joined"), ast.ID("k"))),
		)),
		ast.ExprS(ast.ID("joined")),
	)
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "ab" {
		t.Fatalf("expected \"ab\", got %#v", val)
	}

	val, _ = evalProgram(t,
		ast.Decl("count", ast.Int(0)),
		ast.ForIn("c", ast.Str("héllo"), ast.Block(
			ast.Assign(ast.ID("count"), ast.Bin("+", ast.ID("count"), ast.Int(1))),
		)),
		ast.ExprS(ast.ID("count")),
	)
	wantInt(t, val, 5)
}

func TestPipelineRewritesToCall(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Fn("double", []*ast.Param{ast.P("x")}, nil, ast.Block(
			ast.Ret(ast.Bin("*", ast.ID("x"), ast.Int(2))),
		)),
		ast.Fn("add", []*ast.Param{ast.P("a"), ast.P("b")}, nil, ast.Block(
			ast.Ret(ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		)),
		// 3 |> double |> add(4) == add(double(3), 4)
		ast.ExprS(ast.Bin("|>", ast.Bin("|>", ast.Int(3), ast.ID("double")),
			ast.Call(ast.ID("add"), ast.Int(4)))),
	)
	wantInt(t, val, 10)
}

func TestUndefinedVariableSuggestsNearName(t *testing.T) {
	err := evalFails(t, "Undefined variable 'contuer'",
		ast.Decl("counter", ast.Int(1)),
		ast.ExprS(ast.ID("contuer")),
	)
	if !strings.Contains(err.Error(), "Did you mean 'counter'?") {
		t.Fatalf("expected suggestion, got: %v", err)
	}
}

func TestPrintStringifiesArguments(t *testing.T) {
	interp := New()
	var buf bytes.Buffer
	interp.SetStdout(&buf)
	_, _, err := interp.EvaluateModule(ast.Mod(
		ast.ExprS(ast.Call(ast.ID("print"), ast.Str("x"), ast.Int(1), ast.Null(),
			ast.List(ast.Int(1), ast.Int(2)))),
	))
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := buf.String(); got != "x 1 null [1, 2]\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestTypeofAndLenBuiltins(t *testing.T) {
	val, _ := evalProgram(t, ast.ExprS(ast.Call(ast.ID("typeof"), ast.List(ast.Int(1)))))
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "list<int>" {
		t.Fatalf("unexpected typeof result %#v", val)
	}

	val, _ = evalProgram(t, ast.ExprS(ast.Call(ast.ID("len"), ast.Str("héllo"))))
	wantInt(t, val, 5)

	evalFails(t, "len expects a string, list or dict",
		ast.ExprS(ast.Call(ast.ID("len"), ast.Int(3))))
}

func TestStringConcatenationStringifies(t *testing.T) {
	val, _ := evalProgram(t, ast.ExprS(ast.Bin("+", ast.Str("n="), ast.Int(7))))
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "n=7" {
		t.Fatalf("unexpected concat result %#v", val)
	}
}

func TestListConcatenationBuildsNewList(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Decl("a", ast.List(ast.Int(1))),
		ast.Decl("b", ast.List(ast.Int(2))),
		ast.Decl("c", ast.Bin("+", ast.ID("a"), ast.ID("b"))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("c"), "size"))),
	)
	wantInt(t, val, 2)
}

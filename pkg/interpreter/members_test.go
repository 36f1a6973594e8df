package interpreter

import (
	"strings"
	"testing"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

func TestDictMethods(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Decl("d", ast.Dict(ast.Entry(ast.Str("a"), ast.Int(1)))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("d"), "put"), ast.Str("b"), ast.Int(2))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("d"), "size"))),
	)
	wantInt(t, val, 2)

	val, _ = evalProgram(t,
		ast.Decl("d", ast.Dict(ast.Entry(ast.Str("a"), ast.Int(1)))),
		ast.ExprS(ast.Bin("&&",
			ast.Call(ast.Member(ast.ID("d"), "has"), ast.Str("a")),
			ast.Un("!", ast.Call(ast.Member(ast.ID("d"), "has"), ast.Str("z"))))),
	)
	wantBool(t, val, true)

	// get on a missing key yields null instead of raising.
	val, _ = evalProgram(t,
		ast.Decl("d", ast.Dict()),
		ast.ExprS(ast.Bin("==", ast.Call(ast.Member(ast.ID("d"), "get"), ast.Str("x")), ast.Null())),
	)
	wantBool(t, val, true)

	val, _ = evalProgram(t,
		ast.Decl("d", ast.Dict(
			ast.Entry(ast.Str("b"), ast.Int(2)),
			ast.Entry(ast.Str("a"), ast.Int(1)),
		)),
		ast.ExprS(ast.Call(ast.Member(ast.Call(ast.Member(ast.ID("d"), "keys")), "join"), ast.Str(","))),
	)
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "a,b" {
		t.Fatalf("expected sorted keys, got %#v", val)
	}

	val, _ = evalProgram(t,
		ast.Decl("d", ast.Dict(ast.Entry(ast.Str("a"), ast.Int(1)))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("d"), "remove"), ast.Str("a"))),
	)
	wantBool(t, val, true)
}

func TestListMethods(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Decl("l", ast.List(ast.Int(3), ast.Int(1), ast.Int(2))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("l"), "indexOf"), ast.Int(1))),
	)
	wantInt(t, val, 1)

	val, _ = evalProgram(t,
		ast.Decl("l", ast.List(ast.Int(1))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("l"), "indexOf"), ast.Int(9))),
	)
	wantInt(t, val, -1)

	val, _ = evalProgram(t,
		ast.Decl("l", ast.List(ast.Int(1), ast.Int(2))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("l"), "contains"), ast.Float(2.0))),
	)
	wantBool(t, val, true)

	val, _ = evalProgram(t,
		ast.Decl("l", ast.List(ast.Int(1), ast.Int(2), ast.Int(3))),
		ast.ExprS(ast.Call(ast.Member(ast.Call(ast.Member(ast.ID("l"), "reverse")), "join"), ast.Str(""))),
	)
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "321" {
		t.Fatalf("expected reversed join, got %#v", val)
	}

	// reverse returns a new list; the original is untouched.
	val, _ = evalProgram(t,
		ast.Decl("l", ast.List(ast.Int(1), ast.Int(2))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("l"), "reverse"))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("l"), "get"), ast.Int(0))),
	)
	wantInt(t, val, 1)
}

func TestListGetOutOfRange(t *testing.T) {
	err := evalFails(t, "List index 5 out of range for list of size 2",
		ast.Decl("l", ast.List(ast.Int(1), ast.Int(2))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("l"), "get"), ast.Int(5))),
	)
	if !strings.Contains(err.Error(), "Valid indexes run from 0") {
		t.Fatalf("expected range hint, got: %v", err)
	}
}

func TestIndexingListsDictsAndStrings(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Decl("l", ast.List(ast.Str("a"), ast.Str("b"))),
		ast.ExprS(ast.Index(ast.ID("l"), ast.Int(1))),
	)
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "b" {
		t.Fatalf("unexpected list index %#v", val)
	}

	val, _ = evalProgram(t,
		ast.Decl("d", ast.Dict(ast.Entry(ast.Str("k"), ast.Int(9)))),
		ast.ExprS(ast.Index(ast.ID("d"), ast.Str("k"))),
	)
	wantInt(t, val, 9)

	evalFails(t, "Dict has no key 'missing'",
		ast.Decl("d", ast.Dict()),
		ast.ExprS(ast.Index(ast.ID("d"), ast.Str("missing"))),
	)

	val, _ = evalProgram(t,
		ast.ExprS(ast.Index(ast.Str("héllo"), ast.Int(1))),
	)
	if s, ok := val.(runtime.StringValue); !ok || s.Val != "é" {
		t.Fatalf("unexpected string index %#v", val)
	}
}

func TestIndexAssignment(t *testing.T) {
	val, _ := evalProgram(t,
		ast.Decl("l", ast.List(ast.Int(1), ast.Int(2))),
		ast.Assign(ast.Index(ast.ID("l"), ast.Int(0)), ast.Int(10)),
		ast.ExprS(ast.Index(ast.ID("l"), ast.Int(0))),
	)
	wantInt(t, val, 10)

	val, _ = evalProgram(t,
		ast.Decl("d", ast.Dict()),
		ast.Assign(ast.Index(ast.ID("d"), ast.Str("k")), ast.Int(5)),
		ast.ExprS(ast.Index(ast.ID("d"), ast.Str("k"))),
	)
	wantInt(t, val, 5)

	err := evalFails(t, "List index 2 out of range",
		ast.Decl("l", ast.List(ast.Int(1), ast.Int(2))),
		ast.Assign(ast.Index(ast.ID("l"), ast.Int(2)), ast.Int(3)),
	)
	if !strings.Contains(err.Error(), "use push") {
		t.Fatalf("expected push hint, got: %v", err)
	}
}

func TestUnknownDictMemberListsCatalog(t *testing.T) {
	err := evalFails(t, "Dict has no entry or method 'flip'",
		ast.Decl("d", ast.Dict()),
		ast.ExprS(ast.Call(ast.Member(ast.ID("d"), "flip"))),
	)
	if !strings.Contains(err.Error(), "Dict methods: get, has, keys, put, remove, size, values") {
		t.Fatalf("expected method catalog, got: %v", err)
	}
}

func TestStoredCallableMemberIsInvokable(t *testing.T) {
	// A function stored in a dict entry is callable through member syntax
	// once no builtin method shadows the name.
	val, _ := evalProgram(t,
		ast.Fn("double", []*ast.Param{ast.P("x")}, nil, ast.Block(
			ast.Ret(ast.Bin("*", ast.ID("x"), ast.Int(2))),
		)),
		ast.Decl("ops", ast.Dict(ast.Entry(ast.Str("twice"), ast.ID("double")))),
		ast.ExprS(ast.Call(ast.Member(ast.ID("ops"), "twice"), ast.Int(21))),
	)
	wantInt(t, val, 42)
}

func TestMethodArityChecked(t *testing.T) {
	evalFails(t, "dict.put expects 2 arguments, got 1",
		ast.Decl("d", ast.Dict()),
		ast.ExprS(ast.Call(ast.Member(ast.ID("d"), "put"), ast.Str("k"))),
	)
}

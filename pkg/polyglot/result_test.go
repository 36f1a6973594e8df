package polyglot

import (
	"testing"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

func TestParseOutputSentinelWins(t *testing.T) {
	out := "noise\n__PLAIT_RETURN__:{\"a\": 1}\n"
	val, err := ParseOutput(out, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dict, ok := val.(*runtime.DictValue)
	if !ok {
		t.Fatalf("unexpected value %#v", val)
	}
	if n, ok := dict.Entries["a"].(runtime.IntValue); !ok || n.Val != 1 {
		t.Fatalf("unexpected entry %#v", dict.Entries["a"])
	}
}

func TestParseOutputLastJSONLineFallback(t *testing.T) {
	out := "progress 1\n[1, 2, 3]\n"
	val, err := ParseOutput(out, ast.TyList(ast.TyInt()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list, ok := val.(*runtime.ListValue)
	if !ok || len(list.Elements) != 3 {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestParseOutputPlainTextWithoutDeclaredType(t *testing.T) {
	val, err := ParseOutput("[1, 2]\n", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	str, ok := val.(runtime.StringValue)
	if !ok || str.Val != "[1, 2]" {
		t.Fatalf("undeclared output must stay text, got %#v", val)
	}
}

func TestParseOutputEmptyIsNull(t *testing.T) {
	val, err := ParseOutput("", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := val.(runtime.NullValue); !ok {
		t.Fatalf("unexpected value %#v", val)
	}
}

func TestParseOutputMalformedSentinelFails(t *testing.T) {
	if _, err := ParseOutput("__PLAIT_RETURN__:{oops\n", nil); err == nil {
		t.Fatalf("expected malformed sentinel payload to fail")
	}
}

func TestJSONNumbersSplitIntAndFloat(t *testing.T) {
	val, err := ParseOutput("__PLAIT_RETURN__:[2147483647, 2147483648, 1.5]\n", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	list := val.(*runtime.ListValue)
	if _, ok := list.Elements[0].(runtime.IntValue); !ok {
		t.Fatalf("in-range integer should decode as int, got %#v", list.Elements[0])
	}
	if _, ok := list.Elements[1].(runtime.FloatValue); !ok {
		t.Fatalf("out-of-range integer should decode as float, got %#v", list.Elements[1])
	}
	if f, ok := list.Elements[2].(runtime.FloatValue); !ok || f.Val != 1.5 {
		t.Fatalf("unexpected float %#v", list.Elements[2])
	}
}

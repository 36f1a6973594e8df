package polyglot

import (
	"strings"
	"testing"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

func fieldDef(name string) *ast.FieldDef {
	return &ast.FieldDef{Name: name}
}

func TestSerializePythonSpellings(t *testing.T) {
	if got := Serialize(runtime.BoolValue{Val: true}, "python"); got != "True" {
		t.Fatalf("unexpected python bool %q", got)
	}
	if got := Serialize(runtime.NullValue{}, "python"); got != "None" {
		t.Fatalf("unexpected python null %q", got)
	}
	if got := Serialize(runtime.BoolValue{Val: false}, "javascript"); got != "false" {
		t.Fatalf("unexpected javascript bool %q", got)
	}
}

func TestSerializeStringEscaping(t *testing.T) {
	if got := Serialize(runtime.StringValue{Val: "a\"b\nc"}, "python"); got != `"a\"b\nc"` {
		t.Fatalf("unexpected escaped string %q", got)
	}
	if got := Serialize(runtime.StringValue{Val: "two words $x"}, "shell"); got != `two\ words\ \$x` {
		t.Fatalf("unexpected shell escape %q", got)
	}
}

func TestSerializeContainers(t *testing.T) {
	list := &runtime.ListValue{Elements: []runtime.Value{
		runtime.IntValue{Val: 1},
		runtime.StringValue{Val: "x"},
	}}
	if got := Serialize(list, "python"); got != `[1, "x"]` {
		t.Fatalf("unexpected list literal %q", got)
	}
	dict := runtime.NewDict()
	dict.Entries["b"] = runtime.IntValue{Val: 2}
	dict.Entries["a"] = runtime.IntValue{Val: 1}
	if got := Serialize(dict, "javascript"); got != `{"a": 1, "b": 2}` {
		t.Fatalf("unexpected dict literal %q", got)
	}
}

func TestSerializeStructAsObject(t *testing.T) {
	def := &runtime.StructDefValue{TypeName: "Point", Fields: nil}
	def.Fields = append(def.Fields, fieldDef("x"), fieldDef("y"))
	s := &runtime.StructValue{Definition: def, Fields: []runtime.Value{
		runtime.IntValue{Val: 1}, runtime.IntValue{Val: 2},
	}}
	if got := Serialize(s, "python"); got != `{"x": 1, "y": 2}` {
		t.Fatalf("unexpected struct literal %q", got)
	}
}

func TestPrepareInjectsDeclarations(t *testing.T) {
	src := Prepare("python", "print(x + y)", []NamedValue{
		{Name: "x", Value: runtime.IntValue{Val: 1}},
		{Name: "y", Value: runtime.IntValue{Val: 2}},
	})
	want := "x = 1\ny = 2\nprint(x + y)"
	if src != want {
		t.Fatalf("unexpected prepared source:\n%s", src)
	}
}

func TestPrepareKeepsHeaderLinesFirst(t *testing.T) {
	code := "#!/bin/bash\necho $x"
	src := Prepare("shell", code, []NamedValue{
		{Name: "x", Value: runtime.StringValue{Val: "hi"}},
	})
	lines := strings.Split(src, "\n")
	if lines[0] != "#!/bin/bash" {
		t.Fatalf("shebang must stay first, got %q", lines[0])
	}
	if lines[1] != "x=hi" {
		t.Fatalf("declaration must follow the header, got %q", lines[1])
	}
}

func TestPreparePythonFutureImportStaysFirst(t *testing.T) {
	code := "from __future__ import annotations\nprint(n)"
	src := Prepare("python", code, []NamedValue{
		{Name: "n", Value: runtime.IntValue{Val: 3}},
	})
	lines := strings.Split(src, "\n")
	if lines[0] != "from __future__ import annotations" || lines[1] != "n = 3" {
		t.Fatalf("unexpected ordering:\n%s", src)
	}
}

func TestDedentStripsCommonIndent(t *testing.T) {
	code := "first\n    a = 1\n    b = 2\n      c = 3"
	want := "first\na = 1\nb = 2\n  c = 3"
	if got := Dedent(code); got != want {
		t.Fatalf("unexpected dedent:\n%q", got)
	}
}

func TestDeclarationFormsPerLanguage(t *testing.T) {
	v := runtime.IntValue{Val: 7}
	cases := map[string]string{
		"python":     "n = 7",
		"javascript": "const n = 7;",
		"shell":      "n=7",
		"rust":       "let n = 7;",
		"ruby":       "n = 7",
	}
	for lang, want := range cases {
		if got := declaration(lang, "n", v); got != want {
			t.Fatalf("%s declaration: got %q want %q", lang, got, want)
		}
	}
}

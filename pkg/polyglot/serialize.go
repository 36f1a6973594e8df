package polyglot

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"plait/interpreter-go/pkg/runtime"
)

// Serialize renders a value in a guest language's literal syntax: native
// boolean and null spellings, escaped strings, JSON-style containers.
func Serialize(v runtime.Value, language string) string {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		if language == "python" {
			return "None"
		}
		return "null"
	case runtime.IntValue:
		return strconv.FormatInt(int64(val.Val), 10)
	case runtime.FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case runtime.BoolValue:
		if language == "python" {
			if val.Val {
				return "True"
			}
			return "False"
		}
		return strconv.FormatBool(val.Val)
	case runtime.StringValue:
		if isShell(language) {
			return shellEscape(val.Val)
		}
		return quoteString(val.Val)
	case *runtime.ListValue:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			parts[i] = Serialize(e, language)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *runtime.DictValue:
		keys := make([]string, 0, len(val.Entries))
		for k := range val.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = quoteString(k) + ": " + Serialize(val.Entries[k], language)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *runtime.StructValue:
		parts := make([]string, len(val.Fields))
		for i, f := range val.Fields {
			name := fmt.Sprintf("f%d", i)
			if i < len(val.Definition.Fields) {
				name = val.Definition.Fields[i].Name
			}
			parts[i] = quoteString(name) + ": " + Serialize(f, language)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		if language == "python" {
			return "None"
		}
		return "null"
	}
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

func shellEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case ' ', '$', '`', '"', '\'', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isShell(language string) bool {
	return language == "shell" || language == "sh" || language == "bash"
}

// NamedValue is one host variable bound into a guest fragment.
type NamedValue struct {
	Name  string
	Value runtime.Value
}

// declaration renders one bound variable in the language's declaration form.
func declaration(language, name string, v runtime.Value) string {
	serialized := Serialize(v, language)
	switch language {
	case "python", "ruby":
		return name + " = " + serialized
	case "javascript", "js":
		return "const " + name + " = " + serialized + ";"
	case "shell", "sh", "bash":
		return name + "=" + serialized
	case "go":
		return "const " + name + " = " + serialized
	case "rust":
		return "let " + name + " = " + serialized + ";"
	case "cpp", "c++":
		return "const auto " + name + " = " + serialized + ";"
	case "csharp", "cs":
		return "var " + name + " = " + serialized + ";"
	default:
		return name + " = " + serialized
	}
}

// headerLines counts leading lines that must stay first in the fragment:
// shebangs, python encoding comments and __future__ imports, javascript
// strict-mode pragmas.
func headerLines(language string, lines []string) int {
	n := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "#!"):
		case language == "python" && strings.HasPrefix(trimmed, "# -*-"):
		case language == "python" && strings.HasPrefix(trimmed, "from __future__ import"):
		case (language == "javascript" || language == "js") &&
			(trimmed == `"use strict";` || trimmed == `'use strict';`):
		default:
			return n
		}
		n++
	}
	return n
}

// Dedent strips the common leading indentation from every line after the
// first, which stays as written.
func Dedent(code string) string {
	lines := strings.Split(code, "\n")
	minIndent := -1
	for _, line := range lines[1:] {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			continue
		}
		indent := len(line) - len(trimmed)
		if minIndent < 0 || indent < minIndent {
			minIndent = indent
		}
	}
	if minIndent <= 0 {
		return code
	}
	out := make([]string, len(lines))
	out[0] = lines[0]
	for i, line := range lines[1:] {
		if len(strings.TrimLeft(line, " \t")) == 0 {
			out[i+1] = ""
		} else if len(line) > minIndent {
			out[i+1] = line[minIndent:]
		} else {
			out[i+1] = line
		}
	}
	return strings.Join(out, "\n")
}

// CallSnippet renders the trailer that invokes an exported guest function
// and prints its result as a structured return. Only languages with a JSON
// encoder in their standard runtime support direct block calls.
func CallSnippet(language, name string, args []runtime.Value) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = Serialize(a, language)
	}
	call := name + "(" + strings.Join(parts, ", ") + ")"
	switch language {
	case "python":
		return "import json\nprint(" + strconv.Quote(ReturnSentinel) + " + json.dumps(" + call + "))", nil
	case "javascript", "js":
		return "console.log(" + strconv.Quote(ReturnSentinel) + " + JSON.stringify(" + call + "));", nil
	default:
		return "", fmt.Errorf("Cannot call exported functions in language '%s'", language)
	}
}

// Prepare builds the final guest source: dedented fragment with one
// declaration per bound variable injected after any language-mandated
// header lines.
func Prepare(language, code string, vars []NamedValue) string {
	body := Dedent(code)
	if len(vars) == 0 {
		return body
	}
	decls := make([]string, len(vars))
	for i, nv := range vars {
		decls[i] = declaration(language, nv.Name, nv.Value)
	}
	lines := strings.Split(body, "\n")
	n := headerLines(language, lines)
	var out []string
	out = append(out, lines[:n]...)
	out = append(out, decls...)
	out = append(out, lines[n:]...)
	return strings.Join(out, "\n")
}

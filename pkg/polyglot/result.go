package polyglot

import (
	"encoding/json"
	"fmt"
	"strings"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

// ReturnSentinel marks a structured return on a guest fragment's output
// stream: everything after the sentinel on that line is parsed as JSON.
const ReturnSentinel = "__PLAIT_RETURN__:"

// ParseOutput extracts a value from captured guest output. A sentinel line
// wins; otherwise, when the block declares a structured return type, the
// last output line holding valid JSON is used; otherwise the trimmed output
// is returned as text.
func ParseOutput(output string, declared *ast.Type) (runtime.Value, error) {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if rest, ok := strings.CutPrefix(line, ReturnSentinel); ok {
			v, err := jsonToValue(rest)
			if err != nil {
				return nil, fmt.Errorf("Malformed structured return: %v", err)
			}
			return v, nil
		}
	}
	if declaredStructured(declared) {
		for i := len(lines) - 1; i >= 0; i-- {
			line := strings.TrimSpace(lines[i])
			if line == "" {
				continue
			}
			if v, err := jsonToValue(line); err == nil {
				return v, nil
			}
		}
	}
	trimmed := strings.TrimRight(output, "\n")
	if trimmed == "" {
		return runtime.NullValue{}, nil
	}
	return runtime.StringValue{Val: trimmed}, nil
}

func declaredStructured(t *ast.Type) bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case ast.TypeList, ast.TypeDict, ast.TypeStruct, ast.TypeInt, ast.TypeFloat, ast.TypeBool:
		return true
	default:
		return false
	}
}

func jsonToValue(text string) (runtime.Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return fromJSON(raw), nil
}

func fromJSON(raw any) runtime.Value {
	switch v := raw.(type) {
	case nil:
		return runtime.NullValue{}
	case bool:
		return runtime.BoolValue{Val: v}
	case string:
		return runtime.StringValue{Val: v}
	case json.Number:
		if i, err := v.Int64(); err == nil && i >= -2147483648 && i <= 2147483647 {
			return runtime.IntValue{Val: int32(i)}
		}
		f, _ := v.Float64()
		return runtime.FloatValue{Val: f}
	case []any:
		list := &runtime.ListValue{Elements: make([]runtime.Value, len(v))}
		for i, e := range v {
			list.Elements[i] = fromJSON(e)
		}
		return list
	case map[string]any:
		dict := runtime.NewDict()
		for k, e := range v {
			dict.Entries[k] = fromJSON(e)
		}
		return dict
	default:
		return runtime.NullValue{}
	}
}

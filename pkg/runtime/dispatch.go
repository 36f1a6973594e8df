package runtime

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Kind dispatch is centralized here so adding a value kind touches one file:
// truthiness, stringification, deep copy and child traversal.

// Truthy reports the boolean interpretation of a value.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case nil, NullValue:
		return false
	case BoolValue:
		return val.Val
	case IntValue:
		return val.Val != 0
	case FloatValue:
		return val.Val != 0
	case StringValue:
		return val.Val != ""
	case *ListValue:
		return len(val.Elements) > 0
	case *DictValue:
		return len(val.Entries) > 0
	default:
		return true
	}
}

// Stringify renders a value for display. Dict keys are sorted so output is
// deterministic.
func Stringify(v Value) string {
	switch val := v.(type) {
	case nil, NullValue:
		return "null"
	case IntValue:
		return strconv.FormatInt(int64(val.Val), 10)
	case FloatValue:
		return strconv.FormatFloat(val.Val, 'g', -1, 64)
	case BoolValue:
		return strconv.FormatBool(val.Val)
	case StringValue:
		return val.Val
	case *ListValue:
		parts := make([]string, len(val.Elements))
		for i, e := range val.Elements {
			parts[i] = Stringify(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *DictValue:
		keys := make([]string, 0, len(val.Entries))
		for k := range val.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + Stringify(val.Entries[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *StructValue:
		parts := make([]string, len(val.Fields))
		for i, f := range val.Fields {
			name := ""
			if i < len(val.Definition.Fields) {
				name = val.Definition.Fields[i].Name + ": "
			}
			parts[i] = name + Stringify(f)
		}
		return val.TypeName() + "{" + strings.Join(parts, ", ") + "}"
	case *StructDefValue:
		return "<struct " + val.TypeName + ">"
	case *FunctionValue:
		if val.Declaration != nil {
			return "<function " + val.Declaration.Name + ">"
		}
		return "<function>"
	case NativeFunctionValue:
		return "<native function " + val.Name + ">"
	case *BlockValue:
		return "<block " + val.Language + ":" + val.Name + ">"
	case ForeignValue:
		return fmt.Sprintf("<foreign %s object>", val.Language)
	default:
		return fmt.Sprintf("<%s>", v.Kind())
	}
}

// DeepCopy clones a value graph. Containers are copied recursively; scalars
// are immutable and returned as-is; functions, blocks, struct definitions
// and foreign handles are shared. A seen map keeps cyclic graphs from
// recursing forever: the copy of a revisited node is reused, so cycles are
// preserved in the copy.
func DeepCopy(v Value) Value {
	return deepCopy(v, make(map[Value]Value))
}

func deepCopy(v Value, seen map[Value]Value) Value {
	switch val := v.(type) {
	case *ListValue:
		if dup, ok := seen[v]; ok {
			return dup
		}
		dup := &ListValue{Elements: make([]Value, len(val.Elements))}
		seen[v] = dup
		for i, e := range val.Elements {
			dup.Elements[i] = deepCopy(e, seen)
		}
		return dup
	case *DictValue:
		if dup, ok := seen[v]; ok {
			return dup
		}
		dup := &DictValue{Entries: make(map[string]Value, len(val.Entries))}
		seen[v] = dup
		for k, e := range val.Entries {
			dup.Entries[k] = deepCopy(e, seen)
		}
		return dup
	case *StructValue:
		if dup, ok := seen[v]; ok {
			return dup
		}
		dup := &StructValue{Definition: val.Definition, Fields: make([]Value, len(val.Fields))}
		seen[v] = dup
		for i, f := range val.Fields {
			dup.Fields[i] = deepCopy(f, seen)
		}
		return dup
	default:
		return v
	}
}

// Children returns the directly referenced child values of a container, nil
// for leaf kinds. Function closures are not children: clearing them would
// corrupt live functions, so the collector marks closure environments as
// additional roots instead.
func Children(v Value) []Value {
	switch val := v.(type) {
	case *ListValue:
		return val.Elements
	case *DictValue:
		out := make([]Value, 0, len(val.Entries))
		for _, e := range val.Entries {
			out = append(out, e)
		}
		return out
	case *StructValue:
		return val.Fields
	default:
		return nil
	}
}

// ClearChildren drops a container's own references, breaking any cycle that
// runs through it. Leaf kinds are untouched.
func ClearChildren(v Value) {
	switch val := v.(type) {
	case *ListValue:
		val.Elements = nil
	case *DictValue:
		val.Entries = make(map[string]Value)
	case *StructValue:
		for i := range val.Fields {
			val.Fields[i] = NullValue{}
		}
	}
}

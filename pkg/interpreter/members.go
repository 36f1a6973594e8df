package interpreter

import (
	"sort"
	"strings"

	"plait/interpreter-go/pkg/runtime"
	"plait/interpreter-go/pkg/typecheck"
)

var dictMethods = []string{"get", "has", "keys", "put", "remove", "size", "values"}
var listMethods = []string{"contains", "get", "indexOf", "join", "push", "reverse", "size"}

// accessMember reads a plain (non-call) member: a struct field, a stored
// dict entry, or a narrowed block handle.
func (i *Interpreter) accessMember(obj runtime.Value, member string) (runtime.Value, error) {
	switch v := obj.(type) {
	case *runtime.StructValue:
		if val, ok := v.Field(member); ok {
			return val, nil
		}
		names := make([]string, len(v.Definition.Fields))
		for idx, f := range v.Definition.Fields {
			names[idx] = f.Name
		}
		help := "Fields: " + strings.Join(names, ", ") + "."
		if s := suggest(member, names); s != "" {
			help = s + " " + help
		}
		return nil, bindingError(help, "Struct %s has no field '%s'", v.TypeName(), member)
	case *runtime.DictValue:
		if val, ok := v.Entries[member]; ok {
			return val, nil
		}
		help := "Dict methods: " + strings.Join(dictMethods, ", ") + "."
		if s := suggest(member, sortedKeys(v.Entries)); s != "" {
			help = s + " " + help
		}
		return nil, bindingError(help, "Dict has no entry or method '%s'", member)
	case *runtime.BlockValue:
		return &runtime.BlockValue{
			Name:       v.Name,
			Language:   v.Language,
			Source:     v.Source,
			ReturnType: v.ReturnType,
			Member:     append(append([]string(nil), v.Member...), member),
		}, nil
	case *runtime.ListValue:
		return nil, bindingError(
			"List methods: "+strings.Join(listMethods, ", ")+".",
			"List has no member '%s'", member)
	default:
		return nil, bindingError(
			"Member access works on structs, dicts, lists and block handles.",
			"Value of type %s has no member '%s'", obj.Kind(), member)
	}
}

// callBuiltinMember dispatches the container method catalog. The second
// result reports whether the name was handled here; unhandled names fall
// back to stored-callable lookup.
func (i *Interpreter) callBuiltinMember(obj runtime.Value, name string, args []runtime.Value) (runtime.Value, bool, error) {
	switch v := obj.(type) {
	case *runtime.DictValue:
		return i.callDictMethod(v, name, args)
	case *runtime.ListValue:
		return i.callListMethod(v, name, args)
	default:
		return nil, false, nil
	}
}

func (i *Interpreter) callDictMethod(dict *runtime.DictValue, name string, args []runtime.Value) (runtime.Value, bool, error) {
	switch name {
	case "size":
		if err := expectArgs("dict.size", args, 0); err != nil {
			return nil, true, err
		}
		return runtime.IntValue{Val: int32(len(dict.Entries))}, true, nil
	case "has":
		key, err := stringArg("dict.has", args, 1)
		if err != nil {
			return nil, true, err
		}
		_, ok := dict.Entries[key]
		return runtime.BoolValue{Val: ok}, true, nil
	case "get":
		key, err := stringArg("dict.get", args, 1)
		if err != nil {
			return nil, true, err
		}
		if val, ok := dict.Entries[key]; ok {
			return val, true, nil
		}
		return runtime.NullValue{}, true, nil
	case "put":
		if err := expectArgs("dict.put", args, 2); err != nil {
			return nil, true, err
		}
		key, ok := args[0].(runtime.StringValue)
		if !ok {
			return nil, true, typeError("dict.put expects a string key, got %s", args[0].Kind())
		}
		dict.Entries[key.Val] = args[1]
		return dict, true, nil
	case "remove":
		key, err := stringArg("dict.remove", args, 1)
		if err != nil {
			return nil, true, err
		}
		_, ok := dict.Entries[key]
		delete(dict.Entries, key)
		return runtime.BoolValue{Val: ok}, true, nil
	case "keys":
		if err := expectArgs("dict.keys", args, 0); err != nil {
			return nil, true, err
		}
		keys := sortedKeys(dict.Entries)
		elements := make([]runtime.Value, len(keys))
		for idx, k := range keys {
			elements[idx] = runtime.StringValue{Val: k}
		}
		return i.trackValue(&runtime.ListValue{Elements: elements}), true, nil
	case "values":
		if err := expectArgs("dict.values", args, 0); err != nil {
			return nil, true, err
		}
		keys := sortedKeys(dict.Entries)
		elements := make([]runtime.Value, len(keys))
		for idx, k := range keys {
			elements[idx] = dict.Entries[k]
		}
		return i.trackValue(&runtime.ListValue{Elements: elements}), true, nil
	default:
		return nil, false, nil
	}
}

func (i *Interpreter) callListMethod(list *runtime.ListValue, name string, args []runtime.Value) (runtime.Value, bool, error) {
	switch name {
	case "size":
		if err := expectArgs("list.size", args, 0); err != nil {
			return nil, true, err
		}
		return runtime.IntValue{Val: int32(len(list.Elements))}, true, nil
	case "push":
		if err := expectArgs("list.push", args, 1); err != nil {
			return nil, true, err
		}
		list.Elements = append(list.Elements, args[0])
		return list, true, nil
	case "get":
		if err := expectArgs("list.get", args, 1); err != nil {
			return nil, true, err
		}
		idx, ok := args[0].(runtime.IntValue)
		if !ok {
			return nil, true, typeError("list.get expects an int index, got %s", args[0].Kind())
		}
		if int(idx.Val) < 0 || int(idx.Val) >= len(list.Elements) {
			return nil, true, bindingError(
				"Valid indexes run from 0 to size() - 1.",
				"List index %d out of range for list of size %d", idx.Val, len(list.Elements))
		}
		return list.Elements[idx.Val], true, nil
	case "contains":
		if err := expectArgs("list.contains", args, 1); err != nil {
			return nil, true, err
		}
		for _, e := range list.Elements {
			if valuesEqual(e, args[0]) {
				return runtime.BoolValue{Val: true}, true, nil
			}
		}
		return runtime.BoolValue{Val: false}, true, nil
	case "indexOf":
		if err := expectArgs("list.indexOf", args, 1); err != nil {
			return nil, true, err
		}
		for idx, e := range list.Elements {
			if valuesEqual(e, args[0]) {
				return runtime.IntValue{Val: int32(idx)}, true, nil
			}
		}
		return runtime.IntValue{Val: -1}, true, nil
	case "join":
		sep, err := stringArg("list.join", args, 1)
		if err != nil {
			return nil, true, err
		}
		parts := make([]string, len(list.Elements))
		for idx, e := range list.Elements {
			parts[idx] = runtime.Stringify(e)
		}
		return runtime.StringValue{Val: strings.Join(parts, sep)}, true, nil
	case "reverse":
		if err := expectArgs("list.reverse", args, 0); err != nil {
			return nil, true, err
		}
		elements := make([]runtime.Value, len(list.Elements))
		for idx, e := range list.Elements {
			elements[len(list.Elements)-1-idx] = e
		}
		return i.trackValue(&runtime.ListValue{Elements: elements}), true, nil
	default:
		return nil, false, nil
	}
}

func expectArgs(name string, args []runtime.Value, n int) error {
	if len(args) != n {
		return callError(
			"Check the method's signature.",
			"%s expects %d arguments, got %d", name, n, len(args))
	}
	return nil
}

func stringArg(name string, args []runtime.Value, n int) (string, error) {
	if err := expectArgs(name, args, n); err != nil {
		return "", err
	}
	s, ok := args[0].(runtime.StringValue)
	if !ok {
		return "", typeError("%s expects a string, got %s", name, args[0].Kind())
	}
	return s.Val, nil
}

// accessIndex reads obj[idx]: positional on lists and strings, keyed on
// dicts. Missing dict keys raise rather than defaulting.
func (i *Interpreter) accessIndex(obj, idx runtime.Value) (runtime.Value, error) {
	switch v := obj.(type) {
	case *runtime.ListValue:
		n, ok := idx.(runtime.IntValue)
		if !ok {
			return nil, typeError("List index must be int, got %s", idx.Kind())
		}
		if int(n.Val) < 0 || int(n.Val) >= len(v.Elements) {
			return nil, bindingError(
				"Valid indexes run from 0 to size() - 1.",
				"List index %d out of range for list of size %d", n.Val, len(v.Elements))
		}
		return v.Elements[n.Val], nil
	case *runtime.DictValue:
		key, ok := idx.(runtime.StringValue)
		if !ok {
			return nil, typeError("Dict key must be string, got %s", idx.Kind())
		}
		val, present := v.Entries[key.Val]
		if !present {
			return nil, bindingError(
				"Use dict.has or dict.get for optional lookups.",
				"Dict has no key '%s'", key.Val)
		}
		return val, nil
	case runtime.StringValue:
		n, ok := idx.(runtime.IntValue)
		if !ok {
			return nil, typeError("String index must be int, got %s", idx.Kind())
		}
		runes := []rune(v.Val)
		if int(n.Val) < 0 || int(n.Val) >= len(runes) {
			return nil, bindingError(
				"Valid indexes run from 0 to the string length - 1.",
				"String index %d out of range for string of length %d", n.Val, len(runes))
		}
		return runtime.StringValue{Val: string(runes[n.Val])}, nil
	default:
		return nil, typeError("Cannot index into %s", obj.Kind())
	}
}

func (i *Interpreter) assignMember(obj runtime.Value, member string, val runtime.Value) error {
	switch v := obj.(type) {
	case *runtime.StructValue:
		idx := v.Definition.FieldIndex(member)
		if idx < 0 {
			return bindingError(
				"Fields are fixed at declaration.",
				"Struct %s has no field '%s'", v.TypeName(), member)
		}
		declared := v.Definition.Fields[idx].Type
		if !typecheck.Compatible(declared, val) {
			return typeError("Field '%s' of %s expects %s, got %s",
				member, v.TypeName(), declared.String(), typecheck.Infer(val).String())
		}
		v.Fields[idx] = val
		return nil
	case *runtime.DictValue:
		v.Entries[member] = val
		return nil
	default:
		return typeError("Cannot assign member '%s' on %s", member, obj.Kind())
	}
}

func (i *Interpreter) assignIndex(obj, idx, val runtime.Value) error {
	switch v := obj.(type) {
	case *runtime.ListValue:
		n, ok := idx.(runtime.IntValue)
		if !ok {
			return typeError("List index must be int, got %s", idx.Kind())
		}
		if int(n.Val) < 0 || int(n.Val) >= len(v.Elements) {
			return bindingError(
				"Assignment cannot grow a list; use push.",
				"List index %d out of range for list of size %d", n.Val, len(v.Elements))
		}
		v.Elements[n.Val] = val
		return nil
	case *runtime.DictValue:
		key, ok := idx.(runtime.StringValue)
		if !ok {
			return typeError("Dict key must be string, got %s", idx.Kind())
		}
		v.Entries[key.Val] = val
		return nil
	default:
		return typeError("Cannot index-assign into %s", obj.Kind())
	}
}

// sorted key view shared by keys(), values() and member suggestions.
func sortedKeys(entries map[string]runtime.Value) []string {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

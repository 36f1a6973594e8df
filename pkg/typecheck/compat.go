// Package typecheck enforces Plait's gradual type discipline: nullable and
// union compatibility, structural inference from runtime values, and generic
// struct monomorphization.
package typecheck

import (
	"strings"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

// Compatible reports whether a value satisfies a declared type. A nil
// declared type means unannotated and accepts everything.
func Compatible(declared *ast.Type, v runtime.Value) bool {
	if declared == nil || declared.Kind == ast.TypeAny || declared.Kind == ast.TypeParam {
		return true
	}
	if v == nil || v.Kind() == runtime.KindNull {
		// Null is compatible only with nullable types.
		return declared.Nullable || declared.Kind == ast.TypeNull
	}
	switch declared.Kind {
	case ast.TypeNull:
		return false
	case ast.TypeUnion:
		for _, m := range declared.Members {
			if Compatible(m, v) {
				return true
			}
		}
		return false
	case ast.TypeInt:
		return v.Kind() == runtime.KindInt
	case ast.TypeFloat:
		// Ints promote to float.
		return v.Kind() == runtime.KindFloat || v.Kind() == runtime.KindInt
	case ast.TypeBool:
		return v.Kind() == runtime.KindBool
	case ast.TypeString:
		return v.Kind() == runtime.KindString
	case ast.TypeList:
		list, ok := v.(*runtime.ListValue)
		if !ok {
			return false
		}
		for _, e := range list.Elements {
			if !Compatible(declared.Elem, e) {
				return false
			}
		}
		return true
	case ast.TypeDict:
		dict, ok := v.(*runtime.DictValue)
		if !ok {
			return false
		}
		for _, e := range dict.Entries {
			if !Compatible(declared.Val, e) {
				return false
			}
		}
		return true
	case ast.TypeStruct:
		s, ok := v.(*runtime.StructValue)
		if !ok {
			return false
		}
		name := s.TypeName()
		if name == declared.Name {
			return true
		}
		if len(declared.Args) > 0 && name == Mangle(declared.Name, declared.Args) {
			return true
		}
		// A specialization is an instance of its generic origin.
		return strings.HasPrefix(name, declared.Name+"_")
	case ast.TypeFunction:
		return v.Kind() == runtime.KindFunction || v.Kind() == runtime.KindNativeFunction
	case ast.TypeBlock:
		return v.Kind() == runtime.KindBlock
	default:
		return false
	}
}

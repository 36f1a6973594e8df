package typecheck

import (
	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

// Infer derives a type descriptor structurally from a runtime value,
// recursing into list and dict element types. Used when a declaration
// carries no annotation and when inferring generic bindings.
func Infer(v runtime.Value) *ast.Type {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return &ast.Type{Kind: ast.TypeNull, Nullable: true}
	case runtime.IntValue:
		return ast.TyInt()
	case runtime.FloatValue:
		return ast.TyFloat()
	case runtime.BoolValue:
		return ast.TyBool()
	case runtime.StringValue:
		return ast.TyString()
	case *runtime.ListValue:
		elem := ast.TyAny()
		if len(val.Elements) > 0 {
			elem = Infer(val.Elements[0])
		}
		return ast.TyList(elem)
	case *runtime.DictValue:
		value := ast.TyAny()
		for _, e := range val.Entries {
			value = Infer(e)
			break
		}
		return ast.TyDict(ast.TyString(), value)
	case *runtime.StructValue:
		return ast.TyStruct(val.TypeName())
	case *runtime.FunctionValue, runtime.NativeFunctionValue:
		return &ast.Type{Kind: ast.TypeFunction}
	case *runtime.BlockValue:
		return &ast.Type{Kind: ast.TypeBlock}
	default:
		return ast.TyAny()
	}
}

// InferBindings walks a declared parameter type against an argument value,
// recording concrete types for any type parameters it meets. Existing
// bindings win: the first use of a parameter fixes it.
func InferBindings(declared *ast.Type, v runtime.Value, bindings map[string]*ast.Type) {
	if declared == nil {
		return
	}
	switch declared.Kind {
	case ast.TypeParam:
		if _, ok := bindings[declared.Name]; !ok {
			bindings[declared.Name] = Infer(v)
		}
	case ast.TypeList:
		if list, ok := v.(*runtime.ListValue); ok && len(list.Elements) > 0 {
			InferBindings(declared.Elem, list.Elements[0], bindings)
		}
	case ast.TypeDict:
		if dict, ok := v.(*runtime.DictValue); ok {
			for _, e := range dict.Entries {
				InferBindings(declared.Val, e, bindings)
				break
			}
		}
	}
}

// Substitute replaces type parameters in a descriptor according to the
// binding map, returning a fresh descriptor. Unbound parameters survive
// unchanged.
func Substitute(t *ast.Type, bindings map[string]*ast.Type) *ast.Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case ast.TypeParam:
		if bound, ok := bindings[t.Name]; ok {
			out := *bound
			if t.Nullable {
				out.Nullable = true
			}
			return &out
		}
		return t
	case ast.TypeList:
		out := *t
		out.Elem = Substitute(t.Elem, bindings)
		return &out
	case ast.TypeDict:
		out := *t
		out.Key = Substitute(t.Key, bindings)
		out.Val = Substitute(t.Val, bindings)
		return &out
	case ast.TypeUnion:
		out := *t
		out.Members = make([]*ast.Type, len(t.Members))
		for i, m := range t.Members {
			out.Members[i] = Substitute(m, bindings)
		}
		return &out
	case ast.TypeStruct:
		out := *t
		out.Args = make([]*ast.Type, len(t.Args))
		for i, a := range t.Args {
			out.Args[i] = Substitute(a, bindings)
		}
		return &out
	default:
		return t
	}
}

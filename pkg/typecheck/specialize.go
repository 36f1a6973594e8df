package typecheck

import (
	"fmt"
	"strings"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

// Specializer monomorphizes generic struct definitions. Each distinct
// binding set produces one parameter-free definition cached under a mangled
// name, so identical instantiations share a specialization.
type Specializer struct {
	cache map[string]*runtime.StructDefValue
}

func NewSpecializer() *Specializer {
	return &Specializer{cache: make(map[string]*runtime.StructDefValue)}
}

// Mangle produces the specialization name for a generic struct and its type
// arguments, e.g. Box + [int] -> "Box_int".
func Mangle(name string, args []*ast.Type) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, name)
	for _, a := range args {
		parts = append(parts, mangleType(a))
	}
	return strings.Join(parts, "_")
}

func mangleType(t *ast.Type) string {
	if t == nil {
		return "any"
	}
	var base string
	switch t.Kind {
	case ast.TypeList:
		base = "list_" + mangleType(t.Elem)
	case ast.TypeDict:
		base = "dict_" + mangleType(t.Key) + "_" + mangleType(t.Val)
	case ast.TypeStruct, ast.TypeParam:
		base = t.Name
	case ast.TypeUnion:
		members := make([]string, len(t.Members))
		for i, m := range t.Members {
			members[i] = mangleType(m)
		}
		base = strings.Join(members, "_or_")
	default:
		base = t.Kind.String()
	}
	if t.Nullable {
		base += "_opt"
	}
	return base
}

// Specialize resolves a generic definition against a binding map and returns
// the cached parameter-free specialization, creating it on first use. A
// non-generic definition is returned unchanged.
func (s *Specializer) Specialize(def *runtime.StructDefValue, bindings map[string]*ast.Type) (*runtime.StructDefValue, error) {
	if len(def.TypeParams) == 0 {
		return def, nil
	}
	args := make([]*ast.Type, len(def.TypeParams))
	for i, p := range def.TypeParams {
		bound, ok := bindings[p]
		if !ok {
			return nil, fmt.Errorf("Cannot resolve type parameter '%s' of struct '%s'", p, def.TypeName)
		}
		args[i] = bound
	}
	mangled := Mangle(def.TypeName, args)
	if cached, ok := s.cache[mangled]; ok {
		return cached, nil
	}
	fields := make([]*ast.FieldDef, len(def.Fields))
	for i, f := range def.Fields {
		fields[i] = &ast.FieldDef{Name: f.Name, Type: Substitute(f.Type, bindings)}
	}
	specialized := &runtime.StructDefValue{TypeName: mangled, Fields: fields}
	s.cache[mangled] = specialized
	return specialized, nil
}

// Cached exposes a specialization by mangled name (nil when absent).
func (s *Specializer) Cached(name string) *runtime.StructDefValue {
	return s.cache[name]
}

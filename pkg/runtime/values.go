package runtime

import (
	"fmt"

	"plait/interpreter-go/pkg/ast"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindList
	KindDict
	KindStructDef
	KindStruct
	KindFunction
	KindNativeFunction
	KindBlock
	KindForeign
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	case KindStructDef:
		return "struct_def"
	case KindStruct:
		return "struct"
	case KindFunction:
		return "function"
	case KindNativeFunction:
		return "native_function"
	case KindBlock:
		return "block"
	case KindForeign:
		return "foreign"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

// Plait integers are 32-bit; arithmetic on them is overflow-checked.
type IntValue struct {
	Val int32
}

func (v IntValue) Kind() Kind { return KindInt }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Containers
//-----------------------------------------------------------------------------

// Containers are pointer types: children are shared references and the
// resulting graph may contain cycles.

type ListValue struct {
	Elements []Value
}

func (v *ListValue) Kind() Kind { return KindList }

type DictValue struct {
	Entries map[string]Value
}

func NewDict() *DictValue {
	return &DictValue{Entries: make(map[string]Value)}
}

func (v *DictValue) Kind() Kind { return KindDict }

// StructDefValue is a struct definition; specializations of a generic
// definition are distinct StructDefValues with their own mangled TypeName.
type StructDefValue struct {
	TypeName   string
	TypeParams []string
	Fields     []*ast.FieldDef
}

func (v *StructDefValue) Kind() Kind { return KindStructDef }

// FieldIndex returns the positional index of a named field, or -1.
func (v *StructDefValue) FieldIndex(name string) int {
	for i, f := range v.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

type StructValue struct {
	Definition *StructDefValue
	Fields     []Value // positional, aligned with Definition.Fields
}

func (v *StructValue) Kind() Kind { return KindStruct }

// TypeName reports the (possibly specialized) type tag of the instance.
func (v *StructValue) TypeName() string {
	if v.Definition == nil {
		return "struct"
	}
	return v.Definition.TypeName
}

// Field returns the value of a named field.
func (v *StructValue) Field(name string) (Value, bool) {
	idx := v.Definition.FieldIndex(name)
	if idx < 0 || idx >= len(v.Fields) {
		return nil, false
	}
	return v.Fields[idx], true
}

//-----------------------------------------------------------------------------
// Callables and handles
//-----------------------------------------------------------------------------

type FunctionValue struct {
	Declaration *ast.FunctionDecl
	Closure     *Environment
}

func (v *FunctionValue) Kind() Kind { return KindFunction }

// NativeCallContext provides hooks for native functions.
type NativeCallContext struct {
	Env *Environment
}

type NativeFunc func(*NativeCallContext, []Value) (Value, error)

type NativeFunctionValue struct {
	Name  string
	Arity int // -1 for variadic
	Impl  NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindNativeFunction }

// BlockValue is an external-block handle: a guest-language fragment loaded
// from a registry library, optionally narrowed to a chained member path.
type BlockValue struct {
	Name       string
	Language   string
	Source     string
	ReturnType *ast.Type
	Member     []string
}

func (v *BlockValue) Kind() Kind { return KindBlock }

// ForeignValue wraps an opaque object owned by a guest backend.
type ForeignValue struct {
	Language string
	Handle   any
}

func (v ForeignValue) Kind() Kind { return KindForeign }

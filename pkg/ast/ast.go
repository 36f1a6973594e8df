package ast

import (
	"fmt"
	"strings"
)

// Node is implemented by every AST node.
type Node interface {
	isNode()
}

type nodeImpl struct{}

func (nodeImpl) isNode() {}

// Expression nodes produce a value when evaluated.
type Expression interface {
	Node
	expressionNode()
}

type expressionMarker struct{ nodeImpl }

func (expressionMarker) expressionNode() {}

// Statement nodes are executed for effect.
type Statement interface {
	Node
	statementNode()
}

type statementMarker struct{ nodeImpl }

func (statementMarker) statementNode() {}

//-----------------------------------------------------------------------------
// Type descriptors
//-----------------------------------------------------------------------------

// TypeKind enumerates the type categories of the gradual discipline.
type TypeKind int

const (
	TypeAny TypeKind = iota
	TypeNull
	TypeInt
	TypeFloat
	TypeBool
	TypeString
	TypeList
	TypeDict
	TypeStruct
	TypeFunction
	TypeBlock
	TypeUnion
	TypeParam
)

func (k TypeKind) String() string {
	switch k {
	case TypeAny:
		return "any"
	case TypeNull:
		return "null"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	case TypeDict:
		return "dict"
	case TypeStruct:
		return "struct"
	case TypeFunction:
		return "function"
	case TypeBlock:
		return "block"
	case TypeUnion:
		return "union"
	case TypeParam:
		return "param"
	default:
		return fmt.Sprintf("unknown_type_%d", int(k))
	}
}

// Type is a recursive type descriptor. Every kind carries a nullable flag.
type Type struct {
	Kind     TypeKind
	Nullable bool
	Name     string  // struct name or type-parameter name
	Elem     *Type   // list element
	Key      *Type   // dict key
	Val      *Type   // dict value
	Members  []*Type // union members
	Args     []*Type // struct type arguments
}

// String renders the descriptor in source notation, e.g. "list<int>?".
func (t *Type) String() string {
	if t == nil {
		return "any"
	}
	var base string
	switch t.Kind {
	case TypeList:
		base = fmt.Sprintf("list<%s>", t.Elem.String())
	case TypeDict:
		base = fmt.Sprintf("dict<%s, %s>", t.Key.String(), t.Val.String())
	case TypeStruct, TypeParam:
		base = t.Name
		if len(t.Args) > 0 {
			parts := make([]string, len(t.Args))
			for i, a := range t.Args {
				parts[i] = a.String()
			}
			base += "<" + strings.Join(parts, ", ") + ">"
		}
	case TypeUnion:
		parts := make([]string, len(t.Members))
		for i, m := range t.Members {
			parts[i] = m.String()
		}
		base = strings.Join(parts, " | ")
	default:
		base = t.Kind.String()
	}
	if t.Nullable {
		base += "?"
	}
	return base
}

//-----------------------------------------------------------------------------
// Literals
//-----------------------------------------------------------------------------

type Identifier struct {
	expressionMarker
	Name string
}

func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

type IntLiteral struct {
	expressionMarker
	Value int32
}

func NewIntLiteral(value int32) *IntLiteral {
	return &IntLiteral{Value: value}
}

type FloatLiteral struct {
	expressionMarker
	Value float64
}

func NewFloatLiteral(value float64) *FloatLiteral {
	return &FloatLiteral{Value: value}
}

type StringLiteral struct {
	expressionMarker
	Value string
}

func NewStringLiteral(value string) *StringLiteral {
	return &StringLiteral{Value: value}
}

type BoolLiteral struct {
	expressionMarker
	Value bool
}

func NewBoolLiteral(value bool) *BoolLiteral {
	return &BoolLiteral{Value: value}
}

type NullLiteral struct {
	expressionMarker
}

func NewNullLiteral() *NullLiteral {
	return &NullLiteral{}
}

type ListLiteral struct {
	expressionMarker
	Elements []Expression
}

func NewListLiteral(elements []Expression) *ListLiteral {
	return &ListLiteral{Elements: elements}
}

// DictEntry is one key/value pair of a dict literal.
type DictEntry struct {
	Key   Expression
	Value Expression
}

type DictLiteral struct {
	expressionMarker
	Entries []*DictEntry
}

func NewDictLiteral(entries []*DictEntry) *DictLiteral {
	return &DictLiteral{Entries: entries}
}

// FieldInit initializes one named field of a struct literal.
type FieldInit struct {
	Name  string
	Value Expression
}

type StructLiteral struct {
	expressionMarker
	Name     string
	TypeArgs []*Type
	Fields   []*FieldInit
}

func NewStructLiteral(name string, typeArgs []*Type, fields []*FieldInit) *StructLiteral {
	return &StructLiteral{Name: name, TypeArgs: typeArgs, Fields: fields}
}

//-----------------------------------------------------------------------------
// Compound expressions
//-----------------------------------------------------------------------------

type UnaryExpr struct {
	expressionMarker
	Op      string
	Operand Expression
}

func NewUnaryExpr(op string, operand Expression) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand}
}

type BinaryExpr struct {
	expressionMarker
	Op    string
	Left  Expression
	Right Expression
}

func NewBinaryExpr(op string, left, right Expression) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right}
}

type CallExpr struct {
	expressionMarker
	Callee   Expression
	Args     []Expression
	TypeArgs []*Type
}

func NewCallExpr(callee Expression, args []Expression, typeArgs []*Type) *CallExpr {
	return &CallExpr{Callee: callee, Args: args, TypeArgs: typeArgs}
}

type MemberExpr struct {
	expressionMarker
	Object Expression
	Member string
}

func NewMemberExpr(object Expression, member string) *MemberExpr {
	return &MemberExpr{Object: object, Member: member}
}

type IndexExpr struct {
	expressionMarker
	Object Expression
	Index  Expression
}

func NewIndexExpr(object, index Expression) *IndexExpr {
	return &IndexExpr{Object: object, Index: index}
}

// InlineCodeExpr is a polyglot block: a guest-language fragment with the
// host variables it binds and an optional declared return type.
type InlineCodeExpr struct {
	expressionMarker
	Language   string
	Code       string
	Bindings   []string
	ReturnType *Type
}

func NewInlineCodeExpr(language, code string, bindings []string, returnType *Type) *InlineCodeExpr {
	return &InlineCodeExpr{Language: language, Code: code, Bindings: bindings, ReturnType: returnType}
}

//-----------------------------------------------------------------------------
// Statements
//-----------------------------------------------------------------------------

type VarDeclStmt struct {
	statementMarker
	Name         string
	DeclaredType *Type
	Init         Expression
}

func NewVarDeclStmt(name string, declaredType *Type, init Expression) *VarDeclStmt {
	return &VarDeclStmt{Name: name, DeclaredType: declaredType, Init: init}
}

type AssignStmt struct {
	statementMarker
	Target Expression // Identifier, MemberExpr or IndexExpr
	Value  Expression
}

func NewAssignStmt(target, value Expression) *AssignStmt {
	return &AssignStmt{Target: target, Value: value}
}

type ExprStmt struct {
	statementMarker
	Expr Expression
}

func NewExprStmt(expr Expression) *ExprStmt {
	return &ExprStmt{Expr: expr}
}

type BlockStmt struct {
	statementMarker
	Statements []Statement
}

func NewBlockStmt(statements []Statement) *BlockStmt {
	return &BlockStmt{Statements: statements}
}

type IfStmt struct {
	statementMarker
	Cond Expression
	Then *BlockStmt
	Else Statement // *BlockStmt, *IfStmt or nil
}

func NewIfStmt(cond Expression, then *BlockStmt, els Statement) *IfStmt {
	return &IfStmt{Cond: cond, Then: then, Else: els}
}

type WhileStmt struct {
	statementMarker
	Cond Expression
	Body *BlockStmt
}

func NewWhileStmt(cond Expression, body *BlockStmt) *WhileStmt {
	return &WhileStmt{Cond: cond, Body: body}
}

type ForInStmt struct {
	statementMarker
	Var      string
	Iterable Expression
	Body     *BlockStmt
}

func NewForInStmt(name string, iterable Expression, body *BlockStmt) *ForInStmt {
	return &ForInStmt{Var: name, Iterable: iterable, Body: body}
}

type ReturnStmt struct {
	statementMarker
	Value Expression // nil for bare return
}

func NewReturnStmt(value Expression) *ReturnStmt {
	return &ReturnStmt{Value: value}
}

type BreakStmt struct {
	statementMarker
}

func NewBreakStmt() *BreakStmt { return &BreakStmt{} }

type ContinueStmt struct {
	statementMarker
}

func NewContinueStmt() *ContinueStmt { return &ContinueStmt{} }

type ThrowStmt struct {
	statementMarker
	Value Expression
}

func NewThrowStmt(value Expression) *ThrowStmt {
	return &ThrowStmt{Value: value}
}

type TryStmt struct {
	statementMarker
	Body      *BlockStmt
	CatchName string // binding for the caught error, "" when no catch
	Catch     *BlockStmt
	Finally   *BlockStmt
}

func NewTryStmt(body *BlockStmt, catchName string, catch, finally *BlockStmt) *TryStmt {
	return &TryStmt{Body: body, CatchName: catchName, Catch: catch, Finally: finally}
}

// Param is one function parameter. ByRef parameters share the caller's
// value; the rest are deep-copied on binding.
type Param struct {
	Name    string
	Type    *Type
	ByRef   bool
	Default Expression
}

type FunctionDecl struct {
	statementMarker
	Name       string
	TypeParams []string
	Params     []*Param
	ReturnType *Type
	Body       *BlockStmt
}

func NewFunctionDecl(name string, typeParams []string, params []*Param, returnType *Type, body *BlockStmt) *FunctionDecl {
	return &FunctionDecl{Name: name, TypeParams: typeParams, Params: params, ReturnType: returnType, Body: body}
}

// FieldDef is one declared struct field.
type FieldDef struct {
	Name string
	Type *Type
}

type StructDecl struct {
	statementMarker
	Name       string
	TypeParams []string
	Fields     []*FieldDef
}

func NewStructDecl(name string, typeParams []string, fields []*FieldDef) *StructDecl {
	return &StructDecl{Name: name, TypeParams: typeParams, Fields: fields}
}

// ImportStmt loads a block library from the registry. Constraint is a
// semantic-version constraint ("" means any version).
type ImportStmt struct {
	statementMarker
	Library    string
	Constraint string
}

func NewImportStmt(library, constraint string) *ImportStmt {
	return &ImportStmt{Library: library, Constraint: constraint}
}

// Module is the root node of a parsed program.
type Module struct {
	nodeImpl
	Statements []Statement
}

func NewModule(statements []Statement) *Module {
	return &Module{Statements: statements}
}

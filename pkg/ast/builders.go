package ast

// Terse constructors used heavily by tests. Each wraps the corresponding
// New* constructor.

func Mod(statements ...Statement) *Module { return NewModule(statements) }

func ID(name string) *Identifier { return NewIdentifier(name) }

func Int(v int32) *IntLiteral { return NewIntLiteral(v) }

func Float(v float64) *FloatLiteral { return NewFloatLiteral(v) }

func Str(v string) *StringLiteral { return NewStringLiteral(v) }

func Bool(v bool) *BoolLiteral { return NewBoolLiteral(v) }

func Null() *NullLiteral { return NewNullLiteral() }

func List(elements ...Expression) *ListLiteral { return NewListLiteral(elements) }

func Entry(key, value Expression) *DictEntry { return &DictEntry{Key: key, Value: value} }

func Dict(entries ...*DictEntry) *DictLiteral { return NewDictLiteral(entries) }

func FieldVal(name string, value Expression) *FieldInit {
	return &FieldInit{Name: name, Value: value}
}

func StructLit(name string, fields ...*FieldInit) *StructLiteral {
	return NewStructLiteral(name, nil, fields)
}

func StructLitT(name string, typeArgs []*Type, fields ...*FieldInit) *StructLiteral {
	return NewStructLiteral(name, typeArgs, fields)
}

func Un(op string, operand Expression) *UnaryExpr { return NewUnaryExpr(op, operand) }

func Bin(op string, left, right Expression) *BinaryExpr { return NewBinaryExpr(op, left, right) }

func Call(callee Expression, args ...Expression) *CallExpr {
	return NewCallExpr(callee, args, nil)
}

func CallT(callee Expression, typeArgs []*Type, args ...Expression) *CallExpr {
	return NewCallExpr(callee, args, typeArgs)
}

func Member(object Expression, member string) *MemberExpr { return NewMemberExpr(object, member) }

func Index(object, index Expression) *IndexExpr { return NewIndexExpr(object, index) }

func Inline(language, code string, bindings ...string) *InlineCodeExpr {
	return NewInlineCodeExpr(language, code, bindings, nil)
}

func InlineT(language, code string, returnType *Type, bindings ...string) *InlineCodeExpr {
	return NewInlineCodeExpr(language, code, bindings, returnType)
}

func Decl(name string, init Expression) *VarDeclStmt { return NewVarDeclStmt(name, nil, init) }

func DeclT(name string, declaredType *Type, init Expression) *VarDeclStmt {
	return NewVarDeclStmt(name, declaredType, init)
}

func Assign(target, value Expression) *AssignStmt { return NewAssignStmt(target, value) }

func ExprS(expr Expression) *ExprStmt { return NewExprStmt(expr) }

func Block(statements ...Statement) *BlockStmt { return NewBlockStmt(statements) }

func If(cond Expression, then *BlockStmt, els Statement) *IfStmt {
	return NewIfStmt(cond, then, els)
}

func While(cond Expression, body *BlockStmt) *WhileStmt { return NewWhileStmt(cond, body) }

func ForIn(name string, iterable Expression, body *BlockStmt) *ForInStmt {
	return NewForInStmt(name, iterable, body)
}

func Ret(value Expression) *ReturnStmt { return NewReturnStmt(value) }

func Brk() *BreakStmt { return NewBreakStmt() }

func Cont() *ContinueStmt { return NewContinueStmt() }

func Throw(value Expression) *ThrowStmt { return NewThrowStmt(value) }

func Try(body *BlockStmt, catchName string, catch, finally *BlockStmt) *TryStmt {
	return NewTryStmt(body, catchName, catch, finally)
}

func P(name string) *Param { return &Param{Name: name} }

func PT(name string, ty *Type) *Param { return &Param{Name: name, Type: ty} }

func PRef(name string) *Param { return &Param{Name: name, ByRef: true} }

func PDef(name string, def Expression) *Param { return &Param{Name: name, Default: def} }

func Fn(name string, params []*Param, returnType *Type, body *BlockStmt) *FunctionDecl {
	return NewFunctionDecl(name, nil, params, returnType, body)
}

func FnG(name string, typeParams []string, params []*Param, returnType *Type, body *BlockStmt) *FunctionDecl {
	return NewFunctionDecl(name, typeParams, params, returnType, body)
}

func Field(name string, ty *Type) *FieldDef { return &FieldDef{Name: name, Type: ty} }

func Struct(name string, fields ...*FieldDef) *StructDecl {
	return NewStructDecl(name, nil, fields)
}

func StructG(name string, typeParams []string, fields ...*FieldDef) *StructDecl {
	return NewStructDecl(name, typeParams, fields)
}

func Import(library, constraint string) *ImportStmt { return NewImportStmt(library, constraint) }

// Type descriptor builders.

func TyAny() *Type    { return &Type{Kind: TypeAny} }
func TyNull() *Type   { return &Type{Kind: TypeNull} }
func TyInt() *Type    { return &Type{Kind: TypeInt} }
func TyFloat() *Type  { return &Type{Kind: TypeFloat} }
func TyBool() *Type   { return &Type{Kind: TypeBool} }
func TyString() *Type { return &Type{Kind: TypeString} }

func TyList(elem *Type) *Type { return &Type{Kind: TypeList, Elem: elem} }

func TyDict(key, val *Type) *Type { return &Type{Kind: TypeDict, Key: key, Val: val} }

func TyStruct(name string, args ...*Type) *Type {
	return &Type{Kind: TypeStruct, Name: name, Args: args}
}

func TyUnion(members ...*Type) *Type { return &Type{Kind: TypeUnion, Members: members} }

func TyParam(name string) *Type { return &Type{Kind: TypeParam, Name: name} }

// Nullable returns a copy of t with the nullable flag set.
func Nullable(t *Type) *Type {
	c := *t
	c.Nullable = true
	return &c
}

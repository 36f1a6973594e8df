package interpreter

import (
	"sort"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
	"plait/interpreter-go/pkg/typecheck"
)

// evaluateStatement executes one statement. A non-nil value is the
// statement's result (expression statements and declarations yield one);
// control flow propagates as signal errors.
func (i *Interpreter) evaluateStatement(stmt ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	switch s := stmt.(type) {
	case *ast.VarDeclStmt:
		return i.evaluateVarDecl(s, env)
	case *ast.AssignStmt:
		return nil, i.evaluateAssign(s, env)
	case *ast.ExprStmt:
		return i.evaluateExpression(s.Expr, env)
	case *ast.BlockStmt:
		return i.executeScoped(s.Statements, env.Extend())
	case *ast.IfStmt:
		cond, err := i.evaluateExpression(s.Cond, env)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(cond) {
			return i.executeScoped(s.Then.Statements, env.Extend())
		}
		if s.Else != nil {
			return i.evaluateStatement(s.Else, env)
		}
		return nil, nil
	case *ast.WhileStmt:
		return nil, i.evaluateWhile(s, env)
	case *ast.ForInStmt:
		return nil, i.evaluateForIn(s, env)
	case *ast.ReturnStmt:
		var val runtime.Value = runtime.NullValue{}
		if s.Value != nil {
			v, err := i.evaluateExpression(s.Value, env)
			if err != nil {
				return nil, err
			}
			val = v
		}
		return nil, returnSignal{value: val}
	case *ast.BreakStmt:
		return nil, breakSignal{}
	case *ast.ContinueStmt:
		return nil, continueSignal{}
	case *ast.ThrowStmt:
		val, err := i.evaluateExpression(s.Value, env)
		if err != nil {
			return nil, err
		}
		return nil, raiseSignal{value: val}
	case *ast.TryStmt:
		return nil, i.evaluateTry(s, env)
	case *ast.FunctionDecl:
		env.Define(s.Name, &runtime.FunctionValue{Declaration: s, Closure: env})
		return nil, nil
	case *ast.StructDecl:
		env.Define(s.Name, &runtime.StructDefValue{
			TypeName:   s.Name,
			TypeParams: s.TypeParams,
			Fields:     s.Fields,
		})
		return nil, nil
	case *ast.ImportStmt:
		return nil, i.executeImport(s, env)
	default:
		return nil, &RuntimeError{Class: ClassInternal, Message: "Unsupported statement"}
	}
}

func (i *Interpreter) evaluateVarDecl(s *ast.VarDeclStmt, env *runtime.Environment) (runtime.Value, error) {
	var val runtime.Value = runtime.NullValue{}
	if s.Init != nil {
		v, err := i.evaluateExpression(s.Init, env)
		if err != nil {
			return nil, err
		}
		val = v
	}
	if s.DeclaredType != nil && !typecheck.Compatible(s.DeclaredType, val) {
		if val.Kind() == runtime.KindNull {
			return nil, &RuntimeError{
				Class:   ClassType,
				Message: "Cannot assign null to variable '" + s.Name + "' of non-nullable type " + s.DeclaredType.String(),
				Help:    "Mark the type nullable with '?' or provide a non-null value.",
			}
		}
		return nil, typeError("Variable '%s' expects %s, got %s",
			s.Name, s.DeclaredType.String(), typecheck.Infer(val).String())
	}
	env.Define(s.Name, val)
	return val, nil
}

func (i *Interpreter) evaluateAssign(s *ast.AssignStmt, env *runtime.Environment) error {
	val, err := i.evaluateExpression(s.Value, env)
	if err != nil {
		return err
	}
	switch target := s.Target.(type) {
	case *ast.Identifier:
		if err := env.Assign(target.Name, val); err != nil {
			return undefinedVariable(target.Name, env)
		}
		return nil
	case *ast.MemberExpr:
		obj, err := i.evaluateExpression(target.Object, env)
		if err != nil {
			return err
		}
		return i.assignMember(obj, target.Member, val)
	case *ast.IndexExpr:
		obj, err := i.evaluateExpression(target.Object, env)
		if err != nil {
			return err
		}
		idx, err := i.evaluateExpression(target.Index, env)
		if err != nil {
			return err
		}
		return i.assignIndex(obj, idx, val)
	default:
		return &RuntimeError{Class: ClassBinding, Message: "Invalid assignment target"}
	}
}

func (i *Interpreter) evaluateWhile(s *ast.WhileStmt, env *runtime.Environment) error {
	for {
		cond, err := i.evaluateExpression(s.Cond, env)
		if err != nil {
			return err
		}
		if !runtime.Truthy(cond) {
			return nil
		}
		if _, err := i.executeScoped(s.Body.Statements, env.Extend()); err != nil {
			switch err.(type) {
			case breakSignal:
				return nil
			case continueSignal:
				continue
			default:
				return err
			}
		}
	}
}

func (i *Interpreter) evaluateForIn(s *ast.ForInStmt, env *runtime.Environment) error {
	iterable, err := i.evaluateExpression(s.Iterable, env)
	if err != nil {
		return err
	}
	var items []runtime.Value
	switch v := iterable.(type) {
	case *runtime.ListValue:
		items = append(items, v.Elements...)
	case *runtime.DictValue:
		keys := make([]string, 0, len(v.Entries))
		for k := range v.Entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			items = append(items, runtime.StringValue{Val: k})
		}
	case runtime.StringValue:
		for _, r := range v.Val {
			items = append(items, runtime.StringValue{Val: string(r)})
		}
	default:
		return typeError("Cannot iterate over %s", iterable.Kind())
	}
	for _, item := range items {
		loopEnv := env.Extend()
		loopEnv.Define(s.Var, item)
		if _, err := i.executeScoped(s.Body.Statements, loopEnv); err != nil {
			switch err.(type) {
			case breakSignal:
				return nil
			case continueSignal:
				continue
			default:
				return err
			}
		}
	}
	return nil
}

// evaluateTry implements try/catch/finally. A pending return from the try
// or catch body survives the finally block, including a break or continue
// raised there; only an error raised inside finally supersedes it.
func (i *Interpreter) evaluateTry(s *ast.TryStmt, env *runtime.Environment) error {
	_, pending := i.executeScoped(s.Body.Statements, env.Extend())

	if pending != nil && !isControlSignal(pending) && catchable(pending) && s.Catch != nil {
		catchEnv := env.Extend()
		if s.CatchName != "" {
			catchEnv.Define(s.CatchName, errorValue(pending))
		}
		_, pending = i.executeScoped(s.Catch.Statements, catchEnv)
	}

	if s.Finally != nil {
		_, finErr := i.executeScoped(s.Finally.Statements, env.Extend())
		if finErr != nil {
			_, pendingReturn := pending.(returnSignal)
			switch finErr.(type) {
			case breakSignal, continueSignal:
				if !pendingReturn {
					pending = finErr
				}
			default:
				pending = finErr
			}
		}
	}
	return pending
}

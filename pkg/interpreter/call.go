package interpreter

import (
	"context"
	"strings"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/polyglot"
	"plait/interpreter-go/pkg/runtime"
	"plait/interpreter-go/pkg/typecheck"
)

func (i *Interpreter) evaluateCall(e *ast.CallExpr, env *runtime.Environment) (runtime.Value, error) {
	// Method-style calls dispatch to the container catalog first; a stored
	// callable member is the fallback.
	if member, ok := e.Callee.(*ast.MemberExpr); ok {
		obj, err := i.evaluateExpression(member.Object, env)
		if err != nil {
			return nil, err
		}
		args, err := i.evaluateArgs(e.Args, env)
		if err != nil {
			return nil, err
		}
		if val, handled, err := i.callBuiltinMember(obj, member.Member, args); handled {
			return val, err
		}
		callee, err := i.accessMember(obj, member.Member)
		if err != nil {
			return nil, err
		}
		return i.invoke(callee, args, e.TypeArgs, env)
	}

	callee, err := i.evaluateExpression(e.Callee, env)
	if err != nil {
		return nil, err
	}
	args, err := i.evaluateArgs(e.Args, env)
	if err != nil {
		return nil, err
	}
	return i.invoke(callee, args, e.TypeArgs, env)
}

func (i *Interpreter) evaluateArgs(exprs []ast.Expression, env *runtime.Environment) ([]runtime.Value, error) {
	args := make([]runtime.Value, 0, len(exprs))
	for _, a := range exprs {
		v, err := i.evaluateExpression(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

func (i *Interpreter) invoke(callee runtime.Value, args []runtime.Value, typeArgs []*ast.Type, env *runtime.Environment) (runtime.Value, error) {
	switch fn := callee.(type) {
	case *runtime.FunctionValue:
		return i.invokeFunction(fn, args, typeArgs)
	case runtime.NativeFunctionValue:
		if fn.Arity >= 0 && len(args) != fn.Arity {
			return nil, callError(
				"Check the call site against the function's signature.",
				"Function '%s' expects %d arguments, got %d", fn.Name, fn.Arity, len(args))
		}
		return fn.Impl(&runtime.NativeCallContext{Env: env}, args)
	case *runtime.BlockValue:
		return i.invokeBlock(fn, args)
	default:
		return nil, callError(
			"Only functions and imported blocks are callable.",
			"Cannot call a value of type %s", callee.Kind())
	}
}

// invokeFunction applies the full call protocol: arity and depth checks,
// by-value deep copies, generic binding inference, declared-type checks on
// parameters and the returned value, defaults evaluated in the callee
// environment.
func (i *Interpreter) invokeFunction(fn *runtime.FunctionValue, args []runtime.Value, typeArgs []*ast.Type) (runtime.Value, error) {
	decl := fn.Declaration
	if i.callDepth >= maxCallDepth {
		return nil, callError(
			"Deep recursion usually means a missing base case.",
			"Call depth limit of %d exceeded in function '%s'", maxCallDepth, decl.Name)
	}

	required := 0
	for _, p := range decl.Params {
		if p.Default == nil {
			required++
		}
	}
	if len(args) < required || len(args) > len(decl.Params) {
		return nil, callError(
			"Check the call site against the function's signature.",
			"Function '%s' expects %d to %d arguments, got %d",
			decl.Name, required, len(decl.Params), len(args))
	}

	bindings := make(map[string]*ast.Type)
	for idx, p := range decl.TypeParams {
		if idx < len(typeArgs) {
			bindings[p] = typeArgs[idx]
		}
	}
	for idx, p := range decl.Params {
		if idx < len(args) {
			typecheck.InferBindings(p.Type, args[idx], bindings)
		}
	}

	callEnv := fn.Closure.Extend()
	i.callDepth++
	i.pushEnv(callEnv)
	defer func() {
		i.popEnv()
		i.callDepth--
	}()

	for idx, p := range decl.Params {
		var val runtime.Value
		if idx < len(args) {
			val = args[idx]
			if !p.ByRef {
				val = i.trackValue(runtime.DeepCopy(val))
			}
		} else {
			dv, err := i.evaluateExpression(p.Default, callEnv)
			if err != nil {
				return nil, err
			}
			val = dv
		}
		declared := typecheck.Substitute(p.Type, bindings)
		if !typecheck.Compatible(declared, val) {
			return nil, typeError("Parameter '%s' of function '%s' expects %s, got %s",
				p.Name, decl.Name, declared.String(), typecheck.Infer(val).String())
		}
		callEnv.Define(p.Name, val)
	}

	var result runtime.Value = runtime.NullValue{}
	_, err := i.executeStatements(decl.Body.Statements, callEnv)
	if err != nil {
		rs, ok := err.(returnSignal)
		if !ok {
			return nil, err
		}
		result = rs.value
	}

	if decl.ReturnType != nil {
		declared := typecheck.Substitute(decl.ReturnType, bindings)
		if !typecheck.Compatible(declared, result) {
			return nil, typeError("Function '%s' must return %s, got %s",
				decl.Name, declared.String(), typecheck.Infer(result).String())
		}
	}
	return result, nil
}

// invokeBlock calls an exported guest function directly: the block source
// runs with a trailer that invokes the export and prints a structured
// return. The single-task group reuses the scheduler's guard and timeout.
func (i *Interpreter) invokeBlock(block *runtime.BlockValue, args []runtime.Value) (runtime.Value, error) {
	backend, err := i.backendFor(block.Language)
	if err != nil {
		return nil, err
	}
	callName := block.Name
	if len(block.Member) > 0 {
		callName = callName + "." + strings.Join(block.Member, ".")
	}
	snippet, err := polyglot.CallSnippet(block.Language, callName, args)
	if err != nil {
		return nil, &RuntimeError{Class: ClassGuest, Message: err.Error()}
	}
	task := polyglot.Task{
		Target:     block.Name,
		Language:   block.Language,
		Source:     polyglot.Dedent(block.Source) + "\n" + snippet,
		ReturnType: block.ReturnType,
		Backend:    backend,
	}
	i.collector.Suspend()
	outcomes, err := i.scheduler.Run(context.Background(), []polyglot.Task{task})
	i.collector.Resume()
	if err != nil {
		return nil, err
	}
	if len(outcomes) == 0 {
		return runtime.NullValue{}, nil
	}
	return i.trackValue(outcomes[0].Value), nil
}

package interpreter

import (
	"context"
	"math"
	"strings"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/polyglot"
	"plait/interpreter-go/pkg/runtime"
	"plait/interpreter-go/pkg/typecheck"
)

func (i *Interpreter) evaluateExpression(expr ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.Identifier:
		val, err := env.Get(e.Name)
		if err != nil {
			return nil, undefinedVariable(e.Name, env)
		}
		return val, nil
	case *ast.IntLiteral:
		return runtime.IntValue{Val: e.Value}, nil
	case *ast.FloatLiteral:
		return runtime.FloatValue{Val: e.Value}, nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: e.Value}, nil
	case *ast.BoolLiteral:
		return runtime.BoolValue{Val: e.Value}, nil
	case *ast.NullLiteral:
		return runtime.NullValue{}, nil
	case *ast.ListLiteral:
		elements := make([]runtime.Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := i.evaluateExpression(el, env)
			if err != nil {
				return nil, err
			}
			elements = append(elements, v)
		}
		return i.trackValue(&runtime.ListValue{Elements: elements}), nil
	case *ast.DictLiteral:
		dict := runtime.NewDict()
		for _, entry := range e.Entries {
			key, err := i.evaluateExpression(entry.Key, env)
			if err != nil {
				return nil, err
			}
			ks, ok := key.(runtime.StringValue)
			if !ok {
				return nil, typeError("Dict keys must be strings, got %s", key.Kind())
			}
			val, err := i.evaluateExpression(entry.Value, env)
			if err != nil {
				return nil, err
			}
			dict.Entries[ks.Val] = val
		}
		return i.trackValue(dict), nil
	case *ast.StructLiteral:
		return i.evaluateStructLiteral(e, env)
	case *ast.UnaryExpr:
		return i.evaluateUnary(e, env)
	case *ast.BinaryExpr:
		return i.evaluateBinary(e, env)
	case *ast.CallExpr:
		return i.evaluateCall(e, env)
	case *ast.MemberExpr:
		obj, err := i.evaluateExpression(e.Object, env)
		if err != nil {
			return nil, err
		}
		return i.accessMember(obj, e.Member)
	case *ast.IndexExpr:
		obj, err := i.evaluateExpression(e.Object, env)
		if err != nil {
			return nil, err
		}
		idx, err := i.evaluateExpression(e.Index, env)
		if err != nil {
			return nil, err
		}
		return i.accessIndex(obj, idx)
	case *ast.InlineCodeExpr:
		return i.evaluateInline(e, env)
	default:
		return nil, &RuntimeError{Class: ClassInternal, Message: "Unsupported expression"}
	}
}

// evaluateStructLiteral constructs a struct instance. Generic definitions
// are specialized first, from explicit type arguments or from the literal's
// field values.
func (i *Interpreter) evaluateStructLiteral(e *ast.StructLiteral, env *runtime.Environment) (runtime.Value, error) {
	bound, err := env.Get(e.Name)
	if err != nil {
		return nil, undefinedVariable(e.Name, env)
	}
	def, ok := bound.(*runtime.StructDefValue)
	if !ok {
		return nil, typeError("'%s' is not a struct type", e.Name)
	}

	byName := make(map[string]runtime.Value, len(e.Fields))
	for _, f := range e.Fields {
		val, verr := i.evaluateExpression(f.Value, env)
		if verr != nil {
			return nil, verr
		}
		if _, dup := byName[f.Name]; dup {
			return nil, typeError("Duplicate field '%s' in %s literal", f.Name, e.Name)
		}
		byName[f.Name] = val
	}

	if len(def.TypeParams) > 0 {
		bindings := make(map[string]*ast.Type)
		for idx, p := range def.TypeParams {
			if idx < len(e.TypeArgs) {
				bindings[p] = e.TypeArgs[idx]
			}
		}
		for _, fd := range def.Fields {
			if val, present := byName[fd.Name]; present {
				typecheck.InferBindings(fd.Type, val, bindings)
			}
		}
		def, err = i.specializer.Specialize(def, bindings)
		if err != nil {
			return nil, &RuntimeError{
				Class:   ClassType,
				Message: err.Error(),
				Help:    "Provide explicit type arguments or initialize the fields that use the parameter.",
			}
		}
	}

	fields := make([]runtime.Value, len(def.Fields))
	for idx, fd := range def.Fields {
		val, present := byName[fd.Name]
		if !present {
			return nil, typeError("Missing field '%s' in %s literal", fd.Name, def.TypeName)
		}
		if !typecheck.Compatible(fd.Type, val) {
			return nil, typeError("Field '%s' of %s expects %s, got %s",
				fd.Name, def.TypeName, fd.Type.String(), typecheck.Infer(val).String())
		}
		fields[idx] = val
		delete(byName, fd.Name)
	}
	for name := range byName {
		return nil, typeError("Unknown field '%s' in %s literal", name, def.TypeName)
	}
	return i.trackValue(&runtime.StructValue{Definition: def, Fields: fields}), nil
}

func (i *Interpreter) evaluateUnary(e *ast.UnaryExpr, env *runtime.Environment) (runtime.Value, error) {
	operand, err := i.evaluateExpression(e.Operand, env)
	if err != nil {
		return nil, err
	}
	switch e.Op {
	case "-":
		switch v := operand.(type) {
		case runtime.IntValue:
			n, nerr := checkedNeg(v.Val)
			if nerr != nil {
				return nil, nerr
			}
			return runtime.IntValue{Val: n}, nil
		case runtime.FloatValue:
			return runtime.FloatValue{Val: -v.Val}, nil
		default:
			return nil, typeError("Cannot negate %s", operand.Kind())
		}
	case "!":
		return runtime.BoolValue{Val: !runtime.Truthy(operand)}, nil
	default:
		return nil, typeError("Unknown unary operator '%s'", e.Op)
	}
}

func (i *Interpreter) evaluateBinary(e *ast.BinaryExpr, env *runtime.Environment) (runtime.Value, error) {
	switch e.Op {
	case "&&":
		left, err := i.evaluateExpression(e.Left, env)
		if err != nil {
			return nil, err
		}
		if !runtime.Truthy(left) {
			return runtime.BoolValue{Val: false}, nil
		}
		right, err := i.evaluateExpression(e.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: runtime.Truthy(right)}, nil
	case "||":
		left, err := i.evaluateExpression(e.Left, env)
		if err != nil {
			return nil, err
		}
		if runtime.Truthy(left) {
			return runtime.BoolValue{Val: true}, nil
		}
		right, err := i.evaluateExpression(e.Right, env)
		if err != nil {
			return nil, err
		}
		return runtime.BoolValue{Val: runtime.Truthy(right)}, nil
	case "|>":
		return i.evaluatePipeline(e.Left, e.Right, env)
	}

	left, err := i.evaluateExpression(e.Left, env)
	if err != nil {
		return nil, err
	}
	right, err := i.evaluateExpression(e.Right, env)
	if err != nil {
		return nil, err
	}
	return i.applyBinary(e.Op, left, right)
}

// evaluatePipeline rewrites "x |> f(a, b)" as "f(x, a, b)". A bare callee
// on the right receives the piped value as its only argument.
func (i *Interpreter) evaluatePipeline(left ast.Expression, right ast.Expression, env *runtime.Environment) (runtime.Value, error) {
	if call, ok := right.(*ast.CallExpr); ok {
		args := append([]ast.Expression{left}, call.Args...)
		return i.evaluateCall(&ast.CallExpr{Callee: call.Callee, Args: args, TypeArgs: call.TypeArgs}, env)
	}
	return i.evaluateCall(&ast.CallExpr{Callee: right, Args: []ast.Expression{left}}, env)
}

func (i *Interpreter) applyBinary(op string, left, right runtime.Value) (runtime.Value, error) {
	switch op {
	case "==":
		return runtime.BoolValue{Val: valuesEqual(left, right)}, nil
	case "!=":
		return runtime.BoolValue{Val: !valuesEqual(left, right)}, nil
	case "+":
		if ls, ok := left.(runtime.StringValue); ok {
			if rs, ok := right.(runtime.StringValue); ok {
				return runtime.StringValue{Val: ls.Val + rs.Val}, nil
			}
			return runtime.StringValue{Val: ls.Val + runtime.Stringify(right)}, nil
		}
		if rs, ok := right.(runtime.StringValue); ok {
			return runtime.StringValue{Val: runtime.Stringify(left) + rs.Val}, nil
		}
		if ll, ok := left.(*runtime.ListValue); ok {
			if rl, ok := right.(*runtime.ListValue); ok {
				elements := make([]runtime.Value, 0, len(ll.Elements)+len(rl.Elements))
				elements = append(elements, ll.Elements...)
				elements = append(elements, rl.Elements...)
				return i.trackValue(&runtime.ListValue{Elements: elements}), nil
			}
		}
		return i.arith(op, left, right, checkedAdd, func(a, b float64) float64 { return a + b })
	case "-":
		return i.arith(op, left, right, checkedSub, func(a, b float64) float64 { return a - b })
	case "*":
		return i.arith(op, left, right, checkedMul, func(a, b float64) float64 { return a * b })
	case "/":
		if rf, ok := asFloat(right); ok && rf == 0 {
			if _, lint := left.(runtime.IntValue); lint {
				if ri, ok := right.(runtime.IntValue); ok {
					_, err := checkedDiv(mustInt(left), ri.Val)
					return nil, err
				}
			}
			return nil, arithmeticError("Division by zero in %s / %s",
				runtime.Stringify(left), runtime.Stringify(right))
		}
		return i.arith(op, left, right, checkedDiv, func(a, b float64) float64 { return a / b })
	case "%":
		if rf, ok := asFloat(right); ok && rf == 0 {
			if ri, ok := right.(runtime.IntValue); ok {
				if _, lint := left.(runtime.IntValue); lint {
					_, err := checkedMod(mustInt(left), ri.Val)
					return nil, err
				}
			}
			return nil, arithmeticError("Modulo by zero in %s %% %s",
				runtime.Stringify(left), runtime.Stringify(right))
		}
		return i.arith(op, left, right, checkedMod, math.Mod)
	case "<", "<=", ">", ">=":
		return compareOrdered(op, left, right)
	default:
		return nil, typeError("Unknown operator '%s'", op)
	}
}

// arith applies a numeric operator: int op int stays in checked 32-bit
// arithmetic, any float operand promotes both sides to float.
func (i *Interpreter) arith(op string, left, right runtime.Value, ints func(a, b int32) (int32, error), floats func(a, b float64) float64) (runtime.Value, error) {
	li, lok := left.(runtime.IntValue)
	ri, rok := right.(runtime.IntValue)
	if lok && rok {
		n, err := ints(li.Val, ri.Val)
		if err != nil {
			return nil, err
		}
		return runtime.IntValue{Val: n}, nil
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, typeError("Operator '%s' expects numbers, got %s and %s", op, left.Kind(), right.Kind())
	}
	return runtime.FloatValue{Val: floats(lf, rf)}, nil
}

func compareOrdered(op string, left, right runtime.Value) (runtime.Value, error) {
	if ls, lok := left.(runtime.StringValue); lok {
		if rs, rok := right.(runtime.StringValue); rok {
			cmp := strings.Compare(ls.Val, rs.Val)
			return runtime.BoolValue{Val: orderedHolds(op, float64(cmp), 0)}, nil
		}
	}
	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, typeError("Cannot compare %s and %s with '%s'", left.Kind(), right.Kind(), op)
	}
	return runtime.BoolValue{Val: orderedHolds(op, lf, rf)}, nil
}

func orderedHolds(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

// valuesEqual is null-aware structural equality: null equals only null,
// numbers compare across int and float, containers compare element-wise.
// Values of unrelated kinds are never equal.
func valuesEqual(a, b runtime.Value) bool {
	if a.Kind() == runtime.KindNull || b.Kind() == runtime.KindNull {
		return a.Kind() == runtime.KindNull && b.Kind() == runtime.KindNull
	}
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
		return false
	}
	switch av := a.(type) {
	case runtime.BoolValue:
		bv, ok := b.(runtime.BoolValue)
		return ok && av.Val == bv.Val
	case runtime.StringValue:
		bv, ok := b.(runtime.StringValue)
		return ok && av.Val == bv.Val
	case *runtime.ListValue:
		bv, ok := b.(*runtime.ListValue)
		if !ok || len(av.Elements) != len(bv.Elements) {
			return false
		}
		if av == bv {
			return true
		}
		for idx := range av.Elements {
			if !valuesEqual(av.Elements[idx], bv.Elements[idx]) {
				return false
			}
		}
		return true
	case *runtime.DictValue:
		bv, ok := b.(*runtime.DictValue)
		if !ok || len(av.Entries) != len(bv.Entries) {
			return false
		}
		if av == bv {
			return true
		}
		for k, v := range av.Entries {
			other, present := bv.Entries[k]
			if !present || !valuesEqual(v, other) {
				return false
			}
		}
		return true
	case *runtime.StructValue:
		bv, ok := b.(*runtime.StructValue)
		if !ok || av.TypeName() != bv.TypeName() || len(av.Fields) != len(bv.Fields) {
			return false
		}
		if av == bv {
			return true
		}
		for idx := range av.Fields {
			if !valuesEqual(av.Fields[idx], bv.Fields[idx]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// asFloat widens a numeric value to float64. Booleans are not numbers.
func asFloat(v runtime.Value) (float64, bool) {
	switch n := v.(type) {
	case runtime.IntValue:
		return float64(n.Val), true
	case runtime.FloatValue:
		return n.Val, true
	default:
		return 0, false
	}
}

func mustInt(v runtime.Value) int32 {
	if n, ok := v.(runtime.IntValue); ok {
		return n.Val
	}
	return 0
}

// evaluateInline runs one inline guest block synchronously as a
// single-member group, sharing the scheduler's guard, timeout and result
// normalization.
func (i *Interpreter) evaluateInline(e *ast.InlineCodeExpr, env *runtime.Environment) (runtime.Value, error) {
	vars, err := i.snapshotBindings(e, env)
	if err != nil {
		return nil, err
	}
	backend, err := i.backendFor(e.Language)
	if err != nil {
		return nil, err
	}
	task := polyglot.Task{
		Language:   e.Language,
		Source:     polyglot.Prepare(e.Language, e.Code, vars),
		ReturnType: e.ReturnType,
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

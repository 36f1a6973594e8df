package interpreter

import (
	"fmt"
	"strings"

	"plait/interpreter-go/pkg/runtime"
	"plait/interpreter-go/pkg/typecheck"
)

func (i *Interpreter) installBuiltins() {
	i.global.Define("print", runtime.NativeFunctionValue{
		Name:  "print",
		Arity: -1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			parts := make([]string, len(args))
			for idx, a := range args {
				parts[idx] = runtime.Stringify(a)
			}
			fmt.Fprintln(i.stdout, strings.Join(parts, " "))
			return runtime.NullValue{}, nil
		},
	})

	i.global.Define("len", runtime.NativeFunctionValue{
		Name:  "len",
		Arity: 1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			switch v := args[0].(type) {
			case runtime.StringValue:
				return runtime.IntValue{Val: int32(len([]rune(v.Val)))}, nil
			case *runtime.ListValue:
				return runtime.IntValue{Val: int32(len(v.Elements))}, nil
			case *runtime.DictValue:
				return runtime.IntValue{Val: int32(len(v.Entries))}, nil
			default:
				return nil, typeError("len expects a string, list or dict, got %s", args[0].Kind())
			}
		},
	})

	i.global.Define("typeof", runtime.NativeFunctionValue{
		Name:  "typeof",
		Arity: 1,
		Impl: func(_ *runtime.NativeCallContext, args []runtime.Value) (runtime.Value, error) {
			return runtime.StringValue{Val: typecheck.Infer(args[0]).String()}, nil
		},
	})

	// gc_collect forces a collection cycle and returns the number of cyclic
	// values reclaimed.
	i.global.Define("gc_collect", runtime.NativeFunctionValue{
		Name:  "gc_collect",
		Arity: 0,
		Impl: func(_ *runtime.NativeCallContext, _ []runtime.Value) (runtime.Value, error) {
			return runtime.IntValue{Val: int32(i.collect(nil))}, nil
		},
	})
}

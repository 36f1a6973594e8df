package interpreter

import (
	"fmt"
	"sort"
	"strings"

	"plait/interpreter-go/pkg/runtime"
)

// ErrorClass is the script-visible error taxonomy. Every class except
// ClassInternal is catchable by try/catch.
type ErrorClass int

const (
	ClassBinding ErrorClass = iota
	ClassType
	ClassArithmetic
	ClassCall
	ClassGuest
	ClassInternal
)

func (c ErrorClass) String() string {
	switch c {
	case ClassBinding:
		return "binding"
	case ClassType:
		return "type"
	case ClassArithmetic:
		return "arithmetic"
	case ClassCall:
		return "call"
	case ClassGuest:
		return "guest"
	case ClassInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// RuntimeError is a script-visible failure with classification and
// remediation text.
type RuntimeError struct {
	Class   ErrorClass
	Message string
	Help    string
}

func (e *RuntimeError) Error() string {
	if e.Help == "" {
		return e.Message
	}
	return e.Message + "\nHelp: " + e.Help
}

func bindingError(help, format string, args ...any) *RuntimeError {
	return &RuntimeError{Class: ClassBinding, Message: fmt.Sprintf(format, args...), Help: help}
}

func typeError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Class: ClassType, Message: fmt.Sprintf(format, args...)}
}

func arithmeticError(format string, args ...any) *RuntimeError {
	return &RuntimeError{Class: ClassArithmetic, Message: fmt.Sprintf(format, args...)}
}

func callError(help, format string, args ...any) *RuntimeError {
	return &RuntimeError{Class: ClassCall, Message: fmt.Sprintf(format, args...), Help: help}
}

// undefinedVariable builds the binding error for a missing name, with a
// similarity suggestion drawn from the visible scope.
func undefinedVariable(name string, env *runtime.Environment) *RuntimeError {
	help := "Declare the variable before using it."
	if s := suggest(name, env.AllNames()); s != "" {
		help = s + " " + help
	}
	return bindingError(help, "Undefined variable '%s'", name)
}

// suggest returns "Did you mean 'x'?" for the closest candidate within edit
// distance two, preferring the smallest distance and then lexicographic
// order so output is stable.
func suggest(name string, candidates []string) string {
	best := ""
	bestDist := 3
	sorted := append([]string(nil), candidates...)
	sort.Strings(sorted)
	for _, c := range sorted {
		if c == name {
			continue
		}
		if d := levenshtein(name, c); d < bestDist {
			bestDist = d
			best = c
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf("Did you mean '%s'?", best)
}

func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, min(cur[j-1]+1, prev[j-1]+cost))
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

//-----------------------------------------------------------------------------
// Control-flow signals
//-----------------------------------------------------------------------------

// Control flow unwinds through sentinel error types, kept distinct from
// genuine runtime errors: the nearest consuming construct clears them.

type breakSignal struct{}

func (breakSignal) Error() string { return "Break outside loop" }

type continueSignal struct{}

func (continueSignal) Error() string { return "Continue outside loop" }

type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "Return outside function" }

type raiseSignal struct {
	value runtime.Value
}

func (r raiseSignal) Error() string {
	return "Uncaught error: " + runtime.Stringify(r.value)
}

// isControlSignal reports break/continue/return, which pass through catch
// clauses untouched.
func isControlSignal(err error) bool {
	switch err.(type) {
	case breakSignal, continueSignal, returnSignal:
		return true
	default:
		return false
	}
}

// catchable reports whether a failure may be intercepted by a catch clause.
// ClassInternal errors unwind to the host untouched.
func catchable(err error) bool {
	if re, ok := err.(*RuntimeError); ok {
		return re.Class != ClassInternal
	}
	return true
}

// errorValue converts a caught failure into the value bound by a catch
// clause: a thrown value unchanged, anything else its message text.
func errorValue(err error) runtime.Value {
	if rs, ok := err.(raiseSignal); ok {
		return rs.value
	}
	if re, ok := err.(*RuntimeError); ok {
		return runtime.StringValue{Val: re.Message}
	}
	msg := err.Error()
	if idx := strings.Index(msg, "\nHelp:"); idx >= 0 {
		msg = msg[:idx]
	}
	return runtime.StringValue{Val: msg}
}

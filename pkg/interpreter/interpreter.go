// Package interpreter evaluates Plait programs: a tree-walking evaluator
// over the runtime value graph, with gradual type checking, an on-demand
// cycle collector and parallel scheduling of inline guest-code blocks.
package interpreter

import (
	"context"
	"fmt"
	"io"
	"os"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/gc"
	"plait/interpreter-go/pkg/polyglot"
	"plait/interpreter-go/pkg/registry"
	"plait/interpreter-go/pkg/runtime"
	"plait/interpreter-go/pkg/typecheck"
)

const maxCallDepth = 1000

// Interpreter drives evaluation of Plait AST nodes.
type Interpreter struct {
	global      *runtime.Environment
	collector   *gc.Collector
	specializer *typecheck.Specializer
	scheduler   *polyglot.Scheduler
	backends    map[string]polyglot.Backend
	registry    registry.Registry
	imported    map[string]bool
	callDepth   int
	// Active scope environments, innermost last: the global scope, every
	// call scope and every nested block scope currently executing. These
	// are the GC roots alongside any in-flight value.
	envs   []*runtime.Environment
	stdout io.Writer
}

// New returns an interpreter with an empty global environment and builtins
// installed.
func New() *Interpreter {
	i := &Interpreter{
		global:      runtime.NewEnvironment(nil),
		collector:   gc.New(),
		specializer: typecheck.NewSpecializer(),
		scheduler:   polyglot.NewScheduler(),
		backends:    make(map[string]polyglot.Backend),
		imported:    make(map[string]bool),
		stdout:      os.Stdout,
	}
	i.envs = append(i.envs, i.global)
	i.installBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter's global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Collector exposes the cycle collector, mainly for explicit collection and
// inspection in tests.
func (i *Interpreter) Collector() *gc.Collector {
	return i.collector
}

// Scheduler exposes the polyglot scheduler for configuration.
func (i *Interpreter) Scheduler() *polyglot.Scheduler {
	return i.scheduler
}

// SetStdout redirects builtin print output.
func (i *Interpreter) SetStdout(w io.Writer) {
	if w != nil {
		i.stdout = w
	}
}

// RegisterBackend installs a guest backend under its language tag.
func (i *Interpreter) RegisterBackend(b polyglot.Backend) {
	i.backends[b.Language()] = b
}

// SetRegistry attaches a block registry used by import statements.
func (i *Interpreter) SetRegistry(r registry.Registry) {
	i.registry = r
}

// EvaluateModule executes a module and returns the last evaluated value and
// the module environment.
func (i *Interpreter) EvaluateModule(module *ast.Module) (runtime.Value, *runtime.Environment, error) {
	val, err := i.executeStatements(module.Statements, i.global)
	if err != nil {
		if rs, ok := err.(returnSignal); ok {
			return rs.value, i.global, nil
		}
		return nil, i.global, err
	}
	if val == nil {
		val = runtime.NullValue{}
	}
	return val, i.global, nil
}

// executeStatements runs a statement list: inline guest blocks go through
// the dependency analyzer and scheduler in groups, everything else runs in
// source order.
func (i *Interpreter) executeStatements(statements []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	groups := polyglot.Analyze(statements)
	groupOf := make(map[int]int)
	for gi, g := range groups {
		for _, b := range g.Blocks {
			groupOf[b.Index] = gi
		}
	}
	ran := make(map[int]bool)

	var last runtime.Value = runtime.NullValue{}
	for idx, stmt := range statements {
		if gi, ok := groupOf[idx]; ok {
			if ran[gi] {
				continue
			}
			ran[gi] = true
			if err := i.runGroup(groups[gi], statements, env); err != nil {
				return nil, err
			}
			last = runtime.NullValue{}
			continue
		}
		val, err := i.evaluateStatement(stmt, env)
		if err != nil {
			return nil, err
		}
		if val != nil {
			last = val
		}
	}
	return last, nil
}

// executeScoped runs a statement list in a freshly created scope, keeping
// that scope registered as a GC root while it is live. A collection in the
// middle of a block, loop body or catch clause must see its bindings.
func (i *Interpreter) executeScoped(statements []ast.Statement, env *runtime.Environment) (runtime.Value, error) {
	i.pushEnv(env)
	defer i.popEnv()
	return i.executeStatements(statements, env)
}

// runGroup snapshots each member's inputs, dispatches the group through the
// scheduler and applies the outcomes in index order. Failure of any member
// leaves every target unbound.
func (i *Interpreter) runGroup(group polyglot.Group, statements []ast.Statement, env *runtime.Environment) error {
	tasks := make([]polyglot.Task, 0, len(group.Blocks))
	for _, b := range group.Blocks {
		vars, err := i.snapshotBindings(b.Node, env)
		if err != nil {
			return err
		}
		backend, err := i.backendFor(b.Node.Language)
		if err != nil {
			return err
		}
		tasks = append(tasks, polyglot.Task{
			Index:      b.Index,
			Target:     b.Target,
			Language:   b.Node.Language,
			Source:     polyglot.Prepare(b.Node.Language, b.Node.Code, vars),
			ReturnType: b.Node.ReturnType,
			Backend:    backend,
		})
	}

	// Foreign calls can hold values invisible to root scanning.
	i.collector.Suspend()
	outcomes, err := i.scheduler.Run(context.Background(), tasks)
	i.collector.Resume()
	if err != nil {
		return err
	}

	// Results bind sequentially, in statement order, never concurrently.
	for _, out := range outcomes {
		if out.Target == "" {
			continue
		}
		i.trackValue(out.Value)
		if _, isDecl := statements[out.Index].(*ast.VarDeclStmt); isDecl {
			env.Define(out.Target, out.Value)
		} else if aerr := env.Assign(out.Target, out.Value); aerr != nil {
			return undefinedVariable(out.Target, env)
		}
	}
	return nil
}

// snapshotBindings deep-copies the host variables a block reads, producing
// thread-safe snapshots for serialization.
func (i *Interpreter) snapshotBindings(node *ast.InlineCodeExpr, env *runtime.Environment) ([]polyglot.NamedValue, error) {
	vars := make([]polyglot.NamedValue, 0, len(node.Bindings))
	for _, name := range node.Bindings {
		val, err := env.Get(name)
		if err != nil {
			return nil, bindingError(
				"List only in-scope variables in the block's bindings.",
				"Variable '%s' not found in scope for inline code binding", name)
		}
		vars = append(vars, polyglot.NamedValue{Name: name, Value: runtime.DeepCopy(val)})
	}
	return vars, nil
}

func (i *Interpreter) backendFor(language string) (polyglot.Backend, error) {
	backend, ok := i.backends[language]
	if !ok {
		return nil, &RuntimeError{
			Class:   ClassGuest,
			Message: fmt.Sprintf("No backend registered for language '%s'", language),
			Help:    "Register a backend for the language before executing its blocks.",
		}
	}
	return backend, nil
}

// trackValue registers a fresh value with the collector and runs a
// collection when the allocation threshold trips.
func (i *Interpreter) trackValue(v runtime.Value) runtime.Value {
	i.collector.Track(v)
	if i.collector.NoteAllocation() {
		i.collect(v)
	}
	return v
}

// collect runs the collector with the live root set: every call-scope
// environment plus the in-flight value.
func (i *Interpreter) collect(inFlight runtime.Value) int {
	roots := gc.Roots{Envs: append([]*runtime.Environment(nil), i.envs...)}
	if inFlight != nil {
		roots.Values = []runtime.Value{inFlight}
	}
	return i.collector.Collect(roots)
}

func (i *Interpreter) pushEnv(env *runtime.Environment) {
	i.envs = append(i.envs, env)
}

func (i *Interpreter) popEnv() {
	i.envs = i.envs[:len(i.envs)-1]
}

// executeImport resolves a library, materializes its exports as block
// handles and marks it executed so repeated imports are no-ops.
func (i *Interpreter) executeImport(stmt *ast.ImportStmt, env *runtime.Environment) error {
	if i.registry == nil {
		return &RuntimeError{
			Class:   ClassBinding,
			Message: fmt.Sprintf("Cannot import '%s': no block registry attached", stmt.Library),
			Help:    "Attach a registry with SetRegistry before importing block libraries.",
		}
	}
	lib, err := i.registry.Resolve(stmt.Library, stmt.Constraint)
	if err != nil {
		return &RuntimeError{
			Class:   ClassBinding,
			Message: err.Error(),
			Help:    "Check the library name and version constraint against the registry contents.",
		}
	}
	key := lib.Manifest.Name + "@" + lib.Manifest.Version
	if i.imported[key] {
		return nil
	}
	i.imported[key] = true
	for _, block := range lib.Blocks() {
		env.Define(block.Name, block)
	}
	return nil
}

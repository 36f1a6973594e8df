package runtime

import (
	"fmt"
	"sort"
)

// Environment is one lexical scope: a binding table chained to the scope it
// was created in.
type Environment struct {
	values map[string]Value
	parent *Environment
}

// NewEnvironment returns an empty scope. A nil parent makes it the global
// scope.
func NewEnvironment(parent *Environment) *Environment {
	return &Environment{
		values: make(map[string]Value),
		parent: parent,
	}
}

// Parent returns the enclosing scope, nil at the global scope.
func (e *Environment) Parent() *Environment {
	return e.parent
}

// Snapshot copies this scope's own bindings, without the chain.
func (e *Environment) Snapshot() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Define binds name in this scope, shadowing any outer binding.
func (e *Environment) Define(name string, value Value) {
	e.values[name] = value
}

// Assign rewrites the nearest existing binding, walking outward. It fails
// when no scope on the chain knows the name.
func (e *Environment) Assign(name string, value Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = value
			return nil
		}
	}
	return fmt.Errorf("Undefined variable '%s'", name)
}

// Get resolves name against this scope, then its ancestors.
func (e *Environment) Get(name string) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("Undefined variable '%s'", name)
}

// Has reports whether name resolves anywhere on the chain.
func (e *Environment) Has(name string) bool {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			return true
		}
	}
	return false
}

// Keys lists this scope's own names, sorted.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.values))
	for k := range e.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AllNames walks the whole chain and returns every visible name, innermost
// scope first. Shadowed outer names appear once.
func (e *Environment) AllNames() []string {
	seen := make(map[string]bool)
	var names []string
	for env := e; env != nil; env = env.parent {
		for _, k := range env.Keys() {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	return names
}

// Extend opens a child scope for a block, loop body or call.
func (e *Environment) Extend() *Environment {
	return NewEnvironment(e)
}

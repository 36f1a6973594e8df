// Package polyglot schedules inline guest-language fragments: it analyzes
// data dependencies between blocks, snapshots their inputs, dispatches
// independent blocks to a worker pool and applies results deterministically.
package polyglot

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"plait/interpreter-go/pkg/runtime"
)

// Backend executes guest code for one language tag. The core depends only
// on this contract, never on how a backend runs code.
type Backend interface {
	Language() string
	// ThreadSafe reports whether executions may run off the calling
	// thread. Process-forking mechanisms that are not reentrant must
	// return false and will be run synchronously, in source order.
	ThreadSafe() bool
	Execute(ctx context.Context, source string) error
	ExecuteWithReturn(ctx context.Context, source string) (runtime.Value, error)
	CallFunction(ctx context.Context, name string, args []runtime.Value) (runtime.Value, error)
	CapturedOutput() string
}

// Guard is the sandbox capability acquired before and released after every
// guest execution. Its internals are opaque to the core.
type Guard interface {
	Acquire(ctx context.Context, language string) (release func(), err error)
}

type nopGuard struct{}

func (nopGuard) Acquire(context.Context, string) (func(), error) {
	return func() {}, nil
}

// NopGuard returns a guard that always admits.
func NopGuard() Guard { return nopGuard{} }

// ProcessBackend runs guest code by spawning an external command per
// execution, passing the source as the final argument.
type ProcessBackend struct {
	language   string
	command    string
	args       []string
	threadSafe bool
	// callWrapper builds a fragment that invokes a named function with
	// pre-serialized arguments and emits the result on the sentinel line.
	callWrapper func(name, args string) string

	mu     sync.Mutex
	output string
}

// NewPythonBackend shells out to python3.
func NewPythonBackend() *ProcessBackend {
	return &ProcessBackend{
		language:   "python",
		command:    "python3",
		args:       []string{"-c"},
		threadSafe: true,
		callWrapper: func(name, args string) string {
			return fmt.Sprintf("import json\nprint(%q + json.dumps(%s(%s)))", ReturnSentinel, name, args)
		},
	}
}

// NewJavaScriptBackend shells out to node.
func NewJavaScriptBackend() *ProcessBackend {
	return &ProcessBackend{
		language:   "javascript",
		command:    "node",
		args:       []string{"-e"},
		threadSafe: true,
		callWrapper: func(name, args string) string {
			return fmt.Sprintf("console.log(%q + JSON.stringify(%s(%s)));", ReturnSentinel, name, args)
		},
	}
}

// NewShellBackend shells out to bash. Shell execution is process-forking in
// a way that is not safe to interleave, so it always runs synchronously.
func NewShellBackend() *ProcessBackend {
	return &ProcessBackend{
		language:   "shell",
		command:    "bash",
		args:       []string{"-c"},
		threadSafe: false,
	}
}

func (b *ProcessBackend) Language() string { return b.language }

func (b *ProcessBackend) ThreadSafe() bool { return b.threadSafe }

func (b *ProcessBackend) run(ctx context.Context, source string) (string, error) {
	args := append(append([]string{}, b.args...), source)
	cmd := exec.CommandContext(ctx, b.command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	out := stdout.String()
	b.mu.Lock()
	b.output = out
	b.mu.Unlock()
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return out, fmt.Errorf("%s execution failed: %s", b.language, detail)
	}
	return out, nil
}

func (b *ProcessBackend) Execute(ctx context.Context, source string) error {
	_, err := b.run(ctx, source)
	return err
}

func (b *ProcessBackend) ExecuteWithReturn(ctx context.Context, source string) (runtime.Value, error) {
	out, err := b.run(ctx, source)
	if err != nil {
		return nil, err
	}
	return ParseOutput(out, nil)
}

func (b *ProcessBackend) CallFunction(ctx context.Context, name string, args []runtime.Value) (runtime.Value, error) {
	if b.callWrapper == nil {
		return nil, fmt.Errorf("Backend for %s does not support function calls", b.language)
	}
	serialized := make([]string, len(args))
	for i, a := range args {
		serialized[i] = Serialize(a, b.language)
	}
	source := b.callWrapper(name, strings.Join(serialized, ", "))
	return b.ExecuteWithReturn(ctx, source)
}

func (b *ProcessBackend) CapturedOutput() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.output
}

package polyglot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"plait/interpreter-go/pkg/ast"
	"plait/interpreter-go/pkg/runtime"
)

// Task is one prepared guest execution: final source (snapshot declarations
// already injected), the backend to run it on, and the variable the result
// binds to.
type Task struct {
	Index      int
	Target     string
	Language   string
	Source     string
	ReturnType *ast.Type
	Backend    Backend
}

// Outcome is one successful task result, applied by the caller in Index
// order.
type Outcome struct {
	Index  int
	Target string
	Value  runtime.Value
}

// Scheduler dispatches the tasks of one dependency group. Thread-safe
// backends share a bounded worker pool; the rest run synchronously on the
// calling goroutine, in source order. A single failure aborts the whole
// group: no outcome is returned.
type Scheduler struct {
	workers int64
	timeout time.Duration
	guard   Guard
	logger  *slog.Logger
}

// NewScheduler returns a scheduler with two workers and a 30s group timeout.
func NewScheduler() *Scheduler {
	return &Scheduler{
		workers: 2,
		timeout: 30 * time.Second,
		guard:   NopGuard(),
		logger:  slog.Default(),
	}
}

func (s *Scheduler) SetWorkers(n int) {
	if n > 0 {
		s.workers = int64(n)
	}
}

func (s *Scheduler) SetTimeout(d time.Duration) {
	if d > 0 {
		s.timeout = d
	}
}

func (s *Scheduler) SetGuard(g Guard) {
	if g != nil {
		s.guard = g
	}
}

// Run executes one group of tasks and returns their outcomes sorted by
// index. On any failure it returns a *GuestError and no outcomes.
func (s *Scheduler) Run(ctx context.Context, tasks []Task) ([]Outcome, error) {
	if len(tasks) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	outcomes := make([]*Outcome, len(tasks))
	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(s.workers)

	var serial []int
	for i, t := range tasks {
		if !t.Backend.ThreadSafe() {
			serial = append(serial, i)
			continue
		}
		i, t := i, t
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return s.failure(t, err)
			}
			defer sem.Release(1)
			out, err := s.execute(gctx, t)
			if err != nil {
				return err
			}
			outcomes[i] = out
			return nil
		})
	}

	// Thread-unsafe backends run here, on the calling goroutine, in
	// source order.
	var serialErr error
	for _, i := range serial {
		out, err := s.execute(gctx, tasks[i])
		if err != nil {
			serialErr = err
			cancel()
			break
		}
		outcomes[i] = out
	}

	waitErr := g.Wait()
	switch {
	case serialErr != nil && waitErr != nil:
		// One of the two is cancellation fallout from the other; the
		// error must name the member that actually failed.
		if cancellation(serialErr) && !cancellation(waitErr) {
			return nil, waitErr
		}
		return nil, serialErr
	case serialErr != nil:
		return nil, serialErr
	case waitErr != nil:
		return nil, waitErr
	}

	applied := make([]Outcome, 0, len(outcomes))
	for _, out := range outcomes {
		if out != nil {
			applied = append(applied, *out)
		}
	}
	sort.Slice(applied, func(a, b int) bool { return applied[a].Index < applied[b].Index })
	s.logger.Debug("polyglot group complete", "tasks", len(tasks), "results", len(applied))
	return applied, nil
}

func (s *Scheduler) execute(ctx context.Context, t Task) (*Outcome, error) {
	release, err := s.guard.Acquire(ctx, t.Language)
	if err != nil {
		return nil, s.failure(t, err)
	}
	defer release()

	val, err := t.Backend.ExecuteWithReturn(ctx, t.Source)
	if err != nil {
		return nil, s.failure(t, err)
	}
	// When the block declares a structured return and the backend only
	// produced text, retry the parse against the declared type.
	if str, ok := val.(runtime.StringValue); ok && declaredStructured(t.ReturnType) {
		if parsed, perr := ParseOutput(str.Val+"\n", t.ReturnType); perr == nil {
			val = parsed
		}
	}
	return &Outcome{Index: t.Index, Target: t.Target, Value: val}, nil
}

func (s *Scheduler) failure(t Task, err error) error {
	return &GuestError{
		Language: t.Language,
		Target:   t.Target,
		Index:    t.Index,
		Unbound:  looksUnbound(err),
		Err:      err,
	}
}

// GuestError reports a failed group member. The whole group is discarded:
// no target variable of the group gets bound.
type GuestError struct {
	Language string
	Target   string
	Index    int
	Unbound  bool
	Err      error
}

func (e *GuestError) Error() string {
	member := fmt.Sprintf("statement %d", e.Index)
	if e.Target != "" {
		member = fmt.Sprintf("statement %d (binds '%s')", e.Index, e.Target)
	}
	msg := fmt.Sprintf("Inline %s block failed at %s: %v", e.Language, member, e.Err)
	if e.Unbound {
		msg += fmt.Sprintf("\nHelp: the fragment references a name the %s runtime does not know. List the host variable in the block's bindings so a declaration is injected.", e.Language)
	}
	msg += "\nHelp: no result from this group was bound; later reads of the group's target variables will report undefined variables."
	return msg
}

func (e *GuestError) Unwrap() error { return e.Err }

func cancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func looksUnbound(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, marker := range []string{
		"NameError",
		"is not defined",
		"undefined variable",
		"unbound variable",
		"cannot find value",
		"was not declared",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// Package gc implements the cycle collector for the Plait value graph.
//
// Ordinary lifetime management handles the acyclic common case; the
// collector exists only to find and break reference cycles. It keeps a
// weakly-held set of every tracked container, marks from explicit roots
// (environment chains plus in-flight values) and clears the child
// references of containers that are unreachable yet still referenced by
// other unreachable containers.
package gc

import (
	"log/slog"
	"sync"
	"weak"

	"plait/interpreter-go/pkg/runtime"
)

// Phase is the collector state: Idle until a threshold or explicit request,
// then Marking, then Sweeping, then Idle again.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseMarking
	PhaseSweeping
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseMarking:
		return "marking"
	case PhaseSweeping:
		return "sweeping"
	default:
		return "unknown"
	}
}

// DefaultThreshold is the allocation count that triggers a collection.
const DefaultThreshold = 1000

// Roots is the explicit root set for one collection: every live environment
// chain plus any in-flight values held outside an environment.
type Roots struct {
	Envs   []*runtime.Environment
	Values []runtime.Value
}

// Collector tracks container values weakly and reclaims unreachable cycles.
// It never raises: when suspended it silently skips work.
type Collector struct {
	mu          sync.Mutex
	phase       Phase
	suspended   int
	threshold   int
	allocations int

	tracked []func() runtime.Value

	lastCollected  int
	totalCollected int

	logger *slog.Logger
}

// New returns an idle collector with the default threshold.
func New() *Collector {
	return &Collector{
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
}

// SetThreshold overrides the allocation trigger. Zero disables automatic
// collection; explicit requests still run.
func (c *Collector) SetThreshold(n int) {
	c.mu.Lock()
	c.threshold = n
	c.mu.Unlock()
}

// Phase reports the current collector state.
func (c *Collector) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Suspend pauses collection for the duration of a foreign call, which can
// hold values invisible to environment-based scanning. Calls nest.
func (c *Collector) Suspend() {
	c.mu.Lock()
	c.suspended++
	c.mu.Unlock()
}

// Resume undoes one Suspend.
func (c *Collector) Resume() {
	c.mu.Lock()
	if c.suspended > 0 {
		c.suspended--
	}
	c.mu.Unlock()
}

// Suspended reports whether collection is currently disabled.
func (c *Collector) Suspended() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.suspended > 0
}

// LastCollected reports how many values the most recent run reclaimed.
func (c *Collector) LastCollected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCollected
}

// TotalCollected reports how many values all runs reclaimed.
func (c *Collector) TotalCollected() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalCollected
}

// TrackedCount reports how many weak registrations are held (including
// entries whose referent has already been reclaimed).
func (c *Collector) TrackedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tracked)
}

// Track registers a freshly produced value. Only container kinds can
// participate in cycles; leaf kinds are ignored. Registration is weak and
// never extends the value's lifetime.
func (c *Collector) Track(v runtime.Value) {
	var ref func() runtime.Value
	switch val := v.(type) {
	case *runtime.ListValue:
		ref = weakRef(val)
	case *runtime.DictValue:
		ref = weakRef(val)
	case *runtime.StructValue:
		ref = weakRef(val)
	default:
		return
	}
	c.mu.Lock()
	c.tracked = append(c.tracked, ref)
	c.mu.Unlock()
}

func weakRef[T any, PT interface {
	*T
	runtime.Value
}](p PT) func() runtime.Value {
	wp := weak.Make((*T)(p))
	return func() runtime.Value {
		if v := wp.Value(); v != nil {
			return PT(v)
		}
		return nil
	}
}

// NoteAllocation records one allocation and reports whether the threshold
// has been reached. The counter resets on every collection.
func (c *Collector) NoteAllocation() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.allocations++
	return c.threshold > 0 && c.allocations >= c.threshold && c.suspended == 0
}

// Collect runs one mark/sweep cycle over the tracked set and returns the
// number of cyclic values reclaimed. A suspended collector does nothing.
func (c *Collector) Collect(roots Roots) int {
	c.mu.Lock()
	if c.suspended > 0 || c.phase != PhaseIdle {
		c.mu.Unlock()
		return 0
	}
	c.phase = PhaseMarking
	c.allocations = 0
	tracked := c.tracked
	c.mu.Unlock()

	reachable := make(map[runtime.Value]bool)
	markedEnvs := make(map[*runtime.Environment]bool)
	for _, env := range roots.Envs {
		markEnvironment(env, reachable, markedEnvs)
	}
	for _, v := range roots.Values {
		markValue(v, reachable, markedEnvs)
	}
	c.logger.Debug("gc mark complete", "reachable", len(reachable))

	c.mu.Lock()
	c.phase = PhaseSweeping
	c.mu.Unlock()

	// Resolve the weak set. Expired entries drop out of the tracked list;
	// the remainder are alive but possibly unreachable.
	var live []runtime.Value
	kept := tracked[:0]
	for _, ref := range tracked {
		if v := ref(); v != nil {
			live = append(live, v)
			kept = append(kept, ref)
		}
	}

	unreachable := make(map[runtime.Value]bool)
	for _, v := range live {
		if !reachable[v] {
			unreachable[v] = true
		}
	}

	// A value is cyclic garbage when another unreachable value still
	// references it: unreachable with no referents is plain garbage the
	// host reclaims on its own and must not be counted here.
	inDegree := make(map[runtime.Value]int)
	for v := range unreachable {
		for _, child := range runtime.Children(v) {
			if unreachable[child] {
				inDegree[child]++
			}
		}
	}

	var cyclic []runtime.Value
	for v := range unreachable {
		if inDegree[v] > 0 {
			cyclic = append(cyclic, v)
		}
	}
	for _, v := range cyclic {
		runtime.ClearChildren(v)
	}
	c.logger.Debug("gc sweep complete", "tracked", len(live), "collected", len(cyclic))

	c.mu.Lock()
	c.tracked = kept
	c.lastCollected = len(cyclic)
	c.totalCollected += len(cyclic)
	c.phase = PhaseIdle
	c.mu.Unlock()
	return len(cyclic)
}

func markEnvironment(env *runtime.Environment, reachable map[runtime.Value]bool, envs map[*runtime.Environment]bool) {
	for ; env != nil; env = env.Parent() {
		if envs[env] {
			return
		}
		envs[env] = true
		for _, v := range env.Snapshot() {
			markValue(v, reachable, envs)
		}
	}
}

func markValue(v runtime.Value, reachable map[runtime.Value]bool, envs map[*runtime.Environment]bool) {
	switch val := v.(type) {
	case *runtime.ListValue, *runtime.DictValue, *runtime.StructValue:
		if reachable[v] {
			return
		}
		reachable[v] = true
		for _, child := range runtime.Children(v) {
			markValue(child, reachable, envs)
		}
	case *runtime.FunctionValue:
		if reachable[v] {
			return
		}
		reachable[v] = true
		// Values captured by the closure stay live.
		markEnvironment(val.Closure, reachable, envs)
	default:
		// Leaf kinds have no children and are never tracked.
	}
}

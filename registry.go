package agentops

import (
	"sort"
	"sync"
)

// Binding couples a [WrapConfig] with the ability to swap a target for its
// wrapped version and to restore the original exactly. Bindings are built
// with [BindFunc], [BindRecv], [BindChan], and [BindScoped].
type Binding interface {
	// Config returns the descriptor this binding was built from.
	Config() WrapConfig

	// install swaps the target and returns the restore function.
	install() (restore func())
}

type binding struct {
	cfg  WrapConfig
	swap func() func()
}

func (b *binding) Config() WrapConfig { return b.cfg }

func (b *binding) install() func() { return b.swap() }

// BindFunc builds a binding that swaps the function variable at target for
// its [WrapFunc]-wrapped version.
//
// Panics if target or *target is nil.
func BindFunc[Req, Res any](cfg WrapConfig, target *Func[Req, Res], extract Extractor[Req, Res]) Binding {
	if target == nil || *target == nil {
		panic("agentops: binding target must not be nil")
	}

	return &binding{cfg: cfg, swap: func() func() {
		orig := *target
		*target = WrapFunc(cfg, extract, orig)

		return func() { *target = orig }
	}}
}

// BindRecv builds a binding for a stream-returning target, wrapped with
// [WrapRecv].
//
// Panics if target or *target is nil.
func BindRecv[Req, T any](
	cfg WrapConfig,
	target *StreamFunc[Req, T],
	extract RequestExtractor[Req],
	newAgg func() Aggregator[T],
) Binding {
	if target == nil || *target == nil {
		panic("agentops: binding target must not be nil")
	}
	cfg.Streaming = true

	return &binding{cfg: cfg, swap: func() func() {
		orig := *target
		*target = WrapRecv(cfg, extract, newAgg, orig)

		return func() { *target = orig }
	}}
}

// BindChan builds a binding for a channel-returning target, wrapped with
// [WrapChan].
//
// Panics if target or *target is nil.
func BindChan[Req, T any](
	cfg WrapConfig,
	target *ChanFunc[Req, T],
	extract RequestExtractor[Req],
	newAgg func() Aggregator[T],
) Binding {
	if target == nil || *target == nil {
		panic("agentops: binding target must not be nil")
	}
	cfg.Streaming = true
	cfg.Async = true

	return &binding{cfg: cfg, swap: func() func() {
		orig := *target
		*target = WrapChan(cfg, extract, newAgg, orig)

		return func() { *target = orig }
	}}
}

// BindScoped builds a binding for a resource-acquiring target, wrapped
// with [WrapScoped].
//
// Panics if target or *target is nil.
func BindScoped[Req, Res any](cfg WrapConfig, target *ScopedFunc[Req, Res], extract Extractor[Req, Res]) Binding {
	if target == nil || *target == nil {
		panic("agentops: binding target must not be nil")
	}

	return &binding{cfg: cfg, swap: func() func() {
		orig := *target
		*target = WrapScoped(cfg, extract, orig)

		return func() { *target = orig }
	}}
}

// Registry is the single source of truth for what is instrumented. Install
// swaps each binding's target for the wrapped version and records the
// restore; Uninstall reverses it. Both are idempotent by target path:
// installing an already-installed target is a no-op, as is uninstalling a
// never-installed one.
type Registry struct {
	mu        sync.Mutex
	installed map[string]func()
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{installed: make(map[string]func())}
}

// Install applies each binding whose target path is not yet installed.
func (r *Registry) Install(bindings ...Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range bindings {
		target := b.Config().Target
		if _, ok := r.installed[target]; ok {
			continue
		}
		r.installed[target] = b.install()
	}
}

// Uninstall restores the original target for each binding that is
// currently installed. Unknown targets are silently ignored.
func (r *Registry) Uninstall(bindings ...Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range bindings {
		target := b.Config().Target
		restore, ok := r.installed[target]
		if !ok {
			continue
		}
		restore()
		delete(r.installed, target)
	}
}

// UninstallAll restores every installed target.
func (r *Registry) UninstallAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for target, restore := range r.installed {
		restore()
		delete(r.installed, target)
	}
}

// Installed returns the sorted target paths currently installed.
func (r *Registry) Installed() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	targets := make([]string, 0, len(r.installed))
	for target := range r.installed {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	return targets
}

// Package plugin implements the priority-ordered hook interception engine
// that makes admin views extensible.
//
// A view (the host) exposes named hooks on its methods. Plugins attached to
// the view may intercept each hook in one of three calling conventions,
// chosen explicitly when the implementation is registered: Observe (run a
// side effect around an empty inner result), Wrap (receive the rest of the
// chain as an uninvoked continuation and decide whether to run it), or
// Filter (receive the already-computed inner result and transform it).
//
// Plugins are registered by name via RegisterFactory and bound to a host
// per request. Built-in plugins live in the internal/plugins/* packages and
// are registered by importing them with a blank import
// (e.g. _ "github.com/expanel/expanel/internal/plugins/auditor").
package plugin

import "net/http"

// DefaultPriority is used when an implementation does not override its
// priority. Lower values run earlier in the chain, closest to the caller.
const DefaultPriority = 10

// Continuation is the deferred remainder of a hook chain. Invoking it runs
// every stage inward of the current one, ending at the base method. A
// well-behaved Wrap implementation calls it exactly once or not at all;
// calling it twice is not guarded against, only discouraged.
type Continuation func() (any, error)

// Mode selects the calling convention of a hook implementation.
type Mode int

// Mode constants define the supported calling conventions.
const (
	// ModeObserve implementations take no result. The engine evaluates the
	// inner chain first and requires it to yield nothing; the observer's own
	// return value becomes the chain result.
	ModeObserve Mode = iota
	// ModeWrap implementations receive the uninvoked inner continuation and
	// fully control whether and when the rest of the chain runs.
	ModeWrap
	// ModeFilter implementations receive the computed inner result and
	// return a possibly transformed value.
	ModeFilter
)

func (m Mode) String() string {
	switch m {
	case ModeObserve:
		return "observe"
	case ModeWrap:
		return "wrap"
	case ModeFilter:
		return "filter"
	default:
		return "unknown"
	}
}

// ObserveFunc is a ModeObserve implementation. args are the call arguments
// captured at hook invocation time.
type ObserveFunc func(args ...any) (any, error)

// WrapFunc is a ModeWrap implementation. next is the rest of the chain.
type WrapFunc func(next Continuation, args ...any) (any, error)

// FilterFunc is a ModeFilter implementation. result is the value computed by
// the rest of the chain.
type FilterFunc func(result any, args ...any) (any, error)

// Impl is one plugin's implementation of one hook: a calling convention, a
// priority, and the function itself. Construct it with Observe, Wrap, or
// Filter; the zero value is invalid and is ignored by the chain.
type Impl struct {
	mode     Mode
	priority int
	observe  ObserveFunc
	wrap     WrapFunc
	filter   FilterFunc
}

// Observe builds a ModeObserve implementation at the default priority.
func Observe(fn ObserveFunc) Impl {
	return Impl{mode: ModeObserve, priority: DefaultPriority, observe: fn}
}

// Wrap builds a ModeWrap implementation at the default priority.
func Wrap(fn WrapFunc) Impl {
	return Impl{mode: ModeWrap, priority: DefaultPriority, wrap: fn}
}

// Filter builds a ModeFilter implementation at the default priority.
func Filter(fn FilterFunc) Impl {
	return Impl{mode: ModeFilter, priority: DefaultPriority, filter: fn}
}

// WithPriority returns a copy of the implementation with the given priority.
// Lower values run earlier.
func (im Impl) WithPriority(p int) Impl {
	im.priority = p
	return im
}

// Mode returns the implementation's calling convention.
func (im Impl) Mode() Mode { return im.mode }

// Priority returns the implementation's chain priority.
func (im Impl) Priority() int { return im.priority }

func (im Impl) valid() bool {
	switch im.mode {
	case ModeObserve:
		return im.observe != nil
	case ModeWrap:
		return im.wrap != nil
	case ModeFilter:
		return im.filter != nil
	default:
		return false
	}
}

// Plugin is the interface all plugins must implement. A plugin instance is
// bound to exactly one host for the lifetime of one request.
type Plugin interface {
	Name() string

	// InitRequest is called once, right after construction, with the same
	// arguments the host received. Returning false excludes the plugin from
	// the host's active set for the rest of the request. An error aborts
	// host construction.
	InitRequest(args ...any) (bool, error)

	// Hooks declares the hook implementations this plugin provides, keyed
	// by hook name. Hooks absent from the map are simply not intercepted.
	Hooks() map[string]Impl
}

// Configurable is implemented by plugins that accept options from the site
// configuration. Configure runs once, before InitRequest.
type Configurable interface {
	Configure(config map[string]any) error
}

// Base provides the default plugin lifecycle: always opt in, no hooks.
// Embed it so plugins only declare what they override.
type Base struct{}

// InitRequest opts the plugin in unconditionally.
func (Base) InitRequest(_ ...any) (bool, error) { return true, nil }

// Hooks declares no hook implementations.
func (Base) Hooks() map[string]Impl { return nil }

// Principal is the authenticated user a host acts on behalf of.
type Principal interface {
	Name() string
	IsSuperuser() bool
	HasPerm(perm string) bool
}

// Host is the minimal surface a plugin sees of its owning view. Concrete
// plugins that need a richer API assert the view type they support.
type Host interface {
	Request() *http.Request
	User() Principal
	RouteArgs() []string
	RouteVars() map[string]string
}

// Factory creates a plugin bound to a host.
type Factory func(host Host) Plugin

package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/expanel/expanel/internal/metrics"
)

// Set is the active plugin list of one host: every configured plugin whose
// InitRequest opted in, in attachment order. A Set is computed once, before
// any hook runs, and is immutable afterwards. A nil *Set behaves like an
// empty one.
type Set struct {
	host   Host
	active []Plugin
}

// NewSet instantiates each factory bound to host, runs its opt-in check
// with the host's construction arguments, and collects the plugins that did
// not return false. Any error from construction or the opt-in check aborts
// the whole set; there are no partial plugin sets.
func NewSet(host Host, factories []Factory, args ...any) (*Set, error) {
	s := &Set{host: host}
	for _, f := range factories {
		p := f(host)
		ok, err := p.InitRequest(args...)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: init request: %w", p.Name(), err)
		}
		if !ok {
			slog.Debug("plugin opted out", "plugin", p.Name())
			continue
		}
		s.active = append(s.active, p)
	}
	return s, nil
}

// Active returns a copy of the active plugin list.
func (s *Set) Active() []Plugin {
	if s == nil {
		return nil
	}
	out := make([]Plugin, len(s.active))
	copy(out, s.active)
	return out
}

// Len returns the number of active plugins.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.active)
}

// stagesFor collects the active implementations of the named hook in
// attachment order, then sorts them by priority (stable, outermost first).
func (s *Set) stagesFor(hook string) []stage {
	if s == nil {
		return nil
	}
	var stages []stage
	for _, p := range s.active {
		impl, ok := p.Hooks()[hook]
		if !ok || !impl.valid() {
			continue
		}
		stages = append(stages, stage{plugin: p.Name(), hook: hook, impl: impl})
	}
	sortStages(stages)
	return stages
}

// Apply runs the named hook chain around base. With no matching
// implementations it calls base directly; otherwise the matched stages wrap
// base in priority order and the outermost continuation is invoked.
// Errors from any stage propagate unmodified.
func (s *Set) Apply(hook string, base Continuation, args ...any) (any, error) {
	stages := s.stagesFor(hook)
	if len(stages) == 0 {
		return base()
	}

	start := time.Now()
	out, err := buildChain(stages, base, args)()
	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, ErrIncorrectPluginArg) {
			metrics.HookContractViolations.WithLabelValues(hook).Inc()
		}
	}
	metrics.HookInvocations.WithLabelValues(hook, status).Inc()
	metrics.HookDuration.WithLabelValues(hook).Observe(time.Since(start).Seconds())
	return out, err
}

// Through runs the named hook chain and asserts the result type. A nil
// chain result yields the zero value of T.
func Through[T any](s *Set, hook string, base func() (T, error), args ...any) (T, error) {
	var zero T
	out, err := s.Apply(hook, func() (any, error) {
		v, err := base()
		if err != nil {
			return nil, err
		}
		// A typed nil (nil map, nil slice) means "no value"; unbox it so
		// observers downstream see an empty result.
		if isNil(v) {
			return nil, nil
		}
		return v, nil
	}, args...)
	if err != nil {
		return zero, err
	}
	if isNil(out) {
		return zero, nil
	}
	v, ok := out.(T)
	if !ok {
		return zero, fmt.Errorf("hook %s: chain returned %T, want %T", hook, out, zero)
	}
	return v, nil
}

package plugin

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
)

// ErrIncorrectPluginArg reports an observe-mode implementation whose inner
// chain produced a value. Observers cannot receive results; such hooks must
// be registered with Filter instead.
var ErrIncorrectPluginArg = errors.New("plugin hook needs an argument to receive the inner result")

// stage is one matched implementation in a hook chain.
type stage struct {
	plugin string
	hook   string
	impl   Impl
}

// run executes this stage against the rest of the chain.
func (s stage) run(next Continuation, args []any) (any, error) {
	switch s.impl.mode {
	case ModeWrap:
		return s.impl.wrap(next, args...)
	case ModeFilter:
		result, err := next()
		if err != nil {
			return nil, err
		}
		return s.impl.filter(result, args...)
	default: // ModeObserve
		result, err := next()
		if err != nil {
			return nil, err
		}
		if !isNil(result) {
			return nil, fmt.Errorf("plugin %s: hook %s: %w", s.plugin, s.hook, ErrIncorrectPluginArg)
		}
		return s.impl.observe(args...)
	}
}

// isNil reports whether v is nil, including a typed nil boxed in an
// interface (a nil map or pointer handed back through a Continuation).
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map,
		reflect.Pointer, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

// buildChain folds the stages around the base continuation, innermost
// (lowest priority position in the sorted slice is the outermost stage, so
// the fold walks the slice backwards) to outermost. Nothing executes until
// the returned continuation is invoked.
func buildChain(stages []stage, base Continuation, args []any) Continuation {
	next := base
	for i := len(stages) - 1; i >= 0; i-- {
		st, inner := stages[i], next
		next = func() (any, error) { return st.run(inner, args) }
	}
	return next
}

// sortStages orders stages by priority, outermost (lowest value) first.
// The sort is stable so equal priorities keep their attachment order.
func sortStages(stages []stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].impl.priority < stages[j].impl.priority
	})
}

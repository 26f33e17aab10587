// Package guard provides a plugin that blocks record access on model views
// when the acting user lacks the view permission. Register it with a blank
// import:
//
//	_ "github.com/expanel/expanel/internal/plugins/guard"
package guard

import (
	"github.com/expanel/expanel/plugin"
)

func init() {
	plugin.RegisterFactory("guard", func(host plugin.Host) plugin.Plugin {
		return &Guard{host: host}
	})
}

// viewPermissionHolder is the slice of the model view API the guard needs.
type viewPermissionHolder interface {
	HasViewPermission() bool
}

// Guard wraps the get_object hook and skips the rest of the chain, yielding
// no record, when the permission check fails.
type Guard struct {
	plugin.Base
	host plugin.Host
}

// Name returns the plugin identifier.
func (g *Guard) Name() string { return "guard" }

// InitRequest opts in only on hosts that expose a view permission check.
func (g *Guard) InitRequest(_ ...any) (bool, error) {
	_, ok := g.host.(viewPermissionHolder)
	return ok, nil
}

// Hooks declares the get_object wrap stage. Priority 1 keeps it outermost
// so no inner stage runs for a denied user.
func (g *Guard) Hooks() map[string]plugin.Impl {
	return map[string]plugin.Impl{
		"get_object": plugin.Wrap(g.wrap).WithPriority(1),
	}
}

func (g *Guard) wrap(next plugin.Continuation, _ ...any) (any, error) {
	if v, ok := g.host.(viewPermissionHolder); ok && !v.HasViewPermission() {
		return nil, nil
	}
	return next()
}

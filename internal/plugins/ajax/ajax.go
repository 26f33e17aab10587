// Package ajax provides a plugin that adapts page contexts for XHR
// delivery. It loads itself only for requests marked as AJAX, either by the
// X-Requested-With header or an _ajax query parameter. Register it with a
// blank import:
//
//	_ "github.com/expanel/expanel/internal/plugins/ajax"
package ajax

import (
	"github.com/expanel/expanel/plugin"
)

func init() {
	plugin.RegisterFactory("ajax", func(host plugin.Host) plugin.Plugin {
		return &Ajax{host: host}
	})
}

// Ajax marks contexts for JSON delivery and strips entries that cannot be
// serialized.
type Ajax struct {
	plugin.Base
	host plugin.Host
}

// Name returns the plugin identifier.
func (a *Ajax) Name() string { return "ajax" }

// InitRequest opts in only for XHR requests.
func (a *Ajax) InitRequest(_ ...any) (bool, error) {
	r := a.host.Request()
	if r == nil {
		return false, nil
	}
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true, nil
	}
	return r.URL.Query().Get("_ajax") != "", nil
}

// Hooks declares the context filter. Priority 1 keeps it outermost so it
// transforms the final context, after every other plugin ran.
func (a *Ajax) Hooks() map[string]plugin.Impl {
	return map[string]plugin.Impl{
		"get_context": plugin.Filter(a.filterContext).WithPriority(1),
	}
}

func (a *Ajax) filterContext(result any, _ ...any) (any, error) {
	ctx, ok := result.(map[string]any)
	if !ok {
		return result, nil
	}
	// The view reference has no JSON form.
	delete(ctx, "admin_view")
	ctx["ajax"] = true
	return ctx, nil
}

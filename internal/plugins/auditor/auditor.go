// Package auditor provides a plugin that writes an audit log entry for
// every user-facing message a view emits. Register it with a blank import:
//
//	_ "github.com/expanel/expanel/internal/plugins/auditor"
package auditor

import (
	"github.com/expanel/expanel/internal/logging"
	"github.com/expanel/expanel/plugin"
)

func init() {
	plugin.RegisterFactory("auditor", func(host plugin.Host) plugin.Plugin {
		return &Auditor{host: host}
	})
}

// Auditor observes the message_user hook. The hook's base computation
// yields nothing, which is what makes an observe-mode attachment valid.
type Auditor struct {
	plugin.Base
	host   plugin.Host
	levels map[string]bool
}

// Name returns the plugin identifier.
func (a *Auditor) Name() string { return "auditor" }

// Configure reads the optional "levels" list; when present only those
// message levels are audited.
func (a *Auditor) Configure(config map[string]any) error {
	levels, ok := config["levels"]
	if !ok {
		return nil
	}
	a.levels = map[string]bool{}
	switch list := levels.(type) {
	case []any:
		for _, l := range list {
			if s, ok := l.(string); ok {
				a.levels[s] = true
			}
		}
	case []string:
		for _, s := range list {
			a.levels[s] = true
		}
	}
	return nil
}

// Hooks declares the message_user observer.
func (a *Auditor) Hooks() map[string]plugin.Impl {
	return map[string]plugin.Impl{
		"message_user": plugin.Observe(a.observe),
	}
}

func (a *Auditor) observe(args ...any) (any, error) {
	message, level := "", "info"
	if len(args) > 0 {
		message, _ = args[0].(string)
	}
	if len(args) > 1 {
		if s, ok := args[1].(string); ok {
			level = s
		}
	}
	if a.levels != nil && !a.levels[level] {
		return nil, nil
	}

	log := logging.Logger
	user := "anonymous"
	if a.host.User() != nil {
		user = a.host.User().Name()
	}
	if r := a.host.Request(); r != nil {
		log = logging.FromContext(r.Context())
	}
	log.Info("audit: user message", "user", user, "level", level, "message", message)
	return nil, nil
}

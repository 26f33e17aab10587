package views

import (
	"context"

	"github.com/expanel/expanel/plugin"
)

type principalKey struct{}

// WithPrincipal stores the acting principal in the context. Authentication
// middleware is expected to call this; the core never authenticates.
func WithPrincipal(ctx context.Context, p plugin.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in the context, or Anonymous.
func PrincipalFrom(ctx context.Context) plugin.Principal {
	if p, ok := ctx.Value(principalKey{}).(plugin.Principal); ok {
		return p
	}
	return Anonymous
}

// StaticPrincipal is a fixed-permission principal.
type StaticPrincipal struct {
	UserName string
	Super    bool
	Perms    []string
}

// Anonymous is the principal used when no authentication middleware ran.
var Anonymous = &StaticPrincipal{UserName: "anonymous"}

// Name returns the user name.
func (p *StaticPrincipal) Name() string { return p.UserName }

// IsSuperuser reports whether the principal bypasses permission checks.
func (p *StaticPrincipal) IsSuperuser() bool { return p.Super }

// HasPerm reports whether the principal holds the permission label.
// Superusers hold every permission.
func (p *StaticPrincipal) HasPerm(perm string) bool {
	if p.Super {
		return true
	}
	for _, have := range p.Perms {
		if have == perm {
			return true
		}
	}
	return false
}

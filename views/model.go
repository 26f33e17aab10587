package views

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/expanel/expanel"
	"github.com/expanel/expanel/internal/store"
	"github.com/expanel/expanel/plugin"
)

// ModelView extends CommView with a bound model panel and its records.
type ModelView struct {
	CommView

	panel   *expanel.Panel
	records store.Records
}

// NewModel constructs a ModelView bound to panel, backed by records, and
// runs the plugin lifecycle pass.
func NewModel(site *expanel.Site, r *http.Request, panel *expanel.Panel, records store.Records, opts ...Option) (*ModelView, error) {
	if panel == nil {
		return nil, fmt.Errorf("model view requires a panel")
	}
	v := &ModelView{panel: panel, records: records}
	v.init(site, r, opts)
	if err := v.bindPlugins(v); err != nil {
		return nil, err
	}
	return v, nil
}

// Panel returns the bound panel descriptor.
func (v *ModelView) Panel() *expanel.Panel { return v.panel }

// Model returns the bound model.
func (v *ModelView) Model() expanel.Model { return v.panel.Model }

// Records returns the model's data access surface.
func (v *ModelView) Records() store.Records { return v.records }

// Object is the get_object hook: the record with the given primary key, or
// nil when it does not exist.
func (v *ModelView) Object(ctx context.Context, pk string) (store.Record, error) {
	return plugin.Through(v.plugins, "get_object", func() (store.Record, error) {
		rec, err := v.records.Get(ctx, pk)
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return rec, err
	}, pk)
}

// HasViewPermission reports the view permission on the bound model;
// "change" implies it.
func (v *ModelView) HasViewPermission() bool {
	return expanel.HasModelPerm(v.user, v.panel.Model, "view")
}

// HasAddPermission reports the add permission on the bound model.
func (v *ModelView) HasAddPermission() bool {
	return expanel.HasModelPerm(v.user, v.panel.Model, "add")
}

// HasChangePermission reports the change permission on the bound model.
func (v *ModelView) HasChangePermission() bool {
	return expanel.HasModelPerm(v.user, v.panel.Model, "change")
}

// HasDeletePermission reports the delete permission on the bound model.
func (v *ModelView) HasDeletePermission() bool {
	return expanel.HasModelPerm(v.user, v.panel.Model, "delete")
}

// ModelPerms returns the acting user's permissions on the bound model.
func (v *ModelView) ModelPerms() map[string]bool {
	return map[string]bool{
		"view":   v.HasViewPermission(),
		"add":    v.HasAddPermission(),
		"change": v.HasChangePermission(),
		"delete": v.HasDeletePermission(),
	}
}

// TemplateList returns the template candidate paths for a page of the bound
// model, most specific first.
func (v *ModelView) TemplateList(name string) []string {
	m := v.panel.Model
	return []string{
		fmt.Sprintf("admin/%s/%s/%s", m.App, m.Name, name),
		fmt.Sprintf("admin/%s/%s", m.App, name),
		"admin/" + name,
	}
}

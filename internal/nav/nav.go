// Package nav models the admin navigation menu: a tree of items built from
// the site registry, filtered per user permission and marked against the
// current request path.
package nav

import (
	"sort"
	"strings"

	"github.com/expanel/expanel/plugin"
)

// Item is one navigation menu entry. Perm is empty (always visible),
// "super" (superusers only), or a permission label checked against the user.
type Item struct {
	Title    string  `json:"title"`
	URL      string  `json:"url,omitempty"`
	Icon     string  `json:"icon,omitempty"`
	Perm     string  `json:"perm,omitempty"`
	Selected bool    `json:"selected,omitempty"`
	Menus    []*Item `json:"menus,omitempty"`
}

// Clone deep-copies a menu tree so cached or shared trees are never mutated
// by per-request filtering and selection marking.
func Clone(items []*Item) []*Item {
	if items == nil {
		return nil
	}
	out := make([]*Item, 0, len(items))
	for _, it := range items {
		cp := *it
		cp.Menus = Clone(it.Menus)
		out = append(out, &cp)
	}
	return out
}

// URLs collects every URL present in the menu tree.
func URLs(items []*Item) map[string]bool {
	seen := map[string]bool{}
	var walk func([]*Item)
	walk = func(items []*Item) {
		for _, it := range items {
			if it.URL != "" {
				seen[it.URL] = true
			}
			walk(it.Menus)
		}
	}
	walk(items)
	return seen
}

// visible reports whether the user may see an item.
func visible(it *Item, user plugin.Principal) bool {
	switch it.Perm {
	case "":
		return true
	case "super":
		return user != nil && user.IsSuperuser()
	default:
		return user != nil && user.HasPerm(it.Perm)
	}
}

// FilterByPerm removes items the user may not see. Group items (those with
// submenus) are dropped when every child was filtered out.
func FilterByPerm(items []*Item, user plugin.Principal) []*Item {
	var out []*Item
	for _, it := range items {
		if !visible(it, user) {
			continue
		}
		if it.Menus != nil {
			it.Menus = FilterByPerm(it.Menus, user)
			if len(it.Menus) == 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

// MarkSelected sets Selected on every item whose URL is a prefix of path,
// and on every ancestor of a selected item.
func MarkSelected(items []*Item, path string) {
	var walk func(it *Item) bool
	walk = func(it *Item) bool {
		selected := it.URL != "" && strings.HasPrefix(path, it.URL)
		for _, m := range it.Menus {
			if walk(m) {
				selected = true
			}
		}
		if selected {
			it.Selected = true
		}
		return selected
	}
	for _, it := range items {
		walk(it)
	}
}

// SortByTitle orders items and their submenus alphabetically.
func SortByTitle(items []*Item) {
	sort.SliceStable(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	for _, it := range items {
		SortByTitle(it.Menus)
	}
}

package views

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Date/time formats used for JSON responses.
const (
	dateFormat     = "2006-01-02"
	datetimeFormat = "2006-01-02 15:04:05"
)

// RenderJSON writes content as a JSON response. time.Time values inside
// maps and slices are formatted with the admin date/time conventions
// (midnight timestamps render as bare dates).
func RenderJSON(w http.ResponseWriter, content any) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(jsonReady(content))
}

func jsonReady(v any) any {
	switch t := v.(type) {
	case time.Time:
		if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
			return t.Format(dateFormat)
		}
		return t.Format(datetimeFormat)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = jsonReady(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = jsonReady(val)
		}
		return out
	default:
		return v
	}
}

// QueryString rebuilds the current query string with updates applied and
// keys matching the given prefixes removed. An empty update value deletes
// the key. The result starts with "?".
func (v *BaseView) QueryString(updates map[string]string, removePrefixes ...string) string {
	q := v.filteredQuery(updates, removePrefixes)
	return "?" + q.Encode()
}

// FormParams renders the current query parameters, with updates applied and
// prefixes removed, as hidden form inputs.
func (v *BaseView) FormParams(updates map[string]string, removePrefixes ...string) string {
	q := v.filteredQuery(updates, removePrefixes)

	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, val := range q[k] {
			if val == "" {
				continue
			}
			fmt.Fprintf(&b, `<input type="hidden" name="%s" value="%s"/>`,
				html.EscapeString(k), html.EscapeString(val))
		}
	}
	return b.String()
}

func (v *BaseView) filteredQuery(updates map[string]string, removePrefixes []string) url.Values {
	q := v.request.URL.Query()
	for _, prefix := range removePrefixes {
		for k := range q {
			if strings.HasPrefix(k, prefix) {
				delete(q, k)
			}
		}
	}
	for k, val := range updates {
		if val == "" {
			delete(q, k)
		} else {
			q[k] = []string{val}
		}
	}
	return q
}

package plugin

import (
	"sort"
	"testing"
)

func TestRegisterFactory(t *testing.T) {
	// Clean up after test.
	defer delete(factoryRegistry, "mock-plugin")

	RegisterFactory("mock-plugin", func(_ Host) Plugin {
		return &mockPlugin{name: "mock-plugin"}
	})

	f, ok := GetFactory("mock-plugin")
	if !ok {
		t.Fatal("expected factory to be registered")
	}

	p := f(mockHost{})
	if p.Name() != "mock-plugin" {
		t.Errorf("got name %q, want mock-plugin", p.Name())
	}
}

func TestGetFactory_NotFound(t *testing.T) {
	_, ok := GetFactory("nonexistent-plugin")
	if ok {
		t.Fatal("expected factory not to be found")
	}
}

func TestRegisteredPlugins(t *testing.T) {
	// Clean up after test.
	defer delete(factoryRegistry, "plugin-a")
	defer delete(factoryRegistry, "plugin-b")

	RegisterFactory("plugin-a", func(_ Host) Plugin { return &mockPlugin{name: "plugin-a"} })
	RegisterFactory("plugin-b", func(_ Host) Plugin { return &mockPlugin{name: "plugin-b"} })

	names := RegisteredPlugins()
	// Filter to only our test plugins since other tests/init may register plugins.
	var filtered []string
	for _, n := range names {
		if n == "plugin-a" || n == "plugin-b" {
			filtered = append(filtered, n)
		}
	}
	sort.Strings(filtered)

	if len(filtered) != 2 {
		t.Fatalf("expected 2 plugins, got %d: %v", len(filtered), filtered)
	}
	if filtered[0] != "plugin-a" || filtered[1] != "plugin-b" {
		t.Errorf("got %v, want [plugin-a plugin-b]", filtered)
	}
}

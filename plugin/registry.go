package plugin

// factoryRegistry is the global registry of plugin factories. It is written
// only from package init functions and read afterwards, so it needs no lock.
var factoryRegistry = map[string]Factory{}

// RegisterFactory registers a plugin factory by name.
func RegisterFactory(name string, factory Factory) {
	factoryRegistry[name] = factory
}

// GetFactory returns a plugin factory by name.
func GetFactory(name string) (Factory, bool) {
	f, ok := factoryRegistry[name]
	return f, ok
}

// RegisteredPlugins returns the names of all registered plugin factories.
func RegisteredPlugins() []string {
	names := make([]string, 0, len(factoryRegistry))
	for name := range factoryRegistry {
		names = append(names, name)
	}
	return names
}

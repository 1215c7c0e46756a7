package updatable

// defaultRegistry backs the package-level functions for programs that want a
// single process-wide registry.
var defaultRegistry = New()

// Default returns the process-wide registry used by the package-level
// functions.
func Default() *Registry {
	return defaultRegistry
}

// Register registers p with the default registry.
func Register(p Participant) Handle {
	return defaultRegistry.Register(p)
}

// Deregister removes h from the default registry.
func Deregister(h Handle) bool {
	return defaultRegistry.Deregister(h)
}

// Remove removes the first registration of p from the default registry.
func Remove(p Participant) bool {
	return defaultRegistry.Remove(p)
}

// UpdateAll dispatches delta to every participant of the default registry.
func UpdateAll(delta int64) {
	defaultRegistry.UpdateAll(delta)
}

// Tick dispatches the elapsed time to every participant of the default registry.
func Tick() (uint32, bool) {
	return defaultRegistry.Tick()
}

// SetDebugMode broadcasts mode to every participant of the default registry.
func SetDebugMode(mode bool) {
	defaultRegistry.SetDebugMode(mode)
}

package loader

import "go.uber.org/zap"

// Registry resolves a configured loader variant name to a Variant
// constructor. Selection is by server-descriptor configuration; an
// unknown name falls back to the Default variant without failing
// startup.
type Registry struct {
	logger *zap.Logger
}

// NewRegistry builds a Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logger}
}

// Resolve returns the Variant for name, falling back to Default (with a
// warning logged) when name is empty or unrecognized.
func (r *Registry) Resolve(name string, preloadURIs []string) Variant {
	switch name {
	case "", "default":
		return NewDefault(preloadURIs)
	case "csharp-roslyn":
		return NewRoslyn()
	default:
		if r.logger != nil {
			r.logger.Warn("unknown workspace loader variant, falling back to default",
				zap.String("requested", name))
		}
		return NewDefault(preloadURIs)
	}
}

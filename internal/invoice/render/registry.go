package render

import "strings"

// Registry resolves backends by name. Names listed as disabled are known
// but unavailable in this deployment.
type Registry struct {
	backends map[string]Backend
	disabled map[string]struct{}
}

func NewRegistry(backends ...Backend) *Registry {
	r := &Registry{
		backends: make(map[string]Backend, len(backends)),
		disabled: map[string]struct{}{},
	}
	for _, b := range backends {
		if b != nil {
			r.backends[b.Name()] = b
		}
	}
	return r
}

func (r *Registry) Disable(name string) {
	delete(r.backends, name)
	r.disabled[name] = struct{}{}
}

// Lookup returns the named backend; an empty name selects the canvas writer.
func (r *Registry) Lookup(name string) (Backend, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = BackendCanvas
	}
	if b, ok := r.backends[name]; ok {
		return b, nil
	}
	if _, ok := r.disabled[name]; ok {
		return nil, ErrBackendDisabled
	}
	return nil, ErrUnknownBackend
}

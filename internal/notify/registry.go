package notify

import "sync"

// Constructor builds a channel handler on first resolution.
type Constructor func() Handler

// Registry maps channel ids to lazily constructed handlers. A handler is
// built at most once per id, even under concurrent first access, and the
// same instance is reused for every subsequent dispatch over the registry's
// lifetime. New channels are added by registering a constructor, never by
// editing dispatch control flow.
type Registry struct {
	mu           sync.Mutex
	constructors map[string]Constructor
	descriptors  map[string]Descriptor
	handlers     map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{
		constructors: make(map[string]Constructor),
		descriptors:  make(map[string]Descriptor),
		handlers:     make(map[string]Handler),
	}
}

func (r *Registry) Register(desc Descriptor, build Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[desc.ID] = build
	r.descriptors[desc.ID] = desc
}

// Resolve returns the handler for id, constructing and caching it on first
// use. Unknown ids report false without error.
func (r *Registry) Resolve(id string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.handlers[id]; ok {
		return h, true
	}
	build, ok := r.constructors[id]
	if !ok {
		return nil, false
	}
	h := build()
	r.handlers[id] = h
	return h, true
}

// Descriptors lists registered channels in no particular order.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	return out
}

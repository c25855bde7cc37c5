package wire

import (
	"strings"
	"sync"
)

// Registry is a process-wide command-id to Spec mapping, populated during
// startup and read-only once Freeze is called. A dispatcher looks packets
// up both by id (to unpack an incoming frame) and by name (to route a
// decoded packet to a handler named after its class, case-insensitively).
type Registry struct {
	mu     sync.RWMutex
	byID   map[byte]*Spec
	byName map[string]*Spec
	frozen bool
}

// NewRegistry returns an empty, unfrozen Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[byte]*Spec),
		byName: make(map[string]*Spec),
	}
}

// Register validates spec and adds it to the registry. It fails with a
// SchemaError if the registry is already frozen, if spec does not start
// with a command field, or if spec.ID collides with an already-registered
// class.
func (r *Registry) Register(spec Spec) (*Spec, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return nil, newSchema(CodeSchemaDuplicateID, "registry is frozen, cannot register %q", spec.Name)
	}
	if err := validateSpec(spec); err != nil {
		return nil, err
	}
	if _, exists := r.byID[spec.ID]; exists {
		return nil, newSchema(CodeSchemaDuplicateID, "command id %d already registered", spec.ID)
	}

	sp := spec
	r.byID[sp.ID] = &sp
	r.byName[strings.ToLower(sp.Name)] = &sp
	return &sp, nil
}

// Freeze makes the registry immutable; subsequent Register calls fail.
// A server or client calls this once all its packet classes are declared,
// before accepting any connections.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// ByID looks up a Spec by its command id.
func (r *Registry) ByID(id byte) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.byID[id]
	return sp, ok
}

// ByName looks up a Spec by class name, case-insensitively.
func (r *Registry) ByName(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sp, ok := r.byName[strings.ToLower(name)]
	return sp, ok
}

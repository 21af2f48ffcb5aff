package composition

import (
	"sort"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
)

// Contribution is one subgraph's definition of a named type, already rewritten to composite names.
type Contribution struct {
	Subgraph   string
	LocalName  string
	Definition *ast.Definition
}

// TypeHandle is a registry entry. It starts as a stub and is completed by the merge and assembly phases.
type TypeHandle struct {
	Name string
	// Kind is the kind of the first declaration. It is empty while the name is only referenced.
	Kind ast.DefinitionKind
	Type TypeDefinition
	// Failed marks a name whose merge produced a conflict.
	Failed  bool
	BuiltIn bool

	kinds         []ast.DefinitionKind
	contributions []*Contribution
}

func (h *TypeHandle) KindMismatch() bool {
	return len(h.kinds) > 1
}

func (h *TypeHandle) Kinds() []ast.DefinitionKind {
	return h.kinds
}

func (h *TypeHandle) Contributions() []*Contribution {
	return h.contributions
}

func (h *TypeHandle) Declared() bool {
	return h.BuiltIn || len(h.contributions) != 0
}

// Registry is the set of stubs keyed by type name.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*TypeHandle
}

func newRegistry() *Registry {
	return &Registry{
		handles: make(map[string]*TypeHandle),
	}
}

// EnsureStub returns the stub for name, creating it when missing.
// A kind differing from an earlier declaration is recorded for the merge phase and does not fail here.
func (r *Registry) EnsureStub(name string, kind ast.DefinitionKind) *TypeHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.ensureStubLocked(name, kind)
}

func (r *Registry) ensureStubLocked(name string, kind ast.DefinitionKind) *TypeHandle {
	handle, ok := r.handles[name]
	if !ok {
		handle = &TypeHandle{Name: name}
		r.handles[name] = handle
	}
	if kind == "" {
		return handle
	}
	if handle.Kind == "" {
		handle.Kind = kind
	}
	found := false
	for _, k := range handle.kinds {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		handle.kinds = append(handle.kinds, kind)
	}
	return handle
}

func (r *Registry) addContribution(kind ast.DefinitionKind, contribution *Contribution) *TypeHandle {
	r.mu.Lock()
	defer r.mu.Unlock()

	handle := r.ensureStubLocked(contribution.Definition.Name, kind)
	handle.contributions = append(handle.contributions, contribution)
	return handle
}

// Resolve converts an AST type reference to a structural reference, creating stubs for forward references.
func (r *Registry) Resolve(typ *ast.Type) *TypeRef {
	if typ == nil {
		return nil
	}
	if typ.Elem != nil {
		return &TypeRef{
			Elem:    r.Resolve(typ.Elem),
			NonNull: typ.NonNull,
		}
	}
	return &TypeRef{
		Named:   r.EnsureStub(typ.NamedType, ""),
		NonNull: typ.NonNull,
	}
}

func (r *Registry) Lookup(name string) *TypeHandle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.handles[name]
}

// Names returns every registered name in ascending order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handles))
	for name := range r.handles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

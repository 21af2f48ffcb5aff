package composition

import (
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
)

// RootTypes holds the composite root operation type names.
type RootTypes struct {
	Query        string
	Mutation     string
	Subscription string
}

func defaultRootTypes() RootTypes {
	return RootTypes{
		Query:        "Query",
		Mutation:     "Mutation",
		Subscription: "Subscription",
	}
}

func (r RootTypes) forOperation(op ast.Operation) string {
	switch op {
	case ast.Query:
		return r.Query
	case ast.Mutation:
		return r.Mutation
	case ast.Subscription:
		return r.Subscription
	default:
		return ""
	}
}

func (r RootTypes) operationFor(typeName string) (ast.Operation, bool) {
	switch typeName {
	case r.Query:
		return ast.Query, true
	case r.Mutation:
		return ast.Mutation, true
	case r.Subscription:
		return ast.Subscription, true
	default:
		return "", false
	}
}

// DirectiveType is a merged directive definition.
type DirectiveType struct {
	Name        string
	Description string
	Arguments   []*Argument
	Locations   []ast.DirectiveLocation
	Repeatable  bool
	Sources     []string
}

// CompositionContext is the lookup table shared by every stage of one composition run.
// It is mutable while building and frozen afterwards.
type CompositionContext struct {
	settings  Settings
	subgraphs []*preparedSubgraph
	registry  *Registry
	rootTypes RootTypes

	mu         sync.Mutex
	conflicts  []*MergeConflict
	directives map[string]*DirectiveType
	nodes      []*NodeDirective
	frozen     bool
}

func newCompositionContext(settings Settings) *CompositionContext {
	return &CompositionContext{
		settings:   settings,
		registry:   newRegistry(),
		rootTypes:  defaultRootTypes(),
		directives: make(map[string]*DirectiveType),
	}
}

func (c *CompositionContext) mustBeMutable() {
	if c.frozen {
		panic("composition context is frozen")
	}
}

func (c *CompositionContext) freeze() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.frozen = true
}

func (c *CompositionContext) Settings() Settings {
	return c.settings
}

func (c *CompositionContext) Registry() *Registry {
	return c.registry
}

func (c *CompositionContext) RootTypes() RootTypes {
	return c.rootTypes
}

// Type returns the merged type for name. Failed and unknown names return nil.
func (c *CompositionContext) Type(name string) TypeDefinition {
	handle := c.registry.Lookup(name)
	if handle == nil || handle.Failed {
		return nil
	}
	return handle.Type
}

func (c *CompositionContext) complexType(name string) *ComplexType {
	switch t := c.Type(name).(type) {
	case *ObjectType:
		return &t.ComplexType
	case *InterfaceType:
		return &t.ComplexType
	default:
		return nil
	}
}

func (c *CompositionContext) Directive(name string) *DirectiveType {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.directives[name]
}

// Definitions returns the raw per-subgraph definitions contributed to name.
func (c *CompositionContext) Definitions(name string) []*Contribution {
	handle := c.registry.Lookup(name)
	if handle == nil {
		return nil
	}
	return handle.Contributions()
}

func (c *CompositionContext) subgraph(name string) *preparedSubgraph {
	for _, subgraph := range c.subgraphs {
		if subgraph.Name == name {
			return subgraph
		}
	}
	return nil
}

func (c *CompositionContext) addConflicts(conflicts ...*MergeConflict) {
	if len(conflicts) == 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mustBeMutable()
	c.conflicts = append(c.conflicts, conflicts...)
}

func (c *CompositionContext) Conflicts() []*MergeConflict {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := append([]*MergeConflict{}, c.conflicts...)
	sortConflicts(result)
	return result
}

func (c *CompositionContext) setDirective(directive *DirectiveType) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mustBeMutable()
	c.directives[directive.Name] = directive
}

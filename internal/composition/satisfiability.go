package composition

import (
	"context"

	"github.com/vvakame/fusion/internal/log"
)

type EntryKind string

const (
	// EntryRoot means the parent is a root operation type of the subgraph.
	EntryRoot EntryKind = "ROOT"
	// EntryLookup means the subgraph resolves the parent by key.
	EntryLookup EntryKind = "LOOKUP"
	// EntryParent means the subgraph reaches the parent only through a field returning it.
	EntryParent EntryKind = "PARENT"
)

type SatisfiabilityReport struct {
	Types []*TypeSatisfiability `json:"types" yaml:"types"`
}

type TypeSatisfiability struct {
	Name   string                 `json:"name" yaml:"name"`
	Fields []*FieldSatisfiability `json:"fields" yaml:"fields"`
}

type FieldSatisfiability struct {
	Name        string                `json:"name" yaml:"name"`
	Paths       []*SatisfiabilityPath `json:"paths,omitempty" yaml:"paths,omitempty"`
	Unreachable bool                  `json:"unreachable,omitempty" yaml:"unreachable,omitempty"`
}

type SatisfiabilityPath struct {
	Subgraph  string         `json:"subgraph" yaml:"subgraph"`
	Entry     EntryKind      `json:"entry" yaml:"entry"`
	Resolvers []ResolverKind `json:"resolvers,omitempty" yaml:"resolvers,omitempty"`
}

// computeSatisfiability reports, per output field, how a planner can enter each source subgraph.
func computeSatisfiability(ctx context.Context, cctx *CompositionContext) *SatisfiabilityReport {
	logger := log.ForPhase(ctx, "satisfiability")

	// subgraphs able to return each type from some field
	parents := make(map[string][]string)
	for _, name := range cctx.registry.Names() {
		t := cctx.complexType(name)
		if t == nil {
			continue
		}
		for _, field := range t.Fields {
			target := field.Type.NamedType()
			for _, source := range field.Sources {
				parents[target] = appendUnique(parents[target], source.Subgraph)
			}
			if union, ok := cctx.Type(target).(*UnionType); ok {
				for _, member := range union.Members {
					for _, source := range field.Sources {
						parents[member.Name] = appendUnique(parents[member.Name], source.Subgraph)
					}
				}
			}
		}
	}

	// object types implementing each interface, in name order
	implementations := make(map[string][]*ComplexType)
	for _, name := range cctx.registry.Names() {
		obj, ok := cctx.Type(name).(*ObjectType)
		if !ok {
			continue
		}
		for _, iface := range obj.Interfaces {
			implementations[iface] = append(implementations[iface], &obj.ComplexType)
		}
	}

	report := &SatisfiabilityReport{}
	unreachable := 0
	for _, name := range cctx.registry.Names() {
		t := cctx.complexType(name)
		if t == nil {
			continue
		}
		_, isRoot := cctx.rootTypes.operationFor(name)

		typeReport := &TypeSatisfiability{Name: name}
		for _, field := range t.Fields {
			if len(field.Sources) == 0 {
				// synthesized fields such as node are resolved through @node
				continue
			}
			fieldReport := &FieldSatisfiability{Name: field.Name}
			for _, source := range field.Sources {
				path := &SatisfiabilityPath{Subgraph: source.Subgraph}
				// an interface is entered through the lookups of its implementations
				kinds := lookupKinds(t.Lookups, source.Subgraph, nil)
				if _, ok := cctx.Type(name).(*InterfaceType); ok {
					for _, impl := range implementations[name] {
						kinds = lookupKinds(impl.Lookups, source.Subgraph, kinds)
					}
				}
				switch {
				case isRoot:
					path.Entry = EntryRoot
				case len(kinds) != 0:
					path.Entry = EntryLookup
					path.Resolvers = kinds
				case containsString(parents[name], source.Subgraph) || inheritedParent(t, parents, source.Subgraph):
					path.Entry = EntryParent
				default:
					continue
				}
				fieldReport.Paths = append(fieldReport.Paths, path)
			}
			if len(fieldReport.Paths) == 0 {
				fieldReport.Unreachable = true
				unreachable++
			}
			typeReport.Fields = append(typeReport.Fields, fieldReport)
		}
		report.Types = append(report.Types, typeReport)
	}

	logger.V(1).Info("computed satisfiability", "types", len(report.Types), "unreachable", unreachable)
	return report
}

// lookupKinds appends the resolver kinds of the lookups in subgraph missing from kinds.
func lookupKinds(lookups []*Lookup, subgraph string, kinds []ResolverKind) []ResolverKind {
	for _, lookup := range lookups {
		if lookup.Subgraph != subgraph {
			continue
		}
		found := false
		for _, kind := range kinds {
			if kind == lookup.Kind {
				found = true
			}
		}
		if !found {
			kinds = append(kinds, lookup.Kind)
		}
	}
	return kinds
}

// inheritedParent reports whether a field returning one of the implemented interfaces is sourced in subgraph.
func inheritedParent(t *ComplexType, parents map[string][]string, subgraph string) bool {
	for _, iface := range t.Interfaces {
		if containsString(parents[iface], subgraph) {
			return true
		}
	}
	return false
}

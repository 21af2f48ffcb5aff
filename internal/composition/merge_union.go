package composition

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"
)

// unionMergeHandler unions member sets. Membership may be split across subgraphs.
type unionMergeHandler struct{}

func (h *unionMergeHandler) Kind() ast.DefinitionKind {
	return ast.Union
}

func (h *unionMergeHandler) Merge(ctx context.Context, cctx *CompositionContext, name string, contributions []*Contribution) (TypeDefinition, []*MergeConflict, error) {
	union := &UnionType{
		typeBase: typeBaseFrom(name, contributions),
	}
	members := make(map[string]*UnionMember)
	for _, c := range contributions {
		for _, memberName := range c.Definition.Types {
			member, ok := members[memberName]
			if !ok {
				member = &UnionMember{Name: memberName}
				members[memberName] = member
				union.Members = append(union.Members, member)
			}
			member.Sources = appendUnique(member.Sources, c.Subgraph)
		}
	}
	return union, nil, nil
}

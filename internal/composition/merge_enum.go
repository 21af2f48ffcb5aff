package composition

import (
	"context"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// enumMergeHandler requires every subgraph to declare the same value set.
type enumMergeHandler struct{}

func (h *enumMergeHandler) Kind() ast.DefinitionKind {
	return ast.Enum
}

func (h *enumMergeHandler) Merge(ctx context.Context, cctx *CompositionContext, name string, contributions []*Contribution) (TypeDefinition, []*MergeConflict, error) {
	valueSet := func(def *ast.Definition) string {
		names := make([]string, 0, len(def.EnumValues))
		for _, value := range def.EnumValues {
			names = append(names, value.Name)
		}
		sort.Strings(names)
		return strings.Join(names, ", ")
	}

	reference := valueSet(contributions[0].Definition)
	for _, c := range contributions[1:] {
		if set := valueSet(c.Definition); set != reference {
			return nil, []*MergeConflict{
				newMergeConflict(
					CodeEnumValueMismatch,
					name,
					subgraphsOf(contributions),
					"enum %s has values [%s] in subgraph %s but [%s] in subgraph %s",
					name, reference, contributions[0].Subgraph, set, c.Subgraph,
				),
			}, nil
		}
	}

	enum := &EnumType{
		typeBase: typeBaseFrom(name, contributions),
	}
	for _, value := range contributions[0].Definition.EnumValues {
		merged := &EnumValue{
			Name: value.Name,
		}
		for _, c := range contributions {
			v := c.Definition.EnumValues.ForName(value.Name)
			merged.Description = firstDescription(merged.Description, v.Description)
			merged.Deprecation = firstDeprecation(merged.Deprecation, ExtractDeprecation(v.Directives))
			merged.Sources = appendUnique(merged.Sources, c.Subgraph)
		}
		enum.Values = append(enum.Values, merged)
	}

	return enum, nil, nil
}

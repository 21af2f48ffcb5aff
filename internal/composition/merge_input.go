package composition

import (
	"context"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

// inputObjectMergeHandler requires identical field sets and base types.
// Nullability resolves to the least restrictive declaration.
type inputObjectMergeHandler struct{}

func (h *inputObjectMergeHandler) Kind() ast.DefinitionKind {
	return ast.InputObject
}

func (h *inputObjectMergeHandler) Merge(ctx context.Context, cctx *CompositionContext, name string, contributions []*Contribution) (TypeDefinition, []*MergeConflict, error) {
	fieldSet := func(def *ast.Definition) string {
		names := make([]string, 0, len(def.Fields))
		for _, field := range def.Fields {
			names = append(names, field.Name)
		}
		sort.Strings(names)
		return strings.Join(names, ", ")
	}

	reference := fieldSet(contributions[0].Definition)
	for _, c := range contributions[1:] {
		if set := fieldSet(c.Definition); set != reference {
			return nil, []*MergeConflict{
				newMergeConflict(
					CodeInputFieldSetMismatch,
					name,
					subgraphsOf(contributions),
					"input %s has fields [%s] in subgraph %s but [%s] in subgraph %s",
					name, reference, contributions[0].Subgraph, set, c.Subgraph,
				),
			}, nil
		}
	}

	var conflicts []*MergeConflict
	input := &InputObjectType{
		typeBase: typeBaseFrom(name, contributions),
	}
	for _, field := range contributions[0].Definition.Fields {
		merged := &InputField{
			Name:     field.Name,
			typeNode: copyType(field.Type),
		}
		mismatch := false
		for _, c := range contributions {
			f := c.Definition.Fields.ForName(field.Name)
			if !sameBaseType(merged.typeNode, f.Type) {
				mismatch = true
				conflicts = append(conflicts, newMergeConflict(
					CodeInputFieldTypeMismatch,
					name,
					[]string{contributions[0].Subgraph, c.Subgraph},
					"input field %s.%s has type %s in subgraph %s but %s in subgraph %s",
					name, field.Name, field.Type.String(), contributions[0].Subgraph, f.Type.String(), c.Subgraph,
				))
				break
			}
			merged.typeNode = leastRestrictiveType(merged.typeNode, f.Type)
			merged.Description = firstDescription(merged.Description, f.Description)
			merged.Deprecation = firstDeprecation(merged.Deprecation, ExtractDeprecation(f.Directives))
			if merged.DefaultValue == nil {
				merged.DefaultValue = f.DefaultValue
			}
			merged.Sources = appendUnique(merged.Sources, c.Subgraph)
		}
		if mismatch {
			continue
		}
		input.Fields = append(input.Fields, merged)
	}
	if len(conflicts) != 0 {
		return nil, conflicts, nil
	}

	return input, nil, nil
}

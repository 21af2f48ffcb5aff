package composition

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"
)

// scalarMergeHandler always merges. Local names are kept per source for operation synthesis.
type scalarMergeHandler struct{}

func (h *scalarMergeHandler) Kind() ast.DefinitionKind {
	return ast.Scalar
}

func (h *scalarMergeHandler) Merge(ctx context.Context, cctx *CompositionContext, name string, contributions []*Contribution) (TypeDefinition, []*MergeConflict, error) {
	scalar := &ScalarType{
		typeBase: typeBaseFrom(name, contributions),
	}
	for _, c := range contributions {
		if scalar.SpecifiedByURL == "" {
			scalar.SpecifiedByURL = ExtractSpecifiedBy(c.Definition.Directives)
		}
	}
	return scalar, nil, nil
}

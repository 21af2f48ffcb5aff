package composition

import (
	"context"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/fusion/internal/log"
)

// composition contract directives, consumed and never re-exported
var contractDirectiveNames = []string{
	directiveNameLookup,
	directiveNameIs,
	directiveNameRequire,
	directiveNameInternal,
	directiveNameRename,
	directiveNameTag,
	directiveNameSource,
	directiveNameResolver,
	directiveNameVariable,
	directiveNameNode,
}

var builtInDirectiveNames = []string{
	"skip",
	"include",
	"deprecated",
	"specifiedBy",
	"oneOf",
	"defer",
}

func directiveShape(def *ast.DirectiveDefinition) string {
	args := make([]string, 0, len(def.Arguments))
	for _, arg := range def.Arguments {
		args = append(args, arg.Name+": "+arg.Type.String())
	}
	sort.Strings(args)
	shape := "(" + strings.Join(args, ", ") + ")"
	if def.IsRepeatable {
		shape += " repeatable"
	}
	return shape
}

// mergeDirectiveDefinitions merges directive definitions declared by subgraphs.
// A shape disagreement fails the build. It never produces a conflict.
func mergeDirectiveDefinitions(ctx context.Context, cctx *CompositionContext) error {
	logger := log.ForPhase(ctx, "directives")

	type declaration struct {
		subgraph string
		def      *ast.DirectiveDefinition
	}
	declarations := make(map[string][]*declaration)
	for _, subgraph := range cctx.subgraphs {
		for _, def := range subgraph.directiveDefinitions {
			if containsString(builtInDirectiveNames, def.Name) {
				continue
			}
			declarations[def.Name] = append(declarations[def.Name], &declaration{
				subgraph: subgraph.Name,
				def:      def,
			})
		}
	}

	for _, name := range sortedKeys(declarations) {
		decls := declarations[name]
		first := decls[0]
		shape := directiveShape(first.def)

		merged := &DirectiveType{
			Name:        name,
			Description: first.def.Description,
			Repeatable:  first.def.IsRepeatable,
		}
		for _, decl := range decls {
			if s := directiveShape(decl.def); s != shape {
				return newBuildError(
					BuildErrorDirectiveShapeMismatch,
					"",
					decl.subgraph,
					"directive @%s is declared as @%s%s in subgraph %s but @%s%s in subgraph %s",
					name, name, shape, first.subgraph, name, s, decl.subgraph,
				)
			}
			merged.Description = firstDescription(merged.Description, decl.def.Description)
			merged.Sources = appendUnique(merged.Sources, decl.subgraph)
			for _, location := range decl.def.Locations {
				found := false
				for _, l := range merged.Locations {
					if l == location {
						found = true
						break
					}
				}
				if !found {
					merged.Locations = append(merged.Locations, location)
				}
			}
		}
		for _, arg := range first.def.Arguments {
			merged.Arguments = append(merged.Arguments, &Argument{
				Name:         arg.Name,
				Description:  arg.Description,
				DefaultValue: arg.DefaultValue,
				typeNode:     copyType(arg.Type),
			})
		}

		cctx.setDirective(merged)
		logger.V(1).Info("merged directive", "directive", name, "sources", merged.Sources)
	}

	return nil
}

// exported reports whether the directive belongs to the composite schema surface.
func (d *DirectiveType) exported() bool {
	if containsString(contractDirectiveNames, d.Name) {
		return false
	}
	for _, location := range d.Locations {
		if isExecutableLocation(location) {
			return true
		}
	}
	return false
}

func isExecutableLocation(location ast.DirectiveLocation) bool {
	switch location {
	case ast.LocationQuery,
		ast.LocationMutation,
		ast.LocationSubscription,
		ast.LocationField,
		ast.LocationFragmentDefinition,
		ast.LocationFragmentSpread,
		ast.LocationInlineFragment,
		ast.LocationVariableDefinition:
		return true
	default:
		return false
	}
}

package composition

import (
	"context"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/fusion/internal/log"
)

// synthesizeEntityResolvers turns key bound query fields into entity level resolvers and variables.
// It runs after every type name finished phase one.
func synthesizeEntityResolvers(ctx context.Context, cctx *CompositionContext) error {
	logger := log.ForPhase(ctx, "entity")

	queryTypeName := cctx.rootTypes.Query
	for _, subgraph := range cctx.subgraphs {
		queryDef := subgraph.definitions[queryTypeName]
		if queryDef == nil {
			continue
		}
		for _, field := range queryDef.Fields {
			lookup, entity, err := buildLookup(cctx, subgraph, field)
			if err != nil {
				return err
			}
			if lookup == nil {
				continue
			}
			attachLookup(entity, subgraph, subgraph.localFieldName(queryTypeName, field.Name), lookup)
			logger.V(1).Info(
				"synthesized entity resolver",
				"type", entity.Name,
				"subgraph", subgraph.Name,
				"field", field.Name,
				"kind", lookup.Kind,
				"internal", lookup.Internal,
			)
		}
	}

	return nil
}

func buildLookup(cctx *CompositionContext, subgraph *preparedSubgraph, field *ast.FieldDefinition) (*Lookup, *ComplexType, error) {
	isLookup := ExtractLookup(field.Directives)

	var args []*LookupArgument
	for _, arg := range field.Arguments {
		selection, ok := ExtractIs(arg.Directives)
		if !ok {
			if !isLookup {
				continue
			}
			selection = arg.Name
		}
		selectionSet, err := parseSelections(selection)
		if err != nil {
			return nil, nil, newBuildError(BuildErrorUnresolvableKeyBinding, namedTypeOf(field.Type), subgraph.Name, "@is(field: %q) on Query.%s(%s:) in subgraph %s is not a valid selection: %s", selection, field.Name, arg.Name, subgraph.Name, err.Error())
		}
		paths, err := selectionPaths(selectionSet)
		if err != nil || len(paths) != 1 {
			return nil, nil, newBuildError(BuildErrorUnresolvableKeyBinding, namedTypeOf(field.Type), subgraph.Name, "@is(field: %q) on Query.%s(%s:) in subgraph %s must select exactly one field", selection, field.Name, arg.Name, subgraph.Name)
		}
		args = append(args, &LookupArgument{
			Name: arg.Name,
			Type: copyType(arg.Type),
			Path: paths[0],
		})
	}
	if len(args) == 0 {
		return nil, nil, nil
	}

	entityName := namedTypeOf(field.Type)
	entity := cctx.complexType(entityName)
	if entity == nil {
		if handle := cctx.registry.Lookup(entityName); handle != nil && handle.Failed {
			// the entity itself did not merge
			return nil, nil, nil
		}
		return nil, nil, newBuildError(BuildErrorUnresolvableKeyBinding, entityName, subgraph.Name, "lookup Query.%s in subgraph %s returns %s, which is not an object or interface type", field.Name, subgraph.Name, entityName)
	}

	lookup := &Lookup{
		Subgraph:  subgraph.Name,
		FieldName: field.Name,
		Arguments: args,
		Kind:      ResolverKindFetch,
		Internal:  IsInternal(field.Directives),
	}
	for _, arg := range args {
		if err := resolveFieldPath(cctx, entity, arg.Path); err != nil {
			return nil, nil, newBuildError(BuildErrorUnresolvableKeyBinding, entityName, subgraph.Name, "argument %s of Query.%s in subgraph %s cannot be bound to %s: %s", arg.Name, field.Name, subgraph.Name, entityName, err.Error())
		}
		if isListType(arg.Type) {
			lookup.Kind = ResolverKindBatch
		}
		lookup.Paths = append(lookup.Paths, arg.Path)
	}
	lookup.SelectionSet = mergePathSelections(lookup.Paths)

	return lookup, entity, nil
}

// resolveFieldPath checks that every path segment names a field on the merged type graph.
func resolveFieldPath(cctx *CompositionContext, parent *ComplexType, path []string) error {
	current := parent
	for i, segment := range path {
		if current == nil {
			return fmt.Errorf("%s is not an object or interface type", strings.Join(path[:i], "."))
		}
		field := current.Field(segment)
		if field == nil {
			return fmt.Errorf("field %s.%s does not exist", current.Name, segment)
		}
		current = cctx.complexType(namedTypeOf(field.typeNode))
	}
	return nil
}

func attachLookup(entity *ComplexType, subgraph *preparedSubgraph, localFieldName string, lookup *Lookup) {
	entity.Lookups = append(entity.Lookups, lookup)

	args := make([]*operationArgument, 0, len(lookup.Arguments))
	for _, arg := range lookup.Arguments {
		variable := entityVariable(entity, subgraph.Name, arg.Path)
		args = append(args, &operationArgument{
			Name:     arg.Name,
			Variable: variable.Name,
			Type:     subgraph.localType(arg.Type),
		})
	}

	resolver := &Resolver{
		Subgraph:  subgraph.Name,
		Kind:      lookup.Kind,
		Operation: newOperation(ast.Query, localFieldName, args),
	}

	text := resolver.OperationText()
	for _, existing := range entity.Resolvers {
		if existing.Subgraph == resolver.Subgraph && existing.Kind == resolver.Kind && existing.OperationText() == text {
			return
		}
	}
	entity.Resolvers = append(entity.Resolvers, resolver)
}

// entityVariable returns the variable bound to path for subgraph, registering it on first use.
// Names follow <Type>_<path joined by _> with a numeric suffix when two paths collapse to one name.
func entityVariable(entity *ComplexType, subgraph string, path []string) *Variable {
	selection := printSelectionSet(selectionSetFromPath(path))
	for _, v := range entity.Variables {
		if v.Subgraph == subgraph && v.Select == selection {
			return v
		}
	}

	base := entity.Name + "_" + strings.Join(path, "_")
	name := base
	for i := 2; ; i++ {
		taken := false
		for _, v := range entity.Variables {
			if v.Name == name && v.Select != selection {
				taken = true
				break
			}
		}
		if !taken {
			break
		}
		name = fmt.Sprintf("%s%d", base, i)
	}

	variable := &Variable{
		Subgraph: subgraph,
		Name:     name,
		Select:   selection,
	}
	entity.Variables = append(entity.Variables, variable)
	return variable
}

// synthesizeRootResolvers attaches a resolver per declaring subgraph to every public root field.
func synthesizeRootResolvers(ctx context.Context, cctx *CompositionContext) {
	logger := log.ForPhase(ctx, "root")

	for _, op := range []ast.Operation{ast.Query, ast.Mutation, ast.Subscription} {
		rootName := cctx.rootTypes.forOperation(op)
		root := cctx.complexType(rootName)
		if root == nil {
			continue
		}
		kind := ResolverKindFetch
		if op == ast.Subscription {
			kind = ResolverKindSubscribe
		}
		for _, field := range root.Fields {
			for _, source := range field.Sources {
				subgraph := cctx.subgraph(source.Subgraph)
				if subgraph == nil {
					continue
				}
				var declared *ast.FieldDefinition
				if def := subgraph.definitions[rootName]; def != nil {
					declared = def.Fields.ForName(field.Name)
				}

				args := make([]*operationArgument, 0, len(field.Arguments))
				for _, arg := range field.Arguments {
					typ := arg.typeNode
					if declared != nil {
						if declaredArg := declared.Arguments.ForName(arg.Name); declaredArg != nil {
							typ = declaredArg.Type
						}
					}
					args = append(args, &operationArgument{
						Name:     arg.Name,
						Variable: arg.Name,
						Type:     subgraph.localType(typ),
					})
					field.Variables = append(field.Variables, &Variable{
						Subgraph: source.Subgraph,
						Name:     arg.Name,
						Argument: arg.Name,
					})
				}

				localName := field.Name
				if source.LocalName != "" {
					localName = source.LocalName
				}
				field.Resolvers = append(field.Resolvers, &Resolver{
					Subgraph:  source.Subgraph,
					Kind:      kind,
					Operation: newOperation(op, localName, args),
				})
			}
			logger.V(1).Info("synthesized root resolvers", "type", rootName, "field", field.Name, "sources", len(field.Sources))
		}
	}
}

// bindRequirements validates required field paths and exposes them as field variables.
func bindRequirements(ctx context.Context, cctx *CompositionContext) error {
	logger := log.ForPhase(ctx, "requirements")

	for _, name := range cctx.registry.Names() {
		parent := cctx.complexType(name)
		if parent == nil {
			continue
		}
		for _, field := range parent.Fields {
			for _, source := range field.Sources {
				requirements := source.Requirements
				if requirements == nil {
					continue
				}
				for _, arg := range requirements.Arguments {
					for _, path := range arg.Paths {
						if err := resolveFieldPath(cctx, parent, path); err != nil {
							return newBuildError(BuildErrorUnresolvableKeyBinding, name, source.Subgraph, "required argument %s of %s.%s in subgraph %s cannot be bound: %s", arg.Name, name, field.Name, source.Subgraph, err.Error())
						}
					}
					field.Variables = append(field.Variables, &Variable{
						Subgraph: source.Subgraph,
						Name:     arg.Name,
						Select:   printSelectionSet(mergePathSelections(arg.Paths)),
						Argument: arg.Name,
					})
				}
				logger.V(1).Info("bound requirements", "type", name, "field", field.Name, "subgraph", source.Subgraph)
			}
		}
	}
	return nil
}

package routing

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"github.com/vvakame/fusion/internal/composition"
	"github.com/vvakame/fusion/internal/graphql"
	"github.com/vvakame/fusion/internal/log"
)

var requiredDirectives = []string{"source", "resolver", "variable", "node"}

const resolverKindEnumName = "fusion__ResolverKind"

// ParseCompositeSchema parses composite SDL together with the GraphQL prelude and reads it.
func ParseCompositeSchema(ctx context.Context, name, sdl string) (*CompositeSchema, error) {
	doc, err := parser.ParseSchemas(
		validator.Prelude,
		&ast.Source{
			Name:  name,
			Input: sdl,
		},
	)
	if err != nil {
		return nil, err
	}

	return ReadCompositeSchema(ctx, doc)
}

// ReadCompositeSchema validates a composite schema document and extracts its routing metadata.
// The document must include the prelude.
func ReadCompositeSchema(ctx context.Context, document *ast.SchemaDocument) (*CompositeSchema, error) {
	logger := log.FromContext(ctx)

	schema, err := validator.ValidateSchemaDocument(document)
	if err != nil {
		return nil, err
	}

	for _, name := range requiredDirectives {
		if schema.Directives[name] == nil {
			return nil, fmt.Errorf("composite schema should define @%s directive", name)
		}
	}
	if def := schema.Types[resolverKindEnumName]; def == nil || def.Kind != ast.Enum {
		return nil, fmt.Errorf("%s should be an enum", resolverKindEnumName)
	}

	cs := &CompositeSchema{
		Schema: schema,
		Nodes:  composition.ExtractNodes(schema.SchemaDirectives),
		Types:  make(map[string]*TypeMetadata),
		Fields: make(map[string]*FieldMetadata),
	}

	subgraphs := make(map[string]bool)
	for _, node := range cs.Nodes {
		subgraphs[node.Subgraph] = true
	}

	for _, typeName := range sortedKeys(schema.Types) {
		typ := schema.Types[typeName]
		if typ.BuiltIn || graphql.IsIntrospectionType(typ.Name) {
			continue
		}

		sources := composition.ExtractSources(typ.Directives)
		if len(sources) == 0 {
			continue
		}
		for _, source := range sources {
			subgraphs[source.Subgraph] = true
		}

		resolvers, err := readResolvers(typ.Name, typ.Directives)
		if err != nil {
			return nil, err
		}
		variables := composition.ExtractVariables(typ.Directives)
		if err := checkVariables(typ.Name, resolvers, variables); err != nil {
			return nil, err
		}
		cs.Types[typ.Name] = &TypeMetadata{
			Sources:   sources,
			Resolvers: resolvers,
			Variables: variables,
		}

		if typ.Kind != ast.Object && typ.Kind != ast.Interface {
			continue
		}
		for _, fieldDef := range typ.Fields {
			fieldSources := composition.ExtractSources(fieldDef.Directives)
			fieldResolvers, err := readResolvers(typ.Name+"."+fieldDef.Name, fieldDef.Directives)
			if err != nil {
				return nil, err
			}
			fieldVariables := composition.ExtractVariables(fieldDef.Directives)
			if len(fieldSources) == 0 && len(fieldResolvers) == 0 {
				continue
			}
			if err := checkVariables(typ.Name+"."+fieldDef.Name, fieldResolvers, fieldVariables); err != nil {
				return nil, err
			}
			cs.Fields[typ.Name+"."+fieldDef.Name] = &FieldMetadata{
				Sources:   fieldSources,
				Resolvers: fieldResolvers,
				Variables: fieldVariables,
			}
		}
	}

	cs.Subgraphs = sortedKeys(subgraphs)
	logger.V(1).Info("read composite schema", "subgraphs", cs.Subgraphs, "types", len(cs.Types), "fields", len(cs.Fields))

	return cs, nil
}

func readResolvers(coordinate string, directives ast.DirectiveList) ([]*Resolver, error) {
	var result []*Resolver
	for _, directive := range composition.ExtractResolvers(directives) {
		doc, err := parser.ParseQuery(&ast.Source{
			Name:  coordinate,
			Input: directive.Operation,
		})
		if err != nil {
			return nil, fmt.Errorf("invalid @resolver operation on %s: %w", coordinate, err)
		}
		if len(doc.Operations) != 1 {
			return nil, gqlerror.Errorf("@resolver on %s must carry exactly one operation", coordinate)
		}
		result = append(result, &Resolver{
			Subgraph:  directive.Subgraph,
			Kind:      directive.Kind,
			Operation: directive.Operation,
			Document:  doc.Operations[0],
		})
	}
	return result, nil
}

// checkVariables requires a @variable for each variable a resolver declares.
func checkVariables(coordinate string, resolvers []*Resolver, variables []*composition.Variable) error {
	var result *multierror.Error
	for _, resolver := range resolvers {
		for _, varDef := range resolver.Document.VariableDefinitions {
			found := false
			for _, variable := range variables {
				if variable.Subgraph == resolver.Subgraph && variable.Name == varDef.Variable {
					found = true
					break
				}
			}
			if !found {
				result = multierror.Append(result, fmt.Errorf("@resolver on %s in subgraph %s uses $%s without a matching @variable", coordinate, resolver.Subgraph, varDef.Variable))
			}
		}
	}
	return result.ErrorOrNil()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

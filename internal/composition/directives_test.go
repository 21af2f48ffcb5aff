package composition

import (
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

func parseDefinition(t *testing.T, sdl string) *ast.Definition {
	t.Helper()

	doc, err := parser.ParseSchema(&ast.Source{Name: "test.graphqls", Input: sdl})
	require.NoError(t, err)
	require.NotEmpty(t, doc.Definitions)
	return doc.Definitions[0]
}

func TestExtractDirectives(t *testing.T) {
	def := parseDefinition(t, heredoc.Doc(`
		type Product
			@source(subgraph: "a")
			@source(subgraph: "b", name: "Item")
			@resolver(subgraph: "a", operation: "query($Product_id: ID!) { product(id: $Product_id) }", kind: FETCH)
			@resolver(subgraph: "b", operation: "query { items }")
			@variable(subgraph: "a", name: "Product_id", select: "id")
			@rename(name: "Goods")
			@tag(name: "public")
			@tag(name: "beta") {
			id: ID!
			name: String @deprecated
			price: Int @deprecated(reason: "use cost") @internal
			detail(id: ID! @is(field: "id"), size: Int @require(field: "dimension { size }")): String @lookup
		}
	`))

	assert.Equal(t, []*SourceDirective{
		{Subgraph: "a"},
		{Subgraph: "b", Name: "Item"},
	}, ExtractSources(def.Directives))
	assert.Equal(t, []*ResolverDirective{
		{Subgraph: "a", Operation: "query($Product_id: ID!) { product(id: $Product_id) }", Kind: ResolverKindFetch},
		{Subgraph: "b", Operation: "query { items }", Kind: ResolverKindFetch},
	}, ExtractResolvers(def.Directives))
	assert.Equal(t, []*Variable{
		{Subgraph: "a", Name: "Product_id", Select: "id"},
	}, ExtractVariables(def.Directives))

	name, ok := ExtractRename(def.Directives)
	assert.True(t, ok)
	assert.Equal(t, "Goods", name)
	assert.Equal(t, []string{"public", "beta"}, ExtractTags(def.Directives))

	assert.Equal(t, &Deprecation{Reason: defaultDeprecationReason}, ExtractDeprecation(def.Fields.ForName("name").Directives))
	assert.Equal(t, &Deprecation{Reason: "use cost"}, ExtractDeprecation(def.Fields.ForName("price").Directives))
	assert.Nil(t, ExtractDeprecation(def.Fields.ForName("id").Directives))
	assert.True(t, IsInternal(def.Fields.ForName("price").Directives))
	assert.False(t, IsInternal(def.Fields.ForName("name").Directives))

	detail := def.Fields.ForName("detail")
	assert.True(t, ExtractLookup(detail.Directives))
	selection, ok := ExtractIs(detail.Arguments.ForName("id").Directives)
	assert.True(t, ok)
	assert.Equal(t, "id", selection)
	selection, ok = ExtractRequire(detail.Arguments.ForName("size").Directives)
	assert.True(t, ok)
	assert.Equal(t, "dimension { size }", selection)
	_, ok = ExtractIs(detail.Arguments.ForName("size").Directives)
	assert.False(t, ok)
}

func TestExtractNodes(t *testing.T) {
	doc, err := parser.ParseSchema(&ast.Source{Name: "test.graphqls", Input: heredoc.Doc(`
		extend schema
			@node(subgraph: "a", types: ["Product", "User"])
			@node(subgraph: "b", types: "Review")
	`)})
	require.NoError(t, err)
	require.Len(t, doc.SchemaExtension, 1)

	assert.Equal(t, []*NodeDirective{
		{Subgraph: "a", Types: []string{"Product", "User"}},
		{Subgraph: "b", Types: []string{"Review"}},
	}, ExtractNodes(doc.SchemaExtension[0].Directives))
}

func TestRoutingDirectives_roundTrip(t *testing.T) {
	resolver := &Resolver{
		Subgraph:  "a",
		Kind:      ResolverKindBatch,
		Operation: newOperation(ast.Query, "products", []*operationArgument{{Name: "ids", Variable: "Product_id", Type: ast.NonNullListType(ast.NonNullNamedType("ID", nil), nil)}}),
	}
	variable := &Variable{Subgraph: "a", Name: "Product_id", Select: "id"}
	node := &NodeDirective{Subgraph: "a", Types: []string{"Product"}}

	directives := ast.DirectiveList{
		sourceDirective("a", "Item"),
		resolverDirective(resolver),
		variableDirective(variable),
		nodeDirective(node),
	}

	assert.Equal(t, []*SourceDirective{{Subgraph: "a", Name: "Item"}}, ExtractSources(directives))
	assert.Equal(t, []*ResolverDirective{{
		Subgraph:  "a",
		Operation: "query($Product_id: [ID!]!) { products(ids: $Product_id) }",
		Kind:      ResolverKindBatch,
	}}, ExtractResolvers(directives))
	assert.Equal(t, []*Variable{variable}, ExtractVariables(directives))
	assert.Equal(t, []*NodeDirective{node}, ExtractNodes(directives))
}

func TestDeprecatedDirective(t *testing.T) {
	directive := deprecatedDirective(&Deprecation{Reason: defaultDeprecationReason})
	assert.Empty(t, directive.Arguments)

	directive = deprecatedDirective(&Deprecation{Reason: "gone"})
	require.Len(t, directive.Arguments, 1)
	assert.Equal(t, "gone", directive.Arguments[0].Value.Raw)
}

package composition

import (
	"context"
	"errors"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-logr/logr/testr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vvakame/fusion/internal/log"
)

func testContext(t *testing.T) context.Context {
	return log.WithLogger(context.Background(), testr.New(t))
}

func sourceSchema(t *testing.T, name, sdl string) *SourceSchema {
	t.Helper()

	doc, err := parser.ParseSchema(&ast.Source{
		Name:  name,
		Input: sdl,
	})
	require.NoError(t, err)

	return &SourceSchema{
		Name:     name,
		Document: doc,
	}
}

func compose(t *testing.T, settings Settings, sdls ...string) (*CompositeSchema, error) {
	t.Helper()

	var sources []*SourceSchema
	for i, sdl := range sdls {
		sources = append(sources, sourceSchema(t, string(rune('a'+i)), sdl))
	}
	return Compose(testContext(t), settings, sources)
}

func conflictCodes(err error) []ConflictCode {
	var codes []ConflictCode
	for _, conflict := range Conflicts(err) {
		codes = append(codes, conflict.Code)
	}
	return codes
}

func sourceNames(sources []*TypeSource) []string {
	var result []string
	for _, source := range sources {
		result = append(result, source.Subgraph)
	}
	return result
}

func TestCompose_identicalDefinitions(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		sdl      string
	}{
		{
			name:     "scalar",
			typeName: "Date",
			sdl: heredoc.Doc(`
				type Query { today: Date }
				scalar Date
			`),
		},
		{
			name:     "enum",
			typeName: "Enum1",
			sdl: heredoc.Doc(`
				type Query { value: Enum1 }
				enum Enum1 { BAR BAZ }
			`),
		},
		{
			name:     "input",
			typeName: "Input1",
			sdl: heredoc.Doc(`
				type Query { search(input: Input1): String }
				input Input1 { keyword: String! limit: Int }
			`),
		},
		{
			name:     "object",
			typeName: "Object1",
			sdl: heredoc.Doc(`
				type Query { object: Object1 }
				type Object1 { field1: String field2(a: Int): Int }
			`),
		},
		{
			name:     "interface",
			typeName: "Interface1",
			sdl: heredoc.Doc(`
				type Query { node: Interface1 }
				interface Interface1 { id: ID! }
				type Object1 implements Interface1 { id: ID! }
			`),
		},
		{
			name:     "union",
			typeName: "Union1",
			sdl: heredoc.Doc(`
				type Query { any: Union1 }
				union Union1 = Object1 | Object2
				type Object1 { id: ID! }
				type Object2 { id: ID! }
			`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := compose(t, Settings{}, tt.sdl, tt.sdl)
			require.NoError(t, err)
			require.NotNil(t, result)

			typ := result.Type(tt.typeName)
			require.NotNil(t, typ)
			assert.Equal(t, []string{"a", "b"}, sourceNames(typ.TypeSources()))
			assert.Empty(t, result.Conflicts())

			assert.Contains(t, result.SDL(), `@source(subgraph: "a") @source(subgraph: "b")`)
		})
	}
}

func TestCompose_kindMismatch(t *testing.T) {
	kinds := map[string]string{
		"scalar":    `scalar Type1`,
		"enum":      `enum Type1 { A }`,
		"input":     `input Type1 { a: String }`,
		"object":    `type Type1 { a: String }`,
		"interface": `interface Type1 { a: String }`,
		"union":     `union Type1 = Other`,
	}

	for kindA, sdlA := range kinds {
		for kindB, sdlB := range kinds {
			if kindA >= kindB {
				continue
			}
			t.Run(kindA+"_"+kindB, func(t *testing.T) {
				common := "type Query { other: Other }\ntype Other { id: ID }\n"
				result, err := compose(t, Settings{}, common+sdlA, common+sdlB)
				require.Error(t, err)
				require.NotNil(t, result)

				assert.Equal(t, []ConflictCode{CodeKindMismatch}, conflictCodes(err))
				conflicts := Conflicts(err)
				assert.Equal(t, "Type1", conflicts[0].TypeName)
				assert.Equal(t, []string{"a", "b"}, conflicts[0].Subgraphs)
				assert.Nil(t, result.Type("Type1"))
				assert.NotContains(t, result.SDL(), "Type1")
			})
		}
	}
}

func TestCompose_enumValues(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { a: String e: Enum1 }\nenum Enum1 { BAR }",
			"type Query { a: String e: Enum1 }\nenum Enum1 { BAZ }",
		)
		require.Error(t, err)
		assert.Equal(t, []ConflictCode{CodeEnumValueMismatch}, conflictCodes(err))
		assert.Nil(t, result.Type("Enum1"))
		// the field referencing the failed enum is pruned
		assert.Nil(t, result.QueryType().Field("e"))
	})
	t.Run("match", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { e: Enum1 }\nenum Enum1 { BAR }",
			"type Query { e: Enum1 }\nenum Enum1 { BAR }",
		)
		require.NoError(t, err)

		enum, ok := result.Type("Enum1").(*EnumType)
		require.True(t, ok)
		require.Len(t, enum.Values, 1)
		assert.Equal(t, "BAR", enum.Values[0].Name)
		assert.Equal(t, []string{"a", "b"}, enum.Values[0].Sources)
	})
}

func TestCompose_fieldTypes(t *testing.T) {
	t.Run("nullability is relaxed", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { o: Object1 }\ntype Object1 { field1: String! }",
			"type Query { o: Object1 }\ntype Object1 { field1: String }",
		)
		require.NoError(t, err)

		obj := result.Type("Object1").(*ObjectType)
		assert.Equal(t, "String", obj.Field("field1").Type.String())
		assert.Contains(t, result.SDL(), `field1: String @source(subgraph: "a") @source(subgraph: "b")`)
	})
	t.Run("interface nullability is relaxed", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { i: Interface1 }\ninterface Interface1 { field1: [String!]! }",
			"type Query { i: Interface1 }\ninterface Interface1 { field1: [String] }",
		)
		require.NoError(t, err)

		iface := result.Type("Interface1").(*InterfaceType)
		assert.Equal(t, "[String]", iface.Field("field1").Type.String())
	})
	t.Run("relaxed implementation relaxes its interface", func(t *testing.T) {
		result, err := compose(t, Settings{},
			heredoc.Doc(`
				type Query { i: Interface2 }
				interface Interface1 { field1: [String!]! }
				interface Interface2 implements Interface1 { field1: [String!]! }
				type Object1 implements Interface2 & Interface1 { field1: [String!]! }
			`),
			"type Object1 { field1: [String]! }",
		)
		require.NoError(t, err)

		assert.Equal(t, "[String]!", result.Type("Object1").(*ObjectType).Field("field1").Type.String())
		assert.Equal(t, "[String]!", result.Type("Interface2").(*InterfaceType).Field("field1").Type.String())
		assert.Equal(t, "[String]!", result.Type("Interface1").(*InterfaceType).Field("field1").Type.String())
	})
	t.Run("base type mismatch", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { o: Object1 }\ntype Object1 { field1: String }",
			"type Query { o: Object1 }\ntype Object1 { field1: Int }",
		)
		require.Error(t, err)
		assert.Equal(t, []ConflictCode{CodeFieldTypeMismatch}, conflictCodes(err))
		assert.Nil(t, result.Type("Object1"))
	})
	t.Run("list shape mismatch", func(t *testing.T) {
		_, err := compose(t, Settings{},
			"type Query { o: Object1 }\ntype Object1 { field1: [String] }",
			"type Query { o: Object1 }\ntype Object1 { field1: String }",
		)
		require.Error(t, err)
		assert.Equal(t, []ConflictCode{CodeFieldTypeMismatch}, conflictCodes(err))
	})
}

func TestCompose_argumentTypes(t *testing.T) {
	t.Run("mismatch", func(t *testing.T) {
		_, err := compose(t, Settings{},
			"type Query { o: Object1 }\ntype Object1 { field1(a: String): String }",
			"type Query { o: Object1 }\ntype Object1 { field1(a: Int): String }",
		)
		require.Error(t, err)
		assert.Equal(t, []ConflictCode{CodeArgumentTypeMismatch}, conflictCodes(err))
	})
	t.Run("nullability is relaxed", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { o: Object1 }\ntype Object1 { field1(a: String!): String }",
			"type Query { o: Object1 }\ntype Object1 { field1(a: String): String }",
		)
		require.NoError(t, err)

		field := result.Type("Object1").(*ObjectType).Field("field1")
		require.NotNil(t, field.Argument("a"))
		assert.Equal(t, "String", field.Argument("a").Type.String())
	})
	t.Run("arguments missing in a subgraph are dropped", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { o: Object1 }\ntype Object1 { field1(a: String, b: Int): String }",
			"type Query { o: Object1 }\ntype Object1 { field1(a: String): String }",
		)
		require.NoError(t, err)

		field := result.Type("Object1").(*ObjectType).Field("field1")
		assert.NotNil(t, field.Argument("a"))
		assert.Nil(t, field.Argument("b"))
	})
}

func TestCompose_inputObjects(t *testing.T) {
	t.Run("field set mismatch", func(t *testing.T) {
		_, err := compose(t, Settings{},
			"type Query { f(i: Input1): String }\ninput Input1 { a: String }",
			"type Query { f(i: Input1): String }\ninput Input1 { a: String b: String }",
		)
		require.Error(t, err)
		assert.Equal(t, []ConflictCode{CodeInputFieldSetMismatch}, conflictCodes(err))
	})
	t.Run("field type mismatch", func(t *testing.T) {
		_, err := compose(t, Settings{},
			"type Query { f(i: Input1): String }\ninput Input1 { a: String }",
			"type Query { f(i: Input1): String }\ninput Input1 { a: Int }",
		)
		require.Error(t, err)
		assert.Equal(t, []ConflictCode{CodeInputFieldTypeMismatch}, conflictCodes(err))
	})
	t.Run("nullability is relaxed", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"type Query { f(i: Input1): String }\ninput Input1 { a: String! }",
			"type Query { f(i: Input1): String }\ninput Input1 { a: String }",
		)
		require.NoError(t, err)

		input := result.Type("Input1").(*InputObjectType)
		require.Len(t, input.Fields, 1)
		assert.Equal(t, "String", input.Fields[0].Type.String())
	})
}

func TestCompose_unionSplitMembership(t *testing.T) {
	result, err := compose(t, Settings{},
		"type Query { a: Union1 }\nunion Union1 = A\ntype A { id: ID }",
		"type Query { b: Union1 }\nunion Union1 = B\ntype B { id: ID }",
	)
	require.NoError(t, err)

	union := result.Type("Union1").(*UnionType)
	var members []string
	for _, member := range union.Members {
		members = append(members, member.Name)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, members)
	assert.Contains(t, result.SDL(), "= A | B")
	assert.Len(t, result.Schema.GetPossibleTypes(result.Schema.Types["Union1"]), 2)
}

func TestCompose_interfacesAreUnioned(t *testing.T) {
	result, err := compose(t, Settings{},
		"type Query { o: Object1 }\ninterface I1 { id: ID! }\ntype Object1 implements I1 { id: ID! }",
		"type Query { o: Object1 }\ninterface I2 { id: ID! }\ntype Object1 implements I2 { id: ID! }",
	)
	require.NoError(t, err)

	obj := result.Type("Object1").(*ObjectType)
	assert.ElementsMatch(t, []string{"I1", "I2"}, obj.Interfaces)
}

func TestCompose_determinism(t *testing.T) {
	sdlA := heredoc.Doc(`
		type Query {
			entity(id: ID! @is(field: "id")): Entity!
			things: [Thing]
		}
		type Entity { id: ID! name: String }
		union Thing = Entity | Other
		type Other { id: ID! }
		enum Color { RED GREEN }
	`)
	sdlB := heredoc.Doc(`
		type Query {
			entities(id: [ID!]! @is(field: "id")): [Entity!]
			color: Color
		}
		type Entity { id: ID! price: Int }
		enum Color { GREEN RED }
	`)

	ctx := testContext(t)
	first, err := Compose(ctx, Settings{}, []*SourceSchema{
		sourceSchema(t, "a", sdlA),
		sourceSchema(t, "b", sdlB),
	})
	require.NoError(t, err)
	second, err := Compose(ctx, Settings{}, []*SourceSchema{
		sourceSchema(t, "b", sdlB),
		sourceSchema(t, "a", sdlA),
	})
	require.NoError(t, err)

	assert.Equal(t, first.SDL(), second.SDL())
}

func TestCompose_rootOperationTypes(t *testing.T) {
	t.Run("renamed root", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"schema { query: RootQuery }\ntype RootQuery { a: String }",
			"type Query { b: String }",
		)
		require.NoError(t, err)

		require.NotNil(t, result.QueryType())
		assert.Equal(t, "RootQuery", result.QueryType().Name)
		assert.NotNil(t, result.QueryType().Field("a"))
		assert.NotNil(t, result.QueryType().Field("b"))
		// subgraph b keeps its local name
		assert.Contains(t, result.SDL(), `@source(subgraph: "b", name: "Query")`)
		assert.Contains(t, result.SDL(), "query: RootQuery")
	})
	t.Run("conflicting overrides", func(t *testing.T) {
		result, err := compose(t, Settings{},
			"schema { query: RootA }\ntype RootA { a: String }",
			"schema { query: RootB }\ntype RootB { b: String }",
		)
		require.Error(t, err)
		assert.Equal(t, []ConflictCode{CodeRootOperationTypeConflict}, conflictCodes(err))
		require.NotNil(t, result)
		assert.Equal(t, "RootA", result.RootTypes().Query)
		assert.NotNil(t, result.QueryType().Field("b"))
	})
	t.Run("missing roots are nil", func(t *testing.T) {
		result, err := compose(t, Settings{}, "type Query { a: String }")
		require.NoError(t, err)
		assert.NotNil(t, result.QueryType())
		assert.Nil(t, result.MutationType())
		assert.Nil(t, result.SubscriptionType())
	})
}

func TestCompositeRootTypes(t *testing.T) {
	tests := []struct {
		name      string
		sdls      []string
		expected  RootTypes
		conflicts []ConflictCode
	}{
		{
			name:     "defaults",
			sdls:     []string{"type Query { a: String }\ntype Mutation { b: String }"},
			expected: defaultRootTypes(),
		},
		{
			name: "query override",
			sdls: []string{"schema { query: RootQuery }\ntype RootQuery { a: String }"},
			expected: RootTypes{
				Query:        "RootQuery",
				Mutation:     "Mutation",
				Subscription: "Subscription",
			},
		},
		{
			name: "mutation override in schema extension",
			sdls: []string{"type Query { a: String }\nextend schema { mutation: RootMutation }\ntype RootMutation { b: String }"},
			expected: RootTypes{
				Query:        "Query",
				Mutation:     "RootMutation",
				Subscription: "Subscription",
			},
		},
		{
			name: "same override in two subgraphs",
			sdls: []string{
				"schema { query: RootQuery }\ntype RootQuery { a: String }",
				"schema { query: RootQuery }\ntype RootQuery { b: String }",
			},
			expected: RootTypes{
				Query:        "RootQuery",
				Mutation:     "Mutation",
				Subscription: "Subscription",
			},
		},
		{
			name: "distinct overrides",
			sdls: []string{
				"schema { query: RootA }\ntype RootA { a: String }",
				"type Query { c: String }",
				"schema { query: RootB }\ntype RootB { b: String }",
			},
			expected: RootTypes{
				Query:        "RootA",
				Mutation:     "Mutation",
				Subscription: "Subscription",
			},
			conflicts: []ConflictCode{CodeRootOperationTypeConflict},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sources []*SourceSchema
			for i, sdl := range tt.sdls {
				sources = append(sources, sourceSchema(t, string(rune('a'+i)), sdl))
			}

			roots, conflicts := compositeRootTypes(sources)
			assert.Equal(t, tt.expected, roots)

			var codes []ConflictCode
			for _, conflict := range conflicts {
				codes = append(codes, conflict.Code)
				assert.Equal(t, []string{"a", "c"}, conflict.Subgraphs)
			}
			assert.Equal(t, tt.conflicts, codes)
		})
	}
}

func TestCompose_prunedTypesCascade(t *testing.T) {
	result, err := compose(t, Settings{},
		heredoc.Doc(`
			type Query {
				a: String
				o: Object1
				u: Union1
				f(in: Input1): String
			}
			type Object1 { e: Enum1 }
			union Union1 = Object1
			input Input1 { e: Enum1 }
			enum Enum1 { BAR }
		`),
		heredoc.Doc(`
			type Query { a: String }
			enum Enum1 { BAZ }
		`),
	)
	require.Error(t, err)
	assert.Equal(t, []ConflictCode{CodeEnumValueMismatch}, conflictCodes(err))

	for _, name := range []string{"Enum1", "Object1", "Union1", "Input1"} {
		assert.Nil(t, result.Type(name), name)
		assert.NotContains(t, result.SDL(), name)
	}

	query := result.QueryType()
	require.NotNil(t, query)
	require.Len(t, query.Fields, 1)
	assert.Equal(t, "a", query.Fields[0].Name)
}

func TestCompose_fatalErrors(t *testing.T) {
	tests := []struct {
		name string
		sdls []string
		kind BuildErrorKind
	}{
		{
			name: "undeclared type",
			sdls: []string{"type Query { a: Missing }"},
			kind: BuildErrorUnresolvableType,
		},
		{
			name: "unresolvable key",
			sdls: []string{"type Query { entity(id: ID! @is(field: \"missing\")): Entity }\ntype Entity { id: ID! }"},
			kind: BuildErrorUnresolvableKeyBinding,
		},
		{
			name: "unresolvable nested key",
			sdls: []string{"type Query { entity(id: ID! @is(field: \"id.value\")): Entity }\ntype Entity { id: ID! }"},
			kind: BuildErrorUnresolvableKeyBinding,
		},
		{
			name: "directive shape mismatch",
			sdls: []string{
				"directive @cached(ttl: Int) on FIELD\ntype Query { a: String }",
				"directive @cached(ttl: String) on FIELD\ntype Query { b: String }",
			},
			kind: BuildErrorDirectiveShapeMismatch,
		},
		{
			name: "kind clash in one subgraph",
			sdls: []string{"type Query { a: String }\ntype Foo { a: String }\nextend input Foo { b: String }"},
			kind: BuildErrorInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := compose(t, Settings{}, tt.sdls...)
			require.Error(t, err)
			assert.Nil(t, result)

			var buildErr *BuildError
			require.True(t, errors.As(err, &buildErr))
			assert.Equal(t, tt.kind, buildErr.Kind)
		})
	}
}

func TestCompose_fatalErrorKeepsConflicts(t *testing.T) {
	result, err := compose(t, Settings{},
		"type Query { a: Missing e: Enum1 }\nenum Enum1 { A }",
		"type Query { b: String e: Enum1 }\nenum Enum1 { B }",
	)
	require.Error(t, err)
	assert.Nil(t, result)

	assert.Equal(t, []ConflictCode{CodeEnumValueMismatch}, conflictCodes(err))
	var buildErr *BuildError
	require.True(t, errors.As(err, &buildErr))
	assert.Equal(t, BuildErrorUnresolvableType, buildErr.Kind)
	assert.Equal(t, "Missing", buildErr.TypeName)

	gErrs := GQLErrors(err)
	require.Len(t, gErrs, 2)
	assert.Equal(t, string(CodeEnumValueMismatch), gErrs[0].Extensions["code"])
}

func TestCompose_invalidInput(t *testing.T) {
	ctx := testContext(t)
	doc := sourceSchema(t, "a", "type Query { a: String }").Document

	tests := []struct {
		name    string
		sources []*SourceSchema
	}{
		{name: "empty", sources: nil},
		{name: "empty name", sources: []*SourceSchema{{Name: "", Document: doc}}},
		{name: "nil document", sources: []*SourceSchema{{Name: "a"}}},
		{name: "duplicate", sources: []*SourceSchema{{Name: "a", Document: doc}, {Name: "a", Document: doc}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compose(ctx, Settings{}, tt.sources)
			var buildErr *BuildError
			require.True(t, errors.As(err, &buildErr))
			assert.Equal(t, BuildErrorInvalidInput, buildErr.Kind)
		})
	}
}

func TestCompose_multipleConflicts(t *testing.T) {
	_, err := compose(t, Settings{},
		"type Query { e: Enum1 s: Type1 }\nenum Enum1 { A }\nscalar Type1",
		"type Query { e: Enum1 }\nenum Enum1 { B }\nenum Type1 { A }",
	)
	require.Error(t, err)
	assert.Equal(t, []ConflictCode{CodeEnumValueMismatch, CodeKindMismatch}, conflictCodes(err))
}

func TestCompose_builtInScalars(t *testing.T) {
	result, err := compose(t, Settings{}, "type Query { a: String b: Int c: Float d: Boolean e: ID }")
	require.NoError(t, err)

	for _, name := range []string{"String", "Int", "Float", "Boolean", "ID"} {
		assert.NotNil(t, result.Type(name), name)
		assert.NotNil(t, result.Schema.Types[name], name)
	}
	assert.NotContains(t, result.SDL(), "scalar String")
	assert.NotNil(t, result.Schema.Types["__Schema"])
	assert.NotNil(t, result.Schema.Directives["skip"])
	assert.NotNil(t, result.Schema.Directives["include"])
}

func TestCompose_deprecation(t *testing.T) {
	result, err := compose(t, Settings{},
		"type Query { o: Object1 }\ntype Object1 { old: String @deprecated(reason: \"use new\") new: String }",
		"type Query { o: Object1 }\ntype Object1 { old: String new: String }",
	)
	require.NoError(t, err)

	field := result.Type("Object1").(*ObjectType).Field("old")
	require.True(t, field.IsDeprecated())
	assert.Equal(t, "use new", field.Deprecation.Reason)
	assert.Contains(t, result.SDL(), `@deprecated(reason: "use new")`)
}

func TestCompose_userDirectives(t *testing.T) {
	result, err := compose(t, Settings{},
		"directive @cached(ttl: Int) on FIELD\ndirective @internalOnly on OBJECT\ntype Query { a: String }",
		"directive @cached(ttl: Int) on FIELD | QUERY\ntype Query { b: String }",
	)
	require.NoError(t, err)

	cached := result.Directive("cached")
	require.NotNil(t, cached)
	assert.Equal(t, []ast.DirectiveLocation{ast.LocationField, ast.LocationQuery}, cached.Locations)
	assert.Equal(t, []string{"a", "b"}, cached.Sources)
	assert.NotNil(t, result.Schema.Directives["cached"])
	// type system only directives stay in the subgraphs
	assert.Nil(t, result.Schema.Directives["internalOnly"])
}

func TestCompose_rename(t *testing.T) {
	result, err := compose(t, Settings{},
		"type Query { product: Product }\ntype Product { id: ID! title: String }",
		"type Query { item: Item }\ntype Item @rename(name: \"Product\") { id: ID! label: String @rename(name: \"title\") }",
	)
	require.NoError(t, err)

	product := result.Type("Product").(*ObjectType)
	assert.Nil(t, result.Type("Item"))
	assert.Equal(t, []*TypeSource{{Subgraph: "a"}, {Subgraph: "b", LocalName: "Item"}}, product.Sources)

	title := product.Field("title")
	require.NotNil(t, title)
	require.Len(t, title.Sources, 2)
	assert.Equal(t, "label", title.Source("b").LocalName)
	assert.Contains(t, result.SDL(), `@source(subgraph: "b", name: "label")`)
}

func TestCompose_excludeByTag(t *testing.T) {
	sdl := heredoc.Doc(`
		type Query {
			public: String
			secret: Secret
			hidden: String @tag(name: "internal")
			search(keyword: String, debug: Boolean @tag(name: "internal")): String
		}
		type Secret @tag(name: "internal") { value: String }
		enum Level { LOW HIGH @tag(name: "internal") }
		type Extra { level: Level }
	`)

	result, err := compose(t, Settings{ExcludeByTag: []string{"internal"}}, sdl)
	require.NoError(t, err)

	query := result.QueryType()
	assert.NotNil(t, query.Field("public"))
	assert.Nil(t, query.Field("secret"))
	assert.Nil(t, query.Field("hidden"))
	require.NotNil(t, query.Field("search"))
	assert.NotNil(t, query.Field("search").Argument("keyword"))
	assert.Nil(t, query.Field("search").Argument("debug"))
	assert.Nil(t, result.Type("Secret"))

	level := result.Type("Level").(*EnumType)
	require.Len(t, level.Values, 1)
	assert.Equal(t, "LOW", level.Values[0].Name)
}

func TestCompositionContext_frozen(t *testing.T) {
	result, err := compose(t, Settings{}, "type Query { a: String }")
	require.NoError(t, err)

	assert.Panics(t, func() {
		result.cctx.addConflicts(&MergeConflict{Code: CodeKindMismatch})
	})
}

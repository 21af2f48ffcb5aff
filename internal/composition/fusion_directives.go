package composition

import (
	"github.com/vektah/gqlparser/v2/ast"
)

const resolverKindEnumName = "fusion__ResolverKind"

var ResolverKindEnum = &ast.Definition{
	Kind:        ast.Enum,
	Description: "How a resolver fetches entities from its subgraph.",
	Name:        resolverKindEnumName,
	EnumValues: ast.EnumValueList{
		{
			Description: "Resolves many entities per request.",
			Name:        string(ResolverKindBatch),
			Position:    blankPos,
		},
		{
			Description: "Resolves a single entity per request.",
			Name:        string(ResolverKindFetch),
			Position:    blankPos,
		},
		{
			Description: "Subscribes to a stream of events.",
			Name:        string(ResolverKindSubscribe),
			Position:    blankPos,
		},
	},
	Position: blankPos,
}

var SourceDirectiveDefinition = &ast.DirectiveDefinition{
	Description: "Declares a subgraph that provides the annotated element, and its name in that subgraph when renamed.",
	Name:        directiveNameSource,
	Arguments: ast.ArgumentDefinitionList{
		{
			Name:     "subgraph",
			Type:     ast.NonNullNamedType("String", blankPos),
			Position: blankPos,
		},
		{
			Name:     "name",
			Type:     ast.NamedType("String", blankPos),
			Position: blankPos,
		},
	},
	IsRepeatable: true,
	Locations: []ast.DirectiveLocation{
		ast.LocationScalar,
		ast.LocationObject,
		ast.LocationInterface,
		ast.LocationUnion,
		ast.LocationEnum,
		ast.LocationInputObject,
		ast.LocationFieldDefinition,
		ast.LocationEnumValue,
		ast.LocationInputFieldDefinition,
	},
	Position: blankPos,
}

var ResolverDirectiveDefinition = &ast.DirectiveDefinition{
	Description: "Declares an operation a subgraph answers to resolve the annotated type or root field.",
	Name:        directiveNameResolver,
	Arguments: ast.ArgumentDefinitionList{
		{
			Name:     "subgraph",
			Type:     ast.NonNullNamedType("String", blankPos),
			Position: blankPos,
		},
		{
			Name:     "operation",
			Type:     ast.NonNullNamedType("String", blankPos),
			Position: blankPos,
		},
		{
			Name:     "kind",
			Type:     ast.NonNullNamedType(resolverKindEnumName, blankPos),
			Position: blankPos,
		},
	},
	IsRepeatable: true,
	Locations: []ast.DirectiveLocation{
		ast.LocationObject,
		ast.LocationInterface,
		ast.LocationFieldDefinition,
	},
	Position: blankPos,
}

var VariableDirectiveDefinition = &ast.DirectiveDefinition{
	Description: "Binds a resolver variable to data selected from the parent or to a field argument.",
	Name:        directiveNameVariable,
	Arguments: ast.ArgumentDefinitionList{
		{
			Name:     "subgraph",
			Type:     ast.NonNullNamedType("String", blankPos),
			Position: blankPos,
		},
		{
			Name:     "name",
			Type:     ast.NonNullNamedType("String", blankPos),
			Position: blankPos,
		},
		{
			Name:     "select",
			Type:     ast.NamedType("String", blankPos),
			Position: blankPos,
		},
		{
			Name:     "argument",
			Type:     ast.NamedType("String", blankPos),
			Position: blankPos,
		},
	},
	IsRepeatable: true,
	Locations: []ast.DirectiveLocation{
		ast.LocationObject,
		ast.LocationInterface,
		ast.LocationFieldDefinition,
	},
	Position: blankPos,
}

var NodeDirectiveDefinition = &ast.DirectiveDefinition{
	Description: "Lists the types a subgraph resolves through the node field.",
	Name:        directiveNameNode,
	Arguments: ast.ArgumentDefinitionList{
		{
			Name:     "subgraph",
			Type:     ast.NonNullNamedType("String", blankPos),
			Position: blankPos,
		},
		{
			Name:     "types",
			Type:     ast.NonNullListType(ast.NonNullNamedType("String", blankPos), blankPos),
			Position: blankPos,
		},
	},
	IsRepeatable: true,
	Locations: []ast.DirectiveLocation{
		ast.LocationSchema,
	},
	Position: blankPos,
}

// FusionDirectives are always declared on a composite schema.
var FusionDirectives = ast.DirectiveDefinitionList{
	SourceDirectiveDefinition,
	ResolverDirectiveDefinition,
	VariableDirectiveDefinition,
	NodeDirectiveDefinition,
}

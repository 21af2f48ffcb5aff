package graphql

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// The definitions below are read from the gqlparser prelude. All of them are marked BuiltIn,
// so the formatter omits them from printed SDL.
var (
	SpecifiedScalarTypes ast.DefinitionList
	IntrospectionTypes   ast.DefinitionList
	SpecifiedDirectives  ast.DirectiveDefinitionList
)

func init() {
	doc, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		panic(err)
	}

	for _, def := range doc.Definitions {
		switch {
		case strings.HasPrefix(def.Name, "__"):
			IntrospectionTypes = append(IntrospectionTypes, def)
		case def.Kind == ast.Scalar:
			SpecifiedScalarTypes = append(SpecifiedScalarTypes, def)
		}
	}
	SpecifiedDirectives = doc.Directives
}

func IsIntrospectionType(typeName string) bool {
	return IntrospectionTypes.ForName(typeName) != nil
}

func IsSpecifiedScalarType(typeName string) bool {
	return SpecifiedScalarTypes.ForName(typeName) != nil
}

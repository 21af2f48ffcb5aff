package graphql

import (
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
)

// LexicographicSortSchema orders fields, arguments, enum values, interfaces and union members by name.
// Directive instances and directive definitions keep their order. Built-in definitions are shared and left untouched.
func LexicographicSortSchema(schema *ast.Schema) *ast.Schema {
	sortArgumentDefinitionList := func(argDefs ast.ArgumentDefinitionList) {
		sort.SliceStable(argDefs, func(i, j int) bool {
			argDefA := argDefs[i]
			argDefB := argDefs[j]
			return argDefA.Name < argDefB.Name
		})
	}
	sortFieldList := func(fields ast.FieldList) {
		sort.SliceStable(fields, func(i, j int) bool {
			fieldA := fields[i]
			fieldB := fields[j]
			return fieldA.Name < fieldB.Name
		})

		for _, field := range fields {
			sortArgumentDefinitionList(field.Arguments)
		}
	}
	sortEnumValueList := func(enumValues ast.EnumValueList) {
		sort.SliceStable(enumValues, func(i, j int) bool {
			enumValueA := enumValues[i]
			enumValueB := enumValues[j]
			return enumValueA.Name < enumValueB.Name
		})
	}
	sortDefinition := func(def *ast.Definition) {
		if def == nil || def.BuiltIn {
			return
		}

		sort.Strings(def.Interfaces)
		sortFieldList(def.Fields)
		sort.Strings(def.Types)
		sortEnumValueList(def.EnumValues)
	}
	sortDefinitionList := func(defs []*ast.Definition) {
		sort.SliceStable(defs, func(i, j int) bool {
			defA := defs[i]
			defB := defs[j]
			return defA.Name < defB.Name
		})
	}

	for _, def := range schema.Types {
		sortDefinition(def)
	}
	for _, defs := range schema.PossibleTypes {
		sortDefinitionList(defs)
	}
	for _, defs := range schema.Implements {
		sortDefinitionList(defs)
	}

	return schema
}

package composition

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// for formatter
var blankPos = &ast.Position{
	Src: &ast.Source{
		BuiltIn: false,
	},
}

// parseSelections accepts both field paths ("a.b") and selection syntax ("a { b }").
func parseSelections(source string) (ast.SelectionSet, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("empty selection")
	}
	if !strings.ContainsAny(source, "{} \t\n") {
		return selectionSetFromPath(strings.Split(source, ".")), nil
	}
	if strings.HasPrefix(source, "{") {
		source = strings.TrimSuffix(strings.TrimPrefix(source, "{"), "}")
	}

	queryDocument, err := parser.ParseQuery(&ast.Source{
		Input: "{" + source + "}",
	})
	if err != nil {
		return nil, err
	}

	return queryDocument.Operations[0].SelectionSet, nil
}

func selectionSetFromPath(path []string) ast.SelectionSet {
	if len(path) == 0 {
		return nil
	}
	return ast.SelectionSet{
		&ast.Field{
			Name:         path[0],
			SelectionSet: selectionSetFromPath(path[1:]),
			Position:     blankPos,
		},
	}
}

// selectionPaths lists the leaf paths of a field-only selection set.
func selectionPaths(selections ast.SelectionSet) ([][]string, error) {
	var result [][]string
	var walk func(prefix []string, selections ast.SelectionSet) error
	walk = func(prefix []string, selections ast.SelectionSet) error {
		for _, selection := range selections {
			field, ok := selection.(*ast.Field)
			if !ok {
				return fmt.Errorf("unsupported selection type: %T", selection)
			}
			path := append(append([]string{}, prefix...), field.Name)
			if len(field.SelectionSet) == 0 {
				result = append(result, path)
				continue
			}
			if err := walk(path, field.SelectionSet); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(nil, selections); err != nil {
		return nil, err
	}
	return result, nil
}

// mergePathSelections builds a single selection set covering every path, sharing common prefixes.
func mergePathSelections(paths [][]string) ast.SelectionSet {
	var result ast.SelectionSet
	for _, path := range paths {
		result = addPathSelection(result, path)
	}
	return result
}

func addPathSelection(selections ast.SelectionSet, path []string) ast.SelectionSet {
	if len(path) == 0 {
		return selections
	}
	for _, selection := range selections {
		field := selection.(*ast.Field)
		if field.Name == path[0] {
			field.SelectionSet = addPathSelection(field.SelectionSet, path[1:])
			return selections
		}
	}
	return append(selections, &ast.Field{
		Name:         path[0],
		SelectionSet: addPathSelection(nil, path[1:]),
		Position:     blankPos,
	})
}

func printSelectionSet(selections ast.SelectionSet) string {
	var buf bytes.Buffer

	pad := func() {
		if buf.Len() != 0 {
			buf.WriteString(" ")
		}
	}
	var p func(selections ast.SelectionSet)
	p = func(selections ast.SelectionSet) {
		for _, selection := range selections {
			switch v := selection.(type) {
			case *ast.Field:
				pad()
				buf.WriteString(v.Name)
				if len(v.SelectionSet) != 0 {
					pad()
					buf.WriteString("{")
					p(v.SelectionSet)
					pad()
					buf.WriteString("}")
				}

			default:
				panic(fmt.Errorf("unsupported Selection type: %T", selection))
			}
		}
	}

	p(selections)

	return buf.String()
}

func namedTypeOf(typ *ast.Type) string {
	return typ.Name()
}

func isListType(typ *ast.Type) bool {
	return typ != nil && typ.Elem != nil
}

// baseTypeString renders a type with every non-null marker removed.
func baseTypeString(typ *ast.Type) string {
	if typ.Elem != nil {
		return "[" + baseTypeString(typ.Elem) + "]"
	}
	return typ.NamedType
}

func sameBaseType(a, b *ast.Type) bool {
	return baseTypeString(a) == baseTypeString(b)
}

// leastRestrictiveType merges two types sharing a base type, keeping non-null only where both agree.
func leastRestrictiveType(a, b *ast.Type) *ast.Type {
	result := &ast.Type{
		NamedType: a.NamedType,
		NonNull:   a.NonNull && b.NonNull,
		Position:  blankPos,
	}
	if a.Elem != nil && b.Elem != nil {
		result.Elem = leastRestrictiveType(a.Elem, b.Elem)
	}
	return result
}

func copyType(typ *ast.Type) *ast.Type {
	if typ == nil {
		return nil
	}
	return &ast.Type{
		NamedType: typ.NamedType,
		Elem:      copyType(typ.Elem),
		NonNull:   typ.NonNull,
		Position:  typ.Position,
	}
}

func renameType(typ *ast.Type, rename func(string) string) *ast.Type {
	result := copyType(typ)
	t := result
	for t.Elem != nil {
		t = t.Elem
	}
	t.NamedType = rename(t.NamedType)
	return result
}

func copyDefinition(def *ast.Definition) *ast.Definition {
	result := *def
	result.Directives = append(ast.DirectiveList{}, def.Directives...)
	result.Interfaces = append([]string{}, def.Interfaces...)
	result.Types = append([]string{}, def.Types...)
	result.Fields = make(ast.FieldList, 0, len(def.Fields))
	for _, field := range def.Fields {
		result.Fields = append(result.Fields, copyFieldDefinition(field))
	}
	result.EnumValues = make(ast.EnumValueList, 0, len(def.EnumValues))
	for _, value := range def.EnumValues {
		v := *value
		v.Directives = append(ast.DirectiveList{}, value.Directives...)
		result.EnumValues = append(result.EnumValues, &v)
	}
	return &result
}

func copyFieldDefinition(field *ast.FieldDefinition) *ast.FieldDefinition {
	result := *field
	result.Type = copyType(field.Type)
	result.Directives = append(ast.DirectiveList{}, field.Directives...)
	result.Arguments = make(ast.ArgumentDefinitionList, 0, len(field.Arguments))
	for _, arg := range field.Arguments {
		a := *arg
		a.Type = copyType(arg.Type)
		a.Directives = append(ast.DirectiveList{}, arg.Directives...)
		result.Arguments = append(result.Arguments, &a)
	}
	return &result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func appendUnique(list []string, values ...string) []string {
	for _, v := range values {
		if !containsString(list, v) {
			list = append(list, v)
		}
	}
	return list
}

func subgraphsOf(contributions []*Contribution) []string {
	result := make([]string, 0, len(contributions))
	for _, c := range contributions {
		result = appendUnique(result, c.Subgraph)
	}
	sort.Strings(result)
	return result
}

func firstDescription(descriptions ...string) string {
	for _, d := range descriptions {
		if d != "" {
			return d
		}
	}
	return ""
}

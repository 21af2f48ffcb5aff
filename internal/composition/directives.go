package composition

import (
	"github.com/vektah/gqlparser/v2/ast"
)

const (
	directiveNameSource     = "source"
	directiveNameResolver   = "resolver"
	directiveNameVariable   = "variable"
	directiveNameNode       = "node"
	directiveNameRename     = "rename"
	directiveNameLookup     = "lookup"
	directiveNameIs         = "is"
	directiveNameRequire    = "require"
	directiveNameInternal   = "internal"
	directiveNameTag        = "tag"
	directiveNameDeprecated = "deprecated"

	directiveNameSpecifiedBy = "specifiedBy"
)

const defaultDeprecationReason = "No longer supported"

// SourceDirective is a typed @source(subgraph:, name:) instance.
type SourceDirective struct {
	Subgraph string `json:"subgraph" yaml:"subgraph"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
}

// ResolverDirective is a typed @resolver(subgraph:, operation:, kind:) instance.
type ResolverDirective struct {
	Subgraph  string       `json:"subgraph" yaml:"subgraph"`
	Operation string       `json:"operation" yaml:"operation"`
	Kind      ResolverKind `json:"kind" yaml:"kind"`
}

// NodeDirective is a typed @node(subgraph:, types:) instance.
type NodeDirective struct {
	Subgraph string   `json:"subgraph" yaml:"subgraph"`
	Types    []string `json:"types" yaml:"types"`
}

func ExtractSources(directives ast.DirectiveList) []*SourceDirective {
	var result []*SourceDirective
	for _, directive := range directives.ForNames(directiveNameSource) {
		subgraph, ok := stringArgument(directive, "subgraph")
		if !ok {
			continue
		}
		name, _ := stringArgument(directive, "name")
		result = append(result, &SourceDirective{
			Subgraph: subgraph,
			Name:     name,
		})
	}
	return result
}

func ExtractRename(directives ast.DirectiveList) (string, bool) {
	directive := directives.ForName(directiveNameRename)
	if directive == nil {
		return "", false
	}
	name, ok := stringArgument(directive, "name")
	if !ok || name == "" {
		return "", false
	}
	return name, true
}

func ExtractLookup(directives ast.DirectiveList) bool {
	return directives.ForName(directiveNameLookup) != nil
}

func ExtractIs(directives ast.DirectiveList) (string, bool) {
	directive := directives.ForName(directiveNameIs)
	if directive == nil {
		return "", false
	}
	return stringArgument(directive, "field")
}

func ExtractRequire(directives ast.DirectiveList) (string, bool) {
	directive := directives.ForName(directiveNameRequire)
	if directive == nil {
		return "", false
	}
	return stringArgument(directive, "field")
}

func ExtractDeprecation(directives ast.DirectiveList) *Deprecation {
	directive := directives.ForName(directiveNameDeprecated)
	if directive == nil {
		return nil
	}
	reason, ok := stringArgument(directive, "reason")
	if !ok {
		reason = defaultDeprecationReason
	}
	return &Deprecation{Reason: reason}
}

func ExtractTags(directives ast.DirectiveList) []string {
	var result []string
	for _, directive := range directives.ForNames(directiveNameTag) {
		name, ok := stringArgument(directive, "name")
		if !ok {
			continue
		}
		result = append(result, name)
	}
	return result
}

// IsInternal reports whether the member is private to its subgraph.
func IsInternal(directives ast.DirectiveList) bool {
	return directives.ForName(directiveNameInternal) != nil
}

func ExtractSpecifiedBy(directives ast.DirectiveList) string {
	directive := directives.ForName(directiveNameSpecifiedBy)
	if directive == nil {
		return ""
	}
	url, _ := stringArgument(directive, "url")
	return url
}

func ExtractResolvers(directives ast.DirectiveList) []*ResolverDirective {
	var result []*ResolverDirective
	for _, directive := range directives.ForNames(directiveNameResolver) {
		subgraph, ok := stringArgument(directive, "subgraph")
		if !ok {
			continue
		}
		operation, ok := stringArgument(directive, "operation")
		if !ok {
			continue
		}
		kind, _ := stringArgument(directive, "kind")
		if kind == "" {
			kind = string(ResolverKindFetch)
		}
		result = append(result, &ResolverDirective{
			Subgraph:  subgraph,
			Operation: operation,
			Kind:      ResolverKind(kind),
		})
	}
	return result
}

func ExtractVariables(directives ast.DirectiveList) []*Variable {
	var result []*Variable
	for _, directive := range directives.ForNames(directiveNameVariable) {
		subgraph, ok := stringArgument(directive, "subgraph")
		if !ok {
			continue
		}
		name, ok := stringArgument(directive, "name")
		if !ok {
			continue
		}
		selection, _ := stringArgument(directive, "select")
		argument, _ := stringArgument(directive, "argument")
		result = append(result, &Variable{
			Subgraph: subgraph,
			Name:     name,
			Select:   selection,
			Argument: argument,
		})
	}
	return result
}

func ExtractNodes(directives ast.DirectiveList) []*NodeDirective {
	var result []*NodeDirective
	for _, directive := range directives.ForNames(directiveNameNode) {
		subgraph, ok := stringArgument(directive, "subgraph")
		if !ok {
			continue
		}
		result = append(result, &NodeDirective{
			Subgraph: subgraph,
			Types:    stringListArgument(directive, "types"),
		})
	}
	return result
}

func stringArgument(directive *ast.Directive, name string) (string, bool) {
	arg := directive.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return "", false
	}
	switch arg.Value.Kind {
	case ast.StringValue, ast.BlockValue, ast.EnumValue:
		return arg.Value.Raw, true
	default:
		return "", false
	}
}

func stringListArgument(directive *ast.Directive, name string) []string {
	arg := directive.Arguments.ForName(name)
	if arg == nil || arg.Value == nil {
		return nil
	}
	switch arg.Value.Kind {
	case ast.StringValue, ast.BlockValue:
		// list input coercion
		return []string{arg.Value.Raw}
	case ast.ListValue:
		result := make([]string, 0, len(arg.Value.Children))
		for _, child := range arg.Value.Children {
			if child.Value == nil || child.Value.Kind != ast.StringValue {
				continue
			}
			result = append(result, child.Value.Raw)
		}
		return result
	default:
		return nil
	}
}

func stringValue(raw string) *ast.Value {
	return &ast.Value{
		Raw:      raw,
		Kind:     ast.StringValue,
		Position: blankPos,
	}
}

func enumValue(raw string) *ast.Value {
	return &ast.Value{
		Raw:      raw,
		Kind:     ast.EnumValue,
		Position: blankPos,
	}
}

func stringListValue(values []string) *ast.Value {
	value := &ast.Value{
		Kind:     ast.ListValue,
		Position: blankPos,
	}
	for _, v := range values {
		value.Children = append(value.Children, &ast.ChildValue{
			Value:    stringValue(v),
			Position: blankPos,
		})
	}
	return value
}

func newDirective(name string, args ...*ast.Argument) *ast.Directive {
	return &ast.Directive{
		Name:      name,
		Arguments: args,
		Position:  blankPos,
	}
}

func newArgument(name string, value *ast.Value) *ast.Argument {
	return &ast.Argument{
		Name:     name,
		Value:    value,
		Position: blankPos,
	}
}

func sourceDirective(subgraph, localName string) *ast.Directive {
	args := []*ast.Argument{newArgument("subgraph", stringValue(subgraph))}
	if localName != "" {
		args = append(args, newArgument("name", stringValue(localName)))
	}
	return newDirective(directiveNameSource, args...)
}

func resolverDirective(resolver *Resolver) *ast.Directive {
	return newDirective(
		directiveNameResolver,
		newArgument("subgraph", stringValue(resolver.Subgraph)),
		newArgument("operation", stringValue(resolver.OperationText())),
		newArgument("kind", enumValue(string(resolver.Kind))),
	)
}

func variableDirective(variable *Variable) *ast.Directive {
	args := []*ast.Argument{
		newArgument("subgraph", stringValue(variable.Subgraph)),
		newArgument("name", stringValue(variable.Name)),
	}
	if variable.Select != "" {
		args = append(args, newArgument("select", stringValue(variable.Select)))
	}
	if variable.Argument != "" {
		args = append(args, newArgument("argument", stringValue(variable.Argument)))
	}
	return newDirective(directiveNameVariable, args...)
}

func nodeDirective(node *NodeDirective) *ast.Directive {
	return newDirective(
		directiveNameNode,
		newArgument("subgraph", stringValue(node.Subgraph)),
		newArgument("types", stringListValue(node.Types)),
	)
}

func deprecatedDirective(deprecation *Deprecation) *ast.Directive {
	if deprecation.Reason == defaultDeprecationReason {
		return newDirective(directiveNameDeprecated)
	}
	return newDirective(directiveNameDeprecated, newArgument("reason", stringValue(deprecation.Reason)))
}

package composition

import (
	"bytes"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"
	"github.com/vvakame/fusion/internal/graphql"
)

// CompositeSchema is the result of a composition run.
type CompositeSchema struct {
	// Schema is the composite schema annotated with routing directives.
	Schema         *ast.Schema
	Satisfiability *SatisfiabilityReport

	cctx *CompositionContext
}

func (s *CompositeSchema) Settings() Settings {
	return s.cctx.settings
}

func (s *CompositeSchema) RootTypes() RootTypes {
	return s.cctx.rootTypes
}

// Type returns the merged type for name, or nil when it was never declared or failed to merge.
func (s *CompositeSchema) Type(name string) TypeDefinition {
	return s.cctx.Type(name)
}

// TypesByKind returns the merged types of kind sorted by name. Built-in scalars are included.
func (s *CompositeSchema) TypesByKind(kind ast.DefinitionKind) []TypeDefinition {
	var result []TypeDefinition
	for _, name := range s.cctx.registry.Names() {
		t := s.cctx.Type(name)
		if t == nil || t.Kind() != kind {
			continue
		}
		result = append(result, t)
	}
	return result
}

func (s *CompositeSchema) Directive(name string) *DirectiveType {
	return s.cctx.Directive(name)
}

// Directives returns the user directive definitions re-exported on the composite schema.
func (s *CompositeSchema) Directives() []*DirectiveType {
	var result []*DirectiveType
	for _, name := range sortedKeys(s.cctx.directives) {
		directive := s.cctx.directives[name]
		if directive.exported() {
			result = append(result, directive)
		}
	}
	return result
}

func (s *CompositeSchema) QueryType() *ObjectType {
	return s.rootType(s.cctx.rootTypes.Query)
}

func (s *CompositeSchema) MutationType() *ObjectType {
	return s.rootType(s.cctx.rootTypes.Mutation)
}

func (s *CompositeSchema) SubscriptionType() *ObjectType {
	return s.rootType(s.cctx.rootTypes.Subscription)
}

func (s *CompositeSchema) rootType(name string) *ObjectType {
	obj, ok := s.cctx.Type(name).(*ObjectType)
	if !ok {
		return nil
	}
	return obj
}

// Lookups returns every lookup synthesized for the entity typeName, private ones included.
func (s *CompositeSchema) Lookups(typeName string) []*Lookup {
	t := s.cctx.complexType(typeName)
	if t == nil {
		return nil
	}
	return t.Lookups
}

// Nodes returns the per-subgraph node registrations. It is empty unless global object identification is enabled.
func (s *CompositeSchema) Nodes() []*NodeDirective {
	return s.cctx.nodes
}

func (s *CompositeSchema) Conflicts() []*MergeConflict {
	return s.cctx.Conflicts()
}

// SDL renders the composite schema. The output is stable for a given set of subgraphs.
func (s *CompositeSchema) SDL() string {
	var buf bytes.Buffer
	formatter.NewFormatter(&buf).FormatSchema(s.Schema)
	return buf.String()
}

func buildSchema(cctx *CompositionContext) *ast.Schema {
	schema := &ast.Schema{
		Types:         make(map[string]*ast.Definition),
		Directives:    make(map[string]*ast.DirectiveDefinition),
		PossibleTypes: make(map[string][]*ast.Definition),
		Implements:    make(map[string][]*ast.Definition),
	}

	for _, def := range graphql.SpecifiedScalarTypes {
		schema.Types[def.Name] = def
	}
	for _, def := range graphql.IntrospectionTypes {
		schema.Types[def.Name] = def
	}
	for _, def := range graphql.SpecifiedDirectives {
		schema.Directives[def.Name] = def
	}
	for _, def := range FusionDirectives {
		schema.Directives[def.Name] = def
	}
	schema.Types[ResolverKindEnum.Name] = copyDefinition(ResolverKindEnum)

	for _, directive := range cctx.directives {
		if !directive.exported() {
			continue
		}
		schema.Directives[directive.Name] = buildDirectiveDefinition(directive)
	}

	for _, name := range cctx.registry.Names() {
		handle := cctx.registry.Lookup(name)
		if handle.Failed || handle.Type == nil || handle.BuiltIn {
			continue
		}
		if isBuiltInScalarName(name) {
			// declared by a subgraph, still rendered as the specified scalar
			continue
		}
		schema.Types[name] = buildDefinition(handle.Type)
	}

	for _, name := range sortedKeys(schema.Types) {
		def := schema.Types[name]
		switch def.Kind {
		case ast.Object:
			schema.AddPossibleType(def.Name, def)
			for _, iface := range def.Interfaces {
				if ifaceDef := schema.Types[iface]; ifaceDef != nil {
					schema.AddPossibleType(iface, def)
					schema.AddImplements(def.Name, ifaceDef)
				}
			}
		case ast.Interface:
			for _, iface := range def.Interfaces {
				if ifaceDef := schema.Types[iface]; ifaceDef != nil {
					schema.AddImplements(def.Name, ifaceDef)
				}
			}
		case ast.Union:
			for _, member := range def.Types {
				if memberDef := schema.Types[member]; memberDef != nil {
					schema.AddPossibleType(def.Name, memberDef)
				}
			}
		}
	}

	rootFor := func(name string) *ast.Definition {
		def := schema.Types[name]
		if def == nil || def.Kind != ast.Object {
			return nil
		}
		return def
	}
	schema.Query = rootFor(cctx.rootTypes.Query)
	schema.Mutation = rootFor(cctx.rootTypes.Mutation)
	schema.Subscription = rootFor(cctx.rootTypes.Subscription)

	for _, node := range cctx.nodes {
		schema.SchemaDirectives = append(schema.SchemaDirectives, nodeDirective(node))
	}

	return graphql.LexicographicSortSchema(schema)
}

func buildDirectiveDefinition(directive *DirectiveType) *ast.DirectiveDefinition {
	def := &ast.DirectiveDefinition{
		Description:  directive.Description,
		Name:         directive.Name,
		IsRepeatable: directive.Repeatable,
		Locations:    append([]ast.DirectiveLocation{}, directive.Locations...),
		Position:     blankPos,
	}
	for _, arg := range directive.Arguments {
		def.Arguments = append(def.Arguments, buildArgumentDefinition(arg))
	}
	return def
}

func buildArgumentDefinition(arg *Argument) *ast.ArgumentDefinition {
	def := &ast.ArgumentDefinition{
		Description:  arg.Description,
		Name:         arg.Name,
		DefaultValue: arg.DefaultValue,
		Type:         arg.Type.ASTType(),
		Position:     blankPos,
	}
	if arg.Deprecation != nil {
		def.Directives = append(def.Directives, deprecatedDirective(arg.Deprecation))
	}
	return def
}

func buildDefinition(t TypeDefinition) *ast.Definition {
	base := t.base()
	def := &ast.Definition{
		Kind:        t.Kind(),
		Description: base.Description,
		Name:        base.Name,
		Position:    blankPos,
	}
	for _, source := range bySubgraph(base.Sources, func(s *TypeSource) string { return s.Subgraph }) {
		def.Directives = append(def.Directives, sourceDirective(source.Subgraph, source.LocalName))
	}

	switch t := t.(type) {
	case *ScalarType:
		if t.SpecifiedByURL != "" {
			def.Directives = append(def.Directives, newDirective(
				directiveNameSpecifiedBy,
				newArgument("url", stringValue(t.SpecifiedByURL)),
			))
		}
	case *EnumType:
		for _, value := range t.Values {
			valueDef := &ast.EnumValueDefinition{
				Description: value.Description,
				Name:        value.Name,
				Position:    blankPos,
			}
			for _, subgraph := range sortedCopy(value.Sources) {
				valueDef.Directives = append(valueDef.Directives, sourceDirective(subgraph, ""))
			}
			if value.Deprecation != nil {
				valueDef.Directives = append(valueDef.Directives, deprecatedDirective(value.Deprecation))
			}
			def.EnumValues = append(def.EnumValues, valueDef)
		}
	case *InputObjectType:
		for _, field := range t.Fields {
			fieldDef := &ast.FieldDefinition{
				Description:  field.Description,
				Name:         field.Name,
				DefaultValue: field.DefaultValue,
				Type:         field.Type.ASTType(),
				Position:     blankPos,
			}
			for _, subgraph := range sortedCopy(field.Sources) {
				fieldDef.Directives = append(fieldDef.Directives, sourceDirective(subgraph, ""))
			}
			if field.Deprecation != nil {
				fieldDef.Directives = append(fieldDef.Directives, deprecatedDirective(field.Deprecation))
			}
			def.Fields = append(def.Fields, fieldDef)
		}
	case *ObjectType:
		buildComplexDefinition(def, &t.ComplexType)
	case *InterfaceType:
		buildComplexDefinition(def, &t.ComplexType)
	case *UnionType:
		for _, member := range t.Members {
			def.Types = append(def.Types, member.Name)
		}
	default:
		panic("unexpected type definition")
	}

	return def
}

func buildComplexDefinition(def *ast.Definition, t *ComplexType) {
	def.Interfaces = append([]string{}, t.Interfaces...)
	def.Directives = append(def.Directives, routingDirectives(t.Resolvers, t.Variables)...)

	for _, field := range t.Fields {
		fieldDef := &ast.FieldDefinition{
			Description: field.Description,
			Name:        field.Name,
			Type:        field.Type.ASTType(),
			Position:    blankPos,
		}
		for _, arg := range field.Arguments {
			fieldDef.Arguments = append(fieldDef.Arguments, buildArgumentDefinition(arg))
		}
		for _, source := range bySubgraph(field.Sources, func(s *SourceField) string { return s.Subgraph }) {
			fieldDef.Directives = append(fieldDef.Directives, sourceDirective(source.Subgraph, source.LocalName))
		}
		fieldDef.Directives = append(fieldDef.Directives, routingDirectives(field.Resolvers, field.Variables)...)
		if field.Deprecation != nil {
			fieldDef.Directives = append(fieldDef.Directives, deprecatedDirective(field.Deprecation))
		}
		def.Fields = append(def.Fields, fieldDef)
	}
}

// routingDirectives renders resolvers and variables grouped by directive, each group ordered by subgraph.
func routingDirectives(resolvers []*Resolver, variables []*Variable) ast.DirectiveList {
	var directives ast.DirectiveList
	for _, resolver := range bySubgraph(resolvers, func(r *Resolver) string { return r.Subgraph }) {
		directives = append(directives, resolverDirective(resolver))
	}
	for _, variable := range bySubgraph(variables, func(v *Variable) string { return v.Subgraph }) {
		directives = append(directives, variableDirective(variable))
	}
	return directives
}

// bySubgraph returns a copy of list stably sorted by subgraph name.
func bySubgraph[T any](list []T, subgraph func(T) string) []T {
	result := append([]T{}, list...)
	sort.SliceStable(result, func(i, j int) bool {
		return subgraph(result[i]) < subgraph(result[j])
	})
	return result
}

func sortedCopy(list []string) []string {
	result := append([]string{}, list...)
	sort.Strings(result)
	return result
}

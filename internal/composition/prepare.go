package composition

import (
	"context"
	"sort"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/fusion/internal/log"
)

// preparedSubgraph is a normalized copy of one source schema with every name rewritten to composite names.
type preparedSubgraph struct {
	Name string

	definitions          map[string]*ast.Definition
	directiveDefinitions ast.DirectiveDefinitionList
	// composite type name to the subgraph's local type name
	localNames map[string]string
	// composite type name to composite field name to local field name
	fieldLocalNames map[string]map[string]string
}

func (s *preparedSubgraph) localTypeName(compositeName string) string {
	if local, ok := s.localNames[compositeName]; ok {
		return local
	}
	return compositeName
}

func (s *preparedSubgraph) localFieldName(typeName, fieldName string) string {
	if local, ok := s.fieldLocalNames[typeName][fieldName]; ok {
		return local
	}
	return fieldName
}

func (s *preparedSubgraph) localType(typ *ast.Type) *ast.Type {
	return renameType(typ, s.localTypeName)
}

func validateSourceSchemas(sources []*SourceSchema) error {
	if len(sources) == 0 {
		return newBuildError(BuildErrorInvalidInput, "", "", "at least one source schema is required")
	}
	seen := make(map[string]bool)
	for _, source := range sources {
		if source == nil {
			return newBuildError(BuildErrorInvalidInput, "", "", "source schema must not be nil")
		}
		if source.Name == "" {
			return newBuildError(BuildErrorInvalidInput, "", "", "source schema name must not be empty")
		}
		if source.Document == nil {
			return newBuildError(BuildErrorInvalidInput, "", source.Name, "source schema %s has no document", source.Name)
		}
		if seen[source.Name] {
			return newBuildError(BuildErrorInvalidInput, "", source.Name, "source schema %s is declared more than once", source.Name)
		}
		seen[source.Name] = true
	}
	return nil
}

func sortSourceSchemas(sources []*SourceSchema) []*SourceSchema {
	result := append([]*SourceSchema{}, sources...)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func schemaOperationTypes(doc *ast.SchemaDocument) ast.OperationTypeDefinitionList {
	var result ast.OperationTypeDefinitionList
	for _, schemaDef := range doc.Schema {
		result = append(result, schemaDef.OperationTypes...)
	}
	for _, schemaDef := range doc.SchemaExtension {
		result = append(result, schemaDef.OperationTypes...)
	}
	return result
}

// operationType returns the root type a schema block declares for op, or nil.
func operationType(doc *ast.SchemaDocument, op ast.Operation) *ast.OperationTypeDefinition {
	for _, opType := range schemaOperationTypes(doc) {
		if opType.Operation == op {
			return opType
		}
	}
	return nil
}

// localRootTypes returns the root type names a subgraph uses for itself.
func localRootTypes(doc *ast.SchemaDocument) map[ast.Operation]string {
	result := make(map[ast.Operation]string)
	for _, opType := range schemaOperationTypes(doc) {
		result[opType.Operation] = opType.Type
	}
	defaults := defaultRootTypes()
	for _, op := range []ast.Operation{ast.Query, ast.Mutation, ast.Subscription} {
		if _, ok := result[op]; ok {
			continue
		}
		name := defaults.forOperation(op)
		if doc.Definitions.ForName(name) != nil || doc.Extensions.ForName(name) != nil {
			result[op] = name
		}
	}
	return result
}

// compositeRootTypes picks the root type names of the composite schema.
// The first explicit schema block in subgraph name order wins and distinct later ones are reported.
func compositeRootTypes(sources []*SourceSchema) (RootTypes, []*MergeConflict) {
	roots := defaultRootTypes()
	var conflicts []*MergeConflict

	for _, op := range []ast.Operation{ast.Query, ast.Mutation, ast.Subscription} {
		var winner, winnerSubgraph string
		for _, source := range sources {
			opType := operationType(source.Document, op)
			if opType == nil {
				continue
			}
			if winner == "" {
				winner = opType.Type
				winnerSubgraph = source.Name
				continue
			}
			if opType.Type != winner {
				conflicts = append(conflicts, newMergeConflict(
					CodeRootOperationTypeConflict,
					opType.Type,
					[]string{winnerSubgraph, source.Name},
					"%s root type is declared as %s in subgraph %s and as %s in subgraph %s",
					op, winner, winnerSubgraph, opType.Type, source.Name,
				))
			}
		}
		if winner == "" {
			continue
		}
		switch op {
		case ast.Query:
			roots.Query = winner
		case ast.Mutation:
			roots.Mutation = winner
		case ast.Subscription:
			roots.Subscription = winner
		}
	}

	return roots, conflicts
}

func prepareSubgraph(ctx context.Context, settings Settings, roots RootTypes, source *SourceSchema) (*preparedSubgraph, error) {
	logger := log.ForPhase(ctx, "prepare").WithValues("subgraph", source.Name)

	prepared := &preparedSubgraph{
		Name:            source.Name,
		definitions:     make(map[string]*ast.Definition),
		localNames:      make(map[string]string),
		fieldLocalNames: make(map[string]map[string]string),
	}

	local := make(map[string]*ast.Definition)
	var order []string
	collect := func(def *ast.Definition) error {
		if strings.HasPrefix(def.Name, "__") {
			return nil
		}
		existing, ok := local[def.Name]
		if !ok {
			local[def.Name] = copyDefinition(def)
			order = append(order, def.Name)
			return nil
		}
		if existing.Kind != def.Kind {
			return newBuildError(BuildErrorInvalidInput, def.Name, source.Name, "%s is declared as both %s and %s in subgraph %s", def.Name, existing.Kind, def.Kind, source.Name)
		}
		ext := copyDefinition(def)
		existing.Description = firstDescription(existing.Description, ext.Description)
		existing.Directives = append(existing.Directives, ext.Directives...)
		existing.Interfaces = append(existing.Interfaces, ext.Interfaces...)
		existing.Fields = append(existing.Fields, ext.Fields...)
		existing.Types = append(existing.Types, ext.Types...)
		existing.EnumValues = append(existing.EnumValues, ext.EnumValues...)
		return nil
	}
	for _, def := range source.Document.Definitions {
		if err := collect(def); err != nil {
			return nil, err
		}
	}
	for _, def := range source.Document.Extensions {
		if err := collect(def); err != nil {
			return nil, err
		}
	}

	if len(settings.ExcludeByTag) != 0 {
		excludeByTag(settings, local)
		logger.V(1).Info("applied tag exclusion", "remaining", len(local))
	}

	renames := make(map[string]string)
	localRoots := localRootTypes(source.Document)
	for op, name := range localRoots {
		if compositeName := roots.forOperation(op); compositeName != name {
			renames[name] = compositeName
		}
	}
	for name, def := range local {
		if compositeName, ok := ExtractRename(def.Directives); ok {
			renames[name] = compositeName
		}
	}
	rename := func(name string) string {
		if compositeName, ok := renames[name]; ok {
			return compositeName
		}
		return name
	}

	for _, name := range order {
		def, ok := local[name]
		if !ok {
			continue
		}
		compositeName := rename(name)
		if compositeName != name {
			prepared.localNames[compositeName] = name
			logger.V(1).Info("renamed type", "local", name, "type", compositeName)
		}
		def.Name = compositeName
		for i, iface := range def.Interfaces {
			def.Interfaces[i] = rename(iface)
		}
		for i, member := range def.Types {
			def.Types[i] = rename(member)
		}
		for _, field := range def.Fields {
			field.Type = renameType(field.Type, rename)
			for _, arg := range field.Arguments {
				arg.Type = renameType(arg.Type, rename)
			}
			if fieldName, ok := ExtractRename(field.Directives); ok && fieldName != field.Name {
				if prepared.fieldLocalNames[compositeName] == nil {
					prepared.fieldLocalNames[compositeName] = make(map[string]string)
				}
				prepared.fieldLocalNames[compositeName][fieldName] = field.Name
				field.Name = fieldName
			}
		}
		if _, ok := prepared.definitions[compositeName]; ok {
			return nil, newBuildError(BuildErrorInvalidInput, compositeName, source.Name, "more than one type maps to %s in subgraph %s", compositeName, source.Name)
		}
		prepared.definitions[compositeName] = def
	}

	for _, directiveDef := range source.Document.Directives {
		d := *directiveDef
		d.Arguments = make(ast.ArgumentDefinitionList, 0, len(directiveDef.Arguments))
		for _, arg := range directiveDef.Arguments {
			a := *arg
			a.Type = renameType(arg.Type, rename)
			d.Arguments = append(d.Arguments, &a)
		}
		prepared.directiveDefinitions = append(prepared.directiveDefinitions, &d)
	}

	return prepared, nil
}

// excludeByTag drops tagged definitions and members, then members referencing dropped types.
func excludeByTag(settings Settings, defs map[string]*ast.Definition) {
	declared := make(map[string]bool)
	for name := range defs {
		declared[name] = true
	}
	for name, def := range defs {
		if settings.excluded(ExtractTags(def.Directives)) {
			delete(defs, name)
		}
	}

	removed := func(typ *ast.Type) bool {
		name := namedTypeOf(typ)
		_, ok := defs[name]
		return declared[name] && !ok
	}

	for _, def := range defs {
		fields := def.Fields[:0]
		for _, field := range def.Fields {
			if settings.excluded(ExtractTags(field.Directives)) || removed(field.Type) {
				continue
			}
			args := field.Arguments[:0]
			argRemoved := false
			for _, arg := range field.Arguments {
				if settings.excluded(ExtractTags(arg.Directives)) {
					continue
				}
				if removed(arg.Type) {
					argRemoved = true
					break
				}
				args = append(args, arg)
			}
			if argRemoved {
				continue
			}
			field.Arguments = args
			fields = append(fields, field)
		}
		def.Fields = fields

		values := def.EnumValues[:0]
		for _, value := range def.EnumValues {
			if settings.excluded(ExtractTags(value.Directives)) {
				continue
			}
			values = append(values, value)
		}
		def.EnumValues = values

		interfaces := def.Interfaces[:0]
		for _, iface := range def.Interfaces {
			if _, ok := defs[iface]; ok || !declared[iface] {
				interfaces = append(interfaces, iface)
			}
		}
		def.Interfaces = interfaces

		members := def.Types[:0]
		for _, member := range def.Types {
			if _, ok := defs[member]; ok || !declared[member] {
				members = append(members, member)
			}
		}
		def.Types = members
	}
}

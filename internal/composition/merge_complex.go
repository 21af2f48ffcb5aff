package composition

import (
	"context"

	"github.com/vektah/gqlparser/v2/ast"
)

// complexTypeMergeHandler merges object and interface types.
// Fields are unioned; shared fields and their shared arguments must agree on base types.
type complexTypeMergeHandler struct {
	kind ast.DefinitionKind
}

func (h *complexTypeMergeHandler) Kind() ast.DefinitionKind {
	return h.kind
}

type fieldDeclaration struct {
	subgraph string
	field    *ast.FieldDefinition
}

func (h *complexTypeMergeHandler) Merge(ctx context.Context, cctx *CompositionContext, name string, contributions []*Contribution) (TypeDefinition, []*MergeConflict, error) {
	complexType := ComplexType{
		typeBase: typeBaseFrom(name, contributions),
	}

	var fieldNames []string
	declarations := make(map[string][]*fieldDeclaration)
	for _, c := range contributions {
		complexType.Interfaces = appendUnique(complexType.Interfaces, c.Definition.Interfaces...)
		for _, field := range c.Definition.Fields {
			if IsInternal(field.Directives) {
				continue
			}
			if _, ok := declarations[field.Name]; !ok {
				fieldNames = append(fieldNames, field.Name)
			}
			declarations[field.Name] = append(declarations[field.Name], &fieldDeclaration{
				subgraph: c.Subgraph,
				field:    field,
			})
		}
	}

	var conflicts []*MergeConflict
	for _, fieldName := range fieldNames {
		field, fieldConflicts, err := h.mergeField(cctx, name, declarations[fieldName])
		if err != nil {
			return nil, nil, err
		}
		if len(fieldConflicts) != 0 {
			conflicts = append(conflicts, fieldConflicts...)
			continue
		}
		complexType.Fields = append(complexType.Fields, field)
	}
	if len(conflicts) != 0 {
		return nil, conflicts, nil
	}

	switch h.kind {
	case ast.Object:
		return &ObjectType{ComplexType: complexType}, nil, nil
	case ast.Interface:
		return &InterfaceType{ComplexType: complexType}, nil, nil
	default:
		panic("unexpected kind: " + h.kind)
	}
}

func (h *complexTypeMergeHandler) mergeField(cctx *CompositionContext, typeName string, declarations []*fieldDeclaration) (*Field, []*MergeConflict, error) {
	first := declarations[0]
	field := &Field{
		Name:     first.field.Name,
		typeNode: copyType(first.field.Type),
	}

	var conflicts []*MergeConflict
	for _, decl := range declarations[1:] {
		if !sameBaseType(field.typeNode, decl.field.Type) {
			conflicts = append(conflicts, newMergeConflict(
				CodeFieldTypeMismatch,
				typeName,
				[]string{first.subgraph, decl.subgraph},
				"field %s.%s has type %s in subgraph %s but %s in subgraph %s",
				typeName, field.Name, first.field.Type.String(), first.subgraph, decl.field.Type.String(), decl.subgraph,
			))
			continue
		}
		field.typeNode = leastRestrictiveType(field.typeNode, decl.field.Type)
	}

	publicArgs := make([]ast.ArgumentDefinitionList, len(declarations))
	for i, decl := range declarations {
		var requirements *FieldRequirements
		for _, arg := range decl.field.Arguments {
			selection, ok := ExtractRequire(arg.Directives)
			if !ok {
				publicArgs[i] = append(publicArgs[i], arg)
				continue
			}
			if requirements == nil {
				requirements = &FieldRequirements{Subgraph: decl.subgraph}
			}
			if err := addRequirement(requirements, typeName, field.Name, arg, selection); err != nil {
				return nil, nil, err
			}
		}
		if requirements != nil {
			requirements.SelectionSet = mergePathSelections(requirements.Paths)
		}

		localName := ""
		if subgraph := cctx.subgraph(decl.subgraph); subgraph != nil {
			if local := subgraph.localFieldName(typeName, field.Name); local != field.Name {
				localName = local
			}
		}
		field.Sources = append(field.Sources, &SourceField{
			Subgraph:     decl.subgraph,
			LocalName:    localName,
			Requirements: requirements,
		})
		field.Description = firstDescription(field.Description, decl.field.Description)
		field.Deprecation = firstDeprecation(field.Deprecation, ExtractDeprecation(decl.field.Directives))
	}

	// arguments present in every declaring subgraph
	for _, arg := range publicArgs[0] {
		merged := &Argument{
			Name:         arg.Name,
			Description:  arg.Description,
			DefaultValue: arg.DefaultValue,
			Deprecation:  ExtractDeprecation(arg.Directives),
			typeNode:     copyType(arg.Type),
		}
		shared := true
		for i, decl := range declarations[1:] {
			other := publicArgs[i+1].ForName(arg.Name)
			if other == nil {
				shared = false
				break
			}
			if !sameBaseType(merged.typeNode, other.Type) {
				conflicts = append(conflicts, newMergeConflict(
					CodeArgumentTypeMismatch,
					typeName,
					[]string{first.subgraph, decl.subgraph},
					"argument %s.%s(%s:) has type %s in subgraph %s but %s in subgraph %s",
					typeName, field.Name, arg.Name, arg.Type.String(), first.subgraph, other.Type.String(), decl.subgraph,
				))
				shared = false
				break
			}
			merged.typeNode = leastRestrictiveType(merged.typeNode, other.Type)
			merged.Description = firstDescription(merged.Description, other.Description)
			merged.Deprecation = firstDeprecation(merged.Deprecation, ExtractDeprecation(other.Directives))
			if merged.DefaultValue == nil {
				merged.DefaultValue = other.DefaultValue
			}
		}
		if shared {
			field.Arguments = append(field.Arguments, merged)
		}
	}

	if len(conflicts) != 0 {
		return nil, conflicts, nil
	}
	return field, nil, nil
}

func addRequirement(requirements *FieldRequirements, typeName, fieldName string, arg *ast.ArgumentDefinition, selection string) error {
	selectionSet, err := parseSelections(selection)
	if err != nil {
		return newBuildError(BuildErrorDirectiveShapeMismatch, typeName, requirements.Subgraph, "@require(field: %q) on %s.%s(%s:) is not a valid selection: %s", selection, typeName, fieldName, arg.Name, err.Error())
	}
	paths, err := selectionPaths(selectionSet)
	if err != nil {
		return newBuildError(BuildErrorDirectiveShapeMismatch, typeName, requirements.Subgraph, "@require(field: %q) on %s.%s(%s:) is not a valid selection: %s", selection, typeName, fieldName, arg.Name, err.Error())
	}

	requirements.Arguments = append(requirements.Arguments, &RequiredArgument{
		Name:  arg.Name,
		Type:  copyType(arg.Type),
		Paths: paths,
	})
	requirements.Paths = append(requirements.Paths, paths...)
	return nil
}

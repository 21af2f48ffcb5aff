package composition

import (
	"context"

	"github.com/go-logr/logr"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/fusion/internal/graphql"
	"github.com/vvakame/fusion/internal/log"
)

func isBuiltInScalarName(name string) bool {
	return graphql.IsSpecifiedScalarType(name)
}

// registerStubs is the first pass over every prepared subgraph.
// It records contributions per name and creates stubs for every referenced name.
func registerStubs(cctx *CompositionContext) {
	registry := cctx.registry
	for _, subgraph := range cctx.subgraphs {
		for _, name := range sortedKeys(subgraph.definitions) {
			def := subgraph.definitions[name]
			registry.addContribution(def.Kind, &Contribution{
				Subgraph:   subgraph.Name,
				LocalName:  subgraph.localTypeName(name),
				Definition: def,
			})
			for _, iface := range def.Interfaces {
				registry.EnsureStub(iface, "")
			}
			for _, member := range def.Types {
				registry.EnsureStub(member, "")
			}
			for _, field := range def.Fields {
				registry.Resolve(field.Type)
				for _, arg := range field.Arguments {
					registry.Resolve(arg.Type)
				}
			}
		}
		for _, directiveDef := range subgraph.directiveDefinitions {
			for _, arg := range directiveDef.Arguments {
				registry.Resolve(arg.Type)
			}
		}
	}
}

// completeTypes is phase two. Every stub exists, so each type resolves its references and is completed in place.
func completeTypes(ctx context.Context, cctx *CompositionContext) error {
	logger := log.ForPhase(ctx, "complete")
	registry := cctx.registry

	for _, name := range registry.Names() {
		handle := registry.Lookup(name)
		if handle.Declared() {
			continue
		}
		if !isBuiltInScalarName(name) {
			return newBuildError(BuildErrorUnresolvableType, name, "", "type %s is referenced but never declared", name)
		}
		handle.Kind = ast.Scalar
		handle.BuiltIn = true
		handle.Type = &ScalarType{typeBase: typeBase{Name: name}}
		logger.V(1).Info("injected built-in scalar", "type", name)
	}

	// resolve returns nil when the reference points at a type excluded by a conflict
	resolve := func(typ *ast.Type) (*TypeRef, error) {
		named := registry.Lookup(namedTypeOf(typ))
		if named == nil || !named.Declared() {
			return nil, newBuildError(BuildErrorUnresolvableType, namedTypeOf(typ), "", "type %s is referenced but never declared", namedTypeOf(typ))
		}
		if named.Failed {
			return nil, nil
		}
		return registry.Resolve(typ), nil
	}

	relaxInterfaceFields(logger, cctx)

	// pruning can empty a type, which then fails and prunes its referrers in turn
	for {
		emptied, err := pruneFailedReferences(logger, cctx, resolve)
		if err != nil {
			return err
		}
		if len(emptied) == 0 {
			break
		}
		for _, name := range emptied {
			logger.Info("excluded type left without members", "type", name)
			registry.Lookup(name).Failed = true
		}
	}

	for _, directiveName := range sortedKeys(cctx.directives) {
		directive := cctx.directives[directiveName]
		for _, arg := range directive.Arguments {
			ref, err := resolve(arg.typeNode)
			if err != nil {
				return err
			}
			if ref == nil {
				logger.Info("dropped directive referencing failed type", "directive", directiveName)
				delete(cctx.directives, directiveName)
				break
			}
			arg.Type = ref
		}
	}

	return nil
}

// pruneFailedReferences resolves the references of every live type and drops members pointing at failed types.
// It returns the names of the types left without any member.
func pruneFailedReferences(logger logr.Logger, cctx *CompositionContext, resolve func(*ast.Type) (*TypeRef, error)) ([]string, error) {
	registry := cctx.registry

	var emptied []string
	for _, name := range registry.Names() {
		handle := registry.Lookup(name)
		if handle.Failed || handle.BuiltIn || handle.Type == nil {
			continue
		}

		var members int
		switch t := handle.Type.(type) {
		case *ScalarType:
			continue
		case *EnumType:
			members = len(t.Values)
		case *InputObjectType:
			fields := t.Fields[:0]
			for _, field := range t.Fields {
				ref, err := resolve(field.typeNode)
				if err != nil {
					return nil, err
				}
				if ref == nil {
					logger.Info("pruned input field referencing failed type", "type", name, "field", field.Name)
					continue
				}
				field.Type = ref
				fields = append(fields, field)
			}
			t.Fields = fields
			members = len(t.Fields)
		case *ObjectType:
			if err := completeComplexType(logger, cctx, &t.ComplexType, resolve); err != nil {
				return nil, err
			}
			members = len(t.Fields)
		case *InterfaceType:
			if err := completeComplexType(logger, cctx, &t.ComplexType, resolve); err != nil {
				return nil, err
			}
			members = len(t.Fields)
		case *UnionType:
			unionMembers := t.Members[:0]
			for _, member := range t.Members {
				memberHandle := registry.Lookup(member.Name)
				if memberHandle == nil || !memberHandle.Declared() {
					return nil, newBuildError(BuildErrorUnresolvableType, member.Name, "", "union %s references undeclared type %s", name, member.Name)
				}
				if memberHandle.Failed {
					continue
				}
				unionMembers = append(unionMembers, member)
			}
			t.Members = unionMembers
			members = len(t.Members)
		default:
			panic("unexpected type definition")
		}

		if members == 0 {
			emptied = append(emptied, name)
		}
	}

	return emptied, nil
}

// relaxInterfaceFields drops non-null from interface fields wherever an implementation ended up nullable.
// It repeats until stable so interfaces implementing interfaces are relaxed too.
func relaxInterfaceFields(logger logr.Logger, cctx *CompositionContext) {
	registry := cctx.registry
	for changed := true; changed; {
		changed = false
		for _, name := range registry.Names() {
			impl := cctx.complexType(name)
			if impl == nil {
				continue
			}
			for _, ifaceName := range impl.Interfaces {
				iface, ok := cctx.Type(ifaceName).(*InterfaceType)
				if !ok {
					continue
				}
				for _, ifaceField := range iface.Fields {
					implField := impl.Field(ifaceField.Name)
					if implField == nil {
						continue
					}
					relaxed, ok := relaxNullability(ifaceField.typeNode, implField.typeNode)
					if !ok {
						continue
					}
					logger.Info("relaxed interface field nullability", "type", ifaceName, "field", ifaceField.Name, "implementation", name)
					ifaceField.typeNode = relaxed
					changed = true
				}
			}
		}
	}
}

// relaxNullability returns a copy of iface without non-null at every list depth where impl is nullable.
// The second result reports whether anything was dropped.
func relaxNullability(iface, impl *ast.Type) (*ast.Type, bool) {
	if iface == nil || impl == nil || (iface.Elem == nil) != (impl.Elem == nil) {
		return iface, false
	}
	result := copyType(iface)
	changed := false
	if result.NonNull && !impl.NonNull {
		result.NonNull = false
		changed = true
	}
	if iface.Elem != nil {
		elem, elemChanged := relaxNullability(iface.Elem, impl.Elem)
		result.Elem = elem
		changed = changed || elemChanged
	}
	return result, changed
}

func completeComplexType(logger logr.Logger, cctx *CompositionContext, t *ComplexType, resolve func(*ast.Type) (*TypeRef, error)) error {
	interfaces := t.Interfaces[:0]
	for _, iface := range t.Interfaces {
		handle := cctx.registry.Lookup(iface)
		if handle == nil || !handle.Declared() {
			return newBuildError(BuildErrorUnresolvableType, iface, "", "type %s implements undeclared interface %s", t.Name, iface)
		}
		if handle.Failed {
			continue
		}
		interfaces = append(interfaces, iface)
	}
	t.Interfaces = interfaces

	fields := t.Fields[:0]
FIELDS:
	for _, field := range t.Fields {
		ref, err := resolve(field.typeNode)
		if err != nil {
			return err
		}
		if ref == nil {
			logger.Info("pruned field referencing failed type", "type", t.Name, "field", field.Name)
			continue
		}
		field.Type = ref
		for _, arg := range field.Arguments {
			argRef, err := resolve(arg.typeNode)
			if err != nil {
				return err
			}
			if argRef == nil {
				logger.Info("pruned field with argument referencing failed type", "type", t.Name, "field", field.Name, "argument", arg.Name)
				continue FIELDS
			}
			arg.Type = argRef
		}
		fields = append(fields, field)
	}
	t.Fields = fields

	return nil
}

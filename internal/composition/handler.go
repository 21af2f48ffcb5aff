package composition

import (
	"context"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/fusion/internal/log"
)

// mergeHandler merges every subgraph definition sharing one name and kind.
type mergeHandler interface {
	Kind() ast.DefinitionKind
	Merge(ctx context.Context, cctx *CompositionContext, name string, contributions []*Contribution) (TypeDefinition, []*MergeConflict, error)
}

var mergeHandlers = func() map[ast.DefinitionKind]mergeHandler {
	handlers := []mergeHandler{
		&scalarMergeHandler{},
		&enumMergeHandler{},
		&inputObjectMergeHandler{},
		&complexTypeMergeHandler{kind: ast.Object},
		&complexTypeMergeHandler{kind: ast.Interface},
		&unionMergeHandler{},
	}
	m := make(map[ast.DefinitionKind]mergeHandler, len(handlers))
	for _, h := range handlers {
		m[h.Kind()] = h
	}
	return m
}()

// checkKinds reports a kind mismatch once per name.
func checkKinds(handle *TypeHandle) *MergeConflict {
	if !handle.KindMismatch() {
		return nil
	}

	var parts []string
	for _, c := range handle.Contributions() {
		parts = append(parts, fmt.Sprintf("%s in %s", c.Definition.Kind, c.Subgraph))
	}
	return newMergeConflict(
		CodeKindMismatch,
		handle.Name,
		subgraphsOf(handle.Contributions()),
		"type %s is declared with different kinds: %s",
		handle.Name, strings.Join(parts, ", "),
	)
}

// mergeType runs phase one for a single name. Only the handle for name is mutated.
func mergeType(ctx context.Context, cctx *CompositionContext, handle *TypeHandle) error {
	logger := log.ForPhase(ctx, "merge").WithValues("type", handle.Name)

	if conflict := checkKinds(handle); conflict != nil {
		logger.Info("conflict", "code", conflict.Code, "subgraphs", conflict.Subgraphs)
		handle.Failed = true
		cctx.addConflicts(conflict)
		return nil
	}

	h, ok := mergeHandlers[handle.Kind]
	if !ok {
		return newBuildError(BuildErrorInvalidInput, handle.Name, "", "unsupported kind %s for type %s", handle.Kind, handle.Name)
	}

	merged, conflicts, err := h.Merge(ctx, cctx, handle.Name, handle.Contributions())
	if err != nil {
		return err
	}
	if len(conflicts) != 0 {
		for _, conflict := range conflicts {
			logger.Info("conflict", "code", conflict.Code, "subgraphs", conflict.Subgraphs)
			logger.V(1).Info(conflict.Message)
		}
		handle.Failed = true
		cctx.addConflicts(conflicts...)
		return nil
	}

	handle.Type = merged
	logger.V(1).Info("merged", "sources", len(handle.Contributions()))
	return nil
}

func typeBaseFrom(name string, contributions []*Contribution) typeBase {
	base := typeBase{Name: name}
	for _, c := range contributions {
		base.Description = firstDescription(base.Description, c.Definition.Description)
		localName := ""
		if c.LocalName != name {
			localName = c.LocalName
		}
		base.Sources = append(base.Sources, &TypeSource{
			Subgraph:  c.Subgraph,
			LocalName: localName,
		})
	}
	return base
}

func firstDeprecation(deprecations ...*Deprecation) *Deprecation {
	for _, d := range deprecations {
		if d != nil {
			return d
		}
	}
	return nil
}

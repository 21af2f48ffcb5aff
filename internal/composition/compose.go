package composition

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/vvakame/fusion/internal/log"
	"golang.org/x/sync/errgroup"
)

// Compose merges the source schemas into one composite schema.
//
// Merge conflicts do not stop composition. They are returned as a *multierror.Error next to a composite schema
// that excludes the conflicting types. A fatal *BuildError returns a nil schema together with the conflicts found so far.
func Compose(ctx context.Context, settings Settings, sources []*SourceSchema) (*CompositeSchema, error) {
	logger := log.ForPhase(ctx, "compose")

	if err := validateSourceSchemas(sources); err != nil {
		return nil, err
	}
	sources = sortSourceSchemas(sources)

	cctx := newCompositionContext(settings)
	fail := func(err error) (*CompositeSchema, error) {
		logger.Error(err, "composition failed")
		var errs []error
		for _, conflict := range cctx.Conflicts() {
			errs = append(errs, conflict)
		}
		errs = append(errs, err)
		return nil, multierror.Append(nil, errs...)
	}

	roots, conflicts := compositeRootTypes(sources)
	cctx.rootTypes = roots
	cctx.addConflicts(conflicts...)

	for _, source := range sources {
		subgraph, err := prepareSubgraph(ctx, settings, roots, source)
		if err != nil {
			return fail(err)
		}
		cctx.subgraphs = append(cctx.subgraphs, subgraph)
	}

	registerStubs(cctx)

	if err := mergeAll(ctx, cctx); err != nil {
		return fail(err)
	}

	if err := mergeDirectiveDefinitions(ctx, cctx); err != nil {
		return fail(err)
	}
	if err := synthesizeEntityResolvers(ctx, cctx); err != nil {
		return fail(err)
	}
	if err := bindRequirements(ctx, cctx); err != nil {
		return fail(err)
	}
	if settings.EnableGlobalObjectIdentification {
		addGlobalObjectIdentification(ctx, cctx)
	}

	if err := completeTypes(ctx, cctx); err != nil {
		return fail(err)
	}
	synthesizeRootResolvers(ctx, cctx)

	result := &CompositeSchema{cctx: cctx}
	if settings.IncludeSatisfiabilityPaths {
		result.Satisfiability = computeSatisfiability(ctx, cctx)
	}
	result.Schema = buildSchema(cctx)
	cctx.freeze()

	conflicts = cctx.Conflicts()
	logger.Info("composed", "subgraphs", len(cctx.subgraphs), "types", len(result.Schema.Types), "conflicts", len(conflicts))
	if len(conflicts) != 0 {
		errs := make([]error, 0, len(conflicts))
		for _, conflict := range conflicts {
			errs = append(errs, conflict)
		}
		return result, multierror.Append(nil, errs...)
	}

	return result, nil
}

// mergeAll runs phase one for every declared name and returns once all of them finished.
func mergeAll(ctx context.Context, cctx *CompositionContext) error {
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cctx.settings.concurrency())

	for _, name := range cctx.registry.Names() {
		handle := cctx.registry.Lookup(name)
		if len(handle.Contributions()) == 0 {
			continue
		}
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			return mergeType(egCtx, cctx, handle)
		})
	}

	return eg.Wait()
}

package fusion

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vvakame/fusion/internal/composition"
	"github.com/vvakame/fusion/internal/log"
	"golang.org/x/sync/errgroup"
)

type CompositeSchema = composition.CompositeSchema
type MergeConflict = composition.MergeConflict
type BuildError = composition.BuildError

// Conflicts returns every merge conflict carried by an error returned from Compose.
func Conflicts(err error) []*MergeConflict {
	return composition.Conflicts(err)
}

// Option customizes a Composer.
type Option func(c *Composer)

// WithHTTPClient sets the client used to fetch SDL from subgraph URLs.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Composer) {
		c.httpClient = hc
	}
}

// Composer loads subgraph schemas once and composes them on demand.
type Composer struct {
	mu sync.RWMutex

	config     *Config
	httpClient *http.Client
	sources    []*composition.SourceSchema
}

// NewComposer validates cfg and loads every subgraph schema.
func NewComposer(ctx context.Context, cfg *Config, opts ...Option) (*Composer, error) {
	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	c := &Composer{
		config: cfg,
	}
	for _, opt := range opts {
		opt(c)
	}

	err = c.Reload(ctx)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Reload reads every subgraph schema again.
func (c *Composer) Reload(ctx context.Context) error {
	logger := log.FromContext(ctx)

	c.mu.RLock()
	subgraphs := c.config.Subgraphs
	c.mu.RUnlock()

	sources := make([]*composition.SourceSchema, len(subgraphs))
	eg, egCtx := errgroup.WithContext(ctx)
	for idx, subgraph := range subgraphs {
		eg.Go(func() error {
			doc, err := c.loadSubgraph(egCtx, subgraph)
			if err != nil {
				return fmt.Errorf("subgraph %s: %w", subgraph.Name, err)
			}
			sources[idx] = &composition.SourceSchema{
				Name:     subgraph.Name,
				Document: doc,
			}
			logger.V(1).Info("loaded subgraph", "subgraph", subgraph.Name, "definitions", len(doc.Definitions), "extensions", len(doc.Extensions))
			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.sources = sources
	c.mu.Unlock()

	return nil
}

func (c *Composer) loadSubgraph(ctx context.Context, subgraph *SubgraphConfig) (*ast.SchemaDocument, error) {
	switch {
	case subgraph.Schema != "":
		return parseSchema(subgraph.Name+".graphqls", subgraph.Schema)

	case len(subgraph.SchemaFiles) != 0:
		sources := make([]*ast.Source, 0, len(subgraph.SchemaFiles))
		for _, schemaFile := range subgraph.SchemaFiles {
			b, err := os.ReadFile(schemaFile)
			if err != nil {
				return nil, err
			}
			sources = append(sources, &ast.Source{
				Name:  schemaFile,
				Input: string(b),
			})
		}
		doc, err := parser.ParseSchemas(sources...)
		if err != nil {
			return nil, err
		}
		return doc, nil

	default:
		sdl, err := fetchSDL(ctx, c.httpClient, subgraph.URL)
		if err != nil {
			return nil, err
		}
		return parseSchema(subgraph.URL, sdl)
	}
}

func parseSchema(name, sdl string) (*ast.SchemaDocument, error) {
	doc, err := parser.ParseSchema(&ast.Source{
		Name:  name,
		Input: sdl,
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Compose merges the loaded subgraphs into a composite schema.
// When only merge conflicts occur, both the schema and an error listing them are returned.
func (c *Composer) Compose(ctx context.Context) (*CompositeSchema, error) {
	c.mu.RLock()
	settings := c.config.Settings
	settings.ExcludeByTag = append([]string(nil), settings.ExcludeByTag...)
	sources := c.sources
	c.mu.RUnlock()

	return composition.Compose(ctx, settings, sources)
}

// ComposeSDL is a shorthand that composes inline SDL keyed by subgraph name.
func ComposeSDL(ctx context.Context, settings Settings, subgraphs map[string]string) (*CompositeSchema, error) {
	cfg := &Config{Settings: settings}
	for name, sdl := range subgraphs {
		if strings.TrimSpace(sdl) == "" {
			return nil, fmt.Errorf("subgraph %s has empty schema", name)
		}
		cfg.Subgraphs = append(cfg.Subgraphs, &SubgraphConfig{
			Name:   name,
			Schema: sdl,
		})
	}

	c, err := NewComposer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return c.Compose(ctx)
}

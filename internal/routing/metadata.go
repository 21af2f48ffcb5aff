package routing

import (
	"encoding/json"

	"github.com/goccy/go-yaml"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/fusion/internal/composition"
)

var _ json.Marshaler = (*CompositeSchema)(nil)
var _ yaml.InterfaceMarshaler = (*CompositeSchema)(nil)

// CompositeSchema is the routing view of a composite schema document.
type CompositeSchema struct {
	Schema    *ast.Schema
	Subgraphs []string
	Nodes     []*composition.NodeDirective
	Types     map[string]*TypeMetadata
	Fields    map[string]*FieldMetadata
}

type TypeMetadata struct {
	Sources   []*composition.SourceDirective `json:"sources,omitempty" yaml:"sources,omitempty"`
	Resolvers []*Resolver                    `json:"resolvers,omitempty" yaml:"resolvers,omitempty"`
	Variables []*composition.Variable        `json:"variables,omitempty" yaml:"variables,omitempty"`
}

type FieldMetadata struct {
	Sources   []*composition.SourceDirective `json:"sources,omitempty" yaml:"sources,omitempty"`
	Resolvers []*Resolver                    `json:"resolvers,omitempty" yaml:"resolvers,omitempty"`
	Variables []*composition.Variable        `json:"variables,omitempty" yaml:"variables,omitempty"`
}

// Resolver is a @resolver instance with its operation parsed.
type Resolver struct {
	Subgraph  string                   `json:"subgraph" yaml:"subgraph"`
	Kind      composition.ResolverKind `json:"kind" yaml:"kind"`
	Operation string                   `json:"operation" yaml:"operation"`

	Document *ast.OperationDefinition `json:"-" yaml:"-"`
}

// FieldName returns the root field the operation selects in its subgraph.
func (r *Resolver) FieldName() string {
	if r.Document == nil || len(r.Document.SelectionSet) == 0 {
		return ""
	}
	field, ok := r.Document.SelectionSet[0].(*ast.Field)
	if !ok {
		return ""
	}
	return field.Name
}

// TypesForSubgraph returns the names of types sourced from subgraph, sorted.
func (cs *CompositeSchema) TypesForSubgraph(subgraph string) []string {
	var result []string
	for _, name := range sortedKeys(cs.Types) {
		for _, source := range cs.Types[name].Sources {
			if source.Subgraph == subgraph {
				result = append(result, name)
				break
			}
		}
	}
	return result
}

// Field returns routing metadata for typeName.fieldName.
func (cs *CompositeSchema) Field(typeName, fieldName string) *FieldMetadata {
	return cs.Fields[typeName+"."+fieldName]
}

func (cs *CompositeSchema) marshalObject() *metadataHolder {
	return &metadataHolder{
		Subgraphs: cs.Subgraphs,
		Nodes:     cs.Nodes,
		Types:     cs.Types,
		Fields:    cs.Fields,
	}
}

// metadataHolder is the serialized form. Map keys are emitted sorted by both encoders.
type metadataHolder struct {
	Subgraphs []string                     `json:"subgraphs" yaml:"subgraphs"`
	Nodes     []*composition.NodeDirective `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Types     map[string]*TypeMetadata     `json:"types" yaml:"types"`
	Fields    map[string]*FieldMetadata    `json:"fields" yaml:"fields"`
}

func (cs *CompositeSchema) MarshalYAML() (interface{}, error) {
	return cs.marshalObject(), nil
}

func (cs *CompositeSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(cs.marshalObject())
}

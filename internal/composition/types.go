package composition

import (
	"github.com/vektah/gqlparser/v2/ast"
)

// SourceSchema is a single subgraph contribution to a composition.
type SourceSchema struct {
	Name     string
	Document *ast.SchemaDocument
}

// TypeDefinition is the closed set of merged type kinds.
// Every switch over it lists all of ScalarType, EnumType, InputObjectType, ObjectType, InterfaceType and UnionType.
type TypeDefinition interface {
	TypeName() string
	Kind() ast.DefinitionKind
	TypeSources() []*TypeSource

	base() *typeBase
}

var _ TypeDefinition = (*ScalarType)(nil)
var _ TypeDefinition = (*EnumType)(nil)
var _ TypeDefinition = (*InputObjectType)(nil)
var _ TypeDefinition = (*ObjectType)(nil)
var _ TypeDefinition = (*InterfaceType)(nil)
var _ TypeDefinition = (*UnionType)(nil)

// TypeSource records a subgraph that declares the type and the name it uses locally.
type TypeSource struct {
	Subgraph  string `json:"subgraph" yaml:"subgraph"`
	LocalName string `json:"localName,omitempty" yaml:"localName,omitempty"`
}

type typeBase struct {
	Name        string
	Description string
	Sources     []*TypeSource
}

func (t *typeBase) TypeName() string { return t.Name }

func (t *typeBase) TypeSources() []*TypeSource { return t.Sources }

func (t *typeBase) base() *typeBase { return t }

func (t *typeBase) sourceFor(subgraph string) *TypeSource {
	for _, source := range t.Sources {
		if source.Subgraph == subgraph {
			return source
		}
	}
	return nil
}

type ScalarType struct {
	typeBase
	SpecifiedByURL string
}

func (t *ScalarType) Kind() ast.DefinitionKind { return ast.Scalar }

type EnumType struct {
	typeBase
	Values []*EnumValue
}

func (t *EnumType) Kind() ast.DefinitionKind { return ast.Enum }

type EnumValue struct {
	Name        string
	Description string
	Deprecation *Deprecation
	Sources     []string
}

type InputObjectType struct {
	typeBase
	Fields []*InputField
}

func (t *InputObjectType) Kind() ast.DefinitionKind { return ast.InputObject }

type InputField struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue *ast.Value
	Deprecation  *Deprecation
	Sources      []string

	typeNode *ast.Type
}

// ComplexType is the shared payload of object and interface types.
type ComplexType struct {
	typeBase
	Interfaces []string
	Fields     []*Field
	Lookups    []*Lookup
	Resolvers  []*Resolver
	Variables  []*Variable
}

func (t *ComplexType) Field(name string) *Field {
	for _, field := range t.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

type ObjectType struct {
	ComplexType
}

func (t *ObjectType) Kind() ast.DefinitionKind { return ast.Object }

type InterfaceType struct {
	ComplexType
}

func (t *InterfaceType) Kind() ast.DefinitionKind { return ast.Interface }

type UnionType struct {
	typeBase
	Members []*UnionMember
}

func (t *UnionType) Kind() ast.DefinitionKind { return ast.Union }

type UnionMember struct {
	Name    string
	Sources []string
}

type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*Argument
	Deprecation *Deprecation
	Sources     []*SourceField
	Resolvers   []*Resolver
	Variables   []*Variable

	typeNode *ast.Type
}

func (f *Field) IsDeprecated() bool {
	return f.Deprecation != nil
}

func (f *Field) Argument(name string) *Argument {
	for _, arg := range f.Arguments {
		if arg.Name == name {
			return arg
		}
	}
	return nil
}

func (f *Field) Source(subgraph string) *SourceField {
	for _, source := range f.Sources {
		if source.Subgraph == subgraph {
			return source
		}
	}
	return nil
}

type Argument struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue *ast.Value
	Deprecation  *Deprecation

	typeNode *ast.Type
}

type Deprecation struct {
	Reason string
}

// SourceField is the per-subgraph provenance of a merged field.
type SourceField struct {
	Subgraph     string
	LocalName    string
	Requirements *FieldRequirements
}

// FieldRequirements describes data a subgraph needs from the parent entity to resolve a field.
type FieldRequirements struct {
	Subgraph     string
	Arguments    []*RequiredArgument
	Paths        [][]string
	SelectionSet ast.SelectionSet
}

type RequiredArgument struct {
	Name  string
	Type  *ast.Type
	Paths [][]string
}

// Lookup is a subgraph's capability to resolve an entity by key through a root query field.
type Lookup struct {
	Subgraph     string
	FieldName    string
	Arguments    []*LookupArgument
	Paths        [][]string
	SelectionSet ast.SelectionSet
	Kind         ResolverKind
	Internal     bool
}

type LookupArgument struct {
	Name string
	Type *ast.Type
	Path []string
}

type ResolverKind string

const (
	ResolverKindFetch     ResolverKind = "FETCH"
	ResolverKindBatch     ResolverKind = "BATCH"
	ResolverKindSubscribe ResolverKind = "SUBSCRIBE"
)

// Resolver is a synthesized operation a subgraph can answer.
type Resolver struct {
	Subgraph  string
	Kind      ResolverKind
	Operation *ast.OperationDefinition
}

// OperationText renders the resolver operation in canonical single-line form.
func (r *Resolver) OperationText() string {
	return printOperation(r.Operation)
}

// Variable binds a resolver input variable to data read off the entity or to a field argument.
type Variable struct {
	Subgraph string `json:"subgraph" yaml:"subgraph"`
	Name     string `json:"name" yaml:"name"`
	Select   string `json:"select,omitempty" yaml:"select,omitempty"`
	Argument string `json:"argument,omitempty" yaml:"argument,omitempty"`
}

// TypeRef is a structural reference to a registry entry, possibly wrapped in list or non-null.
type TypeRef struct {
	Named   *TypeHandle
	Elem    *TypeRef
	NonNull bool
}

func (ref *TypeRef) NamedType() string {
	if ref.Elem != nil {
		return ref.Elem.NamedType()
	}
	return ref.Named.Name
}

func (ref *TypeRef) ASTType() *ast.Type {
	if ref.Elem != nil {
		return &ast.Type{
			Elem:     ref.Elem.ASTType(),
			NonNull:  ref.NonNull,
			Position: blankPos,
		}
	}
	return &ast.Type{
		NamedType: ref.Named.Name,
		NonNull:   ref.NonNull,
		Position:  blankPos,
	}
}

func (ref *TypeRef) String() string {
	return ref.ASTType().String()
}

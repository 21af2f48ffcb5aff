package composition

import (
	"context"
	"sort"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vvakame/fusion/internal/log"
)

const nodeInterfaceName = "Node"

// addGlobalObjectIdentification exposes Relay style node lookups on the query type.
// Types implementing Node are registered per subgraph when that subgraph can fetch them by id.
func addGlobalObjectIdentification(ctx context.Context, cctx *CompositionContext) {
	logger := log.ForPhase(ctx, "globalObjectIdentification")

	iface, ok := cctx.Type(nodeInterfaceName).(*InterfaceType)
	if !ok {
		logger.Info("skipped: no Node interface in composite schema")
		return
	}
	idField := iface.Field("id")
	if idField == nil || baseTypeString(idField.typeNode) != "ID" {
		logger.Info("skipped: Node interface has no id: ID! field")
		return
	}
	query, ok := cctx.Type(cctx.rootTypes.Query).(*ObjectType)
	if !ok {
		logger.Info("skipped: no query type in composite schema")
		return
	}

	nodeTypes := make(map[string][]string)
	for _, name := range cctx.registry.Names() {
		obj, ok := cctx.Type(name).(*ObjectType)
		if !ok || !containsString(obj.Interfaces, nodeInterfaceName) {
			continue
		}
		for _, lookup := range obj.Lookups {
			if lookup.Kind != ResolverKindFetch || len(lookup.Arguments) != 1 {
				continue
			}
			path := lookup.Arguments[0].Path
			if len(path) != 1 || path[0] != "id" {
				continue
			}
			nodeTypes[lookup.Subgraph] = appendUnique(nodeTypes[lookup.Subgraph], obj.Name)
		}
	}

	if query.Field("node") == nil {
		query.Fields = append(query.Fields, &Field{
			Name:        "node",
			Description: "Fetches an object given its ID.",
			typeNode:    ast.NamedType(nodeInterfaceName, blankPos),
			Arguments: []*Argument{
				{
					Name:        "id",
					Description: "ID of the object.",
					typeNode:    ast.NonNullNamedType("ID", blankPos),
				},
			},
		})
	}
	if query.Field("nodes") == nil {
		query.Fields = append(query.Fields, &Field{
			Name:        "nodes",
			Description: "Lookup nodes by a list of IDs.",
			typeNode:    ast.NonNullListType(ast.NamedType(nodeInterfaceName, blankPos), blankPos),
			Arguments: []*Argument{
				{
					Name:        "ids",
					Description: "The list of node IDs.",
					typeNode:    ast.NonNullListType(ast.NonNullNamedType("ID", blankPos), blankPos),
				},
			},
		})
	}

	var nodes []*NodeDirective
	for _, subgraph := range sortedKeys(nodeTypes) {
		types := nodeTypes[subgraph]
		sort.Strings(types)
		nodes = append(nodes, &NodeDirective{
			Subgraph: subgraph,
			Types:    types,
		})
	}

	cctx.mu.Lock()
	cctx.mustBeMutable()
	cctx.nodes = nodes
	cctx.mu.Unlock()

	logger.V(1).Info("added node fields", "subgraphs", len(nodes))
}

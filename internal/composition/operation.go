package composition

import (
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
)

type operationArgument struct {
	Name     string
	Variable string
	Type     *ast.Type
}

// newOperation builds a single root field operation that passes every argument through a variable.
func newOperation(operation ast.Operation, fieldName string, args []*operationArgument) *ast.OperationDefinition {
	field := &ast.Field{
		Name:     fieldName,
		Position: blankPos,
	}
	op := &ast.OperationDefinition{
		Operation:    operation,
		SelectionSet: ast.SelectionSet{field},
		Position:     blankPos,
	}
	for _, arg := range args {
		op.VariableDefinitions = append(op.VariableDefinitions, &ast.VariableDefinition{
			Variable: arg.Variable,
			Type:     copyType(arg.Type),
			Position: blankPos,
		})
		field.Arguments = append(field.Arguments, &ast.Argument{
			Name: arg.Name,
			Value: &ast.Value{
				Raw:      arg.Variable,
				Kind:     ast.Variable,
				Position: blankPos,
			},
			Position: blankPos,
		})
	}
	return op
}

// printOperation renders an operation on a single line, e.g. `query($Product_id: ID!) { product(id: $Product_id) }`.
func printOperation(op *ast.OperationDefinition) string {
	if op == nil {
		return ""
	}

	var buf strings.Builder
	buf.WriteString(string(op.Operation))
	if op.Name != "" {
		buf.WriteString(" ")
		buf.WriteString(op.Name)
	}
	if len(op.VariableDefinitions) != 0 {
		buf.WriteString("(")
		for i, v := range op.VariableDefinitions {
			if i != 0 {
				buf.WriteString(", ")
			}
			buf.WriteString("$")
			buf.WriteString(v.Variable)
			buf.WriteString(": ")
			buf.WriteString(v.Type.String())
			if v.DefaultValue != nil {
				buf.WriteString(" = ")
				buf.WriteString(v.DefaultValue.String())
			}
		}
		buf.WriteString(")")
	}
	buf.WriteString(" ")
	printOperationSelectionSet(&buf, op.SelectionSet)
	return buf.String()
}

func printOperationSelectionSet(buf *strings.Builder, selections ast.SelectionSet) {
	buf.WriteString("{")
	for _, selection := range selections {
		field, ok := selection.(*ast.Field)
		if !ok {
			continue
		}
		buf.WriteString(" ")
		if field.Alias != "" && field.Alias != field.Name {
			buf.WriteString(field.Alias)
			buf.WriteString(": ")
		}
		buf.WriteString(field.Name)
		if len(field.Arguments) != 0 {
			buf.WriteString("(")
			for i, arg := range field.Arguments {
				if i != 0 {
					buf.WriteString(", ")
				}
				buf.WriteString(arg.Name)
				buf.WriteString(": ")
				buf.WriteString(arg.Value.String())
			}
			buf.WriteString(")")
		}
		if len(field.SelectionSet) != 0 {
			buf.WriteString(" ")
			printOperationSelectionSet(buf, field.SelectionSet)
		}
	}
	buf.WriteString(" }")
}

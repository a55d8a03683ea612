package builtin

import (
	"context"
	"fmt"

	"github.com/agentstation/pinflow"
)

func variableEntries() []entry {
	return []entry{
		{TypeReroute, newReroute},
		{TypeReadVariable, newReadVariable},
		{TypeWriteVariable, newWriteVariable},
	}
}

func newReroute() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeReroute, "Reroute",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := n.Arg(ctx, "in")
			if err != nil {
				return err
			}
			return n.SetResult("out", v)
		},
		pinflow.Pure(),
		pinflow.WithDescription("Reroutes the input to the output."),
		pinflow.WithCategory(CategoryFlowControl),
		pinflow.WithInputs(pinflow.NewInputArgumentPin("in", "", pinflow.TypeAny, pinflow.WithTypeDependsOn("out"))),
		pinflow.WithOutputs(pinflow.NewOutputArgumentPin("out", "", pinflow.TypeAny, pinflow.WithTypeDependsOn("in"))),
	))
}

func lookupVariable(ctx context.Context, n *pinflow.FunctionNode) (*pinflow.GraphVariable, error) {
	name, err := pinflow.ArgAs[string](ctx, n, "variable")
	if err != nil {
		return nil, err
	}
	g := n.Graph()
	if g == nil {
		return nil, fmt.Errorf("%w: %q: node is not part of a graph", pinflow.ErrVariableNotFound, name)
	}
	return g.Variable(name)
}

func newReadVariable() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeReadVariable, "Read Variable",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := lookupVariable(ctx, n)
			if err != nil {
				return err
			}
			return n.SetResult(pinValue, v.Value())
		},
		pinflow.Pure(),
		pinflow.WithDescription("Reads the value of the variable."),
		pinflow.WithCategory(CategoryVariables),
		pinflow.WithInputs(pinflow.NewInputArgumentPin("variable", "Variable Name", pinflow.TypeString, pinflow.WithDefault(""))),
		pinflow.WithOutputs(pinflow.NewOutputArgumentPin(pinValue, "Value", pinflow.TypeAny)),
	))
}

// newWriteVariable declares "value" on both sides: the input is written to
// the variable and the output republishes what was stored.
func newWriteVariable() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeWriteVariable, "Write Variable",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := lookupVariable(ctx, n)
			if err != nil {
				return err
			}
			value, err := n.Arg(ctx, pinValue)
			if err != nil {
				return err
			}
			if err := v.Set(value); err != nil {
				return err
			}
			return n.SetResult(pinValue, v.Value())
		},
		pinflow.WithDescription("Writes the value to the variable."),
		pinflow.WithCategory(CategoryVariables),
		pinflow.WithInputs(
			pinflow.NewInputArgumentPin("variable", "Variable Name", pinflow.TypeString, pinflow.WithDefault("")),
			pinflow.NewInputArgumentPin(pinValue, "Value", pinflow.TypeAny),
		),
		pinflow.WithOutputs(pinflow.NewOutputArgumentPin(pinValue, "Value", pinflow.TypeAny)),
	))
}

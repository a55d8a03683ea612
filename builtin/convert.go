package builtin

import (
	"context"
	"strconv"

	"github.com/agentstation/pinflow"
)

func convertEntries() []entry {
	return []entry{
		{TypeIntToString, newIntToString},
		{TypeConstantInt, newConstantInt},
	}
}

func newIntToString() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeIntToString, "Int to String",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := pinflow.ArgAs[int](ctx, n, pinValue)
			if err != nil {
				return err
			}
			return n.SetResult(pinResult, strconv.Itoa(v))
		},
		pinflow.Pure(),
		pinflow.WithDescription("Converts the integer value to a string."),
		pinflow.WithCategory(CategoryConversions),
		pinflow.WithInputs(pinflow.NewInputArgumentPin(pinValue, "Value", pinflow.TypeInt, pinflow.WithDefault(0))),
		pinflow.WithOutputs(resultOut(pinflow.TypeString)),
	))
}

func newConstantInt() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeConstantInt, "Constant Int",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := pinflow.ArgAs[int](ctx, n, pinValue)
			if err != nil {
				return err
			}
			return n.SetResult(pinResult, v)
		},
		pinflow.Pure(),
		pinflow.WithDescription("Returns the constant integer value."),
		pinflow.WithCategory(CategoryConstants),
		pinflow.WithInputs(pinflow.NewInputArgumentPin(pinValue, "Value", pinflow.TypeInt, pinflow.WithDefault(0))),
		pinflow.WithOutputs(resultOut(pinflow.TypeInt)),
	))
}

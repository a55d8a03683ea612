package builtin

import (
	"context"

	"github.com/agentstation/pinflow"
)

func logicEntries() []entry {
	return []entry{
		boolean(TypeAnd, "And", "Returns true if A and B are true.", func(a, b bool) bool { return a && b }),
		boolean(TypeOr, "Or", "Returns true if A or B are true.", func(a, b bool) bool { return a || b }),
		boolean(TypeXor, "Xor", "Returns true if A or B are true, but not both.", func(a, b bool) bool { return a != b }),
		boolean(TypeNand, "Nand", "Returns false if A and B are true.", func(a, b bool) bool { return !(a && b) }),
		{TypeNot, newNot},
		{TypeIf, newIf},
	}
}

func boolIn(id, name string) *pinflow.InputArgumentPin {
	return pinflow.NewInputArgumentPin(id, name, pinflow.TypeBool, pinflow.WithDefault(false))
}

func boolean(typeID, name, description string, op func(a, b bool) bool) entry {
	return entry{typeID, func() (pinflow.Node, error) {
		return build(pinflow.NewFunctionNode(typeID, name,
			func(ctx context.Context, n *pinflow.FunctionNode) error {
				a, err := pinflow.ArgAs[bool](ctx, n, pinA)
				if err != nil {
					return err
				}
				b, err := pinflow.ArgAs[bool](ctx, n, pinB)
				if err != nil {
					return err
				}
				return n.SetResult(pinResult, op(a, b))
			},
			pinflow.Pure(),
			pinflow.WithDescription(description),
			pinflow.WithCategory(CategoryLogic),
			pinflow.WithInputs(boolIn(pinA, "A"), boolIn(pinB, "B")),
			pinflow.WithOutputs(resultOut(pinflow.TypeBool)),
		))
	}}
}

func newNot() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeNot, "Not",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			a, err := pinflow.ArgAs[bool](ctx, n, pinA)
			if err != nil {
				return err
			}
			return n.SetResult(pinResult, !a)
		},
		pinflow.Pure(),
		pinflow.WithDescription("Returns true if A is false."),
		pinflow.WithCategory(CategoryLogic),
		pinflow.WithInputs(boolIn(pinA, "A")),
		pinflow.WithOutputs(resultOut(pinflow.TypeBool)),
	))
}

// newIf only pulls the selected operand.
func newIf() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeIf, "If",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			cond, err := pinflow.ArgAs[bool](ctx, n, pinCondition)
			if err != nil {
				return err
			}
			pick := pinB
			if cond {
				pick = pinA
			}
			v, err := pinflow.ArgAs[any](ctx, n, pick)
			if err != nil {
				return err
			}
			return n.SetResult(pinResult, v)
		},
		pinflow.Pure(),
		pinflow.WithDescription("Returns A if Condition is true, otherwise returns B."),
		pinflow.WithCategory(CategoryLogic),
		pinflow.WithInputs(
			boolIn(pinCondition, "Condition"),
			pinflow.NewInputArgumentPin(pinA, "A", scalar, pinflow.WithDefault(0)),
			pinflow.NewInputArgumentPin(pinB, "B", scalar, pinflow.WithDefault(0)),
		),
		pinflow.WithOutputs(resultOut(scalar)),
	))
}

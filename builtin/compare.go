package builtin

import (
	"context"
	"fmt"

	"github.com/agentstation/pinflow"
)

// scalar is the type of pins comparing numbers or text.
const scalar = pinflow.TypeNumber | pinflow.TypeString

func compareEntries() []entry {
	return []entry{
		comparison(TypeIsEqual, "Is Equal", "Returns true if the text forms of A and B are equal.", scalar, func(a, b any) bool {
			return fmt.Sprint(a) == fmt.Sprint(b)
		}),
		comparison(TypeEqual, "Equal", "Returns true if A is equal to B.", scalar, equal),
		comparison(TypeNotEqual, "Not Equal", "Returns true if A is not equal to B.", scalar, func(a, b any) bool {
			return !equal(a, b)
		}),
		comparison(TypeGreater, "Greater", "Returns true if A is greater than B.", pinflow.TypeNumber, func(a, b any) bool {
			return toFloat(a) > toFloat(b)
		}),
		comparison(TypeGreaterEqual, "Greater Equal", "Returns true if A is greater than or equal to B.", pinflow.TypeNumber, func(a, b any) bool {
			return toFloat(a) >= toFloat(b)
		}),
		comparison(TypeLess, "Less", "Returns true if A is less than B.", pinflow.TypeNumber, func(a, b any) bool {
			return toFloat(a) < toFloat(b)
		}),
		comparison(TypeLessEqual, "Less Equal", "Returns true if A is less than or equal to B.", pinflow.TypeNumber, func(a, b any) bool {
			return toFloat(a) <= toFloat(b)
		}),
	}
}

func comparison(typeID, name, description string, in pinflow.Type, op func(a, b any) bool) entry {
	return entry{typeID, func() (pinflow.Node, error) {
		return build(pinflow.NewFunctionNode(typeID, name,
			func(ctx context.Context, n *pinflow.FunctionNode) error {
				a, err := pinflow.ArgAs[any](ctx, n, pinA)
				if err != nil {
					return err
				}
				b, err := pinflow.ArgAs[any](ctx, n, pinB)
				if err != nil {
					return err
				}
				return n.SetResult(pinResult, op(a, b))
			},
			pinflow.Pure(),
			pinflow.WithDescription(description),
			pinflow.WithCategory(CategoryComparison),
			pinflow.WithInputs(
				pinflow.NewInputArgumentPin(pinA, "A", in, pinflow.WithDefault(0)),
				pinflow.NewInputArgumentPin(pinB, "B", in, pinflow.WithDefault(0)),
			),
			pinflow.WithOutputs(resultOut(pinflow.TypeBool)),
		))
	}}
}

// equal compares numbers by value across int and float. Text only equals
// identical text.
func equal(a, b any) bool {
	_, aText := a.(string)
	_, bText := b.(string)
	if aText || bText {
		return a == b
	}
	return toFloat(a) == toFloat(b)
}

package builtin

import (
	"context"
	"errors"
	"math"

	"github.com/agentstation/pinflow"
)

// ErrDivisionByZero is returned by Divide and Modulo when B is zero.
var ErrDivisionByZero = errors.New("builtin: division by zero")

func mathEntries() []entry {
	return []entry{
		binary(TypeAdd, "Add", "Returns the sum of A and B.", pinflow.TypeNumber, func(a, b any) (any, error) {
			return arith(a, b, func(x, y int) int { return x + y }, func(x, y float64) float64 { return x + y }), nil
		}),
		binary(TypeSubtract, "Subtract", "Returns the difference of A and B.", pinflow.TypeNumber, func(a, b any) (any, error) {
			return arith(a, b, func(x, y int) int { return x - y }, func(x, y float64) float64 { return x - y }), nil
		}),
		binary(TypeMultiply, "Multiply", "Returns the product of A and B.", pinflow.TypeNumber, func(a, b any) (any, error) {
			return arith(a, b, func(x, y int) int { return x * y }, func(x, y float64) float64 { return x * y }), nil
		}),
		binary(TypeDivide, "Divide", "Returns the quotient of the division of A by B.", pinflow.TypeNumber, divide),
		binary(TypeModulo, "Modulo", "Returns the remainder of the division of A by B.", pinflow.TypeNumber, modulo),
		binary(TypePower, "Power", "Returns the value of A raised to the power of B.", pinflow.TypeNumber, power),
		binary(TypeMin, "Min", "Returns the smallest of the given values.", pinflow.TypeNumber, func(a, b any) (any, error) {
			if toFloat(b) < toFloat(a) {
				return b, nil
			}
			return a, nil
		}),
		binary(TypeMax, "Max", "Returns the greater of two values.", pinflow.TypeNumber, func(a, b any) (any, error) {
			if toFloat(b) > toFloat(a) {
				return b, nil
			}
			return a, nil
		}),

		unary(TypeNegate, "Negate", "Negates the value.", pinflow.TypeNumber, func(v any) any {
			return arith(0, v, func(_, y int) int { return -y }, func(_, y float64) float64 { return -y })
		}),
		unary(TypeAbs, "Abs", "Returns the absolute value of the given value.", pinflow.TypeNumber, func(v any) any {
			if i, ok := v.(int); ok {
				if i < 0 {
					return -i
				}
				return i
			}
			return math.Abs(toFloat(v))
		}),
		unary(TypeFloor, "Floor", "Rounds the value down to the nearest integer.", pinflow.TypeInt, func(v any) any {
			return int(math.Floor(toFloat(v)))
		}),
		unary(TypeCeil, "Ceil", "Returns the smallest integer greater than or equal to the given value.", pinflow.TypeInt, func(v any) any {
			return int(math.Ceil(toFloat(v)))
		}),
		unary(TypeSign, "Sign", "Returns -1 if the value is less than zero, 1 if the value is greater than zero, 0 otherwise.", pinflow.TypeInt, func(v any) any {
			switch f := toFloat(v); {
			case f < 0:
				return -1
			case f > 0:
				return 1
			}
			return 0
		}),
		unary(TypeIsPositive, "Is Positive", "Returns true if the value is greater than zero.", pinflow.TypeBool, func(v any) any {
			return toFloat(v) > 0
		}),
		unary(TypeIsNegative, "Is Negative", "Returns true if the value is negative.", pinflow.TypeBool, func(v any) any {
			return toFloat(v) < 0
		}),
		unary(TypeIsZero, "Is Zero", "Returns true if the value is equal to zero.", pinflow.TypeBool, func(v any) any {
			return toFloat(v) == 0
		}),

		{TypeRound, newRound},
		{TypeClamp, newClamp},
		{TypeLerp, newLerp},
	}
}

func numberIn(id, name string) *pinflow.InputArgumentPin {
	return pinflow.NewInputArgumentPin(id, name, pinflow.TypeNumber, pinflow.WithDefault(0))
}

func resultOut(t pinflow.Type) *pinflow.OutputArgumentPin {
	return pinflow.NewOutputArgumentPin(pinResult, "Result", t)
}

func binary(typeID, name, description string, out pinflow.Type, op func(a, b any) (any, error)) entry {
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
				r, err := op(a, b)
				if err != nil {
					return err
				}
				return n.SetResult(pinResult, r)
			},
			pinflow.Pure(),
			pinflow.WithDescription(description),
			pinflow.WithCategory(CategoryMath),
			pinflow.WithInputs(numberIn(pinA, "A"), numberIn(pinB, "B")),
			pinflow.WithOutputs(resultOut(out)),
		))
	}}
}

func unary(typeID, name, description string, out pinflow.Type, op func(v any) any) entry {
	return entry{typeID, func() (pinflow.Node, error) {
		return build(pinflow.NewFunctionNode(typeID, name,
			func(ctx context.Context, n *pinflow.FunctionNode) error {
				v, err := pinflow.ArgAs[any](ctx, n, pinValue)
				if err != nil {
					return err
				}
				return n.SetResult(pinResult, op(v))
			},
			pinflow.Pure(),
			pinflow.WithDescription(description),
			pinflow.WithCategory(CategoryMath),
			pinflow.WithInputs(numberIn(pinValue, "Value")),
			pinflow.WithOutputs(resultOut(out)),
		))
	}}
}

func newRound() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeRound, "Round",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := pinflow.ArgAs[any](ctx, n, pinValue)
			if err != nil {
				return err
			}
			digits, err := pinflow.ArgAs[int](ctx, n, "n_digits")
			if err != nil {
				return err
			}
			return n.SetResult(pinResult, round(v, digits))
		},
		pinflow.Pure(),
		pinflow.WithDescription("Rounds the value to the given number of digits, halves to even."),
		pinflow.WithCategory(CategoryMath),
		pinflow.WithInputs(
			numberIn(pinValue, "Value"),
			pinflow.NewInputArgumentPin("n_digits", "Digits", pinflow.TypeInt, pinflow.WithDefault(0)),
		),
		pinflow.WithOutputs(resultOut(pinflow.TypeNumber)),
	))
}

func newClamp() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeClamp, "Clamp",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			v, err := pinflow.ArgAs[any](ctx, n, pinValue)
			if err != nil {
				return err
			}
			lo, err := pinflow.ArgAs[any](ctx, n, "min")
			if err != nil {
				return err
			}
			hi, err := pinflow.ArgAs[any](ctx, n, "max")
			if err != nil {
				return err
			}
			switch {
			case toFloat(v) < toFloat(lo):
				v = lo
			case toFloat(v) > toFloat(hi):
				v = hi
			}
			return n.SetResult(pinResult, v)
		},
		pinflow.Pure(),
		pinflow.WithDescription("Clamps the value between min and max."),
		pinflow.WithCategory(CategoryMath),
		pinflow.WithInputs(numberIn(pinValue, "Value"), numberIn("min", "Min"), numberIn("max", "Max")),
		pinflow.WithOutputs(resultOut(pinflow.TypeNumber)),
	))
}

func newLerp() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeLerp, "Lerp",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			a, err := pinflow.ArgAs[any](ctx, n, pinA)
			if err != nil {
				return err
			}
			b, err := pinflow.ArgAs[any](ctx, n, pinB)
			if err != nil {
				return err
			}
			t, err := pinflow.ArgAs[any](ctx, n, "t")
			if err != nil {
				return err
			}
			return n.SetResult(pinResult, lerp(a, b, t))
		},
		pinflow.Pure(),
		pinflow.WithDescription("Linearly interpolates between A and B by T."),
		pinflow.WithCategory(CategoryMath),
		pinflow.WithInputs(numberIn(pinA, "A"), numberIn(pinB, "B"), numberIn("t", "T")),
		pinflow.WithOutputs(resultOut(pinflow.TypeNumber)),
	))
}

// arith applies intOp when both operands are ints and floatOp otherwise.
func arith(a, b any, intOp func(x, y int) int, floatOp func(x, y float64) float64) any {
	x, xok := a.(int)
	y, yok := b.(int)
	if xok && yok {
		return intOp(x, y)
	}
	return floatOp(toFloat(a), toFloat(b))
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float64:
		return n
	}
	return math.NaN()
}

func divide(a, b any) (any, error) {
	if toFloat(b) == 0 {
		return nil, ErrDivisionByZero
	}
	return toFloat(a) / toFloat(b), nil
}

// modulo follows the sign of the divisor.
func modulo(a, b any) (any, error) {
	if toFloat(b) == 0 {
		return nil, ErrDivisionByZero
	}
	return arith(a, b,
		func(x, y int) int {
			r := x % y
			if r != 0 && (r < 0) != (y < 0) {
				r += y
			}
			return r
		},
		func(x, y float64) float64 {
			r := math.Mod(x, y)
			if r != 0 && (r < 0) != (y < 0) {
				r += y
			}
			return r
		},
	), nil
}

func power(a, b any) (any, error) {
	x, xok := a.(int)
	y, yok := b.(int)
	if xok && yok && y >= 0 {
		r := 1
		for ; y > 0; y-- {
			r *= x
		}
		return r, nil
	}
	return math.Pow(toFloat(a), toFloat(b)), nil
}

// round keeps ints as they are unless digits is negative. Other values are
// rounded half to even, returned as int for non-positive digits.
func round(v any, digits int) any {
	if i, ok := v.(int); ok && digits >= 0 {
		return i
	}
	scale := math.Pow(10, float64(digits))
	r := math.RoundToEven(toFloat(v)*scale) / scale
	if digits <= 0 {
		return int(r)
	}
	return r
}

func lerp(a, b, t any) any {
	diff := arith(b, a, func(x, y int) int { return x - y }, func(x, y float64) float64 { return x - y })
	scaled := arith(diff, t, func(x, y int) int { return x * y }, func(x, y float64) float64 { return x * y })
	return arith(a, scaled, func(x, y int) int { return x + y }, func(x, y float64) float64 { return x + y })
}

package builtin

import (
	"context"
	"fmt"

	"github.com/ohler55/ojg/jp"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/builtin/script"
)

func dataEntries() []entry {
	return []entry{
		{TypeJSONPath, newJSONPath},
		{TypeLua, newLuaExpression},
	}
}

// newJSONPath extracts data with a JSONPath expression. The parsed
// expression is kept until the path changes.
func newJSONPath() (pinflow.Node, error) {
	var (
		lastPath string
		expr     jp.Expr
	)

	return build(pinflow.NewFunctionNode(TypeJSONPath, "JSONPath",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			path, err := pinflow.ArgAs[string](ctx, n, "path")
			if err != nil {
				return err
			}
			data, err := n.Arg(ctx, "data")
			if err != nil {
				return err
			}
			multiple, err := pinflow.ArgAs[bool](ctx, n, "multiple")
			if err != nil {
				return err
			}

			if expr == nil || path != lastPath {
				parsed, err := jp.ParseString(path)
				if err != nil {
					return fmt.Errorf("invalid JSONPath expression %q: %w", path, err)
				}
				expr, lastPath = parsed, path
			}

			results := expr.Get(data)
			if err := n.SetResult("found", len(results) > 0); err != nil {
				return err
			}

			switch {
			case multiple:
				if results == nil {
					results = []any{}
				}
				return n.SetResult(pinResult, results)
			case len(results) == 0:
				return n.SetResult(pinResult, nil)
			}

			result := results[0]
			if arr, ok := result.([]any); ok && len(arr) == 1 {
				result = arr[0]
			}
			return n.SetResult(pinResult, result)
		},
		pinflow.Pure(),
		pinflow.WithDescription("Extracts data using a JSONPath expression. Returns the first match, or every match as a list when Multiple is set."),
		pinflow.WithCategory(CategoryData),
		pinflow.WithInputs(
			pinflow.NewInputArgumentPin("data", "Data", pinflow.TypeAny),
			pinflow.NewInputArgumentPin("path", "Path", pinflow.TypeString, pinflow.WithDefault("$")),
			pinflow.NewInputArgumentPin("multiple", "Multiple", pinflow.TypeBool, pinflow.WithDefault(false)),
		),
		pinflow.WithOutputs(
			pinflow.NewOutputArgumentPin(pinResult, "Result", pinflow.TypeAny),
			pinflow.NewOutputArgumentPin("found", "Found", pinflow.TypeBool),
		),
	))
}

func newLuaExpression() (pinflow.Node, error) {
	return build(pinflow.NewFunctionNode(TypeLua, "Lua Expression",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			source, err := pinflow.ArgAs[string](ctx, n, "expression")
			if err != nil {
				return err
			}
			a, err := n.Arg(ctx, pinA)
			if err != nil {
				return err
			}
			b, err := n.Arg(ctx, pinB)
			if err != nil {
				return err
			}
			result, err := script.Eval(ctx, source, map[string]any{pinA: a, pinB: b})
			if err != nil {
				return err
			}
			return n.SetResult(pinResult, result)
		},
		pinflow.Pure(),
		pinflow.WithDescription("Evaluates a sandboxed Lua expression with A and B bound as globals a and b."),
		pinflow.WithCategory(CategoryScripting),
		pinflow.WithInputs(
			pinflow.NewInputArgumentPin("expression", "Expression", pinflow.TypeString, pinflow.WithDefault("nil")),
			pinflow.NewInputArgumentPin(pinA, "A", pinflow.TypeAny),
			pinflow.NewInputArgumentPin(pinB, "B", pinflow.TypeAny),
		),
		pinflow.WithOutputs(pinflow.NewOutputArgumentPin(pinResult, "Result", pinflow.TypeAny)),
	))
}

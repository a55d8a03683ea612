// Package script evaluates Lua code in a sandbox and exposes Lua scripts as
// pure node types.
package script

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/Shopify/go-lua"
)

// ErrScript is returned when Lua code fails to compile or run.
var ErrScript = errors.New("script: lua error")

// Eval evaluates a Lua expression, or a chunk ending in a return statement,
// with env bound as globals, and returns its first result.
func Eval(ctx context.Context, source string, env map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := lua.NewState()
	setupSandbox(ctx, l)
	bind(l, env)

	// Try the source as an expression first, then as a chunk.
	if err := lua.LoadString(l, "return "+source); err != nil {
		l.SetTop(0)
		if err := lua.LoadString(l, source); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScript, err)
		}
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return nil, runError(ctx, err)
	}
	result := pullValue(l, -1)
	l.Pop(1)
	return result, nil
}

// Exec runs a script defining exec(input) and returns exec's result. A
// script without exec returns the value its chunk returns, or input when it
// returns nothing.
func Exec(ctx context.Context, source string, input any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := lua.NewState()
	setupSandbox(ctx, l)
	pushValue(l, input)
	l.SetGlobal("input")

	if err := lua.LoadString(l, source); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScript, err)
	}
	if err := l.ProtectedCall(0, 1, 0); err != nil {
		return nil, runError(ctx, err)
	}
	chunkResult := pullValue(l, -1)
	l.Pop(1)

	l.Global("exec")
	if l.TypeOf(-1) == lua.TypeFunction {
		pushValue(l, input)
		if err := l.ProtectedCall(1, 1, 0); err != nil {
			return nil, fmt.Errorf("exec: %w", runError(ctx, err))
		}
		result := pullValue(l, -1)
		l.Pop(1)
		return result, nil
	}
	l.Pop(1)

	if chunkResult != nil {
		return chunkResult, nil
	}
	return input, nil
}

// runError wraps a failed call, keeping the context error when the call was
// aborted by cancellation.
func runError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %w", ErrScript, ctxErr)
	}
	return fmt.Errorf("%w: %v", ErrScript, err)
}

// Check compiles source without running it.
func Check(source string) error {
	l := lua.NewState()
	if err := lua.LoadString(l, source); err != nil {
		return fmt.Errorf("%w: %v", ErrScript, err)
	}
	return nil
}

func bind(l *lua.State, env map[string]any) {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pushValue(l, env[name])
		l.SetGlobal(name)
	}
}

package builtin

import (
	"context"
	"fmt"
	"io"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/internal/ctxlog"
)

type consoleKey struct{}

// WithConsoleWriter returns a context whose executions write Console Log
// output to w.
func WithConsoleWriter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, consoleKey{}, w)
}

func consoleFrom(ctx context.Context, fallback io.Writer) io.Writer {
	if w, ok := ctx.Value(consoleKey{}).(io.Writer); ok && w != nil {
		return w
	}
	if fallback == nil {
		return io.Discard
	}
	return fallback
}

func newConsoleLog(fallback io.Writer) pinflow.Factory {
	return func() (pinflow.Node, error) {
		return build(pinflow.NewFunctionNode(TypeConsoleLog, "Console Log",
			func(ctx context.Context, n *pinflow.FunctionNode) error {
				msg, err := pinflow.ArgAs[string](ctx, n, "message")
				if err != nil {
					return err
				}
				ctxlog.FromContext(ctx).DebugContext(ctx, "console log", "node", n.UniqueID(), "message", msg)
				_, err = fmt.Fprintln(consoleFrom(ctx, fallback), msg)
				return err
			},
			pinflow.WithDescription("Logs a message to the console."),
			pinflow.WithCategory(CategoryLogging),
			pinflow.WithInputs(pinflow.NewInputArgumentPin("message", "Message", pinflow.TypeString, pinflow.WithDefault(""))),
		))
	}
}

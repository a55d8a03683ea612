package builtin

import (
	"context"
	"fmt"

	"github.com/agentstation/pinflow"
)

func flowEntries() []entry {
	return []entry{
		{TypeExecReroute, newExecReroute},
		{TypeBranch, newBranch},
		{TypeForLoop, newForLoop},
		{TypeForEachLoop, newForEachLoop},
	}
}

func newBegin() (pinflow.Node, error) {
	return build(pinflow.NewEntryNode(TypeBegin, "Begin",
		pinflow.WithDescription("Starts the execution of the graph."),
		pinflow.WithCategory(CategoryFlowControl),
	))
}

func newExecReroute() (pinflow.Node, error) {
	out := pinflow.NewOutputFlowPin(pinflow.ExecOut, "")
	in := pinflow.NewInputFlowPin(pinflow.ExecIn, "", out.Execute)

	return build(pinflow.NewMacroNode(TypeExecReroute, "Exec Reroute",
		pinflow.WithDescription("Reroutes the execution flow to another node."),
		pinflow.WithCategory(CategoryFlowControl),
		pinflow.WithInputs(in),
		pinflow.WithOutputs(out),
	))
}

func newBranch() (pinflow.Node, error) {
	var node *pinflow.MacroNode

	condition := pinflow.NewInputArgumentPin(pinCondition, "Condition", pinflow.TypeBool, pinflow.WithDefault(false))
	onTrue := pinflow.NewOutputFlowPin("exec_true", "True")
	onFalse := pinflow.NewOutputFlowPin("exec_false", "False")

	in := pinflow.NewInputFlowPin(pinflow.ExecIn, "", func(ctx context.Context) error {
		ok, err := pinflow.PinValue[bool](ctx, condition)
		if err != nil {
			return pinflow.WrapNodeError(node, err)
		}
		if ok {
			return onTrue.Execute(ctx)
		}
		return onFalse.Execute(ctx)
	})

	node, err := pinflow.NewMacroNode(TypeBranch, "Branch",
		pinflow.WithDescription("Executes one of two branches based on a condition."),
		pinflow.WithCategory(CategoryFlowControl),
		pinflow.WithInputs(in, condition),
		pinflow.WithOutputs(onTrue, onFalse),
	)
	return build(node, err)
}

// loop holds the run-time state of one loop node instance.
type loop struct {
	node   *pinflow.MacroNode
	broken bool
}

func (l *loop) stop(context.Context) error {
	l.broken = true
	return nil
}

func newForLoop() (pinflow.Node, error) {
	l := &loop{}

	start := pinflow.NewInputArgumentPin("start", "Start", pinflow.TypeInt, pinflow.WithDefault(0))
	end := pinflow.NewInputArgumentPin("end", "End", pinflow.TypeInt, pinflow.WithDefault(0))
	step := pinflow.NewInputArgumentPin("step", "Step", pinflow.TypeInt, pinflow.WithDefault(1))
	body := pinflow.NewOutputFlowPin(pinExecBody, "Loop Body")
	index := pinflow.NewOutputArgumentPin("index", "Index", pinflow.TypeInt)
	done := pinflow.NewOutputFlowPin(pinflow.ExecOut, "Completed")

	run := func(ctx context.Context) error {
		l.broken = false

		from, err := pinflow.PinValue[int](ctx, start)
		if err != nil {
			return pinflow.WrapNodeError(l.node, err)
		}
		to, err := pinflow.PinValue[int](ctx, end)
		if err != nil {
			return pinflow.WrapNodeError(l.node, err)
		}
		by, err := pinflow.PinValue[int](ctx, step)
		if err != nil {
			return pinflow.WrapNodeError(l.node, err)
		}
		if err := checkBounds(from, to, by); err != nil {
			return pinflow.WrapNodeError(l.node, err)
		}

		for i, more := from, inRange(from, to, by); more; i, more = nextIndex(i, to, by) {
			if err := ctx.Err(); err != nil {
				return pinflow.WrapNodeError(l.node, err)
			}
			if err := index.Set(i); err != nil {
				return pinflow.WrapNodeError(l.node, err)
			}
			if err := body.Execute(ctx); err != nil {
				return err
			}
			if l.broken {
				break
			}
		}
		return done.Execute(ctx)
	}

	node, err := pinflow.NewMacroNode(TypeForLoop, "For Loop",
		pinflow.WithDescription("Executes the loop body for each index from start towards end, end excluded."),
		pinflow.WithCategory(CategoryFlowControl),
		pinflow.WithInputs(
			pinflow.NewInputFlowPin(pinflow.ExecIn, "", run),
			start, end, step,
			pinflow.NewInputFlowPin(pinExecBreak, "Break", l.stop),
		),
		pinflow.WithOutputs(body, index, done),
	)
	l.node = node
	return build(node, err)
}

// checkBounds rejects a zero step and a step pointing away from end.
func inRange(i, to, by int) bool {
	return (by > 0 && i < to) || (by < 0 && i > to)
}

// nextIndex steps i towards to, reporting false when the next index would
// reach or pass to. Distances are measured unsigned so stepping never wraps.
func nextIndex(i, to, by int) (int, bool) {
	if !inRange(i, to, by) {
		return 0, false
	}
	var dist, stride uint64
	if by > 0 {
		dist, stride = uint64(to)-uint64(i), uint64(by)
	} else {
		dist, stride = uint64(i)-uint64(to), uint64(-(by+1))+1
	}
	if dist <= stride {
		return 0, false
	}
	return i + by, true
}

func checkBounds(start, end, step int) error {
	switch {
	case step == 0:
		return fmt.Errorf("%w: step cannot be zero", pinflow.ErrInvalidLoopBounds)
	case step > 0 && start >= end:
		return fmt.Errorf("%w: start %d must be less than end %d for step %d", pinflow.ErrInvalidLoopBounds, start, end, step)
	case step < 0 && start <= end:
		return fmt.Errorf("%w: start %d must be greater than end %d for step %d", pinflow.ErrInvalidLoopBounds, start, end, step)
	}
	return nil
}

func newForEachLoop() (pinflow.Node, error) {
	l := &loop{}

	list := pinflow.NewInputArgumentPin("list", "List", pinflow.TypeList, pinflow.WithDefault([]any{}))
	body := pinflow.NewOutputFlowPin(pinExecBody, "Loop Body")
	item := pinflow.NewOutputArgumentPin("item", "Item", pinflow.TypeAny)
	done := pinflow.NewOutputFlowPin(pinflow.ExecOut, "Completed")

	run := func(ctx context.Context) error {
		l.broken = false

		items, err := pinflow.PinValue[[]any](ctx, list)
		if err != nil {
			return pinflow.WrapNodeError(l.node, err)
		}

		for _, v := range items {
			if err := ctx.Err(); err != nil {
				return pinflow.WrapNodeError(l.node, err)
			}
			if err := item.Set(v); err != nil {
				return pinflow.WrapNodeError(l.node, err)
			}
			if err := body.Execute(ctx); err != nil {
				return err
			}
			if l.broken {
				break
			}
		}
		return done.Execute(ctx)
	}

	node, err := pinflow.NewMacroNode(TypeForEachLoop, "For Each Loop",
		pinflow.WithDescription("Executes the loop body for each item of the list."),
		pinflow.WithCategory(CategoryFlowControl),
		pinflow.WithInputs(
			pinflow.NewInputFlowPin(pinflow.ExecIn, "", run),
			list,
			pinflow.NewInputFlowPin(pinExecBreak, "Break", l.stop),
		),
		pinflow.WithOutputs(body, item, done),
	)
	l.node = node
	return build(node, err)
}

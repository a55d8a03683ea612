/*
Package pinflow is an execution engine for visual programs: graphs of typed
nodes connected through pins.

Pins come in four kinds. Flow pins carry control: an output flow pin hands
control to at most one input flow pin, which runs the routine bound to it.
Argument pins carry data: an input argument pin reads from at most one output
argument pin, and an output argument pin may feed any number of inputs.

Two evaluation disciplines share the same pins:

  - Flow execution pushes control from the entry node through a synchronous
    chain of flow pins.
  - Pull evaluation computes values on demand. Reading an output argument pin
    of a pure function node re-runs that node's body on every read.

Nodes come in three shapes:

	// Entry node: output pins only, starts the graph.
	begin, _ := pinflow.NewEntryNode("example.Begin", "Begin")

	// Impure function node: exec_in and exec_out are injected around the
	// declared argument pins.
	log, _ := pinflow.NewFunctionNode("example.Log", "Log",
		func(ctx context.Context, n *pinflow.FunctionNode) error {
			msg, err := n.Arg(ctx, "message")
			if err != nil {
				return err
			}
			fmt.Println(msg)
			return nil
		},
		pinflow.WithInputs(pinflow.NewInputArgumentPin("message", "Message", pinflow.TypeString)),
	)

	// Macro node: author-defined flow pins bound to closures.

Wiring and running:

	out, _ := begin.OutputFlow(pinflow.ExecOut)
	in, _ := log.InputFlow(pinflow.ExecIn)
	_ = pinflow.Connect(out, in)

	g, _ := pinflow.NewGraph(begin, []pinflow.Node{log}, nil)
	err := g.Execute(ctx)

Graphs are usually loaded from a description document by package loader,
with node types resolved through a Registry populated by package builtin.

Cycles among pure nodes are not prevented; reading a value on such a cycle
recurses until the stack is exhausted. PullCycles reports them.
*/
package pinflow

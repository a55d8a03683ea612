package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/builtin"
	"github.com/agentstation/pinflow/loader"
	"github.com/agentstation/pinflow/metrics"
)

// runOptions holds flags of the run command.
type runOptions struct {
	graph   int
	all     bool
	dryRun  bool
	timeout time.Duration
	events  bool
	stats   bool
}

// runResult reports one executed graph in structured output.
type runResult struct {
	Graph    int               `json:"graph" yaml:"graph"`
	Output   []string          `json:"output" yaml:"output"`
	Events   []pinflow.Event   `json:"events,omitempty" yaml:"events,omitempty"`
	Stats    *metrics.Snapshot `json:"stats,omitempty" yaml:"stats,omitempty"`
	Duration string            `json:"duration" yaml:"duration"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Execute a graph from a description document",
		Long: `Load a JSON or YAML description document and execute its first graph, or
the graph selected with --graph. Use "-" to read the document from stdin.`,
		Example: `  # Run the first graph
  pinflow run hello.json

  # Run every graph in order
  pinflow run program.yaml --all

  # Validate and wire without executing
  pinflow run program.yaml --dry-run

  # Report console output and execution events as JSON
  pinflow run program.yaml --output json --events

  # Count node activity
  pinflow run program.yaml --stats`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], opts)
		},
	}

	cmd.Flags().IntVar(&opts.graph, "graph", 0, "Index of the graph to execute")
	cmd.Flags().BoolVar(&opts.all, "all", false, "Execute every graph in document order")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Load and wire the graphs without executing")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "Abort execution after this duration (0 = no limit)")
	cmd.Flags().BoolVar(&opts.events, "events", false, "Include execution events in structured output")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "Report per-node flow and evaluation counts")
	return cmd
}

func (a *app) run(cmd *cobra.Command, path string, opts *runOptions) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	data, err := readDocument(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	reg, err := a.registry(cmd)
	if err != nil {
		return err
	}

	recorder := pinflow.NewRecorder()
	collector := metrics.New()
	l := loader.New(reg,
		loader.WithLogger(a.logger),
		loader.WithSchemaValidation(a.cfg.SchemaValidation),
		loader.WithGraphOptions(
			pinflow.WithLogger(a.logger),
			pinflow.WithObserver(recorder),
			pinflow.WithObserver(collector),
		),
	)
	graphs, err := l.LoadBytes(ctx, data)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	indexes := []int{opts.graph}
	if opts.all {
		indexes = indexes[:0]
		for i := range graphs {
			indexes = append(indexes, i)
		}
	} else if opts.graph < 0 || opts.graph >= len(graphs) {
		return fmt.Errorf("graph index %d out of range (document has %d)", opts.graph, len(graphs))
	}

	if opts.dryRun {
		a.logger.Debug("dry run", "path", path, "graphs", len(graphs))
		if a.output == textFormat {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Loaded %d graph(s) from %s (dry run)\n", len(graphs), path)
			return err
		}
		return writeStructured(cmd.OutOrStdout(), a.output, map[string]any{"path": path, "graphs": len(graphs), "valid": true})
	}

	results := make([]runResult, 0, len(indexes))
	var firstErr error
	for _, i := range indexes {
		recorder.Reset()
		collector.Reset()
		res, err := a.execute(ctx, cmd, graphs[i], opts)
		res.Graph = i
		if opts.events {
			res.Events = recorder.Events()
		}
		if opts.stats {
			snapshot := collector.Snapshot()
			res.Stats = &snapshot
			if a.output == textFormat {
				writeStats(cmd.ErrOrStderr(), i, snapshot)
			}
		}
		results = append(results, res)
		if err != nil {
			firstErr = fmt.Errorf("graph %d: %w", i, err)
			break
		}
	}

	if a.output != textFormat {
		if err := writeStructured(cmd.OutOrStdout(), a.output, results); err != nil {
			return err
		}
	}
	return firstErr
}

// execute runs one graph. In text mode console output goes straight to the
// command output; structured modes capture it into the result.
func (a *app) execute(ctx context.Context, cmd *cobra.Command, g *pinflow.Graph, opts *runOptions) (runResult, error) {
	var console bytes.Buffer
	if a.output != textFormat {
		ctx = builtin.WithConsoleWriter(ctx, &console)
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	start := time.Now()
	err := g.Execute(ctx)
	res := runResult{
		Output:   splitLines(console.String()),
		Duration: time.Since(start).String(),
	}
	if err != nil {
		res.Error = err.Error()
	}
	a.logger.Debug("graph executed", "duration", res.Duration, "error", err)
	return res, err
}

// writeStats prints a per-node activity table.
func writeStats(out io.Writer, graph int, s metrics.Snapshot) {
	_, _ = fmt.Fprintf(out, "Graph %d: %s\n", graph, s.LastDuration)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NODE\tTYPE\tFLOWS\tEVALUATIONS")
	for _, n := range s.Nodes {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", n.NodeID, n.TypeID, n.Flows, n.Evaluations)
	}
	_ = w.Flush()
}

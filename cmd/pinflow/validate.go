package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/pinflow"
	"github.com/agentstation/pinflow/batch"
	"github.com/agentstation/pinflow/loader"
)

// validation reports one checked document.
type validation struct {
	Path   string `json:"path" yaml:"path"`
	Valid  bool   `json:"valid" yaml:"valid"`
	Graphs int    `json:"graphs,omitempty" yaml:"graphs,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
}

var errInvalidDocuments = errors.New("one or more documents are invalid")

func newValidateCmd(a *app) *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Validate description documents",
		Long: `Parse, schema-check and wire every graph of each document without
executing anything. Documents are checked concurrently.`,
		Example: `  pinflow validate hello.json
  pinflow validate graphs/*.yaml --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validate(cmd, args, concurrency)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Documents validated at once")
	return cmd
}

func (a *app) validate(cmd *cobra.Command, paths []string, concurrency int) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := a.registry(cmd)
	if err != nil {
		return err
	}
	l := loader.New(reg,
		loader.WithLogger(a.logger),
		loader.WithSchemaValidation(a.cfg.SchemaValidation),
	)

	results, err := batch.Map(ctx, paths, func(ctx context.Context, path string) ([]*pinflow.Graph, error) {
		data, err := readDocument(path, cmd.InOrStdin())
		if err != nil {
			return nil, err
		}
		return l.LoadBytes(ctx, data)
	}, batch.WithConcurrency(concurrency))
	if err != nil {
		return err
	}

	report := make([]validation, len(results))
	for i, r := range results {
		report[i] = validation{Path: paths[i], Valid: r.Err == nil, Graphs: len(r.Value)}
		if r.Err != nil {
			report[i].Error = r.Err.Error()
		}
	}

	if a.output == textFormat {
		out := cmd.OutOrStdout()
		for _, v := range report {
			if v.Valid {
				fmt.Fprintf(out, "ok    %s (%d graph(s))\n", v.Path, v.Graphs)
			} else {
				fmt.Fprintf(out, "FAIL  %s: %s\n", v.Path, v.Error)
			}
		}
	} else if err := writeStructured(cmd.OutOrStdout(), a.output, report); err != nil {
		return err
	}

	if n := len(batch.Errors(results)); n > 0 {
		return fmt.Errorf("%w (%d of %d)", errInvalidDocuments, n, len(paths))
	}
	return nil
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/pinflow/definition"
	"github.com/agentstation/pinflow/loader"
)

func newConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <file>",
		Short: "Load a document and write it back in canonical form",
		Long: `Load and wire every graph of a document, then serialize the live graphs
back into a description document. Pin defaults and argument values come out
sanitized against their pin types. Text output writes YAML.`,
		Example: `  # Convert JSON to YAML
  pinflow convert hello.json

  # Normalize a YAML document as JSON
  pinflow convert program.yaml --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			data, err := readDocument(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			reg, err := a.registry(cmd)
			if err != nil {
				return err
			}
			graphs, err := loader.New(reg,
				loader.WithLogger(a.logger),
				loader.WithSchemaValidation(a.cfg.SchemaValidation),
			).LoadBytes(ctx, data)
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}

			doc := definition.FromGraphs(graphs...)
			parser := definition.NewParser()
			var out []byte
			if a.output == jsonFormat {
				out, err = parser.MarshalJSON(doc)
				if err == nil {
					out = append(out, '\n')
				}
			} else {
				out, err = parser.MarshalYAML(doc)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

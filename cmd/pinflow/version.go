package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display version information about the pinflow CLI.`,
		Example: `  # Show version
  pinflow version

  # Show version in JSON format
  pinflow version --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			versionInfo := map[string]string{
				"version":   version,
				"commit":    commit,
				"buildDate": buildDate,
				"goVersion": runtime.Version(),
			}

			if a.output != textFormat {
				return writeStructured(cmd.OutOrStdout(), a.output, versionInfo)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "pinflow version %s\n", version)
			if version != "dev" {
				fmt.Fprintf(out, "  commit:     %s\n", commit)
				fmt.Fprintf(out, "  built:      %s\n", buildDate)
				fmt.Fprintf(out, "  go version: %s\n", runtime.Version())
			}
			return nil
		},
	}
}

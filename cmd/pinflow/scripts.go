package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentstation/pinflow/builtin/script"
)

var errNoScriptsDir = errors.New("no scripts directory configured (use --scripts or PINFLOW_SCRIPTS_DIR)")

// scriptInfo is the structured view of a discovered script.
type scriptInfo struct {
	Name        string `json:"name" yaml:"name"`
	TypeID      string `json:"typeId" yaml:"typeId"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Path        string `json:"path" yaml:"path"`
}

func newScriptsCmd(a *app) *cobra.Command {
	scriptsCmd := &cobra.Command{
		Use:   "scripts",
		Short: "Manage Lua script nodes",
		Long: `Lua scripts in the scripts directory become pure nodes with an "input" pin
and a "result" pin. A script defines exec(input), or is a chunk whose
result becomes the output. Metadata comes from leading comments:

  -- @name: my-script
  -- @category: Data
  -- @description: My custom script
  -- @version: 1.0.0`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.ScriptsDir == "" {
				return errNoScriptsDir
			}
			manager := script.NewManager(a.cfg.ScriptsDir, a.logger)
			if err := manager.Discover(); err != nil {
				return err
			}

			scripts := manager.List()
			infos := make([]scriptInfo, 0, len(scripts))
			for _, s := range scripts {
				infos = append(infos, scriptInfo{
					Name:        s.Name,
					TypeID:      s.TypeID(),
					Category:    s.Category,
					Description: s.Description,
					Version:     s.Version,
					Path:        s.Path,
				})
			}
			if a.output != textFormat {
				return writeStructured(cmd.OutOrStdout(), a.output, infos)
			}
			return outputScripts(cmd, a.cfg.ScriptsDir, infos)
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Compile Lua scripts without running them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := script.NewManager("", a.logger)
			failed := 0
			for _, path := range args {
				s, err := manager.LoadScript(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok    %s (%s)\n", path, s.TypeID())
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scripts failed to compile", failed, len(args))
			}
			return nil
		},
	}

	scriptsCmd.AddCommand(listCmd, validateCmd)
	return scriptsCmd
}

func outputScripts(cmd *cobra.Command, dir string, infos []scriptInfo) error {
	out := cmd.OutOrStdout()
	if len(infos) == 0 {
		fmt.Fprintf(out, "No scripts found in %s\n", dir)
		return nil
	}

	byCategory := make(map[string][]scriptInfo)
	for _, s := range infos {
		byCategory[s.Category] = append(byCategory[s.Category], s)
	}
	categories := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	fmt.Fprintf(out, "Discovered %d scripts:\n", len(infos))
	for _, cat := range categories {
		fmt.Fprintf(out, "\n%s:\n", cat)
		fmt.Fprintln(out, strings.Repeat("-", len(cat)+1))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, s := range byCategory[cat] {
			desc := s.Description
			if desc == "" {
				desc = "(no description)"
			}
			if s.Version != "" {
				_, _ = fmt.Fprintf(w, "  %s\t%s\t(v%s)\n", s.Name, desc, s.Version)
			} else {
				_, _ = fmt.Fprintf(w, "  %s\t%s\n", s.Name, desc)
			}
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

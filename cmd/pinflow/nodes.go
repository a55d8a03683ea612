package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agentstation/pinflow"
)

func newNodesCmd(a *app) *cobra.Command {
	var category string

	nodesCmd := &cobra.Command{
		Use:   "nodes",
		Short: "List available node types",
		Long:  `List every registered node type grouped by category.`,
		Example: `  pinflow nodes
  pinflow nodes --category Math
  pinflow nodes --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := a.registry(cmd)
			if err != nil {
				return err
			}
			nodes, err := reg.DescribeAll()
			if err != nil {
				return err
			}
			if category != "" {
				filtered := nodes[:0]
				for _, n := range nodes {
					if strings.EqualFold(n.Category, category) {
						filtered = append(filtered, n)
					}
				}
				nodes = filtered
			}

			if a.output != textFormat {
				return writeStructured(cmd.OutOrStdout(), a.output, nodes)
			}
			return outputTable(cmd.OutOrStdout(), nodes)
		},
	}
	nodesCmd.Flags().StringVar(&category, "category", "", "Only list nodes of this category")

	infoCmd := &cobra.Command{
		Use:   "info <type>",
		Short: "Show detailed info about a node type",
		Example: `  pinflow nodes info pinflow.builtin.ForLoopNode
  pinflow nodes info pinflow.builtin.AddNode --output yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry(cmd)
			if err != nil {
				return err
			}
			meta, err := reg.Describe(args[0])
			if err != nil {
				return err
			}
			if a.output != textFormat {
				return writeStructured(cmd.OutOrStdout(), a.output, meta)
			}
			return outputInfo(cmd.OutOrStdout(), meta)
		},
	}
	nodesCmd.AddCommand(infoCmd)
	return nodesCmd
}

// outputTable writes nodes grouped by category.
func outputTable(out io.Writer, nodes []pinflow.Metadata) error {
	categories := make(map[string][]pinflow.Metadata)
	for _, node := range nodes {
		cat := node.Category
		if cat == "" {
			cat = "Other"
		}
		categories[cat] = append(categories[cat], node)
	}

	categoryNames := make([]string, 0, len(categories))
	for cat := range categories {
		categoryNames = append(categoryNames, cat)
	}
	sort.Strings(categoryNames)

	for _, cat := range categoryNames {
		fmt.Fprintf(out, "\n%s:\n", cat)
		fmt.Fprintln(out, strings.Repeat("-", len(cat)+1))

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, node := range categories[cat] {
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", node.TypeID, node.Name, node.Description)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(out, "\nTotal: %d node types\n", len(nodes))
	fmt.Fprintln(out, "\nUse 'pinflow nodes info <type>' for detailed information about a specific node.")
	return nil
}

// outputInfo writes one node type with its pins.
func outputInfo(out io.Writer, meta pinflow.Metadata) error {
	fmt.Fprintf(out, "Node Type: %s\n", meta.TypeID)
	fmt.Fprintf(out, "Name: %s\n", meta.Name)
	if meta.Category != "" {
		fmt.Fprintf(out, "Category: %s\n", meta.Category)
	}
	if meta.Description != "" {
		fmt.Fprintf(out, "Description: %s\n", meta.Description)
	}
	kind := meta.Kind
	if meta.Pure {
		kind += " (pure)"
	}
	fmt.Fprintf(out, "Kind: %s\n", kind)

	for _, side := range []struct {
		title string
		pins  []pinflow.PinMetadata
	}{{"Inputs", meta.Inputs}, {"Outputs", meta.Outputs}} {
		if len(side.pins) == 0 {
			continue
		}
		fmt.Fprintf(out, "\n%s:\n", side.title)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		for _, p := range side.pins {
			typ := p.Type
			if p.TypeDependsOn != "" {
				typ += " (follows " + p.TypeDependsOn + ")"
			}
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%s\n", p.ID, p.Kind, typ)
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	return nil
}

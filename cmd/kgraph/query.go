package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/h7lu/modkg/services/kgraph/graph"
	"github.com/h7lu/modkg/services/kgraph/query"
	"github.com/h7lu/modkg/services/kgraph/tools"
)

func newQueryCmd() *cobra.Command {
	var (
		graphDir   string
		direction  string
		kindFilter string
		page       int
		pageSize   int
	)

	cmd := &cobra.Command{
		Use:   "query <ref>",
		Short: "Resolve a symbol reference and print its uses or used-by edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(graphDir, args[0], direction, kindFilter, page, pageSize)
		},
	}

	cmd.Flags().StringVar(&graphDir, "graph", ".", "base path of the graph artefacts (<graph>.nodes.tsv, <graph>.csr.bin, ...)")
	cmd.Flags().StringVar(&direction, "direction", "uses", "uses | used_by")
	cmd.Flags().StringVar(&kindFilter, "kind", "any", "any | code | xml")
	cmd.Flags().IntVar(&page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&pageSize, "page-size", 20, "results per page")

	return cmd
}

func runQuery(graphDir, ref, direction, kindFilter string, page, pageSize int) error {
	g, err := graph.Load(graphDir)
	if err != nil {
		return fmt.Errorf("kgraph query: %w", err)
	}

	if ref == "" {
		return fmt.Errorf("kgraph query: ref must not be empty")
	}
	if _, ok := query.Resolve(g, ref); !ok {
		fmt.Fprintf(os.Stderr, "kgraph query: %q did not resolve to any symbol\n", ref)
	}

	dir := query.Uses
	toolName := "get_uses"
	if direction == "used_by" {
		dir = query.UsedBy
		toolName = "get_used_by"
	}

	var kf query.KindFilter
	switch kindFilter {
	case "code":
		kf = query.KindCode
	case "xml":
		kf = query.KindXML
	}

	var tool tools.Tool
	var params tools.TypedParams
	if dir == query.Uses {
		tool = tools.NewGetUsesTool(g)
		params = tools.GetUsesParams{Ref: ref, KindFilter: kf, Page: page, PageSize: pageSize}
	} else {
		tool = tools.NewGetUsedByTool(g)
		params = tools.GetUsedByParams{Ref: ref, KindFilter: kf, Page: page, PageSize: pageSize}
	}
	_ = toolName

	result, err := tool.Execute(context.Background(), params)
	if err != nil {
		return fmt.Errorf("kgraph query: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

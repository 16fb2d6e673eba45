package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"
	"github.com/spf13/cobra"

	"github.com/h7lu/modkg/services/kgraph/graph"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old-graph-base> <new-graph-base>",
		Short: "Compare the node sets of two completed graph builds",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(args[0], args[1])
		},
	}
	return cmd
}

// runDiff loads two already-built graphs and reports which symbols were
// added or removed between them. It never mutates either graph, so it
// does not conflict with the no-incremental-update constraint — both
// inputs are independently completed builds.
func runDiff(oldDir, newDir string) error {
	oldGraph, err := graph.Load(oldDir)
	if err != nil {
		return fmt.Errorf("kgraph diff: loading %s: %w", oldDir, err)
	}
	newGraph, err := graph.Load(newDir)
	if err != nil {
		return fmt.Errorf("kgraph diff: loading %s: %w", newDir, err)
	}

	oldLines := sortedLines(oldGraph.Nodes.IDs())
	newLines := sortedLines(newGraph.Nodes.IDs())

	unified := naiveUnifiedDiff(oldDir, newDir, oldLines, newLines)
	if unified == "" {
		fmt.Println("no node changes")
		return nil
	}

	fileDiff, err := godiff.ParseFileDiff([]byte(unified))
	if err != nil {
		return fmt.Errorf("kgraph diff: parsing generated diff: %w", err)
	}

	var added, removed int
	for _, hunk := range fileDiff.Hunks {
		for _, line := range strings.Split(string(hunk.Body), "\n") {
			switch {
			case strings.HasPrefix(line, "+"):
				added++
			case strings.HasPrefix(line, "-"):
				removed++
			}
		}
	}

	printed, err := godiff.PrintFileDiff(fileDiff)
	if err != nil {
		return fmt.Errorf("kgraph diff: printing diff: %w", err)
	}
	os.Stdout.Write(printed)
	fmt.Printf("\n%d symbols added, %d symbols removed\n", added, removed)
	return nil
}

func sortedLines(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}

// naiveUnifiedDiff produces a minimal unified-diff text for two sorted
// line sets (no common-subsequence alignment, since symbol IDs are an
// unordered set rather than sequential text): every old-only line is a
// removal, every new-only line is an addition.
func naiveUnifiedDiff(oldName, newName string, oldLines, newLines []string) string {
	oldSet := make(map[string]bool, len(oldLines))
	for _, l := range oldLines {
		oldSet[l] = true
	}
	newSet := make(map[string]bool, len(newLines))
	for _, l := range newLines {
		newSet[l] = true
	}

	var body strings.Builder
	removed, added := 0, 0
	for _, l := range oldLines {
		if !newSet[l] {
			body.WriteString("-" + l + "\n")
			removed++
		}
	}
	for _, l := range newLines {
		if !oldSet[l] {
			body.WriteString("+" + l + "\n")
			added++
		}
	}
	if removed == 0 && added == 0 {
		return ""
	}

	var out strings.Builder
	fmt.Fprintf(&out, "--- %s\n", oldName)
	fmt.Fprintf(&out, "+++ %s\n", newName)
	fmt.Fprintf(&out, "@@ -1,%d +1,%d @@\n", len(oldLines), len(newLines))
	out.WriteString(body.String())
	return out.String()
}

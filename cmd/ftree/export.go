package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/GreedyA1/obsidian-family-tree/internal/ui"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the graph as JSON",
	Long: `Scan the vault and write the render-ready graph as JSON.

The output contains nodes (persons with display names and gender) and
edges (relationships with a style hint; spouse edges are dashed). Edges
whose endpoints are missing from the vault are excluded.`,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}
		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		graph := e.store.Graph()

		out := os.Stdout
		outPath, _ := cmd.Flags().GetString("out")
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				fatalf("failed to create output file: %v", err)
			}
			defer f.Close()
			out = f
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(graph); err != nil {
			fatalf("failed to encode graph: %v", err)
		}

		if outPath != "" {
			fmt.Println(ui.FormatSuccess(fmt.Sprintf("Exported %d nodes, %d edges to %s",
				len(graph.Nodes), len(graph.Edges), outPath)))
		}
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GreedyA1/obsidian-family-tree/internal/cache"
	"github.com/GreedyA1/obsidian-family-tree/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show graph statistics",
	Long: `Scan the vault and print graph statistics.

With --from-cache the counts are read from the SQLite mirror instead of
scanning, which is what external tools see.`,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}

		fromCache, _ := cmd.Flags().GetBool("from-cache")
		if fromCache {
			if e.cfg.CachePath == "" {
				fatalf("no cache_path configured")
			}
			db, err := cache.Open(e.cfg.CachePath)
			if err != nil {
				fatalf("failed to open cache: %v", err)
			}
			defer db.Close()

			persons, err := db.PersonCount()
			if err != nil {
				fatalf("%v", err)
			}
			rels, err := db.RelationshipCount()
			if err != nil {
				fatalf("%v", err)
			}

			fmt.Println(ui.HeaderStyle.Render("Cache mirror"))
			fmt.Printf("   Path: %s\n", db.Path())
			fmt.Printf("   Persons: %d\n", persons)
			fmt.Printf("   Relationships: %d\n", rels)
			return
		}

		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		byType := make(map[string]int)
		for _, r := range e.store.Relationships() {
			byType[string(r.Type)]++
		}
		graph := e.store.Graph()

		fmt.Println(ui.HeaderStyle.Render("Vault"))
		fmt.Printf("   Persons: %d\n", len(e.store.Persons()))
		fmt.Printf("   Relationships: %d\n", len(e.store.Relationships()))
		for _, t := range []string{"spouse", "parent", "sibling"} {
			if byType[t] > 0 {
				fmt.Printf("     %s: %d\n", t, byType[t])
			}
		}
		fmt.Printf("   Renderable edges: %d\n", len(graph.Edges))
	},
}

func init() {
	statsCmd.Flags().Bool("from-cache", false, "Read counts from the SQLite mirror")
	rootCmd.AddCommand(statsCmd)
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/GreedyA1/obsidian-family-tree/internal/ui"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the vault and report what the graph contains",
	Long: `Perform one full scan of the vault.

Every markdown note is parsed, person records are collected, and
relationship stubs are reconciled into canonical edges. The result is
reported and discarded; use "ftree watch" to keep a live graph.`,
	Run: func(cmd *cobra.Command, args []string) {
		e, err := newEnv(cmd, nil)
		if err != nil {
			fatalf("%v", err)
		}

		start := time.Now()
		if err := e.scan(); err != nil {
			fatalf("scan failed: %v", err)
		}

		persons := e.store.Persons()
		rels := e.store.Relationships()

		fmt.Println(ui.FormatSuccess(fmt.Sprintf("Scan complete in %v", time.Since(start).Round(time.Millisecond))))
		fmt.Printf("   Persons: %d\n", len(persons))
		fmt.Printf("   Relationships: %d\n", len(rels))

		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			fmt.Println()
			fmt.Println(ui.HeaderStyle.Render("Persons"))
			for _, p := range persons {
				fmt.Printf("  %s  %s\n", ui.FormatPerson(p.ID, p.FullName()), ui.DimStyle.Render(p.NotePath))
			}
			fmt.Println()
			fmt.Println(ui.HeaderStyle.Render("Relationships"))
			for _, r := range rels {
				fmt.Printf("  %s %s %s %s\n",
					r.Person1ID, ui.RelationStyle.Render(string(r.Type)), r.Person2ID,
					ui.DimStyle.Render(r.SourceFile))
			}
		}
	},
}

func init() {
	scanCmd.Flags().BoolP("verbose", "v", false, "List persons and relationships")
	rootCmd.AddCommand(scanCmd)
}

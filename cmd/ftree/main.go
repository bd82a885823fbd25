// ftree synchronizes a markdown vault of person notes with a family
// relationship graph and serves it over a local dashboard.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ftree",
	Short: "Family tree graph engine for markdown vaults",
	Long: `ftree builds a family relationship graph from a vault of markdown
person notes and keeps the two in sync.

Person notes carry a YAML frontmatter header with the family-tree-person
marker, name fields, and relationship stubs pointing at other notes by
wiki link. ftree reconciles those stubs into a deduplicated graph, watches
the vault for changes, and can serve the graph over a REST and WebSocket
dashboard.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file path (default: .ftree.yaml in the current directory)")
	rootCmd.PersistentFlags().String("vault", "", "Vault directory (overrides config)")
}

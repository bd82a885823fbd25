package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/GreedyA1/obsidian-family-tree/internal/cache"
	"github.com/GreedyA1/obsidian-family-tree/internal/dashboard"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and keep the graph synchronized",
	Long: `Run the sync daemon: scan the vault, then watch it for changes and
keep the in-memory graph converged with the notes on disk.

Edits are debounced so a burst of saves triggers one reconciliation over
the final state. Deletes and renames apply immediately.

With --dashboard the graph is also served over HTTP and WebSocket:
  GET  /api/graph               render-ready graph
  GET  /api/persons             person list
  POST /api/persons             create a person note
  POST /api/relationships       persist an edge into both notes
  ws://host/ws                  coarse-grained change feed

With cache_path set in the config, every graph change is mirrored into an
embedded SQLite database that external tools can query.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := log.New(os.Stderr, "[ftree] ", log.LstdFlags)

		e, err := newEnv(cmd, logger)
		if err != nil {
			fatalf("%v", err)
		}

		if e.cfg.LogFile != "" {
			logger.SetOutput(&lumberjack.Logger{
				Filename:   e.cfg.LogFile,
				MaxSize:    10, // MB
				MaxBackups: 3,
				MaxAge:     28, // days
			})
		}

		if err := e.scan(); err != nil {
			fatalf("initial scan failed: %v", err)
		}

		if err := e.vault.Watch(); err != nil {
			fatalf("failed to start vault watcher: %v", err)
		}
		defer e.vault.Close()

		e.scanner.Start()
		defer e.scanner.Stop()

		if e.cfg.CachePath != "" {
			db, err := cache.Open(e.cfg.CachePath)
			if err != nil {
				fatalf("failed to open cache: %v", err)
			}
			defer db.Close()
			unsubscribe := cache.Mirror(e.store, db, logger)
			defer unsubscribe()
			fmt.Printf("Cache mirror: %s\n", e.cfg.CachePath)
		}

		withDashboard, _ := cmd.Flags().GetBool("dashboard")
		if withDashboard {
			port, _ := cmd.Flags().GetInt("port")
			if port == 0 {
				port = e.cfg.DashboardPort
			}
			server := dashboard.NewServer(e.store, e.mgr, &dashboard.Config{
				Port:   port,
				Logger: log.New(os.Stderr, "[dashboard] ", log.LstdFlags),
			})
			if err := server.Start(); err != nil {
				fatalf("failed to start dashboard: %v", err)
			}
			defer server.Stop()

			fmt.Printf("Dashboard: http://localhost:%d\n", port)
			fmt.Printf("WebSocket endpoint: ws://localhost:%d/ws\n", port)
		}

		fmt.Printf("Watching %s (%d persons, %d relationships)\n",
			e.cfg.VaultDir, len(e.store.Persons()), len(e.store.Relationships()))
		fmt.Println("Press Ctrl+C to stop...")

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		<-ctx.Done()

		fmt.Println("\nShutting down...")
	},
}

func init() {
	watchCmd.Flags().Bool("dashboard", false, "Serve the graph over HTTP and WebSocket")
	watchCmd.Flags().IntP("port", "p", 0, "Dashboard port (default: from config)")
	rootCmd.AddCommand(watchCmd)
}

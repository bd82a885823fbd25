package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/GreedyA1/obsidian-family-tree/internal/config"
	"github.com/GreedyA1/obsidian-family-tree/internal/diag"
	"github.com/GreedyA1/obsidian-family-tree/internal/notes"
	"github.com/GreedyA1/obsidian-family-tree/internal/scanner"
	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
	"github.com/GreedyA1/obsidian-family-tree/internal/ui"
	"github.com/GreedyA1/obsidian-family-tree/internal/vault"
)

// env wires the vault, store, and scanner together for one command
// invocation.
type env struct {
	cfg     *config.Config
	vault   *vault.DirVault
	store   *tree.Store
	mgr     *notes.Manager
	diags   *diag.Hub
	scanner *scanner.Scanner
	logger  *log.Logger
}

// newEnv loads configuration and builds the engine. Warnings from the
// diagnostic hub go straight to stderr.
func newEnv(cmd *cobra.Command, logger *log.Logger) (*env, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("vault"); dir != "" {
		cfg.VaultDir = dir
	}

	if logger == nil {
		logger = log.New(os.Stderr, "[ftree] ", log.LstdFlags)
	}

	v, err := vault.NewDirVault(cfg.VaultDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault: %w", err)
	}

	diags := diag.NewHub()
	diags.Subscribe(func(ev diag.Event) {
		if ev.Severity >= diag.Warn {
			fmt.Fprintln(os.Stderr, ui.FormatWarning(ev.String()))
		}
	})

	store := tree.NewStore()
	mgr := notes.NewManager(v, cfg.PeopleFolder, diags)
	sc := scanner.New(v, store, mgr, diags, &scanner.Config{
		Debounce:   cfg.Debounce(),
		ScanBlocks: cfg.ScanBlocks,
		Logger:     logger,
	})

	return &env{
		cfg:     cfg,
		vault:   v,
		store:   store,
		mgr:     mgr,
		diags:   diags,
		scanner: sc,
		logger:  logger,
	}, nil
}

// scan runs one full scan, populating the store.
func (e *env) scan() error {
	return e.scanner.InitialScan()
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ui.FormatError(fmt.Sprintf(format, args...)))
	os.Exit(1)
}

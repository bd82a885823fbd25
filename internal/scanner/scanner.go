// Package scanner orchestrates vault synchronization: full scans, stub
// reconciliation into canonical edges, and debounced incremental rescans
// driven by vault change events.
//
// The scanner:
//  1. Enumerates notes and parses person records
//  2. Resolves relationship stubs across notes into deduplicated edges
//  3. Loads the result into the store as one atomic replace
//  4. Watches for changes and re-reconciles with trailing-edge debouncing
package scanner

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/GreedyA1/obsidian-family-tree/internal/blocks"
	"github.com/GreedyA1/obsidian-family-tree/internal/diag"
	"github.com/GreedyA1/obsidian-family-tree/internal/identity"
	"github.com/GreedyA1/obsidian-family-tree/internal/notes"
	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
	"github.com/GreedyA1/obsidian-family-tree/internal/vault"
)

// Config holds scanner configuration.
type Config struct {
	// Debounce is how long to wait after a create/modify event before
	// reconciling. Rapid bursts of edits collapse into one pass over the
	// final state of all notes.
	Debounce time.Duration

	// ScanBlocks enables parsing family-tree code blocks for
	// relationships in addition to frontmatter stubs.
	ScanBlocks bool

	// Logger for scanner activity.
	Logger *log.Logger
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Debounce:   300 * time.Millisecond,
		ScanBlocks: true,
		Logger:     log.New(os.Stderr, "[scanner] ", log.LstdFlags),
	}
}

// Scanner keeps the store converged with the vault.
type Scanner struct {
	vault  vault.Vault
	store  *tree.Store
	notes  *notes.Manager
	diags  *diag.Hub
	config *Config

	// Single-slot debounce: one pending timer process-wide, restarted by
	// each qualifying event, plus the set of paths touched since the last
	// pass (the pass itself re-reads everything, the set only bounds which
	// person records get an explicit field refresh).
	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool

	unsubscribe func()
}

// New creates a Scanner. diags may be nil; config nil means defaults.
func New(v vault.Vault, store *tree.Store, mgr *notes.Manager, diags *diag.Hub, config *Config) *Scanner {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.New(os.Stderr, "[scanner] ", log.LstdFlags)
	}

	return &Scanner{
		vault:   v,
		store:   store,
		notes:   mgr,
		diags:   diags,
		config:  config,
		pending: make(map[string]struct{}),
	}
}

// InitialScan performs a full scan: every note is parsed, stubs are
// reconciled into canonical edges, and the store is replaced atomically.
// Individual note failures are skipped; the scan always completes.
func (s *Scanner) InitialScan() error {
	start := time.Now()

	parsed, err := s.scanNotes()
	if err != nil {
		return fmt.Errorf("full scan failed: %w", err)
	}

	persons := make([]tree.Person, 0, len(parsed))
	for _, path := range sortedPaths(parsed) {
		if note := parsed[path]; note.Person != nil {
			persons = append(persons, *note.Person)
		}
	}
	relationships := s.reconcile(parsed)

	s.store.Load(persons, relationships)

	s.config.Logger.Printf("Full scan complete: %d persons, %d relationships in %v",
		len(persons), len(relationships), time.Since(start).Round(time.Millisecond))
	return nil
}

// Start subscribes to vault change events. Stop must be called to release
// the subscription.
func (s *Scanner) Start() {
	s.mu.Lock()
	s.stopped = false
	s.mu.Unlock()

	s.unsubscribe = s.vault.Subscribe(s.handleEvent)
}

// Stop releases the vault subscription and cancels any pending
// reconciliation so nothing fires into a torn-down store.
func (s *Scanner) Stop() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}

	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.pending = make(map[string]struct{})
	s.mu.Unlock()
}

// scanNotes parses every note in the vault, keyed by path. Non-person notes
// are kept too: they carry no stubs, but their content still feeds the
// code-block pass. Notes that fail to read are reported and skipped. Person
// id collisions (two notes slugging to the same id) are detected here and
// reported; the note at the lexicographically last path wins, matching the
// store's upsert semantics under the scan's sorted order.
func (s *Scanner) scanNotes() (map[string]*notes.Note, error) {
	paths, err := s.vault.List()
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]*notes.Note)
	byID := make(map[string]string)

	for _, path := range paths {
		note, err := s.notes.LoadNote(path)
		if err != nil {
			s.diags.Warnf(path, "skipping unreadable note: %v", err)
			continue
		}
		parsed[path] = note

		if note.Person == nil {
			continue
		}
		if prev, ok := byID[note.Person.ID]; ok {
			s.diags.Warnf(path, "person id %q collides with %s", note.Person.ID, prev)
		}
		byID[note.Person.ID] = path
	}

	return parsed, nil
}

// reconcile resolves stored stubs (and, optionally, code-block statements)
// into canonical relationships. Every edge is stored redundantly as a stub
// in each participant's note, so a seen-set keyed by deterministic id drops
// the second occurrence. Stubs only exist in person notes; code blocks are
// read from every note, so an overview note can declare edges too.
func (s *Scanner) reconcile(parsed map[string]*notes.Note) []tree.Relationship {
	var relationships []tree.Relationship
	seen := make(map[string]bool)

	// Wiki links refer to notes by basename.
	byBasename := make(map[string]*tree.Person, len(parsed))
	for path, note := range parsed {
		if note.Person != nil {
			byBasename[notes.Basename(path)] = note.Person
		}
	}

	for _, path := range sortedPaths(parsed) {
		note := parsed[path]

		for _, stub := range note.Stubs {
			target, ok := notes.WikiLinkTarget(stub.Person)
			if !ok {
				s.diags.Debugf(path, "malformed stub link %q", stub.Person)
				continue
			}
			targetPerson, ok := byBasename[target]
			if !ok {
				// Dangling reference; the target may appear later.
				s.diags.Debugf(path, "stub target %q not found", target)
				continue
			}

			rel, ok := canonicalEdge(stub.Type, *note.Person, *targetPerson)
			if !ok {
				s.diags.Debugf(path, "unknown stub type %q", stub.Type)
				continue
			}
			if seen[rel.ID] {
				continue
			}
			seen[rel.ID] = true
			relationships = append(relationships, rel)
		}

		if s.config.ScanBlocks {
			for _, rel := range blocks.ParseContent(note.Content, path) {
				if seen[rel.ID] {
					continue
				}
				seen[rel.ID] = true
				relationships = append(relationships, rel)
			}
		}
	}

	return relationships
}

// canonicalEdge maps a directional stub onto the canonical graph edge. For
// symmetric types the endpoint ids are ordered lexicographically so that
// the edge parsed from either participant's note gets the same id.
func canonicalEdge(stubType tree.StubType, source, target tree.Person) (tree.Relationship, bool) {
	var relType tree.RelationshipType
	var person1ID, person2ID string

	switch stubType {
	case tree.StubSpouse:
		relType = tree.RelSpouse
		person1ID, person2ID = identity.OrderSymmetric(source.ID, target.ID)
	case tree.StubSibling:
		relType = tree.RelSibling
		person1ID, person2ID = identity.OrderSymmetric(source.ID, target.ID)
	case tree.StubParentOf:
		relType = tree.RelParent
		person1ID, person2ID = source.ID, target.ID
	case tree.StubChildOf:
		relType = tree.RelParent
		person1ID, person2ID = target.ID, source.ID
	default:
		return tree.Relationship{}, false
	}

	return tree.Relationship{
		ID:         identity.RelationshipID(string(relType), person1ID, person2ID),
		Type:       relType,
		Person1ID:  person1ID,
		Person2ID:  person2ID,
		SourceFile: source.NotePath,
		SourceLine: 0,
	}, true
}

// handleEvent reacts to a single vault change. Deletes and renames apply
// immediately; creates and modifies are debounced into one reconciliation
// pass over the final state.
func (s *Scanner) handleEvent(ev vault.Event) {
	switch ev.Op {
	case vault.OpCreate, vault.OpModify:
		s.scheduleReconcile(ev.Path)

	case vault.OpDelete:
		s.config.Logger.Printf("Note deleted: %s", ev.Path)
		s.store.RemoveByNotePath(ev.Path)
		s.store.RemoveRelationshipsBySource(ev.Path)

	case vault.OpRename:
		s.config.Logger.Printf("Note renamed: %s -> %s", ev.OldPath, ev.Path)
		s.store.UpdateNotePath(ev.OldPath, ev.Path)
		s.store.UpdateRelationshipSource(ev.OldPath, ev.Path)
	}
}

// scheduleReconcile restarts the single debounce timer and records the
// touched path.
func (s *Scanner) scheduleReconcile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}

	s.pending[path] = struct{}{}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.config.Debounce, s.runPending)
}

// runPending performs one incremental reconciliation for all paths queued
// since the last pass: each touched note's person fields are refreshed,
// then the full relationship set is recomputed. Relationships are never
// diffed incrementally because one note's stubs share reconciliation state
// (the dedup set, reciprocity) with every other note.
func (s *Scanner) runPending() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	touched := s.pending
	s.pending = make(map[string]struct{})
	s.timer = nil
	s.mu.Unlock()

	if len(touched) == 0 {
		return
	}

	for path := range touched {
		note, err := s.notes.LoadNote(path)
		if err != nil {
			// Deleted between the event and the timer firing; the delete
			// event handles removal.
			s.diags.Debugf(path, "note gone before reconciliation: %v", err)
			continue
		}
		if note.Person == nil {
			// The note lost its person marker; drop whatever it used to be.
			s.store.RemoveByNotePath(path)
			continue
		}
		// An edit that changes the name changes the id. The record at the
		// old id would otherwise linger as a ghost.
		if prev, ok := s.store.PersonByNotePath(path); ok && prev.ID != note.Person.ID {
			s.store.RemovePerson(prev.ID)
		}
		s.store.UpdatePerson(*note.Person)
	}

	s.rescanRelationships()
}

// rescanRelationships recomputes the full relationship set and replaces it
// in the store, preserving persons.
func (s *Scanner) rescanRelationships() {
	parsed, err := s.scanNotes()
	if err != nil {
		s.diags.Warnf("", "relationship rescan failed: %v", err)
		return
	}

	s.store.LoadRelationships(s.reconcile(parsed))
}

func sortedPaths(parsed map[string]*notes.Note) []string {
	paths := make([]string, 0, len(parsed))
	for path := range parsed {
		paths = append(paths, path)
	}
	// Deterministic reconciliation order keeps provenance stable between
	// passes over an unchanged vault.
	sort.Strings(paths)
	return paths
}

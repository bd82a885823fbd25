package vault

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// DirVault is a Vault backed by a directory tree on disk. In-process
// mutations emit events synchronously; external edits are picked up by an
// fsnotify watcher once Watch has been called.
type DirVault struct {
	root   string
	logger *log.Logger

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int

	watchMu  sync.Mutex
	watcher  *fsnotify.Watcher
	done     chan struct{}
	wg       sync.WaitGroup
	watching bool
}

type subscriber struct {
	id int
	fn func(Event)
}

// NewDirVault opens a vault rooted at dir, creating the directory if needed.
// If logger is nil, a default stderr logger is used.
func NewDirVault(dir string, logger *log.Logger) (*DirVault, error) {
	if dir == "" {
		return nil, fmt.Errorf("vault directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[vault] ", log.LstdFlags)
	}

	return &DirVault{
		root:   dir,
		logger: logger,
	}, nil
}

// Root returns the vault's root directory on disk.
func (v *DirVault) Root() string {
	return v.root
}

func (v *DirVault) abs(path string) string {
	return filepath.Join(v.root, filepath.FromSlash(path))
}

func (v *DirVault) rel(absPath string) string {
	rel, err := filepath.Rel(v.root, absPath)
	if err != nil {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}

// List implements Vault.List.
func (v *DirVault) List() ([]string, error) {
	var paths []string
	err := filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			// Hidden directories (".obsidian", ".ftree") hold app state,
			// not notes.
			if path != v.root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".md") {
			paths = append(paths, v.rel(path))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk vault: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Read implements Vault.Read.
func (v *DirVault) Read(path string) (string, error) {
	data, err := os.ReadFile(v.abs(path))
	if err != nil {
		return "", fmt.Errorf("failed to read note %s: %w", path, err)
	}
	return string(data), nil
}

// Create implements Vault.Create.
func (v *DirVault) Create(path, content string) error {
	abs := v.abs(path)
	if _, err := os.Stat(abs); err == nil {
		return fmt.Errorf("note already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return fmt.Errorf("failed to create note folder: %w", err)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create note %s: %w", path, err)
	}

	v.emit(Event{Op: OpCreate, Path: path})
	return nil
}

// Modify implements Vault.Modify.
func (v *DirVault) Modify(path, content string) error {
	abs := v.abs(path)
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("note not found: %s", path)
	}
	if err := os.WriteFile(abs, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write note %s: %w", path, err)
	}

	v.emit(Event{Op: OpModify, Path: path})
	return nil
}

// Rename implements Vault.Rename. Unlike external renames, which fsnotify
// can only report as delete+create, in-process renames emit a single
// OpRename so path rewiring in the store stays cheap.
func (v *DirVault) Rename(oldPath, newPath string) error {
	absNew := v.abs(newPath)
	if err := os.MkdirAll(filepath.Dir(absNew), 0755); err != nil {
		return fmt.Errorf("failed to create note folder: %w", err)
	}
	if err := os.Rename(v.abs(oldPath), absNew); err != nil {
		return fmt.Errorf("failed to rename note %s: %w", oldPath, err)
	}

	v.emit(Event{Op: OpRename, Path: newPath, OldPath: oldPath})
	return nil
}

// Remove implements Vault.Remove. Removing an already-absent note is not an
// error.
func (v *DirVault) Remove(path string) error {
	if err := os.Remove(v.abs(path)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to remove note %s: %w", path, err)
	}

	v.emit(Event{Op: OpDelete, Path: path})
	return nil
}

// Exists implements Vault.Exists.
func (v *DirVault) Exists(path string) bool {
	_, err := os.Stat(v.abs(path))
	return err == nil
}

// Subscribe implements Vault.Subscribe.
func (v *DirVault) Subscribe(fn func(Event)) func() {
	v.subMu.Lock()
	defer v.subMu.Unlock()

	id := v.nextSub
	v.nextSub++
	v.subs = append(v.subs, subscriber{id: id, fn: fn})

	return func() {
		v.subMu.Lock()
		defer v.subMu.Unlock()
		for i, sub := range v.subs {
			if sub.id == id {
				v.subs = append(v.subs[:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

func (v *DirVault) emit(ev Event) {
	v.subMu.Lock()
	subs := make([]subscriber, len(v.subs))
	copy(subs, v.subs)
	v.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}

// Watch starts the fsnotify watcher over the vault root and all
// subdirectories, translating filesystem events into vault events.
// External renames arrive as OpDelete for the old path followed by OpCreate
// for the new one; a later reconciliation converges the graph.
func (v *DirVault) Watch() error {
	v.watchMu.Lock()
	defer v.watchMu.Unlock()

	if v.watching {
		return fmt.Errorf("vault watcher already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	// fsnotify watches are not recursive.
	err = filepath.WalkDir(v.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != v.root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
	if err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch vault directories: %w", err)
	}

	v.watcher = watcher
	v.done = make(chan struct{})
	v.watching = true

	v.wg.Add(1)
	go v.processEvents()

	return nil
}

// Close stops the watcher, if running, and blocks until the event goroutine
// exits. The vault remains usable for direct operations afterwards.
func (v *DirVault) Close() error {
	v.watchMu.Lock()
	if !v.watching {
		v.watchMu.Unlock()
		return nil
	}
	v.watching = false
	close(v.done)
	err := v.watcher.Close()
	v.watchMu.Unlock()

	v.wg.Wait()

	if err != nil {
		return fmt.Errorf("failed to close watcher: %w", err)
	}
	return nil
}

func (v *DirVault) processEvents() {
	defer v.wg.Done()

	for {
		select {
		case <-v.done:
			return

		case event, ok := <-v.watcher.Events:
			if !ok {
				return
			}
			v.handleFsEvent(event)

		case err, ok := <-v.watcher.Errors:
			if !ok {
				return
			}
			v.logger.Printf("watcher error: %v", err)
		}
	}
}

func (v *DirVault) handleFsEvent(event fsnotify.Event) {
	// New directories need their own watch.
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := v.watcher.Add(event.Name); err != nil {
					v.logger.Printf("failed to watch new directory %s: %v", event.Name, err)
				}
			}
			return
		}
	}

	if !strings.HasSuffix(event.Name, ".md") {
		return
	}

	path := v.rel(event.Name)

	switch {
	case event.Op&fsnotify.Create != 0:
		v.emit(Event{Op: OpCreate, Path: path})
	case event.Op&fsnotify.Write != 0:
		v.emit(Event{Op: OpModify, Path: path})
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		// A rename reported here means the file left this path.
		v.emit(Event{Op: OpDelete, Path: path})
	}
}

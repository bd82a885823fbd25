package vault

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestVault(t *testing.T) *DirVault {
	t.Helper()
	v, err := NewDirVault(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewDirVault() failed: %v", err)
	}
	return v
}

func TestDirVaultCreateReadModify(t *testing.T) {
	v := newTestVault(t)

	if err := v.Create("People/John Doe.md", "hello"); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if !v.Exists("People/John Doe.md") {
		t.Fatal("note should exist after Create")
	}

	// Creating over an existing note fails.
	if err := v.Create("People/John Doe.md", "again"); err == nil {
		t.Error("Create over existing note should fail")
	}

	if err := v.Modify("People/John Doe.md", "changed"); err != nil {
		t.Fatalf("Modify() failed: %v", err)
	}
	got, err := v.Read("People/John Doe.md")
	if err != nil {
		t.Fatalf("Read() failed: %v", err)
	}
	if got != "changed" {
		t.Errorf("Read() = %q, want %q", got, "changed")
	}

	// Modifying a missing note fails.
	if err := v.Modify("People/Nobody.md", "x"); err == nil {
		t.Error("Modify of missing note should fail")
	}
}

func TestDirVaultListSortedMarkdownOnly(t *testing.T) {
	v := newTestVault(t)

	for _, p := range []string{"People/Zed.md", "People/Amy.md", "notes.md"} {
		if err := v.Create(p, ""); err != nil {
			t.Fatalf("Create(%s) failed: %v", p, err)
		}
	}
	// Non-markdown and hidden-directory files are ignored.
	if err := os.WriteFile(filepath.Join(v.Root(), "image.png"), nil, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(v.Root(), ".obsidian"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(v.Root(), ".obsidian", "state.md"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := v.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}

	want := []string{"People/Amy.md", "People/Zed.md", "notes.md"}
	if len(paths) != len(want) {
		t.Fatalf("List() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestDirVaultEventsFromOperations(t *testing.T) {
	v := newTestVault(t)

	var events []Event
	unsub := v.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := v.Create("People/John Doe.md", "x"); err != nil {
		t.Fatal(err)
	}
	if err := v.Modify("People/John Doe.md", "y"); err != nil {
		t.Fatal(err)
	}
	if err := v.Rename("People/John Doe.md", "People/Johnny Doe.md"); err != nil {
		t.Fatal(err)
	}
	if err := v.Remove("People/Johnny Doe.md"); err != nil {
		t.Fatal(err)
	}

	want := []Event{
		{Op: OpCreate, Path: "People/John Doe.md"},
		{Op: OpModify, Path: "People/John Doe.md"},
		{Op: OpRename, Path: "People/Johnny Doe.md", OldPath: "People/John Doe.md"},
		{Op: OpDelete, Path: "People/Johnny Doe.md"},
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(want))
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event[%d] = %+v, want %+v", i, events[i], want[i])
		}
	}

	// Removing an already-absent note is a silent no-op.
	if err := v.Remove("People/Johnny Doe.md"); err != nil {
		t.Errorf("Remove of missing note should not error: %v", err)
	}

	unsub()
	if err := v.Create("People/Other.md", ""); err != nil {
		t.Fatal(err)
	}
	if len(events) != len(want) {
		t.Error("unsubscribed callback still received events")
	}
}

func TestDirVaultWatchExternalChanges(t *testing.T) {
	v := newTestVault(t)
	if err := os.MkdirAll(filepath.Join(v.Root(), "People"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := v.Watch(); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	defer v.Close()

	events := make(chan Event, 16)
	v.Subscribe(func(ev Event) { events <- ev })

	// Write the file behind the vault's back, as an external editor would.
	path := filepath.Join(v.Root(), "People", "Jane Doe.md")
	if err := os.WriteFile(path, []byte("external"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case ev := <-events:
		if ev.Op != OpCreate || ev.Path != "People/Jane Doe.md" {
			t.Errorf("got event %+v, want create People/Jane Doe.md", ev)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for create event")
	}

	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if ev.Op == OpDelete && ev.Path == "People/Jane Doe.md" {
				return
			}
		case <-deadline:
			t.Fatal("timed out waiting for delete event")
		}
	}
}

func TestDirVaultWatchStartStop(t *testing.T) {
	v := newTestVault(t)

	if err := v.Watch(); err != nil {
		t.Fatalf("Watch() failed: %v", err)
	}
	if err := v.Watch(); err == nil {
		t.Error("second Watch() should fail while running")
	}
	if err := v.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	// Close on a stopped vault is a no-op.
	if err := v.Close(); err != nil {
		t.Errorf("second Close() should be a no-op: %v", err)
	}
}

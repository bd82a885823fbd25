package cache

import (
	"io"
	"log"
	"path/filepath"
	"testing"

	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "cache", "tree.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func samplePersons() []tree.Person {
	return []tree.Person{
		{ID: "jane_doe", FirstName: "Jane", Surname: "Doe", Gender: tree.GenderFemale, NotePath: "People/Jane Doe.md"},
		{ID: "john_doe", FirstName: "John", Surname: "Doe", Gender: tree.GenderMale, NotePath: "People/John Doe.md"},
		{ID: "mary_doe", FirstName: "Mary", Surname: "Doe", Gender: tree.GenderFemale, NotePath: "People/Mary Doe.md"},
	}
}

func sampleRelationships() []tree.Relationship {
	return []tree.Relationship{
		{ID: "spouse_jane_doe_john_doe", Type: tree.RelSpouse, Person1ID: "jane_doe", Person2ID: "john_doe", SourceFile: "People/Jane Doe.md"},
		{ID: "parent_john_doe_mary_doe", Type: tree.RelParent, Person1ID: "john_doe", Person2ID: "mary_doe", SourceFile: "People/John Doe.md"},
	}
}

func TestReplaceAllAndCounts(t *testing.T) {
	db := testDB(t)

	if err := db.ReplaceAll(samplePersons(), sampleRelationships()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	persons, err := db.PersonCount()
	if err != nil {
		t.Fatalf("PersonCount: %v", err)
	}
	if persons != 3 {
		t.Errorf("PersonCount = %d, want 3", persons)
	}

	rels, err := db.RelationshipCount()
	if err != nil {
		t.Fatalf("RelationshipCount: %v", err)
	}
	if rels != 2 {
		t.Errorf("RelationshipCount = %d, want 2", rels)
	}
}

func TestReplaceAllIsFullSwap(t *testing.T) {
	db := testDB(t)

	if err := db.ReplaceAll(samplePersons(), sampleRelationships()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	// A second replace with a subset must not leave leftovers behind.
	if err := db.ReplaceAll(samplePersons()[:1], nil); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	persons, err := db.Persons()
	if err != nil {
		t.Fatalf("Persons: %v", err)
	}
	if len(persons) != 1 || persons[0].ID != "jane_doe" {
		t.Errorf("unexpected persons after swap: %+v", persons)
	}

	rels, err := db.Relationships()
	if err != nil {
		t.Fatalf("Relationships: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("expected 0 relationships after swap, got %d", len(rels))
	}
}

func TestPersonsRoundTrip(t *testing.T) {
	db := testDB(t)

	want := samplePersons()
	if err := db.ReplaceAll(want, nil); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	got, err := db.Persons()
	if err != nil {
		t.Fatalf("Persons: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d persons, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("person %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestRelationshipsFor(t *testing.T) {
	db := testDB(t)

	if err := db.ReplaceAll(samplePersons(), sampleRelationships()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	rels, err := db.RelationshipsFor("john_doe")
	if err != nil {
		t.Fatalf("RelationshipsFor: %v", err)
	}
	if len(rels) != 2 {
		t.Fatalf("expected 2 relationships for john_doe, got %d", len(rels))
	}

	rels, err = db.RelationshipsFor("mary_doe")
	if err != nil {
		t.Fatalf("RelationshipsFor: %v", err)
	}
	if len(rels) != 1 || rels[0].Type != tree.RelParent {
		t.Errorf("unexpected relationships for mary_doe: %+v", rels)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := db.ReplaceAll(samplePersons(), sampleRelationships()); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	count, err := db.PersonCount()
	if err != nil {
		t.Fatalf("PersonCount: %v", err)
	}
	if count != 3 {
		t.Errorf("PersonCount after reopen = %d, want 3", count)
	}
}

func TestMirrorTracksStore(t *testing.T) {
	db := testDB(t)
	store := tree.NewStore()
	store.Load(samplePersons(), sampleRelationships())

	logger := log.New(io.Discard, "", 0)
	unsubscribe := Mirror(store, db, logger)
	defer unsubscribe()

	// Mirror writes the current contents immediately.
	count, err := db.PersonCount()
	if err != nil {
		t.Fatalf("PersonCount: %v", err)
	}
	if count != 3 {
		t.Fatalf("initial mirror count = %d, want 3", count)
	}

	store.RemovePerson("mary_doe")

	count, err = db.PersonCount()
	if err != nil {
		t.Fatalf("PersonCount: %v", err)
	}
	if count != 2 {
		t.Errorf("mirror count after removal = %d, want 2", count)
	}
}

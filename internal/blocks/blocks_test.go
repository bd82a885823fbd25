package blocks

import (
	"testing"

	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
)

func TestParseContent(t *testing.T) {
	content := "Intro text.\n\n" +
		"```family-tree\n" +
		"# the Does\n" +
		"spouse: john_doe -- jane_doe\n" +
		"parent: john_doe -> alice_doe\n" +
		"sibling: alice_doe -- bob_doe\n" +
		"```\n"

	rels := ParseContent(content, "Family.md")
	if len(rels) != 3 {
		t.Fatalf("got %d relationships, want 3: %+v", len(rels), rels)
	}

	spouse := rels[0]
	if spouse.ID != "spouse_jane_doe_john_doe" {
		t.Errorf("spouse id = %q, want canonical ordering applied", spouse.ID)
	}
	if spouse.Person1ID != "jane_doe" || spouse.Person2ID != "john_doe" {
		t.Errorf("spouse endpoints = %q, %q", spouse.Person1ID, spouse.Person2ID)
	}

	parent := rels[1]
	if parent.Type != tree.RelParent || parent.Person1ID != "john_doe" || parent.Person2ID != "alice_doe" {
		t.Errorf("parent = %+v", parent)
	}
	// parent is directed: no reordering.
	if parent.ID != "parent_john_doe_alice_doe" {
		t.Errorf("parent id = %q", parent.ID)
	}

	if rels[2].Type != tree.RelSibling || rels[2].ID != "sibling_alice_doe_bob_doe" {
		t.Errorf("sibling = %+v", rels[2])
	}
}

func TestParseContentLineProvenance(t *testing.T) {
	content := "line one\n\n```family-tree\nspouse: a_x -- b_y\n```\n"

	rels := ParseContent(content, "Family.md")
	if len(rels) != 1 {
		t.Fatalf("got %d relationships, want 1", len(rels))
	}
	if rels[0].SourceFile != "Family.md" {
		t.Errorf("source file = %q", rels[0].SourceFile)
	}
	// The statement sits on line 4 of the note.
	if rels[0].SourceLine != 4 {
		t.Errorf("source line = %d, want 4", rels[0].SourceLine)
	}
}

func TestParseContentSkipsNoise(t *testing.T) {
	content := "```family-tree\n" +
		"# comment\n" +
		"person john_doe:\n" +
		"  firstName: John\n" +
		"\n" +
		"not a statement\n" +
		"spouse: broken --\n" +
		"spouse: ok_one -- ok_two\n" +
		"```\n"

	rels := ParseContent(content, "x.md")
	if len(rels) != 1 {
		t.Fatalf("got %d relationships, want 1: %+v", len(rels), rels)
	}
	if rels[0].ID != "spouse_ok_one_ok_two" {
		t.Errorf("id = %q", rels[0].ID)
	}
}

func TestParseContentNoBlocks(t *testing.T) {
	if rels := ParseContent("just a note\n", "x.md"); len(rels) != 0 {
		t.Errorf("got %d relationships from plain note", len(rels))
	}
	// Other code fences are not family-tree blocks.
	if rels := ParseContent("```go\nspouse: a -- b\n```\n", "x.md"); len(rels) != 0 {
		t.Errorf("got %d relationships from go fence", len(rels))
	}
}

func TestParseContentMultipleBlocks(t *testing.T) {
	content := "```family-tree\nspouse: a_a -- b_b\n```\n\ntext\n\n```family-tree\nsibling: c_c -- d_d\n```\n"
	rels := ParseContent(content, "x.md")
	if len(rels) != 2 {
		t.Fatalf("got %d relationships, want 2", len(rels))
	}
}

// Same pair in either order yields the same id, like stub reconciliation.
func TestParseContentSymmetricDedupKey(t *testing.T) {
	a := ParseContent("```family-tree\nspouse: john_doe -- jane_doe\n```\n", "x.md")
	b := ParseContent("```family-tree\nspouse: jane_doe -- john_doe\n```\n", "y.md")
	if a[0].ID != b[0].ID {
		t.Errorf("ids differ: %q vs %q", a[0].ID, b[0].ID)
	}
}

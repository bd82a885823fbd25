// Package tree defines the family-tree data model and the in-memory store
// that owns the canonical graph of persons and relationships.
package tree

import (
	"fmt"
	"strings"
)

// Gender of a person as recorded in note frontmatter.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

// ParseGender maps a raw frontmatter value onto a Gender, falling back to
// GenderUnknown for anything unrecognized.
func ParseGender(s string) Gender {
	switch Gender(strings.ToLower(strings.TrimSpace(s))) {
	case GenderMale:
		return GenderMale
	case GenderFemale:
		return GenderFemale
	case GenderOther:
		return GenderOther
	default:
		return GenderUnknown
	}
}

// RelationshipType is the canonical edge type in the graph.
// "parent" is directed: Person1 is the parent of Person2.
type RelationshipType string

const (
	RelSpouse  RelationshipType = "spouse"
	RelParent  RelationshipType = "parent"
	RelSibling RelationshipType = "sibling"
)

// Symmetric reports whether the type is undirected. Symmetric edges store
// their endpoints in canonical (lexicographic) id order.
func (t RelationshipType) Symmetric() bool {
	return t == RelSpouse || t == RelSibling
}

// Valid reports whether t is a known relationship type.
func (t RelationshipType) Valid() bool {
	switch t {
	case RelSpouse, RelParent, RelSibling:
		return true
	}
	return false
}

// StubType is the directional relationship type stored inside a single note.
// A canonical "parent" edge appears as a parent-of stub in the parent's note
// and a child-of stub in the child's note; symmetric edges appear as the same
// stub type in both notes.
type StubType string

const (
	StubSpouse   StubType = "spouse"
	StubParentOf StubType = "parent-of"
	StubChildOf  StubType = "child-of"
	StubSibling  StubType = "sibling"
)

// Person is a node in the family graph. ID is a slug of the full name,
// derived once at creation and kept stable across renames.
type Person struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	Surname   string `json:"surname"`
	Gender    Gender `json:"gender"`
	NotePath  string `json:"notePath"`
}

// FullName returns the display name, falling back to whichever name part is
// present, then to the id.
func (p Person) FullName() string {
	if p.FirstName != "" && p.Surname != "" {
		return p.FirstName + " " + p.Surname
	}
	if p.FirstName != "" {
		return p.FirstName
	}
	if p.Surname != "" {
		return p.Surname
	}
	return p.ID
}

// Validate checks required person fields.
func (p Person) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("person id is required")
	}
	if p.FirstName == "" && p.Surname == "" {
		return fmt.Errorf("person %s: at least one name part is required", p.ID)
	}
	if p.NotePath == "" {
		return fmt.Errorf("person %s: note path is required", p.ID)
	}
	return nil
}

// SyntheticSource is the provenance sentinel for edges that were created
// programmatically and have not (yet) been written back to a note.
const SyntheticSource = "<synthetic>"

// Relationship is a canonical, deduplicated edge between two persons.
// SourceFile and SourceLine record the note the edge was derived from;
// frontmatter-derived edges carry line 0.
type Relationship struct {
	ID         string           `json:"id"`
	Type       RelationshipType `json:"type"`
	Person1ID  string           `json:"person1Id"`
	Person2ID  string           `json:"person2Id"`
	SourceFile string           `json:"sourceFile"`
	SourceLine int              `json:"sourceLine"`
}

// Validate checks required relationship fields.
func (r Relationship) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("relationship id is required")
	}
	if !r.Type.Valid() {
		return fmt.Errorf("relationship %s: invalid type %q", r.ID, r.Type)
	}
	if r.Person1ID == "" || r.Person2ID == "" {
		return fmt.Errorf("relationship %s: both person ids are required", r.ID)
	}
	return nil
}

// GraphNode is a person projected for rendering.
type GraphNode struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Person Person `json:"person"`
}

// GraphEdge is a relationship projected for rendering. Style is a rendering
// hint only: spouse edges are dashed, everything else solid.
type GraphEdge struct {
	ID           string       `json:"id"`
	Source       string       `json:"source"`
	Target       string       `json:"target"`
	Relationship Relationship `json:"relationship"`
	Style        string       `json:"style"`
}

// FamilyGraph is the view-only projection of the store. Edges whose
// endpoints are not both present are excluded.
type FamilyGraph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

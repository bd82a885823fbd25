package notes

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/GreedyA1/obsidian-family-tree/internal/diag"
	"github.com/GreedyA1/obsidian-family-tree/internal/identity"
	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
	"github.com/GreedyA1/obsidian-family-tree/internal/vault"
)

// Note is a parsed person note. Person is nil when the note is not a person
// record (missing marker, or no name at all).
type Note struct {
	Path    string
	Person  *tree.Person
	Stubs   []Stub
	Content string
}

// Manager owns all note reads and writes. Everything else in the system
// operates on store entities and goes through the Manager for durable
// changes.
type Manager struct {
	vault vault.Vault
	diags *diag.Hub

	mu           sync.RWMutex
	peopleFolder string
}

// NewManager creates a Manager that stores new person notes under
// peopleFolder. diags may be nil.
func NewManager(v vault.Vault, peopleFolder string, diags *diag.Hub) *Manager {
	return &Manager{
		vault:        v,
		diags:        diags,
		peopleFolder: peopleFolder,
	}
}

// SetPeopleFolder changes where new person notes are created.
func (m *Manager) SetPeopleFolder(folder string) {
	m.mu.Lock()
	m.peopleFolder = folder
	m.mu.Unlock()
}

func (m *Manager) folder() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.peopleFolder
}

// LoadNote reads and parses a note. A note that is not a person record
// yields Person == nil with no error.
func (m *Manager) LoadNote(notePath string) (*Note, error) {
	content, err := m.vault.Read(notePath)
	if err != nil {
		return nil, err
	}

	note := &Note{Path: notePath, Content: content}

	fm, ok := ParseFrontmatter(content)
	if !ok || !fm.Person {
		return note, nil
	}

	note.Person = personFromFrontmatter(notePath, fm)
	if note.Person != nil {
		note.Stubs = fm.Relationships
	}
	return note, nil
}

// ParsePerson parses note content into a Person, or nil if the content is
// not a qualifying person record.
func (m *Manager) ParsePerson(notePath, content string) *tree.Person {
	fm, ok := ParseFrontmatter(content)
	if !ok || !fm.Person {
		return nil
	}
	return personFromFrontmatter(notePath, fm)
}

func personFromFrontmatter(notePath string, fm *Frontmatter) *tree.Person {
	firstName := strings.TrimSpace(fm.FirstName)
	surname := strings.TrimSpace(fm.Surname)
	if firstName == "" && surname == "" {
		return nil
	}

	fullName := strings.TrimSpace(firstName + " " + surname)
	return &tree.Person{
		ID:        identity.PersonID(fullName),
		FirstName: firstName,
		Surname:   surname,
		Gender:    tree.ParseGender(fm.Gender),
		NotePath:  notePath,
	}
}

// CreatePerson allocates a new note for the person and returns the Person.
// The note path is derived from the full name; name collisions get an
// incrementing numeric suffix until a free path is found.
func (m *Manager) CreatePerson(firstName, surname string, gender tree.Gender) (tree.Person, error) {
	firstName = strings.TrimSpace(firstName)
	surname = strings.TrimSpace(surname)

	fullName := strings.TrimSpace(firstName + " " + surname)
	if fullName == "" {
		return tree.Person{}, fmt.Errorf("person needs at least one name part")
	}

	id := identity.PersonID(fullName)
	notePath := m.freeNotePath(fullName)

	fm := &Frontmatter{
		Person:    true,
		FirstName: firstName,
		Surname:   surname,
		Gender:    string(gender),
	}
	header, err := RenderFrontmatter(fm)
	if err != nil {
		return tree.Person{}, err
	}
	content := header + "\n\n# " + fullName + "\n"

	if err := m.vault.Create(notePath, content); err != nil {
		return tree.Person{}, fmt.Errorf("failed to create person note: %w", err)
	}

	return tree.Person{
		ID:        id,
		FirstName: firstName,
		Surname:   surname,
		Gender:    gender,
		NotePath:  notePath,
	}, nil
}

func (m *Manager) freeNotePath(fullName string) string {
	base := SanitizeFileName(fullName)
	notePath := path.Join(m.folder(), base+".md")

	for counter := 1; m.vault.Exists(notePath); counter++ {
		notePath = path.Join(m.folder(), fmt.Sprintf("%s %d.md", base, counter))
	}
	return notePath
}

// UpdatePerson rewrites the structured fields of the person's note in
// place, preserving any stored relationship stubs and the note body. A
// missing backing note is a recoverable inconsistency: it is reported as a
// warning and the call is a no-op.
func (m *Manager) UpdatePerson(p tree.Person) error {
	if !m.vault.Exists(p.NotePath) {
		m.diags.Warnf(p.NotePath, "note not found for person %s", p.ID)
		return nil
	}

	content, err := m.vault.Read(p.NotePath)
	if err != nil {
		return fmt.Errorf("failed to read person note: %w", err)
	}

	fm, ok := ParseFrontmatter(content)
	if !ok {
		fm = &Frontmatter{}
	}
	fm.Person = true
	fm.FirstName = p.FirstName
	fm.Surname = p.Surname
	fm.Gender = string(p.Gender)

	updated, err := ReplaceFrontmatter(content, fm)
	if err != nil {
		return err
	}
	if err := m.vault.Modify(p.NotePath, updated); err != nil {
		return fmt.Errorf("failed to write person note: %w", err)
	}
	return nil
}

// DeletePerson removes the person's backing note. The store picks the
// deletion up through the vault event.
func (m *Manager) DeletePerson(p tree.Person) error {
	return m.vault.Remove(p.NotePath)
}

// SaveRelationship persists a canonical edge as a mirrored stub pair: one
// stub in each participant's note, with directional types chosen so that
// reading either stub back yields the same edge. Writing a stub that is
// already present is skipped, so repeated saves of the same edge are
// idempotent.
func (m *Manager) SaveRelationship(rel tree.Relationship, person1, person2 tree.Person) error {
	stub1 := Stub{
		Type:   stubTypeFor(rel.Type, true),
		Person: WikiLink(Basename(person2.NotePath)),
	}
	if err := m.addStub(person1, stub1); err != nil {
		return err
	}

	stub2 := Stub{
		Type:   stubTypeFor(rel.Type, false),
		Person: WikiLink(Basename(person1.NotePath)),
	}
	return m.addStub(person2, stub2)
}

// RemoveRelationship deletes the edge's stub pair from both participant
// notes. Removing a stub that is already gone is a no-op.
func (m *Manager) RemoveRelationship(rel tree.Relationship, person1, person2 tree.Person) error {
	stub1 := Stub{
		Type:   stubTypeFor(rel.Type, true),
		Person: WikiLink(Basename(person2.NotePath)),
	}
	if err := m.removeStub(person1, stub1); err != nil {
		return err
	}

	stub2 := Stub{
		Type:   stubTypeFor(rel.Type, false),
		Person: WikiLink(Basename(person1.NotePath)),
	}
	return m.removeStub(person2, stub2)
}

// stubTypeFor maps a canonical type onto the stub type stored in one
// participant's note. For "parent", person1 is the parent.
func stubTypeFor(t tree.RelationshipType, isPerson1 bool) tree.StubType {
	switch t {
	case tree.RelParent:
		if isPerson1 {
			return tree.StubParentOf
		}
		return tree.StubChildOf
	case tree.RelSibling:
		return tree.StubSibling
	default:
		return tree.StubSpouse
	}
}

func (m *Manager) addStub(p tree.Person, stub Stub) error {
	if !m.vault.Exists(p.NotePath) {
		m.diags.Warnf(p.NotePath, "note not found, relationship stub not written")
		return nil
	}

	content, err := m.vault.Read(p.NotePath)
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}

	fm, ok := ParseFrontmatter(content)
	if !ok {
		// Malformed target: recover by synthesizing a header from what we
		// know rather than failing the write-back.
		m.diags.Warnf(p.NotePath, "no frontmatter, synthesizing header")
		fm = &Frontmatter{
			Person:    true,
			FirstName: p.FirstName,
			Surname:   p.Surname,
			Gender:    string(p.Gender),
		}
	}

	for _, existing := range fm.Relationships {
		if existing.Type == stub.Type && existing.Person == stub.Person {
			return nil
		}
	}
	fm.Relationships = append(fm.Relationships, stub)

	updated, err := ReplaceFrontmatter(content, fm)
	if err != nil {
		return err
	}
	if err := m.vault.Modify(p.NotePath, updated); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	return nil
}

func (m *Manager) removeStub(p tree.Person, stub Stub) error {
	if !m.vault.Exists(p.NotePath) {
		return nil
	}

	content, err := m.vault.Read(p.NotePath)
	if err != nil {
		return fmt.Errorf("failed to read note: %w", err)
	}

	fm, ok := ParseFrontmatter(content)
	if !ok {
		return nil
	}

	kept := fm.Relationships[:0]
	for _, existing := range fm.Relationships {
		if existing.Type == stub.Type && existing.Person == stub.Person {
			continue
		}
		kept = append(kept, existing)
	}
	if len(kept) == len(fm.Relationships) {
		return nil
	}
	fm.Relationships = kept

	updated, err := ReplaceFrontmatter(content, fm)
	if err != nil {
		return err
	}
	if err := m.vault.Modify(p.NotePath, updated); err != nil {
		return fmt.Errorf("failed to write note: %w", err)
	}
	return nil
}

package tree

import (
	"sort"
	"sync"
)

// Store is the in-memory authoritative family graph. All mutations are
// atomic under an internal lock and fire a single coarse change notification
// after completing; subscribers re-derive whatever state they need via the
// read methods. There is no diffing: every mutation is a full-refresh signal.
type Store struct {
	mu            sync.RWMutex
	persons       map[string]Person
	relationships []Relationship

	subMu   sync.Mutex
	subs    []subscriber
	nextSub int
}

type subscriber struct {
	id int
	fn func()
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		persons: make(map[string]Person),
	}
}

// Subscribe registers fn to be called synchronously after every mutation,
// in registration order. The returned function removes the subscription.
func (s *Store) Subscribe(fn func()) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// notify invokes subscribers outside the data lock so they can read back.
func (s *Store) notify() {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

// Load atomically replaces the entire graph. Used after a full scan.
func (s *Store) Load(persons []Person, relationships []Relationship) {
	s.mu.Lock()
	s.persons = make(map[string]Person, len(persons))
	for _, p := range persons {
		s.persons[p.ID] = p
	}
	s.relationships = append([]Relationship(nil), relationships...)
	s.mu.Unlock()

	s.notify()
}

// LoadRelationships replaces only the relationship set, preserving persons.
// Used for incremental relationship-only rescans.
func (s *Store) LoadRelationships(relationships []Relationship) {
	s.mu.Lock()
	s.relationships = append([]Relationship(nil), relationships...)
	s.mu.Unlock()

	s.notify()
}

// Persons returns all persons sorted by id.
func (s *Store) Persons() []Person {
	s.mu.RLock()
	out := make([]Person, 0, len(s.persons))
	for _, p := range s.persons {
		out = append(out, p)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Person looks up a person by id.
func (s *Store) Person(id string) (Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.persons[id]
	return p, ok
}

// Relationships returns a copy of the relationship list.
func (s *Store) Relationships() []Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Relationship(nil), s.relationships...)
}

// AddPerson upserts a person by id.
func (s *Store) AddPerson(p Person) {
	s.mu.Lock()
	s.persons[p.ID] = p
	s.mu.Unlock()

	s.notify()
}

// UpdatePerson upserts a person by id.
func (s *Store) UpdatePerson(p Person) {
	s.AddPerson(p)
}

// RemovePerson deletes a person and cascades: every relationship referencing
// the id is removed as well, so no orphaned edges remain.
func (s *Store) RemovePerson(id string) {
	s.mu.Lock()
	delete(s.persons, id)
	s.relationships = filterRelationships(s.relationships, func(r Relationship) bool {
		return r.Person1ID != id && r.Person2ID != id
	})
	s.mu.Unlock()

	s.notify()
}

// AddRelationship upserts a single edge by id.
func (s *Store) AddRelationship(r Relationship) {
	s.mu.Lock()
	replaced := false
	for i := range s.relationships {
		if s.relationships[i].ID == r.ID {
			s.relationships[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		s.relationships = append(s.relationships, r)
	}
	s.mu.Unlock()

	s.notify()
}

// RemoveRelationship deletes a single edge by id.
func (s *Store) RemoveRelationship(id string) {
	s.mu.Lock()
	s.relationships = filterRelationships(s.relationships, func(r Relationship) bool {
		return r.ID != id
	})
	s.mu.Unlock()

	s.notify()
}

// PersonByNotePath finds the person backed by the given note.
func (s *Store) PersonByNotePath(notePath string) (Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.persons {
		if p.NotePath == notePath {
			return p, true
		}
	}
	return Person{}, false
}

// RemoveByNotePath removes the person backed by the given note, cascading to
// their relationships. A path with no backing person is a no-op (the second
// half of a delete event may arrive after a rescan already dropped them).
func (s *Store) RemoveByNotePath(notePath string) {
	s.mu.Lock()
	var removed string
	for id, p := range s.persons {
		if p.NotePath == notePath {
			delete(s.persons, id)
			removed = id
			break
		}
	}
	if removed != "" {
		s.relationships = filterRelationships(s.relationships, func(r Relationship) bool {
			return r.Person1ID != removed && r.Person2ID != removed
		})
	}
	s.mu.Unlock()

	s.notify()
}

// UpdateNotePath rewires a person's backing note after an external rename.
// The person id does not change.
func (s *Store) UpdateNotePath(oldPath, newPath string) {
	s.mu.Lock()
	for id, p := range s.persons {
		if p.NotePath == oldPath {
			p.NotePath = newPath
			s.persons[id] = p
			break
		}
	}
	s.mu.Unlock()

	s.notify()
}

// RemoveRelationshipsBySource drops every edge derived from the given note.
func (s *Store) RemoveRelationshipsBySource(sourceFile string) {
	s.mu.Lock()
	s.relationships = filterRelationships(s.relationships, func(r Relationship) bool {
		return r.SourceFile != sourceFile
	})
	s.mu.Unlock()

	s.notify()
}

// UpdateRelationshipSource rewrites edge provenance after an external rename.
func (s *Store) UpdateRelationshipSource(oldPath, newPath string) {
	s.mu.Lock()
	for i := range s.relationships {
		if s.relationships[i].SourceFile == oldPath {
			s.relationships[i].SourceFile = newPath
		}
	}
	s.mu.Unlock()

	s.notify()
}

// Graph projects the store into a renderable FamilyGraph. Edges referencing
// a person not currently in the store are silently excluded; they stay in
// the relationship list and reappear if the person returns.
func (s *Store) Graph() FamilyGraph {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g := FamilyGraph{
		Nodes: make([]GraphNode, 0, len(s.persons)),
		Edges: make([]GraphEdge, 0, len(s.relationships)),
	}

	for _, p := range s.persons {
		g.Nodes = append(g.Nodes, GraphNode{
			ID:     p.ID,
			Label:  p.FullName(),
			Person: p,
		})
	}
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })

	for _, r := range s.relationships {
		if _, ok := s.persons[r.Person1ID]; !ok {
			continue
		}
		if _, ok := s.persons[r.Person2ID]; !ok {
			continue
		}
		style := "solid"
		if r.Type == RelSpouse {
			style = "dashed"
		}
		g.Edges = append(g.Edges, GraphEdge{
			ID:           r.ID,
			Source:       r.Person1ID,
			Target:       r.Person2ID,
			Relationship: r,
			Style:        style,
		})
	}

	return g
}

// Clear empties the store.
func (s *Store) Clear() {
	s.mu.Lock()
	s.persons = make(map[string]Person)
	s.relationships = nil
	s.mu.Unlock()

	s.notify()
}

func filterRelationships(rels []Relationship, keep func(Relationship) bool) []Relationship {
	out := rels[:0]
	for _, r := range rels {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

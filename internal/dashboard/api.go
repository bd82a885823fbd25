package dashboard

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/GreedyA1/obsidian-family-tree/internal/identity"
	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
)

// apiError is the JSON error body for all API failures.
type apiError struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, apiError{Error: msg})
}

// handleGraph serves the render-ready graph.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.store.Graph())
}

// createPersonRequest is the POST /api/persons body.
type createPersonRequest struct {
	FirstName string `json:"firstName"`
	Surname   string `json:"surname"`
	Gender    string `json:"gender"`
}

// handlePersons serves the person collection.
func (s *Server) handlePersons(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Persons())

	case http.MethodPost:
		var req createPersonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.FirstName) == "" && strings.TrimSpace(req.Surname) == "" {
			writeError(w, http.StatusBadRequest, "a name is required")
			return
		}

		person, err := s.mgr.CreatePerson(req.FirstName, req.Surname, tree.ParseGender(req.Gender))
		if err != nil {
			s.logger.Printf("Failed to create person: %v", err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.store.AddPerson(person)

		s.logger.Printf("Person created: %s (%s)", person.ID, person.NotePath)
		writeJSON(w, http.StatusCreated, person)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handlePerson serves a single person by id.
func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/persons/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	person, ok := s.store.Person(id)
	if !ok {
		writeError(w, http.StatusNotFound, "person not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, person)

	case http.MethodDelete:
		if err := s.mgr.DeletePerson(person); err != nil {
			s.logger.Printf("Failed to delete note for %s: %v", person.ID, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		// The vault delete event also clears the store when a watcher is
		// running; doing it here keeps the API correct without one.
		s.store.RemovePerson(person.ID)

		s.logger.Printf("Person deleted: %s", person.ID)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// createRelationshipRequest is the POST /api/relationships body.
type createRelationshipRequest struct {
	Type      string `json:"type"`
	Person1ID string `json:"person1Id"`
	Person2ID string `json:"person2Id"`
}

// handleRelationships serves the relationship collection.
func (s *Server) handleRelationships(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.store.Relationships())

	case http.MethodPost:
		var req createRelationshipRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		relType := tree.RelationshipType(req.Type)
		if !relType.Valid() {
			writeError(w, http.StatusBadRequest, "unknown relationship type")
			return
		}
		if req.Person1ID == req.Person2ID {
			writeError(w, http.StatusBadRequest, "cannot relate a person to themselves")
			return
		}

		person1ID, person2ID := req.Person1ID, req.Person2ID
		if relType.Symmetric() {
			person1ID, person2ID = identity.OrderSymmetric(person1ID, person2ID)
		}

		person1, ok := s.store.Person(person1ID)
		if !ok {
			writeError(w, http.StatusNotFound, "person not found: "+person1ID)
			return
		}
		person2, ok := s.store.Person(person2ID)
		if !ok {
			writeError(w, http.StatusNotFound, "person not found: "+person2ID)
			return
		}

		rel := tree.Relationship{
			ID:         identity.RelationshipID(string(relType), person1ID, person2ID),
			Type:       relType,
			Person1ID:  person1ID,
			Person2ID:  person2ID,
			SourceFile: person1.NotePath,
		}

		if err := s.mgr.SaveRelationship(rel, person1, person2); err != nil {
			s.logger.Printf("Failed to save relationship %s: %v", rel.ID, err)
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.store.AddRelationship(rel)

		s.logger.Printf("Relationship created: %s", rel.ID)
		writeJSON(w, http.StatusCreated, rel)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleRelationship serves a single relationship by id.
func (s *Server) handleRelationship(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/relationships/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "relationship not found")
		return
	}

	switch r.Method {
	case http.MethodDelete:
		var rel tree.Relationship
		found := false
		for _, candidate := range s.store.Relationships() {
			if candidate.ID == id {
				rel = candidate
				found = true
				break
			}
		}
		if !found {
			writeError(w, http.StatusNotFound, "relationship not found")
			return
		}

		// Delete the stub pair from both notes, otherwise the next
		// reconciliation would rebuild the edge from them.
		person1, ok1 := s.store.Person(rel.Person1ID)
		person2, ok2 := s.store.Person(rel.Person2ID)
		if ok1 && ok2 {
			if err := s.mgr.RemoveRelationship(rel, person1, person2); err != nil {
				s.logger.Printf("Failed to remove stubs for %s: %v", rel.ID, err)
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
		}
		s.store.RemoveRelationship(id)

		s.logger.Printf("Relationship deleted: %s", rel.ID)
		w.WriteHeader(http.StatusNoContent)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

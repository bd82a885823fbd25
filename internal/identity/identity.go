// Package identity derives stable identifiers for persons and relationships.
//
// Person ids are lossy slugs of the full name. They are computed once when a
// person first appears and are never regenerated on rename, so everything
// that references a person does so through an id that survives display-name
// edits. Distinct names can collide ("Jo Hn-Doe" and "Joh Ndoe" both slug to
// "jo_hn_doe"); collisions are reported by the scanner but not mitigated.
package identity

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// PersonID converts a full name into a stable lowercase slug.
// Runs of non-alphanumeric characters collapse into a single underscore,
// with leading and trailing underscores trimmed.
func PersonID(fullName string) string {
	id := strings.ToLower(fullName)
	id = nonAlnum.ReplaceAllString(id, "_")
	return strings.Trim(id, "_")
}

// RelationshipID builds a deterministic edge id from a relationship type and
// two person ids, in that order. It does not reorder the ids: callers must
// apply OrderSymmetric first when the type is symmetric, otherwise the same
// real-world relationship parsed from either participant's note would yield
// two different ids.
func RelationshipID(relType, person1ID, person2ID string) string {
	return relType + "_" + person1ID + "_" + person2ID
}

// OrderSymmetric returns the two ids in canonical (lexicographic) order.
// Used for symmetric relationship types so that the pair always produces the
// same RelationshipID regardless of which note the relationship came from.
func OrderSymmetric(idA, idB string) (string, string) {
	if idB < idA {
		return idB, idA
	}
	return idA, idB
}

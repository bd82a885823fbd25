// Package vault abstracts the external note storage that person records
// live in. Paths are slash-separated and relative to the vault root
// ("People/John Doe.md"). Only the notes package reads or writes record
// content; everything else goes through the in-memory store.
package vault

// Op is the kind of change reported by a vault event.
type Op int

const (
	// OpCreate indicates a new note appeared.
	OpCreate Op = iota
	// OpModify indicates an existing note's content changed.
	OpModify
	// OpDelete indicates a note was removed.
	OpDelete
	// OpRename indicates a note moved; Event.OldPath carries the previous
	// path. Only in-process renames produce this op: external renames
	// surface as a delete followed by a create.
	OpRename
)

func (op Op) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpDelete:
		return "delete"
	case OpRename:
		return "rename"
	default:
		return "unknown"
	}
}

// Event describes a single note change.
type Event struct {
	Op      Op
	Path    string
	OldPath string // set for OpRename
}

// Vault is the external record storage interface.
type Vault interface {
	// List enumerates all markdown note paths, sorted.
	List() ([]string, error)

	// Read returns the full text content of a note.
	Read(path string) (string, error)

	// Create writes a new note, creating parent folders as needed.
	// It fails if the path is already taken.
	Create(path, content string) error

	// Modify overwrites an existing note's content.
	Modify(path, content string) error

	// Rename moves a note to a new path.
	Rename(oldPath, newPath string) error

	// Remove deletes a note.
	Remove(path string) error

	// Exists reports whether a note is present at the path.
	Exists(path string) bool

	// Subscribe registers fn for change events. The returned function
	// removes the subscription.
	Subscribe(fn func(Event)) func()
}

// Package cache mirrors the in-memory family graph into an embedded SQLite
// database so external tools can query the tree without parsing the vault.
//
// The store stays the source of truth. The mirror is refreshed wholesale on
// every change notification; family vaults are small enough that a full
// replace inside one transaction beats incremental diffing.
//
// The database runs in embedded mode with WAL for concurrent readers.
package cache

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
)

// DB wraps the SQLite connection holding the graph mirror.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates a connection at the given path, creating the parent
// directory and the schema as needed. The caller must call Close when done.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	connStr := fmt.Sprintf("file:%s", path)
	conn, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping cache: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{
		conn: conn,
		path: path,
	}

	// WAL mode for concurrent reads
	if _, err := db.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// Close closes the connection after checkpointing the WAL.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if _, err := db.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to checkpoint WAL: %v\n", err)
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close cache: %w", err)
	}

	db.conn = nil
	return nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// initSchema creates the mirror tables. Idempotent.
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS persons (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		surname TEXT NOT NULL,
		gender TEXT NOT NULL,
		note_path TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		type TEXT NOT NULL,
		person1_id TEXT NOT NULL,
		person2_id TEXT NOT NULL,
		source_file TEXT NOT NULL,
		source_line INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_persons_note_path ON persons(note_path);
	CREATE INDEX IF NOT EXISTS idx_relationships_person1 ON relationships(person1_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_person2 ON relationships(person2_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type);
	`

	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize cache schema: %w", err)
	}
	return nil
}

// ReplaceAll swaps the mirror's full contents in one transaction.
func (db *DB) ReplaceAll(persons []tree.Person, relationships []tree.Relationship) error {
	return db.ReplaceAllContext(context.Background(), persons, relationships)
}

// ReplaceAllContext swaps the mirror's contents with context support.
func (db *DB) ReplaceAllContext(ctx context.Context, persons []tree.Person, relationships []tree.Relationship) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM persons"); err != nil {
		return fmt.Errorf("failed to clear persons: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM relationships"); err != nil {
		return fmt.Errorf("failed to clear relationships: %w", err)
	}

	personStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO persons (id, first_name, surname, gender, note_path)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare person insert: %w", err)
	}
	defer personStmt.Close()

	for _, p := range persons {
		if _, err := personStmt.ExecContext(ctx, p.ID, p.FirstName, p.Surname, string(p.Gender), p.NotePath); err != nil {
			return fmt.Errorf("failed to insert person %s: %w", p.ID, err)
		}
	}

	relStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relationships (id, type, person1_id, person2_id, source_file, source_line)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare relationship insert: %w", err)
	}
	defer relStmt.Close()

	for _, r := range relationships {
		if _, err := relStmt.ExecContext(ctx, r.ID, string(r.Type), r.Person1ID, r.Person2ID, r.SourceFile, r.SourceLine); err != nil {
			return fmt.Errorf("failed to insert relationship %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Mirror subscribes db to store change notifications and refreshes the
// mirror on every change, after writing the current contents once. The
// returned function releases the subscription.
func Mirror(store *tree.Store, db *DB, logger *log.Logger) func() {
	refresh := func() {
		if err := db.ReplaceAll(store.Persons(), store.Relationships()); err != nil {
			logger.Printf("Cache refresh failed: %v", err)
		}
	}
	refresh()
	return store.Subscribe(refresh)
}

// PersonCount returns the number of mirrored persons.
func (db *DB) PersonCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM persons").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count persons: %w", err)
	}
	return count, nil
}

// RelationshipCount returns the number of mirrored relationships.
func (db *DB) RelationshipCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM relationships").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count relationships: %w", err)
	}
	return count, nil
}

// Persons returns all mirrored persons ordered by id.
func (db *DB) Persons() ([]tree.Person, error) {
	return db.PersonsContext(context.Background())
}

// PersonsContext returns all mirrored persons with context support.
func (db *DB) PersonsContext(ctx context.Context) ([]tree.Person, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, first_name, surname, gender, note_path
		FROM persons
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query persons: %w", err)
	}
	defer rows.Close()

	var persons []tree.Person
	for rows.Next() {
		var p tree.Person
		var gender string
		if err := rows.Scan(&p.ID, &p.FirstName, &p.Surname, &gender, &p.NotePath); err != nil {
			return nil, fmt.Errorf("failed to scan person: %w", err)
		}
		p.Gender = tree.Gender(gender)
		persons = append(persons, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating persons: %w", err)
	}
	return persons, nil
}

// RelationshipsFor returns every relationship touching the given person.
func (db *DB) RelationshipsFor(personID string) ([]tree.Relationship, error) {
	return db.RelationshipsForContext(context.Background(), personID)
}

// RelationshipsForContext returns a person's relationships with context support.
func (db *DB) RelationshipsForContext(ctx context.Context, personID string) ([]tree.Relationship, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, type, person1_id, person2_id, source_file, source_line
		FROM relationships
		WHERE person1_id = ? OR person2_id = ?
		ORDER BY id ASC`, personID, personID)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

// Relationships returns all mirrored relationships ordered by id.
func (db *DB) Relationships() ([]tree.Relationship, error) {
	rows, err := db.conn.Query(`
		SELECT id, type, person1_id, person2_id, source_file, source_line
		FROM relationships
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	return scanRelationships(rows)
}

func scanRelationships(rows *sql.Rows) ([]tree.Relationship, error) {
	var rels []tree.Relationship
	for rows.Next() {
		var r tree.Relationship
		var relType string
		if err := rows.Scan(&r.ID, &relType, &r.Person1ID, &r.Person2ID, &r.SourceFile, &r.SourceLine); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		r.Type = tree.RelationshipType(relType)
		rels = append(rels, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating relationships: %w", err)
	}
	return rels, nil
}

// Package database provides the off-chain mirror storage. Collections of
// JSON documents are kept in a single file so the mirror can be inspected
// and audited by hand. The chain remains the authoritative record; this
// store exists for human-facing display and hash cross-checking.
package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DB manages a set of named collections backed by a single JSON file.
// All mutations happen inside one critical section, which gives the
// domain stores a compare-and-set primitive for their uniqueness rules.
type DB struct {
	path        string
	mu          sync.Mutex
	collections map[string][]json.RawMessage
}

// New constructs a DB for the specified file path, creating the file
// and any parent directories when they don't exist yet.
func New(path string) (*DB, error) {
	db := DB{
		path:        path,
		collections: make(map[string][]json.RawMessage),
	}

	content, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
		if err := db.persist(); err != nil {
			return nil, err
		}

	case err != nil:
		return nil, fmt.Errorf("reading database file: %w", err)

	default:
		if err := json.Unmarshal(content, &db.collections); err != nil {
			return nil, fmt.Errorf("parsing database file: %w", err)
		}
	}

	return &db, nil
}

// persist writes the full set of collections to disk. The caller must
// hold the mutex.
func (db *DB) persist() error {
	content, err := json.MarshalIndent(db.collections, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding database: %w", err)
	}

	if err := os.WriteFile(db.path, content, 0644); err != nil {
		return fmt.Errorf("writing database file: %w", err)
	}

	return nil
}

// =============================================================================

// Insert appends a document to the specified collection.
func Insert[T any](db *DB, collection string, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.collections[collection] = append(db.collections[collection], raw)

	return db.persist()
}

// Find returns every document in the collection the match function
// accepts.
func Find[T any](db *DB, collection string, match func(T) bool) ([]T, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var docs []T
	for _, raw := range db.collections[collection] {
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("decoding document: %w", err)
		}
		if match(doc) {
			docs = append(docs, doc)
		}
	}

	return docs, nil
}

// FindOne returns the first document in the collection the match
// function accepts.
func FindOne[T any](db *DB, collection string, match func(T) bool) (T, bool, error) {
	var zero T

	docs, err := Find(db, collection, match)
	if err != nil {
		return zero, false, err
	}
	if len(docs) == 0 {
		return zero, false, nil
	}

	return docs[0], true, nil
}

// Update runs the apply function against the full collection inside the
// store's critical section and persists the result. When apply returns
// an error nothing is changed, which lets domain stores implement
// check-and-record rules atomically.
func Update[T any](db *DB, collection string, apply func(docs []T) ([]T, error)) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	docs := make([]T, 0, len(db.collections[collection]))
	for _, raw := range db.collections[collection] {
		var doc T
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("decoding document: %w", err)
		}
		docs = append(docs, doc)
	}

	docs, err := apply(docs)
	if err != nil {
		return err
	}

	raws := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encoding document: %w", err)
		}
		raws = append(raws, raw)
	}
	db.collections[collection] = raws

	return db.persist()
}

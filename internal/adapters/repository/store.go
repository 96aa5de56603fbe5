// Package repository defines the document store capability used by lookups
// and its in-memory and SQLite implementations.
package repository

import "context"

// Document is one stored record: its identifier and JSON body.
type Document struct {
	ID   string
	Data []byte
}

// Reader is the read capability lookups depend on.
type Reader interface {
	// Get returns one document by identifier, or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Where returns documents whose string field at the dotted path equals
	// value exactly (case-sensitive), in insertion order.
	Where(ctx context.Context, collection, field, value string) ([]Document, error)

	// Scan returns every document of a collection in insertion order.
	Scan(ctx context.Context, collection string) ([]Document, error)
}

// Store is a document store. Writers replace documents in place, keeping
// their original insertion position.
type Store interface {
	Reader

	// Put inserts or replaces a document.
	Put(ctx context.Context, collection string, doc Document) error

	// Count returns the number of documents per collection.
	Count(ctx context.Context) (map[string]int, error)

	Close() error
}

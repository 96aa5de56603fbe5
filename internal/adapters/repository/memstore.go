package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

type collection struct {
	order []string
	docs  map[string][]byte
}

// MemStore is an in-memory document store. Safe for concurrent use.
type MemStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
	closed      bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string]*collection)}
}

// Put inserts or replaces a document.
func (s *MemStore) Put(ctx context.Context, name string, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidDoc)
	}
	if !gjson.ValidBytes(doc.Data) {
		return fmt.Errorf("%w: %s/%s is not valid json", ErrInvalidDoc, name, doc.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	c, ok := s.collections[name]
	if !ok {
		c = &collection{docs: make(map[string][]byte)}
		s.collections[name] = c
	}
	if _, exists := c.docs[doc.ID]; !exists {
		c.order = append(c.order, doc.ID)
	}
	c.docs[doc.ID] = append([]byte(nil), doc.Data...)
	return nil
}

// Get returns one document by identifier.
func (s *MemStore) Get(ctx context.Context, name, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return Document{}, ErrClosed
	}
	c, ok := s.collections[name]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}
	data, ok := c.docs[id]
	if !ok {
		return Document{}, fmt.Errorf("%w: %s/%s", ErrNotFound, name, id)
	}
	return Document{ID: id, Data: append([]byte(nil), data...)}, nil
}

// Where returns documents whose field equals value.
func (s *MemStore) Where(ctx context.Context, name, field, value string) ([]Document, error) {
	if err := validField(field); err != nil {
		return nil, err
	}
	return s.collect(ctx, name, func(data []byte) bool {
		res := gjson.GetBytes(data, field)
		return res.Type == gjson.String && res.Str == value
	})
}

// Scan returns every document of a collection.
func (s *MemStore) Scan(ctx context.Context, name string) ([]Document, error) {
	return s.collect(ctx, name, func([]byte) bool { return true })
}

func (s *MemStore) collect(ctx context.Context, name string, keep func([]byte) bool) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	c, ok := s.collections[name]
	if !ok {
		return nil, nil
	}
	out := make([]Document, 0, len(c.order))
	for _, id := range c.order {
		data := c.docs[id]
		if keep(data) {
			out = append(out, Document{ID: id, Data: append([]byte(nil), data...)})
		}
	}
	return out, nil
}

// Count returns the number of documents per collection.
func (s *MemStore) Count(ctx context.Context) (map[string]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	out := make(map[string]int, len(s.collections))
	for name, c := range s.collections {
		out[name] = len(c.order)
	}
	return out, nil
}

// Close releases the store. Later calls fail with ErrClosed.
func (s *MemStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.collections = nil
	return nil
}

// validField accepts dotted paths of letters, digits and underscores.
func validField(field string) error {
	if field == "" {
		return fmt.Errorf("%w: empty", ErrInvalidField)
	}
	for _, part := range strings.Split(field, ".") {
		if part == "" {
			return fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		for _, r := range part {
			if !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
				return fmt.Errorf("%w: %q", ErrInvalidField, field)
			}
		}
	}
	return nil
}

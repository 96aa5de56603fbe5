// Package lookup resolves a spoken name to exactly one stored record.
//
// Names match in full, ignoring case. When several records share a name the
// configured Policy picks one; the store order is insertion order.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/okian/fulfillment/internal/adapters/repository"
	"github.com/okian/fulfillment/pkg/metrics"
	"github.com/tidwall/gjson"
	"golang.org/x/text/cases"
)

// NameField is the document path holding a record's name.
const NameField = "name"

// Decoder turns a document into a record.
type Decoder[T any] func(repository.Document) (T, error)

// Finder looks records of one collection up by name or id.
type Finder[T any] struct {
	store      repository.Reader
	collection string
	decode     Decoder[T]
	mode       Mode
	policy     Policy
}

// NewFinder returns a Finder over collection.
func NewFinder[T any](store repository.Reader, collection string, decode Decoder[T], opts ...Option) *Finder[T] {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &Finder[T]{
		store:      store,
		collection: collection,
		decode:     decode,
		mode:       s.mode,
		policy:     s.policy,
	}
}

// Mode returns the configured match mode.
func (f *Finder[T]) Mode() Mode { return f.mode }

// Find returns the record named name.
func (f *Finder[T]) Find(ctx context.Context, name string) (T, error) {
	var zero T
	start := time.Now()
	name = strings.TrimSpace(name)

	var (
		docs []repository.Document
		err  error
	)
	if f.mode == ModeIndexed {
		docs, err = f.store.Where(ctx, f.collection, NameField, name)
	} else {
		docs, err = f.store.Scan(ctx, f.collection)
	}
	if err != nil {
		f.record("error", start)
		metrics.RecordStoreError(string(f.mode))
		return zero, fmt.Errorf("%w: find %s %q: %w", ErrStore, f.collection, name, err)
	}

	doc, ok := pick(docs, f.matcher(name), f.policy)
	if !ok {
		f.record("not_found", start)
		return zero, fmt.Errorf("%w: %s named %q", ErrNotFound, f.collection, name)
	}
	rec, err := f.decode(doc)
	if err != nil {
		f.record("error", start)
		return zero, fmt.Errorf("%w: %w", ErrStore, err)
	}
	f.record("found", start)
	return rec, nil
}

// Get returns the record stored under id.
func (f *Finder[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	start := time.Now()
	doc, err := f.store.Get(ctx, f.collection, id)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		f.record("not_found", start)
		return zero, fmt.Errorf("%w: %s/%s", ErrNotFound, f.collection, id)
	case err != nil:
		f.record("error", start)
		metrics.RecordStoreError("get")
		return zero, fmt.Errorf("%w: get %s/%s: %w", ErrStore, f.collection, id, err)
	}
	rec, err := f.decode(doc)
	if err != nil {
		f.record("error", start)
		return zero, fmt.Errorf("%w: %w", ErrStore, err)
	}
	f.record("found", start)
	return rec, nil
}

// Where returns every record whose string field equals value, in store order.
func (f *Finder[T]) Where(ctx context.Context, field, value string) ([]T, error) {
	docs, err := f.store.Where(ctx, f.collection, field, value)
	if err != nil {
		metrics.RecordStoreError("where")
		return nil, fmt.Errorf("%w: %s where %s=%q: %w", ErrStore, f.collection, field, value, err)
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		rec, err := f.decode(doc)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrStore, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *Finder[T]) record(result string, start time.Time) {
	metrics.RecordLookup(f.collection, string(f.mode), result, float64(time.Since(start).Microseconds())/1000)
}

// matcher compares the document's name with want. Indexed results already
// matched exactly in the store, scans fold case.
func (f *Finder[T]) matcher(want string) func([]byte) bool {
	if f.mode == ModeIndexed {
		return func(data []byte) bool {
			return gjson.GetBytes(data, NameField).String() == want
		}
	}
	// a Caser carries state and is not safe for concurrent use
	fold := cases.Fold()
	key := fold.String(want)
	return func(data []byte) bool {
		name := gjson.GetBytes(data, NameField)
		return name.Type == gjson.String && fold.String(strings.TrimSpace(name.Str)) == key
	}
}

// pick folds over docs keeping the first or the last match.
func pick(docs []repository.Document, match func([]byte) bool, policy Policy) (repository.Document, bool) {
	var (
		found repository.Document
		ok    bool
	)
	for _, doc := range docs {
		if !match(doc.Data) {
			continue
		}
		found, ok = doc, true
		if policy == PolicyFirst {
			break
		}
	}
	return found, ok
}

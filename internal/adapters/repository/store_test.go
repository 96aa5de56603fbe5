package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/fulfillment/internal/domain/model"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := OpenSQLite(context.Background(), ":memory:", WithBusyTimeout(time.Second))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemStore(),
		"sqlite": sqlite,
	}
}

func mustPut(t *testing.T, s Store, collection, id, body string) {
	t.Helper()
	if err := s.Put(context.Background(), collection, Document{ID: id, Data: []byte(body)}); err != nil {
		t.Fatalf("put %s/%s: %v", collection, id, err)
	}
}

func ids(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStore_PutGet(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustPut(t, s, model.CollectionPlayers, "p1", `{"name":"Alice","rank":1}`)

			doc, err := s.Get(ctx, model.CollectionPlayers, "p1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			p, err := DecodePlayer(doc)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if p.ID != "p1" || p.Name != "Alice" || p.Rank != 1 {
				t.Errorf("unexpected player %+v", p)
			}

			if _, err := s.Get(ctx, model.CollectionPlayers, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound, got %v", err)
			}
			if _, err := s.Get(ctx, "nope", "p1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("expected ErrNotFound for unknown collection, got %v", err)
			}
		})
	}
}

func TestStore_ReplaceKeepsOrder(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustPut(t, s, model.CollectionPlayers, "a", `{"name":"Alice"}`)
			mustPut(t, s, model.CollectionPlayers, "b", `{"name":"Bob"}`)
			mustPut(t, s, model.CollectionPlayers, "a", `{"name":"Alicia"}`)

			docs, err := s.Scan(ctx, model.CollectionPlayers)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ids(docs); !equalIDs(got, []string{"a", "b"}) {
				t.Errorf("expected [a b], got %v", got)
			}
			p, _ := DecodePlayer(docs[0])
			if p.Name != "Alicia" {
				t.Errorf("expected replaced body, got %q", p.Name)
			}
		})
	}
}

func TestStore_Where(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			mustPut(t, s, model.CollectionMatches, "m1", `{"tournament_id":"t1","stage":"Finals"}`)
			mustPut(t, s, model.CollectionMatches, "m2", `{"tournament_id":"t2","stage":"Finals"}`)
			mustPut(t, s, model.CollectionMatches, "m3", `{"tournament_id":"t1","stage":"Semifinals"}`)
			mustPut(t, s, model.CollectionMatches, "m4", `{"tournament_id":1,"stage":"Finals"}`)

			docs, err := s.Where(ctx, model.CollectionMatches, "tournament_id", "t1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := ids(docs); !equalIDs(got, []string{"m1", "m3"}) {
				t.Errorf("expected [m1 m3], got %v", got)
			}

			// numbers never equal their string rendering
			docs, err = s.Where(ctx, model.CollectionMatches, "tournament_id", "1")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(docs) != 0 {
				t.Errorf("expected no match for numeric field, got %v", ids(docs))
			}

			// equality is case-sensitive
			docs, _ = s.Where(ctx, model.CollectionMatches, "stage", "finals")
			if len(docs) != 0 {
				t.Errorf("expected case-sensitive miss, got %v", ids(docs))
			}

			if _, err := s.Where(ctx, model.CollectionMatches, "stage'); DROP TABLE documents; --", "x"); !errors.Is(err, ErrInvalidField) {
				t.Errorf("expected ErrInvalidField, got %v", err)
			}
		})
	}
}

func TestStore_NestedField(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			mustPut(t, s, "docs", "d1", `{"meta":{"owner":"x"}}`)
			docs, err := s.Where(context.Background(), "docs", "meta.owner", "x")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(docs) != 1 {
				t.Errorf("expected one document, got %d", len(docs))
			}
		})
	}
}

func TestStore_InvalidDocument(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Put(ctx, "docs", Document{ID: "", Data: []byte(`{}`)}); !errors.Is(err, ErrInvalidDoc) {
				t.Errorf("expected ErrInvalidDoc for empty id, got %v", err)
			}
			if err := s.Put(ctx, "docs", Document{ID: "x", Data: []byte(`{not json`)}); !errors.Is(err, ErrInvalidDoc) {
				t.Errorf("expected ErrInvalidDoc for bad json, got %v", err)
			}
		})
	}
}

func TestStore_Count(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			mustPut(t, s, model.CollectionPlayers, "p1", `{"name":"Alice"}`)
			mustPut(t, s, model.CollectionPlayers, "p2", `{"name":"Bob"}`)
			mustPut(t, s, model.CollectionTournaments, "t1", `{"name":"Spring Open"}`)

			counts, err := s.Count(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if counts[model.CollectionPlayers] != 2 || counts[model.CollectionTournaments] != 1 {
				t.Errorf("unexpected counts %v", counts)
			}
		})
	}
}

func TestStore_Closed(t *testing.T) {
	for name, s := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if err := s.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}
			if _, err := s.Scan(ctx, model.CollectionPlayers); err == nil {
				t.Error("expected error after close")
			}
			if _, err := s.Get(ctx, model.CollectionPlayers, "p1"); err == nil {
				t.Error("expected error after close")
			}
		})
	}
}

func TestMemStore_ContextCancelled(t *testing.T) {
	s := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Scan(ctx, model.CollectionPlayers); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestDecode_Errors(t *testing.T) {
	if _, err := DecodeTournament(Document{ID: "t1", Data: []byte(`{"date":"tomorrow"}`)}); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
	if _, err := DecodeMatch(Document{ID: "m1", Data: []byte(`[]`)}); !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	at := time.Date(2027, time.May, 5, 10, 0, 0, 0, time.UTC)
	doc, err := Encode("t1", model.Tournament{Name: "Spring Open", Date: at, Venue: "Oslo"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	tour, err := DecodeTournament(doc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if tour.ID != "t1" || !tour.Date.Equal(at) || tour.Venue != "Oslo" {
		t.Errorf("unexpected tournament %+v", tour)
	}
}

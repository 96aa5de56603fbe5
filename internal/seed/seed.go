// Package seed loads YAML fixtures of players, tournaments and matches into a
// document store.
//
// Records without an id get a random UUID. Matches may reference their
// tournament and players by id or by the name used in the same fixture.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/okian/fulfillment/internal/adapters/repository"
	"github.com/okian/fulfillment/internal/domain/model"
	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk layout of a seed file.
type Fixture struct {
	Players     []model.Player     `yaml:"players"`
	Tournaments []model.Tournament `yaml:"tournaments"`
	Matches     []model.Match      `yaml:"matches"`
}

// Summary counts the documents written by Apply.
type Summary struct {
	Players     int `json:"players"`
	Tournaments int `json:"tournaments"`
	Matches     int `json:"matches"`
}

// Load reads and parses the fixture at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	return Parse(data)
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := f.assignIDs(); err != nil {
		return nil, err
	}
	if err := f.link(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply writes every record of the fixture into store.
func (f *Fixture) Apply(ctx context.Context, store repository.Store) (Summary, error) {
	var sum Summary
	for _, p := range f.Players {
		if err := put(ctx, store, model.CollectionPlayers, p.ID, p); err != nil {
			return sum, err
		}
		sum.Players++
	}
	for _, t := range f.Tournaments {
		if err := put(ctx, store, model.CollectionTournaments, t.ID, t); err != nil {
			return sum, err
		}
		sum.Tournaments++
	}
	for _, m := range f.Matches {
		if err := put(ctx, store, model.CollectionMatches, m.ID, m); err != nil {
			return sum, err
		}
		sum.Matches++
	}
	return sum, nil
}

func put(ctx context.Context, store repository.Store, collection, id string, record any) error {
	doc, err := repository.Encode(id, record)
	if err != nil {
		return err
	}
	if err := store.Put(ctx, collection, doc); err != nil {
		return fmt.Errorf("seed %s/%s: %w", collection, id, err)
	}
	return nil
}

func (f *Fixture) assignIDs() error {
	for i := range f.Players {
		if strings.TrimSpace(f.Players[i].Name) == "" {
			return fmt.Errorf("%w: player %d has no name", ErrInvalid, i)
		}
		if f.Players[i].ID == "" {
			f.Players[i].ID = uuid.NewString()
		}
	}
	for i := range f.Tournaments {
		if strings.TrimSpace(f.Tournaments[i].Name) == "" {
			return fmt.Errorf("%w: tournament %d has no name", ErrInvalid, i)
		}
		if f.Tournaments[i].ID == "" {
			f.Tournaments[i].ID = uuid.NewString()
		}
	}
	for i := range f.Matches {
		if f.Matches[i].ID == "" {
			f.Matches[i].ID = uuid.NewString()
		}
	}
	return nil
}

// link rewrites match references given by name into ids. References that
// are neither a known id nor a known name are kept as they are; a missing
// player is a valid state of the data.
func (f *Fixture) link() error {
	players := make(map[string]string, 2*len(f.Players))
	for _, p := range f.Players {
		players[p.Name] = p.ID
	}
	for _, p := range f.Players {
		players[p.ID] = p.ID
	}
	tournaments := make(map[string]string, 2*len(f.Tournaments))
	for _, t := range f.Tournaments {
		tournaments[t.Name] = t.ID
	}
	for _, t := range f.Tournaments {
		tournaments[t.ID] = t.ID
	}

	for i := range f.Matches {
		m := &f.Matches[i]
		if m.TournamentID == "" {
			return fmt.Errorf("%w: match %s has no tournament", ErrInvalid, m.ID)
		}
		if id, ok := tournaments[m.TournamentID]; ok {
			m.TournamentID = id
		}
		if id, ok := players[m.Player1ID]; ok {
			m.Player1ID = id
		}
		if id, ok := players[m.Player2ID]; ok {
			m.Player2ID = id
		}
	}
	return nil
}

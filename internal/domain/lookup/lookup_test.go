package lookup_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/fulfillment/internal/adapters/repository"
	"github.com/okian/fulfillment/internal/domain/lookup"
	"github.com/okian/fulfillment/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

var errBroken = errors.New("disk on fire")

type brokenStore struct{}

func (brokenStore) Get(context.Context, string, string) (repository.Document, error) {
	return repository.Document{}, errBroken
}

func (brokenStore) Where(context.Context, string, string, string) ([]repository.Document, error) {
	return nil, errBroken
}

func (brokenStore) Scan(context.Context, string) ([]repository.Document, error) {
	return nil, errBroken
}

func seedPlayers(store repository.Store, players ...model.Player) {
	for _, p := range players {
		doc, err := repository.Encode(p.ID, p)
		So(err, ShouldBeNil)
		So(store.Put(context.Background(), model.CollectionPlayers, doc), ShouldBeNil)
	}
}

func TestFind(t *testing.T) {
	Convey("Given a store with distinct players", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedPlayers(store,
			model.Player{ID: "p1", Name: "Alice Smith", Rank: 1},
			model.Player{ID: "p2", Name: "Bob", Rank: 2},
			model.Player{ID: "p3", Name: "Zoë Ærøskøbing", Rank: 3},
		)
		players := lookup.NewFinder(store, model.CollectionPlayers, repository.DecodePlayer)

		Convey("When looking a name up in any case", func() {
			for _, q := range []string{"Alice Smith", "alice smith", "ALICE SMITH", "aLiCe SmItH", "  Alice Smith "} {
				p, err := players.Find(ctx, q)
				So(err, ShouldBeNil)
				So(p.ID, ShouldEqual, "p1")
			}
		})

		Convey("When the name carries non-ASCII letters", func() {
			p, err := players.Find(ctx, "ZOË ærøSKØBING")
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "p3")
		})

		Convey("When the name is only a prefix", func() {
			_, err := players.Find(ctx, "Alice")

			Convey("Then nothing should be found", func() {
				So(errors.Is(err, lookup.ErrNotFound), ShouldBeTrue)
				So(errors.Is(err, lookup.ErrStore), ShouldBeFalse)
			})
		})

		Convey("When looking up by id", func() {
			p, err := players.Get(ctx, "p2")
			So(err, ShouldBeNil)
			So(p.Name, ShouldEqual, "Bob")

			_, err = players.Get(ctx, "p9")
			So(errors.Is(err, lookup.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given players sharing a name", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedPlayers(store,
			model.Player{ID: "old", Name: "Cara", Rank: 9},
			model.Player{ID: "mid", Name: "Dan", Rank: 4},
			model.Player{ID: "new", Name: "CARA", Rank: 3},
		)

		Convey("Then the last match should win by default", func() {
			p, err := lookup.NewFinder(store, model.CollectionPlayers, repository.DecodePlayer).Find(ctx, "cara")
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "new")
		})

		Convey("Then the first match should win under the first policy", func() {
			f := lookup.NewFinder(store, model.CollectionPlayers, repository.DecodePlayer, lookup.WithPolicy(lookup.PolicyFirst))
			p, err := f.Find(ctx, "cara")
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "old")
		})
	})

	Convey("Given the indexed mode", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		seedPlayers(store, model.Player{ID: "p1", Name: "Alice"})
		f := lookup.NewFinder(store, model.CollectionPlayers, repository.DecodePlayer, lookup.WithMode(lookup.ModeIndexed))

		Convey("Then exact casing should be found", func() {
			So(f.Mode(), ShouldEqual, lookup.ModeIndexed)
			p, err := f.Find(ctx, "Alice")
			So(err, ShouldBeNil)
			So(p.ID, ShouldEqual, "p1")
		})

		Convey("Then other casing should not be found", func() {
			_, err := f.Find(ctx, "alice")
			So(errors.Is(err, lookup.ErrNotFound), ShouldBeTrue)
		})
	})

	Convey("Given a failing store", t, func() {
		ctx := context.Background()
		f := lookup.NewFinder(brokenStore{}, model.CollectionPlayers, repository.DecodePlayer)

		Convey("Then every read should report a store error with its cause", func() {
			_, err := f.Find(ctx, "Alice")
			So(errors.Is(err, lookup.ErrStore), ShouldBeTrue)
			So(errors.Is(err, errBroken), ShouldBeTrue)
			So(errors.Is(err, lookup.ErrNotFound), ShouldBeFalse)

			_, err = f.Get(ctx, "p1")
			So(errors.Is(err, lookup.ErrStore), ShouldBeTrue)

			_, err = f.Where(ctx, "stage", "Finals")
			So(errors.Is(err, lookup.ErrStore), ShouldBeTrue)
		})
	})

	Convey("Given a corrupt record", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		So(store.Put(ctx, model.CollectionPlayers, repository.Document{ID: "p1", Data: []byte(`{"name":"Alice","dob":"soon"}`)}), ShouldBeNil)
		f := lookup.NewFinder(store, model.CollectionPlayers, repository.DecodePlayer)

		Convey("Then decoding it should be a store error", func() {
			_, err := f.Find(ctx, "Alice")
			So(errors.Is(err, lookup.ErrStore), ShouldBeTrue)
			So(errors.Is(err, repository.ErrDecode), ShouldBeTrue)
		})
	})
}

func TestWhere(t *testing.T) {
	Convey("Given matches across tournaments", t, func() {
		ctx := context.Background()
		store := repository.NewMemStore()
		for _, m := range []model.Match{
			{ID: "m1", TournamentID: "t1", Stage: model.StageFinals},
			{ID: "m2", TournamentID: "t2", Stage: model.StageFinals},
			{ID: "m3", TournamentID: "t1", Stage: "Semifinals"},
		} {
			doc, err := repository.Encode(m.ID, m)
			So(err, ShouldBeNil)
			So(store.Put(ctx, model.CollectionMatches, doc), ShouldBeNil)
		}
		matches := lookup.NewFinder(store, model.CollectionMatches, repository.DecodeMatch)

		Convey("Then filtering by tournament should keep store order", func() {
			got, err := matches.Where(ctx, "tournament_id", "t1")
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].ID, ShouldEqual, "m1")
			So(got[1].ID, ShouldEqual, "m3")
		})
	})
}

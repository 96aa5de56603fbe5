package seed_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/okian/fulfillment/internal/adapters/repository"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/seed"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given the sample fixture", t, func() {
		f, err := seed.Load("testdata/fixture.yaml")
		So(err, ShouldBeNil)

		Convey("Then records should be decoded", func() {
			So(len(f.Players), ShouldEqual, 2)
			So(f.Players[0].DOB, ShouldResemble, model.NewDate(1999, time.June, 1))
			So(f.Tournaments[0].Date.Equal(time.Date(2024, time.April, 10, 10, 0, 0, 0, time.UTC)), ShouldBeTrue)
		})

		Convey("Then missing ids should be generated", func() {
			_, err := uuid.Parse(f.Players[1].ID)
			So(err, ShouldBeNil)
			_, err = uuid.Parse(f.Matches[0].ID)
			So(err, ShouldBeNil)
		})

		Convey("Then name references should become ids", func() {
			So(f.Matches[0].TournamentID, ShouldEqual, "t-spring")
			So(f.Matches[0].Player1ID, ShouldEqual, "p-alice")
			So(f.Matches[0].Player2ID, ShouldEqual, f.Players[1].ID)
			So(f.Matches[1].Player1ID, ShouldEqual, "p-alice")
		})

		Convey("Then unknown references should be kept", func() {
			So(f.Matches[1].Player2ID, ShouldEqual, "p-retired")
		})

		Convey("When applied to a store", func() {
			ctx := context.Background()
			store := repository.NewMemStore()
			sum, err := f.Apply(ctx, store)

			Convey("Then every record should be written", func() {
				So(err, ShouldBeNil)
				So(sum, ShouldResemble, seed.Summary{Players: 2, Tournaments: 1, Matches: 2})

				doc, err := store.Get(ctx, model.CollectionPlayers, "p-alice")
				So(err, ShouldBeNil)
				p, err := repository.DecodePlayer(doc)
				So(err, ShouldBeNil)
				So(p.Name, ShouldEqual, "Alice")
				So(p.Elo, ShouldEqual, 2850)
			})
		})
	})

	Convey("Given broken fixtures", t, func() {
		Convey("When the file does not exist", func() {
			_, err := seed.Load("testdata/missing.yaml")
			So(errors.Is(err, seed.ErrRead), ShouldBeTrue)
		})

		Convey("When a key is unknown", func() {
			_, err := seed.Parse([]byte("players:\n  - name: Alice\n    nickname: Al\n"))
			So(errors.Is(err, seed.ErrParse), ShouldBeTrue)
		})

		Convey("When a player has no name", func() {
			_, err := seed.Parse([]byte("players:\n  - rank: 1\n"))
			So(errors.Is(err, seed.ErrInvalid), ShouldBeTrue)
		})

		Convey("When a match has no tournament", func() {
			_, err := seed.Parse([]byte("matches:\n  - stage: Finals\n"))
			So(errors.Is(err, seed.ErrInvalid), ShouldBeTrue)
		})

		Convey("When the document is empty", func() {
			f, err := seed.Parse(nil)
			So(err, ShouldBeNil)
			So(len(f.Players), ShouldEqual, 0)
		})
	})
}

func TestSampleFixture(t *testing.T) {
	Convey("Given the repository's sample fixture", t, func() {
		f, err := seed.Load("../../fixtures/sample.yaml")
		So(err, ShouldBeNil)

		store := repository.NewMemStore()
		sum, err := f.Apply(context.Background(), store)

		Convey("Then every record should be stored", func() {
			So(err, ShouldBeNil)
			So(sum, ShouldResemble, seed.Summary{Players: 4, Tournaments: 2, Matches: 3})
			So(f.Matches[2].TournamentID, ShouldEqual, "t-candidates")
			So(f.Matches[2].Player2ID, ShouldEqual, "p-hikaru")
			So(f.Players[0].Email, ShouldEqual, "magnus@example.com")
		})
	})
}

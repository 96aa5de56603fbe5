package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	service "github.com/okian/fulfillment/internal/app"
	"github.com/okian/fulfillment/internal/adapters/repository"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/fulfillment"
	"github.com/okian/fulfillment/internal/seed"
	. "github.com/smartystreets/goconvey/convey"
)

const conversationFixture = `
players:
  - {id: p-alice, name: Alice, dob: 1999-06-01, elo: 2850, rank: 1}
  - {id: p-bob, name: Bob, dob: 2000-03-15, elo: 2800, rank: 3}
tournaments:
  - {id: t-spring, name: Spring Open, date: "2024-04-10T10:00:00Z", venue: Oslo}
matches:
  - {tournament_id: t-spring, stage: Finals, player1_id: Alice, player2_id: Bob, score1: 3, score2: 1}
`

// TestService_Conversation drives a multi-turn conversation against a
// file-backed SQLite store, replaying contexts the way the platform does.
func TestService_Conversation(t *testing.T) {
	Convey("Given a service over a seeded SQLite database", t, func() {
		ctx := context.Background()
		store, err := repository.OpenSQLite(ctx, filepath.Join(t.TempDir(), "fulfillment.db"))
		So(err, ShouldBeNil)

		fixture, err := seed.Parse([]byte(conversationFixture))
		So(err, ShouldBeNil)
		_, err = fixture.Apply(ctx, store)
		So(err, ShouldBeNil)

		svc := service.New(
			service.WithStore(store),
			service.WithClock(func() time.Time { return fixedNow }),
			service.WithLookupMode("indexed"),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		var contexts []model.Context
		ask := func(intent string, params map[string]any) fulfillment.Reply {
			// the platform ages every context by one turn
			live := contexts[:0]
			for _, c := range contexts {
				c.Lifespan--
				if !c.Expired() {
					live = append(live, c)
				}
			}
			contexts = live

			reply, err := svc.Fulfill(ctx, fulfillment.Turn{Intent: intent, Params: params, Contexts: contexts})
			So(err, ShouldBeNil)
			if reply.Context != nil {
				contexts = append(contexts, *reply.Context)
			}
			return reply
		}

		Convey("Then follow-up questions should reuse the subject", func() {
			So(ask(fulfillment.IntentPlayerElo, map[string]any{model.ParamPlayer: "Bob"}).Text,
				ShouldEqual, "Bob has an Elo rating of 2,800.")
			So(ask("PlayerAge_Context", nil).Text, ShouldEqual, "Bob is 24 years old.")
			So(ask("PlayerRank_Context", nil).Text, ShouldEqual, "Bob is ranked number 3.")

			So(ask(fulfillment.IntentTournamentWinner, map[string]any{model.ParamTournament: "Spring Open"}).Text,
				ShouldEqual, "Alice won the Spring Open finals 3-1.")
			So(ask(fulfillment.IntentFinalsScore, nil).Text, ShouldEqual, "In the Spring Open finals, Alice scored 3 and Bob scored 1. The winner was Alice!")
			So(ask("TournamentVenue_Context", nil).Text, ShouldEqual, "Spring Open was held at Oslo.")
		})

		Convey("Then the indexed mode should require exact casing", func() {
			So(ask(fulfillment.IntentPlayerAge, map[string]any{model.ParamPlayer: "alice"}).Text,
				ShouldEqual, "I couldn't find a player named alice.")
		})
	})
}

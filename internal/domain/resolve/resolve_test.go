package resolve_test

import (
	"errors"
	"testing"

	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/domain/resolve"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given the age intent's resolver", t, func() {
		r := resolve.New(model.ParamPlayer, model.EloContext, model.RankContext)

		Convey("When the turn names the player explicitly", func() {
			params := map[string]any{model.ParamPlayer: map[string]any{"name": "Alice"}}
			contexts := []model.Context{model.PlayerContext(model.EloContext, 5, "Bob")}

			res, err := r.Resolve(params, contexts)

			Convey("Then the explicit name should win without consulting contexts", func() {
				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Alice")
				So(res.Source, ShouldEqual, resolve.SourceExplicit)
			})
		})

		Convey("When only one relevant context is present", func() {
			contexts := []model.Context{model.PlayerContext(model.RankContext, 2, "Bob")}

			res, err := r.Resolve(nil, contexts)

			Convey("Then it should be used", func() {
				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Bob")
				So(res.Source, ShouldEqual, resolve.SourceContext)
				So(res.Context, ShouldEqual, model.RankContext)
			})
		})

		Convey("When both relevant contexts are present", func() {
			Convey("And the second one is fresher", func() {
				contexts := []model.Context{
					model.PlayerContext(model.EloContext, 2, "Bob"),
					model.PlayerContext(model.RankContext, 4, "Cara"),
				}
				res, err := r.Resolve(map[string]any{}, contexts)

				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Cara")
			})

			Convey("And the first one is fresher", func() {
				contexts := []model.Context{
					model.PlayerContext(model.RankContext, 1, "Cara"),
					model.PlayerContext(model.EloContext, 4, "Bob"),
				}
				res, err := r.Resolve(nil, contexts)

				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Bob")
			})

			Convey("And their lifespans tie", func() {
				contexts := []model.Context{
					model.PlayerContext(model.RankContext, 3, "Cara"),
					model.PlayerContext(model.EloContext, 3, "Bob"),
				}

				Convey("Then the first declared context should win every time", func() {
					for i := 0; i < 20; i++ {
						res, err := r.Resolve(nil, contexts)
						So(err, ShouldBeNil)
						So(res.Name, ShouldEqual, "Bob")
						So(res.Context, ShouldEqual, model.EloContext)
					}
				})
			})
		})

		Convey("When the only relevant context has expired", func() {
			contexts := []model.Context{model.PlayerContext(model.EloContext, 0, "Bob")}

			_, err := r.Resolve(nil, contexts)

			Convey("Then resolution should fail", func() {
				So(errors.Is(err, resolve.ErrNoSubject), ShouldBeTrue)
			})
		})

		Convey("When only an irrelevant context is present", func() {
			contexts := []model.Context{model.PlayerContext(model.AgeContext, 5, "Bob")}

			res, err := r.Resolve(nil, contexts)

			Convey("Then resolution should fail", func() {
				So(errors.Is(err, resolve.ErrNoSubject), ShouldBeTrue)
				So(res.Source, ShouldEqual, resolve.SourceNone)
			})
		})

		Convey("When the explicit parameter is blank", func() {
			params := map[string]any{model.ParamPlayer: "   "}
			contexts := []model.Context{model.PlayerContext(model.EloContext, 1, "Bob")}

			res, err := r.Resolve(params, contexts)

			Convey("Then the context should be used", func() {
				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Bob")
			})
		})

		Convey("When a relevant context carries no subject", func() {
			contexts := []model.Context{
				{Name: model.EloContext, Lifespan: 5, Parameters: map[string]any{}},
				model.PlayerContext(model.RankContext, 1, "Cara"),
			}

			res, err := r.Resolve(nil, contexts)

			Convey("Then it should be skipped", func() {
				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Cara")
			})
		})

		Convey("When no contexts at all are supplied", func() {
			_, err := r.Resolve(nil, nil)
			So(errors.Is(err, resolve.ErrNoSubject), ShouldBeTrue)
		})
	})

	Convey("Given a resolver that accepts the intent's own parameter", t, func() {
		r := resolve.New(model.ParamPlayer, model.EloContext).Explicit(model.ParamAgeName)

		Convey("When the turn names the player under that parameter", func() {
			params := map[string]any{model.ParamAgeName: map[string]any{"name": "Alice"}}
			res, err := r.Resolve(params, nil)

			Convey("Then it should be resolved explicitly", func() {
				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Alice")
				So(res.Source, ShouldEqual, resolve.SourceExplicit)
				So(r.Params(), ShouldResemble, []string{model.ParamAgeName, model.ParamPlayer})
			})
		})

		Convey("When only a context carries the player", func() {
			res, err := r.Resolve(nil, []model.Context{model.PlayerContext(model.EloContext, 2, "Bob")})

			Convey("Then the context payload key should still be read", func() {
				So(err, ShouldBeNil)
				So(res.Name, ShouldEqual, "Bob")
				So(res.Source, ShouldEqual, resolve.SourceContext)
			})
		})
	})

	Convey("Given a tournament resolver", t, func() {
		r := resolve.New(model.ParamTournament, model.TournamentVenueContext, model.TournamentWinnerContext)

		Convey("Then it should read the tournament payload", func() {
			contexts := []model.Context{model.TournamentContext(model.TournamentWinnerContext, 4, "Spring Open")}
			res, err := r.Resolve(nil, contexts)
			So(err, ShouldBeNil)
			So(res.Name, ShouldEqual, "Spring Open")
			So(r.Key(), ShouldEqual, model.ParamTournament)
			So(r.Relevant(), ShouldResemble, []model.ContextName{model.TournamentVenueContext, model.TournamentWinnerContext})
		})
	})
}

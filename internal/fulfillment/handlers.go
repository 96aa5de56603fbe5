package fulfillment

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/okian/fulfillment/internal/domain/facts"
	"github.com/okian/fulfillment/internal/domain/lookup"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/domain/resolve"
	"github.com/okian/fulfillment/pkg/logger"
	"github.com/okian/fulfillment/pkg/metrics"
)

// Handlers builds the intent handlers over shared lookups and settings.
type Handlers struct {
	players     PlayerFinder
	tournaments TournamentFinder
	matches     MatchFinder

	now      func() time.Time
	loc      *time.Location
	lifespan int
	fanout   int
	log      logger.Logger
}

// NewHandlers returns Handlers reading from the given finders.
func NewHandlers(players PlayerFinder, tournaments TournamentFinder, matches MatchFinder, opts ...Option) *Handlers {
	h := defaults()
	h.players = players
	h.tournaments = tournaments
	h.matches = matches
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logger.Nop()
	}
	return h
}

// playerFact describes a single-player intent. render reports false when
// the record lacks the requested field; the reply then comes from absent.
type playerFact struct {
	resolver    resolve.Resolver
	establishes model.ContextName
	render      func(p model.Player, now time.Time) (string, bool)
	absent      func(name string) string
}

// PlayerAge answers "how old is <player>".
func (h *Handlers) PlayerAge() Handler {
	return h.player(playerFact{
		resolver:    resolve.New(model.ParamPlayer, model.EloContext, model.RankContext).Explicit(model.ParamAgeName),
		establishes: model.AgeContext,
		render: func(p model.Player, now time.Time) (string, bool) {
			if p.DOB.IsZero() {
				return "", false
			}
			return msgAge(p.Name, facts.Age(p.DOB, model.DateOf(now))), true
		},
		absent: msgNoDOB,
	})
}

// PlayerElo answers "what is <player>'s rating".
func (h *Handlers) PlayerElo() Handler {
	return h.player(playerFact{
		resolver:    resolve.New(model.ParamPlayer, model.AgeContext, model.RankContext).Explicit(model.ParamEloName),
		establishes: model.EloContext,
		render: func(p model.Player, _ time.Time) (string, bool) {
			return msgElo(p.Name, p.Elo), true
		},
	})
}

// PlayerRank answers "what is <player>'s rank".
func (h *Handlers) PlayerRank() Handler {
	return h.player(playerFact{
		resolver:    resolve.New(model.ParamPlayer, model.AgeContext, model.EloContext).Explicit(model.ParamRankName),
		establishes: model.RankContext,
		render: func(p model.Player, _ time.Time) (string, bool) {
			return msgRank(p.Name, p.Rank), true
		},
	})
}

// PlayerEmail answers "what is <player>'s email". It reads no contexts and
// establishes none.
func (h *Handlers) PlayerEmail() Handler {
	return h.player(playerFact{
		resolver: resolve.New(model.ParamPlayer).Explicit(model.ParamName),
		render: func(p model.Player, _ time.Time) (string, bool) {
			if strings.TrimSpace(p.Email) == "" {
				return "", false
			}
			return msgEmail(p.Name, p.Email), true
		},
		absent: msgNoEmail,
	})
}

func (h *Handlers) player(f playerFact) Handler {
	return HandlerFunc(func(ctx context.Context, turn Turn) Reply {
		log := h.turnLogger(turn)

		subject, err := h.resolve(ctx, log, f.resolver, turn)
		if err != nil {
			return Reply{Text: MsgNeedPlayer, Outcome: OutcomeClarify}
		}

		p, err := h.players.Find(ctx, subject)
		if err != nil {
			return h.failure(ctx, log, err, msgNoPlayer(subject))
		}

		text, ok := f.render(p, h.clock())
		if !ok {
			log.Info(ctx, "player record incomplete", logger.String("player", p.ID))
			return Reply{Text: f.absent(p.Name), Outcome: OutcomeNotFound}
		}
		if f.establishes == "" {
			return h.answer(text, nil)
		}
		c := model.PlayerContext(f.establishes, h.lifespan, p.Name)
		return h.answer(text, &c)
	})
}

// resolve runs r and records where the subject came from.
func (h *Handlers) resolve(ctx context.Context, log logger.Logger, r resolve.Resolver, turn Turn) (string, error) {
	res, err := r.Resolve(turn.Params, turn.Contexts)
	metrics.RecordSubjectResolution(string(res.Source))
	if err != nil {
		log.Debug(ctx, "subject missing", logger.String("param", r.Key()))
		return "", err
	}
	log.Debug(ctx, "subject resolved",
		logger.String("subject", res.Name),
		logger.String("source", string(res.Source)),
		logger.String("context", string(res.Context)))
	return res.Name, nil
}

// failure maps a lookup error to a reply. NotFound is an expected answer,
// anything else is a store failure.
func (h *Handlers) failure(ctx context.Context, log logger.Logger, err error, notFound string) Reply {
	if errors.Is(err, lookup.ErrNotFound) {
		log.Info(ctx, "record not found", logger.Error(err))
		return Reply{Text: notFound, Outcome: OutcomeNotFound}
	}
	log.Error(ctx, "store lookup failed", logger.Error(err))
	return Reply{Text: MsgFailure, Outcome: OutcomeFailed}
}

func (h *Handlers) answer(text string, c *model.Context) Reply {
	if c != nil {
		metrics.RecordContextEstablished(string(c.Name))
	}
	return Reply{Text: text, Context: c, Outcome: OutcomeAnswered}
}

// clock returns "now" in the configured zone.
func (h *Handlers) clock() time.Time {
	return h.now().In(h.loc)
}

func (h *Handlers) turnLogger(turn Turn) logger.Logger {
	return h.log.With(
		logger.String("intent", turn.Intent),
		logger.String("session", turn.Session),
		logger.String("turn", turn.ID))
}

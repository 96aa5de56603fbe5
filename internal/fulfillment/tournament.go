package fulfillment

import (
	"context"
	"strings"

	"github.com/okian/fulfillment/internal/domain/facts"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/domain/resolve"
	"github.com/okian/fulfillment/pkg/logger"
)

// matchTournamentField links a match to its tournament.
const matchTournamentField = "tournament_id"

// TournamentDate answers "when is <tournament>".
func (h *Handlers) TournamentDate() Handler {
	r := resolve.New(model.ParamTournament, model.TournamentVenueContext, model.TournamentWinnerContext)
	return h.tournament(r, func(ctx context.Context, log logger.Logger, t model.Tournament) Reply {
		upcoming := facts.Upcoming(t.Date, h.now())
		c := model.TournamentContext(model.TournamentDateContext, h.lifespan, t.Name)
		return h.answer(msgDate(t.Name, facts.FormatDate(t.Date.In(h.loc)), upcoming), &c)
	})
}

// TournamentVenue answers "where is <tournament>".
func (h *Handlers) TournamentVenue() Handler {
	r := resolve.New(model.ParamTournament, model.TournamentDateContext, model.TournamentWinnerContext)
	return h.tournament(r, func(ctx context.Context, log logger.Logger, t model.Tournament) Reply {
		upcoming := facts.Upcoming(t.Date, h.now())
		c := model.TournamentContext(model.TournamentVenueContext, h.lifespan, t.Name)
		return h.answer(msgVenue(t.Name, t.Venue, upcoming), &c)
	})
}

// TournamentWinner answers "who won <tournament>".
func (h *Handlers) TournamentWinner() Handler {
	r := resolve.New(model.ParamTournament, model.TournamentDateContext, model.TournamentVenueContext)
	return h.finals(r, func(t model.Tournament, finals []model.Match, players map[string]model.Player) (string, bool) {
		m := finals[0]
		p1, ok1 := players[m.Player1ID]
		p2, ok2 := players[m.Player2ID]
		if !ok1 || !ok2 {
			return "", false
		}
		switch facts.Winner(m.Score1, m.Score2) {
		case facts.Player1Wins:
			return msgWinner(p1.Name, t.Name, m.Score1, m.Score2), true
		case facts.Player2Wins:
			return msgWinner(p2.Name, t.Name, m.Score2, m.Score1), true
		default:
			return msgUndecided(t.Name, p1.Name, p2.Name, m.Score1), true
		}
	})
}

// FinalsPlayers answers "who played the <tournament> finals".
func (h *Handlers) FinalsPlayers() Handler {
	r := resolve.New(model.ParamTournament, model.TournamentWinnerContext, model.TournamentDateContext)
	return h.finals(r, func(t model.Tournament, finals []model.Match, players map[string]model.Player) (string, bool) {
		names := facts.Roster(participants(finals, players))
		if len(names) < facts.MinHeadToHead {
			return "", false
		}
		return msgRoster(t.Name, names), true
	})
}

// FinalsScore answers "what was the score of the <tournament> finals". The
// verdict follows the first finals match.
func (h *Handlers) FinalsScore() Handler {
	r := resolve.New(model.ParamTournament, model.TournamentWinnerContext, model.TournamentDateContext)
	return h.finals(r, func(t model.Tournament, finals []model.Match, players map[string]model.Player) (string, bool) {
		if len(facts.Roster(participants(finals, players))) < facts.MinHeadToHead {
			return "", false
		}
		lines := make([]string, 0, len(finals))
		for _, m := range finals {
			ps := participants([]model.Match{m}, players)
			if len(ps) == 0 {
				continue
			}
			lines = append(lines, facts.ScoreLine(ps))
		}
		return msgScore(t.Name, strings.Join(lines, "; "), finalsVerdict(finals[0], players)), true
	})
}

// finalsVerdict names the winner of m, or says there was none on equal scores. It
// is empty when a seat of m did not resolve.
func finalsVerdict(m model.Match, players map[string]model.Player) string {
	p1, ok1 := players[m.Player1ID]
	p2, ok2 := players[m.Player2ID]
	if !ok1 || !ok2 {
		return ""
	}
	switch facts.Winner(m.Score1, m.Score2) {
	case facts.Player1Wins:
		return msgVerdict(p1.Name)
	case facts.Player2Wins:
		return msgVerdict(p2.Name)
	default:
		return msgNoWinner
	}
}

type tournamentFact func(ctx context.Context, log logger.Logger, t model.Tournament) Reply

func (h *Handlers) tournament(r resolve.Resolver, fact tournamentFact) Handler {
	return HandlerFunc(func(ctx context.Context, turn Turn) Reply {
		log := h.turnLogger(turn)

		subject, err := h.resolve(ctx, log, r, turn)
		if err != nil {
			return Reply{Text: MsgNeedTournament, Outcome: OutcomeClarify}
		}
		t, err := h.tournaments.Find(ctx, subject)
		if err != nil {
			return h.failure(ctx, log, err, msgNoTournament(subject))
		}
		return fact(ctx, log, t)
	})
}

// finalsFact phrases a fact about the finals from the resolved players. It
// reports false when too few participants resolved.
type finalsFact func(t model.Tournament, finals []model.Match, players map[string]model.Player) (string, bool)

// finals walks tournament -> finals matches -> participants and establishes
// the winner context on success.
func (h *Handlers) finals(r resolve.Resolver, fact finalsFact) Handler {
	return h.tournament(r, func(ctx context.Context, log logger.Logger, t model.Tournament) Reply {
		matches, err := h.matches.Where(ctx, matchTournamentField, t.ID)
		if err != nil {
			return h.failure(ctx, log, err, msgNoFinals(t.Name))
		}
		finals := make([]model.Match, 0, 1)
		for _, m := range matches {
			if m.IsFinal() {
				finals = append(finals, m)
			}
		}
		if len(finals) == 0 {
			log.Info(ctx, "no finals match", logger.String("tournament", t.ID))
			return Reply{Text: msgNoFinals(t.Name), Outcome: OutcomeNotFound}
		}

		ids := make([]string, 0, 2*len(finals))
		for _, m := range finals {
			pair := m.ParticipantIDs()
			ids = append(ids, pair[0], pair[1])
		}
		players, err := h.gatherPlayers(ctx, ids)
		if err != nil {
			log.Error(ctx, "participant lookup failed", logger.Error(err))
			return Reply{Text: MsgFailure, Outcome: OutcomeFailed}
		}
		if len(players) == 0 {
			log.Info(ctx, "no finals participants resolved", logger.String("tournament", t.ID))
			return Reply{Text: msgNoFinalists(t.Name), Outcome: OutcomeNotFound}
		}

		text, ok := fact(t, finals, players)
		if !ok {
			log.Info(ctx, "finals participants partially resolved",
				logger.String("tournament", t.ID),
				logger.Int("resolved", len(players)),
				logger.Int("wanted", len(distinct(ids))))
			return Reply{Text: msgInsufficient(t.Name), Outcome: OutcomePartial}
		}
		c := model.TournamentContext(model.TournamentWinnerContext, h.lifespan, t.Name)
		return h.answer(text, &c)
	})
}

// participants lists the resolved players of the matches in seat order with
// their scores. Unresolved seats are dropped.
func participants(matches []model.Match, players map[string]model.Player) []facts.Participant {
	out := make([]facts.Participant, 0, 2*len(matches))
	for _, m := range matches {
		if p, ok := players[m.Player1ID]; ok {
			out = append(out, facts.Participant{Name: p.Name, Score: m.Score1})
		}
		if p, ok := players[m.Player2ID]; ok {
			out = append(out, facts.Participant{Name: p.Name, Score: m.Score2})
		}
	}
	return out
}

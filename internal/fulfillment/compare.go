package fulfillment

import (
	"context"
	"errors"
	"strings"

	"github.com/okian/fulfillment/internal/domain/facts"
	"github.com/okian/fulfillment/internal/domain/model"
	"github.com/okian/fulfillment/internal/domain/resolve"
	"github.com/okian/fulfillment/pkg/logger"
)

// ComparePlayers answers "who is ranked higher, <a> or <b>". The second
// player may come from the freshest player context and must differ from
// the first.
func (h *Handlers) ComparePlayers() Handler {
	first := resolve.New(model.ParamPlayer)
	second := resolve.New(model.ParamOtherPlayer)
	previous := resolve.New(model.ParamPlayer, model.AgeContext, model.EloContext, model.RankContext)

	return HandlerFunc(func(ctx context.Context, turn Turn) Reply {
		log := h.turnLogger(turn)

		a, err := h.resolve(ctx, log, first, Turn{Params: turn.Params})
		if err != nil {
			return Reply{Text: MsgNeedTwoPlayers, Outcome: OutcomeClarify}
		}
		b, err := h.resolve(ctx, log, second, Turn{Params: turn.Params})
		if err != nil {
			b, err = h.resolve(ctx, log, previous, Turn{Contexts: turn.Contexts})
		}
		if err != nil || strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b)) {
			return Reply{Text: MsgNeedTwoPlayers, Outcome: OutcomeClarify}
		}

		players, err := h.findPlayers(ctx, a, b)
		if err != nil {
			var mp *missingPlayer
			if errors.As(err, &mp) {
				return h.failure(ctx, log, err, msgNoPlayer(mp.name))
			}
			return h.failure(ctx, log, err, "")
		}
		pa, pb := players[0], players[1]

		switch facts.Compare(pa, pb) {
		case facts.FirstAhead:
			return h.answer(compareText(pa, pb), nil)
		case facts.SecondAhead:
			return h.answer(compareText(pb, pa), nil)
		default:
			log.Debug(ctx, "players level", logger.Int("rank", pa.Rank))
			return h.answer(msgLevel(pa.Name, pb.Name), nil)
		}
	})
}

func compareText(ahead, behind model.Player) string {
	if ahead.Rank == behind.Rank {
		return msgHigherElo(ahead.Name, behind.Name, ahead.Elo, behind.Elo)
	}
	return msgHigher(ahead.Name, behind.Name, ahead.Rank, behind.Rank)
}

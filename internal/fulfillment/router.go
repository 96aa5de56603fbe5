package fulfillment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/fulfillment/pkg/logger"
	"github.com/okian/fulfillment/pkg/metrics"
)

// Intent ids understood by the default catalogue, as the agent names them.
const (
	IntentPlayerAge        = "PlayerAge"
	IntentPlayerElo        = "PlayerElo"
	IntentPlayerRank       = "PlayerRank"
	IntentTournamentDate   = "TournamentDate"
	IntentTournamentVenue  = "TournamentVenue"
	IntentTournamentWinner = "TournamentWinner"
	IntentFinalsPlayers    = "MatchFinalsPlayers"
	IntentFinalsScore      = "MatchFinalsScore"
	IntentGetEmail         = "GetEmail"
	IntentComparePlayers   = "ComparePlayers"

	// ContextSuffix marks the follow-up variant of an intent that relies on contexts.
	ContextSuffix = "_Context"
)

// Catalogue returns the routing table for every supported intent. A follow-up
// variant shares its handler with the base intent; the resolver already
// prefers an explicit subject and falls back to contexts.
func Catalogue(h *Handlers) map[string]Handler {
	routes := map[string]Handler{
		IntentFinalsPlayers:  h.FinalsPlayers(),
		IntentGetEmail:       h.PlayerEmail(),
		IntentComparePlayers: h.ComparePlayers(),
	}
	for id, handler := range map[string]Handler{
		IntentPlayerAge:        h.PlayerAge(),
		IntentPlayerElo:        h.PlayerElo(),
		IntentPlayerRank:       h.PlayerRank(),
		IntentTournamentDate:   h.TournamentDate(),
		IntentTournamentVenue:  h.TournamentVenue(),
		IntentTournamentWinner: h.TournamentWinner(),
		IntentFinalsScore:      h.FinalsScore(),
	} {
		routes[id] = handler
		routes[id+ContextSuffix] = handler
	}
	return routes
}

// Router dispatches turns by intent id. The table is fixed at construction.
type Router struct {
	routes map[string]Handler
	log    logger.Logger
}

// NewRouter copies routes into an immutable Router.
func NewRouter(routes map[string]Handler, log logger.Logger) *Router {
	if log == nil {
		log = logger.Nop()
	}
	table := make(map[string]Handler, len(routes))
	for id, h := range routes {
		if h != nil {
			table[id] = h
		}
	}
	return &Router{routes: table, log: log}
}

// Route answers turn with its intent's handler. Unknown intents return
// ErrUnknownIntent alongside a fallback reply.
func (r *Router) Route(ctx context.Context, turn Turn) (Reply, error) {
	start := time.Now()
	h, ok := r.routes[turn.Intent]
	if !ok {
		r.log.Warn(ctx, "no handler for intent",
			logger.String("intent", turn.Intent),
			logger.String("session", turn.Session))
		metrics.RecordTurn("unknown", string(OutcomeUnknown))
		return Reply{Text: MsgFallback, Outcome: OutcomeUnknown}, fmt.Errorf("%w: %q", ErrUnknownIntent, turn.Intent)
	}

	reply := h.Handle(ctx, turn)
	metrics.RecordTurn(turn.Intent, string(reply.Outcome))
	metrics.RecordTurnDuration(turn.Intent, float64(time.Since(start).Microseconds())/1000)
	return reply, nil
}

// Intents lists the routed intent ids in sorted order.
func (r *Router) Intents() []string {
	out := make([]string, 0, len(r.routes))
	for id := range r.routes {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

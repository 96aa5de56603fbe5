// Package fulfillment answers one conversational turn: it resolves the
// subject of an intent, looks the records up, derives the requested fact and
// phrases exactly one reply, optionally establishing a new context.
package fulfillment

import (
	"context"

	"github.com/okian/fulfillment/internal/domain/model"
)

// Turn is one inbound request from the conversational platform.
type Turn struct {
	// ID identifies the delivery; redeliveries reuse it.
	ID string
	// Session scopes contexts on the platform side.
	Session string
	// Intent is the intent id matched by the platform.
	Intent string
	// Params are the parameters extracted from the utterance.
	Params map[string]any
	// Contexts are the contexts the platform replays for this turn.
	Contexts []model.Context
}

// Outcome classifies how a turn was answered.
type Outcome string

// Outcomes.
const (
	OutcomeAnswered Outcome = "answered"
	OutcomeClarify  Outcome = "clarify"
	OutcomeNotFound Outcome = "not_found"
	OutcomePartial  Outcome = "partial"
	OutcomeFailed   Outcome = "failed"
	OutcomeUnknown  Outcome = "unknown_intent"
)

// Reply is the single answer produced for a turn.
type Reply struct {
	Text    string
	Context *model.Context // nil when no context is established
	Outcome Outcome
}

// Handler answers one intent.
type Handler interface {
	Handle(ctx context.Context, turn Turn) Reply
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, turn Turn) Reply

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, turn Turn) Reply { return f(ctx, turn) }

// PlayerFinder looks players up.
type PlayerFinder interface {
	Find(ctx context.Context, name string) (model.Player, error)
	Get(ctx context.Context, id string) (model.Player, error)
}

// TournamentFinder looks tournaments up by name.
type TournamentFinder interface {
	Find(ctx context.Context, name string) (model.Tournament, error)
}

// MatchFinder filters matches by a field.
type MatchFinder interface {
	Where(ctx context.Context, field, value string) ([]model.Match, error)
}

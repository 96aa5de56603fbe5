package model

import (
	"fmt"
	"strings"
)

// ContextName identifies a conversational topic carried between turns.
type ContextName string

// Known context names.
const (
	AgeContext              ContextName = "age-context"
	EloContext              ContextName = "elo-context"
	RankContext             ContextName = "rank-context"
	TournamentDateContext   ContextName = "tournament-date-context"
	TournamentVenueContext  ContextName = "tournament-venue-context"
	TournamentWinnerContext ContextName = "tournament-winner-context"
)

// DefaultContextLifespan is the number of turns a new context lives for.
const DefaultContextLifespan = 5

// Parameter keys used by the platform for subjects. Contexts always carry
// players under ParamPlayer; intents name them under their own key.
const (
	ParamPlayer      = "player_name"
	ParamOtherPlayer = "other_player_name"
	ParamTournament  = "tournament_name"
	ParamAgeName     = "name_age"
	ParamEloName     = "name_elo"
	ParamRankName    = "name_rank"
	ParamName        = "name"
	personNameKey    = "name"
)

var knownContexts = map[ContextName]struct{}{
	AgeContext:              {},
	EloContext:              {},
	RankContext:             {},
	TournamentDateContext:   {},
	TournamentVenueContext:  {},
	TournamentWinnerContext: {},
}

// contextAliases maps the agent's underscore context names onto ours.
var contextAliases = map[ContextName]ContextName{
	"player_age_context":        AgeContext,
	"player_elo_context":        EloContext,
	"player_rank_context":       RankContext,
	"tournament_date_context":   TournamentDateContext,
	"tournament_venue_context":  TournamentVenueContext,
	"tournament_winner_context": TournamentWinnerContext,
}

// ParseContextName returns the short context name from either a bare name or a
// fully qualified ".../contexts/<name>" path.
func ParseContextName(s string) (ContextName, error) {
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}
	name := ContextName(strings.ToLower(strings.TrimSpace(s)))
	if canonical, ok := contextAliases[name]; ok {
		return canonical, nil
	}
	if _, ok := knownContexts[name]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownContext, s)
	}
	return name, nil
}

// Context is short-lived conversational state carried by the platform.
type Context struct {
	Name       ContextName
	Lifespan   int
	Parameters map[string]any
}

// Expired reports whether the platform no longer considers the context live.
func (c *Context) Expired() bool { return c == nil || c.Lifespan <= 0 }

// PlayerContext builds a context carrying a player subject in the platform's
// person-entity shape: {"player_name": {"name": <name>}}.
func PlayerContext(name ContextName, lifespan int, player string) Context {
	return Context{
		Name:     name,
		Lifespan: lifespan,
		Parameters: map[string]any{
			ParamPlayer: map[string]any{personNameKey: player},
		},
	}
}

// TournamentContext builds a context carrying a tournament subject.
func TournamentContext(name ContextName, lifespan int, tournament string) Context {
	return Context{
		Name:       name,
		Lifespan:   lifespan,
		Parameters: map[string]any{ParamTournament: tournament},
	}
}

// Subject extracts a subject name stored under key. Person entities arrive as
// {"name": "..."} objects; plain strings are accepted as well. Blank values
// count as absent.
func Subject(params map[string]any, key string) (string, bool) {
	if params == nil {
		return "", false
	}
	var name string
	switch v := params[key].(type) {
	case string:
		name = v
	case map[string]any:
		name, _ = v[personNameKey].(string)
	case map[string]string:
		name = v[personNameKey]
	}
	name = strings.TrimSpace(name)
	return name, name != ""
}

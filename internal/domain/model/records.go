// Package model contains the records read from the document store and the
// conversational context exchanged with the platform.
package model

import "time"

// Collections holding each record kind.
const (
	CollectionPlayers     = "players"
	CollectionTournaments = "tournaments"
	CollectionMatches     = "matches"
)

// Stage marks the round a match belongs to.
type Stage string

// StageFinals is the deciding match of a tournament.
const StageFinals Stage = "Finals"

// Player is a rated competitor.
type Player struct {
	ID   string  `json:"id,omitempty" yaml:"id"`
	Name string  `json:"name" yaml:"name"`
	DOB  Date    `json:"dob" yaml:"dob"`
	Elo  float64 `json:"elo" yaml:"elo"`
	Rank int     `json:"rank" yaml:"rank"`

	Email string `json:"email,omitempty" yaml:"email"`
}

// Tournament is a scheduled event held at a venue.
type Tournament struct {
	ID    string    `json:"id,omitempty" yaml:"id"`
	Name  string    `json:"name" yaml:"name"`
	Date  time.Time `json:"date" yaml:"date"`
	Venue string    `json:"venue" yaml:"venue"`
}

// Match is one game between two players within a tournament.
type Match struct {
	ID           string `json:"id,omitempty" yaml:"id"`
	TournamentID string `json:"tournament_id" yaml:"tournament_id"`
	Stage        Stage  `json:"stage" yaml:"stage"`
	Player1ID    string `json:"player1_id" yaml:"player1_id"`
	Player2ID    string `json:"player2_id" yaml:"player2_id"`
	Score1       int    `json:"score1" yaml:"score1"`
	Score2       int    `json:"score2" yaml:"score2"`
}

// IsFinal reports whether the match decides its tournament.
func (m Match) IsFinal() bool { return m.Stage == StageFinals }

// ParticipantIDs returns both participant identifiers in seat order.
func (m Match) ParticipantIDs() [2]string { return [2]string{m.Player1ID, m.Player2ID} }

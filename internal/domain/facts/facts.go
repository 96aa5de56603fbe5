// Package facts derives spoken facts from records that have already been
// resolved. Every function is pure; callers inject "now".
package facts

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/fulfillment/internal/domain/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// MinHeadToHead is the number of resolved participants a head-to-head fact needs.
const MinHeadToHead = 2

var printer = message.NewPrinter(language.English)

// Age returns completed years between dob and today.
func Age(dob, today model.Date) int {
	age := today.Year - dob.Year
	if today.Month < dob.Month || (today.Month == dob.Month && today.Day < dob.Day) {
		age--
	}
	return age
}

// FormatDate renders t as "<day> <Month> <year>", e.g. "5 May 2027".
func FormatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

// Upcoming reports whether at is strictly after now.
func Upcoming(at, now time.Time) bool {
	return at.After(now)
}

// FormatElo renders a rating in its shortest exact form with thousands
// separators, e.g. 2850 as "2,850" and 1500.25 as "1,500.25".
func FormatElo(elo float64) string {
	whole, frac, _ := strings.Cut(strconv.FormatFloat(elo, 'f', -1, 64), ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return strconv.FormatFloat(elo, 'f', -1, 64)
	}
	out := printer.Sprintf("%d", n)
	if n == 0 && strings.HasPrefix(whole, "-") {
		out = "-" + out
	}
	if frac != "" {
		out += "." + frac
	}
	return out
}

// Outcome is the result of a two-player match.
type Outcome int

// Outcomes.
const (
	Undecided Outcome = iota
	Player1Wins
	Player2Wins
)

func (o Outcome) String() string {
	switch o {
	case Player1Wins:
		return "player1"
	case Player2Wins:
		return "player2"
	default:
		return "undecided"
	}
}

// Winner compares two scores. Equal scores are Undecided.
func Winner(score1, score2 int) Outcome {
	switch {
	case score1 > score2:
		return Player1Wins
	case score2 > score1:
		return Player2Wins
	default:
		return Undecided
	}
}

// Standing is the result of comparing two players.
type Standing int

// Standings.
const (
	Level Standing = iota
	FirstAhead
	SecondAhead
)

// Compare orders two players: a lower rank number is ahead; equal ranks fall
// back to the higher Elo; equal both are Level. A rank of zero means unranked
// and sorts behind any ranked player.
func Compare(a, b model.Player) Standing {
	if a.Rank != b.Rank {
		switch {
		case a.Rank == 0:
			return SecondAhead
		case b.Rank == 0:
			return FirstAhead
		case a.Rank < b.Rank:
			return FirstAhead
		default:
			return SecondAhead
		}
	}
	switch {
	case a.Elo > b.Elo:
		return FirstAhead
	case b.Elo > a.Elo:
		return SecondAhead
	default:
		return Level
	}
}

// Participant is a resolved finals participant with the score from their match.
type Participant struct {
	Name  string
	Score int
}

// JoinNames renders a list as "A", "A and B" or "A, B and C".
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	default:
		return strings.Join(names[:len(names)-1], ", ") + " and " + names[len(names)-1]
	}
}

// Roster returns the distinct participant names in order of appearance.
func Roster(ps []Participant) []string {
	seen := make(map[string]struct{}, len(ps))
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		if _, ok := seen[p.Name]; ok {
			continue
		}
		seen[p.Name] = struct{}{}
		names = append(names, p.Name)
	}
	return names
}

// ScoreLine renders "A scored 3 and B scored 1" for the given participants.
func ScoreLine(ps []Participant) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = printer.Sprintf("%s scored %d", p.Name, p.Score)
	}
	return JoinNames(parts)
}

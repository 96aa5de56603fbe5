package fulfillment

import (
	"fmt"

	"github.com/okian/fulfillment/internal/domain/facts"
)

// Fixed replies.
const (
	MsgNeedPlayer     = "Please provide a name."
	MsgNeedTournament = "Please provide a tournament name."
	MsgNeedTwoPlayers = "Please provide two names."
	MsgFailure        = "Something went wrong. Please try again later."
	MsgFallback       = "Sorry, I can't help with that yet."
)

func msgAge(name string, age int) string {
	return fmt.Sprintf("%s is %d years old.", name, age)
}

func msgElo(name string, elo float64) string {
	return fmt.Sprintf("%s has an Elo rating of %s.", name, facts.FormatElo(elo))
}

func msgNoDOB(name string) string {
	return fmt.Sprintf("I don't have a date of birth for %s.", name)
}

func msgEmail(name, email string) string {
	return fmt.Sprintf("The email for %s is %s.", name, email)
}

func msgNoEmail(name string) string {
	return fmt.Sprintf("I don't have an email address for %s.", name)
}

func msgRank(name string, rank int) string {
	if rank <= 0 {
		return fmt.Sprintf("%s is unranked.", name)
	}
	return fmt.Sprintf("%s is ranked number %d.", name, rank)
}

func msgDate(name, date string, upcoming bool) string {
	if upcoming {
		return fmt.Sprintf("%s will be held on %s.", name, date)
	}
	return fmt.Sprintf("%s was held on %s.", name, date)
}

func msgVenue(name, venue string, upcoming bool) string {
	if upcoming {
		return fmt.Sprintf("%s will be held at %s.", name, venue)
	}
	return fmt.Sprintf("%s was held at %s.", name, venue)
}

func msgWinner(winner, tournament string, won, lost int) string {
	return fmt.Sprintf("%s won the %s finals %d-%d.", winner, tournament, won, lost)
}

func msgUndecided(tournament, a, b string, score int) string {
	return fmt.Sprintf("The %s finals between %s and %s is undecided at %d-%d.", tournament, a, b, score, score)
}

func msgRoster(tournament string, names []string) string {
	return fmt.Sprintf("The %s finals were played by %s.", tournament, facts.JoinNames(names))
}

func msgScore(tournament, lines, verdict string) string {
	if verdict == "" {
		return fmt.Sprintf("In the %s finals, %s.", tournament, lines)
	}
	return fmt.Sprintf("In the %s finals, %s. %s", tournament, lines, verdict)
}

func msgVerdict(winner string) string {
	return fmt.Sprintf("The winner was %s!", winner)
}

const msgNoWinner = "There was no winner."

func msgHigher(ahead, behind string, aheadRank, behindRank int) string {
	return fmt.Sprintf("%s is ranked higher than %s (%s against %s).", ahead, behind, rankLabel(aheadRank), rankLabel(behindRank))
}

func msgHigherElo(ahead, behind string, aheadElo, behindElo float64) string {
	return fmt.Sprintf("%s is ranked higher than %s on Elo rating (%s against %s).",
		ahead, behind, facts.FormatElo(aheadElo), facts.FormatElo(behindElo))
}

func msgLevel(a, b string) string {
	return fmt.Sprintf("%s and %s are level.", a, b)
}

func msgNoPlayer(name string) string {
	return fmt.Sprintf("I couldn't find a player named %s.", name)
}

func msgNoTournament(name string) string {
	return fmt.Sprintf("I couldn't find a tournament named %s.", name)
}

func msgNoFinals(tournament string) string {
	return fmt.Sprintf("I couldn't find a finals match for %s.", tournament)
}

func msgNoFinalists(tournament string) string {
	return fmt.Sprintf("I couldn't find the player records for the %s finals.", tournament)
}

func msgInsufficient(tournament string) string {
	return fmt.Sprintf("There is insufficient data about the %s finals.", tournament)
}

func rankLabel(rank int) string {
	if rank <= 0 {
		return "unranked"
	}
	return fmt.Sprintf("number %d", rank)
}

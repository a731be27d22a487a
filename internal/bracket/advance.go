package bracket

import (
	"fmt"

	"github.com/AdamBeresnev/club-bracket/internal/utils"
)

type Advancement struct {
	Matches []Match
	// Set only when the decided match was the final
	Champion *string
}

// AdvanceWinner records winner on the match and moves them into the next round.
// The input slice is left untouched. Re-deciding a match overwrites the previous
// result as long as the next-round match it feeds has not been decided yet.
// A slot still waiting on its feeder match blocks the decision; only a slot
// with no feeder at all is a bye.
func AdvanceWinner(matches []Match, matchID string, winner string) (*Advancement, error) {
	idx := findMatchByID(matches, matchID)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
	}
	source := matches[idx]

	if !source.HasPlayer(winner) {
		return nil, fmt.Errorf("%w: %q in round %d match %d", ErrInvalidWinner, winner, source.Round, source.MatchNumber)
	}
	for _, slot := range []Slot{SlotPlayer1, SlotPlayer2} {
		if source.slot(slot) != nil {
			continue
		}
		if feeder := feederFor(matches, source, slot); feeder >= 0 {
			return nil, fmt.Errorf("%w: round %d match %d is waiting on round %d match %d",
				ErrIllegalStateTransition, source.Round, source.MatchNumber, matches[feeder].Round, matches[feeder].MatchNumber)
		}
	}

	target := -1
	if source.Round < TotalRounds(matches) {
		target = findMatch(matches, source.Round+1, source.NextMatchNumber())
		if target < 0 {
			return nil, fmt.Errorf("%w: round %d match %d", ErrMatchNotFound, source.Round+1, source.NextMatchNumber())
		}
		if matches[target].IsDecided() {
			return nil, fmt.Errorf("%w: round %d match %d is already decided", ErrIllegalStateTransition, source.Round+1, source.NextMatchNumber())
		}
	}

	updated := cloneMatches(matches)
	updated[idx].Winner = utils.Ptr(winner)

	if target >= 0 {
		updated[target].setSlot(source.NextSlot(), winner)
		return &Advancement{Matches: updated}, nil
	}

	return &Advancement{Matches: updated, Champion: utils.Ptr(winner)}, nil
}

// NextPendingMatch is the first match in bracket order that still needs a result.
func NextPendingMatch(matches []Match) *Match {
	for i := range matches {
		if !matches[i].IsDecided() {
			m := matches[i]
			return &m
		}
	}
	return nil
}

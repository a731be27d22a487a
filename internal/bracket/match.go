package bracket

import "github.com/AdamBeresnev/club-bracket/internal/utils"

type Slot int

const (
	SlotPlayer1 Slot = 1
	SlotPlayer2 Slot = 2
)

type Match struct {
	ID string `db:"id" json:"id"`

	// Position in the bracket, (Round, MatchNumber) is the real key
	Round       int `db:"round" json:"round"`
	MatchNumber int `db:"match_number" json:"matchNumber"`

	Player1 *string `db:"player1" json:"player1,omitempty"`
	Player2 *string `db:"player2" json:"player2,omitempty"`
	Winner  *string `db:"winner" json:"winner,omitempty"`
}

func (m *Match) IsDecided() bool {
	return m.Winner != nil
}

// IsBye reports a match that has only one player and no feeder for the other slot.
func (m *Match) IsBye(matches []Match) bool {
	switch {
	case m.Player1 != nil && m.Player2 == nil:
		return feederFor(matches, *m, SlotPlayer2) < 0
	case m.Player1 == nil && m.Player2 != nil:
		return feederFor(matches, *m, SlotPlayer1) < 0
	}
	return false
}

// feederFor is the index of the previous-round match whose winner fills slot, or -1.
func feederFor(matches []Match, m Match, slot Slot) int {
	if m.Round <= 1 {
		return -1
	}
	number := 2*m.MatchNumber - 1
	if slot == SlotPlayer2 {
		number++
	}
	return findMatch(matches, m.Round-1, number)
}

func (m *Match) slot(slot Slot) *string {
	if slot == SlotPlayer1 {
		return m.Player1
	}
	return m.Player2
}

func (m *Match) HasPlayer(name string) bool {
	return utils.Is(m.Player1, name) || utils.Is(m.Player2, name)
}

func (m *Match) IsWinner(slot Slot) bool {
	if m.Winner == nil {
		return false
	}
	switch slot {
	case SlotPlayer1:
		return utils.Is(m.Player1, *m.Winner)
	case SlotPlayer2:
		return utils.Is(m.Player2, *m.Winner)
	}
	return false
}

// NextSlot is the slot in the following round that this match's winner fills.
func (m *Match) NextSlot() Slot {
	if m.MatchNumber%2 != 0 {
		return SlotPlayer1
	}
	return SlotPlayer2
}

// NextMatchNumber is the following round's match that consumes this match's winner.
func (m *Match) NextMatchNumber() int {
	return (m.MatchNumber-1)/2 + 1
}

func (m *Match) setSlot(slot Slot, name string) {
	if slot == SlotPlayer1 {
		m.Player1 = utils.Ptr(name)
	} else {
		m.Player2 = utils.Ptr(name)
	}
}

func cloneMatches(matches []Match) []Match {
	if matches == nil {
		return nil
	}
	out := make([]Match, len(matches))
	for i, m := range matches {
		out[i] = m
		out[i].Player1 = utils.Clone(m.Player1)
		out[i].Player2 = utils.Clone(m.Player2)
		out[i].Winner = utils.Clone(m.Winner)
	}
	return out
}

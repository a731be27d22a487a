package bracket

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// IDFunc produces opaque match identifiers.
type IDFunc func() string

// DefaultIDFunc hands out random UUIDs.
func DefaultIDFunc() string {
	return uuid.NewString()
}

// CalcTotalRounds gets the number of rounds needed for count participants, so with
// input 5 it returns 3 and so on
func CalcTotalRounds(count int) int {
	if count <= 1 {
		return 0
	}

	return int(math.Ceil(math.Log2(float64(count))))
}

// MatchesPerRound lists the match count of every round, round 1 first.
func MatchesPerRound(count int) []int {
	totalRounds := CalcTotalRounds(count)
	counts := make([]int, 0, totalRounds)

	inRound := (count + 1) / 2
	for r := 1; r <= totalRounds; r++ {
		counts = append(counts, inRound)
		inRound = (inRound + 1) / 2
	}
	return counts
}

// GenerateSingleElimBracket lays out every round up front. Round 1 pairs
// participants in join order, later rounds are empty placeholders filled in as
// winners are recorded.
func GenerateSingleElimBracket(participants []string, newID IDFunc) ([]Match, error) {
	if len(participants) < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInsufficientParticipants, len(participants))
	}
	if newID == nil {
		newID = DefaultIDFunc
	}

	counts := MatchesPerRound(len(participants))

	total := 0
	for _, c := range counts {
		total += c
	}
	matches := make([]Match, 0, total)

	for i := 0; i < counts[0]; i++ {
		m := Match{
			ID:          newID(),
			Round:       1,
			MatchNumber: i + 1,
		}
		m.setSlot(SlotPlayer1, participants[2*i])
		// Odd count leaves the last player2 empty as a bye
		if 2*i+1 < len(participants) {
			m.setSlot(SlotPlayer2, participants[2*i+1])
		}
		matches = append(matches, m)
	}

	for r := 2; r <= len(counts); r++ {
		for i := 0; i < counts[r-1]; i++ {
			matches = append(matches, Match{
				ID:          newID(),
				Round:       r,
				MatchNumber: i + 1,
			})
		}
	}

	return matches, nil
}

// TotalRounds is the final round present in a generated bracket.
func TotalRounds(matches []Match) int {
	rounds := 0
	for _, m := range matches {
		if m.Round > rounds {
			rounds = m.Round
		}
	}
	return rounds
}

func findMatch(matches []Match, round, matchNumber int) int {
	for i := range matches {
		if matches[i].Round == round && matches[i].MatchNumber == matchNumber {
			return i
		}
	}
	return -1
}

func findMatchByID(matches []Match, id string) int {
	for i := range matches {
		if matches[i].ID == id {
			return i
		}
	}
	return -1
}

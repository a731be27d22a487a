// Package views shapes tournament snapshots for clients.
package views

import (
	"sort"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/utils"
)

type RoundView struct {
	Number  int             `json:"number"`
	Label   string          `json:"label"`
	Matches []bracket.Match `json:"matches"`
}

type BracketData struct {
	TournamentID string         `json:"tournamentId"`
	Status       bracket.Status `json:"status"`
	Champion     string         `json:"champion,omitempty"`
	Rounds       []RoundView    `json:"rounds"`
	NextMatchID  string         `json:"nextMatchId,omitempty"`
}

// PrepareBracketData groups matches by round, sorts each round by match number
// and names the rounds counting back from the final.
func PrepareBracketData(t *bracket.Tournament) BracketData {
	rounds := make(map[int][]bracket.Match)
	var roundNums []int

	for _, m := range t.Matches {
		if _, exists := rounds[m.Round]; !exists {
			roundNums = append(roundNums, m.Round)
		}
		rounds[m.Round] = append(rounds[m.Round], m)
	}

	sort.Ints(roundNums)
	totalRounds := bracket.TotalRounds(t.Matches)

	data := BracketData{
		TournamentID: t.ID,
		Status:       t.Status,
		Champion:     utils.OrZero(t.Winner),
		Rounds:       make([]RoundView, 0, len(roundNums)),
	}
	for _, r := range roundNums {
		matches := rounds[r]
		sort.Slice(matches, func(i, j int) bool {
			return matches[i].MatchNumber < matches[j].MatchNumber
		})
		data.Rounds = append(data.Rounds, RoundView{
			Number:  r,
			Label:   bracket.RoundLabel(r, totalRounds),
			Matches: matches,
		})
	}

	for _, r := range data.Rounds {
		if next := bracket.NextPendingMatch(r.Matches); next != nil {
			data.NextMatchID = next.ID
			break
		}
	}
	return data
}

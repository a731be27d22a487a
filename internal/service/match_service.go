package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/events"
)

type MatchService struct {
	*core
}

type MatchData struct {
	Match      *bracket.Match `json:"match"`
	RoundLabel string         `json:"roundLabel"`
	// First undecided match in bracket order, nil once the final is decided
	NextMatch *bracket.Match `json:"nextMatch,omitempty"`
}

func (s *MatchService) GetMatchViewData(ctx context.Context, tournamentID, matchID string) (*MatchData, error) {
	t, err := s.store.GetTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	var match *bracket.Match
	for i := range t.Matches {
		if t.Matches[i].ID == matchID {
			match = &t.Matches[i]
			break
		}
	}
	if match == nil {
		return nil, fmt.Errorf("%w: %s", bracket.ErrMatchNotFound, matchID)
	}

	return &MatchData{
		Match:      match,
		RoundLabel: bracket.RoundLabel(match.Round, bracket.TotalRounds(t.Matches)),
		NextMatch:  bracket.NextPendingMatch(t.Matches),
	}, nil
}

// RecordWinner decides a match and returns the updated snapshot. Recording the
// same winner again is a no-op apart from the timestamp.
func (s *MatchService) RecordWinner(ctx context.Context, tournamentID, matchID, winner string) (*bracket.Tournament, error) {
	eventType := func(next *bracket.Tournament) events.Type {
		if next.Status == bracket.StatusCompleted {
			return events.TypeCompleted
		}
		return events.TypeMatchDecided
	}

	return s.update(ctx, tournamentID, eventType, func(t *bracket.Tournament) (*bracket.Tournament, error) {
		return bracket.RecordWinner(t, matchID, winner)
	})
}

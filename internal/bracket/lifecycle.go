package bracket

import (
	"fmt"
	"strings"
	"time"
)

type NewTournamentParams struct {
	ID              string
	Name            string
	Description     string
	Date            time.Time
	MaxParticipants int
	ClubID          string
}

// NewTournament creates an empty upcoming tournament.
func NewTournament(p NewTournamentParams) (*Tournament, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidTournament)
	}
	if p.MaxParticipants < 2 {
		return nil, fmt.Errorf("%w: max participants must be at least 2, got %d", ErrInvalidTournament, p.MaxParticipants)
	}

	return &Tournament{
		ID:              p.ID,
		Name:            name,
		Description:     strings.TrimSpace(p.Description),
		Date:            p.Date.UTC(),
		MaxParticipants: p.MaxParticipants,
		Status:          StatusUpcoming,
		ClubID:          p.ClubID,
		Participants:    []string{},
		Matches:         []Match{},
	}, nil
}

func requireStatus(t *Tournament, op string, want Status) error {
	if t.Status != want {
		return fmt.Errorf("%w: cannot %s a tournament that is %s", ErrIllegalStateTransition, op, t.Status)
	}
	return nil
}

// Join appends a participant, so join order becomes seeding order.
func Join(t *Tournament, name string) (*Tournament, error) {
	if err := requireStatus(t, "join", StatusUpcoming); err != nil {
		return nil, err
	}

	name, err := NormalizeParticipantName(name)
	if err != nil {
		return nil, err
	}
	if t.IsFull() {
		return nil, fmt.Errorf("%w: %d of %d places taken", ErrTournamentFull, len(t.Participants), t.MaxParticipants)
	}
	if t.HasParticipant(name) {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, name)
	}

	next := t.Clone()
	next.Participants = append(next.Participants, name)
	return next, nil
}

// Start freezes the participant list and materializes the whole bracket.
func Start(t *Tournament, newID IDFunc) (*Tournament, error) {
	if err := requireStatus(t, "start", StatusUpcoming); err != nil {
		return nil, err
	}

	matches, err := GenerateSingleElimBracket(t.Participants, newID)
	if err != nil {
		return nil, err
	}

	next := t.Clone()
	next.Matches = matches
	next.Status = StatusOngoing
	return next, nil
}

// RecordWinner decides a match. Deciding the final completes the tournament.
func RecordWinner(t *Tournament, matchID string, winner string) (*Tournament, error) {
	if err := requireStatus(t, "record a winner for", StatusOngoing); err != nil {
		return nil, err
	}

	adv, err := AdvanceWinner(t.Matches, matchID, winner)
	if err != nil {
		return nil, err
	}

	next := t.Clone()
	next.Matches = adv.Matches
	if adv.Champion != nil {
		next.Winner = adv.Champion
		next.Status = StatusCompleted
	}
	return next, nil
}

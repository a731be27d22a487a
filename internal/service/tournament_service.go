package service

import (
	"context"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/events"
)

type TournamentService struct {
	*core
}

type CreateTournamentInput struct {
	Name            string
	Description     string
	Date            time.Time
	MaxParticipants int
	ClubID          string
}

func (s *TournamentService) CreateTournament(ctx context.Context, in CreateTournamentInput) (*bracket.Tournament, error) {
	t, err := bracket.NewTournament(bracket.NewTournamentParams{
		ID:              s.newID(),
		Name:            in.Name,
		Description:     in.Description,
		Date:            in.Date,
		MaxParticipants: in.MaxParticipants,
		ClubID:          in.ClubID,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := s.store.CreateTournament(ctx, t); err != nil {
		return nil, err
	}

	s.publish(ctx, events.TypeCreated, t)
	return t, nil
}

func (s *TournamentService) GetTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	return s.store.GetTournament(ctx, id)
}

// ListTournaments returns the club's tournaments newest first. An empty clubID lists all.
func (s *TournamentService) ListTournaments(ctx context.Context, clubID string) ([]bracket.Tournament, error) {
	return s.store.ListTournaments(ctx, clubID)
}

func (s *TournamentService) JoinTournament(ctx context.Context, id, name string) (*bracket.Tournament, error) {
	return s.update(ctx, id, fixedEvent(events.TypeJoined), func(t *bracket.Tournament) (*bracket.Tournament, error) {
		return bracket.Join(t, name)
	})
}

func (s *TournamentService) StartTournament(ctx context.Context, id string) (*bracket.Tournament, error) {
	return s.update(ctx, id, fixedEvent(events.TypeStarted), func(t *bracket.Tournament) (*bracket.Tournament, error) {
		return bracket.Start(t, s.newID)
	})
}

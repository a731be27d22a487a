package store

import (
	"context"
	"errors"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
)

var (
	ErrNotFound      = errors.New("tournament not found")
	ErrAlreadyExists = errors.New("tournament already exists")
)

// Gateway persists whole tournament snapshots. Saves are last-write-wins.
type Gateway interface {
	CreateTournament(ctx context.Context, tournament *bracket.Tournament) error
	GetTournament(ctx context.Context, id string) (*bracket.Tournament, error)
	SaveTournament(ctx context.Context, tournament *bracket.Tournament) error
	// An empty clubID lists every tournament, newest first
	ListTournaments(ctx context.Context, clubID string) ([]bracket.Tournament, error)
}

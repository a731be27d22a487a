// Package events announces committed tournament snapshots to outside listeners.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/rs/zerolog/log"
)

type Type string

const (
	TypeCreated      Type = "created"
	TypeJoined       Type = "joined"
	TypeStarted      Type = "started"
	TypeMatchDecided Type = "match_decided"
	TypeCompleted    Type = "completed"
)

// Event carries the full snapshot as it was persisted.
type Event struct {
	Type         Type                `json:"type"`
	TournamentID string              `json:"tournamentId"`
	Tournament   *bracket.Tournament `json:"tournament"`
	OccurredAt   time.Time           `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout delivers each event to every publisher, even when an earlier one fails.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	log.Info().
		Str("event", string(event.Type)).
		Str("tournament_id", event.TournamentID).
		Time("occurred_at", event.OccurredAt).
		Msg("tournament event")
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, Event) error { return nil }

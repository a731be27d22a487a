package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/events"
	"github.com/AdamBeresnev/club-bracket/internal/store"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Services groups the services that share one gateway and one set of
// per-tournament locks.
type Services struct {
	Tournaments  *TournamentService
	Matches      *MatchService
	Participants *ParticipantService
}

type Option func(*core)

func WithClock(clock clockwork.Clock) Option {
	return func(c *core) { c.clock = clock }
}

func WithIDFunc(newID bracket.IDFunc) Option {
	return func(c *core) { c.newID = newID }
}

func WithPublisher(publisher events.Publisher) Option {
	return func(c *core) { c.publisher = publisher }
}

func New(gw store.Gateway, opts ...Option) *Services {
	c := &core{
		store:     gw,
		publisher: events.Discard{},
		clock:     clockwork.NewRealClock(),
		newID:     bracket.DefaultIDFunc,
		locks:     make(map[string]*lockEntry),
	}
	for _, opt := range opts {
		opt(c)
	}

	return &Services{
		Tournaments:  &TournamentService{core: c},
		Matches:      &MatchService{core: c},
		Participants: &ParticipantService{core: c},
	}
}

type core struct {
	store     store.Gateway
	publisher events.Publisher
	clock     clockwork.Clock
	newID     bracket.IDFunc

	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// lock serializes commands on one tournament inside this process.
func (c *core) lock(id string) func() {
	c.mu.Lock()
	entry, ok := c.locks[id]
	if !ok {
		entry = &lockEntry{}
		c.locks[id] = entry
	}
	entry.refs++
	c.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		c.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(c.locks, id)
		}
		c.mu.Unlock()
	}
}

type eventTypeFunc func(next *bracket.Tournament) events.Type

func fixedEvent(t events.Type) eventTypeFunc {
	return func(*bracket.Tournament) events.Type { return t }
}

// update loads the snapshot, applies cmd and persists the result. Nothing is
// saved or published when cmd fails.
func (c *core) update(ctx context.Context, id string, eventType eventTypeFunc, cmd func(*bracket.Tournament) (*bracket.Tournament, error)) (*bracket.Tournament, error) {
	unlock := c.lock(id)
	defer unlock()

	current, err := c.store.GetTournament(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := cmd(current)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = c.clock.Now().UTC()

	if err := c.store.SaveTournament(ctx, next); err != nil {
		return nil, fmt.Errorf("failed to save tournament %s: %w", id, err)
	}

	c.publish(ctx, eventType(next), next)
	return next, nil
}

// publish never fails the command; the snapshot is already committed.
func (c *core) publish(ctx context.Context, eventType events.Type, t *bracket.Tournament) {
	event := events.Event{
		Type:         eventType,
		TournamentID: t.ID,
		Tournament:   t.Clone(),
		OccurredAt:   c.clock.Now().UTC(),
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).
			Str("tournament_id", t.ID).
			Str("event", string(eventType)).
			Msg("failed to publish tournament event")
	}
}

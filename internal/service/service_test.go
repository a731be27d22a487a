package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/db"
	"github.com/AdamBeresnev/club-bracket/internal/events"
	"github.com/AdamBeresnev/club-bracket/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory SQLite database and applies migrations
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Connect(db.DriverSQLite, dsn)
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })

	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite), "Failed to apply migrations")
	return database
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.Type, len(p.events))
	for i, e := range p.events {
		types[i] = e.Type
	}
	return types
}

func sequentialIDs() bracket.IDFunc {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type testEnv struct {
	svc       *Services
	clock     *clockwork.FakeClock
	publisher *recordingPublisher
	store     store.Gateway
}

func newTestEnv(t *testing.T, gw store.Gateway) *testEnv {
	t.Helper()
	if gw == nil {
		gw = store.NewMemoryStore()
	}
	clock := clockwork.NewFakeClockAt(testStart)
	publisher := &recordingPublisher{}
	return &testEnv{
		svc:       New(gw, WithClock(clock), WithIDFunc(sequentialIDs()), WithPublisher(publisher)),
		clock:     clock,
		publisher: publisher,
		store:     gw,
	}
}

func (e *testEnv) createTournament(t *testing.T, maxParticipants int, players ...string) *bracket.Tournament {
	t.Helper()
	ctx := context.Background()
	tournament, err := e.svc.Tournaments.CreateTournament(ctx, CreateTournamentInput{
		Name:            "Friday Cup",
		Date:            testStart.Add(24 * time.Hour),
		MaxParticipants: maxParticipants,
	})
	require.NoError(t, err)

	for _, p := range players {
		tournament, err = e.svc.Tournaments.JoinTournament(ctx, tournament.ID, p)
		require.NoError(t, err)
	}
	return tournament
}

func matchAt(t *testing.T, tournament *bracket.Tournament, round, number int) bracket.Match {
	t.Helper()
	for _, m := range tournament.Matches {
		if m.Round == round && m.MatchNumber == number {
			return m
		}
	}
	require.FailNow(t, "match not found", "round %d match %d", round, number)
	return bracket.Match{}
}

var errPublish = errors.New("nats: connection closed")

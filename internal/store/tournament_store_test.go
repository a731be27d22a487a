package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/AdamBeresnev/club-bracket/internal/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database and applies migrations.
// Every test gets its own named database shared by all pool connections.
func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	database, err := db.Connect(db.DriverSQLite, dsn)
	require.NoError(t, err, "Failed to connect to in-memory DB")
	t.Cleanup(func() { database.Close() })

	err = db.RunMigrations(database.DB, db.DriverSQLite)
	require.NoError(t, err, "Failed to apply migrations")

	return database
}

func TestTournamentStoreContract(t *testing.T) {
	runGatewayContract(t, func(t *testing.T) Gateway {
		return NewTournamentStore(setupTestDB(t))
	})
}

func TestTournamentStore_CreateDuplicate(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := newSnapshot(t, "club-1", time.Now().UTC())
	require.NoError(t, store.CreateTournament(ctx, tournament))

	err := store.CreateTournament(ctx, tournament)
	assert.Error(t, err)

	var count int
	require.NoError(t, database.Get(&count, "SELECT COUNT(*) FROM tournaments"))
	assert.Equal(t, 1, count)
}

func TestTournamentStore_SaveRewritesChildren(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := newSnapshot(t, "club-1", time.Now().UTC())
	require.NoError(t, store.CreateTournament(ctx, tournament))

	var err error
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		tournament, err = bracket.Join(tournament, name)
		require.NoError(t, err)
	}
	tournament, err = bracket.Start(tournament, nil)
	require.NoError(t, err)

	// Saving twice must not duplicate rows
	require.NoError(t, store.SaveTournament(ctx, tournament))
	require.NoError(t, store.SaveTournament(ctx, tournament))

	var participants []participantRow
	err = database.Select(&participants, "SELECT * FROM participants WHERE tournament_id = ? ORDER BY seed", tournament.ID)
	require.NoError(t, err)
	require.Len(t, participants, 5)
	for i, p := range participants {
		assert.Equal(t, i+1, p.Seed)
		assert.Equal(t, tournament.Participants[i], p.Name)
	}

	var matchCount int
	require.NoError(t, database.Get(&matchCount, "SELECT COUNT(*) FROM matches WHERE tournament_id = ?", tournament.ID))
	// 5 players: 3 + 2 + 1
	assert.Equal(t, 6, matchCount)

	var status string
	require.NoError(t, database.Get(&status, "SELECT status FROM tournaments WHERE id = ?", tournament.ID))
	assert.Equal(t, "ongoing", status)
}

func TestTournamentStore_MatchesComeBackOrdered(t *testing.T) {
	database := setupTestDB(t)
	store := NewTournamentStore(database)
	ctx := context.Background()

	tournament := newSnapshot(t, "", time.Now().UTC())
	require.NoError(t, store.CreateTournament(ctx, tournament))

	var err error
	for i := 1; i <= 8; i++ {
		tournament, err = bracket.Join(tournament, fmt.Sprintf("P%d", i))
		require.NoError(t, err)
	}
	tournament, err = bracket.Start(tournament, nil)
	require.NoError(t, err)

	// Store matches in reverse to check the read path orders them
	reversed := tournament.Clone()
	for i, j := 0, len(reversed.Matches)-1; i < j; i, j = i+1, j-1 {
		reversed.Matches[i], reversed.Matches[j] = reversed.Matches[j], reversed.Matches[i]
	}
	require.NoError(t, store.SaveTournament(ctx, reversed))

	fetched, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.Matches, fetched.Matches)
}

func TestTournamentStore_RejectsInvalidStatus(t *testing.T) {
	store := NewTournamentStore(setupTestDB(t))

	tournament := newSnapshot(t, "", time.Now().UTC())
	tournament.Status = 0

	err := store.CreateTournament(context.Background(), tournament)
	assert.Error(t, err)

	_, err = store.GetTournament(context.Background(), tournament.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

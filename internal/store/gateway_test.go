package store

import (
	"context"
	"testing"
	"time"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSnapshot(t *testing.T, clubID string, createdAt time.Time) *bracket.Tournament {
	t.Helper()
	tournament, err := bracket.NewTournament(bracket.NewTournamentParams{
		ID:              uuid.NewString(),
		Name:            "Test Tournament",
		Description:     "Store test",
		Date:            time.Date(2026, 11, 1, 12, 0, 0, 0, time.UTC),
		MaxParticipants: 8,
		ClubID:          clubID,
	})
	require.NoError(t, err)
	tournament.CreatedAt = createdAt
	tournament.UpdatedAt = createdAt
	return tournament
}

func assertSameSnapshot(t *testing.T, expected, actual *bracket.Tournament) {
	t.Helper()
	assert.Equal(t, expected.ID, actual.ID)
	assert.Equal(t, expected.Name, actual.Name)
	assert.Equal(t, expected.Description, actual.Description)
	assert.True(t, expected.Date.Equal(actual.Date), "date %s != %s", expected.Date, actual.Date)
	assert.Equal(t, expected.MaxParticipants, actual.MaxParticipants)
	assert.Equal(t, expected.Status, actual.Status)
	assert.Equal(t, expected.ClubID, actual.ClubID)
	assert.Equal(t, expected.Winner, actual.Winner)
	assert.WithinDuration(t, expected.CreatedAt, actual.CreatedAt, time.Second)
	assert.WithinDuration(t, expected.UpdatedAt, actual.UpdatedAt, time.Second)
	assert.Equal(t, expected.Participants, actual.Participants)
	assert.Equal(t, expected.Matches, actual.Matches)
}

// runGatewayContract checks the behaviour every Gateway implementation shares.
func runGatewayContract(t *testing.T, newGateway func(t *testing.T) Gateway) {
	ctx := context.Background()
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

	t.Run("create and get", func(t *testing.T) {
		gw := newGateway(t)
		tournament := newSnapshot(t, "club-1", now)

		require.NoError(t, gw.CreateTournament(ctx, tournament))

		fetched, err := gw.GetTournament(ctx, tournament.ID)
		require.NoError(t, err)
		assertSameSnapshot(t, tournament, fetched)
		assert.NotNil(t, fetched.Participants)
		assert.NotNil(t, fetched.Matches)
	})

	t.Run("get missing", func(t *testing.T) {
		gw := newGateway(t)
		_, err := gw.GetTournament(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save replaces whole snapshot", func(t *testing.T) {
		gw := newGateway(t)
		tournament := newSnapshot(t, "club-1", now)
		require.NoError(t, gw.CreateTournament(ctx, tournament))

		var err error
		for _, name := range []string{"Carol", "Alice", "Bob"} {
			tournament, err = bracket.Join(tournament, name)
			require.NoError(t, err)
		}
		require.NoError(t, gw.SaveTournament(ctx, tournament))

		started, err := bracket.Start(tournament, nil)
		require.NoError(t, err)
		started, err = bracket.RecordWinner(started, started.Matches[0].ID, "Alice")
		require.NoError(t, err)
		started.UpdatedAt = now.Add(time.Hour)
		require.NoError(t, gw.SaveTournament(ctx, started))

		fetched, err := gw.GetTournament(ctx, tournament.ID)
		require.NoError(t, err)
		assertSameSnapshot(t, started, fetched)
		assert.Equal(t, []string{"Carol", "Alice", "Bob"}, fetched.Participants)
		assert.Equal(t, bracket.StatusOngoing, fetched.Status)
	})

	t.Run("save completed snapshot keeps winner", func(t *testing.T) {
		gw := newGateway(t)
		tournament := newSnapshot(t, "", now)
		require.NoError(t, gw.CreateTournament(ctx, tournament))

		var err error
		tournament, err = bracket.Join(tournament, "A")
		require.NoError(t, err)
		tournament, err = bracket.Join(tournament, "B")
		require.NoError(t, err)
		tournament, err = bracket.Start(tournament, nil)
		require.NoError(t, err)
		tournament, err = bracket.RecordWinner(tournament, tournament.Matches[0].ID, "B")
		require.NoError(t, err)
		require.NoError(t, gw.SaveTournament(ctx, tournament))

		fetched, err := gw.GetTournament(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Equal(t, bracket.StatusCompleted, fetched.Status)
		require.NotNil(t, fetched.Winner)
		assert.Equal(t, "B", *fetched.Winner)
	})

	t.Run("save missing", func(t *testing.T) {
		gw := newGateway(t)
		err := gw.SaveTournament(ctx, newSnapshot(t, "", now))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list by club newest first", func(t *testing.T) {
		gw := newGateway(t)
		older := newSnapshot(t, "club-1", now)
		newer := newSnapshot(t, "club-1", now.Add(time.Minute))
		other := newSnapshot(t, "club-2", now.Add(2*time.Minute))
		for _, tournament := range []*bracket.Tournament{older, newer, other} {
			require.NoError(t, gw.CreateTournament(ctx, tournament))
		}

		all, err := gw.ListTournaments(ctx, "")
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, other.ID, all[0].ID)
		assert.Equal(t, newer.ID, all[1].ID)
		assert.Equal(t, older.ID, all[2].ID)

		club, err := gw.ListTournaments(ctx, "club-1")
		require.NoError(t, err)
		require.Len(t, club, 2)
		assert.Equal(t, newer.ID, club[0].ID)

		none, err := gw.ListTournaments(ctx, "club-3")
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

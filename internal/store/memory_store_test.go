package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreContract(t *testing.T) {
	runGatewayContract(t, func(t *testing.T) Gateway {
		return NewMemoryStore()
	})
}

func TestMemoryStore_CreateDuplicate(t *testing.T) {
	store := NewMemoryStore()
	tournament := newSnapshot(t, "", time.Now())

	require.NoError(t, store.CreateTournament(context.Background(), tournament))
	err := store.CreateTournament(context.Background(), tournament)
	assert.ErrorIs(t, err, ErrAlreadyExists)
}

func TestMemoryStore_IsolatesSnapshots(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	tournament := newSnapshot(t, "", time.Now())
	tournament.Participants = []string{"A", "B"}
	require.NoError(t, store.CreateTournament(ctx, tournament))

	// Mutating the caller's copy after a write does not leak in
	tournament.Participants[0] = "Z"

	fetched, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, fetched.Participants)

	// Nor does mutating a read result
	fetched.Participants[1] = "Y"
	again, err := store.GetTournament(ctx, tournament.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, again.Participants)
}

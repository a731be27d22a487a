package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/AdamBeresnev/club-bracket/internal/bracket"
)

// MemoryStore keeps snapshots in process. Everything goes in and out as a copy so
// callers can never mutate stored state.
type MemoryStore struct {
	mu          sync.RWMutex
	tournaments map[string]*bracket.Tournament
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tournaments: make(map[string]*bracket.Tournament)}
}

func (s *MemoryStore) CreateTournament(_ context.Context, tournament *bracket.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tournaments[tournament.ID]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, tournament.ID)
	}
	s.tournaments[tournament.ID] = tournament.Clone()
	return nil
}

func (s *MemoryStore) GetTournament(_ context.Context, id string) (*bracket.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tournaments[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return t.Clone(), nil
}

func (s *MemoryStore) SaveTournament(_ context.Context, tournament *bracket.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tournaments[tournament.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, tournament.ID)
	}
	s.tournaments[tournament.ID] = tournament.Clone()
	return nil
}

func (s *MemoryStore) ListTournaments(_ context.Context, clubID string) ([]bracket.Tournament, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]bracket.Tournament, 0, len(s.tournaments))
	for _, t := range s.tournaments {
		if clubID != "" && t.ClubID != clubID {
			continue
		}
		result = append(result, *t.Clone())
	}
	sortNewestFirst(result)
	return result, nil
}

func sortNewestFirst(tournaments []bracket.Tournament) {
	sort.Slice(tournaments, func(i, j int) bool {
		if !tournaments[i].CreatedAt.Equal(tournaments[j].CreatedAt) {
			return tournaments[i].CreatedAt.After(tournaments[j].CreatedAt)
		}
		return tournaments[i].ID < tournaments[j].ID
	})
}

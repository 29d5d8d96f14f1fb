package conversation

import (
	"context"
	"fmt"
	"slices"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/wuwenbin0122/goal-planner/internal/models"
)

// MemoryStore holds conversations in process memory. At most capacity
// sessions are kept; the least recently used one is evicted first.
type MemoryStore struct {
	mu       sync.Mutex
	sessions *lru.Cache[string, []models.Turn]
}

func NewMemoryStore(capacity int) (*MemoryStore, error) {
	cache, err := lru.New[string, []models.Turn](capacity)
	if err != nil {
		return nil, fmt.Errorf("conversation: create memory store: %w", err)
	}
	return &MemoryStore{sessions: cache}, nil
}

func (s *MemoryStore) GetOrCreate(_ context.Context, sessionID string) ([]models.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, ok := s.sessions.Get(sessionID)
	if !ok {
		turns = []models.Turn{}
		s.sessions.Add(sessionID, turns)
	}
	return slices.Clone(turns), nil
}

func (s *MemoryStore) Append(_ context.Context, sessionID string, turn models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	turns, _ := s.sessions.Get(sessionID)
	s.sessions.Add(sessionID, append(slices.Clip(turns), turn))
	return nil
}

// Len reports the number of sessions currently held.
func (s *MemoryStore) Len() int {
	return s.sessions.Len()
}

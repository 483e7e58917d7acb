package state

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps conversations in process memory. Records live until
// explicitly deleted or the process restarts; there is no idle expiry
// beyond the per-record size bounds (the durable stores carry TTLs).
type MemoryStore struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{convs: make(map[string]*Conversation)}
}

// Load returns the live record; the pointer is shared with the store.
// Callers serialize access per session via SessionLocks.
func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Conversation, error) {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return nil, ErrInvalidSession
	}

	s.mu.RLock()
	conv, ok := s.convs[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

func (s *MemoryStore) Save(ctx context.Context, conv *Conversation) error {
	if conv == nil {
		return ErrNilConversation
	}
	id := strings.TrimSpace(conv.SessionID)
	if id == "" {
		return ErrInvalidSession
	}
	if conv.UpdatedAt.IsZero() {
		conv.UpdatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.convs[id] = conv
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return ErrInvalidSession
	}

	s.mu.Lock()
	delete(s.convs, id)
	s.mu.Unlock()
	return nil
}

// Len reports the number of live conversations.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.convs)
}

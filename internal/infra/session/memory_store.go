package session

import (
	"context"
	"sync"
	"time"

	"lumiere/internal/usecase"
)

// MemoryStore はRedisなしで動かすためのインメモリ実装。
// 開発・テスト用。プロセスを跨いだ共有はできない。
type MemoryStore struct {
	mu     sync.Mutex
	promos map[int64]string
	undos  map[string]undoRecord
	cards  map[int64]usecase.SavedCard
}

type undoRecord struct {
	entry     usecase.UndoEntry
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		promos: make(map[int64]string),
		undos:  make(map[string]undoRecord),
		cards:  make(map[int64]usecase.SavedCard),
	}
}

func (s *MemoryStore) GetPromoCode(_ context.Context, userID int64) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promos[userID], nil
}

func (s *MemoryStore) SetPromoCode(_ context.Context, userID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promos[userID] = code
	return nil
}

func (s *MemoryStore) ClearPromoCode(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.promos, userID)
	return nil
}

func (s *MemoryStore) PutUndo(_ context.Context, userID int64, token string, entry usecase.UndoEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.undos[undoKey(userID, token)] = undoRecord{
		entry:     entry,
		expiresAt: time.Now().Add(undoTTL),
	}
	return nil
}

func (s *MemoryStore) TakeUndo(_ context.Context, userID int64, token string) (usecase.UndoEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := undoKey(userID, token)
	rec, ok := s.undos[key]
	if !ok {
		return usecase.UndoEntry{}, false, nil
	}
	delete(s.undos, key)

	if time.Now().After(rec.expiresAt) {
		return usecase.UndoEntry{}, false, nil
	}
	return rec.entry, true, nil
}

func (s *MemoryStore) SaveCard(_ context.Context, userID int64, card usecase.SavedCard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cards[userID] = card
	return nil
}

func (s *MemoryStore) GetCard(_ context.Context, userID int64) (usecase.SavedCard, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	card, ok := s.cards[userID]
	return card, ok, nil
}

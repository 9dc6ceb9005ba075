package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lumiere/internal/usecase"

	"github.com/go-redis/redis/v8"
)

// セッションキーのTTL。undoだけ短くする（「削除を取り消す」の猶予）。
const (
	promoTTL = 2 * time.Hour
	undoTTL  = 5 * time.Minute
	cardTTL  = 30 * time.Minute
)

// RedisStore はusecase.SessionStoreのRedis実装。
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func promoKey(userID int64) string {
	return fmt.Sprintf("cart:promo:%d", userID)
}

func undoKey(userID int64, token string) string {
	return fmt.Sprintf("cart:undo:%d:%s", userID, token)
}

func cardKey(userID int64) string {
	return fmt.Sprintf("checkout:card:%d", userID)
}

func (s *RedisStore) GetPromoCode(ctx context.Context, userID int64) (string, error) {
	code, err := s.client.Get(ctx, promoKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisStore) SetPromoCode(ctx context.Context, userID int64, code string) error {
	return s.client.Set(ctx, promoKey(userID), code, promoTTL).Err()
}

func (s *RedisStore) ClearPromoCode(ctx context.Context, userID int64) error {
	return s.client.Del(ctx, promoKey(userID)).Err()
}

func (s *RedisStore) PutUndo(ctx context.Context, userID int64, token string, entry usecase.UndoEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, undoKey(userID, token), raw, undoTTL).Err()
}

// GETDELで取り出しと削除を原子的に行う（トークンは一度きり）
func (s *RedisStore) TakeUndo(ctx context.Context, userID int64, token string) (usecase.UndoEntry, bool, error) {
	raw, err := s.client.GetDel(ctx, undoKey(userID, token)).Result()
	if errors.Is(err, redis.Nil) {
		return usecase.UndoEntry{}, false, nil
	}
	if err != nil {
		return usecase.UndoEntry{}, false, err
	}

	var entry usecase.UndoEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return usecase.UndoEntry{}, false, err
	}
	return entry, true, nil
}

func (s *RedisStore) SaveCard(ctx context.Context, userID int64, card usecase.SavedCard) error {
	raw, err := json.Marshal(card)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, cardKey(userID), raw, cardTTL).Err()
}

func (s *RedisStore) GetCard(ctx context.Context, userID int64) (usecase.SavedCard, bool, error) {
	raw, err := s.client.Get(ctx, cardKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return usecase.SavedCard{}, false, nil
	}
	if err != nil {
		return usecase.SavedCard{}, false, err
	}

	var card usecase.SavedCard
	if err := json.Unmarshal([]byte(raw), &card); err != nil {
		return usecase.SavedCard{}, false, err
	}
	return card, true, nil
}

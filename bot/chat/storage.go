package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"RideDesk/internal/storage/kv"
)

const sessionKeyPrefix = "session:"

// KVSessionStorage keeps sessions as JSON documents in a key-value store.
// A positive ttl makes abandoned sessions expire.
type KVSessionStorage struct {
	store kv.Store
	ttl   time.Duration
}

func NewKVSessionStorage(store kv.Store, ttl time.Duration) *KVSessionStorage {
	return &KVSessionStorage{store: store, ttl: ttl}
}

func SessionKey(userID string) string {
	return sessionKeyPrefix + userID
}

func (s *KVSessionStorage) Save(ctx context.Context, state *ChatState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.store.Set(ctx, SessionKey(state.UserID), data, s.ttl)
}

// Load returns nil, nil when the sender has no session.
func (s *KVSessionStorage) Load(ctx context.Context, userID string) (*ChatState, error) {
	data, err := s.store.Get(ctx, SessionKey(userID))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var state ChatState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &state, nil
}

func (s *KVSessionStorage) Delete(ctx context.Context, userID string) error {
	return s.store.Delete(ctx, SessionKey(userID))
}

// ChatStateRepository defines the database operations for chat state.
type ChatStateRepository interface {
	SaveChatState(ctx context.Context, state *ChatState) error
	LoadChatState(ctx context.Context, userID string) (*ChatState, error)
	DeleteChatState(ctx context.Context, userID string) error
}

// MongoChatStateStorage adapts the database repository to the ChatStateStorage interface.
type MongoChatStateStorage struct {
	repo ChatStateRepository
}

// NewMongoChatStateStorage creates a new MongoDB chat state storage.
func NewMongoChatStateStorage(repo ChatStateRepository) *MongoChatStateStorage {
	return &MongoChatStateStorage{repo: repo}
}

func (s *MongoChatStateStorage) Save(ctx context.Context, state *ChatState) error {
	return s.repo.SaveChatState(ctx, state)
}

func (s *MongoChatStateStorage) Load(ctx context.Context, userID string) (*ChatState, error) {
	return s.repo.LoadChatState(ctx, userID)
}

func (s *MongoChatStateStorage) Delete(ctx context.Context, userID string) error {
	return s.repo.DeleteChatState(ctx, userID)
}

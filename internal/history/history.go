// Package history keeps the bounded log of chat turns in a durable key-value slot.
//
// The log is stored as one JSON array of {role, content, ts} records under a
// fixed key. Reads fail soft: anything unreadable is treated as an empty log.
// Writes are best-effort; Save reports failures, and callers decide to ignore
// them. Concurrent writers (several tabs, several processes) are not
// coordinated and the last write wins.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"invagro-dashboard/internal/models"
	"invagro-dashboard/internal/storage"
)

const (
	DefaultKey   = "invagro_chat_history"
	DefaultLimit = 200
)

// StorageError describes a failed write of the history slot.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("history %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	key   string
	limit int
	now   func() time.Time
}

func NewStore(kv storage.KV, key string, limit int) *Store {
	if key == "" {
		key = DefaultKey
	}
	if limit <= 0 || limit > DefaultLimit {
		limit = DefaultLimit
	}
	return &Store{kv: kv, key: key, limit: limit, now: time.Now}
}

// Limit is the maximum number of turns kept after a save. It never exceeds
// DefaultLimit.
func (s *Store) Limit() int { return s.limit }

// Load returns the stored turns, oldest first. It never fails.
func (s *Store) Load(ctx context.Context) []models.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) []models.ChatMessage {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.Printf("history: read %q failed: %v", s.key, err)
		}
		return []models.ChatMessage{}
	}
	return decode(raw)
}

// decode accepts only a JSON array; elements that are not objects are dropped.
func decode(raw []byte) []models.ChatMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []models.ChatMessage{}
	}

	out := make([]models.ChatMessage, 0, len(items))
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			continue
		}
		var turn storedTurn
		if err := json.Unmarshal(item, &turn); err != nil {
			continue
		}
		out = append(out, models.ChatMessage{
			Role:      models.Role(text(turn.Role)),
			Content:   text(turn.Content),
			Timestamp: text(turn.Timestamp),
		})
	}
	return out
}

// storedTurn keeps fields raw so a record written with a number or boolean
// where text is expected still replays.
type storedTurn struct {
	Role      json.RawMessage `json:"role"`
	Content   json.RawMessage `json:"content"`
	Timestamp json.RawMessage `json:"ts"`
}

// text renders a raw field as display text: strings unquoted, null or missing
// as empty, anything else as its JSON literal.
func text(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Save writes the newest Limit() turns of history.
func (s *Store) Save(ctx context.Context, history []models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, history)
}

func (s *Store) saveLocked(ctx context.Context, history []models.ChatMessage) error {
	trimmed := Trim(history, s.limit)
	if trimmed == nil {
		trimmed = []models.ChatMessage{}
	}

	data, err := json.Marshal(trimmed)
	if err != nil {
		return &StorageError{Op: "encode", Key: s.key, Err: err}
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		return &StorageError{Op: "save", Key: s.key, Err: err}
	}
	return nil
}

// Append records one turn stamped with the current time. The returned message
// is valid even when the write fails.
func (s *Store) Append(ctx context.Context, role models.Role, content string) (models.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.NewChatMessage(role, content, s.now())
	history := append(s.loadLocked(ctx), msg)
	return msg, s.saveLocked(ctx, history)
}

// Trim keeps the last limit entries of history.
func Trim(history []models.ChatMessage, limit int) []models.ChatMessage {
	if limit < 0 {
		limit = 0
	}
	if len(history) <= limit {
		return history
	}
	return history[len(history)-limit:]
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"

	"brainbox/internal/domain"
)

// DefaultKey is the storage key holding the transcript array.
const DefaultKey = "messages"

// ErrInvalidMessage is returned by Append when a message has no id or no
// content.
var ErrInvalidMessage = errors.New("repository: message requires id and content")

// KV is the single-key storage backend the transcript is persisted to.
// Put must not return before the value is durably written.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// TranscriptStore persists the whole ordered message list as one JSON array
// under one key.
type TranscriptStore struct {
	kv     KV
	key    string
	logger *slog.Logger

	mu sync.Mutex
}

// NewTranscriptStore creates a TranscriptStore. An empty key selects DefaultKey.
func NewTranscriptStore(kv KV, key string, logger *slog.Logger) (*TranscriptStore, error) {
	if kv == nil {
		return nil, errors.New("repository: kv must not be nil")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TranscriptStore{kv: kv, key: key, logger: logger}, nil
}

// Key returns the storage key in use.
func (s *TranscriptStore) Key() string { return s.key }

// Load returns the persisted transcript. Missing or corrupt data yields an
// empty slice; only backend read failures are returned as errors.
func (s *TranscriptStore) Load(ctx context.Context) ([]domain.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs, err := s.load(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: Load: %w", err)
	}
	return msgs, nil
}

// Append adds msg to the end of the transcript and persists it.
func (s *TranscriptStore) Append(ctx context.Context, msg domain.Message) error {
	if err := validate(msg); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.load(ctx)
	if err != nil {
		return fmt.Errorf("repository: Append: %w", err)
	}
	if err := s.save(ctx, append(msgs, msg)); err != nil {
		return fmt.Errorf("repository: Append: %w", err)
	}
	return nil
}

// ReplaceAll overwrites the persisted transcript with msgs. Records are
// written as given, so a list returned by Load round-trips even when it holds
// entries with defaulted fields.
func (s *TranscriptStore) ReplaceAll(ctx context.Context, msgs []domain.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.save(ctx, msgs); err != nil {
		return fmt.Errorf("repository: ReplaceAll: %w", err)
	}
	return nil
}

// Clear removes the persisted transcript. Clearing an empty store is a no-op.
func (s *TranscriptStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.kv.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("repository: Clear: %w", err)
	}
	return nil
}

func (s *TranscriptStore) load(ctx context.Context) ([]domain.Message, error) {
	raw, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return []domain.Message{}, nil
	}
	msgs, err := decodeTranscript(raw)
	if err != nil {
		s.logger.Warn("discarding unreadable transcript", "key", s.key, "err", err)
		return []domain.Message{}, nil
	}
	return msgs, nil
}

func (s *TranscriptStore) save(ctx context.Context, msgs []domain.Message) error {
	if msgs == nil {
		msgs = []domain.Message{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return s.kv.Put(ctx, s.key, raw)
}

func validate(msg domain.Message) error {
	if msg.ID == "" || strings.TrimSpace(msg.Content) == "" {
		return ErrInvalidMessage
	}
	return nil
}

// decodeTranscript parses the stored array. Each element must be an object;
// individual fields that are missing or mistyped fall back to zero values.
func decodeTranscript(raw []byte) ([]domain.Message, error) {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	msgs := make([]domain.Message, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("record %d is not an object", i)
		}
		msgs = append(msgs, domain.Message{
			ID:         strField(rec, "id"),
			Content:    strField(rec, "content"),
			IsFromUser: boolField(rec, "isFromUser"),
			CreatedAt:  int64Field(rec, "createdAt"),
		})
	}
	return msgs, nil
}

func strField(rec map[string]json.RawMessage, key string) string {
	var s string
	if v, ok := rec[key]; ok && json.Unmarshal(v, &s) == nil {
		return s
	}
	return ""
}

func boolField(rec map[string]json.RawMessage, key string) bool {
	var b bool
	if v, ok := rec[key]; ok && json.Unmarshal(v, &b) == nil {
		return b
	}
	return false
}

func int64Field(rec map[string]json.RawMessage, key string) int64 {
	v, ok := rec[key]
	if !ok {
		return 0
	}
	var n int64
	if json.Unmarshal(v, &n) == nil {
		return n
	}
	var f float64
	if json.Unmarshal(v, &f) == nil && !math.IsNaN(f) && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return 0
}

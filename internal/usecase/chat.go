package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"brainbox/internal/domain"
)

const defaultMaxMessageLength = 4000

type Responder interface {
	Respond(text string) string
}

type TranscriptStore interface {
	Load(ctx context.Context) ([]domain.Message, error)
	ReplaceAll(ctx context.Context, msgs []domain.Message) error
	Clear(ctx context.Context) error
}

// Options tunes a ChatService. Zero values select defaults.
type Options struct {
	// ThinkingDelay is a cosmetic pause before the reply is produced.
	ThinkingDelay    time.Duration
	MaxMessageLength int
	Clock            func() time.Time
	Logger           *slog.Logger
}

// ChatService owns one conversation: the in-memory transcript, the pending
// flag, and writes to the store. The in-memory list is authoritative; every
// change rewrites the whole list, so a failed write is retried by the next one.
type ChatService struct {
	responder Responder
	store     TranscriptStore
	opts      Options

	mu         sync.Mutex
	messages   []domain.Message
	pending    bool
	generation uint64
	lastMillis int64
	dirty      bool
}

type SendInput struct {
	Text string
}

type SendOutput struct {
	User  domain.Message
	Reply domain.Message
	// Persisted is false when the transcript write after the reply failed.
	Persisted bool
}

func NewChatService(r Responder, s TranscriptStore, opts Options) (*ChatService, error) {
	if r == nil {
		return nil, errors.New("usecase: responder must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: transcript store must not be nil")
	}
	if opts.ThinkingDelay < 0 {
		opts.ThinkingDelay = 0
	}
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = defaultMaxMessageLength
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &ChatService{responder: r, store: s, opts: opts}, nil
}

// Restore replaces the in-memory transcript with the persisted one.
func (s *ChatService) Restore(ctx context.Context) error {
	msgs, err := s.store.Load(ctx)
	if err != nil {
		return newError(ErrorInternal, "transcript_load_error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = false
	s.replaceLocked(msgs)
	s.opts.Logger.Debug("transcript restored", "messages", len(msgs))
	return nil
}

// Refresh picks up writes made to the store by another process. An
// outstanding local write is flushed first. The in-memory transcript is kept
// while a reply is pending or a write is still outstanding.
func (s *ChatService) Refresh(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return err
	}
	msgs, err := s.store.Load(ctx)
	if err != nil {
		return newError(ErrorInternal, "transcript_load_error", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending || s.dirty {
		return nil
	}
	s.replaceLocked(msgs)
	return nil
}

// Send records the user's text, produces the reply and records it too.
func (s *ChatService) Send(ctx context.Context, in SendInput) (SendOutput, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return SendOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if utf8.RuneCountInString(text) > s.opts.MaxMessageLength {
		return SendOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}

	s.mu.Lock()
	if s.pending {
		s.mu.Unlock()
		return SendOutput{}, newError(ErrorInvalidInput, "reply_pending", nil)
	}
	user := s.newMessageLocked(text, true)
	s.messages = append(s.messages, user)
	s.pending = true
	gen := s.generation
	s.persistLocked(ctx)
	s.mu.Unlock()

	if err := s.think(ctx); err != nil {
		s.mu.Lock()
		if s.generation == gen {
			s.pending = false
		}
		s.mu.Unlock()
		return SendOutput{User: user}, newError(ErrorCanceled, "canceled", err)
	}

	reply := s.responder.Respond(text)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		// Cleared while the reply was pending.
		return SendOutput{User: user}, newError(ErrorCanceled, "transcript_cleared", nil)
	}
	bot := s.newMessageLocked(reply, false)
	s.messages = append(s.messages, bot)
	s.pending = false
	persisted := s.persistLocked(context.WithoutCancel(ctx))

	return SendOutput{User: user, Reply: bot, Persisted: persisted}, nil
}

// Clear drops the conversation in memory and in the store.
func (s *ChatService) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.pending = false
	s.dirty = false
	s.generation++

	if err := s.store.Clear(ctx); err != nil {
		s.opts.Logger.Warn("transcript clear failed", "err", err)
		return newError(ErrorInternal, "transcript_clear_error", err)
	}
	return nil
}

// Flush retries a failed transcript write. It is a no-op when nothing is
// outstanding.
func (s *ChatService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	if err := s.store.ReplaceAll(ctx, s.snapshotLocked()); err != nil {
		return newError(ErrorInternal, "transcript_write_error", err)
	}
	s.dirty = false
	return nil
}

// Transcript returns a copy of the conversation and the pending flag.
func (s *ChatService) Transcript() domain.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Transcript{Messages: s.snapshotLocked(), Pending: s.pending}
}

func (s *ChatService) think(ctx context.Context) error {
	if s.opts.ThinkingDelay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.opts.ThinkingDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (s *ChatService) newMessageLocked(content string, fromUser bool) domain.Message {
	now := domain.EpochMillis(s.opts.Clock())
	if now < s.lastMillis {
		now = s.lastMillis
	}
	s.lastMillis = now
	return domain.Message{
		ID:         newUUID(),
		Content:    content,
		IsFromUser: fromUser,
		CreatedAt:  now,
	}
}

func (s *ChatService) replaceLocked(msgs []domain.Message) {
	s.messages = msgs
	s.dirty = false
	for _, m := range msgs {
		if m.CreatedAt > s.lastMillis {
			s.lastMillis = m.CreatedAt
		}
	}
}

func (s *ChatService) persistLocked(ctx context.Context) bool {
	if err := s.store.ReplaceAll(ctx, s.snapshotLocked()); err != nil {
		s.dirty = true
		s.opts.Logger.Warn("transcript write failed, will retry on next change",
			"messages", len(s.messages), "err", err)
		return false
	}
	s.dirty = false
	return true
}

func (s *ChatService) snapshotLocked() []domain.Message {
	out := make([]domain.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

var newUUID = func() string {
	return uuid.NewString()
}

package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"brainbox/internal/domain"
	"brainbox/internal/repository"
	"brainbox/internal/responder"
)

type echoResponder struct {
	calls []string
}

func (e *echoResponder) Respond(text string) string {
	e.calls = append(e.calls, text)
	return "echo: " + text
}

type mockStore struct {
	mu         sync.Mutex
	saved      []domain.Message
	loaded     []domain.Message
	loadErr    error
	replaceErr error
	clearErr   error
	replaces   int
	clears     int
}

func (m *mockStore) Load(context.Context) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded, m.loadErr
}

func (m *mockStore) ReplaceAll(_ context.Context, msgs []domain.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaces++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.saved = msgs
	return nil
}

func (m *mockStore) Clear(context.Context) error {
	m.clears++
	m.saved = nil
	return m.clearErr
}

func fixedClock(ms ...int64) func() time.Time {
	i := 0
	return func() time.Time {
		v := ms[len(ms)-1]
		if i < len(ms) {
			v = ms[i]
		}
		i++
		return time.UnixMilli(v)
	}
}

func sequentialIDs(t *testing.T) {
	t.Helper()
	orig := newUUID
	n := 0
	newUUID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	t.Cleanup(func() { newUUID = orig })
}

func newTestService(t *testing.T, r Responder, s TranscriptStore, opts Options) *ChatService {
	t.Helper()
	svc, err := NewChatService(r, s, opts)
	require.NoError(t, err)
	return svc
}

func expectChatError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, code, usecaseErr.Code)
	require.Equal(t, reason, usecaseErr.Reason)
}

func TestNewChatService_ValidatesDependencies(t *testing.T) {
	_, err := NewChatService(nil, &mockStore{}, Options{})
	require.Error(t, err)

	_, err = NewChatService(&echoResponder{}, nil, Options{})
	require.Error(t, err)

	svc, err := NewChatService(&echoResponder{}, &mockStore{}, Options{ThinkingDelay: -time.Second})
	require.NoError(t, err)
	require.Equal(t, time.Duration(0), svc.opts.ThinkingDelay)
	require.Equal(t, defaultMaxMessageLength, svc.opts.MaxMessageLength)
}

func TestSend_HappyPath(t *testing.T) {
	sequentialIDs(t)
	store := &mockStore{}
	r := &echoResponder{}
	svc := newTestService(t, r, store, Options{Clock: fixedClock(1000, 2000)})

	out, err := svc.Send(context.Background(), SendInput{Text: "  hello  "})
	require.NoError(t, err)
	require.True(t, out.Persisted)
	require.Equal(t, domain.Message{ID: "id-1", Content: "hello", IsFromUser: true, CreatedAt: 1000}, out.User)
	require.Equal(t, domain.Message{ID: "id-2", Content: "echo: hello", CreatedAt: 2000}, out.Reply)
	require.Equal(t, []string{"hello"}, r.calls)

	require.Equal(t, 2, store.replaces)
	require.Equal(t, []domain.Message{out.User, out.Reply}, store.saved)

	tr := svc.Transcript()
	require.False(t, tr.Pending)
	require.Equal(t, store.saved, tr.Messages)
}

func TestSend_ValidationErrors(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, &echoResponder{}, store, Options{MaxMessageLength: 5})

	_, err := svc.Send(context.Background(), SendInput{Text: "   "})
	expectChatError(t, err, ErrorInvalidInput, "empty_message")

	_, err = svc.Send(context.Background(), SendInput{Text: "toolong"})
	expectChatError(t, err, ErrorInvalidInput, "message_too_long")

	_, err = svc.Send(context.Background(), SendInput{Text: "héllo"})
	require.NoError(t, err)
	require.Len(t, svc.Transcript().Messages, 2)
}

func TestSend_CreatedAtNeverDecreases(t *testing.T) {
	svc := newTestService(t, &echoResponder{}, &mockStore{}, Options{Clock: fixedClock(5000, 4000, 3000, 6000)})

	_, err := svc.Send(context.Background(), SendInput{Text: "a"})
	require.NoError(t, err)
	_, err = svc.Send(context.Background(), SendInput{Text: "b"})
	require.NoError(t, err)

	var got []int64
	for _, m := range svc.Transcript().Messages {
		got = append(got, m.CreatedAt)
	}
	require.Equal(t, []int64{5000, 5000, 5000, 6000}, got)
}

func TestSend_PendingDuringThinkingDelay(t *testing.T) {
	svc := newTestService(t, &echoResponder{}, &mockStore{}, Options{ThinkingDelay: 200 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Send(context.Background(), SendInput{Text: "hi"})
		done <- err
	}()

	require.Eventually(t, func() bool { return svc.Transcript().Pending }, time.Second, 5*time.Millisecond)
	_, err := svc.Send(context.Background(), SendInput{Text: "again"})
	expectChatError(t, err, ErrorInvalidInput, "reply_pending")

	require.NoError(t, <-done)
	tr := svc.Transcript()
	require.False(t, tr.Pending)
	require.Len(t, tr.Messages, 2)
}

func TestSend_CanceledKeepsUserMessage(t *testing.T) {
	store := &mockStore{}
	r := &echoResponder{}
	svc := newTestService(t, r, store, Options{ThinkingDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := svc.Send(ctx, SendInput{Text: "hi"})
	expectChatError(t, err, ErrorCanceled, "canceled")
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "hi", out.User.Content)
	require.Empty(t, r.calls)

	tr := svc.Transcript()
	require.False(t, tr.Pending)
	require.Equal(t, []domain.Message{out.User}, tr.Messages)
}

func TestSend_ClearWhilePendingDropsReply(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, &echoResponder{}, store, Options{ThinkingDelay: 100 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Send(context.Background(), SendInput{Text: "hi"})
		done <- err
	}()
	require.Eventually(t, func() bool { return svc.Transcript().Pending }, time.Second, 5*time.Millisecond)
	require.NoError(t, svc.Clear(context.Background()))

	expectChatError(t, <-done, ErrorCanceled, "transcript_cleared")
	require.Empty(t, svc.Transcript().Messages)
	require.Nil(t, store.saved)
}

func TestSend_WriteFailureIsNonFatalAndRetried(t *testing.T) {
	store := &mockStore{replaceErr: errors.New("disk full")}
	svc := newTestService(t, &echoResponder{}, store, Options{})

	out, err := svc.Send(context.Background(), SendInput{Text: "hi"})
	require.NoError(t, err)
	require.False(t, out.Persisted)
	require.Len(t, svc.Transcript().Messages, 2)

	store.replaceErr = nil
	out, err = svc.Send(context.Background(), SendInput{Text: "again"})
	require.NoError(t, err)
	require.True(t, out.Persisted)
	require.Len(t, store.saved, 4)
}

func TestFlush(t *testing.T) {
	store := &mockStore{replaceErr: errors.New("disk full")}
	svc := newTestService(t, &echoResponder{}, store, Options{})
	require.NoError(t, svc.Flush(context.Background()))
	require.Equal(t, 0, store.replaces)

	_, err := svc.Send(context.Background(), SendInput{Text: "hi"})
	require.NoError(t, err)

	expectChatError(t, svc.Flush(context.Background()), ErrorInternal, "transcript_write_error")

	store.replaceErr = nil
	require.NoError(t, svc.Flush(context.Background()))
	require.Len(t, store.saved, 2)

	before := store.replaces
	require.NoError(t, svc.Flush(context.Background()))
	require.Equal(t, before, store.replaces)
}

func TestRestore(t *testing.T) {
	loaded := []domain.Message{
		{ID: "a", Content: "hi", IsFromUser: true, CreatedAt: 9000},
		{ID: "b", Content: "Hello!", CreatedAt: 9000},
	}
	svc := newTestService(t, &echoResponder{}, &mockStore{loaded: loaded}, Options{Clock: fixedClock(1)})
	require.NoError(t, svc.Restore(context.Background()))
	require.Equal(t, loaded, svc.Transcript().Messages)

	out, err := svc.Send(context.Background(), SendInput{Text: "x"})
	require.NoError(t, err)
	require.Equal(t, int64(9000), out.User.CreatedAt)

	svc = newTestService(t, &echoResponder{}, &mockStore{loadErr: errors.New("io")}, Options{})
	expectChatError(t, svc.Restore(context.Background()), ErrorInternal, "transcript_load_error")
}

func TestRefresh_PicksUpExternalWrites(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{loaded: []domain.Message{{ID: "a", Content: "hi", IsFromUser: true, CreatedAt: 10}}}
	svc := newTestService(t, &echoResponder{}, store, Options{})
	require.NoError(t, svc.Restore(ctx))

	external := []domain.Message{
		{ID: "a", Content: "hi", IsFromUser: true, CreatedAt: 10},
		{ID: "b", Content: "Hello!", CreatedAt: 11},
	}
	store.loaded = external
	require.NoError(t, svc.Refresh(ctx))
	require.Equal(t, external, svc.Transcript().Messages)

	store.loadErr = errors.New("io")
	expectChatError(t, svc.Refresh(ctx), ErrorInternal, "transcript_load_error")
	require.Equal(t, external, svc.Transcript().Messages)
}

func TestRefresh_KeepsUnsavedLocalMessages(t *testing.T) {
	ctx := context.Background()
	store := &mockStore{replaceErr: errors.New("disk full")}
	svc := newTestService(t, &echoResponder{}, store, Options{})

	_, err := svc.Send(ctx, SendInput{Text: "hi"})
	require.NoError(t, err)

	expectChatError(t, svc.Refresh(ctx), ErrorInternal, "transcript_write_error")
	require.Len(t, svc.Transcript().Messages, 2)

	store.replaceErr = nil
	require.NoError(t, svc.Flush(ctx))
	store.loaded = store.saved
	require.NoError(t, svc.Refresh(ctx))
	require.Equal(t, store.saved, svc.Transcript().Messages)
}

func TestSend_PersistsAfterRestoringRecordsWithDefaultedFields(t *testing.T) {
	ctx := context.Background()
	kv := repository.NewMemoryKV()
	require.NoError(t, kv.Put(ctx, repository.DefaultKey, []byte(`[{"content":"legacy hi","isFromUser":true}]`)))
	store, err := repository.NewTranscriptStore(kv, "", nil)
	require.NoError(t, err)

	svc := newTestService(t, &echoResponder{}, store, Options{})
	require.NoError(t, svc.Restore(ctx))

	out, err := svc.Send(ctx, SendInput{Text: "hello again"})
	require.NoError(t, err)
	require.True(t, out.Persisted)
	require.NoError(t, svc.Flush(ctx))

	reloaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, []domain.Message{
		{Content: "legacy hi", IsFromUser: true},
		out.User,
		out.Reply,
	}, reloaded)
}

func TestClear(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(t, &echoResponder{}, store, Options{})
	_, err := svc.Send(context.Background(), SendInput{Text: "hi"})
	require.NoError(t, err)

	require.NoError(t, svc.Clear(context.Background()))
	require.Empty(t, svc.Transcript().Messages)
	require.Equal(t, 1, store.clears)

	store.clearErr = errors.New("locked")
	expectChatError(t, svc.Clear(context.Background()), ErrorInternal, "transcript_clear_error")
	require.Empty(t, svc.Transcript().Messages)
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, ErrorInvalidInput, CodeOf(newError(ErrorInvalidInput, "x", nil)))
	require.Equal(t, ErrorCanceled, CodeOf(fmt.Errorf("wrapped: %w", newError(ErrorCanceled, "y", nil))))
	require.Equal(t, ErrorInternal, CodeOf(errors.New("boom")))
}

func TestChatService_EndToEndWithStore(t *testing.T) {
	ctx := context.Background()
	store, err := repository.NewTranscriptStore(repository.NewMemoryKV(), "", nil)
	require.NoError(t, err)
	svc := newTestService(t, responder.New(), store, Options{})

	out, err := svc.Send(ctx, SendInput{Text: "spring boot example"})
	require.NoError(t, err)
	spring, _ := responder.Snippet(responder.TopicSpringBoot)
	require.Equal(t, spring, out.Reply.Content)
	require.True(t, strings.HasPrefix(out.Reply.Content, "Simple Spring Boot"))

	fresh := newTestService(t, responder.New(), store, Options{})
	require.NoError(t, fresh.Restore(ctx))
	require.Equal(t, svc.Transcript().Messages, fresh.Transcript().Messages)

	require.NoError(t, fresh.Clear(ctx))
	msgs, err := store.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, msgs)
}

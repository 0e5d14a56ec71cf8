package facultychat

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newConnectedChat returns a chat where t1 is connected with t2 and t3.
// Polling runs once per hour so only the initial fetch happens.
func newConnectedChat(t *testing.T, f *fakeBackend) *Chat {
	t.Helper()

	f.connections = []Connection{
		{ID: "inv-2", UserID: "t2", Name: "Boris Ivanov"},
		{ID: "inv-3", UserID: "t3", Name: "Vera Orlova"},
	}
	c := NewChat(f, newTestEngine(f), ChatOptions{PollInterval: time.Hour, RequestTimeout: time.Second})
	t.Cleanup(c.Close)
	return c
}

func messagesFor(peerID string) []Message {
	return []Message{{ID: "m-" + peerID, SenderID: peerID, RecipientID: "t1", Text: "hi from " + peerID}}
}

func TestChat_SelectPeer_RequiresConnection(t *testing.T) {
	f := newFakeBackend()
	c := newConnectedChat(t, f)

	assert.ErrorIs(t, c.SelectPeer(context.Background(), "t4"), ErrNotConnected)
	assert.Empty(t, c.Peer())
	assert.Zero(t, f.count("Conversation"))
}

func TestChat_SelectPeer_Polls(t *testing.T) {
	f := newFakeBackend()
	f.conversation = func(ctx context.Context, peerID string, limit int) ([]Message, error) {
		assert.Equal(t, ConversationLimit, limit)
		return messagesFor(peerID), nil
	}
	c := newConnectedChat(t, f)

	require.NoError(t, c.SelectPeer(context.Background(), "t2"))
	assert.Equal(t, "t1__t2", c.ConversationID())

	require.Eventually(t, func() bool { return len(c.Messages()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "m-t2", c.Messages()[0].ID)
	assert.NoError(t, c.SyncErr())
}

func TestChat_StalePollIgnored(t *testing.T) {
	f := newFakeBackend()
	f.conversation = func(ctx context.Context, peerID string, limit int) ([]Message, error) {
		return messagesFor(peerID), nil
	}
	c := newConnectedChat(t, f)
	ctx := context.Background()

	require.NoError(t, c.SelectPeer(ctx, "t2"))
	c.mu.Lock()
	stale := c.sel
	c.mu.Unlock()

	require.NoError(t, c.SelectPeer(ctx, "t3"))
	require.Eventually(t, func() bool { return len(c.Messages()) == 1 }, time.Second, 5*time.Millisecond)

	// ответ по t2 приходит уже после переключения
	c.mu.Lock()
	delete(c.cache, stale.convID)
	c.mu.Unlock()

	c.poll(ctx, stale)

	c.mu.Lock()
	_, written := c.cache[stale.convID]
	c.mu.Unlock()
	assert.False(t, written, "stale poll must not write")
	assert.Equal(t, "m-t3", c.Messages()[0].ID)
	assert.Equal(t, "t3", c.Peer())
}

func TestChat_CloseDropsInFlightPoll(t *testing.T) {
	f := newFakeBackend()
	gate := make(chan struct{})
	f.conversation = func(ctx context.Context, peerID string, limit int) ([]Message, error) {
		<-gate
		return messagesFor(peerID), nil
	}
	f.connections = []Connection{{ID: "inv-2", UserID: "t2"}}
	var updates atomic.Int32
	c := NewChat(f, newTestEngine(f), ChatOptions{
		PollInterval:   time.Hour,
		RequestTimeout: time.Second,
		OnUpdate:       func() { updates.Add(1) },
	})
	ctx := context.Background()

	require.NoError(t, c.SelectPeer(ctx, "t2"))
	require.Eventually(t, func() bool { return f.count("Conversation") == 1 }, time.Second, time.Millisecond)

	c.mu.Lock()
	sel := c.sel
	c.mu.Unlock()

	// первый запрос ещё висит, экран закрывают
	c.Close()
	close(gate)

	require.Never(t, func() bool { return updates.Load() > 0 }, 50*time.Millisecond, 5*time.Millisecond)

	c.poll(ctx, sel)

	c.mu.Lock()
	_, written := c.cache[sel.convID]
	c.mu.Unlock()
	assert.False(t, written, "poll finishing after Close must not write")
	assert.Zero(t, updates.Load())
	assert.Empty(t, c.Peer())
	assert.ErrorIs(t, c.Send(ctx, "late", nil), ErrNoPeer)
}

func TestChat_FailedPollKeepsMessages(t *testing.T) {
	f := newFakeBackend()
	var fail atomic.Bool
	f.conversation = func(ctx context.Context, peerID string, limit int) ([]Message, error) {
		if fail.Load() {
			return nil, errors.New("network down")
		}
		return messagesFor(peerID), nil
	}
	c := newConnectedChat(t, f)
	ctx := context.Background()

	require.NoError(t, c.SelectPeer(ctx, "t2"))
	require.Eventually(t, func() bool { return len(c.Messages()) == 1 }, time.Second, 5*time.Millisecond)

	fail.Store(true)
	c.mu.Lock()
	sel := c.sel
	c.mu.Unlock()
	c.poll(ctx, sel)

	assert.Error(t, c.SyncErr())
	assert.Len(t, c.Messages(), 1, "failed poll keeps cached messages")

	fail.Store(false)
	c.poll(ctx, sel)
	assert.NoError(t, c.SyncErr())
}

func TestChat_PollTimeout(t *testing.T) {
	f := newFakeBackend()
	f.conversation = func(ctx context.Context, peerID string, limit int) ([]Message, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	f.connections = []Connection{{ID: "inv-2", UserID: "t2"}}
	c := NewChat(f, newTestEngine(f), ChatOptions{PollInterval: time.Hour, RequestTimeout: 20 * time.Millisecond})
	t.Cleanup(c.Close)

	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	require.Eventually(t, func() bool { return c.SyncErr() != nil }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.SyncErr(), context.DeadlineExceeded)
}

func TestChat_Send_EmptyIsNoop(t *testing.T) {
	f := newFakeBackend()
	c := newConnectedChat(t, f)
	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	assert.ErrorIs(t, c.Send(context.Background(), "", nil), ErrEmptyMessage)
	assert.ErrorIs(t, c.Send(context.Background(), "   \n", nil), ErrEmptyMessage)
	assert.Zero(t, f.count("SendMessage"))
}

func TestChat_Send_AttachmentOnly(t *testing.T) {
	f := newFakeBackend()
	c := newConnectedChat(t, f)
	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	d, err := NewDraft("plan.pdf", "application/pdf", bytesReader("%PDF"), 4)
	require.NoError(t, err)
	c.SetDraft(d)

	require.NoError(t, c.Send(context.Background(), "", d))

	require.Len(t, f.sent, 1)
	assert.Empty(t, f.sent[0].Text)
	require.NotNil(t, f.sent[0].Attachment)
	assert.Equal(t, "plan.pdf", f.sent[0].Attachment.Name)
	assert.Nil(t, c.Draft(), "draft is cleared after send")
}

func TestChat_Send_TrimsText(t *testing.T) {
	f := newFakeBackend()
	c := newConnectedChat(t, f)
	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	require.NoError(t, c.Send(context.Background(), "  hello  ", nil))
	require.Len(t, f.sent, 1)
	assert.Equal(t, "hello", f.sent[0].Text)
	assert.Nil(t, f.sent[0].Attachment)
}

func TestChat_Send_OversizedDraftNeverSent(t *testing.T) {
	f := newFakeBackend()
	c := newConnectedChat(t, f)
	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	big := &Draft{Name: "big.bin", Type: "application/octet-stream", Size: 2 * 1024 * 1024}

	err := c.Send(context.Background(), "see attached", big)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "file too large", validationErr.Message)
	assert.Zero(t, f.count("SendMessage"))
}

func TestChat_Send_NoPeer(t *testing.T) {
	f := newFakeBackend()
	c := newConnectedChat(t, f)

	assert.ErrorIs(t, c.Send(context.Background(), "hello", nil), ErrNoPeer)
	assert.Zero(t, f.count("SendMessage"))
}

func TestChat_Send_BackendErrorKeepsDraft(t *testing.T) {
	f := newFakeBackend()
	f.sendMessage = func(ctx context.Context, peerID string, msg OutgoingMessage) error {
		return &APIError{StatusCode: 403, Message: "you are not connected with this teacher"}
	}
	c := newConnectedChat(t, f)
	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	d, err := NewDraft("a.txt", "text/plain", bytesReader("a"), 1)
	require.NoError(t, err)
	c.SetDraft(d)

	err = c.Send(context.Background(), "", d)
	assert.Equal(t, "you are not connected with this teacher", UserMessage(err))
	assert.Same(t, d, c.Draft())
}

func TestChat_Send_InFlight(t *testing.T) {
	f := newFakeBackend()
	started := make(chan struct{})
	release := make(chan struct{})
	f.sendMessage = func(ctx context.Context, peerID string, msg OutgoingMessage) error {
		close(started)
		<-release
		return nil
	}
	c := newConnectedChat(t, f)
	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	first := make(chan error, 1)
	go func() { first <- c.Send(context.Background(), "hello", nil) }()
	<-started

	assert.True(t, c.SendInFlight("t2"))
	assert.False(t, c.SendInFlight("t3"))
	assert.ErrorIs(t, c.Send(context.Background(), "hello", nil), ErrActionInFlight)

	close(release)
	require.NoError(t, <-first)

	assert.Equal(t, 1, f.count("SendMessage"))
	assert.False(t, c.SendInFlight("t2"))
}

func TestChat_Send_Timeout(t *testing.T) {
	f := newFakeBackend()
	f.sendMessage = func(ctx context.Context, peerID string, msg OutgoingMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(3 * time.Second):
			return nil
		}
	}
	f.connections = []Connection{{ID: "inv-2", UserID: "t2"}}
	c := NewChat(f, newTestEngine(f), ChatOptions{PollInterval: time.Hour, RequestTimeout: 20 * time.Millisecond})
	t.Cleanup(c.Close)
	require.NoError(t, c.SelectPeer(context.Background(), "t2"))

	d, err := NewDraft("a.txt", "text/plain", bytesReader("a"), 1)
	require.NoError(t, err)
	c.SetDraft(d)

	start := time.Now()
	err = c.Send(context.Background(), "hello", d)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
	assert.Same(t, d, c.Draft(), "draft survives a timed out send")
	assert.False(t, c.SendInFlight("t2"))
}

func TestChat_SendRefreshesConversation(t *testing.T) {
	f := newFakeBackend()
	var (
		mu     sync.Mutex
		stored []Message
	)
	f.sendMessage = func(ctx context.Context, peerID string, msg OutgoingMessage) error {
		mu.Lock()
		defer mu.Unlock()
		stored = append(stored, Message{ID: "m1", SenderID: "t1", RecipientID: peerID, Text: msg.Text})
		return nil
	}
	f.conversation = func(ctx context.Context, peerID string, limit int) ([]Message, error) {
		mu.Lock()
		defer mu.Unlock()
		return slices.Clone(stored), nil
	}
	f.connections = []Connection{{ID: "inv-2", UserID: "t2"}}
	updates := make(chan struct{}, 4)
	c := NewChat(f, newTestEngine(f), ChatOptions{
		PollInterval: time.Hour,
		OnUpdate:     func() { updates <- struct{}{} },
	})
	t.Cleanup(c.Close)

	require.NoError(t, c.SelectPeer(context.Background(), "t2"))
	<-updates // первый опрос

	require.NoError(t, c.Send(context.Background(), "hello", nil))
	// OnUpdate уже вызван из горутины Send, до возврата
	assert.Len(t, updates, 1)

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Text)
	assert.Equal(t, conversation.ID("t1", "t2"), c.ConversationID())
}

func TestPoller_TicksUntilStopped(t *testing.T) {
	var n atomic.Int32
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) { n.Add(1) }, nil)

	p.Start(context.Background())
	require.Eventually(t, func() bool { return n.Load() >= 3 }, time.Second, time.Millisecond)

	p.Stop()
	p.Stop()
	time.Sleep(20 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}

func TestPoller_StopsOnContextCancel(t *testing.T) {
	var n atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) { n.Add(1) }, nil)

	p.Start(ctx)
	require.Eventually(t, func() bool { return n.Load() >= 1 }, time.Second, time.Millisecond)

	cancel()
	time.Sleep(20 * time.Millisecond)
	stopped := n.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, n.Load())
}

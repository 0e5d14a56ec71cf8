package facultychat

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/faculty_chat/internal/conversation"
	"go.uber.org/zap"
)

// ChatOptions настройки Chat
type ChatOptions struct {
	PollInterval time.Duration
	// RequestTimeout ограничивает каждый запрос чата: опрос и отправку
	RequestTimeout time.Duration
	// OnUpdate вызывается после смены сообщений или ошибки синхронизации.
	// Вызов идёт из горутины поллера или из горутины, вызвавшей Send,
	// поэтому колбэк должен быть безопасен для конкурентного вызова.
	OnUpdate func()
	Logger   *zap.Logger
}

// selection одна открытая переписка. gen меняется при каждом SelectPeer
// и при Close, поэтому опоздавшие ответы по старой переписке отбрасываются.
type selection struct {
	gen    uint64
	peerID string
	convID string
}

// Chat экран переписки: выбранный собеседник, его сообщения и черновик
type Chat struct {
	backend Backend
	engine  *Engine
	opts    ChatOptions
	logger  *zap.Logger

	mu      sync.Mutex
	sel     selection
	poller  *Poller
	cache   map[string][]Message // conversation id -> сообщения
	syncErr error
	draft   *Draft
}

// NewChat создаёт экран переписки для учителя из engine
func NewChat(backend Backend, engine *Engine, opts ChatOptions) *Chat {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Chat{
		backend: backend,
		engine:  engine,
		opts:    opts,
		logger:  logger,
		cache:   make(map[string][]Message),
	}
}

// SelectPeer открывает переписку с подключённым учителем и запускает опрос.
// Предыдущий поллер останавливается.
func (c *Chat) SelectPeer(ctx context.Context, peerID string) error {
	if c.engine.Status(peerID).Kind != StatusConnected {
		return ErrNotConnected
	}

	c.mu.Lock()
	if c.poller != nil {
		c.poller.Stop()
	}
	c.sel = selection{
		gen:    c.sel.gen + 1,
		peerID: peerID,
		convID: conversation.ID(c.engine.Current().ID, peerID),
	}
	c.syncErr = nil
	c.draft = nil

	sel := c.sel
	c.poller = NewPoller(c.opts.PollInterval, func(ctx context.Context) {
		c.poll(ctx, sel)
	}, c.logger)
	c.poller.Start(ctx)
	c.mu.Unlock()

	c.logger.Debug("Conversation opened",
		zap.String("peer_id", peerID),
		zap.String("conversation_id", sel.convID),
	)
	return nil
}

// Peer возвращает id выбранного собеседника или ""
func (c *Chat) Peer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.peerID
}

func (c *Chat) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sel.convID
}

// Messages возвращает сообщения открытой переписки в порядке сервера
func (c *Chat) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.cache[c.sel.convID])
}

// SyncErr последняя ошибка опроса, сбрасывается следующим успешным опросом
func (c *Chat) SyncErr() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncErr
}

// SetDraft прикрепляет файл к черновику, nil очищает
func (c *Chat) SetDraft(d *Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = d
}

func (c *Chat) Draft() *Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SendInFlight сообщает, идёт ли сейчас отправка сообщения peerID
func (c *Chat) SendInFlight(peerID string) bool {
	return c.engine.InFlight(sendKey(peerID))
}

// Send отправляет сообщение выбранному собеседнику. Пустой текст без
// черновика ничего не делает и возвращает ErrEmptyMessage. Пока отправка
// этому собеседнику не завершилась, повторный вызов получает
// ErrActionInFlight. После успеха черновик очищается, а переписка
// перезапрашивается один раз.
func (c *Chat) Send(ctx context.Context, text string, draft *Draft) error {
	text = strings.TrimSpace(text)
	if text == "" && draft == nil {
		return ErrEmptyMessage
	}
	if draft != nil && draft.Size > MaxAttachmentSize {
		return tooLarge(draft.Size)
	}

	c.mu.Lock()
	sel := c.sel
	c.mu.Unlock()

	if sel.peerID == "" {
		return ErrNoPeer
	}

	key := sendKey(sel.peerID)
	if !c.engine.actions.begin(key) {
		return ErrActionInFlight
	}
	defer c.engine.actions.end(key)

	sendCtx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	err := c.backend.SendMessage(sendCtx, sel.peerID, OutgoingMessage{
		Text:       text,
		Attachment: draft.Attachment(),
	})
	if err != nil {
		c.logger.Warn("Failed to send message",
			zap.String("peer_id", sel.peerID),
			zap.Error(err),
		)
		return err
	}

	c.mu.Lock()
	if c.draft == draft {
		c.draft = nil
	}
	c.mu.Unlock()

	c.poll(ctx, sel)
	return nil
}

// Close останавливает опрос и закрывает переписку. Ответы, пришедшие
// после Close, отбрасываются.
func (c *Chat) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.poller != nil {
		c.poller.Stop()
		c.poller = nil
	}
	c.sel = selection{gen: c.sel.gen + 1}
}

// poll загружает переписку sel и сохраняет её, только если sel всё ещё
// открыта. Ошибка не трогает уже загруженные сообщения.
func (c *Chat) poll(ctx context.Context, sel selection) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.RequestTimeout)
	defer cancel()

	messages, err := c.backend.Conversation(ctx, sel.peerID, ConversationLimit)

	c.mu.Lock()
	if sel.gen != c.sel.gen {
		c.mu.Unlock()
		c.logger.Debug("Dropping stale poll result", zap.String("peer_id", sel.peerID))
		return
	}
	if err != nil {
		c.syncErr = err
	} else {
		c.cache[sel.convID] = messages
		c.syncErr = nil
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("Failed to sync conversation",
			zap.String("peer_id", sel.peerID),
			zap.Error(err),
		)
	}

	if c.opts.OnUpdate != nil {
		c.opts.OnUpdate()
	}
}

package facultychat

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Engine хранит приглашения и подключения учителя и выполняет действия
// с приглашениями через backend
type Engine struct {
	backend Backend
	dir     *Directory
	actions *actions
	logger  *zap.Logger
	timeout time.Duration

	mu          sync.Mutex
	incoming    []Invitation
	outgoing    []Invitation
	connections []Connection
}

// NewEngine создаёт engine для учителя из dir. Списки пустые,
// заполняются через Load или Refresh.
func NewEngine(backend Backend, dir *Directory, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		backend: backend,
		dir:     dir,
		actions: newActions(),
		logger:  logger,
		timeout: DefaultRequestTimeout,
	}
}

// NewEngineFromDashboard создаёт engine со списками из dashboard
func NewEngineFromDashboard(backend Backend, dash *Dashboard, logger *zap.Logger) *Engine {
	e := NewEngine(backend, dash.Directory, logger)
	e.Load(dash.Incoming, dash.Outgoing, dash.Connections)
	return e
}

// SetRequestTimeout задаёт предел на каждый запрос к backend.
// Значение <= 0 возвращает DefaultRequestTimeout.
func (e *Engine) SetRequestTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultRequestTimeout
	}
	e.timeout = d
}

// Current учитель, от имени которого работает engine
func (e *Engine) Current() Teacher {
	return e.dir.Current
}

// Load заменяет все три списка
func (e *Engine) Load(incoming, outgoing []Invitation, connections []Connection) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.incoming = slices.Clone(incoming)
	e.outgoing = slices.Clone(outgoing)
	e.connections = slices.Clone(connections)
}

// Refresh перезагружает приглашения и подключения. При ошибке списки
// остаются прежними, возвращается *ListError.
func (e *Engine) Refresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	incoming, outgoing, err := e.backend.MyInvites(ctx)
	if err != nil {
		return &ListError{List: "invitations", Err: err}
	}

	connections, err := e.backend.AcceptedConnections(ctx)
	if err != nil {
		return &ListError{List: "connections", Err: err}
	}

	e.Load(incoming, outgoing, connections)
	return nil
}

// ============ Снимки ============

func (e *Engine) ListInvites() (incoming, outgoing []Invitation) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.incoming), slices.Clone(e.outgoing)
}

func (e *Engine) ListConnections() []Connection {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.connections)
}

// Status определяет отношение с teacherID. Подключение важнее входящего
// приглашения, входящее важнее исходящего.
func (e *Engine) Status(teacherID string) Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.statusLocked(teacherID)
}

func (e *Engine) statusLocked(teacherID string) Status {
	for i := range e.connections {
		if e.connections[i].UserID == teacherID {
			c := e.connections[i]
			return Status{Kind: StatusConnected, Connection: &c}
		}
	}
	for i := range e.incoming {
		if e.incoming[i].SenderID == teacherID {
			inv := e.incoming[i]
			return Status{Kind: StatusIncoming, Invite: &inv}
		}
	}
	for i := range e.outgoing {
		if e.outgoing[i].RecipientID == teacherID {
			inv := e.outgoing[i]
			return Status{Kind: StatusOutgoing, Invite: &inv}
		}
	}
	return Status{Kind: StatusNone}
}

// InFlight сообщает, выполняется ли действие с этим ключом. Ключи:
// "invite-<teacherID>", "accept-<invitationID>", "reject-<invitationID>"
// и "send-<teacherID>" для отправки сообщений из Chat.
func (e *Engine) InFlight(key string) bool {
	return e.actions.running(key)
}

func (e *Engine) InviteInFlight(teacherID string) bool { return e.InFlight(inviteKey(teacherID)) }
func (e *Engine) AcceptInFlight(inviteID string) bool  { return e.InFlight(acceptKey(inviteID)) }
func (e *Engine) RejectInFlight(inviteID string) bool  { return e.InFlight(rejectKey(inviteID)) }

// ============ Действия ============

// SendInvite приглашает teacherID. Разрешено только при статусе none,
// иначе backend не вызывается. Ошибки backend возвращаются как есть.
func (e *Engine) SendInvite(ctx context.Context, teacherID string) (*Invitation, error) {
	if teacherID == "" || teacherID == e.dir.Current.ID {
		return nil, ErrInviteNotAllowed
	}
	if e.Status(teacherID).Kind != StatusNone {
		return nil, ErrInviteNotAllowed
	}

	key := inviteKey(teacherID)
	if !e.actions.begin(key) {
		return nil, ErrActionInFlight
	}
	defer e.actions.end(key)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	id, err := e.backend.SendInvite(ctx, teacherID)
	if err != nil {
		e.logger.Warn("Failed to send invite",
			zap.String("teacher_id", teacherID),
			zap.Error(err),
		)
		return nil, err
	}

	inv := Invitation{
		ID:            id,
		SenderID:      e.dir.Current.ID,
		RecipientID:   teacherID,
		Status:        InvitationPending,
		SenderName:    e.dir.Current.Name,
		SenderEmail:   e.dir.Current.Email,
		SenderSubject: e.dir.Current.Subject,
		CreatedAt:     time.Now(),
	}
	if recipient, ok := e.dir.Teacher(teacherID); ok {
		inv.RecipientName = recipient.Name
		inv.RecipientEmail = recipient.Email
		inv.RecipientSubject = recipient.Subject
	}

	e.mu.Lock()
	e.outgoing = append(e.outgoing, inv)
	e.mu.Unlock()

	e.logger.Info("Invitation sent",
		zap.String("invitation_id", id),
		zap.String("teacher_id", teacherID),
	)

	return &inv, nil
}

// AcceptInvite принимает входящее приглашение и добавляет отправителя
// в подключения
func (e *Engine) AcceptInvite(ctx context.Context, inviteID string) (*Connection, error) {
	inv, ok := e.findIncoming(inviteID)
	if !ok {
		return nil, ErrInviteNotFound
	}

	key := acceptKey(inviteID)
	if !e.actions.begin(key) {
		return nil, ErrActionInFlight
	}
	defer e.actions.end(key)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.backend.AcceptInvite(ctx, inviteID); err != nil {
		e.logger.Warn("Failed to accept invite",
			zap.String("invitation_id", inviteID),
			zap.Error(err),
		)
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.removeIncomingLocked(inviteID)

	// Refresh мог уже принести соединение с сервера
	if st := e.statusLocked(inv.SenderID); st.Kind == StatusConnected {
		return st.Connection, nil
	}

	conn := Connection{
		ID:      inv.ID,
		UserID:  inv.SenderID,
		Name:    inv.SenderName,
		Email:   inv.SenderEmail,
		Subject: inv.SenderSubject,
	}
	e.connections = append(e.connections, conn)

	e.logger.Info("Invitation accepted",
		zap.String("invitation_id", inviteID),
		zap.String("teacher_id", conn.UserID),
	)

	return &conn, nil
}

// RejectInvite отклоняет входящее приглашение, подключений не добавляет
func (e *Engine) RejectInvite(ctx context.Context, inviteID string) error {
	if _, ok := e.findIncoming(inviteID); !ok {
		return ErrInviteNotFound
	}

	key := rejectKey(inviteID)
	if !e.actions.begin(key) {
		return ErrActionInFlight
	}
	defer e.actions.end(key)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.backend.RejectInvite(ctx, inviteID); err != nil {
		e.logger.Warn("Failed to reject invite",
			zap.String("invitation_id", inviteID),
			zap.Error(err),
		)
		return err
	}

	e.mu.Lock()
	e.removeIncomingLocked(inviteID)
	e.mu.Unlock()

	e.logger.Info("Invitation rejected", zap.String("invitation_id", inviteID))
	return nil
}

// ============ Вспомогательные методы ============

func (e *Engine) findIncoming(inviteID string) (Invitation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, inv := range e.incoming {
		if inv.ID == inviteID {
			return inv, true
		}
	}
	return Invitation{}, false
}

func (e *Engine) removeIncomingLocked(inviteID string) {
	e.incoming = slices.DeleteFunc(e.incoming, func(inv Invitation) bool {
		return inv.ID == inviteID
	})
}

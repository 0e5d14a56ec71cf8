package facultychat

import (
	"context"
	"strings"
	"sync"
)

// fakeBackend records calls and answers from its fields. Hooks override
// the canned answers when set.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	profile     *Profile
	profileErr  error
	teachers    []Teacher
	teachersErr error
	incoming    []Invitation
	outgoing    []Invitation
	invitesErr  error
	connections []Connection
	connErr     error

	sendInviteID  string
	sendInviteErr error
	acceptErr     error
	rejectErr     error
	// mutate вызывается перед ответом на SendInvite/AcceptInvite/RejectInvite
	mutate func(ctx context.Context, op string) error

	conversation func(ctx context.Context, peerID string, limit int) ([]Message, error)
	sendMessage  func(ctx context.Context, peerID string, msg OutgoingMessage) error
	sent         []OutgoingMessage
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		calls: make(map[string]int),
		profile: &Profile{
			Teacher: Teacher{ID: "t1", Name: "Anna Petrova", Email: "anna@school.test", SchoolID: "s1", Subject: "Math"},
			School:  "Lyceum 1",
		},
		teachers: []Teacher{
			{ID: "t1", Name: "Anna Petrova", Email: "anna@school.test", Subject: "Math"},
			{ID: "t2", Name: "Boris Ivanov", Email: "boris@school.test", Subject: "Physics"},
			{ID: "t3", Name: "Vera Orlova", Email: "vera@school.test", Subject: "Art"},
		},
		sendInviteID: "inv-new",
	}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeBackend) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) CurrentUser(ctx context.Context) (*Profile, error) {
	f.record("CurrentUser")
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeBackend) SchoolTeachers(ctx context.Context) ([]Teacher, error) {
	f.record("SchoolTeachers")
	return f.teachers, f.teachersErr
}

func (f *fakeBackend) MyInvites(ctx context.Context) ([]Invitation, []Invitation, error) {
	f.record("MyInvites")
	if f.invitesErr != nil {
		return nil, nil, f.invitesErr
	}
	return f.incoming, f.outgoing, nil
}

func (f *fakeBackend) AcceptedConnections(ctx context.Context) ([]Connection, error) {
	f.record("AcceptedConnections")
	return f.connections, f.connErr
}

func (f *fakeBackend) SendInvite(ctx context.Context, teacherID string) (string, error) {
	f.record("SendInvite")
	if err := f.runMutate(ctx, "SendInvite"); err != nil {
		return "", err
	}
	if f.sendInviteErr != nil {
		return "", f.sendInviteErr
	}
	return f.sendInviteID, nil
}

func (f *fakeBackend) AcceptInvite(ctx context.Context, invitationID string) error {
	f.record("AcceptInvite")
	if err := f.runMutate(ctx, "AcceptInvite"); err != nil {
		return err
	}
	return f.acceptErr
}

func (f *fakeBackend) RejectInvite(ctx context.Context, invitationID string) error {
	f.record("RejectInvite")
	if err := f.runMutate(ctx, "RejectInvite"); err != nil {
		return err
	}
	return f.rejectErr
}

func (f *fakeBackend) runMutate(ctx context.Context, op string) error {
	if f.mutate == nil {
		return nil
	}
	return f.mutate(ctx, op)
}

func (f *fakeBackend) Conversation(ctx context.Context, peerID string, limit int) ([]Message, error) {
	f.record("Conversation")
	if f.conversation != nil {
		return f.conversation(ctx, peerID, limit)
	}
	return nil, nil
}

func (f *fakeBackend) SendMessage(ctx context.Context, peerID string, msg OutgoingMessage) error {
	f.record("SendMessage")
	if f.sendMessage != nil {
		if err := f.sendMessage(ctx, peerID, msg); err != nil {
			return err
		}
	}
	f.mu.Lock()
	f.sent = append(f.sent, msg)
	f.mu.Unlock()
	return nil
}

// newTestEngine builds an engine over the fake's directory.
func newTestEngine(f *fakeBackend) *Engine {
	dir := &Directory{Current: f.profile.Teacher, School: f.profile.School, Teachers: f.teachers}
	e := NewEngine(f, dir, nil)
	e.Load(f.incoming, f.outgoing, f.connections)
	return e
}

func incomingFrom(id, senderID, name string) Invitation {
	return Invitation{
		ID:            id,
		SenderID:      senderID,
		RecipientID:   "t1",
		Status:        InvitationPending,
		SenderName:    name,
		SenderEmail:   senderID + "@school.test",
		SenderSubject: "Chemistry",
	}
}

func outgoingTo(id, recipientID string) Invitation {
	return Invitation{
		ID:          id,
		SenderID:    "t1",
		RecipientID: recipientID,
		Status:      InvitationPending,
	}
}

func bytesReader(s string) *strings.Reader {
	return strings.NewReader(s)
}

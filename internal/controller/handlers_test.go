package controller

import (
	"context"
	"sync"
	"testing"

	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/Freeeeeet/faculty_chat/internal/repository/memory"
	"github.com/Freeeeeet/faculty_chat/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeResponder struct {
	mu      sync.Mutex
	sent    []*bot.SendMessageParams
	edited  []*bot.EditMessageTextParams
	answers []*bot.AnswerCallbackQueryParams
}

func (f *fakeResponder) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, params)
	return &models.Message{}, nil
}

func (f *fakeResponder) EditMessageText(ctx context.Context, params *bot.EditMessageTextParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, params)
	return &models.Message{}, nil
}

func (f *fakeResponder) AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, params)
	return true, nil
}

const bobChat = int64(777)

type fixture struct {
	controller *BotController
	invites    *service.InviteService
}

func setup(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	logger := zap.NewNop()
	ctx := context.Background()

	chatID := bobChat
	require.NoError(t, store.CreateSchool(ctx, &model.School{ID: "s1", Name: "North High"}))
	require.NoError(t, store.CreateTeacher(ctx, &model.Teacher{ID: "t1", SchoolID: "s1", FullName: "Ada", Email: "ada@north", Subject: "Math"}))
	require.NoError(t, store.CreateTeacher(ctx, &model.Teacher{ID: "t2", SchoolID: "s1", FullName: "Bob", Email: "bob@north", TelegramChatID: &chatID}))

	invites := service.NewInviteService(store, store, nil, logger)
	directory := service.NewDirectoryService(store, store, logger)

	return &fixture{
		controller: NewBotController(nil, directory, invites, logger),
		invites:    invites,
	}
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{Message: &models.Message{ID: 1, Chat: models.Chat{ID: chatID}, Text: text}}
}

func callbackUpdate(chatID int64, data string) *models.Update {
	return &models.Update{CallbackQuery: &models.CallbackQuery{
		ID:   "cb-1",
		From: models.User{ID: chatID},
		Data: data,
		Message: models.MaybeInaccessibleMessage{
			Message: &models.Message{ID: 42, Chat: models.Chat{ID: chatID}, Text: "📩 Ada invited you"},
		},
	}}
}

func TestHandleStart(t *testing.T) {
	f := setup(t)
	r := &fakeResponder{}

	f.controller.handleStart(context.Background(), r, textUpdate(bobChat, "/start"))
	f.controller.handleStart(context.Background(), r, textUpdate(1234, "/start"))

	require.Len(t, r.sent, 2)
	assert.Contains(t, r.sent[0].Text, "Hi, Bob!")
	assert.Contains(t, r.sent[1].Text, "Your chat id is 1234")
}

func TestHandleInvites(t *testing.T) {
	f := setup(t)
	r := &fakeResponder{}
	ctx := context.Background()

	f.controller.handleInvites(ctx, r, textUpdate(bobChat, "/invites"))
	require.Len(t, r.sent, 1)
	assert.Contains(t, r.sent[0].Text, "No pending invitations")

	inv, err := f.invites.SendInvite(ctx, "t1", "t2")
	require.NoError(t, err)

	f.controller.handleInvites(ctx, r, textUpdate(bobChat, "/invites"))
	require.Len(t, r.sent, 2)
	assert.Equal(t, "📩 Ada invited you to Faculty Chat (Math).", r.sent[1].Text)

	markup, ok := r.sent[1].ReplyMarkup.(*models.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, "faculty_accept:"+inv.ID, markup.InlineKeyboard[0][0].CallbackData)
}

func TestHandleInvites_NotLinked(t *testing.T) {
	f := setup(t)
	r := &fakeResponder{}

	f.controller.handleInvites(context.Background(), r, textUpdate(99, "/invites"))
	require.Len(t, r.sent, 1)
	assert.Contains(t, r.sent[0].Text, "not linked")
}

func TestHandleCallback_Accept(t *testing.T) {
	f := setup(t)
	r := &fakeResponder{}
	ctx := context.Background()

	inv, err := f.invites.SendInvite(ctx, "t1", "t2")
	require.NoError(t, err)

	f.controller.handleCallback(ctx, r, callbackUpdate(bobChat, "faculty_accept:"+inv.ID))

	require.Len(t, r.answers, 1)
	assert.False(t, r.answers[0].ShowAlert)
	require.Len(t, r.edited, 1)
	assert.Equal(t, 42, r.edited[0].MessageID)
	assert.Contains(t, r.edited[0].Text, "Invitation accepted")

	connected, err := f.invites.IsConnected(ctx, "t1", "t2")
	require.NoError(t, err)
	assert.True(t, connected)

	// повторное нажатие
	f.controller.handleCallback(ctx, r, callbackUpdate(bobChat, "faculty_accept:"+inv.ID))
	require.Len(t, r.answers, 2)
	assert.True(t, r.answers[1].ShowAlert)
	assert.Equal(t, "❌ invitation is not pending", r.answers[1].Text)
}

func TestHandleCallback_Reject(t *testing.T) {
	f := setup(t)
	r := &fakeResponder{}
	ctx := context.Background()

	inv, err := f.invites.SendInvite(ctx, "t1", "t2")
	require.NoError(t, err)

	f.controller.handleCallback(ctx, r, callbackUpdate(bobChat, "faculty_reject:"+inv.ID))

	require.Len(t, r.edited, 1)
	assert.Contains(t, r.edited[0].Text, "Invitation rejected.")

	incoming, _, err := f.invites.ListInvites(ctx, "t2")
	require.NoError(t, err)
	assert.Empty(t, incoming)
}

func TestHandleCallback_Errors(t *testing.T) {
	f := setup(t)
	r := &fakeResponder{}
	ctx := context.Background()

	f.controller.handleCallback(ctx, r, callbackUpdate(bobChat, "faculty_unknown"))
	f.controller.handleCallback(ctx, r, callbackUpdate(99, "faculty_accept:inv"))

	require.Len(t, r.answers, 2)
	assert.Equal(t, "❌ Invalid button data", r.answers[0].Text)
	assert.Contains(t, r.answers[1].Text, "not linked")
	assert.Empty(t, r.edited)
}

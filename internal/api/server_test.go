package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Freeeeeet/faculty_chat/internal/auth"
	"github.com/Freeeeeet/faculty_chat/internal/dataurl"
	"github.com/Freeeeeet/faculty_chat/internal/model"
	"github.com/Freeeeeet/faculty_chat/internal/repository/memory"
	"github.com/Freeeeeet/faculty_chat/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEnv struct {
	server *Server
	tokens *auth.Tokens
}

func setup(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	logger := zap.NewNop()
	ctx := context.Background()

	require.NoError(t, store.CreateSchool(ctx, &model.School{ID: "s1", Name: "North High"}))
	require.NoError(t, store.CreateSchool(ctx, &model.School{ID: "s2", Name: "South High"}))
	for _, teacher := range []*model.Teacher{
		{ID: "t1", SchoolID: "s1", FullName: "Ada", Email: "ada@north", Subject: "Math"},
		{ID: "t2", SchoolID: "s1", FullName: "Bob", Email: "bob@north", Subject: "Physics"},
		{ID: "x1", SchoolID: "s2", FullName: "Xena", Email: "xena@south"},
	} {
		require.NoError(t, store.CreateTeacher(ctx, teacher))
	}

	invites := service.NewInviteService(store, store, nil, logger)
	tokens := auth.NewTokens("test-secret")

	server := NewServer(&Options{
		DisableReqLogs: true,
		Directory:      service.NewDirectoryService(store, store, logger),
		Invites:        invites,
		Messages:       service.NewMessageService(invites, store, logger),
		Tokens:         tokens,
		Logger:         logger,
	})

	return &testEnv{server: server, tokens: tokens}
}

func (e *testEnv) do(t *testing.T, teacherID, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if teacherID != "" {
		token, err := e.tokens.Issue(teacherID, "", 0)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	env := setup(t)
	rec := env.do(t, "", http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	env := setup(t)

	rec := env.do(t, "", http.MethodGet, Prefix+"/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "user not authenticated", body["error"])

	req := httptest.NewRequest(http.MethodGet, Prefix+"/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	env.server.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMe(t *testing.T) {
	env := setup(t)

	rec := env.do(t, "t1", http.MethodGet, Prefix+"/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "t1", user["id"])
	assert.Equal(t, "Ada", user["fullName"])
	assert.Equal(t, "s1", user["schoolId"])
	assert.Equal(t, "North High", body["school"].(map[string]any)["name"])
}

func TestMe_UnknownTeacher(t *testing.T) {
	env := setup(t)
	rec := env.do(t, "ghost", http.MethodGet, Prefix+"/me", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTeachers_SameSchoolOnly(t *testing.T) {
	env := setup(t)

	rec := env.do(t, "t1", http.MethodGet, Prefix+"/teachers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	teachers := decode(t, rec)["teachers"].([]any)
	require.Len(t, teachers, 2)
	assert.Equal(t, "Ada", teachers[0].(map[string]any)["name"])
	assert.Equal(t, "Bob", teachers[1].(map[string]any)["name"])
}

func TestInviteFlow(t *testing.T) {
	env := setup(t)

	rec := env.do(t, "t1", http.MethodPost, Prefix+"/invites", map[string]string{"teacherId": "t2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inviteID := decode(t, rec)["invitation"].(map[string]any)["id"].(string)
	assert.NotEmpty(t, inviteID)

	rec = env.do(t, "t1", http.MethodPost, Prefix+"/invites", map[string]string{"teacherId": "t2"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "already invited", decode(t, rec)["error"])

	rec = env.do(t, "t2", http.MethodGet, Prefix+"/invites", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	incoming := body["incoming"].([]any)
	require.Len(t, incoming, 1)
	inv := incoming[0].(map[string]any)
	assert.Equal(t, inviteID, inv["id"])
	assert.Equal(t, "t1", inv["senderId"])
	assert.Equal(t, "Ada", inv["senderName"])
	assert.Equal(t, "ada@north", inv["senderEmail"])
	assert.Equal(t, "Math", inv["senderSubject"])
	assert.Equal(t, "pending", inv["status"])
	assert.Empty(t, body["outgoing"])

	rec = env.do(t, "t1", http.MethodPost, Prefix+"/invites/"+inviteID+"/accept", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, "t2", http.MethodPost, Prefix+"/invites/"+inviteID+"/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "t1", http.MethodGet, Prefix+"/connections", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	connections := decode(t, rec)["connections"].([]any)
	require.Len(t, connections, 1)
	conn := connections[0].(map[string]any)
	assert.Equal(t, inviteID, conn["id"])
	assert.Equal(t, "t2", conn["userId"])
	assert.Equal(t, "Bob", conn["name"])
}

func TestSendInvite_Validation(t *testing.T) {
	env := setup(t)

	rec := env.do(t, "t1", http.MethodPost, Prefix+"/invites", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "teacherId is required", decode(t, rec)["error"])

	rec = env.do(t, "t1", http.MethodPost, Prefix+"/invites", map[string]string{"teacherId": "x1"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRejectInvite(t *testing.T) {
	env := setup(t)

	rec := env.do(t, "t1", http.MethodPost, Prefix+"/invites", map[string]string{"teacherId": "t2"})
	require.Equal(t, http.StatusCreated, rec.Code)
	inviteID := decode(t, rec)["invitation"].(map[string]any)["id"].(string)

	rec = env.do(t, "t2", http.MethodPost, Prefix+"/invites/"+inviteID+"/reject", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, "t2", http.MethodGet, Prefix+"/connections", nil)
	assert.Empty(t, decode(t, rec)["connections"])

	rec = env.do(t, "t2", http.MethodPost, Prefix+"/invites/"+inviteID+"/reject", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func connect(t *testing.T, env *testEnv, a, b string) {
	t.Helper()
	rec := env.do(t, a, http.MethodPost, Prefix+"/invites", map[string]string{"teacherId": b})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["invitation"].(map[string]any)["id"].(string)
	rec = env.do(t, b, http.MethodPost, Prefix+"/invites/"+id+"/accept", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMessages(t *testing.T) {
	env := setup(t)

	rec := env.do(t, "t1", http.MethodPost, Prefix+"/conversations/t2/messages", map[string]string{"text": "hello"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	connect(t, env, "t1", "t2")

	rec = env.do(t, "t1", http.MethodPost, Prefix+"/conversations/t2/messages", map[string]string{"text": "hello"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, "t2", http.MethodPost, Prefix+"/conversations/t1/messages", map[string]string{
		"attachmentName": "plan.pdf",
		"attachmentType": "application/pdf",
		"attachmentData": dataurl.Encode("application/pdf", []byte("%PDF")),
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, "t2", http.MethodGet, Prefix+"/conversations/t1?limit=100", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := decode(t, rec)["messages"].([]any)
	require.Len(t, messages, 2)

	first := messages[0].(map[string]any)
	assert.Equal(t, "t1", first["senderId"])
	assert.Equal(t, "t2", first["recipientId"])
	assert.Equal(t, "hello", first["text"])
	assert.NotContains(t, first, "attachmentData")

	second := messages[1].(map[string]any)
	assert.Equal(t, "plan.pdf", second["attachmentName"])
	assert.True(t, strings.HasPrefix(second["attachmentData"].(string), "data:application/pdf;base64,"))
}

func TestMessages_Validation(t *testing.T) {
	env := setup(t)
	connect(t, env, "t1", "t2")

	rec := env.do(t, "t1", http.MethodPost, Prefix+"/conversations/t2/messages", map[string]string{"text": "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, "t1", http.MethodPost, Prefix+"/conversations/t2/messages", map[string]string{
		"attachmentData": dataurl.Encode("text/plain", []byte("x")),
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "attachmentName is required", decode(t, rec)["error"])

	rec = env.do(t, "t1", http.MethodGet, Prefix+"/conversations/t2?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

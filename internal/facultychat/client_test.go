package facultychat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewClient(ClientConfig{BaseURL: ts.URL + "/", Token: "tok"})
	require.NoError(t, err)
	return c
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(ClientConfig{Token: "tok"})
	assert.Error(t, err)

	_, err = NewClient(ClientConfig{BaseURL: "http://localhost"})
	assert.Error(t, err)
}

func TestClient_RequestShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/faculty/conversations/t%2F2", r.URL.EscapedPath())
		assert.Equal(t, "100", r.URL.Query().Get("limit"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"messages": []map[string]any{
				{"id": "m1", "senderId": "t2", "recipientId": "t1", "text": "hi", "createdAt": "2026-03-14T09:00:00Z"},
				{"id": "m2", "senderId": "t1", "recipientId": "t2", "text": "", "attachmentName": "a.pdf", "attachmentType": "application/pdf", "attachmentData": "data:application/pdf;base64,AA==", "createdAt": "2026-03-14T09:01:00Z"},
			},
		})
	})

	msgs, err := c.Conversation(context.Background(), "t/2", ConversationLimit)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Nil(t, msgs[0].Attachment)
	require.NotNil(t, msgs[1].Attachment)
	assert.Equal(t, "a.pdf", msgs[1].Attachment.Name)
}

func TestClient_SendMessageBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["text"])
		assert.NotContains(t, body, "attachmentData")
		assert.NotContains(t, body, "createdAt")

		_, _ = w.Write([]byte(`{"success":true}`))
	})

	require.NoError(t, c.SendMessage(context.Background(), "t2", OutgoingMessage{Text: "hello"}))
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"success":false,"error":"already connected"}`))
	})

	_, err := c.SendInvite(context.Background(), "t2")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "already connected", apiErr.Message)
}

func TestClient_SuccessFalse(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"invitation is not pending"}`))
	})

	err := c.AcceptInvite(context.Background(), "inv-1")
	assert.Equal(t, "invitation is not pending", UserMessage(err))
}

func TestClient_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.AcceptedConnections(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Empty(t, apiErr.Message)
}

func TestClient_CurrentUser(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/faculty/me", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"user":{"id":"t1","fullName":"Anna","email":"a@s","schoolId":"s1","subject":"Math"},"school":{"name":"Lyceum"}}`))
	})

	p, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Teacher{ID: "t1", Name: "Anna", Email: "a@s", SchoolID: "s1", Subject: "Math"}, p.Teacher)
	assert.Equal(t, "Lyceum", p.School)
}

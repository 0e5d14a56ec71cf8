package facultychat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// APIPrefix префикс всех путей faculty API
const APIPrefix = "/api/faculty"

// maxResponseSize предел тела одного ответа, полное окно переписки
// с вложениями сильно меньше
const maxResponseSize = 256 << 20

// ClientConfig настройки Client
type ClientConfig struct {
	// BaseURL адрес backend, например "http://localhost:8080"
	BaseURL string
	// Token bearer токен текущего учителя
	Token string
	// HTTPClient для всех запросов. Если nil, используется клиент
	// с таймаутом DefaultRequestTimeout.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client реализует Backend поверх REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ Backend = (*Client)(nil)

// NewClient создаёт REST клиент
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("facultychat: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("facultychat: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("facultychat: Token is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultRequestTimeout}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// ============ Форматы ответа ============

type (
	envelope struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}

	profileResponse struct {
		User struct {
			ID       string `json:"id"`
			FullName string `json:"fullName"`
			Email    string `json:"email"`
			SchoolID string `json:"schoolId"`
			Subject  string `json:"subject"`
		} `json:"user"`
		School struct {
			Name string `json:"name"`
		} `json:"school"`
	}

	teachersResponse struct {
		Teachers []Teacher `json:"teachers"`
	}

	invitesResponse struct {
		Incoming []Invitation `json:"incoming"`
		Outgoing []Invitation `json:"outgoing"`
	}

	connectionsResponse struct {
		Connections []Connection `json:"connections"`
	}

	sendInviteResponse struct {
		Invitation struct {
			ID string `json:"id"`
		} `json:"invitation"`
	}

	wireMessage struct {
		ID             string    `json:"id,omitempty"`
		SenderID       string    `json:"senderId,omitempty"`
		RecipientID    string    `json:"recipientId,omitempty"`
		Text           string    `json:"text"`
		AttachmentName string    `json:"attachmentName,omitempty"`
		AttachmentType string    `json:"attachmentType,omitempty"`
		AttachmentData string    `json:"attachmentData,omitempty"`
		CreatedAt      time.Time `json:"createdAt,omitzero"`
	}

	messagesResponse struct {
		Messages []wireMessage `json:"messages"`
	}
)

func (w wireMessage) message() Message {
	msg := Message{
		ID:          w.ID,
		SenderID:    w.SenderID,
		RecipientID: w.RecipientID,
		Text:        w.Text,
		CreatedAt:   w.CreatedAt,
	}
	if w.AttachmentData != "" {
		msg.Attachment = &Attachment{
			Name:    w.AttachmentName,
			Type:    w.AttachmentType,
			DataURL: w.AttachmentData,
		}
	}
	return msg
}

// ============ Методы Backend ============

func (c *Client) CurrentUser(ctx context.Context) (*Profile, error) {
	var resp profileResponse
	if err := c.do(ctx, http.MethodGet, "/me", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}

	return &Profile{
		Teacher: Teacher{
			ID:       resp.User.ID,
			Name:     resp.User.FullName,
			Email:    resp.User.Email,
			SchoolID: resp.User.SchoolID,
			Subject:  resp.User.Subject,
		},
		School: resp.School.Name,
	}, nil
}

func (c *Client) SchoolTeachers(ctx context.Context) ([]Teacher, error) {
	var resp teachersResponse
	if err := c.do(ctx, http.MethodGet, "/teachers", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("get school teachers: %w", err)
	}
	return resp.Teachers, nil
}

func (c *Client) MyInvites(ctx context.Context) ([]Invitation, []Invitation, error) {
	var resp invitesResponse
	if err := c.do(ctx, http.MethodGet, "/invites", nil, nil, &resp); err != nil {
		return nil, nil, fmt.Errorf("get invites: %w", err)
	}
	return resp.Incoming, resp.Outgoing, nil
}

func (c *Client) AcceptedConnections(ctx context.Context) ([]Connection, error) {
	var resp connectionsResponse
	if err := c.do(ctx, http.MethodGet, "/connections", nil, nil, &resp); err != nil {
		return nil, fmt.Errorf("get connections: %w", err)
	}
	return resp.Connections, nil
}

func (c *Client) SendInvite(ctx context.Context, teacherID string) (string, error) {
	body := map[string]string{"teacherId": teacherID}

	var resp sendInviteResponse
	if err := c.do(ctx, http.MethodPost, "/invites", nil, body, &resp); err != nil {
		return "", fmt.Errorf("send invite: %w", err)
	}
	return resp.Invitation.ID, nil
}

func (c *Client) AcceptInvite(ctx context.Context, invitationID string) error {
	path := "/invites/" + url.PathEscape(invitationID) + "/accept"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("accept invite: %w", err)
	}
	return nil
}

func (c *Client) RejectInvite(ctx context.Context, invitationID string) error {
	path := "/invites/" + url.PathEscape(invitationID) + "/reject"
	if err := c.do(ctx, http.MethodPost, path, nil, nil, nil); err != nil {
		return fmt.Errorf("reject invite: %w", err)
	}
	return nil
}

func (c *Client) Conversation(ctx context.Context, peerID string, limit int) ([]Message, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var resp messagesResponse
	path := "/conversations/" + url.PathEscape(peerID)
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	messages := make([]Message, 0, len(resp.Messages))
	for _, w := range resp.Messages {
		messages = append(messages, w.message())
	}
	return messages, nil
}

func (c *Client) SendMessage(ctx context.Context, peerID string, msg OutgoingMessage) error {
	body := wireMessage{Text: msg.Text}
	if msg.Attachment != nil {
		body.AttachmentName = msg.Attachment.Name
		body.AttachmentType = msg.Attachment.Type
		body.AttachmentData = msg.Attachment.DataURL
	}

	path := "/conversations/" + url.PathEscape(peerID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, nil, body, nil); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// ============ Транспорт ============

// do выполняет один JSON запрос. Ответы не 2xx и {"success": false}
// возвращаются как *APIError.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, requestBody, out any) error {
	requestURL := c.baseURL + APIPrefix + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set("Authorization", "Bearer "+c.token)
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	var env envelope
	if jsonErr := json.Unmarshal(responseBody, &env); jsonErr != nil {
		if response.StatusCode >= 200 && response.StatusCode < 300 {
			return fmt.Errorf("decode response from %s %s: %w", method, path, jsonErr)
		}
		// не JSON: прокси или упавший сервер
		c.logger.Debug("Non-JSON error response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", response.StatusCode),
		)
		return &APIError{StatusCode: response.StatusCode}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 || !env.Success {
		return &APIError{StatusCode: response.StatusCode, Message: env.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(responseBody, out); err != nil {
		return fmt.Errorf("decode response from %s %s: %w", method, path, err)
	}
	return nil
}

// Package bot is the Telegram transport: a thin API client, a webhook
// server, and a long-poll loop that feed share links into the resolver.
package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/milldrew/journeylog/internal/resilience"
)

const telegramAPIBase = "https://api.telegram.org"

// Update is one incoming Telegram update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from"`
	Text      string `json:"text"`
}

// Chat identifies the conversation a message belongs to.
type Chat struct {
	ID int64 `json:"id"`
}

// User identifies a message sender.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Client is a minimal Telegram Bot API client covering the methods the
// transport needs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API base URL; used by tests.
func WithBaseURL(base string) ClientOption {
	return func(c *Client) { c.baseURL = base }
}

// NewClient creates a Telegram API client for the given bot token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    telegramAPIBase,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (c *Client) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "telegram: marshal %s", method)
	}

	raw, err := resilience.Do(ctx, resilience.DefaultPolicy("telegram "+method), func(ctx context.Context) ([]byte, error) {
		return c.post(ctx, method, body)
	})
	if err != nil {
		return err
	}

	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return eris.Wrapf(err, "telegram: decode %s response", method)
	}
	if !api.OK {
		return eris.Errorf("telegram: %s failed: %s", method, api.Description)
	}
	if result != nil {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return eris.Wrapf(err, "telegram: decode %s result", method)
		}
	}
	return nil
}

func (c *Client) post(ctx context.Context, method string, body []byte) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "telegram: build %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "telegram: %s", method)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "telegram: read %s response", method)
	}
	if resilience.RetryableStatus(resp.StatusCode) {
		return nil, resilience.Transient(eris.Errorf("telegram: %s returned %d", method, resp.StatusCode), resp.StatusCode)
	}
	return raw, nil
}

// SendMessage sends plain text to a chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	return c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	}, nil)
}

// GetUpdates long-polls for updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	var updates []Update
	err := c.call(ctx, "getUpdates", map[string]any{
		"offset":  offset,
		"timeout": int(timeout.Seconds()),
	}, &updates)
	if err != nil {
		return nil, err
	}
	return updates, nil
}

// DeleteWebhook clears any registered webhook so long polling can take over.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", map[string]any{}, nil)
}

// SetWebhook registers the webhook URL with an optional secret token.
func (c *Client) SetWebhook(ctx context.Context, webhookURL, secret string) error {
	payload := map[string]any{"url": webhookURL}
	if secret != "" {
		payload["secret_token"] = secret
	}
	return c.call(ctx, "setWebhook", payload, nil)
}

// SendDocument uploads a file to a chat via multipart form data.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, contents io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("chat_id", strconv.FormatInt(chatID, 10)); err != nil {
		return eris.Wrap(err, "telegram: write chat_id field")
	}
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return eris.Wrap(err, "telegram: create document part")
	}
	if _, err := io.Copy(part, contents); err != nil {
		return eris.Wrap(err, "telegram: copy document")
	}
	if err := mw.Close(); err != nil {
		return eris.Wrap(err, "telegram: finish multipart body")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return eris.Wrap(err, "telegram: build sendDocument request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "telegram: sendDocument")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "telegram: read sendDocument response")
	}
	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return eris.Wrap(err, "telegram: decode sendDocument response")
	}
	if !api.OK {
		return eris.Errorf("telegram: sendDocument failed: %s", api.Description)
	}
	return nil
}

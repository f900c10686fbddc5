package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// Client talks to the Telegram Bot API over HTTPS.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a new Bot API client.
func NewClient(token string) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	timeout := 30 * time.Second
	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		token:   token,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// WithBaseURL overrides the API endpoint, primarily for tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// WebhookPath derives the webhook route from the bot token. The numeric bot
// ID before the colon is public; the secret part never appears in the URL.
func WebhookPath(token string) string {
	id, _, _ := strings.Cut(token, ":")
	return "/webhook/" + id
}

// SendMessageParams are the arguments to SendMessage.
type SendMessageParams struct {
	ChatID      int64                 `json:"chat_id"`
	Text        string                `json:"text"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// SendMessage sends a text message and returns the sent message.
func (c *Client) SendMessage(ctx context.Context, p SendMessageParams) (*Message, error) {
	var msg Message
	if err := c.call(ctx, "sendMessage", p, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	payload := struct {
		ChatID    int64  `json:"chat_id"`
		MessageID int    `json:"message_id"`
		Text      string `json:"text"`
	}{chatID, messageID, text}
	return c.call(ctx, "editMessageText", payload, nil)
}

// DeleteMessage removes a previously sent message.
func (c *Client) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	payload := struct {
		ChatID    int64 `json:"chat_id"`
		MessageID int   `json:"message_id"`
	}{chatID, messageID}
	return c.call(ctx, "deleteMessage", payload, nil)
}

// SendMediaGroup sends a grouped media message. Telegram caps groups at 10
// items; callers batch accordingly.
func (c *Client) SendMediaGroup(ctx context.Context, chatID int64, media []InputMedia) error {
	payload := struct {
		ChatID int64        `json:"chat_id"`
		Media  []InputMedia `json:"media"`
	}{chatID, media}
	return c.call(ctx, "sendMediaGroup", payload, nil)
}

// AnswerCallbackQuery acknowledges a button press.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string) error {
	payload := struct {
		CallbackQueryID string `json:"callback_query_id"`
	}{callbackQueryID}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

// GetFile resolves the remote-storage descriptor of an attachment.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	payload := struct {
		FileID string `json:"file_id"`
	}{fileID}
	var f File
	if err := c.call(ctx, "getFile", payload, &f); err != nil {
		return File{}, err
	}
	return f, nil
}

// FileURL resolves an attachment file ID to its download URL.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	f, err := c.GetFile(ctx, fileID)
	if err != nil {
		return "", err
	}
	if f.FilePath == "" {
		return "", errors.New("getFile returned empty file_path")
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, f.FilePath), nil
}

// SetWebhook registers the webhook endpoint with Telegram.
func (c *Client) SetWebhook(ctx context.Context, url string) error {
	payload := struct {
		URL string `json:"url"`
	}{url}
	return c.call(ctx, "setWebhook", payload, nil)
}

// DeleteWebhook deregisters the webhook endpoint.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	return c.call(ctx, "deleteWebhook", struct{}{}, nil)
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result,omitempty"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

func (c *Client) call(ctx context.Context, method string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return fmt.Errorf("telegram %s timeout: %w", method, err)
		}
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("telegram %s response parse: %w", method, err)
	}
	if !parsed.OK {
		return fmt.Errorf("telegram %s error %d: %s", method, parsed.ErrorCode, parsed.Description)
	}
	if out != nil && len(parsed.Result) > 0 {
		if err := json.Unmarshal(parsed.Result, out); err != nil {
			return fmt.Errorf("telegram %s result parse: %w", method, err)
		}
	}
	return nil
}

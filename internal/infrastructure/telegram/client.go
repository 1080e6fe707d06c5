// Package telegram is a minimal Bot API client covering the methods this
// service uses: long polling, chat messaging, inline keyboard edits and
// file downloads.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	infraconfig "github.com/shopbot/backend/internal/infrastructure/config"
)

const (
	defaultAPIBase = "https://api.telegram.org"

	// maxResponseSize limits API response bodies to prevent memory exhaustion
	maxResponseSize = 10 * 1024 * 1024
	// maxFileSize matches the Bot API's own 20MB download ceiling
	maxFileSize = 20 * 1024 * 1024

	defaultRequestTimeout = 10 * time.Second
	defaultPollTimeout    = 30 * time.Second
)

// APIError is a Bot API rejection
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %d - %s", e.Code, e.Description)
}

// IsNotModified reports whether err is the benign race of editing a
// message to content identical to what it already shows
func IsNotModified(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && strings.Contains(apiErr.Description, "message is not modified")
}

// Client talks to the Telegram Bot API over HTTPS
type Client struct {
	token       string
	apiBase     string
	pollTimeout time.Duration

	// getUpdates holds the connection open for the long-poll window, so it
	// gets its own client with a wider timeout
	httpClient *http.Client
	pollClient *http.Client
}

// NewClient creates a Bot API client from configuration
func NewClient(cfg *infraconfig.TelegramConfig) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("telegram configuration is required")
	}
	if cfg.Token == "" {
		return nil, errors.New("telegram bot token is required")
	}

	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	apiBase = strings.TrimRight(apiBase, "/")

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = defaultPollTimeout
	}

	return &Client{
		token:       cfg.Token,
		apiBase:     apiBase,
		pollTimeout: pollTimeout,
		httpClient:  &http.Client{Timeout: requestTimeout},
		pollClient:  &http.Client{Timeout: pollTimeout + requestTimeout},
	}, nil
}

// GetMe fetches the bot's own account, validating the token
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	result, err := c.call(ctx, c.httpClient, "getMe", nil)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(result, &user); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse getMe response: %w", err)
	}
	return &user, nil
}

type getUpdatesParams struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout,omitempty"`
	AllowedUpdates []string `json:"allowed_updates,omitempty"`
}

// GetUpdates long-polls for the next batch of updates. Offset must be one
// past the last update already consumed.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	params := getUpdatesParams{
		Offset:         offset,
		Timeout:        int(c.pollTimeout / time.Second),
		AllowedUpdates: []string{"message", "callback_query"},
	}

	result, err := c.call(ctx, c.pollClient, "getUpdates", params)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse updates: %w", err)
	}
	return updates, nil
}

// SendMessageParams is the payload of a sendMessage call. ReplyMarkup
// accepts any of the keyboard markup types.
type SendMessageParams struct {
	ChatID                int64  `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode,omitempty"`
	ReplyMarkup           any    `json:"reply_markup,omitempty"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview,omitempty"`
}

// SendMessage posts a new chat message
func (c *Client) SendMessage(ctx context.Context, params SendMessageParams) (*Message, error) {
	result, err := c.call(ctx, c.httpClient, "sendMessage", params)
	if err != nil {
		return nil, err
	}
	var message Message
	if err := json.Unmarshal(result, &message); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse sent message: %w", err)
	}
	return &message, nil
}

// EditMessageTextParams is the payload of an editMessageText call
type EditMessageTextParams struct {
	ChatID      int64                 `json:"chat_id"`
	MessageID   int64                 `json:"message_id"`
	Text        string                `json:"text"`
	ParseMode   string                `json:"parse_mode,omitempty"`
	ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup,omitempty"`
}

// EditMessageText rewrites an existing message in place. Editing a message
// to its current content is a known benign race and is absorbed as
// success with a nil message.
func (c *Client) EditMessageText(ctx context.Context, params EditMessageTextParams) (*Message, error) {
	result, err := c.call(ctx, c.httpClient, "editMessageText", params)
	if err != nil {
		if IsNotModified(err) {
			return nil, nil
		}
		return nil, err
	}
	var message Message
	if err := json.Unmarshal(result, &message); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse edited message: %w", err)
	}
	return &message, nil
}

type answerCallbackQueryParams struct {
	CallbackQueryID string `json:"callback_query_id"`
	Text            string `json:"text,omitempty"`
}

// AnswerCallbackQuery acknowledges a button press, clearing the client's
// loading spinner
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID, text string) error {
	params := answerCallbackQueryParams{
		CallbackQueryID: callbackQueryID,
		Text:            text,
	}
	_, err := c.call(ctx, c.httpClient, "answerCallbackQuery", params)
	return err
}

// SendPhotoParams is the payload of a sendPhoto call. Photo is a file id
// already hosted by the Bot API.
type SendPhotoParams struct {
	ChatID      int64  `json:"chat_id"`
	Photo       string `json:"photo"`
	Caption     string `json:"caption,omitempty"`
	ParseMode   string `json:"parse_mode,omitempty"`
	ReplyMarkup any    `json:"reply_markup,omitempty"`
}

// SendPhoto posts a photo message by file id
func (c *Client) SendPhoto(ctx context.Context, params SendPhotoParams) (*Message, error) {
	result, err := c.call(ctx, c.httpClient, "sendPhoto", params)
	if err != nil {
		return nil, err
	}
	var message Message
	if err := json.Unmarshal(result, &message); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse sent message: %w", err)
	}
	return &message, nil
}

type getFileParams struct {
	FileID string `json:"file_id"`
}

// GetFile resolves a file id into a download path
func (c *Client) GetFile(ctx context.Context, fileID string) (*File, error) {
	result, err := c.call(ctx, c.httpClient, "getFile", getFileParams{FileID: fileID})
	if err != nil {
		return nil, err
	}
	var file File
	if err := json.Unmarshal(result, &file); err != nil {
		return nil, fmt.Errorf("telegram: failed to parse file info: %w", err)
	}
	return &file, nil
}

// DownloadFile fetches the raw bytes of a hosted file. The second return
// is the content type the file server reported.
func (c *Client) DownloadFile(ctx context.Context, fileID string) ([]byte, string, error) {
	file, err := c.GetFile(ctx, fileID)
	if err != nil {
		return nil, "", err
	}
	if file.FilePath == "" {
		return nil, "", fmt.Errorf("telegram: file %s has no download path", fileID)
	}

	url := c.apiBase + "/file/bot" + c.token + "/" + file.FilePath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("telegram: failed to create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("telegram: download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("telegram: download failed: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize))
	if err != nil {
		return nil, "", fmt.Errorf("telegram: failed to read file body: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// call posts one Bot API method and unwraps the response envelope
func (c *Client) call(ctx context.Context, httpClient *http.Client, method string, params any) (json.RawMessage, error) {
	var body io.Reader
	if params != nil {
		payload, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("telegram: failed to marshal %s params: %w", method, err)
		}
		body = bytes.NewReader(payload)
	}

	url := c.apiBase + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("telegram: %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to read %s response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("telegram: %s returned HTTP %d with unparseable body", method, resp.StatusCode)
	}
	if !envelope.OK {
		return nil, &APIError{Code: envelope.ErrorCode, Description: envelope.Description}
	}

	return envelope.Result, nil
}

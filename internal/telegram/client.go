// Package telegram is a minimal Bot API client covering exactly what the
// bot needs: long-polling updates, fetching photo files, and sending
// threaded replies.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

type Config struct {
	BotToken    string
	BaseURL     string        // default https://api.telegram.org
	PollTimeout time.Duration // long-poll timeout for getUpdates, default 30s
}

type Client struct {
	baseURL     string
	botToken    string
	pollTimeout time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	token := strings.TrimSpace(cfg.BotToken)
	if err := validateBotToken(token); err != nil {
		return nil, err
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	pollTimeout := cfg.PollTimeout
	if pollTimeout <= 0 {
		pollTimeout = 30 * time.Second
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		botToken:    token,
		pollTimeout: pollTimeout,
		// the http timeout must outlive the long poll
		httpClient: &http.Client{Timeout: pollTimeout + 15*time.Second},
		logger:     logger,
	}, nil
}

func validateBotToken(token string) error {
	parts := strings.Split(token, ":")
	if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
		return fmt.Errorf("bot token must look like '<digits>:<secret>'")
	}
	for _, ch := range parts[0] {
		if ch < '0' || ch > '9' {
			return fmt.Errorf("bot token prefix must be numeric")
		}
	}
	if len(parts[1]) < 8 {
		return fmt.Errorf("bot token secret looks too short")
	}
	return nil
}

// Update is one element of a getUpdates response.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

type Message struct {
	MessageID    int64       `json:"message_id"`
	Chat         Chat        `json:"chat"`
	From         *User       `json:"from"`
	Date         int64       `json:"date"`
	MediaGroupID string      `json:"media_group_id"`
	Photo        []PhotoSize `json:"photo"`
	Caption      string      `json:"caption"`
}

type Chat struct {
	ID int64 `json:"id"`
}

type User struct {
	ID    int64 `json:"id"`
	IsBot bool  `json:"is_bot"`
}

// PhotoSize is one rendition of a photo; Telegram lists them smallest first.
type PhotoSize struct {
	FileID       string `json:"file_id"`
	FileUniqueID string `json:"file_unique_id"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	FileSize     int64  `json:"file_size"`
}

type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
}

type updatesResponse struct {
	OK          bool     `json:"ok"`
	Result      []Update `json:"result"`
	Description string   `json:"description"`
}

type fileResponse struct {
	OK          bool   `json:"ok"`
	Result      File   `json:"result"`
	Description string `json:"description"`
}

type sendResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// GetUpdates long-polls the Bot API for new updates starting at offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	q := url.Values{}
	if offset > 0 {
		q.Set("offset", strconv.FormatInt(offset, 10))
	}
	q.Set("timeout", strconv.Itoa(int(c.pollTimeout/time.Second)))
	q.Set("allowed_updates", `["message"]`)

	endpoint := fmt.Sprintf("%s/bot%s/getUpdates?%s", c.baseURL, c.botToken, q.Encode())
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates: %w", err)
	}

	var resp updatesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("telegram getUpdates decode: %w", err)
	}
	if !resp.OK {
		return nil, fmt.Errorf("telegram getUpdates: %s", resp.Description)
	}
	return resp.Result, nil
}

// GetFile resolves a file_id to a downloadable file path.
func (c *Client) GetFile(ctx context.Context, fileID string) (File, error) {
	q := url.Values{}
	q.Set("file_id", fileID)

	endpoint := fmt.Sprintf("%s/bot%s/getFile?%s", c.baseURL, c.botToken, q.Encode())
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return File{}, fmt.Errorf("telegram getFile: %w", err)
	}

	var resp fileResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return File{}, fmt.Errorf("telegram getFile decode: %w", err)
	}
	if !resp.OK {
		return File{}, fmt.Errorf("telegram getFile: %s", resp.Description)
	}
	return resp.Result, nil
}

// DownloadFile fetches the raw bytes behind a resolved file path.
func (c *Client) DownloadFile(ctx context.Context, filePath string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.botToken, strings.TrimPrefix(filePath, "/"))
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("telegram download: %w", err)
	}
	return body, nil
}

// SendReply sends text to chatID threaded under replyTo, Markdown-rendered.
func (c *Client) SendReply(ctx context.Context, chatID, replyTo int64, text string) error {
	payload := map[string]any{
		"chat_id":             chatID,
		"text":                text,
		"reply_to_message_id": replyTo,
		"parse_mode":          "Markdown",
	}
	bs, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("telegram sendMessage encode: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(bs)))
	if err != nil {
		return fmt.Errorf("telegram sendMessage request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("telegram sendMessage: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram sendMessage status %d: %s", resp.StatusCode, truncateBody(body))
	}
	var sr sendResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return fmt.Errorf("telegram sendMessage decode: %w", err)
	}
	if !sr.OK {
		return fmt.Errorf("telegram sendMessage: %s", sr.Description)
	}

	c.logger.Debug("telegram.reply_sent", "chat_id", chatID, "reply_to", replyTo, "text_len", len(text))
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, truncateBody(body))
	}
	return body, nil
}

func truncateBody(b []byte) string {
	const max = 512
	if len(b) <= max {
		return string(b)
	}
	return string(b[:max]) + "...(truncated)"
}

// Package telegram delivers posts to a channel through the Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/deusflow/newsrelay/internal/logger"
	"github.com/deusflow/newsrelay/internal/retry"
)

const (
	captionLimit = 1024 // bytes, Bot API caption budget
	messageLimit = 4096 // bytes, Bot API text budget
	maxGroupSize = 10   // photos per media group
)

type Publisher struct {
	token    string
	chatID   string
	baseURL  string
	client   *http.Client
	retryCfg retry.RetryConfig
}

func NewPublisher(token, chatID string, timeout time.Duration) *Publisher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Publisher{
		token:    token,
		chatID:   chatID,
		baseURL:  "https://api.telegram.org",
		client:   &http.Client{Timeout: timeout},
		retryCfg: retry.RetryConfig{MaxAttempts: 3, Delay: time.Second, Backoff: true},
	}
}

// SendMessage posts a plain HTML-formatted text message.
func (p *Publisher) SendMessage(ctx context.Context, text string) error {
	payload := map[string]interface{}{
		"chat_id":                  p.chatID,
		"text":                     truncate(text, messageLimit),
		"parse_mode":               "HTML",
		"disable_web_page_preview": true,
	}
	return p.post(ctx, "sendMessage", payload)
}

// SendVideo posts a single video with an HTML caption.
func (p *Publisher) SendVideo(ctx context.Context, videoURL, caption string) error {
	payload := map[string]interface{}{
		"chat_id":    p.chatID,
		"video":      videoURL,
		"caption":    truncate(caption, captionLimit),
		"parse_mode": "HTML",
	}
	return p.post(ctx, "sendVideo", payload)
}

// SendPhotoGroup posts up to ten photos as one media group; the first photo
// carries the caption.
func (p *Publisher) SendPhotoGroup(ctx context.Context, photoURLs []string, caption string) error {
	if len(photoURLs) == 0 {
		return fmt.Errorf("no photos to send")
	}
	if len(photoURLs) > maxGroupSize {
		photoURLs = photoURLs[:maxGroupSize]
	}

	media := make([]map[string]interface{}, len(photoURLs))
	for i, url := range photoURLs {
		media[i] = map[string]interface{}{
			"type":  "photo",
			"media": url,
		}
	}
	media[0]["caption"] = truncate(caption, captionLimit)
	media[0]["parse_mode"] = "HTML"

	payload := map[string]interface{}{
		"chat_id": p.chatID,
		"media":   media,
	}
	return p.post(ctx, "sendMediaGroup", payload)
}

// post sends one Bot API call with transport-level retries.
func (p *Publisher) post(ctx context.Context, method string, payload map[string]interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error make JSON: %v", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", p.baseURL, p.token, method)

	return retry.WithRetry(ctx, p.retryCfg, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(req)
		if err != nil {
			return fmt.Errorf("error HTTP request: %v", err)
		}
		defer func() {
			if err := resp.Body.Close(); err != nil {
				logger.Warn("failed to close response body", "error", err)
			}
		}()

		if resp.StatusCode != http.StatusOK {
			respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
			return fmt.Errorf("telegram API error: %s status %d: %s", method, resp.StatusCode, string(respBody))
		}
		return nil
	})
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}

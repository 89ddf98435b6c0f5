// Package telegram posts cycle digests to a Telegram chat.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier renders analysis-cycle digests and sends them via the Telegram
// bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishDigest renders the digest as a plain-text summary and posts it to
// the configured chat.
func (n *Notifier) PublishDigest(ctx context.Context, digest domain.CycleDigest) error {
	if n.botToken == "" || n.chatID == "" {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatDigest(digest))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}

func formatDigest(d domain.CycleDigest) string {
	return fmt.Sprintf(
		"Analysis cycle complete.\nFetched: %d\nNew articles: %d\nDeduplicated: %d\nNo tracked organization: %d\nDropped writes: %d",
		d.Fetched, d.Ingested, d.Deduplicated, d.Skipped, d.Dropped)
}

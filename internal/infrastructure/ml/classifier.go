// Package ml talks to the external classification service over HTTP.
package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

// Client sends article text to the inference service and decodes the
// sentiment/topic response.
type Client struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ ports.Classifier = (*Client)(nil)

// NewClient creates a reusable HTTP client. Model inference can be slow, so
// the timeout is generous.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: 2 * time.Minute},
	}
}

// Classify posts the text and returns the sentiment score with the ranked
// topic/probability list. Contract checks on the label set are left to the
// ingestion pipeline.
func (c *Client) Classify(ctx context.Context, text string) (domain.Classification, error) {
	payload := map[string]any{"text": text}

	var resp struct {
		Sentiment float64 `json:"sentiment"`
		Topics    []struct {
			Label       string  `json:"label"`
			Probability float64 `json:"probability"`
		} `json:"topics"`
	}

	if err := c.post(ctx, "/classify", payload, &resp); err != nil {
		return domain.Classification{}, err
	}

	result := domain.Classification{Sentiment: resp.Sentiment}
	for _, topic := range resp.Topics {
		result.Topics = append(result.Topics, domain.TopicScore{
			Label:       topic.Label,
			Probability: topic.Probability,
		})
	}

	return result, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// Package search implements the news-search capability on top of the Google
// News RSS endpoint, with optional full-article extraction.
package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

// Client searches Google News RSS for a single term and scrapes full article
// bodies on request.
type Client struct {
	baseURL  string
	language string
	client   *http.Client
	parser   *gofeed.Parser
}

var _ ports.SearchProvider = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets a sane default timeout.
func NewClient(baseURL, language string, client *http.Client) *Client {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	if language == "" {
		language = "en"
	}
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		language: language,
		client:   client,
		parser:   gofeed.NewParser(),
	}
}

// Search queries the RSS search feed for the given term and returns every
// item with its parsed publication time. Item descriptions arrive as HTML
// snippets and are flattened to plain text for the body.
func (c *Client) Search(ctx context.Context, term string) ([]domain.RawArticle, error) {
	feedURL, err := c.buildSearchURL(term)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "esgmonitor/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: unexpected status %s", term, resp.Status)
	}

	feed, err := c.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	articles := make([]domain.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		publishedAt := time.Now().UTC()
		if item.PublishedParsed != nil {
			publishedAt = item.PublishedParsed.UTC()
		}

		articles = append(articles, domain.RawArticle{
			Title:       strings.TrimSpace(item.Title),
			Body:        flattenHTML(item.Description),
			Link:        item.Link,
			PublishedAt: publishedAt,
		})
	}

	return articles, nil
}

// FetchFullText downloads the page behind link and extracts the readable
// article text. An empty extraction is reported as an error so callers keep
// their fallback body.
func (c *Client) FetchFullText(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "esgmonitor/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", link, resp.Status)
	}

	pageURL, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("invalid link %s: %w", link, err)
	}

	article, err := readability.FromReader(resp.Body, pageURL)
	if err != nil {
		return "", fmt.Errorf("extract article: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable text at %s", link)
	}

	return text, nil
}

func (c *Client) buildSearchURL(term string) (string, error) {
	parsed, err := url.Parse(c.baseURL + "/rss/search")
	if err != nil {
		return "", fmt.Errorf("invalid search url: %w", err)
	}

	query := parsed.Query()
	query.Set("q", term)
	query.Set("hl", c.language)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// flattenHTML strips markup from an RSS description snippet.
func flattenHTML(snippet string) string {
	if snippet == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return strings.TrimSpace(snippet)
	}

	return strings.TrimSpace(doc.Text())
}

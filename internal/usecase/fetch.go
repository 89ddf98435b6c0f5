package usecase

import (
	"context"
	"log/slog"
	"sync"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

// FetchStage partitions search terms across concurrent workers and collects
// every hit into one shared queue.
type FetchStage struct {
	search     ports.SearchProvider
	maxWorkers int
	scrapeFull bool
	logger     *slog.Logger
}

// NewFetchStage wires the search capability into the concurrent stage.
func NewFetchStage(search ports.SearchProvider, maxWorkers int, scrapeFull bool, logger *slog.Logger) *FetchStage {
	return &FetchStage{
		search:     search,
		maxWorkers: maxWorkers,
		scrapeFull: scrapeFull,
		logger:     logger,
	}
}

// PartitionTerms splits terms into min(len(terms), maxWorkers) chunks. Each
// of the first k-1 chunks holds len/k terms; the last chunk absorbs the
// remainder, so the concatenation of all chunks reproduces the input exactly.
func PartitionTerms(terms []string, maxWorkers int) [][]string {
	k := len(terms)
	if maxWorkers < k {
		k = maxWorkers
	}
	if k <= 0 {
		return nil
	}

	size := len(terms) / k
	chunks := make([][]string, 0, k)
	for i := 0; i < k; i++ {
		start := i * size
		end := start + size
		if i == k-1 {
			end = len(terms)
		}
		chunks = append(chunks, terms[start:end])
	}

	return chunks
}

// Run searches every term concurrently and returns the unordered multiset of
// fetched articles. Per-term search failures are logged and skipped; the join
// point is "all workers have returned".
func (f *FetchStage) Run(ctx context.Context, terms []string) []domain.RawArticle {
	chunks := PartitionTerms(terms, f.maxWorkers)
	if len(chunks) == 0 {
		return nil
	}

	queue := make(chan domain.RawArticle, 64)

	var wg sync.WaitGroup
	for _, chunk := range chunks {
		wg.Add(1)
		go func(assigned []string) {
			defer wg.Done()
			f.searchTerms(ctx, assigned, queue)
		}(chunk)
	}

	go func() {
		wg.Wait()
		close(queue)
	}()

	var collected []domain.RawArticle
	for article := range queue {
		collected = append(collected, article)
	}

	f.logger.Info("fetch stage done", "terms", len(terms), "workers", len(chunks), "articles", len(collected))
	return collected
}

func (f *FetchStage) searchTerms(ctx context.Context, terms []string, queue chan<- domain.RawArticle) {
	for _, term := range terms {
		articles, err := f.search.Search(ctx, term)
		if err != nil {
			f.logger.Warn("search failed, skipping term", "term", term, "error", err)
			continue
		}

		f.logger.Info("search term done", "term", term, "articles", len(articles))

		for _, article := range articles {
			article.Text = f.resolveText(ctx, article)
			queue <- article
		}
	}
}

// resolveText picks the article body: the provider body, optionally replaced
// by the scraped full text, with the headline as last resort. Scrape failures
// degrade to the fallback and never fail the fetch.
func (f *FetchStage) resolveText(ctx context.Context, article domain.RawArticle) string {
	text := article.Body
	if text == "" {
		text = article.Title
	}

	if !f.scrapeFull {
		return text
	}

	full, err := f.search.FetchFullText(ctx, article.Link)
	if err != nil {
		f.logger.Debug("full-text scrape unavailable, keeping fallback", "link", article.Link, "error", err)
		return text
	}

	return full
}

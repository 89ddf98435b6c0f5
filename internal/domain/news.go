package domain

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tracked company together with its alternate names.
type Organization struct {
	Name     string
	Synonyms []string
}

// RawArticle is a single search hit before classification. Body carries the
// provider's description (possibly empty); Text is filled by the fetch stage
// with the body, the scraped full text, or the headline as last resort.
type RawArticle struct {
	Title       string
	Body        string
	Link        string
	Text        string
	PublishedAt time.Time
}

// Article is a persisted, classified news article. Text is globally unique
// and acts as the deduplication key.
type Article struct {
	ID          uuid.UUID
	Text        string
	Title       string
	Link        string
	Sentiment   float64
	Relevancy   float64
	PublishedOn time.Time
}

// TopicScore pairs a sustainability topic label with its membership probability.
type TopicScore struct {
	Label       string
	Probability float64
}

// Classification is the raw output of the classification capability: a
// sentiment in [0,10] and a ranked topic/probability list.
type Classification struct {
	Sentiment float64
	Topics    []TopicScore
}

// AnalysisResult summarizes one pipeline run over a single article. It is
// produced for logging and cycle digests, never stored.
type AnalysisResult struct {
	Topics        []TopicScore
	Organizations []string
	Sentiment     float64
	Reused        bool
}

// CycleDigest summarizes the per-article outcomes of one completed analysis
// cycle for outbound notification channels.
type CycleDigest struct {
	Fetched      int
	Ingested     int
	Deduplicated int
	Skipped      int
	Dropped      int
}

// ArticleFilter parameterizes threshold-filtered article reads. Topic is
// optional; a zero From means no lower date bound; Limit <= 0 means all rows.
type ArticleFilter struct {
	Organization string
	Topic        string
	MaxSentiment float64
	From         time.Time
	Limit        int
}

// SentimentStats aggregates sentiment over a filtered article set.
type SentimentStats struct {
	Min float64
	Max float64
	Avg float64
}

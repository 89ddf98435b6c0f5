package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"esgmonitor/internal/domain"
)

// filteredArticles builds the threshold-filtered select over the association
// graph. The relevancy floor and the sentiment ceiling always apply; the
// topic-membership floor applies whenever the query joins through a topic.
func (s *Store) filteredArticles(filter domain.ArticleFilter) sq.SelectBuilder {
	builder := psql.
		Select("a.id", "a.text", "a.title", "a.link", "a.sentiment", "a.relevancy", "a.published_on").
		Distinct().
		From("articles a").
		Join("article_organizations ao ON ao.article_id = a.id").
		Where(sq.Eq{"ao.organization_name": filter.Organization}).
		Where(sq.LtOrEq{"a.sentiment": filter.MaxSentiment}).
		Where(sq.GtOrEq{"a.relevancy": s.thresholds.Relevancy})

	if !filter.From.IsZero() {
		builder = builder.Where(sq.GtOrEq{"a.published_on": filter.From})
	}

	if filter.Topic != "" {
		builder = builder.
			Join("article_topics atp ON atp.article_id = a.id").
			Where(sq.Eq{"atp.topic_name": filter.Topic}).
			Where(sq.GtOrEq{"atp.probability": s.thresholds.IndicatorMembership})
	}

	return builder
}

// FilterArticles returns the filtered set ordered ascending by sentiment,
// most negative coverage first.
func (s *Store) FilterArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error) {
	builder := s.filteredArticles(filter).OrderBy("a.sentiment ASC")
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build filter query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query filtered articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		var article domain.Article
		if err := rows.Scan(
			&article.ID, &article.Text, &article.Title, &article.Link,
			&article.Sentiment, &article.Relevancy, &article.PublishedOn); err != nil {
			return nil, fmt.Errorf("scan filtered article: %w", err)
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// SentimentStats aggregates min/max/avg sentiment over the deduplicated
// filtered set, or domain.ErrNoResult when no article matches.
func (s *Store) SentimentStats(ctx context.Context, filter domain.ArticleFilter) (domain.SentimentStats, error) {
	query, args, err := psql.
		Select("min(f.sentiment)", "max(f.sentiment)", "avg(f.sentiment)").
		FromSelect(s.filteredArticles(filter), "f").
		ToSql()
	if err != nil {
		return domain.SentimentStats{}, fmt.Errorf("build stats query: %w", err)
	}

	var min, max, avg *float64
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&min, &max, &avg); err != nil {
		return domain.SentimentStats{}, fmt.Errorf("query sentiment stats: %w", err)
	}

	if min == nil || max == nil || avg == nil {
		return domain.SentimentStats{}, domain.ErrNoResult
	}

	return domain.SentimentStats{Min: *min, Max: *max, Avg: *avg}, nil
}

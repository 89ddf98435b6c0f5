package storage

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"esgmonitor/internal/domain"
)

// ArticleByText looks up an article by exact text equality, the dedup oracle.
// The md5 predicate routes the lookup through the unique index; the text
// comparison guards against hash collisions.
func (s *Store) ArticleByText(ctx context.Context, text string) (*domain.Article, error) {
	query, args, err := psql.
		Select("id", "text", "title", "link", "sentiment", "relevancy", "published_on").
		From("articles").
		Where("md5(text) = md5(?)", text).
		Where(sq.Eq{"text": text}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build article query: %w", err)
	}

	var article domain.Article
	err = s.pool.QueryRow(ctx, query, args...).Scan(
		&article.ID, &article.Text, &article.Title, &article.Link,
		&article.Sentiment, &article.Relevancy, &article.PublishedOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query article by text: %w", err)
	}

	return &article, nil
}

// CreateArticle persists the article together with its organization
// associations in one transaction. An empty organization set is rejected
// before any row is written; a duplicate text surfaces as
// domain.ErrDuplicateArticle so callers can fall back to attaching.
func (s *Store) CreateArticle(ctx context.Context, article domain.Article, organizations []string) error {
	if len(organizations) == 0 {
		return fmt.Errorf("create article %q: %w", article.Title, domain.ErrNoRelevantOrganization)
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO articles (id, text, title, link, sentiment, relevancy, published_on)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			article.ID, article.Text, article.Title, article.Link,
			article.Sentiment, article.Relevancy, article.PublishedOn)
		if err != nil {
			return err
		}

		return attachOrganizations(ctx, tx, article.ID, organizations)
	})
}

// AttachOrganizations associates the article with additional organizations.
// Re-attaching an existing association is a no-op.
func (s *Store) AttachOrganizations(ctx context.Context, articleID uuid.UUID, organizations []string) error {
	if len(organizations) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		return attachOrganizations(ctx, tx, articleID, organizations)
	})
}

func attachOrganizations(ctx context.Context, tx pgx.Tx, articleID uuid.UUID, organizations []string) error {
	for _, name := range organizations {
		_, err := tx.Exec(ctx, `
			INSERT INTO article_organizations (article_id, organization_name)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			articleID, name)
		if err != nil {
			return err
		}
	}
	return nil
}

// SaveArticleTopics persists one membership row per topic score whose label
// exists in the catalog; unknown labels are dropped inside the insert.
func (s *Store) SaveArticleTopics(ctx context.Context, articleID uuid.UUID, topics []domain.TopicScore) error {
	if len(topics) == 0 {
		return nil
	}

	return s.withTx(ctx, func(tx pgx.Tx) error {
		for _, topic := range topics {
			_, err := tx.Exec(ctx, `
				INSERT INTO article_topics (article_id, topic_name, probability)
				SELECT $1, name, $3 FROM topics WHERE name = $2
				ON CONFLICT DO NOTHING`,
				articleID, topic.Label, topic.Probability)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ArticleTopics returns the stored membership rows, most probable first.
func (s *Store) ArticleTopics(ctx context.Context, articleID uuid.UUID) ([]domain.TopicScore, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT topic_name, probability
		FROM article_topics
		WHERE article_id = $1
		ORDER BY probability DESC`, articleID)
	if err != nil {
		return nil, fmt.Errorf("query article topics: %w", err)
	}
	defer rows.Close()

	var topics []domain.TopicScore
	for rows.Next() {
		var topic domain.TopicScore
		if err := rows.Scan(&topic.Label, &topic.Probability); err != nil {
			return nil, fmt.Errorf("scan article topic: %w", err)
		}
		topics = append(topics, topic)
	}

	return topics, rows.Err()
}

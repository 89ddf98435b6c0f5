package storage

import (
	"context"
	"fmt"

	"esgmonitor/internal/domain"
)

// articleTextIndex is the unique index enforcing text-level deduplication.
// Article bodies exceed the btree row cap, so the md5 of the text is indexed
// instead of the text itself.
const articleTextIndex = "articles_text_md5_key"

type migration struct {
	name string
	sql  string
}

// migrations are applied in order; each is recorded in _migrations so it runs
// exactly once per database.
var migrations = []migration{
	{
		name: "001_schema",
		sql: `
CREATE TABLE organizations (
	name TEXT PRIMARY KEY CHECK (name <> '')
);

CREATE TABLE synonyms (
	organization_name TEXT NOT NULL REFERENCES organizations(name) ON DELETE CASCADE,
	name TEXT NOT NULL CHECK (name <> ''),
	PRIMARY KEY (organization_name, name)
);

CREATE TABLE articles (
	id UUID PRIMARY KEY,
	text TEXT NOT NULL CHECK (text <> ''),
	title TEXT NOT NULL CHECK (title <> ''),
	link TEXT NOT NULL CHECK (link <> ''),
	sentiment DOUBLE PRECISION NOT NULL CHECK (sentiment >= 0 AND sentiment <= 10),
	relevancy DOUBLE PRECISION NOT NULL CHECK (relevancy >= 0 AND relevancy <= 1),
	published_on DATE NOT NULL
);

CREATE UNIQUE INDEX articles_text_md5_key ON articles (md5(text));

CREATE TABLE topics (
	name TEXT PRIMARY KEY CHECK (name <> '')
);

CREATE TABLE article_topics (
	article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	topic_name TEXT NOT NULL REFERENCES topics(name) ON DELETE CASCADE,
	probability DOUBLE PRECISION NOT NULL CHECK (probability >= 0 AND probability <= 1),
	PRIMARY KEY (article_id, topic_name)
);

CREATE TABLE article_organizations (
	article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
	organization_name TEXT NOT NULL REFERENCES organizations(name) ON DELETE CASCADE,
	PRIMARY KEY (article_id, organization_name)
);
`,
	},
}

func (s *Store) migrate(ctx context.Context) error {
	const createTracker = `
		CREATE TABLE IF NOT EXISTS _migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`
	if _, err := s.pool.Exec(ctx, createTracker); err != nil {
		return fmt.Errorf("create tracker table: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		err := s.pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM _migrations WHERE name = $1)", m.name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", m.name, err)
		}
		if exists {
			continue
		}

		s.logger.Info("applying migration", "name", m.name)

		if _, err := s.pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("exec migration %s: %w", m.name, err)
		}

		if _, err := s.pool.Exec(ctx,
			"INSERT INTO _migrations (name) VALUES ($1)", m.name); err != nil {
			return fmt.Errorf("record migration %s: %w", m.name, err)
		}
	}

	return nil
}

// seedTopics loads the fixed indicator catalog the first time the store is
// initialized. A non-empty topics table means seeding already happened.
func (s *Store) seedTopics(ctx context.Context) error {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM topics").Scan(&count); err != nil {
		return fmt.Errorf("count topics: %w", err)
	}
	if count > 0 {
		return nil
	}

	batch := psql.Insert("topics").Columns("name")
	for _, name := range domain.TopicCatalog {
		batch = batch.Values(name)
	}

	query, args, err := batch.ToSql()
	if err != nil {
		return fmt.Errorf("build seed insert: %w", err)
	}

	if _, err := s.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert catalog: %w", err)
	}

	s.logger.Info("topic catalog seeded",
		"version", domain.TopicCatalogVersion, "topics", len(domain.TopicCatalog))
	return nil
}

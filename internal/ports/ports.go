package ports

import (
	"context"

	"github.com/google/uuid"

	"esgmonitor/internal/domain"
)

// SearchProvider queries the external news-search capability.
type SearchProvider interface {
	// Search returns candidate articles for a single search term.
	Search(ctx context.Context, term string) ([]domain.RawArticle, error)
	// FetchFullText scrapes the full article text behind a link. Callers
	// treat failures as "unavailable" and keep their fallback body.
	FetchFullText(ctx context.Context, link string) (string, error)
}

// Classifier scores a text for sentiment and sustainability topics. The
// returned topic list must include domain.NotRelevantLabel.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Classification, error)
}

// AcceleratorProbe reports available accelerator memory in whole gigabytes,
// or 0 when no accelerator is present.
type AcceleratorProbe interface {
	MemoryGB(ctx context.Context) int
}

// Notifier publishes cycle digests to an external channel. Rendering the
// digest is the channel's concern.
type Notifier interface {
	PublishDigest(ctx context.Context, digest domain.CycleDigest) error
}

// Store is the persistence contract for tracked organizations, the topic
// catalog, and classified articles. Every method runs as one short-lived
// transactional session.
type Store interface {
	Organizations(ctx context.Context) ([]domain.Organization, error)
	OrganizationExists(ctx context.Context, name string) (bool, error)
	CreateOrganization(ctx context.Context, name string) error
	DeleteOrganization(ctx context.Context, name string) error

	SynonymsByOrganization(ctx context.Context, organization string) ([]string, error)
	CreateSynonym(ctx context.Context, organization, name string) error
	DeleteSynonym(ctx context.Context, organization, name string) error

	Topics(ctx context.Context) ([]string, error)

	ArticleByText(ctx context.Context, text string) (*domain.Article, error)
	CreateArticle(ctx context.Context, article domain.Article, organizations []string) error
	AttachOrganizations(ctx context.Context, articleID uuid.UUID, organizations []string) error
	SaveArticleTopics(ctx context.Context, articleID uuid.UUID, topics []domain.TopicScore) error
	ArticleTopics(ctx context.Context, articleID uuid.UUID) ([]domain.TopicScore, error)

	FilterArticles(ctx context.Context, filter domain.ArticleFilter) ([]domain.Article, error)
	SentimentStats(ctx context.Context, filter domain.ArticleFilter) (domain.SentimentStats, error)
}

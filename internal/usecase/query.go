package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

// Date-range tokens accepted by the query surface.
const (
	RangeToday = "today"
	RangeWeek  = "week"
	RangeMonth = "month"
	RangeYear  = "year"
	RangeAll   = "all"
)

// Queries is the read/management surface consumed by the external API layer.
// It validates input, resolves date-range tokens, and translates storage
// constraint failures into conflict/not-found semantics.
type Queries struct {
	store ports.Store
	now   func() time.Time
}

// NewQueries wires the store handle.
func NewQueries(store ports.Store) *Queries {
	return &Queries{store: store, now: time.Now}
}

// resolveRange maps a named date-range token to its lower publication-date
// bound. An unknown token is a NotFoundError.
func (q *Queries) resolveRange(token string) (time.Time, error) {
	today := q.now().UTC().Truncate(24 * time.Hour)

	switch token {
	case RangeToday:
		return today, nil
	case RangeWeek:
		return today.AddDate(0, 0, -7), nil
	case RangeMonth:
		return today.AddDate(0, 0, -30), nil
	case RangeYear:
		return today.AddDate(0, 0, -365), nil
	case RangeAll:
		return time.Time{}, nil
	default:
		return time.Time{}, &domain.NotFoundError{Kind: "date range", Name: token}
	}
}

// Organizations lists the tracked catalog with synonyms.
func (q *Queries) Organizations(ctx context.Context) ([]domain.Organization, error) {
	return q.store.Organizations(ctx)
}

// Topics lists the seeded indicator catalog.
func (q *Queries) Topics(ctx context.Context) ([]string, error) {
	return q.store.Topics(ctx)
}

// SynonymsByOrganization lists one organization's synonyms; the organization
// must exist.
func (q *Queries) SynonymsByOrganization(ctx context.Context, organization string) ([]string, error) {
	if err := q.requireOrganization(ctx, organization); err != nil {
		return nil, err
	}
	return q.store.SynonymsByOrganization(ctx, organization)
}

// CreateOrganization registers a new tracked organization. Empty names are
// rejected before the store; duplicates surface as ConflictError.
func (q *Queries) CreateOrganization(ctx context.Context, name string) error {
	if name == "" {
		return &domain.ValidationError{Reason: "organization name must not be empty"}
	}

	err := q.store.CreateOrganization(ctx, name)
	return mapWriteError(err, "organization", name, "")
}

// DeleteOrganization removes an organization; its synonyms and article
// associations cascade.
func (q *Queries) DeleteOrganization(ctx context.Context, name string) error {
	if name == "" {
		return &domain.ValidationError{Reason: "organization name must not be empty"}
	}
	return q.store.DeleteOrganization(ctx, name)
}

// CreateSynonym adds an alternate name to an existing organization.
func (q *Queries) CreateSynonym(ctx context.Context, organization, name string) error {
	if organization == "" {
		return &domain.ValidationError{Reason: "organization name must not be empty"}
	}
	if name == "" {
		return &domain.ValidationError{Reason: "synonym name must not be empty"}
	}

	err := q.store.CreateSynonym(ctx, organization, name)
	return mapWriteError(err, "synonym", name, organization)
}

// DeleteSynonym removes one synonym.
func (q *Queries) DeleteSynonym(ctx context.Context, organization, name string) error {
	if organization == "" {
		return &domain.ValidationError{Reason: "organization name must not be empty"}
	}
	if name == "" {
		return &domain.ValidationError{Reason: "synonym name must not be empty"}
	}
	return q.store.DeleteSynonym(ctx, organization, name)
}

// News returns the threshold-filtered articles for an organization, most
// negative sentiment first. Topic is optional.
func (q *Queries) News(ctx context.Context, organization, rangeToken string, maxSentiment float64, topic string) ([]domain.Article, error) {
	filter, err := q.buildFilter(ctx, organization, rangeToken, maxSentiment, topic)
	if err != nil {
		return nil, err
	}
	return q.store.FilterArticles(ctx, filter)
}

// LowestSentimentNews returns the single most negative matching article, or
// nil when nothing matches.
func (q *Queries) LowestSentimentNews(ctx context.Context, organization, rangeToken string, topic string) (*domain.Article, error) {
	filter, err := q.buildFilter(ctx, organization, rangeToken, 10, topic)
	if err != nil {
		return nil, err
	}

	filter.Limit = 1
	articles, err := q.store.FilterArticles(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

// NewsExist reports whether the filtered set is non-empty.
func (q *Queries) NewsExist(ctx context.Context, organization, rangeToken string, maxSentiment float64, topic string) (bool, error) {
	articles, err := q.News(ctx, organization, rangeToken, maxSentiment, topic)
	if err != nil {
		return false, err
	}
	return len(articles) > 0, nil
}

// SentimentStats aggregates min/max/avg sentiment over the filtered set;
// an empty set yields domain.ErrNoResult.
func (q *Queries) SentimentStats(ctx context.Context, organization, rangeToken string, maxSentiment float64, topic string) (domain.SentimentStats, error) {
	filter, err := q.buildFilter(ctx, organization, rangeToken, maxSentiment, topic)
	if err != nil {
		return domain.SentimentStats{}, err
	}
	return q.store.SentimentStats(ctx, filter)
}

func (q *Queries) buildFilter(ctx context.Context, organization, rangeToken string, maxSentiment float64, topic string) (domain.ArticleFilter, error) {
	if organization == "" {
		return domain.ArticleFilter{}, &domain.ValidationError{Reason: "organization name must not be empty"}
	}
	if maxSentiment < 0 || maxSentiment > 10 {
		return domain.ArticleFilter{}, &domain.ValidationError{Reason: "max sentiment must be in [0,10]"}
	}

	if err := q.requireOrganization(ctx, organization); err != nil {
		return domain.ArticleFilter{}, err
	}

	if topic != "" {
		if err := q.requireTopic(ctx, topic); err != nil {
			return domain.ArticleFilter{}, err
		}
	}

	from, err := q.resolveRange(rangeToken)
	if err != nil {
		return domain.ArticleFilter{}, err
	}

	return domain.ArticleFilter{
		Organization: organization,
		Topic:        topic,
		MaxSentiment: maxSentiment,
		From:         from,
	}, nil
}

func (q *Queries) requireOrganization(ctx context.Context, name string) error {
	exists, err := q.store.OrganizationExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check organization: %w", err)
	}
	if !exists {
		return &domain.NotFoundError{Kind: "organization", Name: name}
	}
	return nil
}

func (q *Queries) requireTopic(ctx context.Context, name string) error {
	topics, err := q.store.Topics(ctx)
	if err != nil {
		return fmt.Errorf("load topics: %w", err)
	}
	for _, topic := range topics {
		if topic == name {
			return nil
		}
	}
	return &domain.NotFoundError{Kind: "topic", Name: name}
}

// mapWriteError turns store constraint failures from management writes into
// the conflict/not-found semantics the API layer exposes.
func mapWriteError(err error, kind, name, parent string) error {
	if err == nil {
		return nil
	}

	var constraintErr *domain.ConstraintError
	if errors.As(err, &constraintErr) {
		switch constraintErr.Kind {
		case domain.ConstraintUnique:
			return &domain.ConflictError{Kind: kind, Name: name}
		case domain.ConstraintForeignKey:
			return &domain.NotFoundError{Kind: "organization", Name: parent}
		}
	}

	return err
}

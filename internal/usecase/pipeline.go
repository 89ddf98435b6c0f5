package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
	"esgmonitor/internal/recognize"
)

// PipelineDeps wires all driven adapters into the per-article pipeline.
type PipelineDeps struct {
	Store      ports.Store
	Classifier ports.Classifier
	Recognizer *recognize.Recognizer
	Logger     *slog.Logger
}

// Pipeline implements the idempotent per-article ingestion workflow:
// recognize, dedup, classify, persist.
type Pipeline struct {
	store      ports.Store
	classifier ports.Classifier
	recognizer *recognize.Recognizer
	logger     *slog.Logger
}

// NewPipeline constructs the per-article workflow.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		store:      deps.Store,
		classifier: deps.Classifier,
		recognizer: deps.Recognizer,
		logger:     deps.Logger,
	}
}

// Ingest processes one fetched article. An article seen before (by exact
// text) only gains organization associations and reuses its stored
// classification; a fresh article is classified and persisted.
func (p *Pipeline) Ingest(ctx context.Context, article domain.RawArticle) (domain.AnalysisResult, error) {
	organizations := p.recognizer.Match(article.Text)
	if len(organizations) == 0 {
		return domain.AnalysisResult{}, fmt.Errorf("article %q: %w", article.Title, domain.ErrNoRelevantOrganization)
	}

	existing, err := p.store.ArticleByText(ctx, article.Text)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("dedup lookup: %w", err)
	}
	if existing != nil {
		return p.reuseExisting(ctx, existing, organizations)
	}

	classification, err := p.classifier.Classify(ctx, article.Text)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("classify: %w", err)
	}

	relevancy, err := relevancyScore(classification.Topics)
	if err != nil {
		return domain.AnalysisResult{}, err
	}

	stored := domain.Article{
		ID:          uuid.New(),
		Text:        article.Text,
		Title:       article.Title,
		Link:        article.Link,
		Sentiment:   classification.Sentiment,
		Relevancy:   relevancy,
		PublishedOn: article.PublishedAt,
	}

	if err := p.store.CreateArticle(ctx, stored, organizations); err != nil {
		// A concurrent sibling may have persisted the identical text first;
		// the store's uniqueness constraint is the tie-breaker and the loser
		// takes the attach path.
		if errors.Is(err, domain.ErrDuplicateArticle) {
			winner, lookErr := p.store.ArticleByText(ctx, article.Text)
			if lookErr != nil {
				return domain.AnalysisResult{}, fmt.Errorf("dedup race lookup: %w", lookErr)
			}
			if winner == nil {
				return domain.AnalysisResult{}, fmt.Errorf("duplicate article vanished: %q", article.Title)
			}
			return p.reuseExisting(ctx, winner, organizations)
		}
		return domain.AnalysisResult{}, fmt.Errorf("persist article: %w", err)
	}

	if err := p.store.SaveArticleTopics(ctx, stored.ID, classification.Topics); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("persist article topics: %w", err)
	}

	result := domain.AnalysisResult{
		Topics:        classification.Topics,
		Organizations: organizations,
		Sentiment:     classification.Sentiment,
	}
	p.logResult(article.Title, result)

	return result, nil
}

// reuseExisting attaches newly recognized organizations to a known article
// and reuses its stored classification. No re-classification occurs.
func (p *Pipeline) reuseExisting(ctx context.Context, existing *domain.Article, organizations []string) (domain.AnalysisResult, error) {
	if err := p.store.AttachOrganizations(ctx, existing.ID, organizations); err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("attach organizations: %w", err)
	}

	topics, err := p.store.ArticleTopics(ctx, existing.ID)
	if err != nil {
		return domain.AnalysisResult{}, fmt.Errorf("load stored topics: %w", err)
	}

	result := domain.AnalysisResult{
		Topics:        topics,
		Organizations: organizations,
		Sentiment:     existing.Sentiment,
		Reused:        true,
	}
	p.logResult(existing.Title, result)

	return result, nil
}

// relevancyScore derives 1 - P(NotRelevantLabel). A classifier response
// without the distinguished label violates the capability contract and is
// never silently defaulted.
func relevancyScore(topics []domain.TopicScore) (float64, error) {
	for _, topic := range topics {
		if topic.Label == domain.NotRelevantLabel {
			return 1 - topic.Probability, nil
		}
	}

	labels := make([]string, 0, len(topics))
	for _, topic := range topics {
		labels = append(labels, topic.Label)
	}
	return 0, &domain.ClassifierContractError{Labels: labels}
}

func (p *Pipeline) logResult(title string, result domain.AnalysisResult) {
	top := result.Topics
	if len(top) > 3 {
		top = top[:3]
	}

	p.logger.Info("article analyzed",
		"title", title,
		"organizations", result.Organizations,
		"sentiment", result.Sentiment,
		"top_topics", fmt.Sprintf("%v", top),
		"reused", result.Reused,
	)
}

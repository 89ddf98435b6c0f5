package usecase

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"esgmonitor/internal/domain"
	"esgmonitor/internal/ports"
)

// classifierFunc adapts a function to ports.Classifier.
type classifierFunc func(ctx context.Context, text string) (domain.Classification, error)

func (f classifierFunc) Classify(ctx context.Context, text string) (domain.Classification, error) {
	return f(ctx, text)
}

// probeFunc adapts a function to ports.AcceleratorProbe.
type probeFunc func(ctx context.Context) int

func (f probeFunc) MemoryGB(ctx context.Context) int {
	return f(ctx)
}

// fakeSearch serves canned results per term.
type fakeSearch struct {
	mu       sync.Mutex
	results  map[string][]domain.RawArticle
	fullText map[string]string
	errs     map[string]error
	searched []string
}

func (f *fakeSearch) Search(_ context.Context, term string) ([]domain.RawArticle, error) {
	f.mu.Lock()
	f.searched = append(f.searched, term)
	f.mu.Unlock()

	if err, ok := f.errs[term]; ok {
		return nil, err
	}
	return f.results[term], nil
}

func (f *fakeSearch) FetchFullText(_ context.Context, link string) (string, error) {
	if text, ok := f.fullText[link]; ok {
		return text, nil
	}
	return "", fmt.Errorf("no readable text at %s", link)
}

// fakeStore is an in-memory ports.Store used by pipeline, fan-out, and query
// tests. It mirrors the store's constraint semantics: duplicate text maps to
// ErrDuplicateArticle, duplicate/missing management rows to ConstraintError.
type fakeStore struct {
	mu            sync.Mutex
	organizations []domain.Organization
	topics        []string
	articles      map[string]domain.Article
	attached      map[uuid.UUID]map[string]bool
	articleTopics map[uuid.UUID][]domain.TopicScore
	filtered      []domain.Article
	stats         *domain.SentimentStats
}

var _ ports.Store = (*fakeStore)(nil)

func newFakeStore(organizations ...domain.Organization) *fakeStore {
	return &fakeStore{
		organizations: organizations,
		topics:        domain.TopicCatalog,
		articles:      map[string]domain.Article{},
		attached:      map[uuid.UUID]map[string]bool{},
		articleTopics: map[uuid.UUID][]domain.TopicScore{},
	}
}

func (s *fakeStore) Organizations(context.Context) ([]domain.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Organization(nil), s.organizations...), nil
}

func (s *fakeStore) OrganizationExists(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, org := range s.organizations {
		if org.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateOrganization(ctx context.Context, name string) error {
	exists, _ := s.OrganizationExists(ctx, name)
	if exists {
		return &domain.ConstraintError{Kind: domain.ConstraintUnique, Constraint: "organizations_pkey"}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations = append(s.organizations, domain.Organization{Name: name})
	return nil
}

func (s *fakeStore) DeleteOrganization(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, org := range s.organizations {
		if org.Name == name {
			s.organizations = append(s.organizations[:i], s.organizations[i+1:]...)
			return nil
		}
	}
	return &domain.NotFoundError{Kind: "organization", Name: name}
}

func (s *fakeStore) SynonymsByOrganization(_ context.Context, organization string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, org := range s.organizations {
		if org.Name == organization {
			return org.Synonyms, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) CreateSynonym(_ context.Context, organization, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, org := range s.organizations {
		if org.Name != organization {
			continue
		}
		for _, synonym := range org.Synonyms {
			if synonym == name {
				return &domain.ConstraintError{Kind: domain.ConstraintUnique, Constraint: "synonyms_pkey"}
			}
		}
		s.organizations[i].Synonyms = append(org.Synonyms, name)
		return nil
	}
	return &domain.ConstraintError{Kind: domain.ConstraintForeignKey, Constraint: "synonyms_organization_name_fkey"}
}

func (s *fakeStore) DeleteSynonym(_ context.Context, organization, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, org := range s.organizations {
		if org.Name != organization {
			continue
		}
		for j, synonym := range org.Synonyms {
			if synonym == name {
				s.organizations[i].Synonyms = append(org.Synonyms[:j], org.Synonyms[j+1:]...)
				return nil
			}
		}
	}
	return &domain.NotFoundError{Kind: "synonym", Name: name}
}

func (s *fakeStore) Topics(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topics, nil
}

func (s *fakeStore) ArticleByText(_ context.Context, text string) (*domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if article, ok := s.articles[text]; ok {
		return &article, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateArticle(_ context.Context, article domain.Article, organizations []string) error {
	if len(organizations) == 0 {
		return fmt.Errorf("create article: %w", domain.ErrNoRelevantOrganization)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.articles[article.Text]; ok {
		return domain.ErrDuplicateArticle
	}

	s.articles[article.Text] = article
	s.attached[article.ID] = map[string]bool{}
	for _, org := range organizations {
		s.attached[article.ID][org] = true
	}
	return nil
}

func (s *fakeStore) AttachOrganizations(_ context.Context, articleID uuid.UUID, organizations []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attached[articleID] == nil {
		s.attached[articleID] = map[string]bool{}
	}
	for _, org := range organizations {
		s.attached[articleID][org] = true
	}
	return nil
}

func (s *fakeStore) SaveArticleTopics(_ context.Context, articleID uuid.UUID, topics []domain.TopicScore) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	known := map[string]bool{}
	for _, name := range s.topics {
		known[name] = true
	}
	for _, topic := range topics {
		if known[topic.Label] {
			s.articleTopics[articleID] = append(s.articleTopics[articleID], topic)
		}
	}
	return nil
}

func (s *fakeStore) ArticleTopics(_ context.Context, articleID uuid.UUID) ([]domain.TopicScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.articleTopics[articleID], nil
}

func (s *fakeStore) FilterArticles(context.Context, domain.ArticleFilter) ([]domain.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filtered, nil
}

func (s *fakeStore) SentimentStats(context.Context, domain.ArticleFilter) (domain.SentimentStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stats == nil {
		return domain.SentimentStats{}, domain.ErrNoResult
	}
	return *s.stats, nil
}

// articleCount reports how many distinct articles are stored.
func (s *fakeStore) articleCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.articles)
}

// attachedTo lists the organizations associated with the article holding text.
func (s *fakeStore) attachedTo(text string) map[string]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	article, ok := s.articles[text]
	if !ok {
		return nil
	}
	out := map[string]bool{}
	for org := range s.attached[article.ID] {
		out[org] = true
	}
	return out
}

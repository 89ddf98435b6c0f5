// Package recognize matches tracked organization names and their synonyms
// against article text.
package recognize

import (
	"strings"

	"esgmonitor/internal/domain"
)

// Recognizer holds an immutable snapshot of the organization catalog taken at
// cycle start. Matching is plain case-sensitive substring containment, no
// stemming or fuzzy logic.
type Recognizer struct {
	organizations []domain.Organization
}

// New builds a recognizer over the given catalog snapshot.
func New(organizations []domain.Organization) *Recognizer {
	return &Recognizer{organizations: organizations}
}

// Match returns the names of all organizations mentioned in text, either by
// their own name or by any synonym. Each organization appears at most once,
// in catalog order; a synonym hit reports the owning organization's name.
func (r *Recognizer) Match(text string) []string {
	var matched []string

	for _, org := range r.organizations {
		if strings.Contains(text, org.Name) {
			matched = append(matched, org.Name)
			continue
		}

		for _, synonym := range org.Synonyms {
			if strings.Contains(text, synonym) {
				matched = append(matched, org.Name)
				break
			}
		}
	}

	return matched
}

package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoRelevantOrganization marks articles that mention no tracked
	// organization; they are logged and discarded, never retried.
	ErrNoRelevantOrganization = errors.New("no tracked organization mentioned in article text")

	// ErrDuplicateArticle is returned when an article with identical text
	// already exists; callers take the attach-organizations path.
	ErrDuplicateArticle = errors.New("article with identical text already stored")

	// ErrCycleInFlight signals that the previous analysis cycle is still
	// running and the current tick should be skipped.
	ErrCycleInFlight = errors.New("previous analysis cycle still in flight")

	// ErrNoResult is returned by aggregate reads over an empty filtered set.
	ErrNoResult = errors.New("no articles match the requested filters")
)

// ValidationError reports malformed or missing caller input. It is surfaced
// to the query layer before any store access.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation: " + e.Reason
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

// ConflictError reports a create that collides with an existing entity.
type ConflictError struct {
	Kind string
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

// ClassifierContractError reports classifier output that is missing the
// distinguished relevancy label. It aborts the remaining fan-out for the
// cycle instead of silently mis-scoring data.
type ClassifierContractError struct {
	Labels []string
}

func (e *ClassifierContractError) Error() string {
	return fmt.Sprintf("classifier output lacks label %q, got: %s",
		NotRelevantLabel, strings.Join(e.Labels, ", "))
}

// Constraint kinds reported by the store.
const (
	ConstraintUnique     = "unique"
	ConstraintForeignKey = "foreign_key"
	ConstraintCheck      = "check"
)

// ConstraintError describes a violated storage constraint in human-readable
// form. The offending write is rolled back and dropped; execution continues.
type ConstraintError struct {
	Kind       string
	Constraint string
	Detail     string
}

func (e *ConstraintError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s constraint %s violated: %s", e.Kind, e.Constraint, e.Detail)
	}
	return fmt.Sprintf("%s constraint %s violated", e.Kind, e.Constraint)
}

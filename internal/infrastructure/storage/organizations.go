package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"esgmonitor/internal/domain"
)

// Organizations returns the full catalog with synonyms attached, ordered by
// organization name.
func (s *Store) Organizations(ctx context.Context) ([]domain.Organization, error) {
	query, args, err := psql.
		Select("o.name", "s.name").
		From("organizations o").
		LeftJoin("synonyms s ON s.organization_name = o.name").
		OrderBy("o.name", "s.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build organizations query: %w", err)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query organizations: %w", err)
	}
	defer rows.Close()

	var organizations []domain.Organization
	for rows.Next() {
		var name string
		var synonym *string
		if err := rows.Scan(&name, &synonym); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}

		if len(organizations) == 0 || organizations[len(organizations)-1].Name != name {
			organizations = append(organizations, domain.Organization{Name: name})
		}
		if synonym != nil {
			last := &organizations[len(organizations)-1]
			last.Synonyms = append(last.Synonyms, *synonym)
		}
	}

	return organizations, rows.Err()
}

// OrganizationExists reports whether the named organization is tracked.
func (s *Store) OrganizationExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM organizations WHERE name = $1)", name).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check organization: %w", err)
	}
	return exists, nil
}

// CreateOrganization inserts a new tracked organization. A duplicate name
// surfaces as a unique ConstraintError.
func (s *Store) CreateOrganization(ctx context.Context, name string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, "INSERT INTO organizations (name) VALUES ($1)", name)
		return err
	})
}

// DeleteOrganization removes the organization; synonyms and article
// associations cascade in the schema.
func (s *Store) DeleteOrganization(ctx context.Context, name string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, "DELETE FROM organizations WHERE name = $1", name)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return &domain.NotFoundError{Kind: "organization", Name: name}
		}
		return nil
	})
}

// SynonymsByOrganization lists the synonyms of one organization.
func (s *Store) SynonymsByOrganization(ctx context.Context, organization string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT name FROM synonyms WHERE organization_name = $1 ORDER BY name", organization)
	if err != nil {
		return nil, fmt.Errorf("query synonyms: %w", err)
	}
	defer rows.Close()

	var synonyms []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan synonym: %w", err)
		}
		synonyms = append(synonyms, name)
	}

	return synonyms, rows.Err()
}

// CreateSynonym attaches an alternate name to an organization. A missing
// organization surfaces as a foreign-key ConstraintError, a duplicate as a
// unique one.
func (s *Store) CreateSynonym(ctx context.Context, organization, name string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			"INSERT INTO synonyms (organization_name, name) VALUES ($1, $2)", organization, name)
		return err
	})
}

// DeleteSynonym removes one synonym row.
func (s *Store) DeleteSynonym(ctx context.Context, organization, name string) error {
	return s.withTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			"DELETE FROM synonyms WHERE organization_name = $1 AND name = $2", organization, name)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return &domain.NotFoundError{Kind: "synonym", Name: name}
		}
		return nil
	})
}

// Topics lists the seeded catalog in descending name order.
func (s *Store) Topics(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT name FROM topics ORDER BY name DESC")
	if err != nil {
		return nil, fmt.Errorf("query topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		topics = append(topics, name)
	}

	return topics, rows.Err()
}

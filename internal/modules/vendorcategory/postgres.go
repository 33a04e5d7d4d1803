package vendorcategory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const selectTerms = `
	SELECT c.id, c.slug, c.name, c.description, c.parent_id, c.created_at, c.updated_at,
	       COUNT(r.vendor_id) AS count
	FROM vendor_categories c
	LEFT JOIN vendor_term_relationships r ON r.category_id = c.id`

const groupTerms = ` GROUP BY c.id`

type termStore struct{ db *sqlx.DB }

// NewPostgresTermStore creates a PostgreSQL backed TermStore.
func NewPostgresTermStore(db *sqlx.DB) TermStore { return &termStore{db: db} }

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

func (s *termStore) CreateTerm(ctx context.Context, c *Category) error {
	err := s.db.QueryRowxContext(ctx, `
		INSERT INTO vendor_categories (slug, name, description, parent_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`,
		c.Slug, c.Name, c.Description, c.ParentID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateSlug
	}
	return err
}

func (s *termStore) UpdateTerm(ctx context.Context, c *Category) error {
	err := s.db.QueryRowxContext(ctx, `
		UPDATE vendor_categories
		SET slug=$1, name=$2, description=$3, parent_id=$4, updated_at=NOW()
		WHERE id=$5
		RETURNING updated_at`,
		c.Slug, c.Name, c.Description, c.ParentID, c.ID,
	).Scan(&c.UpdatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrCategoryNotFound
	case isUniqueViolation(err):
		return ErrDuplicateSlug
	}
	return err
}

// DeleteTerm removes a category. Its children move up to its parent and its
// vendor assignments are dropped by the foreign key cascade.
func (s *termStore) DeleteTerm(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var parentID *int64
	err = tx.GetContext(ctx, &parentID, `SELECT parent_id FROM vendor_categories WHERE id=$1 FOR UPDATE`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCategoryNotFound
	}
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `UPDATE vendor_categories SET parent_id=$1, updated_at=NOW() WHERE parent_id=$2`, parentID, id); err != nil {
		return fmt.Errorf("reparent children: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM vendor_categories WHERE id=$1`, id); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *termStore) getOne(ctx context.Context, where string, arg interface{}) (*Category, error) {
	c := &Category{}
	err := s.db.GetContext(ctx, c, selectTerms+` WHERE `+where+groupTerms, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCategoryNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *termStore) GetTerm(ctx context.Context, id int64) (*Category, error) {
	return s.getOne(ctx, `c.id = $1`, id)
}

func (s *termStore) GetTermBySlug(ctx context.Context, slug string) (*Category, error) {
	return s.getOne(ctx, `c.slug = $1`, slug)
}

func (s *termStore) ListTerms(ctx context.Context, filter TermFilter) ([]*Category, error) {
	query := selectTerms + groupTerms
	if filter.HideEmpty {
		query += ` HAVING COUNT(r.vendor_id) > 0`
	}
	query += ` ORDER BY c.name, c.id`

	categories := []*Category{}
	if err := s.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *termStore) GetObjectsInTerm(ctx context.Context, id int64) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT vendor_id FROM vendor_term_relationships WHERE category_id=$1 ORDER BY vendor_id`, id)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type assignmentStore struct{ db *sqlx.DB }

// NewPostgresAssignmentStore creates a PostgreSQL backed AssignmentStore.
func NewPostgresAssignmentStore(db *sqlx.DB) AssignmentStore { return &assignmentStore{db: db} }

func (s *assignmentStore) GetAssignedTerms(ctx context.Context, vendorID uuid.UUID) ([]int64, error) {
	ids := []int64{}
	err := s.db.SelectContext(ctx, &ids,
		`SELECT category_id FROM vendor_term_relationships WHERE vendor_id=$1 ORDER BY category_id`, vendorID)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// SetAssignedTerms locks the vendor row first so concurrent writes for one
// vendor run one after the other and the last one wins.
func (s *assignmentStore) SetAssignedTerms(ctx context.Context, vendorID uuid.UUID, ids []int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var locked uuid.UUID
	err = tx.GetContext(ctx, &locked, `SELECT id FROM vendors WHERE id=$1 FOR UPDATE`, vendorID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrVendorNotFound
	}
	if err != nil {
		return fmt.Errorf("lock vendor: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM vendor_term_relationships WHERE vendor_id=$1`, vendorID); err != nil {
		return err
	}
	for _, id := range ids {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO vendor_term_relationships (vendor_id, category_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`, vendorID, id)
		if isForeignKeyViolation(err) {
			return ErrCategoryNotFound
		}
		if err != nil {
			return fmt.Errorf("assign category %d: %w", id, err)
		}
	}
	return tx.Commit()
}

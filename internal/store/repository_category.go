package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
)

// categoryRepository is the PostgreSQL-backed implementation of
// [CategoryRepository]. It mirrors the in-memory category forest into the
// "categories" and "category_groups" tables.
//
// The repository never decides anything about tree structure: name and
// cycle validation happen in the tree before a write reaches this layer,
// so every method here is a plain mirror of an already-accepted mutation.
type categoryRepository struct {
	*DB
	logger *logger.Logger
}

// NewCategoryRepository constructs a [CategoryRepository] backed by the
// provided database connection and logger.
func NewCategoryRepository(db *DB, logger *logger.Logger) CategoryRepository {
	logger.Debug().Msg("creating category repository")
	return &categoryRepository{
		DB:     db,
		logger: logger,
	}
}

// GetAll loads every persisted category with its granted groups. Used once
// at startup to rebuild the in-memory forest.
func (r *categoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, getAllCategories)
	if err != nil {
		log.Err(err).Str("func", "*categoryRepository.GetAll").Msg("failed to query categories")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	categories := make([]models.Category, 0, 32)
	byID := make(map[int64]int)

	for rows.Next() {
		var (
			c           models.Category
			parent      sql.NullInt64
			responsible sql.NullInt64
		)
		if err = rows.Scan(&c.CategoryID, &c.Name, &parent, &c.CreatorID, &responsible, &c.CreatedAt); err != nil {
			log.Err(err).Str("func", "*categoryRepository.GetAll").Msg("failed to scan category row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		c.ParentID = parent.Int64
		c.ResponsibleID = responsible.Int64

		byID[c.CategoryID] = len(categories)
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*categoryRepository.GetAll").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	groupRows, err := r.QueryContext(ctx, getAllCategoryGroups)
	if err != nil {
		log.Err(err).Str("func", "*categoryRepository.GetAll").Msg("failed to query category groups")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer groupRows.Close()

	for groupRows.Next() {
		var categoryID, groupID int64
		if err = groupRows.Scan(&categoryID, &groupID); err != nil {
			log.Err(err).Str("func", "*categoryRepository.GetAll").Msg("failed to scan category group row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		if idx, ok := byID[categoryID]; ok {
			categories[idx].GroupIDs = append(categories[idx].GroupIDs, groupID)
		}
	}
	if err = groupRows.Err(); err != nil {
		log.Err(err).Str("func", "*categoryRepository.GetAll").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return categories, nil
}

// Insert mirrors a newly created category. The id comes from the tree, so
// the column is written explicitly instead of using a sequence.
func (r *categoryRepository) Insert(ctx context.Context, category models.Category) error {
	log := logger.FromContext(ctx)

	_, err := r.ExecContext(ctx, insertCategory,
		category.CategoryID,
		category.Name,
		nullableID(category.ParentID),
		category.CreatorID,
		nullableID(category.ResponsibleID),
		category.CreatedAt,
	)
	if err != nil {
		log.Err(err).
			Str("func", "*categoryRepository.Insert").
			Int64("category_id", category.CategoryID).
			Msg("failed to insert category")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// UpdateParent mirrors a reparenting move. parentID zero persists as NULL.
func (r *categoryRepository) UpdateParent(ctx context.Context, categoryID, parentID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.ExecContext(ctx, updateCategoryParent, categoryID, nullableID(parentID)); err != nil {
		log.Err(err).
			Str("func", "*categoryRepository.UpdateParent").
			Int64("category_id", categoryID).
			Int64("parent_id", parentID).
			Msg("failed to update category parent")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteMany mirrors a cascading subtree deletion. Group grants go with
// the category rows via ON DELETE CASCADE.
func (r *categoryRepository) DeleteMany(ctx context.Context, categoryIDs []int64) error {
	log := logger.FromContext(ctx)

	if len(categoryIDs) == 0 {
		return nil
	}

	if _, err := r.ExecContext(ctx, deleteCategories, categoryIDs); err != nil {
		log.Err(err).
			Str("func", "*categoryRepository.DeleteMany").
			Int("count", len(categoryIDs)).
			Msg("failed to delete categories")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// ReplaceGroups rewrites the set of groups granted on a category.
func (r *categoryRepository) ReplaceGroups(ctx context.Context, categoryID int64, groupIDs []int64) error {
	log := logger.FromContext(ctx)

	tx, err := r.BeginTx(ctx, nil)
	if err != nil {
		log.Err(err).Str("func", "*categoryRepository.ReplaceGroups").Msg("failed to begin transaction")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err = tx.ExecContext(ctx, deleteCategoryGroups, categoryID); err != nil {
		log.Err(err).Str("func", "*categoryRepository.ReplaceGroups").Msg("failed to clear category groups")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	for _, groupID := range groupIDs {
		if _, err = tx.ExecContext(ctx, insertCategoryGroup, categoryID, groupID); err != nil {
			log.Err(err).
				Str("func", "*categoryRepository.ReplaceGroups").
				Int64("group_id", groupID).
				Msg("failed to insert category group")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
	}

	if err = tx.Commit(); err != nil {
		log.Err(err).Str("func", "*categoryRepository.ReplaceGroups").Msg("failed to commit transaction")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// SetResponsible mirrors a responsible-user assignment. userID zero
// persists as NULL.
func (r *categoryRepository) SetResponsible(ctx context.Context, categoryID, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.ExecContext(ctx, setCategoryResponsible, categoryID, nullableID(userID)); err != nil {
		log.Err(err).
			Str("func", "*categoryRepository.SetResponsible").
			Int64("category_id", categoryID).
			Msg("failed to set responsible user")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// nullableID maps the in-memory "zero means absent" convention onto SQL NULL.
func nullableID(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id != 0}
}

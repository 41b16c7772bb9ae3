package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
)

// secretRepository is the PostgreSQL-backed implementation of
// [SecretRepository], covering the "secrets" table. Only metadata lives
// here; ciphertexts are in [EncryptedSecretRepository].
type secretRepository struct {
	*DB
	logger *logger.Logger
}

// NewSecretRepository constructs a [SecretRepository] backed by the
// provided database connection and logger.
func NewSecretRepository(db *DB, logger *logger.Logger) SecretRepository {
	logger.Debug().Msg("creating secret repository")
	return &secretRepository{
		DB:     db,
		logger: logger,
	}
}

// CreateSecret persists a new secret row and returns it with its
// server-assigned id.
func (r *secretRepository) CreateSecret(ctx context.Context, secret models.Secret) (models.Secret, error) {
	log := logger.FromContext(ctx)

	row := r.QueryRowContext(ctx, createSecret, secret.Name, nullableID(secret.CategoryID), secret.CreatorID)
	saved, err := scanSecret(row.Scan)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.CreateSecret").Str("name", secret.Name).Msg("failed to insert secret")
		return models.Secret{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return saved, nil
}

// GetSecret returns the secret identified by secretID, or [ErrSecretNotFound].
func (r *secretRepository) GetSecret(ctx context.Context, secretID int64) (models.Secret, error) {
	log := logger.FromContext(ctx)

	row := r.QueryRowContext(ctx, getSecretByID, secretID)
	secret, err := scanSecret(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Secret{}, ErrSecretNotFound
		}
		log.Err(err).Str("func", "*secretRepository.GetSecret").Int64("secret_id", secretID).Msg("failed to scan secret row")
		return models.Secret{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return secret, nil
}

// DeleteSecret removes the secret row. Returns [ErrSecretNotFound] when
// nothing was deleted.
func (r *secretRepository) DeleteSecret(ctx context.Context, secretID int64) error {
	log := logger.FromContext(ctx)

	res, err := r.ExecContext(ctx, deleteSecretByID, secretID)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.DeleteSecret").Int64("secret_id", secretID).Msg("failed to delete secret")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSecretNotFound
	}

	return nil
}

// AssignCategory moves the secret into categoryID; zero detaches it.
// Returns [ErrSecretNotFound] when the secret does not exist.
func (r *secretRepository) AssignCategory(ctx context.Context, secretID, categoryID int64) error {
	log := logger.FromContext(ctx)

	res, err := r.ExecContext(ctx, assignSecretCategory, secretID, nullableID(categoryID))
	if err != nil {
		log.Err(err).
			Str("func", "*secretRepository.AssignCategory").
			Int64("secret_id", secretID).
			Int64("category_id", categoryID).
			Msg("failed to assign secret category")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrSecretNotFound
	}

	return nil
}

// SecretsByCreator returns every secret created by userID, ordered by id.
func (r *secretRepository) SecretsByCreator(ctx context.Context, userID int64) ([]models.Secret, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, getSecretsByCreator, userID)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.SecretsByCreator").Int64("user_id", userID).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	secrets := make([]models.Secret, 0, 16)
	for rows.Next() {
		secret, scanErr := scanSecret(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*secretRepository.SecretsByCreator").Msg("failed to scan secret row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		secrets = append(secrets, secret)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*secretRepository.SecretsByCreator").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return secrets, nil
}

// SecretsByCategories returns every secret attached to any of the given
// categories, ordered by id. An empty id list yields an empty result.
func (r *secretRepository) SecretsByCategories(ctx context.Context, categoryIDs []int64) ([]models.Secret, error) {
	log := logger.FromContext(ctx)

	if len(categoryIDs) == 0 {
		return nil, nil
	}

	query, args, err := sq.
		Select("secret_id", "name", "category_id", "creator_id", "created_at").
		From("secrets").
		Where(sq.Eq{"category_id": categoryIDs}).
		OrderBy("secret_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.SecretsByCategories").Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", "*secretRepository.SecretsByCategories").Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	secrets := make([]models.Secret, 0, 16)
	for rows.Next() {
		secret, scanErr := scanSecret(rows.Scan)
		if scanErr != nil {
			log.Err(scanErr).Str("func", "*secretRepository.SecretsByCategories").Msg("failed to scan secret row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, scanErr)
		}
		secrets = append(secrets, secret)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*secretRepository.SecretsByCategories").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return secrets, nil
}

// ClearCategory detaches every secret belonging to the given categories.
// Called when a category subtree is deleted: the association goes, the
// secrets stay.
func (r *secretRepository) ClearCategory(ctx context.Context, categoryIDs []int64) error {
	log := logger.FromContext(ctx)

	if len(categoryIDs) == 0 {
		return nil
	}

	if _, err := r.ExecContext(ctx, clearSecretCategories, categoryIDs); err != nil {
		log.Err(err).
			Str("func", "*secretRepository.ClearCategory").
			Int("count", len(categoryIDs)).
			Msg("failed to clear secret categories")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

func scanSecret(scan func(...any) error) (models.Secret, error) {
	var (
		secret   models.Secret
		category sql.NullInt64
	)
	if err := scan(&secret.SecretID, &secret.Name, &category, &secret.CreatorID, &secret.CreatedAt); err != nil {
		return models.Secret{}, err
	}
	secret.CategoryID = category.Int64

	return secret, nil
}

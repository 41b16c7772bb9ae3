package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
)

// encryptedSecretRepository is the PostgreSQL-backed implementation of
// [EncryptedSecretRepository], covering the "user_encrypted_secrets"
// table. A unique constraint on (secret_id, user_id) guarantees at most
// one ciphertext copy per pair; UpsertCiphertext rides on it to make job
// fulfillment idempotent under retransmission.
type encryptedSecretRepository struct {
	*DB
	logger *logger.Logger
}

// NewEncryptedSecretRepository constructs an [EncryptedSecretRepository]
// backed by the provided database connection and logger.
func NewEncryptedSecretRepository(db *DB, logger *logger.Logger) EncryptedSecretRepository {
	logger.Debug().Msg("creating encrypted secret repository")
	return &encryptedSecretRepository{
		DB:     db,
		logger: logger,
	}
}

// UpsertCiphertext inserts the ciphertext copy for (secretID, userID) or
// overwrites an existing one. Update-if-exists, insert-if-absent: the
// write succeeds identically whether or not a copy was already there.
func (r *encryptedSecretRepository) UpsertCiphertext(ctx context.Context, secretID, userID int64, ciphertext []byte) error {
	log := logger.FromContext(ctx)

	if _, err := r.ExecContext(ctx, upsertCiphertext, secretID, userID, ciphertext); err != nil {
		log.Err(err).
			Str("func", "*encryptedSecretRepository.UpsertCiphertext").
			Int64("secret_id", secretID).
			Int64("user_id", userID).
			Msg("failed to upsert ciphertext")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// CiphertextExists reports whether (secretID, userID) already has a copy.
func (r *encryptedSecretRepository) CiphertextExists(ctx context.Context, secretID, userID int64) (bool, error) {
	log := logger.FromContext(ctx)

	var exists bool
	err := r.QueryRowContext(ctx, ciphertextExists, secretID, userID).Scan(&exists)
	if err != nil {
		log.Err(err).
			Str("func", "*encryptedSecretRepository.CiphertextExists").
			Int64("secret_id", secretID).
			Int64("user_id", userID).
			Msg("failed to check ciphertext existence")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return exists, nil
}

// GetCiphertext returns the stored copy for (secretID, userID), or
// [ErrCiphertextNotFound].
func (r *encryptedSecretRepository) GetCiphertext(ctx context.Context, secretID, userID int64) (models.UserEncryptedSecret, error) {
	log := logger.FromContext(ctx)

	var row models.UserEncryptedSecret
	err := r.QueryRowContext(ctx, getCiphertext, secretID, userID).
		Scan(&row.ID, &row.SecretID, &row.UserID, &row.Ciphertext, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.UserEncryptedSecret{}, ErrCiphertextNotFound
		}
		log.Err(err).
			Str("func", "*encryptedSecretRepository.GetCiphertext").
			Int64("secret_id", secretID).
			Int64("user_id", userID).
			Msg("failed to scan ciphertext row")
		return models.UserEncryptedSecret{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return row, nil
}

// HolderIDs returns the ids of every user holding a ciphertext copy of
// the secret, ascending. These are the encoder candidates.
func (r *encryptedSecretRepository) HolderIDs(ctx context.Context, secretID int64) ([]int64, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, getHolderIDs, secretID)
	if err != nil {
		log.Err(err).
			Str("func", "*encryptedSecretRepository.HolderIDs").
			Int64("secret_id", secretID).
			Msg("failed to query holders")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 8)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			log.Err(err).Str("func", "*encryptedSecretRepository.HolderIDs").Msg("failed to scan holder row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*encryptedSecretRepository.HolderIDs").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

// DeleteBySecret removes every ciphertext copy of the secret. Called on
// secret deletion.
func (r *encryptedSecretRepository) DeleteBySecret(ctx context.Context, secretID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.ExecContext(ctx, deleteCiphertextsBySecret, secretID); err != nil {
		log.Err(err).
			Str("func", "*encryptedSecretRepository.DeleteBySecret").
			Int64("secret_id", secretID).
			Msg("failed to delete ciphertexts")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// DeleteByUserSecret removes the single copy held by userID. Called when
// a user loses access to the secret.
func (r *encryptedSecretRepository) DeleteByUserSecret(ctx context.Context, secretID, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.ExecContext(ctx, deleteCiphertextByUserSecret, secretID, userID); err != nil {
		log.Err(err).
			Str("func", "*encryptedSecretRepository.DeleteByUserSecret").
			Int64("secret_id", secretID).
			Int64("user_id", userID).
			Msg("failed to delete ciphertext")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
	"github.com/jackc/pgerrcode"
)

// jobRepository is the PostgreSQL-backed implementation of
// [JobRepository], covering the "encrypt_jobs" table.
//
// The table carries a unique index on (secret_id, user_id). Since a job
// row exists only while the job is live, the index means "at most one
// live job per pair": two concurrent Create calls may both pass the
// coordinator's checks, but only one insert lands — the other returns
// [ErrJobAlreadyExists] and the coordinator treats it as nothing to do.
type jobRepository struct {
	*DB
	logger *logger.Logger
}

// NewJobRepository constructs a [JobRepository] backed by the provided
// database connection and logger.
func NewJobRepository(db *DB, logger *logger.Logger) JobRepository {
	logger.Debug().Msg("creating job repository")
	return &jobRepository{
		DB:     db,
		logger: logger,
	}
}

// Insert persists a new live job and returns it with its server-assigned
// id and creation timestamp. Returns [ErrJobAlreadyExists] when a live
// job for the same (secret, user) pair is already present.
func (r *jobRepository) Insert(ctx context.Context, job models.EncryptJob) (models.EncryptJob, error) {
	log := logger.FromContext(ctx)

	row := r.QueryRowContext(ctx, insertJob, job.Token, job.SecretID, job.UserID, job.PublicKey)

	var saved models.EncryptJob
	err := row.Scan(&saved.JobID, &saved.Token, &saved.SecretID, &saved.UserID, &saved.PublicKey, &saved.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgerrcode.UniqueViolation {
			return models.EncryptJob{}, ErrJobAlreadyExists
		}
		log.Err(err).
			Str("func", "*jobRepository.Insert").
			Int64("secret_id", job.SecretID).
			Int64("user_id", job.UserID).
			Msg("failed to insert encrypt job")
		return models.EncryptJob{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return saved, nil
}

// FindByToken returns the live job identified by token, or [ErrJobNotFound].
func (r *jobRepository) FindByToken(ctx context.Context, token string) (models.EncryptJob, error) {
	log := logger.FromContext(ctx)

	row := r.QueryRowContext(ctx, getJobByToken, token)

	var job models.EncryptJob
	err := row.Scan(&job.JobID, &job.Token, &job.SecretID, &job.UserID, &job.PublicKey, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.EncryptJob{}, ErrJobNotFound
		}
		log.Err(err).Str("func", "*jobRepository.FindByToken").Msg("failed to scan job row")
		return models.EncryptJob{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return job, nil
}

// DeleteByToken retires the job identified by token. Returns
// [ErrJobNotFound] when the job is already gone.
func (r *jobRepository) DeleteByToken(ctx context.Context, token string) error {
	log := logger.FromContext(ctx)

	res, err := r.ExecContext(ctx, deleteJobByToken, token)
	if err != nil {
		log.Err(err).Str("func", "*jobRepository.DeleteByToken").Msg("failed to delete job")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrJobNotFound
	}

	return nil
}

// LiveExists reports whether a live job exists for (secretID, userID).
func (r *jobRepository) LiveExists(ctx context.Context, secretID, userID int64) (bool, error) {
	log := logger.FromContext(ctx)

	var exists bool
	err := r.QueryRowContext(ctx, jobExists, secretID, userID).Scan(&exists)
	if err != nil {
		log.Err(err).
			Str("func", "*jobRepository.LiveExists").
			Int64("secret_id", secretID).
			Int64("user_id", userID).
			Msg("failed to check job existence")
		return false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}

	return exists, nil
}

// LiveByUser returns every live job targeting userID, ordered by id.
// Used by the replay catch-up path.
func (r *jobRepository) LiveByUser(ctx context.Context, userID int64) ([]models.EncryptJob, error) {
	return r.liveWhere(ctx, sq.Eq{"user_id": userID}, "*jobRepository.LiveByUser")
}

// LiveBySecret returns every live job for secretID, ordered by id. Used
// to abort outstanding work when a secret is deleted.
func (r *jobRepository) LiveBySecret(ctx context.Context, secretID int64) ([]models.EncryptJob, error) {
	return r.liveWhere(ctx, sq.Eq{"secret_id": secretID}, "*jobRepository.LiveBySecret")
}

func (r *jobRepository) liveWhere(ctx context.Context, cond sq.Eq, funcName string) ([]models.EncryptJob, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.
		Select("job_id", "token", "secret_id", "user_id", "public_key", "created_at").
		From("encrypt_jobs").
		Where(cond).
		OrderBy("job_id").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to build query")
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := r.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Str("func", funcName).Msg("failed to execute query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	jobs := make([]models.EncryptJob, 0, 8)
	for rows.Next() {
		var job models.EncryptJob
		err = rows.Scan(&job.JobID, &job.Token, &job.SecretID, &job.UserID, &job.PublicKey, &job.CreatedAt)
		if err != nil {
			log.Err(err).Str("func", funcName).Msg("failed to scan job row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		jobs = append(jobs, job)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", funcName).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return jobs, nil
}

// DeleteOlderThan retires every job created before cutoff and returns
// their tokens so the caller can broadcast abort notices. Used by the
// janitor when a job TTL is configured.
func (r *jobRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) ([]string, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, deleteJobsOlderThan, cutoff)
	if err != nil {
		log.Err(err).Str("func", "*jobRepository.DeleteOlderThan").Msg("failed to delete expired jobs")
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	defer rows.Close()

	tokens := make([]string, 0, 8)
	for rows.Next() {
		var token string
		if err = rows.Scan(&token); err != nil {
			log.Err(err).Str("func", "*jobRepository.DeleteOlderThan").Msg("failed to scan token")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		tokens = append(tokens, token)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", "*jobRepository.DeleteOlderThan").Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return tokens, nil
}

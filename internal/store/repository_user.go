package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
	"github.com/jackc/pgerrcode"
)

// userRepository is the PostgreSQL-backed implementation of [UserRepository].
// It handles user account creation, lookup, and public-key management
// against the "users" table.
//
// All methods obtain a context-scoped logger via [logger.FromContext] for
// structured, request-level tracing of database interactions.
type userRepository struct {
	*DB
	logger *logger.Logger
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// database connection and logger.
func NewUserRepository(db *DB, logger *logger.Logger) UserRepository {
	logger.Debug().Msg("creating user repository")
	return &userRepository{
		DB:     db,
		logger: logger,
	}
}

// CreateUser persists a new user account and returns the stored record with
// its server-assigned UserID. Returns [ErrLoginAlreadyExists] when the login
// is taken.
func (r *userRepository) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.QueryRowContext(ctx, createUser, user.Login, user.AuthHash, user.Name, user.IsAdmin)

	var saved models.User
	err := row.Scan(&saved.UserID, &saved.Login, &saved.AuthHash, &saved.Name, &saved.IsAdmin, &saved.CreatedAt)
	if err != nil {
		if pgErrorCode(err) == pgerrcode.UniqueViolation {
			return models.User{}, ErrLoginAlreadyExists
		}
		log.Err(err).Str("func", "*userRepository.CreateUser").Str("login", user.Login).Msg("failed to insert user")
		return models.User{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return saved, nil
}

// FindUserByLogin returns the account registered under login, or
// [ErrUserNotFound].
func (r *userRepository) FindUserByLogin(ctx context.Context, login string) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.QueryRowContext(ctx, findUserByLogin, login)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.FindUserByLogin").Str("login", login).Msg("failed to scan user row")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// GetUser returns the account identified by userID, or [ErrUserNotFound].
func (r *userRepository) GetUser(ctx context.Context, userID int64) (models.User, error) {
	log := logger.FromContext(ctx)

	row := r.QueryRowContext(ctx, getUserByID, userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.GetUser").Int64("user_id", userID).Msg("failed to scan user row")
		return models.User{}, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return user, nil
}

// SetPublicKey stores (or replaces) the user's DER-encoded public key.
// Returns [ErrUserNotFound] when the user does not exist.
func (r *userRepository) SetPublicKey(ctx context.Context, userID int64, publicKey []byte) error {
	log := logger.FromContext(ctx)

	res, err := r.ExecContext(ctx, setUserPublicKey, userID, publicKey)
	if err != nil {
		log.Err(err).Str("func", "*userRepository.SetPublicKey").Int64("user_id", userID).Msg("failed to update public key")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// HasPublicKey reports whether the user has a usable public key on record.
// Unknown users simply have no key.
func (r *userRepository) HasPublicKey(ctx context.Context, userID int64) (bool, error) {
	key, err := r.PublicKeyOf(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}

	return len(key) > 0, nil
}

// PublicKeyOf returns the user's stored public key. The key may be empty
// when the user has not uploaded one yet. Returns [ErrUserNotFound] for
// unknown users.
func (r *userRepository) PublicKeyOf(ctx context.Context, userID int64) ([]byte, error) {
	log := logger.FromContext(ctx)

	var key []byte
	err := r.QueryRowContext(ctx, getUserPublicKey, userID).Scan(&key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		log.Err(err).Str("func", "*userRepository.PublicKeyOf").Int64("user_id", userID).Msg("failed to scan public key")
		return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
	}

	return key, nil
}

func scanUser(row *sql.Row) (models.User, error) {
	var (
		user      models.User
		publicKey []byte
	)
	err := row.Scan(&user.UserID, &user.Login, &user.AuthHash, &user.Name, &publicKey, &user.IsAdmin, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	user.PublicKey = publicKey

	return user, nil
}

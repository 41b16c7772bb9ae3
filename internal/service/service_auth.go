package service

import (
	"context"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-circle/internal/config"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/utils"
	"github.com/MKhiriev/go-vault-circle/models"
)

// authService is the concrete implementation of AuthService.
// It handles user registration, credential verification, and JWT token
// lifecycle using a UserRepository for persistence and HMAC-SHA256 for
// credential hashing.
type authService struct {
	// userRepository is the data-access layer used to create and look up users.
	userRepository store.UserRepository

	// jobService is notified when a user gains a public key, so that
	// re-encryption jobs for already-eligible secrets are opened.
	jobService JobService

	// hashKey is the HMAC secret used when hashing user credentials before
	// storage or comparison. Must match the value used at registration time.
	hashKey string

	// tokenSignKey is the HMAC secret used to sign and verify JWT tokens.
	tokenSignKey string

	// tokenIssuer is the "iss" claim embedded in every issued JWT.
	// Tokens whose issuer does not match this value are rejected during parsing.
	tokenIssuer string

	// tokenDuration controls how long a newly issued JWT remains valid.
	tokenDuration time.Duration

	// logger is the structured logger used for diagnostic and error output.
	logger *logger.Logger
}

// NewAuthService constructs a new AuthService wired to the given UserRepository
// and populated with security parameters from cfg.
//
// The returned service is safe for concurrent use; all state is read-only after
// construction.
func NewAuthService(userRepository store.UserRepository, jobService JobService, cfg config.App, logger *logger.Logger) AuthService {
	return &authService{
		userRepository: userRepository,
		jobService:     jobService,
		hashKey:        cfg.PasswordHashKey,
		tokenSignKey:   cfg.TokenSignKey,
		tokenIssuer:    cfg.TokenIssuer,
		tokenDuration:  cfg.TokenDuration,
		logger:         logger,
	}
}

// RegisterUser creates a new user account.
//
// It validates that both Login and AuthHash are non-empty, hashes the
// credential with the configured HMAC key, and delegates persistence to the
// UserRepository.
//
// Returns the persisted user (with a server-assigned UserID) or:
//   - ErrInvalidDataProvided if Login or AuthHash is empty.
//   - A wrapped storage error if the repository call fails (e.g. login already
//     taken, see store.ErrLoginAlreadyExists).
func (a *authService) RegisterUser(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.AuthHash == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	a.hashCredential(&user)

	registeredUser, err := a.userRepository.CreateUser(ctx, user)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user creation ended with error")
		return models.User{}, fmt.Errorf("user creation ended with error: %w", err)
	}

	return registeredUser, nil
}

// Login authenticates an existing user.
//
// It validates that both Login and AuthHash are non-empty, hashes the
// supplied credential, looks up the account by login, and compares the hashed
// values.
//
// Returns the authenticated user record or:
//   - ErrInvalidDataProvided if Login or AuthHash is empty.
//   - A wrapped storage error if the repository lookup fails (e.g. user not
//     found, see store.ErrUserNotFound).
//   - ErrWrongPassword if the hashed credentials do not match.
func (a *authService) Login(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	if user.Login == "" || user.AuthHash == "" {
		log.Error().Str("login", user.Login).Msg("invalid user data provided")
		return models.User{}, ErrInvalidDataProvided
	}

	a.hashCredential(&user)

	foundUser, err := a.userRepository.FindUserByLogin(ctx, user.Login)
	if err != nil {
		log.Err(err).Str("login", user.Login).Msg("user search by login failed")
		return models.User{}, fmt.Errorf("user search by login failed: %w", err)
	}

	if foundUser.AuthHash != user.AuthHash {
		log.Error().
			Int64("id", foundUser.UserID).
			Str("login", foundUser.Login).
			Msg("wrong password")
		return models.User{}, ErrWrongPassword
	}

	return foundUser, nil
}

// CreateToken issues a signed JWT for the given user.
//
// The token is signed with the configured tokenSignKey, carries the configured
// tokenIssuer as the "iss" claim, and expires after tokenDuration.
//
// Returns the token model on success or a wrapped error if JWT generation fails.
func (a *authService) CreateToken(ctx context.Context, user models.User) (models.Token, error) {
	token, err := utils.GenerateJWTToken(a.tokenIssuer, user.UserID, a.tokenDuration, a.tokenSignKey)
	if err != nil {
		return models.Token{}, fmt.Errorf("%w: %w", ErrTokenCreationFailed, err)
	}

	return token, nil
}

// ParseToken validates and parses a raw JWT string.
//
// It delegates to utils.ValidateAndParseJWTToken, verifying the signature and
// the issuer claim. Any validation failure (expired, wrong issuer, malformed)
// is normalised to ErrTokenIsExpiredOrInvalid so that callers do not need to
// inspect low-level JWT errors.
func (a *authService) ParseToken(ctx context.Context, tokenString string) (models.Token, error) {
	token, err := utils.ValidateAndParseJWTToken(tokenString, a.tokenSignKey, a.tokenIssuer)
	if err != nil {
		return models.Token{}, ErrTokenIsExpiredOrInvalid
	}

	return token, nil
}

// UploadPublicKey stores the user's public key and opens re-encryption
// jobs for every secret the user is already eligible for. A user without
// a public key cannot be a job target, so this call is what turns
// accumulated eligibility into pending work.
func (a *authService) UploadPublicKey(ctx context.Context, userID int64, publicKey []byte) error {
	log := logger.FromContext(ctx)

	if len(publicKey) == 0 {
		log.Error().Int64("user_id", userID).Msg("empty public key provided")
		return ErrInvalidDataProvided
	}

	if err := a.userRepository.SetPublicKey(ctx, userID, publicKey); err != nil {
		log.Err(err).Int64("user_id", userID).Msg("public key update failed")
		return fmt.Errorf("public key update failed: %w", err)
	}

	if err := a.jobService.ForUser(ctx, userID); err != nil {
		log.Err(err).Int64("user_id", userID).Msg("job creation after key upload failed")
		return fmt.Errorf("job creation after key upload failed: %w", err)
	}

	return nil
}

// hashCredential replaces the plain credential value in user with its
// HMAC-SHA256 hash computed using the service's hashKey.
func (a *authService) hashCredential(user *models.User) {
	user.AuthHash = utils.HashString(user.AuthHash, a.hashKey)
}

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
	"github.com/MKhiriev/go-vault-circle/models"
)

// secretService owns secret metadata and the per-user ciphertext reads.
// The server never sees plaintext: the creator uploads the first
// ciphertext copy together with the metadata, every later copy arrives
// through job fulfillment.
type secretService struct {
	forest                    *tree.Tree
	secretRepository          store.SecretRepository
	encryptedSecretRepository store.EncryptedSecretRepository
	userRepository            store.UserRepository
	groupRepository           store.GroupRepository
	encoderService            EncoderService
	jobService                JobService
	logger                    *logger.Logger
}

func NewSecretService(forest *tree.Tree, storages *store.Storages, encoderService EncoderService, jobService JobService, logger *logger.Logger) SecretService {
	return &secretService{
		forest:                    forest,
		secretRepository:          storages.SecretRepository,
		encryptedSecretRepository: storages.EncryptedSecretRepository,
		userRepository:            storages.UserRepository,
		groupRepository:           storages.GroupRepository,
		encoderService:            encoderService,
		jobService:                jobService,
		logger:                    logger,
	}
}

// CreateSecret persists the secret metadata together with the creator's
// own ciphertext copy, then opens re-encryption jobs for every other
// eligible recipient. The creator must be able to see the target
// category; a zero category id leaves the secret uncategorized.
func (s *secretService) CreateSecret(ctx context.Context, creatorID int64, req models.CreateSecretRequest) (models.Secret, error) {
	log := logger.FromContext(ctx)

	if req.Name == "" || len(req.Ciphertext) == 0 {
		log.Error().Int64("creator_id", creatorID).Msg("invalid secret data provided")
		return models.Secret{}, ErrInvalidDataProvided
	}

	if req.CategoryID != 0 {
		if _, err := s.forest.Get(req.CategoryID); err != nil {
			return models.Secret{}, fmt.Errorf("category lookup failed: %w", err)
		}
		if err := s.checkAccessToCategory(ctx, creatorID, req.CategoryID); err != nil {
			return models.Secret{}, err
		}
	}

	secret, err := s.secretRepository.CreateSecret(ctx, models.Secret{
		Name:       req.Name,
		CategoryID: req.CategoryID,
		CreatorID:  creatorID,
	})
	if err != nil {
		log.Err(err).Str("name", req.Name).Msg("secret creation ended with error")
		return models.Secret{}, fmt.Errorf("secret creation ended with error: %w", err)
	}

	if err = s.encryptedSecretRepository.UpsertCiphertext(ctx, secret.SecretID, creatorID, req.Ciphertext); err != nil {
		log.Err(err).Int64("secret_id", secret.SecretID).Msg("creator ciphertext write failed")
		return models.Secret{}, fmt.Errorf("creator ciphertext write failed: %w", err)
	}

	if err = s.jobService.ForSecret(ctx, secret.SecretID); err != nil {
		log.Err(err).Int64("secret_id", secret.SecretID).Msg("job creation after secret upload failed")
		return models.Secret{}, fmt.Errorf("job creation after secret upload failed: %w", err)
	}

	return secret, nil
}

func (s *secretService) GetSecret(ctx context.Context, secretID int64) (models.Secret, error) {
	secret, err := s.secretRepository.GetSecret(ctx, secretID)
	if err != nil {
		return models.Secret{}, fmt.Errorf("secret lookup failed: %w", err)
	}

	return secret, nil
}

// AssignCategory moves the secret into categoryID (zero detaches it) and
// opens jobs for the users the move newly makes eligible. Only the
// creator or an admin may reassign a secret.
func (s *secretService) AssignCategory(ctx context.Context, actorID, secretID, categoryID int64) error {
	log := logger.FromContext(ctx)

	secret, err := s.secretRepository.GetSecret(ctx, secretID)
	if err != nil {
		return fmt.Errorf("secret lookup failed: %w", err)
	}

	if err = s.checkManages(ctx, actorID, secret); err != nil {
		return err
	}

	if categoryID != 0 {
		if _, err = s.forest.Get(categoryID); err != nil {
			return fmt.Errorf("category lookup failed: %w", err)
		}
	}

	if err = s.secretRepository.AssignCategory(ctx, secretID, categoryID); err != nil {
		log.Err(err).Int64("secret_id", secretID).Int64("category_id", categoryID).Msg("secret category assignment failed")
		return fmt.Errorf("secret category assignment failed: %w", err)
	}

	if err = s.jobService.ForSecret(ctx, secretID); err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("job creation after category assignment failed")
		return fmt.Errorf("job creation after category assignment failed: %w", err)
	}

	return nil
}

// DeleteSecret removes the secret, every per-user ciphertext copy, and
// every live re-encryption job for it, broadcasting aborts so peers stop
// working on retired advertisements. Only the creator or an admin may
// delete a secret.
func (s *secretService) DeleteSecret(ctx context.Context, actorID, secretID int64) error {
	log := logger.FromContext(ctx)

	secret, err := s.secretRepository.GetSecret(ctx, secretID)
	if err != nil {
		return fmt.Errorf("secret lookup failed: %w", err)
	}

	if err = s.checkManages(ctx, actorID, secret); err != nil {
		return err
	}

	if err = s.jobService.AbortForSecret(ctx, secretID); err != nil {
		return err
	}

	if err = s.encryptedSecretRepository.DeleteBySecret(ctx, secretID); err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("ciphertext cascade deletion failed")
		return fmt.Errorf("ciphertext cascade deletion failed: %w", err)
	}

	if err = s.secretRepository.DeleteSecret(ctx, secretID); err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("secret deletion failed")
		return fmt.Errorf("secret deletion failed: %w", err)
	}

	return nil
}

// GetMyCiphertext returns the caller's ciphertext copy of the secret.
// ErrNotAccessible when the secret is outside the caller's reach. A
// reachable secret whose copy has not been re-encrypted yet surfaces
// store.ErrCiphertextNotFound; the pending job will fill the gap.
func (s *secretService) GetMyCiphertext(ctx context.Context, userID, secretID int64) (models.UserEncryptedSecret, error) {
	log := logger.FromContext(ctx)

	accessible, err := s.canRead(ctx, userID, secretID)
	if err != nil {
		return models.UserEncryptedSecret{}, err
	}
	if !accessible {
		log.Warn().Int64("user_id", userID).Int64("secret_id", secretID).Msg("secret access denied")
		return models.UserEncryptedSecret{}, ErrNotAccessible
	}

	ciphertext, err := s.encryptedSecretRepository.GetCiphertext(ctx, secretID, userID)
	if err != nil {
		return models.UserEncryptedSecret{}, fmt.Errorf("ciphertext lookup failed: %w", err)
	}

	return ciphertext, nil
}

// canRead reports whether userID may read the secret: admins always,
// everyone else only when they are among the secret's eligible
// recipients.
func (s *secretService) canRead(ctx context.Context, userID, secretID int64) (bool, error) {
	user, err := s.userRepository.GetUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("user lookup failed: %w", err)
	}
	if user.IsAdmin {
		return true, nil
	}

	recipientIDs, err := s.encoderService.EligibleRecipients(ctx, secretID)
	if err != nil {
		return false, err
	}

	for _, recipientID := range recipientIDs {
		if recipientID == userID {
			return true, nil
		}
	}

	return false, nil
}

// checkManages allows the secret's creator and admins through, rejects
// everyone else with ErrNotAccessible.
func (s *secretService) checkManages(ctx context.Context, actorID int64, secret models.Secret) error {
	if actorID == secret.CreatorID {
		return nil
	}

	user, err := s.userRepository.GetUser(ctx, actorID)
	if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}
	if !user.IsAdmin {
		return ErrNotAccessible
	}

	return nil
}

// checkAccessToCategory verifies the user has standing on the category
// chain: creator or responsible of the category or an ancestor, member
// of a group granted along the chain, or admin.
func (s *secretService) checkAccessToCategory(ctx context.Context, userID, categoryID int64) error {
	user, err := s.userRepository.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}
	if user.IsAdmin {
		return nil
	}

	chain := append([]int64{categoryID}, s.forest.AncestorsOf(categoryID)...)
	for _, id := range chain {
		node, err := s.forest.Get(id)
		if err != nil {
			continue
		}
		if node.CreatorID == userID || node.ResponsibleID == userID {
			return nil
		}
	}

	groupIDs := s.forest.GroupsInScope(categoryID)
	if len(groupIDs) > 0 {
		memberships, err := s.groupsOf(ctx, userID)
		if err != nil {
			return err
		}
		for _, groupID := range groupIDs {
			if _, ok := memberships[groupID]; ok {
				return nil
			}
		}
	}

	return ErrNotAccessible
}

func (s *secretService) groupsOf(ctx context.Context, userID int64) (map[int64]struct{}, error) {
	groupIDs, err := s.groupRepository.GroupsOf(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("group membership lookup failed: %w", err)
	}

	memberships := make(map[int64]struct{}, len(groupIDs))
	for _, groupID := range groupIDs {
		memberships[groupID] = struct{}{}
	}

	return memberships, nil
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
	"github.com/MKhiriev/go-vault-circle/models"
)

// jobService coordinates crowd re-encryption. A job is desired-state
// reconciliation, not a command: Create answers "should user X hold
// secret Y and not yet?" and quietly does nothing when the answer is no.
// The durable states are "job exists" (pending) and "job does not exist"
// (never needed, fulfilled, or aborted); advertisement is transient.
type jobService struct {
	forest                    *tree.Tree
	jobRepository             store.JobRepository
	userRepository            store.UserRepository
	secretRepository          store.SecretRepository
	encryptedSecretRepository store.EncryptedSecretRepository
	groupRepository           store.GroupRepository
	encoderService            EncoderService
	channel                   NotificationChannel
	tokens                    TokenGenerator
	logger                    *logger.Logger
}

func NewJobService(forest *tree.Tree, storages *store.Storages, encoderService EncoderService, channel NotificationChannel, tokens TokenGenerator, logger *logger.Logger) JobService {
	return &jobService{
		forest:                    forest,
		jobRepository:             storages.JobRepository,
		userRepository:            storages.UserRepository,
		secretRepository:          storages.SecretRepository,
		encryptedSecretRepository: storages.EncryptedSecretRepository,
		groupRepository:           storages.GroupRepository,
		encoderService:            encoderService,
		channel:                   channel,
		tokens:                    tokens,
		logger:                    logger,
	}
}

// Create opens a re-encryption job for (secretID, userID) and advertises
// it to every qualified encoder of the secret.
//
// It is a silent no-op when the user already holds a ciphertext, has no
// public key, or a live job for the pair already exists. The last check
// is racy by itself, so the job store enforces a unique index on the
// pair and Create swallows the resulting [store.ErrJobAlreadyExists];
// concurrent duplicate requests collapse into one job either way.
func (j *jobService) Create(ctx context.Context, secretID, userID int64) error {
	log := logger.FromContext(ctx)

	exists, err := j.encryptedSecretRepository.CiphertextExists(ctx, secretID, userID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Int64("user_id", userID).Msg("ciphertext existence check failed")
		return fmt.Errorf("ciphertext existence check failed: %w", err)
	}
	if exists {
		return nil
	}

	hasKey, err := j.userRepository.HasPublicKey(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("public key check failed")
		return fmt.Errorf("public key check failed: %w", err)
	}
	if !hasKey {
		return nil
	}

	live, err := j.jobRepository.LiveExists(ctx, secretID, userID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Int64("user_id", userID).Msg("live job check failed")
		return fmt.Errorf("live job check failed: %w", err)
	}
	if live {
		return nil
	}

	publicKey, err := j.userRepository.PublicKeyOf(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("public key lookup failed")
		return fmt.Errorf("public key lookup failed: %w", err)
	}

	job, err := j.jobRepository.Insert(ctx, models.EncryptJob{
		Token:     j.tokens.Generate(),
		SecretID:  secretID,
		UserID:    userID,
		PublicKey: publicKey,
	})
	if err != nil {
		if errors.Is(err, store.ErrJobAlreadyExists) {
			return nil
		}
		log.Err(err).Int64("secret_id", secretID).Int64("user_id", userID).Msg("job insertion failed")
		return fmt.Errorf("job insertion failed: %w", err)
	}

	log.Debug().
		Str("token", job.Token).
		Int64("secret_id", secretID).
		Int64("user_id", userID).
		Msg("encrypt job created")

	j.advertise(ctx, job)

	return nil
}

// ForSecret opens jobs bringing every eligible recipient of the secret
// up to date. Recipients already holding a ciphertext, or without a
// public key, fall out inside Create.
func (j *jobService) ForSecret(ctx context.Context, secretID int64) error {
	recipientIDs, err := j.encoderService.EligibleRecipients(ctx, secretID)
	if err != nil {
		return fmt.Errorf("recipient resolution failed: %w", err)
	}

	for _, userID := range recipientIDs {
		if err = j.Create(ctx, secretID, userID); err != nil {
			return err
		}
	}

	return nil
}

// ForUser opens jobs for every secret the user is eligible for: secrets
// they created, secrets of every category they can reach through a
// group, and secrets of every category they are responsible for. Called
// when a user first uploads a public key.
func (j *jobService) ForUser(ctx context.Context, userID int64) error {
	log := logger.FromContext(ctx)

	ownSecrets, err := j.secretRepository.SecretsByCreator(ctx, userID)
	if err != nil {
		return fmt.Errorf("created secret lookup failed: %w", err)
	}
	for _, secret := range ownSecrets {
		if err = j.Create(ctx, secret.SecretID, userID); err != nil {
			return err
		}
	}

	groupIDs, err := j.groupRepository.GroupsOf(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("group membership lookup failed")
		return fmt.Errorf("group membership lookup failed: %w", err)
	}

	for _, groupID := range groupIDs {
		if err = j.ForGroupMember(ctx, groupID, userID); err != nil {
			return err
		}
	}

	// responsibility inherits downward, so the maximal responsible
	// categories cover the user's whole responsible reach
	responsibleRoots := j.forest.Visible(func(node tree.Node) bool {
		return node.ResponsibleID == userID
	})
	for _, categoryID := range responsibleRoots {
		if err = j.ForCategoryKeys(ctx, categoryID, userID); err != nil {
			return err
		}
	}

	return nil
}

// ForGroupMember opens jobs for one user across every secret reachable
// through one group: secrets of categories granted the group and of
// their whole subtrees.
func (j *jobService) ForGroupMember(ctx context.Context, groupID, userID int64) error {
	secrets, err := j.secretsGrantedTo(ctx, groupID)
	if err != nil {
		return err
	}

	for _, secret := range secrets {
		if err = j.Create(ctx, secret.SecretID, userID); err != nil {
			return err
		}
	}

	return nil
}

// ForCategoryGroup opens jobs for every member of a freshly granted
// group across the category subtree's secrets.
func (j *jobService) ForCategoryGroup(ctx context.Context, categoryID, groupID int64) error {
	log := logger.FromContext(ctx)

	secrets, err := j.secretsUnder(ctx, categoryID)
	if err != nil {
		return err
	}
	if len(secrets) == 0 {
		return nil
	}

	memberIDs, err := j.groupRepository.MembersOf(ctx, groupID)
	if err != nil {
		log.Err(err).Int64("group_id", groupID).Msg("group member lookup failed")
		return fmt.Errorf("group member lookup failed: %w", err)
	}

	for _, secret := range secrets {
		for _, userID := range memberIDs {
			if err = j.Create(ctx, secret.SecretID, userID); err != nil {
				return err
			}
		}
	}

	return nil
}

// ForCategoryKeys opens jobs for one user across the category subtree's
// secrets. Used when a user gains individual standing on a category,
// e.g. is made responsible for it.
func (j *jobService) ForCategoryKeys(ctx context.Context, categoryID, userID int64) error {
	secrets, err := j.secretsUnder(ctx, categoryID)
	if err != nil {
		return err
	}

	for _, secret := range secrets {
		if err = j.Create(ctx, secret.SecretID, userID); err != nil {
			return err
		}
	}

	return nil
}

// Fulfill accepts a re-encrypted blob for the live job matching token.
// The ciphertext write is an upsert, so retransmits of the same token
// before retirement are harmless; after retirement the token no longer
// resolves and the call fails with [ErrJobNotFound] while the first
// write stands.
func (j *jobService) Fulfill(ctx context.Context, token string, ciphertext []byte) (models.FulfillResponse, error) {
	log := logger.FromContext(ctx)

	job, err := j.jobRepository.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrJobNotFound) {
			return models.FulfillResponse{}, ErrJobNotFound
		}
		log.Err(err).Str("token", token).Msg("job lookup failed")
		return models.FulfillResponse{}, fmt.Errorf("job lookup failed: %w", err)
	}

	if err = j.encryptedSecretRepository.UpsertCiphertext(ctx, job.SecretID, job.UserID, ciphertext); err != nil {
		log.Err(err).Str("token", token).Msg("ciphertext upsert failed")
		return models.FulfillResponse{}, fmt.Errorf("ciphertext upsert failed: %w", err)
	}

	if err = j.jobRepository.DeleteByToken(ctx, token); err != nil && !errors.Is(err, store.ErrJobNotFound) {
		log.Err(err).Str("token", token).Msg("job retirement failed")
		return models.FulfillResponse{}, fmt.Errorf("job retirement failed: %w", err)
	}

	// other peers may still be working on this advertisement
	j.channel.Broadcast(models.TopicJobAborted, models.AbortNotice{Token: token})

	log.Debug().
		Str("token", token).
		Int64("secret_id", job.SecretID).
		Int64("user_id", job.UserID).
		Msg("encrypt job fulfilled")

	return models.FulfillResponse{Status: "fulfilled"}, nil
}

// ReplayPending re-advertises every still-live job targeting userID
// whose ciphertext is still missing. A catch-up path for encoders that
// missed the real-time advertisement.
func (j *jobService) ReplayPending(ctx context.Context, userID int64) (int, error) {
	log := logger.FromContext(ctx)

	jobs, err := j.jobRepository.LiveByUser(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("live job lookup failed")
		return 0, fmt.Errorf("live job lookup failed: %w", err)
	}

	replayed := 0
	for _, job := range jobs {
		exists, err := j.encryptedSecretRepository.CiphertextExists(ctx, job.SecretID, userID)
		if err != nil {
			return replayed, fmt.Errorf("ciphertext existence check failed: %w", err)
		}
		if exists {
			continue
		}

		j.advertise(ctx, job)
		replayed++
	}

	return replayed, nil
}

// AbortForSecret retires every live job of the secret and broadcasts an
// abort notice per token. Called when the secret itself goes away.
func (j *jobService) AbortForSecret(ctx context.Context, secretID int64) error {
	log := logger.FromContext(ctx)

	jobs, err := j.jobRepository.LiveBySecret(ctx, secretID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("live job lookup failed")
		return fmt.Errorf("live job lookup failed: %w", err)
	}

	for _, job := range jobs {
		if err = j.jobRepository.DeleteByToken(ctx, job.Token); err != nil && !errors.Is(err, store.ErrJobNotFound) {
			log.Err(err).Str("token", job.Token).Msg("job retirement failed")
			return fmt.Errorf("job retirement failed: %w", err)
		}
		j.channel.Broadcast(models.TopicJobAborted, models.AbortNotice{Token: job.Token})
	}

	return nil
}

// RevokeStale deletes the ciphertext copies of users who are no longer
// eligible recipients of the secret and retires their live jobs, each
// with an abort broadcast. The downward half of reconciliation: Create
// brings missing holders in, RevokeStale takes stale holders out.
func (j *jobService) RevokeStale(ctx context.Context, secretID int64) error {
	log := logger.FromContext(ctx)

	recipientIDs, err := j.encoderService.EligibleRecipients(ctx, secretID)
	if err != nil {
		return fmt.Errorf("recipient resolution failed: %w", err)
	}
	eligible := make(map[int64]struct{}, len(recipientIDs))
	for _, userID := range recipientIDs {
		eligible[userID] = struct{}{}
	}

	holderIDs, err := j.encryptedSecretRepository.HolderIDs(ctx, secretID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("holder lookup failed")
		return fmt.Errorf("holder lookup failed: %w", err)
	}
	for _, userID := range holderIDs {
		if _, ok := eligible[userID]; ok {
			continue
		}
		if err = j.encryptedSecretRepository.DeleteByUserSecret(ctx, secretID, userID); err != nil {
			log.Err(err).Int64("secret_id", secretID).Int64("user_id", userID).Msg("ciphertext revocation failed")
			return fmt.Errorf("ciphertext revocation failed: %w", err)
		}
		log.Debug().Int64("secret_id", secretID).Int64("user_id", userID).Msg("stale ciphertext revoked")
	}

	jobs, err := j.jobRepository.LiveBySecret(ctx, secretID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("live job lookup failed")
		return fmt.Errorf("live job lookup failed: %w", err)
	}
	for _, job := range jobs {
		if _, ok := eligible[job.UserID]; ok {
			continue
		}
		if err = j.jobRepository.DeleteByToken(ctx, job.Token); err != nil && !errors.Is(err, store.ErrJobNotFound) {
			log.Err(err).Str("token", job.Token).Msg("job retirement failed")
			return fmt.Errorf("job retirement failed: %w", err)
		}
		j.channel.Broadcast(models.TopicJobAborted, models.AbortNotice{Token: job.Token})
	}

	return nil
}

// PurgeExpired retires every job created before now-ttl and broadcasts
// abort notices for the purged tokens.
func (j *jobService) PurgeExpired(ctx context.Context, ttl time.Duration) (int, error) {
	log := logger.FromContext(ctx)

	tokens, err := j.jobRepository.DeleteOlderThan(ctx, time.Now().Add(-ttl))
	if err != nil {
		log.Err(err).Msg("expired job purge failed")
		return 0, fmt.Errorf("expired job purge failed: %w", err)
	}

	for _, token := range tokens {
		j.channel.Broadcast(models.TopicJobAborted, models.AbortNotice{Token: token})
	}

	return len(tokens), nil
}

// advertise delivers the job to every qualified encoder of its secret.
// Fire-and-forget: delivery failures never surface, a peer that misses
// the notice catches up through ReplayPending.
func (j *jobService) advertise(ctx context.Context, job models.EncryptJob) {
	log := logger.FromContext(ctx)

	encoderIDs, err := j.encoderService.EncodersFor(ctx, job.SecretID)
	if err != nil {
		log.Err(err).Str("token", job.Token).Msg("encoder resolution failed, advertisement skipped")
		return
	}

	advertisement := models.JobAdvertisement{
		Token:           job.Token,
		SecretID:        job.SecretID,
		TargetPublicKey: job.PublicKey,
	}
	for _, encoderID := range encoderIDs {
		j.channel.SendToUser(encoderID, models.TopicJobAdvertised, advertisement)
	}
}

// secretsUnder returns the secrets of categoryID and its whole subtree.
func (j *jobService) secretsUnder(ctx context.Context, categoryID int64) ([]models.Secret, error) {
	categoryIDs := append([]int64{categoryID}, j.descendants(categoryID)...)

	secrets, err := j.secretRepository.SecretsByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("secret lookup by categories failed: %w", err)
	}

	return secrets, nil
}

// secretsGrantedTo returns the secrets reachable through one group: the
// secrets of every category granted the group and of their subtrees.
func (j *jobService) secretsGrantedTo(ctx context.Context, groupID int64) ([]models.Secret, error) {
	seen := make(map[int64]struct{})
	var categoryIDs []int64
	for _, rootID := range j.grantedRoots(groupID) {
		for _, id := range append([]int64{rootID}, j.descendants(rootID)...) {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			categoryIDs = append(categoryIDs, id)
		}
	}

	secrets, err := j.secretRepository.SecretsByCategories(ctx, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("secret lookup by categories failed: %w", err)
	}

	return secrets, nil
}

// grantedRoots returns the maximal categories carrying a direct grant
// for groupID; their subtrees cover the group's whole reach.
func (j *jobService) grantedRoots(groupID int64) []int64 {
	return j.forest.Visible(func(node tree.Node) bool {
		for _, granted := range node.Groups {
			if granted == groupID {
				return true
			}
		}
		return false
	})
}

func (j *jobService) descendants(categoryID int64) []int64 {
	return j.forest.DescendantsOf(categoryID)
}

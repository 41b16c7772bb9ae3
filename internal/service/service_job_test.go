// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"
	"time"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
	"github.com/MKhiriev/go-vault-circle/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─────────────────────────────────────────────
// Helper
// ─────────────────────────────────────────────

type jobTestDeps struct {
	jobs    *mockJobRepository
	users   *mockUserRepository
	secrets *mockSecretRepository
	ciphers *mockEncryptedSecretRepository
	groups  *mockGroupRepository
	encoder *mockEncoderService
	channel *recordingChannel
}

func newTestJobService(deps jobTestDeps) *jobService {
	return &jobService{
		forest:                    tree.NewTree(),
		jobRepository:             deps.jobs,
		userRepository:            deps.users,
		secretRepository:          deps.secrets,
		encryptedSecretRepository: deps.ciphers,
		groupRepository:           deps.groups,
		encoderService:            deps.encoder,
		channel:                   deps.channel,
		tokens:                    &stubTokens{},
		logger:                    logger.Nop(),
	}
}

func defaultJobDeps() jobTestDeps {
	return jobTestDeps{
		jobs:    &mockJobRepository{},
		users:   &mockUserRepository{},
		secrets: &mockSecretRepository{},
		ciphers: &mockEncryptedSecretRepository{},
		groups:  &mockGroupRepository{},
		encoder: &mockEncoderService{},
		channel: &recordingChannel{},
	}
}

// ─────────────────────────────────────────────
// Create
// ─────────────────────────────────────────────

func TestJobService_Create_AdvertisesToEncoders(t *testing.T) {
	deps := defaultJobDeps()

	var inserted models.EncryptJob
	deps.jobs.insertFn = func(_ context.Context, job models.EncryptJob) (models.EncryptJob, error) {
		inserted = job
		job.JobID = 77
		return job, nil
	}
	deps.users.publicKeyOfFn = func(_ context.Context, userID int64) ([]byte, error) {
		return []byte("key-of-2"), nil
	}
	deps.encoder.encodersForFn = func(_ context.Context, secretID int64) ([]int64, error) {
		return []int64{1}, nil
	}

	svc := newTestJobService(deps)

	err := svc.Create(context.Background(), 10, 2)
	require.NoError(t, err)

	assert.Equal(t, int64(10), inserted.SecretID)
	assert.Equal(t, int64(2), inserted.UserID)
	assert.Equal(t, []byte("key-of-2"), inserted.PublicKey, "key must be snapshotted onto the job")
	assert.NotEmpty(t, inserted.Token)

	require.Len(t, deps.channel.sent, 1)
	notice := deps.channel.sent[0]
	assert.Equal(t, int64(1), notice.userID, "advertisement goes to the encoder, not the target")
	assert.Equal(t, models.TopicJobAdvertised, notice.topic)

	ad, ok := notice.payload.(models.JobAdvertisement)
	require.True(t, ok)
	assert.Equal(t, inserted.Token, ad.Token)
	assert.Equal(t, int64(10), ad.SecretID)
	assert.Equal(t, []byte("key-of-2"), ad.TargetPublicKey)
}

func TestJobService_Create_NoOpWhenCiphertextExists(t *testing.T) {
	deps := defaultJobDeps()
	deps.ciphers.existsFn = func(_ context.Context, _, _ int64) (bool, error) {
		return true, nil
	}
	inserts := 0
	deps.jobs.insertFn = func(_ context.Context, job models.EncryptJob) (models.EncryptJob, error) {
		inserts++
		return job, nil
	}

	svc := newTestJobService(deps)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Create(context.Background(), 10, 2))
	}

	assert.Zero(t, inserts, "an already satisfied pair never produces a job")
	assert.Empty(t, deps.channel.sent)
}

func TestJobService_Create_NoOpWithoutPublicKey(t *testing.T) {
	deps := defaultJobDeps()
	deps.users.hasPublicKeyFn = func(_ context.Context, _ int64) (bool, error) {
		return false, nil
	}
	inserts := 0
	deps.jobs.insertFn = func(_ context.Context, job models.EncryptJob) (models.EncryptJob, error) {
		inserts++
		return job, nil
	}

	svc := newTestJobService(deps)

	require.NoError(t, svc.Create(context.Background(), 10, 2))
	assert.Zero(t, inserts)
}

func TestJobService_Create_NoOpWhenJobIsLive(t *testing.T) {
	deps := defaultJobDeps()
	deps.jobs.liveExistsFn = func(_ context.Context, _, _ int64) (bool, error) {
		return true, nil
	}
	inserts := 0
	deps.jobs.insertFn = func(_ context.Context, job models.EncryptJob) (models.EncryptJob, error) {
		inserts++
		return job, nil
	}

	svc := newTestJobService(deps)

	require.NoError(t, svc.Create(context.Background(), 10, 2))
	assert.Zero(t, inserts)
}

func TestJobService_Create_SwallowsDuplicateInsert(t *testing.T) {
	// the check-then-create window: a concurrent Create won the insert
	deps := defaultJobDeps()
	deps.jobs.insertFn = func(_ context.Context, _ models.EncryptJob) (models.EncryptJob, error) {
		return models.EncryptJob{}, store.ErrJobAlreadyExists
	}

	svc := newTestJobService(deps)

	require.NoError(t, svc.Create(context.Background(), 10, 2))
	assert.Empty(t, deps.channel.sent, "the losing Create must not advertise")
}

// ─────────────────────────────────────────────
// Fulfill
// ─────────────────────────────────────────────

func TestJobService_Fulfill_WritesRetiresAndBroadcasts(t *testing.T) {
	deps := defaultJobDeps()

	job := models.EncryptJob{JobID: 5, Token: "tok-1", SecretID: 10, UserID: 2}
	deps.jobs.findByTokenFn = func(_ context.Context, token string) (models.EncryptJob, error) {
		require.Equal(t, "tok-1", token)
		return job, nil
	}

	var written models.UserEncryptedSecret
	deps.ciphers.upsertFn = func(_ context.Context, secretID, userID int64, ciphertext []byte) error {
		written = models.UserEncryptedSecret{SecretID: secretID, UserID: userID, Ciphertext: ciphertext}
		return nil
	}

	deleted := ""
	deps.jobs.deleteByTokenFn = func(_ context.Context, token string) error {
		deleted = token
		return nil
	}

	svc := newTestJobService(deps)

	resp, err := svc.Fulfill(context.Background(), "tok-1", []byte("cipherXYZ"))
	require.NoError(t, err)
	assert.Equal(t, "fulfilled", resp.Status)

	assert.Equal(t, int64(10), written.SecretID)
	assert.Equal(t, int64(2), written.UserID)
	assert.Equal(t, []byte("cipherXYZ"), written.Ciphertext)
	assert.Equal(t, "tok-1", deleted)

	require.Len(t, deps.channel.broadcasts, 1)
	assert.Equal(t, models.TopicJobAborted, deps.channel.broadcasts[0].Topic)
	assert.Equal(t, models.AbortNotice{Token: "tok-1"}, deps.channel.broadcasts[0].Payload)
}

func TestJobService_Fulfill_SecondCallNotFound(t *testing.T) {
	deps := defaultJobDeps()

	live := true
	deps.jobs.findByTokenFn = func(_ context.Context, token string) (models.EncryptJob, error) {
		if live {
			return models.EncryptJob{Token: token, SecretID: 10, UserID: 2}, nil
		}
		return models.EncryptJob{}, store.ErrJobNotFound
	}
	deps.jobs.deleteByTokenFn = func(_ context.Context, _ string) error {
		live = false
		return nil
	}

	writes := 0
	deps.ciphers.upsertFn = func(_ context.Context, _, _ int64, _ []byte) error {
		writes++
		return nil
	}

	svc := newTestJobService(deps)

	_, err := svc.Fulfill(context.Background(), "tok-1", []byte("first"))
	require.NoError(t, err)

	_, err = svc.Fulfill(context.Background(), "tok-1", []byte("second"))
	require.ErrorIs(t, err, ErrJobNotFound)

	assert.Equal(t, 1, writes, "the retransmit must not overwrite the first write")
}

// ─────────────────────────────────────────────
// ReplayPending / AbortForSecret / PurgeExpired
// ─────────────────────────────────────────────

func TestJobService_ReplayPending_SkipsSatisfiedJobs(t *testing.T) {
	deps := defaultJobDeps()

	deps.jobs.liveByUserFn = func(_ context.Context, userID int64) ([]models.EncryptJob, error) {
		return []models.EncryptJob{
			{Token: "tok-1", SecretID: 10, UserID: userID},
			{Token: "tok-2", SecretID: 11, UserID: userID},
		}, nil
	}
	deps.ciphers.existsFn = func(_ context.Context, secretID, _ int64) (bool, error) {
		return secretID == 10, nil // secret 10 already delivered out of band
	}
	deps.encoder.encodersForFn = func(_ context.Context, _ int64) ([]int64, error) {
		return []int64{1}, nil
	}

	svc := newTestJobService(deps)

	replayed, err := svc.ReplayPending(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 1, replayed)

	require.Len(t, deps.channel.sent, 1)
	ad, ok := deps.channel.sent[0].payload.(models.JobAdvertisement)
	require.True(t, ok)
	assert.Equal(t, "tok-2", ad.Token)
}

func TestJobService_AbortForSecret(t *testing.T) {
	deps := defaultJobDeps()

	deps.jobs.liveBySecretFn = func(_ context.Context, secretID int64) ([]models.EncryptJob, error) {
		return []models.EncryptJob{
			{Token: "tok-1", SecretID: secretID, UserID: 2},
			{Token: "tok-2", SecretID: secretID, UserID: 3},
		}, nil
	}

	var deleted []string
	deps.jobs.deleteByTokenFn = func(_ context.Context, token string) error {
		deleted = append(deleted, token)
		return nil
	}

	svc := newTestJobService(deps)

	require.NoError(t, svc.AbortForSecret(context.Background(), 10))
	assert.Equal(t, []string{"tok-1", "tok-2"}, deleted)
	require.Len(t, deps.channel.broadcasts, 2)
	assert.Equal(t, models.AbortNotice{Token: "tok-1"}, deps.channel.broadcasts[0].Payload)
	assert.Equal(t, models.AbortNotice{Token: "tok-2"}, deps.channel.broadcasts[1].Payload)
}

func TestJobService_PurgeExpired(t *testing.T) {
	deps := defaultJobDeps()

	var cutoff time.Time
	deps.jobs.deleteOlderThanFn = func(_ context.Context, c time.Time) ([]string, error) {
		cutoff = c
		return []string{"tok-1", "tok-2"}, nil
	}

	svc := newTestJobService(deps)

	purged, err := svc.PurgeExpired(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, purged)
	assert.WithinDuration(t, time.Now().Add(-time.Hour), cutoff, 5*time.Second)
	assert.Len(t, deps.channel.broadcasts, 2)
}

// ─────────────────────────────────────────────
// RevokeStale
// ─────────────────────────────────────────────

func TestJobService_RevokeStale_DeletesStaleHoldersAndAbortsTheirJobs(t *testing.T) {
	deps := defaultJobDeps()

	deps.encoder.eligibleRecipientsFn = func(_ context.Context, _ int64) ([]int64, error) {
		return []int64{1, 2}, nil
	}
	deps.ciphers.holderIDsFn = func(_ context.Context, _ int64) ([]int64, error) {
		return []int64{1, 2, 3}, nil // user 3 lost access
	}

	var revoked [][2]int64
	deps.ciphers.deleteByUserSecretFn = func(_ context.Context, secretID, userID int64) error {
		revoked = append(revoked, [2]int64{secretID, userID})
		return nil
	}

	deps.jobs.liveBySecretFn = func(_ context.Context, secretID int64) ([]models.EncryptJob, error) {
		return []models.EncryptJob{
			{Token: "tok-live", SecretID: secretID, UserID: 2},
			{Token: "tok-stale", SecretID: secretID, UserID: 4},
		}, nil
	}

	var deleted []string
	deps.jobs.deleteByTokenFn = func(_ context.Context, token string) error {
		deleted = append(deleted, token)
		return nil
	}

	svc := newTestJobService(deps)

	require.NoError(t, svc.RevokeStale(context.Background(), 10))

	assert.Equal(t, [][2]int64{{10, 3}}, revoked, "only the holder outside the recipient set loses the copy")
	assert.Equal(t, []string{"tok-stale"}, deleted, "the job of a still-eligible target survives")
	require.Len(t, deps.channel.broadcasts, 1)
	assert.Equal(t, models.TopicJobAborted, deps.channel.broadcasts[0].Topic)
	assert.Equal(t, models.AbortNotice{Token: "tok-stale"}, deps.channel.broadcasts[0].Payload)
}

func TestJobService_RevokeStale_NoOpWhenAllHoldersEligible(t *testing.T) {
	deps := defaultJobDeps()

	deps.encoder.eligibleRecipientsFn = func(_ context.Context, _ int64) ([]int64, error) {
		return []int64{1, 2}, nil
	}
	deps.ciphers.holderIDsFn = func(_ context.Context, _ int64) ([]int64, error) {
		return []int64{1, 2}, nil
	}

	deletes := 0
	deps.ciphers.deleteByUserSecretFn = func(_ context.Context, _, _ int64) error {
		deletes++
		return nil
	}

	svc := newTestJobService(deps)

	require.NoError(t, svc.RevokeStale(context.Background(), 10))
	assert.Zero(t, deletes)
	assert.Empty(t, deps.channel.broadcasts)
}

// ─────────────────────────────────────────────
// Bulk triggers
// ─────────────────────────────────────────────

func TestJobService_ForSecret_FunnelsRecipientsThroughCreate(t *testing.T) {
	deps := defaultJobDeps()

	deps.encoder.eligibleRecipientsFn = func(_ context.Context, secretID int64) ([]int64, error) {
		return []int64{2, 3}, nil
	}

	var checked [][2]int64
	deps.ciphers.existsFn = func(_ context.Context, secretID, userID int64) (bool, error) {
		checked = append(checked, [2]int64{secretID, userID})
		return true, nil // satisfied, so Create stops after the first check
	}

	svc := newTestJobService(deps)

	require.NoError(t, svc.ForSecret(context.Background(), 10))
	assert.Equal(t, [][2]int64{{10, 2}, {10, 3}}, checked)
}

func TestJobService_ForGroupMember_CoversGrantedSubtrees(t *testing.T) {
	deps := defaultJobDeps()

	var queried []int64
	deps.secrets.secretsByCategoriesFn = func(_ context.Context, categoryIDs []int64) ([]models.Secret, error) {
		queried = categoryIDs
		return []models.Secret{{SecretID: 10, CategoryID: categoryIDs[0]}}, nil
	}
	deps.ciphers.existsFn = func(_ context.Context, _, _ int64) (bool, error) {
		return true, nil
	}

	svc := newTestJobService(deps)

	// root(granted to group 7) -> child; a separate ungranted root
	root, err := svc.forest.Create("infra", 0, 1)
	require.NoError(t, err)
	child, err := svc.forest.Create("db", root.ID, 1)
	require.NoError(t, err)
	_, err = svc.forest.Create("other", 0, 1)
	require.NoError(t, err)
	require.NoError(t, svc.forest.SetGroups(root.ID, []int64{7}))

	require.NoError(t, svc.ForGroupMember(context.Background(), 7, 2))
	assert.ElementsMatch(t, []int64{root.ID, child.ID}, queried, "the grant reaches the whole subtree and nothing else")
}

func TestJobService_ForUser_CoversResponsibleCategories(t *testing.T) {
	// a user made responsible before uploading a key must still be
	// caught up by the key upload
	deps := defaultJobDeps()

	deps.secrets.secretsByCategoriesFn = func(_ context.Context, categoryIDs []int64) ([]models.Secret, error) {
		return []models.Secret{{SecretID: 10, CategoryID: categoryIDs[0]}}, nil
	}

	var checked [][2]int64
	deps.ciphers.existsFn = func(_ context.Context, secretID, userID int64) (bool, error) {
		checked = append(checked, [2]int64{secretID, userID})
		return true, nil // satisfied, so Create stops after the first check
	}

	svc := newTestJobService(deps)

	root, err := svc.forest.Create("infra", 0, 1)
	require.NoError(t, err)
	_, err = svc.forest.Create("other", 0, 1)
	require.NoError(t, err)
	require.NoError(t, svc.forest.SetResponsible(root.ID, 7))

	// user 7 created nothing and belongs to no group
	require.NoError(t, svc.ForUser(context.Background(), 7))
	assert.Equal(t, [][2]int64{{10, 7}}, checked, "responsibility alone must open the catch-up jobs")
}

// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package agent

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-vault-circle/internal/adapter"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/mock"
	"github.com/MKhiriev/go-vault-circle/models"
)

func newTestAgent(t *testing.T, ctrl *gomock.Controller) (*Agent, *mock.MockServerAdapter, *mock.MockKeyRing) {
	t.Helper()

	mockAdapter := mock.NewMockServerAdapter(ctrl)
	mockKeyring := mock.NewMockKeyRing(ctrl)

	a := New(mockAdapter, mockKeyring, "encoder", "auth-hash", 10*time.Millisecond, logger.Nop())

	return a, mockAdapter, mockKeyring
}

// ── bootstrap ────────────────────────────────────────────────────────────────

func TestAgent_Bootstrap_LoginKeyUploadReplay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, mockAdapter, mockKeyring := newTestAgent(t, ctrl)
	ctx := context.Background()

	gomock.InOrder(
		mockAdapter.EXPECT().
			Login(ctx, models.User{Login: "encoder", AuthHash: "auth-hash"}).
			Return(nil),
		mockKeyring.EXPECT().PublicKeyDER().Return([]byte("der"), nil),
		mockAdapter.EXPECT().UploadPublicKey(ctx, []byte("der")).Return(nil),
		mockAdapter.EXPECT().ReplayJobs(ctx).Return(2, nil),
	)

	require.NoError(t, a.bootstrap(ctx))
}

func TestAgent_Bootstrap_LoginFailureIsFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, mockAdapter, _ := newTestAgent(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Login(ctx, gomock.Any()).Return(adapter.ErrUnauthorized)

	err := a.bootstrap(ctx)
	assert.ErrorIs(t, err, adapter.ErrUnauthorized)
}

func TestAgent_Bootstrap_ReplayFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, mockAdapter, mockKeyring := newTestAgent(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().Login(ctx, gomock.Any()).Return(nil)
	mockKeyring.EXPECT().PublicKeyDER().Return([]byte("der"), nil)
	mockAdapter.EXPECT().UploadPublicKey(ctx, []byte("der")).Return(nil)
	mockAdapter.EXPECT().ReplayJobs(ctx).Return(0, fmt.Errorf("server hiccup"))

	assert.NoError(t, a.bootstrap(ctx))
}

// ── advertisement handling ───────────────────────────────────────────────────

func TestAgent_Fulfill_ReencryptsOwnCopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, mockAdapter, mockKeyring := newTestAgent(t, ctrl)
	ctx := context.Background()

	gomock.InOrder(
		mockAdapter.EXPECT().
			GetMyCiphertext(ctx, int64(5)).
			Return(models.UserEncryptedSecret{SecretID: 5, Ciphertext: []byte("own-blob")}, nil),
		mockKeyring.EXPECT().
			Reencrypt([]byte("own-blob"), []byte("target-key")).
			Return([]byte("for-target"), nil),
		mockAdapter.EXPECT().
			FulfillJob(ctx, "tok-1", []byte("for-target")).
			Return(models.FulfillResponse{Status: "fulfilled"}, nil),
	)

	a.handleNotice(ctx, models.Notice{
		Topic: models.TopicJobAdvertised,
		Payload: models.JobAdvertisement{
			Token:           "tok-1",
			SecretID:        5,
			TargetPublicKey: []byte("target-key"),
		},
	})
}

func TestAgent_Fulfill_DecodesTransportedPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, mockAdapter, mockKeyring := newTestAgent(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().
		GetMyCiphertext(ctx, int64(5)).
		Return(models.UserEncryptedSecret{SecretID: 5, Ciphertext: []byte("own-blob")}, nil)
	mockKeyring.EXPECT().Reencrypt(gomock.Any(), gomock.Any()).Return([]byte("out"), nil)
	mockAdapter.EXPECT().FulfillJob(ctx, "tok-1", []byte("out")).
		Return(models.FulfillResponse{Status: "fulfilled"}, nil)

	// Over the wire the payload arrives as a generic map, not the typed
	// struct. TargetPublicKey is base64 the way encoding/json renders
	// []byte.
	a.handleNotice(ctx, models.Notice{
		Topic: models.TopicJobAdvertised,
		Payload: map[string]any{
			"token":           "tok-1",
			"secretId":        float64(5),
			"targetPublicKey": "dGFyZ2V0LWtleQ==",
		},
	})
}

func TestAgent_Fulfill_SkipsWithoutOwnCopy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, mockAdapter, _ := newTestAgent(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().
		GetMyCiphertext(ctx, int64(5)).
		Return(models.UserEncryptedSecret{}, fmt.Errorf("wrapped: %w", adapter.ErrNotFound))

	// No Reencrypt, no FulfillJob.
	a.fulfill(ctx, models.JobAdvertisement{Token: "tok-1", SecretID: 5})
}

func TestAgent_Fulfill_LostRaceIsRoutine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, mockAdapter, mockKeyring := newTestAgent(t, ctrl)
	ctx := context.Background()

	mockAdapter.EXPECT().
		GetMyCiphertext(ctx, int64(5)).
		Return(models.UserEncryptedSecret{Ciphertext: []byte("own")}, nil)
	mockKeyring.EXPECT().Reencrypt(gomock.Any(), gomock.Any()).Return([]byte("out"), nil)
	mockAdapter.EXPECT().
		FulfillJob(ctx, "tok-1", []byte("out")).
		Return(models.FulfillResponse{}, fmt.Errorf("wrapped: %w", adapter.ErrNotFound))

	// Must not panic or retry.
	a.fulfill(ctx, models.JobAdvertisement{Token: "tok-1", SecretID: 5})
}

func TestAgent_AbortNotice_DropsLaterAdvertisement(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, _, _ := newTestAgent(t, ctrl)
	ctx := context.Background()

	a.handleNotice(ctx, models.Notice{
		Topic:   models.TopicJobAborted,
		Payload: models.AbortNotice{Token: "tok-dead"},
	})

	// No adapter or keyring expectations: the advertisement must be
	// dropped locally.
	a.handleNotice(ctx, models.Notice{
		Topic: models.TopicJobAdvertised,
		Payload: models.JobAdvertisement{
			Token:    "tok-dead",
			SecretID: 5,
		},
	})
}

func TestAgent_AbortMemo_ConsumedOnSkip(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, _, _ := newTestAgent(t, ctrl)
	ctx := context.Background()

	a.handleNotice(ctx, models.Notice{
		Topic:   models.TopicJobAborted,
		Payload: models.AbortNotice{Token: "tok-dead"},
	})
	require.Len(t, a.aborted, 1)

	a.handleNotice(ctx, models.Notice{
		Topic:   models.TopicJobAdvertised,
		Payload: models.JobAdvertisement{Token: "tok-dead", SecretID: 5},
	})

	assert.Empty(t, a.aborted, "a used memo entry must not linger")
}

func TestAgent_AbortMemo_BoundedUnderFlood(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, _, _ := newTestAgent(t, ctrl)
	ctx := context.Background()

	for i := 0; i < 3*maxAbortMemo; i++ {
		a.handleNotice(ctx, models.Notice{
			Topic:   models.TopicJobAborted,
			Payload: models.AbortNotice{Token: fmt.Sprintf("tok-%d", i)},
		})
	}

	assert.LessOrEqual(t, len(a.aborted), maxAbortMemo)
}

func TestAgent_UnknownTopicIgnored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	a, _, _ := newTestAgent(t, ctrl)

	a.handleNotice(context.Background(), models.Notice{Topic: "job.mystery"})
}

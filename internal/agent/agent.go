// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package agent implements the headless re-encryption agent runtime.
//
// The agent logs in, publishes its public key, replays pending encrypt
// jobs, then loops on the notification endpoint: every job
// advertisement it receives is answered by decrypting its own copy of
// the secret and re-encrypting it for the advertised target key.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MKhiriev/go-vault-circle/internal/adapter"
	"github.com/MKhiriev/go-vault-circle/internal/crypto"
	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
)

// maxAbortMemo caps the abort memo. When full the memo is dropped
// wholesale; a forgotten abort only costs one redundant fulfillment
// attempt, which the server rejects as not found.
const maxAbortMemo = 1024

type Agent struct {
	adapter adapter.ServerAdapter
	keyring crypto.KeyRing

	login        string
	authHash     string
	pollInterval time.Duration

	// aborted remembers abort notices so late advertisements for the
	// same token are dropped without a server round trip. Entries are
	// consumed on first use and the memo never exceeds maxAbortMemo.
	aborted map[string]struct{}

	logger *logger.Logger
}

func New(serverAdapter adapter.ServerAdapter, keyring crypto.KeyRing, login, authHash string, pollInterval time.Duration, logger *logger.Logger) *Agent {
	return &Agent{
		adapter:      serverAdapter,
		keyring:      keyring,
		login:        login,
		authHash:     authHash,
		pollInterval: pollInterval,
		aborted:      make(map[string]struct{}),
		logger:       logger,
	}
}

// Run executes the agent lifecycle until ctx is cancelled: bootstrap
// (login, key upload, job replay) followed by the poll loop.
func (a *Agent) Run(ctx context.Context) error {
	if err := a.bootstrap(ctx); err != nil {
		return err
	}

	return a.pollLoop(ctx)
}

func (a *Agent) bootstrap(ctx context.Context) error {
	user := models.User{Login: a.login, AuthHash: a.authHash}

	if err := a.adapter.Login(ctx, user); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	publicKey, err := a.keyring.PublicKeyDER()
	if err != nil {
		return fmt.Errorf("export public key: %w", err)
	}
	if err := a.adapter.UploadPublicKey(ctx, publicKey); err != nil {
		return fmt.Errorf("upload public key: %w", err)
	}

	// Catch up on advertisements missed while offline.
	replayed, err := a.adapter.ReplayJobs(ctx)
	if err != nil {
		a.logger.Err(err).Msg("job replay failed, continuing with live notifications only")
	} else if replayed > 0 {
		a.logger.Info().Int("replayed", replayed).Msg("pending encrypt jobs re-advertised")
	}

	return nil
}

func (a *Agent) pollLoop(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		notices, err := a.adapter.PollNotifications(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			a.logger.Err(err).Msg("notification poll failed")
			if !a.sleep(ctx) {
				return ctx.Err()
			}
			continue
		}

		for _, notice := range notices {
			a.handleNotice(ctx, notice)
		}

		if len(notices) == 0 {
			if !a.sleep(ctx) {
				return ctx.Err()
			}
		}
	}
}

func (a *Agent) handleNotice(ctx context.Context, notice models.Notice) {
	switch notice.Topic {
	case models.TopicJobAdvertised:
		var advertisement models.JobAdvertisement
		if err := decodePayload(notice.Payload, &advertisement); err != nil {
			a.logger.Err(err).Msg("malformed job advertisement")
			return
		}
		a.fulfill(ctx, advertisement)

	case models.TopicJobAborted:
		var abort models.AbortNotice
		if err := decodePayload(notice.Payload, &abort); err != nil {
			a.logger.Err(err).Msg("malformed abort notice")
			return
		}
		if len(a.aborted) >= maxAbortMemo {
			a.aborted = make(map[string]struct{})
		}
		a.aborted[abort.Token] = struct{}{}

	default:
		a.logger.Warn().Str("topic", notice.Topic).Msg("unknown notification topic")
	}
}

// fulfill answers one job advertisement: fetch own copy, re-encrypt for
// the advertised key, submit. Losing the race to another encoder is
// routine, not an error.
func (a *Agent) fulfill(ctx context.Context, advertisement models.JobAdvertisement) {
	log := a.logger.With().
		Str("token", advertisement.Token).
		Int64("secret_id", advertisement.SecretID).
		Logger()

	if _, ok := a.aborted[advertisement.Token]; ok {
		// the token is single-use, the memo entry has served its purpose
		delete(a.aborted, advertisement.Token)
		log.Debug().Msg("skipping advertisement for aborted job")
		return
	}

	ownCopy, err := a.adapter.GetMyCiphertext(ctx, advertisement.SecretID)
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			log.Debug().Msg("no own copy of advertised secret, skipping")
			return
		}
		log.Err(err).Msg("fetch own ciphertext failed")
		return
	}

	reencrypted, err := a.keyring.Reencrypt(ownCopy.Ciphertext, advertisement.TargetPublicKey)
	if err != nil {
		log.Err(err).Msg("re-encryption failed")
		return
	}

	response, err := a.adapter.FulfillJob(ctx, advertisement.Token, reencrypted)
	if err != nil {
		if errors.Is(err, adapter.ErrNotFound) {
			log.Debug().Msg("job already fulfilled by another encoder")
			return
		}
		log.Err(err).Msg("job fulfillment failed")
		return
	}

	log.Info().Str("status", response.Status).Msg("encrypt job fulfilled")
}

// sleep pauses the loop for the poll interval. Returns false when ctx
// was cancelled during the pause.
func (a *Agent) sleep(ctx context.Context) bool {
	timer := time.NewTimer(a.pollInterval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// decodePayload converts a notice payload (a map after JSON transport)
// into its typed form.
func decodePayload(payload any, target any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, target)
}

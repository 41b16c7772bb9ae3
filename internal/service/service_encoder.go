// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
)

// encoderService resolves the two user sets of the crowd-encryption
// protocol: who can re-encrypt a secret (encoders) and who should
// eventually hold it (eligible recipients). Both are pure read queries
// over the forest, group membership, and the ciphertext store.
type encoderService struct {
	forest                    *tree.Tree
	userRepository            store.UserRepository
	groupRepository           store.GroupRepository
	secretRepository          store.SecretRepository
	encryptedSecretRepository store.EncryptedSecretRepository
	logger                    *logger.Logger
}

func NewEncoderService(forest *tree.Tree, storages *store.Storages, logger *logger.Logger) EncoderService {
	return &encoderService{
		forest:                    forest,
		userRepository:            storages.UserRepository,
		groupRepository:           storages.GroupRepository,
		secretRepository:          storages.SecretRepository,
		encryptedSecretRepository: storages.EncryptedSecretRepository,
		logger:                    logger,
	}
}

// EncodersFor returns the ids of every user holding a ciphertext copy of
// the secret whose public key is set, ascending. A user without a
// ciphertext cannot decrypt anything to re-encrypt, and a user without a
// public key cannot be addressed, so both are excluded.
func (e *encoderService) EncodersFor(ctx context.Context, secretID int64) ([]int64, error) {
	log := logger.FromContext(ctx)

	holderIDs, err := e.encryptedSecretRepository.HolderIDs(ctx, secretID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("ciphertext holder lookup failed")
		return nil, fmt.Errorf("ciphertext holder lookup failed: %w", err)
	}

	encoderIDs := make([]int64, 0, len(holderIDs))
	for _, holderID := range holderIDs {
		hasKey, err := e.userRepository.HasPublicKey(ctx, holderID)
		if err != nil {
			log.Err(err).Int64("user_id", holderID).Msg("public key lookup failed")
			return nil, fmt.Errorf("public key lookup failed: %w", err)
		}
		if hasKey {
			encoderIDs = append(encoderIDs, holderID)
		}
	}

	return encoderIDs, nil
}

// EligibleRecipients returns the ids of every user who should hold a
// ciphertext copy of the secret, ascending. For a categorized secret
// that is the creator, the responsible users along the owning category's
// ancestor chain, and the members of every group granted on the chain;
// grants on an ancestor reach the whole subtree below it. For an
// uncategorized secret only the creator qualifies.
func (e *encoderService) EligibleRecipients(ctx context.Context, secretID int64) ([]int64, error) {
	log := logger.FromContext(ctx)

	secret, err := e.secretRepository.GetSecret(ctx, secretID)
	if err != nil {
		log.Err(err).Int64("secret_id", secretID).Msg("secret lookup failed")
		return nil, fmt.Errorf("secret lookup failed: %w", err)
	}

	recipients := map[int64]struct{}{secret.CreatorID: {}}

	if secret.CategoryID != 0 {
		if err = e.collectCategoryScope(ctx, secret.CategoryID, recipients); err != nil {
			return nil, err
		}
	}

	recipientIDs := make([]int64, 0, len(recipients))
	for userID := range recipients {
		recipientIDs = append(recipientIDs, userID)
	}
	sort.Slice(recipientIDs, func(i, j int) bool { return recipientIDs[i] < recipientIDs[j] })

	return recipientIDs, nil
}

// collectCategoryScope adds every user with standing on categoryID into
// recipients: responsible users of the category and its ancestors, plus
// members of every group granted along that chain.
func (e *encoderService) collectCategoryScope(ctx context.Context, categoryID int64, recipients map[int64]struct{}) error {
	log := logger.FromContext(ctx)

	chain := append([]int64{categoryID}, e.forest.AncestorsOf(categoryID)...)
	for _, id := range chain {
		node, err := e.forest.Get(id)
		if err != nil {
			continue
		}
		if node.ResponsibleID != 0 {
			recipients[node.ResponsibleID] = struct{}{}
		}
	}

	for _, groupID := range e.forest.GroupsInScope(categoryID) {
		memberIDs, err := e.groupRepository.MembersOf(ctx, groupID)
		if err != nil {
			log.Err(err).Int64("group_id", groupID).Msg("group member lookup failed")
			return fmt.Errorf("group member lookup failed: %w", err)
		}
		for _, memberID := range memberIDs {
			recipients[memberID] = struct{}{}
		}
	}

	return nil
}

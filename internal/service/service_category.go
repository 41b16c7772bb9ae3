// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/internal/tree"
	"github.com/MKhiriev/go-vault-circle/models"
)

// categoryService fronts the in-memory category forest and mirrors every
// mutation into the CategoryRepository. The forest is authoritative at
// runtime; the repository only exists so the forest survives restarts.
type categoryService struct {
	forest             *tree.Tree
	categoryRepository store.CategoryRepository
	userRepository     store.UserRepository
	groupRepository    store.GroupRepository
	secretRepository   store.SecretRepository
	jobService         JobService
	logger             *logger.Logger
}

func NewCategoryService(forest *tree.Tree, storages *store.Storages, jobService JobService, logger *logger.Logger) CategoryService {
	return &categoryService{
		forest:             forest,
		categoryRepository: storages.CategoryRepository,
		userRepository:     storages.UserRepository,
		groupRepository:    storages.GroupRepository,
		secretRepository:   storages.SecretRepository,
		jobService:         jobService,
		logger:             logger,
	}
}

// Create adds a category node under parentID (zero for a new root) and
// persists it. On persistence failure the in-memory node is rolled back,
// so the forest and the table never diverge.
func (c *categoryService) Create(ctx context.Context, name string, parentID, creatorID int64) (models.Category, error) {
	log := logger.FromContext(ctx)

	if name == "" {
		log.Error().Int64("parent_id", parentID).Msg("empty category name provided")
		return models.Category{}, ErrInvalidDataProvided
	}

	node, err := c.forest.Create(name, parentID, creatorID)
	if err != nil {
		log.Err(err).Str("name", name).Int64("parent_id", parentID).Msg("category creation rejected")
		return models.Category{}, fmt.Errorf("category creation rejected: %w", err)
	}

	category := nodeToCategory(node)
	if err = c.categoryRepository.Insert(ctx, category); err != nil {
		if _, rollbackErr := c.forest.Delete(node.ID); rollbackErr != nil {
			log.Err(rollbackErr).Int64("category_id", node.ID).Msg("category rollback failed")
		}
		log.Err(err).Int64("category_id", node.ID).Msg("category persistence failed")
		return models.Category{}, fmt.Errorf("category persistence failed: %w", err)
	}

	return category, nil
}

// Move reparents categoryID under newParentID. Validation order follows
// the forest: NotFound, then CycleConflict, then NameConflict; a rejected
// move leaves both the forest and the table untouched.
func (c *categoryService) Move(ctx context.Context, categoryID, newParentID int64) error {
	log := logger.FromContext(ctx)

	if err := c.forest.AddChild(newParentID, categoryID); err != nil {
		log.Err(err).Int64("category_id", categoryID).Int64("parent_id", newParentID).Msg("category move rejected")
		return fmt.Errorf("category move rejected: %w", err)
	}

	if err := c.categoryRepository.UpdateParent(ctx, categoryID, newParentID); err != nil {
		log.Err(err).Int64("category_id", categoryID).Msg("category move persistence failed")
		return fmt.Errorf("category move persistence failed: %w", err)
	}

	return nil
}

// Delete removes the category and its whole subtree. Secrets of removed
// categories are not destroyed; they become uncategorized and fall back
// to creator-only reach, and holders outside that reach lose their
// ciphertext copies. Returns the removed category ids ascending.
func (c *categoryService) Delete(ctx context.Context, categoryID int64) ([]int64, error) {
	log := logger.FromContext(ctx)

	removed, err := c.forest.Delete(categoryID)
	if err != nil {
		log.Err(err).Int64("category_id", categoryID).Msg("category deletion rejected")
		return nil, fmt.Errorf("category deletion rejected: %w", err)
	}

	// capture the affected secrets before their category links disappear
	secrets, err := c.secretRepository.SecretsByCategories(ctx, removed)
	if err != nil {
		log.Err(err).Ints64("category_ids", removed).Msg("secret lookup by categories failed")
		return nil, fmt.Errorf("secret lookup by categories failed: %w", err)
	}

	if err = c.secretRepository.ClearCategory(ctx, removed); err != nil {
		log.Err(err).Ints64("category_ids", removed).Msg("secret uncategorization failed")
		return nil, fmt.Errorf("secret uncategorization failed: %w", err)
	}

	if err = c.categoryRepository.DeleteMany(ctx, removed); err != nil {
		log.Err(err).Ints64("category_ids", removed).Msg("category deletion persistence failed")
		return nil, fmt.Errorf("category deletion persistence failed: %w", err)
	}

	if err = c.revokeSecrets(ctx, secrets); err != nil {
		return nil, err
	}

	return removed, nil
}

func (c *categoryService) Get(ctx context.Context, categoryID int64) (models.Category, error) {
	node, err := c.forest.Get(categoryID)
	if err != nil {
		return models.Category{}, fmt.Errorf("category lookup failed: %w", err)
	}

	return nodeToCategory(node), nil
}

func (c *categoryService) Children(ctx context.Context, categoryID int64) ([]models.Category, error) {
	nodes, err := c.forest.Children(categoryID)
	if err != nil {
		return nil, fmt.Errorf("category children lookup failed: %w", err)
	}

	children := make([]models.Category, 0, len(nodes))
	for _, node := range nodes {
		children = append(children, nodeToCategory(node))
	}

	return children, nil
}

// Visible computes the user's visible pool: categories they created, are
// responsible for, or reach through a granted group, reduced to the
// unique maximal antichain. Admins see every root.
func (c *categoryService) Visible(ctx context.Context, userID int64) ([]models.Category, error) {
	log := logger.FromContext(ctx)

	user, err := c.userRepository.GetUser(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("user lookup failed")
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}

	var keep func(tree.Node) bool
	if user.IsAdmin {
		keep = func(tree.Node) bool { return true }
	} else {
		groupIDs, err := c.groupRepository.GroupsOf(ctx, userID)
		if err != nil {
			log.Err(err).Int64("user_id", userID).Msg("group membership lookup failed")
			return nil, fmt.Errorf("group membership lookup failed: %w", err)
		}

		memberOf := make(map[int64]struct{}, len(groupIDs))
		for _, groupID := range groupIDs {
			memberOf[groupID] = struct{}{}
		}

		keep = func(node tree.Node) bool {
			if node.CreatorID == userID || node.ResponsibleID == userID {
				return true
			}
			for _, groupID := range node.Groups {
				if _, ok := memberOf[groupID]; ok {
					return true
				}
			}
			return false
		}
	}

	visible := make([]models.Category, 0)
	for _, id := range c.forest.Visible(keep) {
		node, err := c.forest.Get(id)
		if err != nil {
			continue
		}
		visible = append(visible, nodeToCategory(node))
	}

	return visible, nil
}

// GrantGroups replaces the category's granted group set. Every group new
// to the category triggers job creation for its members across the
// category subtree; every group withdrawn triggers a stale-holder sweep
// over the same subtree.
func (c *categoryService) GrantGroups(ctx context.Context, categoryID int64, groupIDs []int64) error {
	log := logger.FromContext(ctx)

	node, err := c.forest.Get(categoryID)
	if err != nil {
		return fmt.Errorf("category lookup failed: %w", err)
	}

	granted := make(map[int64]struct{}, len(node.Groups))
	for _, groupID := range node.Groups {
		granted[groupID] = struct{}{}
	}

	if err = c.forest.SetGroups(categoryID, groupIDs); err != nil {
		return fmt.Errorf("group grant rejected: %w", err)
	}

	if err = c.categoryRepository.ReplaceGroups(ctx, categoryID, groupIDs); err != nil {
		log.Err(err).Int64("category_id", categoryID).Msg("group grant persistence failed")
		return fmt.Errorf("group grant persistence failed: %w", err)
	}

	for _, groupID := range groupIDs {
		if _, alreadyGranted := granted[groupID]; alreadyGranted {
			continue
		}
		if err = c.jobService.ForCategoryGroup(ctx, categoryID, groupID); err != nil {
			log.Err(err).Int64("category_id", categoryID).Int64("group_id", groupID).Msg("job creation after group grant failed")
			return fmt.Errorf("job creation after group grant failed: %w", err)
		}
	}

	for _, groupID := range groupIDs {
		delete(granted, groupID)
	}
	if len(granted) > 0 {
		if err = c.revokeUnder(ctx, categoryID); err != nil {
			return err
		}
	}

	return nil
}

// SetResponsible assigns the responsible user of the category and opens
// jobs bringing that user up to date on the subtree's secrets. When the
// assignment displaces a previous responsible, the subtree is swept for
// holders who lost their standing with them.
func (c *categoryService) SetResponsible(ctx context.Context, categoryID, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := c.userRepository.GetUser(ctx, userID); err != nil {
		return fmt.Errorf("user lookup failed: %w", err)
	}

	node, err := c.forest.Get(categoryID)
	if err != nil {
		return fmt.Errorf("category lookup failed: %w", err)
	}
	previousID := node.ResponsibleID

	if err = c.forest.SetResponsible(categoryID, userID); err != nil {
		return fmt.Errorf("responsible assignment rejected: %w", err)
	}

	if err = c.categoryRepository.SetResponsible(ctx, categoryID, userID); err != nil {
		log.Err(err).Int64("category_id", categoryID).Int64("user_id", userID).Msg("responsible assignment persistence failed")
		return fmt.Errorf("responsible assignment persistence failed: %w", err)
	}

	if err = c.jobService.ForCategoryKeys(ctx, categoryID, userID); err != nil {
		log.Err(err).Int64("category_id", categoryID).Int64("user_id", userID).Msg("job creation after responsible assignment failed")
		return fmt.Errorf("job creation after responsible assignment failed: %w", err)
	}

	if previousID != 0 && previousID != userID {
		if err = c.revokeUnder(ctx, categoryID); err != nil {
			return err
		}
	}

	return nil
}

// revokeUnder re-checks every secret of the category subtree against its
// current recipient set and revokes stale holders.
func (c *categoryService) revokeUnder(ctx context.Context, categoryID int64) error {
	log := logger.FromContext(ctx)

	categoryIDs := append([]int64{categoryID}, c.forest.DescendantsOf(categoryID)...)
	secrets, err := c.secretRepository.SecretsByCategories(ctx, categoryIDs)
	if err != nil {
		log.Err(err).Ints64("category_ids", categoryIDs).Msg("secret lookup by categories failed")
		return fmt.Errorf("secret lookup by categories failed: %w", err)
	}

	return c.revokeSecrets(ctx, secrets)
}

func (c *categoryService) revokeSecrets(ctx context.Context, secrets []models.Secret) error {
	log := logger.FromContext(ctx)

	for _, secret := range secrets {
		if err := c.jobService.RevokeStale(ctx, secret.SecretID); err != nil {
			log.Err(err).Int64("secret_id", secret.SecretID).Msg("stale holder revocation failed")
			return fmt.Errorf("stale holder revocation failed: %w", err)
		}
	}

	return nil
}

func nodeToCategory(node tree.Node) models.Category {
	return models.Category{
		CategoryID:    node.ID,
		Name:          node.Name,
		ParentID:      node.ParentID,
		CreatorID:     node.CreatorID,
		ResponsibleID: node.ResponsibleID,
		GroupIDs:      node.Groups,
		CreatedAt:     node.CreatedAt,
	}
}

package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/internal/store"
	"github.com/MKhiriev/go-vault-circle/models"
)

type groupService struct {
	groupRepository store.GroupRepository
	jobService      JobService
	logger          *logger.Logger
}

func NewGroupService(groupRepository store.GroupRepository, jobService JobService, logger *logger.Logger) GroupService {
	return &groupService{
		groupRepository: groupRepository,
		jobService:      jobService,
		logger:          logger,
	}
}

func (g *groupService) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	log := logger.FromContext(ctx)

	if group.Name == "" {
		log.Error().Msg("empty group name provided")
		return models.Group{}, ErrInvalidDataProvided
	}

	createdGroup, err := g.groupRepository.CreateGroup(ctx, group)
	if err != nil {
		log.Err(err).Str("name", group.Name).Msg("group creation ended with error")
		return models.Group{}, fmt.Errorf("group creation ended with error: %w", err)
	}

	return createdGroup, nil
}

// AddMember enrolls the user into the group and opens re-encryption jobs
// for every secret the membership newly makes the user eligible for.
// Enrolling an existing member is harmless: the repository ignores the
// duplicate and job creation no-ops on already-held secrets.
func (g *groupService) AddMember(ctx context.Context, groupID, userID int64) error {
	log := logger.FromContext(ctx)

	if err := g.groupRepository.AddMember(ctx, groupID, userID); err != nil {
		log.Err(err).Int64("group_id", groupID).Int64("user_id", userID).Msg("group membership update failed")
		return fmt.Errorf("group membership update failed: %w", err)
	}

	if err := g.jobService.ForGroupMember(ctx, groupID, userID); err != nil {
		log.Err(err).Int64("group_id", groupID).Int64("user_id", userID).Msg("job creation after membership change failed")
		return fmt.Errorf("job creation after membership change failed: %w", err)
	}

	return nil
}

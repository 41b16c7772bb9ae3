package store

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-vault-circle/internal/logger"
	"github.com/MKhiriev/go-vault-circle/models"
)

// groupRepository is the PostgreSQL-backed implementation of
// [GroupRepository], covering the "groups" and "user_groups" tables.
type groupRepository struct {
	*DB
	logger *logger.Logger
}

// NewGroupRepository constructs a [GroupRepository] backed by the provided
// database connection and logger.
func NewGroupRepository(db *DB, logger *logger.Logger) GroupRepository {
	logger.Debug().Msg("creating group repository")
	return &groupRepository{
		DB:     db,
		logger: logger,
	}
}

// CreateGroup persists a new group and returns it with its server-assigned id.
func (r *groupRepository) CreateGroup(ctx context.Context, group models.Group) (models.Group, error) {
	log := logger.FromContext(ctx)

	var saved models.Group
	err := r.QueryRowContext(ctx, createGroup, group.Name).Scan(&saved.GroupID, &saved.Name)
	if err != nil {
		log.Err(err).Str("func", "*groupRepository.CreateGroup").Str("name", group.Name).Msg("failed to insert group")
		return models.Group{}, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return saved, nil
}

// AddMember records userID as a member of groupID. Adding an existing
// membership is a no-op.
func (r *groupRepository) AddMember(ctx context.Context, groupID, userID int64) error {
	log := logger.FromContext(ctx)

	if _, err := r.ExecContext(ctx, addGroupMember, groupID, userID); err != nil {
		log.Err(err).
			Str("func", "*groupRepository.AddMember").
			Int64("group_id", groupID).
			Int64("user_id", userID).
			Msg("failed to insert group membership")
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	return nil
}

// GroupsOf returns the ids of every group userID belongs to, ascending.
func (r *groupRepository) GroupsOf(ctx context.Context, userID int64) ([]int64, error) {
	return r.queryIDs(ctx, getGroupsOfUser, userID, "*groupRepository.GroupsOf")
}

// MembersOf returns the ids of every member of groupID, ascending.
func (r *groupRepository) MembersOf(ctx context.Context, groupID int64) ([]int64, error) {
	return r.queryIDs(ctx, getMembersOfGroup, groupID, "*groupRepository.MembersOf")
}

func (r *groupRepository) queryIDs(ctx context.Context, query string, arg int64, funcName string) ([]int64, error) {
	log := logger.FromContext(ctx)

	rows, err := r.QueryContext(ctx, query, arg)
	if err != nil {
		log.Err(err).Str("func", funcName).Int64("arg", arg).Msg("failed to execute membership query")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	ids := make([]int64, 0, 8)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			log.Err(err).Str("func", funcName).Msg("failed to scan membership row")
			return nil, fmt.Errorf("%w: %w", ErrScanningRow, err)
		}
		ids = append(ids, id)
	}

	if err = rows.Err(); err != nil {
		log.Err(err).Str("func", funcName).Msg("error occurred during rows iteration")
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	return ids, nil
}

package service

import (
	"context"
	"fmt"

	"gossip/internal/domain"
)

// GroupService owns group CRUD and membership. The core's router only ever
// reads the membership this service maintains.
type GroupService struct {
	groups domain.GroupRepository
	users  domain.UserRepository
}

func NewGroupService(groups domain.GroupRepository, users domain.UserRepository) *GroupService {
	return &GroupService{
		groups: groups,
		users:  users,
	}
}

// Create makes a new group with the creator as admin and sole member.
func (s *GroupService) Create(ctx context.Context, name string, creatorID int64) (*domain.Group, error) {
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	group := &domain.Group{
		Name:    name,
		AdminID: creatorID,
	}
	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	return group, nil
}

func (s *GroupService) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	return s.groups.GetByID(ctx, id)
}

func (s *GroupService) ListForUser(ctx context.Context, userID int64) ([]*domain.Group, error) {
	return s.groups.ListForUser(ctx, userID)
}

// Join adds the user to the group. Joining twice is a no-op.
func (s *GroupService) Join(ctx context.Context, groupID, userID int64) error {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.groups.AddMember(ctx, groupID, userID)
}

// Leave removes the user from the group. The admin cannot leave; the
// admin-is-a-member invariant would break.
func (s *GroupService) Leave(ctx context.Context, groupID, userID int64) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.AdminID == userID {
		return domain.ErrForbidden
	}
	return s.groups.RemoveMember(ctx, groupID, userID)
}

// Rename updates the group name. Admin only.
func (s *GroupService) Rename(ctx context.Context, groupID, callerID int64, name string) error {
	if name == "" {
		return domain.ErrInvalidInput
	}
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.AdminID != callerID {
		return domain.ErrForbidden
	}
	return s.groups.UpdateName(ctx, groupID, name)
}

// Delete removes the group. Admin only.
func (s *GroupService) Delete(ctx context.Context, groupID, callerID int64) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.AdminID != callerID {
		return domain.ErrForbidden
	}
	return s.groups.Delete(ctx, groupID)
}

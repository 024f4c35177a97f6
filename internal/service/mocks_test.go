package service_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"gossip/internal/domain"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*domain.User, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.([]*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) SetOnlineStatus(ctx context.Context, id int64, isOnline bool) error {
	args := m.Called(ctx, id, isOnline)
	return args.Error(0)
}

func (m *mockUserRepo) SaveTOTP(ctx context.Context, email, secret, authURL string) error {
	args := m.Called(ctx, email, secret, authURL)
	return args.Error(0)
}

func (m *mockUserRepo) EnableMFA(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockGroupRepo struct {
	mock.Mock
}

func (m *mockGroupRepo) Create(ctx context.Context, g *domain.Group) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *mockGroupRepo) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	args := m.Called(ctx, id)
	if g := args.Get(0); g != nil {
		return g.(*domain.Group), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGroupRepo) ListForUser(ctx context.Context, userID int64) ([]*domain.Group, error) {
	args := m.Called(ctx, userID)
	if g := args.Get(0); g != nil {
		return g.([]*domain.Group), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGroupRepo) AddMember(ctx context.Context, groupID, userID int64) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *mockGroupRepo) RemoveMember(ctx context.Context, groupID, userID int64) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

func (m *mockGroupRepo) UpdateName(ctx context.Context, groupID int64, name string) error {
	args := m.Called(ctx, groupID, name)
	return args.Error(0)
}

func (m *mockGroupRepo) Delete(ctx context.Context, groupID int64) error {
	args := m.Called(ctx, groupID)
	return args.Error(0)
}

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Create(ctx context.Context, msg *domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageRepo) ListBetween(ctx context.Context, userID, remoteUserID int64, limit int) ([]*domain.Message, error) {
	args := m.Called(ctx, userID, remoteUserID, limit)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMessageRepo) ListForGroup(ctx context.Context, groupID int64) ([]*domain.Message, error) {
	args := m.Called(ctx, groupID)
	if msgs := args.Get(0); msgs != nil {
		return msgs.([]*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMessageRepo) LatestForRecipient(ctx context.Context, recipientID int64, state domain.DeliveryState) (*domain.Message, error) {
	args := m.Called(ctx, recipientID, state)
	if msg := args.Get(0); msg != nil {
		return msg.(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMessageRepo) LatestBetween(ctx context.Context, userID, remoteUserID int64) (*domain.Message, error) {
	args := m.Called(ctx, userID, remoteUserID)
	if msg := args.Get(0); msg != nil {
		return msg.(*domain.Message), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockMessageRepo) SetState(ctx context.Context, messageID int64, state domain.DeliveryState) error {
	args := m.Called(ctx, messageID, state)
	return args.Error(0)
}

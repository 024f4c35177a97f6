package domain

import (
	"context"
)

// UserRepository defines persistence operations for users. Lookups return
// ErrNotFound when no row matches.
type UserRepository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	SetOnlineStatus(ctx context.Context, id int64, isOnline bool) error
	SaveTOTP(ctx context.Context, email, secret, authURL string) error
	EnableMFA(ctx context.Context, id int64) error
}

// GroupRepository defines persistence operations for groups and membership.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListForUser(ctx context.Context, userID int64) ([]*Group, error)
	AddMember(ctx context.Context, groupID, userID int64) error
	RemoveMember(ctx context.Context, groupID, userID int64) error
	UpdateName(ctx context.Context, groupID int64, name string) error
	Delete(ctx context.Context, groupID int64) error
}

// MessageRepository defines append-only persistence for chat messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	// ListBetween returns direct messages exchanged between two users in
	// either direction, newest first.
	ListBetween(ctx context.Context, userID, remoteUserID int64, limit int) ([]*Message, error)
	ListForGroup(ctx context.Context, groupID int64) ([]*Message, error)
	// LatestForRecipient returns the most recent direct message addressed
	// to the user that is still in the given delivery state.
	LatestForRecipient(ctx context.Context, recipientID int64, state DeliveryState) (*Message, error)
	// LatestBetween returns the most recent direct message between two
	// users in either direction.
	LatestBetween(ctx context.Context, userID, remoteUserID int64) (*Message, error)
	SetState(ctx context.Context, messageID int64, state DeliveryState) error
}

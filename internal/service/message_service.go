package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"gossip/internal/domain"
	"gossip/internal/security"
)

// MessageService serves persisted history to the REST boundary. It reads
// the same rows the ws router writes; text is decrypted on the way out.
type MessageService struct {
	messages domain.MessageRepository
	users    domain.UserRepository
	enc      *security.Encryptor
}

func NewMessageService(
	messages domain.MessageRepository,
	users domain.UserRepository,
	enc *security.Encryptor,
) *MessageService {
	return &MessageService{
		messages: messages,
		users:    users,
		enc:      enc,
	}
}

// HistoryBetween returns the direct conversation between two users, newest
// first.
func (s *MessageService) HistoryBetween(ctx context.Context, userID, remoteUserID int64, limit int) ([]*domain.Message, error) {
	msgs, err := s.messages.ListBetween(ctx, userID, remoteUserID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return s.decryptAll(msgs), nil
}

// GroupHistory returns a group's messages in chronological order.
func (s *MessageService) GroupHistory(ctx context.Context, groupID int64) ([]*domain.Message, error) {
	msgs, err := s.messages.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group history: %w", err)
	}
	return s.decryptAll(msgs), nil
}

// RecentEntry pairs a user with the latest direct message exchanged with
// them, for the conversation-list screen.
type RecentEntry struct {
	User          *domain.User    `json:"user"`
	RecentMessage *domain.Message `json:"recentMessage"`
}

// Recent returns, for every other user the caller has exchanged direct
// messages with, the most recent one.
func (s *MessageService) Recent(ctx context.Context, userID int64) ([]*RecentEntry, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	others := lo.Filter(users, func(u *domain.User, _ int) bool {
		return u.ID != userID
	})

	entries := make([]*RecentEntry, 0, len(others))
	for _, u := range others {
		msg, err := s.messages.LatestBetween(ctx, userID, u.ID)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("latest between %d and %d: %w", userID, u.ID, err)
		}
		entries = append(entries, &RecentEntry{
			User:          u,
			RecentMessage: s.decrypt(msg),
		})
	}
	return entries, nil
}

func (s *MessageService) decryptAll(msgs []*domain.Message) []*domain.Message {
	return lo.Map(msgs, func(m *domain.Message, _ int) *domain.Message {
		return s.decrypt(m)
	})
}

// decrypt returns a copy with plain text, falling back to the stored
// ciphertext if no key verifies.
func (s *MessageService) decrypt(m *domain.Message) *domain.Message {
	out := *m
	if dec, err := s.enc.Decrypt(m.Text); err == nil {
		out.Text = dec
	}
	return &out
}

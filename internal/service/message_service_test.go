package service_test

import (
	"context"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gossip/internal/domain"
	"gossip/internal/security"
	"gossip/internal/service"
)

func newTestEncryptor(t *testing.T) *security.Encryptor {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())
	enc, err := security.NewEncryptor(key.Encode())
	require.NoError(t, err)
	return enc
}

func TestHistoryBetweenDecryptsText(t *testing.T) {
	messages := &mockMessageRepo{}
	enc := newTestEncryptor(t)
	svc := service.NewMessageService(messages, &mockUserRepo{}, enc)

	cipher, err := enc.Encrypt("hello")
	require.NoError(t, err)
	to := int64(2)
	stored := []*domain.Message{
		{ID: 1, Text: cipher, SenderID: 1, RecipientID: &to, State: domain.DeliverySent},
	}
	messages.On("ListBetween", mock.Anything, int64(1), int64(2), 0).Return(stored, nil)

	got, err := svc.HistoryBetween(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello", got[0].Text)
	// the repository's copy keeps the ciphertext
	assert.Equal(t, cipher, stored[0].Text)
}

func TestHistoryBetweenKeepsUndecryptableText(t *testing.T) {
	messages := &mockMessageRepo{}
	svc := service.NewMessageService(messages, &mockUserRepo{}, newTestEncryptor(t))

	to := int64(2)
	stored := []*domain.Message{
		{ID: 1, Text: "written-before-encryption-was-enabled", SenderID: 1, RecipientID: &to},
	}
	messages.On("ListBetween", mock.Anything, int64(1), int64(2), 0).Return(stored, nil)

	got, err := svc.HistoryBetween(context.Background(), 1, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "written-before-encryption-was-enabled", got[0].Text)
}

func TestRecentSkipsSelfAndEmptyConversations(t *testing.T) {
	messages := &mockMessageRepo{}
	users := &mockUserRepo{}
	enc := newTestEncryptor(t)
	svc := service.NewMessageService(messages, users, enc)

	users.On("List", mock.Anything).Return([]*domain.User{
		{ID: 1, Name: "me"},
		{ID: 2, Name: "alice"},
		{ID: 3, Name: "bob"},
	}, nil)

	cipher, err := enc.Encrypt("latest from alice")
	require.NoError(t, err)
	to := int64(1)
	messages.On("LatestBetween", mock.Anything, int64(1), int64(2)).
		Return(&domain.Message{ID: 7, Text: cipher, SenderID: 2, RecipientID: &to}, nil)
	messages.On("LatestBetween", mock.Anything, int64(1), int64(3)).
		Return(nil, domain.ErrNotFound)

	entries, err := svc.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].User.Name)
	assert.Equal(t, "latest from alice", entries[0].RecentMessage.Text)
}

package services

import (
	"context"
	"testing"
	"time"

	"campustalk_backend/internal/models/chat"
	"campustalk_backend/internal/repositories"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendPrivateRequiresFriendship(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		ReceiverID: strPtr(bob.ID),
		Type:       chat.MessageTypeText,
		Content:    "hey",
	})
	assert.ErrorIs(t, err, apperrors.ErrFriendshipRequired)

	env.makeFriends(t, alice, bob)
	resp, err := svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		ReceiverID: strPtr(bob.ID),
		Type:       chat.MessageTypeText,
		Content:    "hey",
	})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, resp.SenderID)
	assert.Equal(t, chat.PrivateRef(alice.ID, bob.ID), resp.ConversationRef)
	assert.False(t, resp.IsRead)
}

func TestSendAddressingValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.makeFriends(t, alice, bob)
	group := env.createGroup(t, "study", alice, bob)

	// Neither target and both targets are equally invalid.
	_, err := svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		Type: chat.MessageTypeText, Content: "x",
	})
	assert.Error(t, err)

	_, err = svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		ReceiverID: strPtr(bob.ID),
		GroupID:    strPtr(group.ID),
		Type:       chat.MessageTypeText,
		Content:    "x",
	})
	assert.Error(t, err)

	_, err = svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		ReceiverID: strPtr(bob.ID),
		Type:       chat.MessageType("sticker"),
		Content:    "x",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidMessageType)
}

func TestSendGroupFansOutReceipts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	dave := env.createUser(t, "dave")
	group := env.createGroup(t, "study", alice, bob, carol)

	resp, err := svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID),
		Type:    chat.MessageTypeText,
		Content: "meeting at 5",
	})
	require.NoError(t, err)

	// Every member except the sender got a receipt.
	receipts, err := env.receiptRepo.FindByMessage(env.db, resp.ID)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
	for _, r := range receipts {
		assert.NotEqual(t, alice.ID, r.UserID)
		assert.False(t, r.IsRead)
	}

	// Non-members cannot post.
	_, err = svc.Send(context.Background(), env.db, dave.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID),
		Type:    chat.MessageTypeText,
		Content: "let me in",
	})
	assert.ErrorIs(t, err, apperrors.ErrNotConversationMember)
}

func TestDeletePrivateWithinGraceWindow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.makeFriends(t, alice, bob)

	sent, err := svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		ReceiverID: strPtr(bob.ID), Type: chat.MessageTypeText, Content: "oops",
	})
	require.NoError(t, err)

	// The recipient cannot delete someone else's message.
	results := svc.Delete(context.Background(), env.db, bob.ID, []string{sent.ID})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.NotEmpty(t, results[0].Error)

	// The sender can, and the row is gone afterwards.
	results = svc.Delete(context.Background(), env.db, alice.ID, []string{sent.ID})
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
	_, err = env.messageRepo.FindByID(env.db, sent.ID)
	assert.ErrorIs(t, err, repositories.ErrMessageNotFound)

	// Deleting an id that no longer exists is a no-op success.
	results = svc.Delete(context.Background(), env.db, alice.ID, []string{sent.ID})
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)
}

func TestDeletePrivateAfterGraceWindow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.makeFriends(t, alice, bob)

	sent, err := svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		ReceiverID: strPtr(bob.ID), Type: chat.MessageTypeText, Content: "old",
	})
	require.NoError(t, err)

	backdated := time.Now().Add(-DeleteGraceWindow - time.Minute)
	require.NoError(t, env.db.Model(&chat.Message{}).
		Where("id = ?", sent.ID).
		Update("created_at", backdated).Error)

	results := svc.Delete(context.Background(), env.db, alice.ID, []string{sent.ID})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Equal(t, apperrors.ErrDeleteWindowExpired.Error(), results[0].Error)
}

func TestModeratorSoftDeleteKeepsAuditRow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	group := env.createGroup(t, "study", alice, bob, carol)

	sent, err := svc.Send(context.Background(), env.db, bob.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "spam",
	})
	require.NoError(t, err)

	// A plain member cannot remove another member's message.
	results := svc.Delete(context.Background(), env.db, carol.ID, []string{sent.ID})
	require.Len(t, results, 1)
	assert.False(t, results[0].Success)

	// The owner soft-deletes it; the row survives with content cleared.
	results = svc.Delete(context.Background(), env.db, alice.ID, []string{sent.ID})
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	msg, err := env.messageRepo.FindByID(env.db, sent.ID)
	require.NoError(t, err)
	assert.True(t, msg.Deleted)
	assert.Empty(t, msg.Content)
	require.NotNil(t, msg.DeletionReason)
	assert.Equal(t, chat.DeletionByModerator, *msg.DeletionReason)

	// Receipts are retained so unread math stays stable.
	receipts, err := env.receiptRepo.FindByMessage(env.db, sent.ID)
	require.NoError(t, err)
	assert.Len(t, receipts, 2)
}

func TestGroupMemberHardDeletesOwnMessage(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	group := env.createGroup(t, "study", alice, bob)

	sent, err := svc.Send(context.Background(), env.db, bob.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "typo",
	})
	require.NoError(t, err)

	results := svc.Delete(context.Background(), env.db, bob.ID, []string{sent.ID})
	require.Len(t, results, 1)
	assert.True(t, results[0].Success)

	_, err = env.messageRepo.FindByID(env.db, sent.ID)
	assert.ErrorIs(t, err, repositories.ErrMessageNotFound)

	// Receipts go with the row.
	receipts, err := env.receiptRepo.FindByMessage(env.db, sent.ID)
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestHistoryRendersDeletionMarker(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	group := env.createGroup(t, "study", alice, bob)

	sent, err := svc.Send(context.Background(), env.db, bob.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "remove me",
	})
	require.NoError(t, err)

	results := svc.Delete(context.Background(), env.db, alice.ID, []string{sent.ID})
	require.True(t, results[0].Success)

	list, err := svc.GetGroupHistory(context.Background(), env.db, bob.ID, group.ID, repositories.MessageCriteria{})
	require.NoError(t, err)
	require.Len(t, list.Messages, 1)
	assert.True(t, list.Messages[0].Deleted)
	assert.Equal(t, dto.DeletedContentMarker, list.Messages[0].Content)
}

func TestHistoryAccessGates(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mallory := env.createUser(t, "mallory")
	group := env.createGroup(t, "study", alice, bob)

	_, err := svc.GetPrivateHistory(context.Background(), env.db, alice.ID, mallory.ID, repositories.MessageCriteria{})
	assert.ErrorIs(t, err, apperrors.ErrFriendshipRequired)

	_, err = svc.GetGroupHistory(context.Background(), env.db, mallory.ID, group.ID, repositories.MessageCriteria{})
	assert.ErrorIs(t, err, apperrors.ErrNotConversationMember)
}

func TestHistoryPagination(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.messageService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.makeFriends(t, alice, bob)

	for i := 0; i < 5; i++ {
		_, err := svc.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
			ReceiverID: strPtr(bob.ID), Type: chat.MessageTypeText, Content: "msg",
		})
		require.NoError(t, err)
	}

	list, err := svc.GetPrivateHistory(context.Background(), env.db, bob.ID, alice.ID, repositories.MessageCriteria{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, list.Messages, 3)
	assert.Equal(t, int64(5), list.Total)
	assert.True(t, list.HasMore)

	list, err = svc.GetPrivateHistory(context.Background(), env.db, bob.ID, alice.ID, repositories.MessageCriteria{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Len(t, list.Messages, 2)
	assert.False(t, list.HasMore)
}

package services

import (
	"context"
	"testing"

	"campustalk_backend/internal/models/chat"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/services/dto"
	"campustalk_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOutReceiptsExcludesSender(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.readStatusService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	group := env.createGroup(t, "study", alice, bob, carol)

	message := &chat.Message{
		SenderID: alice.ID,
		GroupID:  &group.ID,
		Type:     chat.MessageTypeText,
		Content:  "hello",
	}
	require.NoError(t, env.messageRepo.Create(env.db, message))

	created, err := svc.FanOutReceipts(env.db, message)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	// Private messages get no receipts at all.
	private := &chat.Message{
		SenderID:   alice.ID,
		ReceiverID: &bob.ID,
		Type:       chat.MessageTypeText,
		Content:    "hi",
	}
	require.NoError(t, env.messageRepo.Create(env.db, private))
	created, err = svc.FanOutReceipts(env.db, private)
	require.NoError(t, err)
	assert.Zero(t, created)
}

func TestMarkAsReadGroupIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	svc := env.readStatusService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	group := env.createGroup(t, "study", alice, bob)

	sent, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "hi",
	})
	require.NoError(t, err)

	req := &dto.MarkAsReadRequest{GroupID: strPtr(group.ID), MessageIDs: []string{sent.ID}}
	marked, err := svc.MarkAsRead(context.Background(), env.db, bob.ID, req)
	require.NoError(t, err)
	assert.Equal(t, int64(1), marked)

	// A repeat marks nothing but still succeeds.
	marked, err = svc.MarkAsRead(context.Background(), env.db, bob.ID, req)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestMarkAsReadWholeConversation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	svc := env.readStatusService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.makeFriends(t, alice, bob)

	for i := 0; i < 3; i++ {
		_, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
			ReceiverID: strPtr(bob.ID), Type: chat.MessageTypeText, Content: "ping",
		})
		require.NoError(t, err)
	}

	// Omitting message ids marks everything unread from the peer.
	marked, err := svc.MarkAsRead(context.Background(), env.db, bob.ID, &dto.MarkAsReadRequest{
		PeerID: strPtr(alice.ID),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), marked)

	count, err := env.messageRepo.CountPrivateUnread(env.db, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMarkAsReadRequiresMembership(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.readStatusService()
	alice := env.createUser(t, "alice")
	outsider := env.createUser(t, "outsider")
	group := env.createGroup(t, "study", alice)

	_, err := svc.MarkAsRead(context.Background(), env.db, outsider.ID, &dto.MarkAsReadRequest{
		GroupID: strPtr(group.ID),
	})
	assert.ErrorIs(t, err, apperrors.ErrNotConversationMember)

	// Both targets set is rejected up front.
	_, err = svc.MarkAsRead(context.Background(), env.db, alice.ID, &dto.MarkAsReadRequest{
		PeerID:  strPtr(alice.ID),
		GroupID: strPtr(group.ID),
	})
	assert.Error(t, err)
}

func TestMarkAsReadPublishesReadStatusEvent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	svc := env.readStatusService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	group := env.createGroup(t, "study", alice, bob)

	sent, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "hi",
	})
	require.NoError(t, err)

	sub := env.bus.Subscribe(realtime.ConversationChannel(chat.GroupRef(group.ID)))
	defer sub.Unsubscribe()

	_, err = svc.MarkAsRead(context.Background(), env.db, bob.ID, &dto.MarkAsReadRequest{
		GroupID: strPtr(group.ID), MessageIDs: []string{sent.ID},
	})
	require.NoError(t, err)

	select {
	case event := <-sub.C:
		assert.Equal(t, realtime.EventUpdate, event.Type)
		assert.Equal(t, "read_status", event.Table)
	default:
		t.Fatal("expected a read_status event on the conversation channel")
	}
}

func TestPurgeMemberReceipts(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	svc := env.readStatusService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	group := env.createGroup(t, "study", alice, bob)

	_, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "hi",
	})
	require.NoError(t, err)

	require.NoError(t, svc.PurgeMemberReceipts(context.Background(), env.db, group.ID, bob.ID))

	count, err := env.receiptRepo.CountUnread(env.db, group.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

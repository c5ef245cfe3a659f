package services

import (
	"context"
	"testing"

	"campustalk_backend/internal/cache"
	"campustalk_backend/internal/models/chat"
	"campustalk_backend/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryCombinesPrivateAndGroups(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	svc := env.unreadService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	env.makeFriends(t, alice, bob)
	group := env.createGroup(t, "study", carol, bob)

	for i := 0; i < 2; i++ {
		_, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
			ReceiverID: strPtr(bob.ID), Type: chat.MessageTypeText, Content: "ping",
		})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		_, err := messages.Send(context.Background(), env.db, carol.ID, &dto.SendMessageRequest{
			GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "notes",
		})
		require.NoError(t, err)
	}

	summary, err := svc.Summary(context.Background(), env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Private)
	assert.Equal(t, int64(3), summary.Groups[group.ID])
	assert.Equal(t, int64(5), summary.Total)

	total, err := svc.TotalUnread(context.Background(), env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestUnreadDropsAfterMarkAsRead(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	readStatus := env.readStatusService()
	svc := env.unreadService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.makeFriends(t, alice, bob)

	_, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		ReceiverID: strPtr(bob.ID), Type: chat.MessageTypeText, Content: "ping",
	})
	require.NoError(t, err)

	// Prime the cached count, then mark as read: the invalidation must
	// force a recount instead of serving the stale value.
	count, err := svc.PrivateUnread(context.Background(), env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	_, err = readStatus.MarkAsRead(context.Background(), env.db, bob.ID, &dto.MarkAsReadRequest{
		PeerID: strPtr(alice.ID),
	})
	require.NoError(t, err)

	count, err = svc.PrivateUnread(context.Background(), env.db, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGroupUnreadGatedOnMembership(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	svc := env.unreadService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	outsider := env.createUser(t, "outsider")
	group := env.createGroup(t, "study", alice, bob)

	_, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "hi",
	})
	require.NoError(t, err)

	count, err := svc.GroupUnread(context.Background(), env.db, bob.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.GroupUnread(context.Background(), env.db, outsider.ID, group.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLeftGroupContributesNothing(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	messages := env.messageService()
	svc := env.unreadService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	group := env.createGroup(t, "study", alice, bob)

	_, err := messages.Send(context.Background(), env.db, alice.ID, &dto.SendMessageRequest{
		GroupID: strPtr(group.ID), Type: chat.MessageTypeText, Content: "hi",
	})
	require.NoError(t, err)

	// Membership removal alone zeroes the contribution even with the
	// receipt row still physically present.
	require.NoError(t, env.groupRepo.RemoveMember(env.db, group.ID, bob.ID))
	env.cache.InvalidatePrefix(context.Background(), cache.UnreadPrefix(bob.ID))

	summary, err := svc.Summary(context.Background(), env.db, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, summary.Total)
	assert.NotContains(t, summary.Groups, group.ID)
}

package services

import (
	"context"
	"testing"
	"time"

	"campustalk_backend/internal/models"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmailChannel struct {
	sent chan string
}

func (s *stubEmailChannel) SendNotification(recipientID, subject, body string) error {
	s.sent <- recipientID
	return nil
}

func TestNotificationCreatePersistsAndPublishes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.notificationService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	sub := env.bus.Subscribe(realtime.UserChannel(bob.ID))
	defer sub.Unsubscribe()

	resp, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendAccepted, "", realtime.PriorityMedium)
	require.NoError(t, err)
	assert.Equal(t, bob.ID, resp.RecipientID)
	assert.Contains(t, resp.Content, "alice")
	assert.False(t, resp.ReadStatus)

	select {
	case event := <-sub.C:
		assert.Equal(t, realtime.EventInsert, event.Type)
		assert.Equal(t, "notifications", event.Table)
	default:
		t.Fatal("expected a notification event on the user channel")
	}
}

func TestNotificationRequestTypesDeduplicate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.notificationService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	first, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendRequest, "f1", realtime.PriorityHigh)
	require.NoError(t, err)

	// A pending duplicate from the same sender resolves to the first row.
	second, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendRequest, "f1", realtime.PriorityHigh)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := svc.UnreadCount(context.Background(), env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Non-request types accumulate freely.
	a1, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendAccepted, "", realtime.PriorityMedium)
	require.NoError(t, err)
	a2, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendAccepted, "", realtime.PriorityMedium)
	require.NoError(t, err)
	assert.NotEqual(t, a1.ID, a2.ID)
}

func TestHighPriorityTriggersEmail(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	email := &stubEmailChannel{sent: make(chan string, 1)}
	svc := NewNotificationService(env.notificationRepo, env.userRepo, env.bus, email)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendRequest, "f1", realtime.PriorityHigh)
	require.NoError(t, err)

	select {
	case recipient := <-email.sent:
		assert.Equal(t, bob.ID, recipient)
	case <-time.After(time.Second):
		t.Fatal("expected an email for a high priority notification")
	}

	// Medium priority stays in-band only.
	_, err = svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendAccepted, "", realtime.PriorityMedium)
	require.NoError(t, err)
	select {
	case <-email.sent:
		t.Fatal("medium priority must not email")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestNotificationMarkAsReadOwnership(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.notificationService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	mallory := env.createUser(t, "mallory")

	resp, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
		models.NotificationFriendAccepted, "", realtime.PriorityMedium)
	require.NoError(t, err)

	err = svc.MarkAsRead(context.Background(), env.db, mallory.ID, resp.ID)
	assert.Error(t, err)

	require.NoError(t, svc.MarkAsRead(context.Background(), env.db, bob.ID, resp.ID))
	// Marking twice stays a success.
	require.NoError(t, svc.MarkAsRead(context.Background(), env.db, bob.ID, resp.ID))

	count, err := svc.UnreadCount(context.Background(), env.db, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotificationListAndMarkAll(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := env.notificationService()
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	for i := 0; i < 3; i++ {
		_, err := svc.Create(context.Background(), env.db, bob.ID, alice.ID,
			models.NotificationFriendAccepted, "", realtime.PriorityMedium)
		require.NoError(t, err)
	}

	list, err := svc.List(context.Background(), env.db, bob.ID, repositories.NotificationCriteria{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, list.Notifications, 2)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, int64(3), list.UnreadCount)

	require.NoError(t, svc.MarkAllAsRead(context.Background(), env.db, bob.ID))

	list, err = svc.List(context.Background(), env.db, bob.ID, repositories.NotificationCriteria{UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, list.Notifications)
	assert.Zero(t, list.UnreadCount)
}

package services

import (
	"context"
	"testing"

	"campustalk_backend/internal/models"
	"campustalk_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFriendshipService(env *testEnv) FriendshipService {
	return NewFriendshipService(env.friendshipRepo, env.userRepo, env.notificationService())
}

func TestSendRequestCreatesPendingAndNotifies(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := newFriendshipService(env)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	resp, err := svc.SendRequest(context.Background(), env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, resp.Status)

	// Both sides got their notification: request for bob, echo for alice.
	bobCount, err := env.notificationRepo.GetUnreadCount(env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobCount)
	aliceCount, err := env.notificationRepo.GetUnreadCount(env.db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), aliceCount)
}

func TestSendRequestIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := newFriendshipService(env)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	first, err := svc.SendRequest(context.Background(), env.db, alice.ID, bob.ID)
	require.NoError(t, err)

	// Repeats, in either direction, resolve to the existing row.
	again, err := svc.SendRequest(context.Background(), env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	reverse, err := svc.SendRequest(context.Background(), env.db, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, reverse.ID)

	// No duplicate pending-request notifications accumulated.
	count, err := env.notificationRepo.GetUnreadCount(env.db, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSendRequestValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := newFriendshipService(env)
	alice := env.createUser(t, "alice")

	_, err := svc.SendRequest(context.Background(), env.db, alice.ID, alice.ID)
	assert.Error(t, err)

	_, err = svc.SendRequest(context.Background(), env.db, alice.ID, "no-such-user")
	assert.Error(t, err)
}

func TestAcceptOnlyByAddressee(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := newFriendshipService(env)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	req, err := svc.SendRequest(context.Background(), env.db, alice.ID, bob.ID)
	require.NoError(t, err)

	// The requester cannot resolve their own request.
	_, err = svc.Accept(context.Background(), env.db, alice.ID, req.ID)
	assert.Error(t, err)

	resp, err := svc.Accept(context.Background(), env.db, bob.ID, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipAccepted, resp.Status)

	friends, err := env.friendshipRepo.AreFriends(env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, friends)

	// Accepting again is a no-op; rejecting afterwards is invalid.
	_, err = svc.Accept(context.Background(), env.db, bob.ID, req.ID)
	assert.NoError(t, err)
	_, err = svc.Reject(context.Background(), env.db, bob.ID, req.ID)
	assert.Error(t, err)
}

func TestRejectedRequestCanBeReopened(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := newFriendshipService(env)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	req, err := svc.SendRequest(context.Background(), env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), env.db, bob.ID, req.ID)
	require.NoError(t, err)

	reopened, err := svc.SendRequest(context.Background(), env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, reopened.ID)
	assert.Equal(t, models.FriendshipPending, reopened.Status)

	stored, err := env.friendshipRepo.FindByID(env.db, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.FriendshipPending, stored.Status)

	friends, err := env.friendshipRepo.AreFriends(env.db, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, friends)
}

func TestFindBetweenMatchesEitherDirection(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	env.makeFriends(t, alice, bob)

	found, err := env.friendshipRepo.FindBetween(env.db, bob.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, found.RequesterID)

	_, err = env.friendshipRepo.FindBetween(env.db, alice.ID, "stranger")
	assert.ErrorIs(t, err, repositories.ErrFriendshipNotFound)
}

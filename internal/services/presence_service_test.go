package services

import (
	"context"
	"testing"
	"time"

	"campustalk_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceLifecycle(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewPresenceService(env.userRepo, env.bus, 30*time.Second)
	alice := env.createUser(t, "alice")

	// No heartbeat yet means offline regardless of stored status.
	presence, err := svc.GetPresence(context.Background(), env.db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOffline, presence.Status)

	require.NoError(t, svc.Heartbeat(context.Background(), env.db, alice.ID))
	require.NoError(t, svc.SetStatus(context.Background(), env.db, alice.ID, models.PresenceOnline))

	presence, err = svc.GetPresence(context.Background(), env.db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOnline, presence.Status)
	assert.NotNil(t, presence.LastSeenAt)
}

func TestStaleHeartbeatDowngradesToOffline(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	heartbeat := 30 * time.Second
	service := NewPresenceService(env.userRepo, env.bus, heartbeat).(*presenceService)
	alice := env.createUser(t, "alice")

	require.NoError(t, service.SetStatus(context.Background(), env.db, alice.ID, models.PresenceOnline))

	// Advance the clock past three missed heartbeats.
	service.now = func() time.Time { return time.Now().Add(4 * heartbeat) }

	presence, err := service.GetPresence(context.Background(), env.db, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PresenceOffline, presence.Status)
}

func TestSetStatusValidatesEnum(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewPresenceService(env.userRepo, env.bus, 30*time.Second)
	alice := env.createUser(t, "alice")

	err := svc.SetStatus(context.Background(), env.db, alice.ID, models.PresenceStatus("invisible"))
	assert.Error(t, err)
}

func TestGetPresencesBatch(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t)
	svc := NewPresenceService(env.userRepo, env.bus, 30*time.Second)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	require.NoError(t, svc.SetStatus(context.Background(), env.db, alice.ID, models.PresenceAway))

	presences, err := svc.GetPresences(context.Background(), env.db, []string{alice.ID, bob.ID})
	require.NoError(t, err)
	require.Len(t, presences, 2)

	byUser := map[string]models.PresenceStatus{}
	for _, p := range presences {
		byUser[p.UserID] = p.Status
	}
	assert.Equal(t, models.PresenceAway, byUser[alice.ID])
	assert.Equal(t, models.PresenceOffline, byUser[bob.ID])

	empty, err := svc.GetPresences(context.Background(), env.db, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

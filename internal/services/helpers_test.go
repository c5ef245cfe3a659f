package services

import (
	"testing"
	"time"

	"campustalk_backend/database"
	"campustalk_backend/internal/cache"
	"campustalk_backend/internal/models"
	"campustalk_backend/internal/realtime"
	"campustalk_backend/internal/repositories"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv bundles the wiring every service test needs: an isolated
// in-memory database, a fresh memory cache and a fresh bus.
type testEnv struct {
	db    *gorm.DB
	cache *cache.Cache
	store *cache.MemoryStore
	bus   *realtime.Bus

	userRepo         repositories.UserRepository
	friendshipRepo   repositories.FriendshipRepository
	groupRepo        repositories.GroupRepository
	messageRepo      repositories.MessageRepository
	receiptRepo      repositories.ReadReceiptRepository
	notificationRepo repositories.NotificationRepository
	confessionRepo   repositories.ConfessionRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	store := cache.NewMemoryStore()
	env := &testEnv{
		db:    db,
		cache: cache.New(store, cache.Options{NegativeTTL: 30 * time.Second}),
		store: store,
		bus:   realtime.NewBus(),

		userRepo:         repositories.NewUserRepository(),
		friendshipRepo:   repositories.NewFriendshipRepository(),
		groupRepo:        repositories.NewGroupRepository(),
		messageRepo:      repositories.NewMessageRepository(),
		receiptRepo:      repositories.NewReadReceiptRepository(),
		notificationRepo: repositories.NewNotificationRepository(),
		confessionRepo:   repositories.NewConfessionRepository(),
	}
	t.Cleanup(func() {
		env.bus.Close()
		sqlDB.Close()
	})
	return env
}

func (e *testEnv) readStatusService() ReadStatusService {
	return NewReadStatusService(e.receiptRepo, e.messageRepo, e.groupRepo, e.cache, e.bus)
}

func (e *testEnv) messageService() MessageService {
	return NewMessageService(e.messageRepo, e.receiptRepo, e.groupRepo, e.friendshipRepo, e.readStatusService(), e.cache, e.bus)
}

func (e *testEnv) unreadService() UnreadService {
	return NewUnreadService(e.messageRepo, e.receiptRepo, e.groupRepo, e.cache, time.Minute)
}

func (e *testEnv) notificationService() NotificationService {
	return NewNotificationService(e.notificationRepo, e.userRepo, e.bus, nil)
}

func (e *testEnv) createUser(t *testing.T, name string) *models.User {
	t.Helper()
	user := &models.User{
		Email:       name + "@campus.test",
		DisplayName: name,
		Status:      models.PresenceOffline,
	}
	require.NoError(t, e.userRepo.Create(e.db, user))
	return user
}

func (e *testEnv) makeFriends(t *testing.T, a, b *models.User) {
	t.Helper()
	require.NoError(t, e.friendshipRepo.Create(e.db, &models.Friendship{
		RequesterID: a.ID,
		AddresseeID: b.ID,
		Status:      models.FriendshipAccepted,
	}))
}

// createGroup creates a group owned by the first user with the rest as
// plain members.
func (e *testEnv) createGroup(t *testing.T, name string, owner *models.User, members ...*models.User) *models.Group {
	t.Helper()
	group := &models.Group{Name: name, OwnerID: owner.ID}
	require.NoError(t, e.groupRepo.Create(e.db, group))
	require.NoError(t, e.groupRepo.AddMember(e.db, &models.GroupMember{
		GroupID:  group.ID,
		UserID:   owner.ID,
		Role:     models.GroupRoleOwner,
		JoinedAt: time.Now(),
	}))
	for _, member := range members {
		require.NoError(t, e.groupRepo.AddMember(e.db, &models.GroupMember{
			GroupID:  group.ID,
			UserID:   member.ID,
			Role:     models.GroupRoleMember,
			JoinedAt: time.Now(),
		}))
	}
	return group
}

func strPtr(s string) *string { return &s }

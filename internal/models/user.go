package models

import "time"

type PresenceStatus string

const (
	PresenceOnline  PresenceStatus = "online"
	PresenceAway    PresenceStatus = "away"
	PresenceOffline PresenceStatus = "offline"
)

type User struct {
	BaseModel
	Email       string `gorm:"uniqueIndex;not null"`
	DisplayName string `gorm:"not null"`
	AvatarURL   *string

	// Presence. Status is what the client last reported; LastSeenAt is the
	// heartbeat timestamp. EffectivePresence reconciles the two.
	Status     PresenceStatus `gorm:"type:varchar(20);default:'offline'"`
	LastSeenAt *time.Time
}

// EffectivePresence resolves explicit status against the derived last-seen
// signal: the stored status wins while the heartbeat is fresh; once the
// heartbeat is stale the user is offline no matter what the row says.
// Derived presence only ever downgrades, never upgrades.
func (u *User) EffectivePresence(now time.Time, heartbeat time.Duration) PresenceStatus {
	if u.LastSeenAt == nil {
		return PresenceOffline
	}
	if now.Sub(*u.LastSeenAt) > 3*heartbeat {
		return PresenceOffline
	}
	if u.Status == "" {
		return PresenceAway
	}
	return u.Status
}
